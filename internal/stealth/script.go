package stealth

// Script is injected into every new document before page scripts run. It
// hides the markers headless automation leaves on the navigator and window
// objects.
const Script = `
// Remove webdriver property.
Object.defineProperty(navigator, 'webdriver', {
    get: () => undefined,
});

// Mock plugins.
Object.defineProperty(navigator, 'plugins', {
    get: () => [1, 2, 3, 4, 5],
});

// Mock languages.
Object.defineProperty(navigator, 'languages', {
    get: () => ['en-US', 'en'],
});

// Mock permissions query for notifications.
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
    parameters.name === 'notifications' ?
        Promise.resolve({ state: Notification.permission }) :
        originalQuery(parameters)
);

// Mock chrome runtime.
if (!window.chrome) {
    window.chrome = {};
}
if (!window.chrome.runtime) {
    window.chrome.runtime = {};
}

// Hide driver-injected globals.
delete window.cdc_adoQpoasnfa76pfcZLmcfl_Array;
delete window.cdc_adoQpoasnfa76pfcZLmcfl_Promise;
delete window.cdc_adoQpoasnfa76pfcZLmcfl_Symbol;

// Patch toString so the webdriver getter looks native.
const originalToString = Function.prototype.toString;
Function.prototype.toString = function() {
    if (this === window.navigator.webdriver) {
        return 'function webdriver() { [native code] }';
    }
    return originalToString.call(this);
};

// Mock screen properties.
Object.defineProperty(screen, 'availTop', { get: () => 0 });
Object.defineProperty(screen, 'availLeft', { get: () => 0 });
`
