package stealth

import "strings"

// blockingTerms are matched case-insensitively against page content, title,
// and URL.
var blockingTerms = []string{
	"captcha",
	"recaptcha",
	"blocked",
	"unusual traffic",
	"verify you are human",
	"robot",
	"automated",
	"bot",
	"access denied",
	"forbidden",
	"rate limit",
	"too many requests",
	"suspicious activity",
	"security check",
	"verification required",
}

// blockedURLFragments mark redirects to known challenge pages.
var blockedURLFragments = []string{
	"google.com/sorry",
	"captcha",
	"blocked",
	"denied",
}

// DetectIndicators inspects page text, title, and current URL for signs the
// session has been identified as automated. An empty result means not
// blocked. Side-effect-free.
func DetectIndicators(pageText, pageTitle, currentURL string) []string {
	var indicators []string

	textLower := strings.ToLower(pageText)
	titleLower := strings.ToLower(pageTitle)
	urlLower := strings.ToLower(currentURL)

	for _, term := range blockingTerms {
		if strings.Contains(textLower, term) ||
			strings.Contains(titleLower, term) ||
			strings.Contains(urlLower, term) {
			indicators = append(indicators, term)
		}
	}

	for _, frag := range blockedURLFragments {
		if strings.Contains(urlLower, frag) {
			indicators = append(indicators, "blocked_url:"+frag)
		}
	}

	return indicators
}
