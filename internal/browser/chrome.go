package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/outreachlabs/leadscout/internal/config"
	"github.com/outreachlabs/leadscout/internal/stealth"
)

// ChromeFactory creates chromedp-backed sessions.
type ChromeFactory struct {
	cfg config.BrowserConfig
}

// NewChromeFactory creates a factory with the given browser config.
func NewChromeFactory(cfg config.BrowserConfig) *ChromeFactory {
	return &ChromeFactory{cfg: cfg}
}

// NewSession launches a fresh browser with the fingerprint applied: user
// agent, viewport, locale, timezone, jittered geolocation, extra headers,
// and the stealth init script.
func (f *ChromeFactory) NewSession(ctx context.Context, fp stealth.Fingerprint) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", fp.Locale),
		chromedp.UserAgent(fp.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &chromeSession{
		ctx:            browserCtx,
		pageTimeout:    secondsOrDefault(f.cfg.PageLoadTimeoutSecs, 60*time.Second),
		elementTimeout: secondsOrDefault(f.cfg.ElementTimeoutSecs, 15*time.Second),
		cancels:        []context.CancelFunc{browserCancel, allocCancel},
	}

	headers := network.Headers{}
	for k, v := range fp.Headers() {
		headers[k] = v
	}

	initCtx, initCancel := context.WithTimeout(browserCtx, s.pageTimeout)
	defer initCancel()

	err := chromedp.Run(initCtx,
		chromedp.EmulateViewport(int64(fp.ViewportWidth), int64(fp.ViewportHeight)),
		emulation.SetTimezoneOverride(fp.Timezone),
		emulation.SetGeolocationOverride().
			WithLatitude(fp.Latitude).
			WithLongitude(fp.Longitude).
			WithAccuracy(100),
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, scriptErr := page.AddScriptToEvaluateOnNewDocument(stealth.Script).Do(ctx)
			return scriptErr
		}),
	)
	if err != nil {
		_ = s.Close()
		return nil, eris.Wrap(err, "browser: apply fingerprint")
	}

	zap.L().Debug("browser session started",
		zap.String("user_agent", fp.UserAgent),
		zap.Int("viewport_w", fp.ViewportWidth),
		zap.Int("viewport_h", fp.ViewportHeight),
		zap.String("timezone", fp.Timezone),
	)
	return s, nil
}

func secondsOrDefault(secs int, def time.Duration) time.Duration {
	if secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}

type chromeSession struct {
	ctx            context.Context
	pageTimeout    time.Duration
	elementTimeout time.Duration

	mu      sync.Mutex
	cancels []context.CancelFunc
	closed  bool
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	navCtx, cancel := context.WithTimeout(s.ctx, s.pageTimeout)
	defer cancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return eris.Wrapf(err, "browser: navigate %s", url)
	}

	// The document may still be streaming in; give the body a shorter,
	// separately configured deadline.
	readyCtx, cancelReady := context.WithTimeout(s.ctx, s.elementTimeout)
	defer cancelReady()

	if err := chromedp.Run(readyCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return eris.Wrapf(err, "browser: wait for document %s", url)
	}
	return nil
}

func (s *chromeSession) Location(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	opCtx, cancel := context.WithTimeout(s.ctx, s.pageTimeout)
	defer cancel()

	var loc string
	if err := chromedp.Run(opCtx, chromedp.Location(&loc)); err != nil {
		return "", eris.Wrap(err, "browser: read location")
	}
	return loc, nil
}

func (s *chromeSession) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	opCtx, cancel := context.WithTimeout(s.ctx, s.pageTimeout)
	defer cancel()

	var title string
	if err := chromedp.Run(opCtx, chromedp.Title(&title)); err != nil {
		return "", eris.Wrap(err, "browser: read title")
	}
	return title, nil
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	opCtx, cancel := context.WithTimeout(s.ctx, s.pageTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(opCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", eris.Wrap(err, "browser: snapshot html")
	}
	return html, nil
}

func (s *chromeSession) ScrollFeed(ctx context.Context, feedSelectors []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opCtx, cancel := context.WithTimeout(s.ctx, s.pageTimeout)
	defer cancel()

	sels, err := json.Marshal(feedSelectors)
	if err != nil {
		return eris.Wrap(err, "browser: encode feed selectors")
	}

	js := fmt.Sprintf(`(function(sels) {
		for (const sel of sels) {
			const el = document.querySelector(sel);
			if (el) { el.scrollTop = el.scrollHeight; return sel; }
		}
		window.scrollTo(0, document.body.scrollHeight);
		return "";
	})(%s)`, sels)

	if err := chromedp.Run(opCtx, chromedp.Evaluate(js, nil)); err != nil {
		return eris.Wrap(err, "browser: scroll feed")
	}
	return nil
}

// Close cancels the browser and allocator contexts. Idempotent.
func (s *chromeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, cancel := range s.cancels {
		cancel()
	}
	return nil
}
