package discovery

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/outreachlabs/leadscout/internal/browser"
	"github.com/outreachlabs/leadscout/internal/stealth"
)

// scriptedSession answers every navigation through a single handler func,
// so one fixture can model listing pages, detail pages, and block pages.
type scriptedSession struct {
	handle func(url string) (string, error)

	mu          sync.Mutex
	navCalls    map[string]int
	currentURL  string
	currentHTML string
	closed      bool
}

func newScriptedSession(handle func(url string) (string, error)) *scriptedSession {
	return &scriptedSession{handle: handle, navCalls: map[string]int{}}
}

func (s *scriptedSession) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navCalls[url]++
	html, err := s.handle(url)
	if err != nil {
		return err
	}
	s.currentURL = url
	s.currentHTML = html
	return nil
}

func (s *scriptedSession) Location(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL, nil
}

func (s *scriptedSession) Title(context.Context) (string, error) { return "results", nil }

func (s *scriptedSession) HTML(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentHTML, nil
}

func (s *scriptedSession) ScrollFeed(context.Context, []string) error { return nil }

func (s *scriptedSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *scriptedSession) navCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navCalls[url]
}

// mockFactory hands out scripted sessions and remembers them so tests can
// verify every session was closed.
type mockFactory struct {
	handle  func(url string) (string, error)
	failNew bool

	mu       sync.Mutex
	sessions []*scriptedSession
}

func (f *mockFactory) NewSession(_ context.Context, _ stealth.Fingerprint) (browser.Session, error) {
	if f.failNew {
		return nil, errors.New("browser start failed")
	}
	s := newScriptedSession(f.handle)
	f.mu.Lock()
	f.sessions = append(f.sessions, s)
	f.mu.Unlock()
	return s, nil
}

func (f *mockFactory) allClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if !s.closed {
			return false
		}
	}
	return true
}

const blockedPage = `<html><body><h1>Our systems have detected unusual traffic from your computer network.</h1></body></html>`

func detailPage(site, phone, email string) string {
	return `<html><body>
<a data-item-id="authority" href="` + site + `">site</a>
<button data-item-id="address">123 Congress Ave, Austin, TX 78701</button>
<button data-item-id="phone:tel">` + phone + `</button>
<span>` + email + `</span>
</body></html>`
}

func mapsListing(entries map[string]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div role="feed">`)
	for href, name := range entries {
		b.WriteString(`<div><div><a href="` + href + `" aria-label="` + name + `">x</a></div></div>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// healthyHandler serves a maps listing for search entry pages and a rich
// detail page for each place URL.
func healthyHandler(listings map[string]string) func(string) (string, error) {
	return func(url string) (string, error) {
		if strings.Contains(url, "/maps/place/") {
			return detailPage("https://example-biz.com", "(512) 555-0100", "hello@example-biz.com"), nil
		}
		return mapsListing(listings), nil
	}
}
