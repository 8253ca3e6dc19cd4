package geocode

import (
	"context"
	"errors"

	"github.com/outreachlabs/leadscout/internal/browser"
	"github.com/outreachlabs/leadscout/internal/model"
)

// fakeSession serves canned page state keyed by the last navigated URL.
type fakeSession struct {
	htmlByURL   map[string]string
	locationFor map[string]string // navigated URL -> settled URL
	navErr      error
	current     string
}

var _ browser.Session = (*fakeSession)(nil)

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	if f.navErr != nil {
		return f.navErr
	}
	f.current = url
	if settled, ok := f.locationFor[url]; ok {
		f.current = settled
	}
	return nil
}

func (f *fakeSession) Location(context.Context) (string, error) { return f.current, nil }
func (f *fakeSession) Title(context.Context) (string, error)    { return "", nil }

func (f *fakeSession) HTML(context.Context) (string, error) {
	if html, ok := f.htmlByURL[f.current]; ok {
		return html, nil
	}
	return "<html></html>", nil
}

func (f *fakeSession) ScrollFeed(context.Context, []string) error { return nil }
func (f *fakeSession) Close() error                               { return nil }

// stubProvider is a scripted Provider for chain tests.
type stubProvider struct {
	name      string
	available bool
	coords    *model.Coordinates
	err       error
	calls     int
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return s.available }

func (s *stubProvider) Resolve(context.Context, string, browser.Session) (*model.Coordinates, error) {
	s.calls++
	return s.coords, s.err
}

var errProviderDown = errors.New("provider down")
