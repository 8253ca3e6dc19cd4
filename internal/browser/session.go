// Package browser owns headless browser sessions. A Session is created for
// exactly one discovery strategy, driven sequentially, and must be closed by
// its owner on every exit path.
package browser

import (
	"context"

	"github.com/outreachlabs/leadscout/internal/stealth"
)

// Session is a single exclusively-owned browser surface. Implementations are
// not safe for concurrent use; the orchestrator drives one session at a time.
type Session interface {
	// Navigate loads the given URL, waiting for the document to be ready
	// within the configured page-load timeout.
	Navigate(ctx context.Context, url string) error

	// Location returns the current page URL (after any redirects).
	Location(ctx context.Context) (string, error)

	// Title returns the current page title.
	Title(ctx context.Context) (string, error)

	// HTML returns a snapshot of the rendered document.
	HTML(ctx context.Context) (string, error)

	// ScrollFeed scrolls the first matching feed element to its bottom to
	// trigger more results to load, falling back to scrolling the page body
	// when no selector matches.
	ScrollFeed(ctx context.Context, feedSelectors []string) error

	// Close releases the browser and all child contexts. Safe to call more
	// than once.
	Close() error
}

// Factory creates fingerprinted sessions.
type Factory interface {
	NewSession(ctx context.Context, fp stealth.Fingerprint) (Session, error)
}
