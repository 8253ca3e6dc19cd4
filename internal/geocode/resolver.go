// Package geocode resolves free-text locations into coordinates through an
// ordered chain of independently-failing providers. Coordinates only bias
// the search; a full miss is never fatal.
package geocode

import (
	"context"

	"go.uber.org/zap"

	"github.com/outreachlabs/leadscout/internal/browser"
	"github.com/outreachlabs/leadscout/internal/model"
)

// Provider is a single geocoding backend. A provider that needs a browser
// session receives the one passed to Resolve; it may be nil when the
// resolver could not obtain a session.
type Provider interface {
	Name() string
	Available() bool
	Resolve(ctx context.Context, location string, sess browser.Session) (*model.Coordinates, error)
}

// ChainResolver tries providers in order; the first validated result wins.
type ChainResolver struct {
	providers []Provider
}

// NewChainResolver creates a resolver over the given providers.
func NewChainResolver(providers ...Provider) *ChainResolver {
	return &ChainResolver{providers: providers}
}

// Resolve returns the first provider's validated coordinates, or nil when
// every provider misses or errors. Provider errors are swallowed and logged;
// downstream discovery proceeds without geo-bias.
func (r *ChainResolver) Resolve(ctx context.Context, location string, sess browser.Session) *model.Coordinates {
	log := zap.L().With(zap.String("component", "geocode"))

	for _, p := range r.providers {
		if ctx.Err() != nil {
			return nil
		}
		if !p.Available() {
			log.Debug("provider unavailable, trying next", zap.String("provider", p.Name()))
			continue
		}

		coords, err := p.Resolve(ctx, location, sess)
		if err != nil {
			log.Debug("provider error, trying next",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}
		if coords != nil && coords.Valid() {
			log.Debug("location resolved",
				zap.String("provider", p.Name()),
				zap.String("coordinates", coords.String()),
			)
			return coords
		}
	}

	log.Debug("all providers missed", zap.String("location", location))
	return nil
}
