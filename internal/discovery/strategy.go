// Package discovery orchestrates search strategies into one resilient
// business-discovery run.
package discovery

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/outreachlabs/leadscout/internal/browser"
	"github.com/outreachlabs/leadscout/internal/collect"
	"github.com/outreachlabs/leadscout/internal/config"
	"github.com/outreachlabs/leadscout/internal/extract"
	"github.com/outreachlabs/leadscout/internal/model"
	"github.com/outreachlabs/leadscout/internal/resilience"
	"github.com/outreachlabs/leadscout/internal/stealth"
)

// Outcome classifies how a strategy run ended. Blocking and failure are
// ordinary values, not errors; the engine decides what to do next.
type Outcome int

const (
	// OutcomeOK means the strategy ran to completion on a live surface.
	OutcomeOK Outcome = iota
	// OutcomeBlocked means the surface identified the session as automated.
	// Businesses extracted before the block are still carried in the report.
	OutcomeBlocked
	// OutcomeFailed means the strategy could not produce anything at all.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeBlocked:
		return "blocked"
	default:
		return "failed"
	}
}

// Report is one strategy's contribution to a run.
type Report struct {
	Outcome    Outcome
	Businesses []model.Business
	Skipped    int
	Errors     []string
	Indicators []string
}

// Strategy discovers businesses on one search surface using a session it
// does not own; the engine creates and closes the session around each run.
type Strategy interface {
	Name() string
	Discover(ctx context.Context, sess browser.Session, req model.DiscoveryRequest, coords *model.Coordinates, stop func() bool) Report
}

const (
	mapsSearchBase    = "https://www.google.com/maps/search/"
	webSearchBase     = "https://www.google.com/search"
	defaultZoomSuffix = ",12z"
)

// searchStrategy is the shared shape of all surface strategies: build entry
// URLs, collect candidates, extract details, watching for blocks throughout.
type searchStrategy struct {
	name      string
	entryURLs func(req model.DiscoveryRequest, coords *model.Coordinates) []string
	selectors collect.SelectorSet
	collector *collect.Collector
	extractor *extract.Extractor
	navRetry  resilience.RetryConfig
	delay     func(ctx context.Context)
	log       *zap.Logger
}

func newSearchStrategy(name string, cfg *config.Config, delay func(ctx context.Context), sel collect.SelectorSet, entryURLs func(model.DiscoveryRequest, *model.Coordinates) []string) *searchStrategy {
	retry := resilience.FromRetryConfig(cfg.Extract.NavMaxAttempts, cfg.Extract.NavBackoffMs)
	retry.ShouldRetry = func(error) bool { return true }
	retry.OnRetry = resilience.RetryLogger("discovery", name+" navigate")
	return &searchStrategy{
		name:      name,
		entryURLs: entryURLs,
		selectors: sel,
		collector: collect.New(cfg.Collect, delay),
		extractor: extract.NewExtractor(cfg.Extract),
		navRetry:  retry,
		delay:     delay,
		log:       zap.L().With(zap.String("component", "discovery"), zap.String("strategy", name)),
	}
}

func (s *searchStrategy) Name() string { return s.name }

// Discover walks the strategy's entry URLs in order. A detected block ends
// the run immediately with whatever was extracted so far.
func (s *searchStrategy) Discover(ctx context.Context, sess browser.Session, req model.DiscoveryRequest, coords *model.Coordinates, stop func() bool) Report {
	rep := Report{Outcome: OutcomeOK}
	seen := make(map[string]bool)

	for _, entry := range s.entryURLs(req, coords) {
		if stop() || ctx.Err() != nil {
			return rep
		}
		if len(rep.Businesses) >= req.MaxResults {
			return rep
		}

		if err := resilience.Do(ctx, s.navRetry, func(ctx context.Context) error {
			return sess.Navigate(ctx, entry)
		}); err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("%s: entry navigation: %s", s.name, err))
			continue
		}
		s.delay(ctx)

		if ind := s.blockCheck(ctx, sess); len(ind) > 0 {
			rep.Outcome = OutcomeBlocked
			rep.Indicators = ind
			return rep
		}

		remaining := req.MaxResults - len(rep.Businesses)
		candidates := s.collector.Collect(ctx, sess, s.selectors, remaining, stop)

		for _, cand := range candidates {
			if stop() || ctx.Err() != nil {
				return rep
			}
			if seen[cand.DetailURL] {
				rep.Skipped++
				continue
			}
			seen[cand.DetailURL] = true

			biz := s.extractor.Extract(ctx, sess, cand, req.Query, req.Location)
			if ind := s.blockCheck(ctx, sess); len(ind) > 0 {
				rep.Outcome = OutcomeBlocked
				rep.Indicators = ind
				rep.Skipped++
				return rep
			}
			if biz.Tag == model.TagBasicInfoOnly {
				rep.Errors = append(rep.Errors, fmt.Sprintf("%s: degraded extraction for %q", s.name, cand.Name))
			}
			rep.Businesses = append(rep.Businesses, biz)
			s.delay(ctx)
		}
	}

	if len(rep.Businesses) == 0 && rep.Outcome == OutcomeOK && len(rep.Errors) > 0 {
		rep.Outcome = OutcomeFailed
	}
	return rep
}

// blockCheck samples the current page for automation-detection indicators.
// Read failures are treated as not-blocked; the next interaction will surface
// the real error.
func (s *searchStrategy) blockCheck(ctx context.Context, sess browser.Session) []string {
	html, err := sess.HTML(ctx)
	if err != nil {
		return nil
	}
	title, _ := sess.Title(ctx)
	loc, _ := sess.Location(ctx)

	indicators := stealth.DetectIndicators(html, title, loc)
	if len(indicators) > 0 {
		s.log.Warn("blocking detected",
			zap.Strings("indicators", indicators),
			zap.String("url", loc),
		)
	}
	return indicators
}

// newMapsStrategy searches the map surface, biased to resolved coordinates
// when available.
func newMapsStrategy(cfg *config.Config, delay func(ctx context.Context)) Strategy {
	return newSearchStrategy("maps_search", cfg, delay, collect.MapsSelectors(),
		func(req model.DiscoveryRequest, coords *model.Coordinates) []string {
			u := mapsSearchBase + url.PathEscape(req.Query+" near "+req.Location)
			if coords != nil {
				u += "/@" + coords.String() + defaultZoomSuffix
			}
			return []string{u}
		})
}

// newLocalStrategy searches the local-pack variant of web search.
func newLocalStrategy(cfg *config.Config, delay func(ctx context.Context)) Strategy {
	return newSearchStrategy("local_search", cfg, delay, collect.LocalSelectors(),
		func(req model.DiscoveryRequest, _ *model.Coordinates) []string {
			q := url.Values{}
			q.Set("q", req.Query+" near "+req.Location)
			q.Set("tbm", "lcl")
			return []string{webSearchBase + "?" + q.Encode()}
		})
}

// newGenericStrategy falls back to plain web search, trying several query
// phrasings in order.
func newGenericStrategy(cfg *config.Config, delay func(ctx context.Context)) Strategy {
	return newSearchStrategy("generic_search", cfg, delay, collect.GenericSelectors(),
		func(req model.DiscoveryRequest, _ *model.Coordinates) []string {
			variants := []string{
				req.Query + " " + req.Location,
				req.Query + " near " + req.Location,
				"best " + req.Query + " " + req.Location,
			}
			urls := make([]string, 0, len(variants))
			for _, variant := range variants {
				q := url.Values{}
				q.Set("q", variant)
				urls = append(urls, webSearchBase+"?"+q.Encode())
			}
			return urls
		})
}
