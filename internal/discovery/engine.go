package discovery

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/outreachlabs/leadscout/internal/browser"
	"github.com/outreachlabs/leadscout/internal/config"
	"github.com/outreachlabs/leadscout/internal/model"
	"github.com/outreachlabs/leadscout/internal/stealth"
)

// LocationResolver turns a free-text location into coordinates, or nil when
// no provider can resolve it. A nil session restricts it to HTTP providers.
type LocationResolver interface {
	Resolve(ctx context.Context, location string, sess browser.Session) *model.Coordinates
}

// Engine runs discovery strategies in order until the result quota is met,
// degrading to synthetic sample data when everything fails. Discover never
// returns an error; every failure mode is folded into the result.
type Engine struct {
	cfg        *config.Config
	factory    browser.Factory
	resolver   LocationResolver
	strategies []Strategy
	fallback   *FallbackGenerator
	log        *zap.Logger
}

// NewEngine wires an Engine from configuration. The factory supplies one
// fingerprinted session per strategy attempt; the resolver may be nil to
// skip coordinate biasing entirely.
func NewEngine(cfg *config.Config, factory browser.Factory, resolver LocationResolver) *Engine {
	delay := pacer(cfg.Discovery.DelayMinMs, cfg.Discovery.DelayMaxMs)
	return &Engine{
		cfg:      cfg,
		factory:  factory,
		resolver: resolver,
		strategies: []Strategy{
			newMapsStrategy(cfg, delay),
			newLocalStrategy(cfg, delay),
			newGenericStrategy(cfg, delay),
		},
		fallback: NewFallbackGenerator(cfg.Discovery.FallbackLimit),
		log:      zap.L().With(zap.String("component", "engine")),
	}
}

// Discover executes one discovery run. Strategies are attempted in order,
// each with a fresh fingerprint and session; a strategy that under-fills the
// quota (or gets blocked partway) keeps its results and later strategies top
// them up. A run that ends with no live businesses falls back to sample data.
func (e *Engine) Discover(ctx context.Context, req model.DiscoveryRequest, stop func() bool) *model.DiscoveryResult {
	if stop == nil {
		stop = func() bool { return false }
	}
	req = req.Clamp(e.cfg.Discovery.MaxResultsCap)

	started := time.Now()
	runID := uuid.NewString()
	log := e.log.With(zap.String("run_id", runID))

	result := model.NewDiscoveryResult()
	result.Metadata["run_id"] = runID
	result.Metadata["query"] = req.Query
	result.Metadata["location"] = req.Location
	result.Metadata["started_at"] = started.UTC().Format(time.RFC3339)
	result.Metadata["fallback_used"] = false

	coords := e.resolveLocation(ctx, req.Location)
	if coords != nil {
		result.Metadata["coordinates"] = coords.String()
	}

	errLimit := e.cfg.Discovery.ErrorListLimit
	seen := make(map[string]bool)
	var attempted []string

	for _, strat := range e.strategies {
		if stop() || ctx.Err() != nil {
			break
		}
		if len(result.Businesses) >= req.MaxResults {
			break
		}
		attempted = append(attempted, strat.Name())

		remaining := req
		remaining.MaxResults = req.MaxResults - len(result.Businesses)

		rep := e.runStrategy(ctx, strat, remaining, coords, stop)

		for _, msg := range rep.Errors {
			result.RecordError(msg, errLimit)
		}
		result.SkippedCount += rep.Skipped

		for _, biz := range rep.Businesses {
			if seen[biz.DetailURL] {
				result.SkippedCount++
				continue
			}
			seen[biz.DetailURL] = true
			result.Businesses = append(result.Businesses, biz)
		}

		log.Info("strategy finished",
			zap.String("strategy", strat.Name()),
			zap.String("outcome", rep.Outcome.String()),
			zap.Int("businesses", len(rep.Businesses)),
		)

		if rep.Outcome == OutcomeBlocked {
			result.RecordError(fmt.Sprintf("%s blocked: %s", strat.Name(), strings.Join(rep.Indicators, ", ")), errLimit)
		}
	}

	result.Metadata["strategies_attempted"] = attempted

	if len(result.Businesses) == 0 {
		result.Businesses = e.fallback.Generate(req)
		result.Metadata["fallback_used"] = true
		result.Metadata["fallback_reason"] = "scraping_failed"
		log.Warn("all strategies exhausted, serving sample data",
			zap.Int("sample_count", len(result.Businesses)),
		)
	}

	result.Metadata["completed_at"] = time.Now().UTC().Format(time.RFC3339)
	result.Metadata["duration_ms"] = time.Since(started).Milliseconds()
	return result
}

// DiscoverAll runs several requests with bounded concurrency. Results are
// positionally aligned with the requests; individual runs never fail.
func (e *Engine) DiscoverAll(ctx context.Context, reqs []model.DiscoveryRequest, stop func() bool) []*model.DiscoveryResult {
	results := make([]*model.DiscoveryResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = e.Discover(gctx, req, stop)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// runStrategy owns the session lifecycle around one strategy attempt. The
// session is closed on every exit path.
func (e *Engine) runStrategy(ctx context.Context, strat Strategy, req model.DiscoveryRequest, coords *model.Coordinates, stop func() bool) Report {
	fp := stealth.NewFingerprint()
	sess, err := e.factory.NewSession(ctx, fp)
	if err != nil {
		return Report{
			Outcome: OutcomeFailed,
			Errors:  []string{fmt.Sprintf("%s: session start: %s", strat.Name(), err)},
		}
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			e.log.Debug("session close", zap.Error(cerr))
		}
	}()

	return strat.Discover(ctx, sess, req, coords, stop)
}

// resolveLocation runs the resolver chain with a short-lived session so
// browser-backed providers can participate. Resolution is best-effort; a
// miss just means searches run without coordinate bias.
func (e *Engine) resolveLocation(ctx context.Context, location string) *model.Coordinates {
	if e.resolver == nil || strings.TrimSpace(location) == "" {
		return nil
	}

	var sess browser.Session
	if s, err := e.factory.NewSession(ctx, stealth.NewFingerprint()); err == nil {
		sess = s
		defer func() { _ = s.Close() }()
	} else {
		e.log.Debug("resolver session unavailable, HTTP providers only", zap.Error(err))
	}

	return e.resolver.Resolve(ctx, location, sess)
}

// pacer returns a delay function sleeping a random duration in
// [minMs, maxMs]. Non-positive bounds disable pacing.
func pacer(minMs, maxMs int) func(ctx context.Context) {
	if minMs <= 0 || maxMs < minMs {
		return func(context.Context) {}
	}
	return func(ctx context.Context) {
		d := time.Duration(minMs+rand.IntN(maxMs-minMs+1)) * time.Millisecond
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
}
