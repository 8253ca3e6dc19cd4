// Package collect harvests candidate business listings from a rendered
// search surface.
package collect

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/outreachlabs/leadscout/internal/browser"
	"github.com/outreachlabs/leadscout/internal/config"
	"github.com/outreachlabs/leadscout/internal/model"
)

// Collector scrolls a search surface and harvests unique candidate links.
// Transient selector misses are tolerated by falling through the selector
// list; nothing here is retried.
type Collector struct {
	cfg   config.CollectConfig
	delay func(ctx context.Context)
}

// New creates a Collector. delay is called between page interactions to
// randomize pacing; nil disables pacing.
func New(cfg config.CollectConfig, delay func(ctx context.Context)) *Collector {
	if cfg.MaxScrollAttempts <= 0 {
		cfg.MaxScrollAttempts = 30
	}
	if cfg.MinNameLength <= 0 {
		cfg.MinNameLength = 2
	}
	if delay == nil {
		delay = func(context.Context) {}
	}
	return &Collector{cfg: cfg, delay: delay}
}

// Collect harvests up to maxResults candidates, deduplicated by detail URL.
// It checks stop before each expensive page interaction and returns whatever
// has been collected so far when stop is set, the context is cancelled, or
// the surface stops yielding new candidates.
func (c *Collector) Collect(ctx context.Context, sess browser.Session, sel SelectorSet, maxResults int, stop func() bool) []model.CandidateListing {
	log := zap.L().With(zap.String("component", "collect"))

	var candidates []model.CandidateListing
	seen := make(map[string]bool)
	scrollAttempts := 0

	for len(candidates) < maxResults && scrollAttempts < c.cfg.MaxScrollAttempts {
		if stop() || ctx.Err() != nil {
			break
		}

		html, err := sess.HTML(ctx)
		if err != nil {
			log.Debug("snapshot failed, stopping collection", zap.Error(err))
			break
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			log.Debug("parse failed, stopping collection", zap.Error(err))
			break
		}

		before := len(candidates)
		c.harvest(doc, sel, maxResults, seen, &candidates)

		if len(candidates) == before {
			scrollAttempts++
		} else {
			scrollAttempts = 0
		}

		if len(candidates) >= maxResults {
			break
		}

		if stop() || ctx.Err() != nil {
			break
		}
		if err := sess.ScrollFeed(ctx, sel.FeedSelectors); err != nil {
			log.Debug("scroll failed", zap.Error(err))
			scrollAttempts++
		}
		c.delay(ctx)
	}

	log.Debug("collection finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("scroll_attempts", scrollAttempts),
	)
	return candidates
}

// harvest walks the selector list in priority order; the first selector that
// matches anything wins and its elements are consumed.
func (c *Collector) harvest(doc *goquery.Document, sel SelectorSet, maxResults int, seen map[string]bool, out *[]model.CandidateListing) {
	for _, listSel := range sel.Listing {
		matches := doc.Find(listSel)
		if matches.Length() == 0 {
			continue
		}

		matches.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if len(*out) >= maxResults {
				return false
			}

			href, ok := s.Attr("href")
			if !ok || href == "" || !sel.AcceptLink(href) {
				return true
			}
			if seen[href] {
				return true
			}

			name := displayName(s, sel.NameAttrs)
			if len(name) < c.cfg.MinNameLength {
				return true
			}

			seen[href] = true
			*out = append(*out, model.CandidateListing{DetailURL: href, Name: name})
			return true
		})
		return
	}
}

// displayName pulls a name from the attribute priority list, falling back to
// the element's text.
func displayName(s *goquery.Selection, attrs []string) string {
	for _, attr := range attrs {
		if v := strings.TrimSpace(s.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return strings.TrimSpace(s.Text())
}
