// Package extract visits candidate detail pages and produces business
// records with a per-record confidence score.
package extract

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/outreachlabs/leadscout/internal/browser"
	"github.com/outreachlabs/leadscout/internal/config"
	"github.com/outreachlabs/leadscout/internal/model"
	"github.com/outreachlabs/leadscout/internal/resilience"
)

// Extractor turns a candidate listing into a business record. Extraction
// never fails the run: a candidate whose detail page cannot be reached is
// degraded to a listing-only record instead of being dropped.
type Extractor struct {
	cfg config.ExtractConfig
	log *zap.Logger
}

// NewExtractor creates an Extractor with the given tuning.
func NewExtractor(cfg config.ExtractConfig) *Extractor {
	return &Extractor{
		cfg: cfg,
		log: zap.L().With(zap.String("component", "extract")),
	}
}

// Extract navigates to the candidate's detail page and pulls contact fields.
// Navigation failures after all retries yield a degraded record carrying only
// listing-level data.
func (e *Extractor) Extract(ctx context.Context, sess browser.Session, cand model.CandidateListing, category, location string) model.Business {
	retry := resilience.FromRetryConfig(e.cfg.NavMaxAttempts, e.cfg.NavBackoffMs)
	// Navigation failures are opaque; retry all of them.
	retry.ShouldRetry = func(error) bool { return true }
	retry.OnRetry = resilience.RetryLogger("extract", "navigate")

	err := resilience.Do(ctx, retry, func(ctx context.Context) error {
		return sess.Navigate(ctx, cand.DetailURL)
	})
	if err != nil {
		e.log.Warn("detail navigation failed, degrading record",
			zap.String("name", cand.Name),
			zap.Error(err),
		)
		return e.degraded(cand, category, location, err)
	}

	html, err := sess.HTML(ctx)
	if err != nil {
		return e.degraded(cand, category, location, eris.Wrap(err, "extract: snapshot"))
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return e.degraded(cand, category, location, eris.Wrap(err, "extract: parse"))
	}

	website := findWebsite(doc)
	address := findAddress(doc)
	phone := findPhone(doc, doc.Text())
	email := findEmail(html)

	biz := model.Business{
		BusinessName: cand.Name,
		Category:     category,
		Location:     location,
		DetailURL:    cand.DetailURL,
		WebsiteURL:   website,
		Email:        email,
		Phone:        phone,
		Confidence:   e.confidence(website, address, phone, email),
		Tag:          model.TagFullExtraction,
		Metadata: map[string]any{
			"extraction_method": "detail_page",
			"extracted_at":      time.Now().UTC().Format(time.RFC3339),
			"has_website":       website != "",
			"has_address":       address != "",
			"has_phone":         phone != "",
			"has_email":         email != "",
		},
	}
	if address != "" {
		biz.Metadata["address"] = address
	}
	return biz
}

// confidence starts at the base and adds a weight per populated field,
// capped at 1.0.
func (e *Extractor) confidence(website, address, phone, email string) float64 {
	score := e.cfg.BaseConfidence
	if website != "" {
		score += e.cfg.WebsiteWeight
	}
	if address != "" {
		score += e.cfg.AddressWeight
	}
	if phone != "" {
		score += e.cfg.PhoneWeight
	}
	if email != "" {
		score += e.cfg.EmailWeight
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func (e *Extractor) degraded(cand model.CandidateListing, category, location string, cause error) model.Business {
	return model.Business{
		BusinessName: cand.Name,
		Category:     category,
		Location:     location,
		DetailURL:    cand.DetailURL,
		Confidence:   e.cfg.DegradedConfidence,
		Tag:          model.TagBasicInfoOnly,
		Metadata: map[string]any{
			"extraction_method": "listing_only",
			"navigation_error":  cause.Error(),
		},
	}
}
