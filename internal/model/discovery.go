// Package model defines the data types exchanged by the discovery engine.
package model

import (
	"fmt"
	"strings"
)

// Tag classifies how complete a discovered business record is.
type Tag string

const (
	// TagFullExtraction means the detail page was reached and field
	// extraction ran against it.
	TagFullExtraction Tag = "full_extraction"
	// TagBasicInfoOnly means the detail page could not be loaded and the
	// record carries only the name captured during collection.
	TagBasicInfoOnly Tag = "basic_info_only"
	// TagSampleData marks synthetic fallback records.
	TagSampleData Tag = "sample_data"
)

// DiscoveryRequest is the immutable input of one discovery run.
type DiscoveryRequest struct {
	Query      string `json:"query"`
	Location   string `json:"location"`
	MaxResults int    `json:"max_results"`
}

// Clamp bounds MaxResults to [1, cap] and returns the adjusted request.
func (r DiscoveryRequest) Clamp(maxCap int) DiscoveryRequest {
	if maxCap <= 0 {
		maxCap = 200
	}
	if r.MaxResults < 1 {
		r.MaxResults = 1
	}
	if r.MaxResults > maxCap {
		r.MaxResults = maxCap
	}
	return r
}

// Coordinates is a geographic point used only to bias searches.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within legal lat/lng bounds.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// String renders the point as "lat,lng" for URLs and metadata.
func (c Coordinates) String() string {
	return fmt.Sprintf("%g,%g", c.Lat, c.Lng)
}

// CandidateListing is a minimally-identified business awaiting extraction.
// It lives only within one discovery run.
type CandidateListing struct {
	DetailURL string `json:"detail_url"`
	Name      string `json:"name"`
}

// Business is the engine's output unit.
type Business struct {
	BusinessName string         `json:"business_name"`
	Category     string         `json:"category"`
	Location     string         `json:"location"`
	DetailURL    string         `json:"detail_url"`
	WebsiteURL   string         `json:"website_url,omitempty"`
	Email        string         `json:"email,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Confidence   float64        `json:"discovery_confidence"`
	Metadata     map[string]any `json:"discovery_metadata,omitempty"`
	Tag          Tag            `json:"tag"`
}

// DiscoveryResult aggregates one run's output. It is created fresh per run
// and owned exclusively by the caller once returned.
type DiscoveryResult struct {
	Businesses   []Business     `json:"businesses"`
	SkippedCount int            `json:"skipped_count"`
	ErrorCount   int            `json:"error_count"`
	Errors       []string       `json:"errors,omitempty"`
	Metadata     map[string]any `json:"metadata"`
}

// NewDiscoveryResult creates an empty result with initialized metadata.
func NewDiscoveryResult() *DiscoveryResult {
	return &DiscoveryResult{Metadata: map[string]any{}}
}

// RecordError appends an error string, keeping at most limit entries.
// The error count always increments, even once the list is full.
func (r *DiscoveryResult) RecordError(msg string, limit int) {
	r.ErrorCount++
	if limit <= 0 || len(r.Errors) < limit {
		r.Errors = append(r.Errors, msg)
	}
}

// FallbackUsed reports whether the result was produced by the fallback
// generator rather than live discovery.
func (r *DiscoveryResult) FallbackUsed() bool {
	used, _ := r.Metadata["fallback_used"].(bool)
	return used
}

// SlugURL synthesizes a plausible website URL from a business name, used by
// the fallback generator.
func SlugURL(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, "&", "and")
	slug = strings.ReplaceAll(slug, " ", "")
	var b strings.Builder
	for _, ch := range slug {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		}
	}
	return "https://www." + b.String() + ".com"
}
