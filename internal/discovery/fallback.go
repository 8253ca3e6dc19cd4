package discovery

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/outreachlabs/leadscout/internal/model"
)

const sampleConfidence = 0.5

// sampleCatalogue holds plausible business names per category for synthetic
// fallback records. The restaurant list doubles as the default.
var sampleCatalogue = map[string][]string{
	"restaurant": {
		"The Golden Fork",
		"Mama Rosa's Kitchen",
		"Blue Plate Bistro",
		"Harvest Table",
		"The Corner Grill",
	},
	"cafe": {
		"Morning Brew Coffee",
		"The Daily Grind",
		"Steam & Bean",
		"Cozy Corner Cafe",
		"Sunrise Espresso",
	},
	"plumber": {
		"Reliable Plumbing Co",
		"FastFlow Plumbers",
		"AquaFix Services",
		"Pipe Masters",
		"DrainPro Solutions",
	},
	"dentist": {
		"Bright Smile Dental",
		"Family Dental Care",
		"Gentle Touch Dentistry",
		"Pearl White Dental",
		"Summit Dental Group",
	},
	"lawyer": {
		"Sterling Law Group",
		"Justice Partners LLP",
		"Cornerstone Legal",
		"Meridian Law Offices",
		"Advocate Law Firm",
	},
	"gym": {
		"Iron Peak Fitness",
		"Pulse Gym",
		"FlexZone Training",
		"Summit Strength Club",
		"CoreWorks Fitness",
	},
	"salon": {
		"Shear Elegance",
		"The Style Studio",
		"Luxe Hair Lounge",
		"Polished Beauty Bar",
		"Mane Attraction",
	},
}

// FallbackGenerator produces clearly-labeled synthetic records when every
// live strategy came up empty, so downstream pipelines always have input.
type FallbackGenerator struct {
	limit int
	log   *zap.Logger
}

// NewFallbackGenerator creates a generator emitting at most limit records.
func NewFallbackGenerator(limit int) *FallbackGenerator {
	if limit <= 0 {
		limit = 5
	}
	return &FallbackGenerator{
		limit: limit,
		log:   zap.L().With(zap.String("component", "fallback")),
	}
}

// Generate returns sample businesses matching the request's category as
// closely as the catalogue allows. Every record carries the sample tag and a
// fixed confidence.
func (g *FallbackGenerator) Generate(req model.DiscoveryRequest) []model.Business {
	names := g.namesFor(req.Query)

	n := req.MaxResults
	if n > g.limit {
		n = g.limit
	}
	if n > len(names) {
		n = len(names)
	}

	g.log.Info("generating sample fallback data",
		zap.String("query", req.Query),
		zap.Int("count", n),
	)

	now := time.Now().UTC().Format(time.RFC3339)
	out := make([]model.Business, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Business{
			BusinessName: names[i],
			Category:     req.Query,
			Location:     req.Location + " (Sample)",
			DetailURL:    fmt.Sprintf("https://maps.google.com/sample/%d", i+1),
			WebsiteURL:   model.SlugURL(names[i]),
			Confidence:   sampleConfidence,
			Tag:          model.TagSampleData,
			Metadata: map[string]any{
				"source":       "sample_catalogue",
				"generated_at": now,
			},
		})
	}
	return out
}

// namesFor matches the query against catalogue categories by substring in
// both directions, defaulting to the restaurant list.
func (g *FallbackGenerator) namesFor(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return sampleCatalogue["restaurant"]
	}
	for category, names := range sampleCatalogue {
		if strings.Contains(q, category) || strings.Contains(category, q) {
			return names
		}
	}
	return sampleCatalogue["restaurant"]
}
