package discovery

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreachlabs/leadscout/internal/browser"
	"github.com/outreachlabs/leadscout/internal/config"
	"github.com/outreachlabs/leadscout/internal/model"
)

func engineCfg() *config.Config {
	cfg := config.Default()
	cfg.Discovery.DelayMinMs = 0
	cfg.Discovery.DelayMaxMs = 0
	cfg.Extract.NavBackoffMs = 1
	return cfg
}

func austinReq(maxResults int) model.DiscoveryRequest {
	return model.DiscoveryRequest{Query: "restaurant", Location: "Austin, TX", MaxResults: maxResults}
}

type coordResolver struct{ coords *model.Coordinates }

func (r coordResolver) Resolve(context.Context, string, browser.Session) *model.Coordinates {
	return r.coords
}

func TestEngine_HealthySurface(t *testing.T) {
	factory := &mockFactory{handle: healthyHandler(map[string]string{
		"https://maps.test/maps/place/a": "Joe's Diner",
		"https://maps.test/maps/place/b": "Moe's Cafe",
		"https://maps.test/maps/place/c": "The Blue Plate",
	})}
	engine := NewEngine(engineCfg(), factory, nil)

	result := engine.Discover(context.Background(), austinReq(10), nil)

	require.Len(t, result.Businesses, 3)
	assert.False(t, result.FallbackUsed())
	assert.Equal(t, false, result.Metadata["fallback_used"])
	for _, biz := range result.Businesses {
		assert.Equal(t, model.TagFullExtraction, biz.Tag)
		assert.Equal(t, "https://example-biz.com", biz.WebsiteURL)
		assert.InDelta(t, 1.0, biz.Confidence, 1e-9)
	}
	// Below the quota, so every strategy runs; later ones only find dupes.
	assert.Equal(t, []string{"maps_search", "local_search", "generic_search"}, result.Metadata["strategies_attempted"])
	assert.NotEmpty(t, result.Metadata["run_id"])
	assert.True(t, factory.allClosed())
}

func TestEngine_RespectsMaxResults(t *testing.T) {
	factory := &mockFactory{handle: healthyHandler(map[string]string{
		"https://maps.test/maps/place/a": "Joe's Diner",
		"https://maps.test/maps/place/b": "Moe's Cafe",
		"https://maps.test/maps/place/c": "The Blue Plate",
	})}
	engine := NewEngine(engineCfg(), factory, nil)

	result := engine.Discover(context.Background(), austinReq(2), nil)
	assert.Len(t, result.Businesses, 2)
}

func TestEngine_ClampsZeroMaxResults(t *testing.T) {
	factory := &mockFactory{handle: healthyHandler(map[string]string{
		"https://maps.test/maps/place/a": "Joe's Diner",
	})}
	engine := NewEngine(engineCfg(), factory, nil)

	result := engine.Discover(context.Background(), austinReq(0), nil)
	assert.Len(t, result.Businesses, 1)
}

func TestEngine_AllStrategiesBlockedFallsBack(t *testing.T) {
	factory := &mockFactory{handle: func(string) (string, error) { return blockedPage, nil }}
	engine := NewEngine(engineCfg(), factory, nil)

	result := engine.Discover(context.Background(), austinReq(10), nil)

	require.Len(t, result.Businesses, 5)
	assert.True(t, result.FallbackUsed())
	assert.Equal(t, "scraping_failed", result.Metadata["fallback_reason"])
	for _, biz := range result.Businesses {
		assert.Equal(t, model.TagSampleData, biz.Tag)
		assert.InDelta(t, 0.5, biz.Confidence, 1e-9)
		assert.Contains(t, biz.Location, "(Sample)")
	}
	assert.Equal(t, []string{"maps_search", "local_search", "generic_search"}, result.Metadata["strategies_attempted"])
	assert.GreaterOrEqual(t, result.ErrorCount, 3)
	assert.True(t, factory.allClosed())
}

func TestEngine_SessionStartFailureFallsBack(t *testing.T) {
	factory := &mockFactory{failNew: true}
	engine := NewEngine(engineCfg(), factory, nil)

	result := engine.Discover(context.Background(), austinReq(4), nil)

	require.Len(t, result.Businesses, 4)
	assert.True(t, result.FallbackUsed())
	assert.Equal(t, 3, result.ErrorCount)
}

func TestEngine_DegradedCandidateDoesNotSinkRun(t *testing.T) {
	badURL := "https://maps.test/maps/place/bad"
	handler := func(url string) (string, error) {
		if url == badURL {
			return "", errors.New("net::ERR_TIMED_OUT")
		}
		if strings.Contains(url, "/maps/place/") {
			return detailPage("https://example-biz.com", "(512) 555-0100", "hello@example-biz.com"), nil
		}
		return mapsListing(map[string]string{
			"https://maps.test/maps/place/good": "Joe's Diner",
			badURL:                              "Flaky Fixtures",
		}), nil
	}
	factory := &mockFactory{handle: handler}
	engine := NewEngine(engineCfg(), factory, nil)

	result := engine.Discover(context.Background(), austinReq(10), nil)

	require.Len(t, result.Businesses, 2)
	assert.False(t, result.FallbackUsed())

	tags := map[model.Tag]int{}
	for _, biz := range result.Businesses {
		tags[biz.Tag]++
		if biz.Tag == model.TagBasicInfoOnly {
			assert.InDelta(t, 0.5, biz.Confidence, 1e-9)
		}
	}
	assert.Equal(t, 1, tags[model.TagFullExtraction])
	assert.Equal(t, 1, tags[model.TagBasicInfoOnly])

	// The maps session runs first and retries the flaky detail page.
	require.NotEmpty(t, factory.sessions)
	assert.Equal(t, 3, factory.sessions[0].navCount(badURL))
	assert.GreaterOrEqual(t, result.ErrorCount, 1)
}

func TestEngine_LaterStrategyTopsUpQuota(t *testing.T) {
	handler := func(url string) (string, error) {
		switch {
		case strings.Contains(url, "/maps/place/"):
			return detailPage("https://example-biz.com", "(512) 555-0100", "hello@example-biz.com"), nil
		case strings.Contains(url, "google.com/maps/search"):
			return mapsListing(map[string]string{
				"https://maps.test/maps/place/a": "Joe's Diner",
			}), nil
		case strings.Contains(url, "tbm=lcl"):
			return mapsListing(map[string]string{
				"https://maps.test/maps/place/b": "Moe's Cafe",
				"https://maps.test/maps/place/c": "The Blue Plate",
			}), nil
		default:
			return mapsListing(nil), nil
		}
	}
	factory := &mockFactory{handle: handler}
	engine := NewEngine(engineCfg(), factory, nil)

	result := engine.Discover(context.Background(), austinReq(3), nil)

	require.Len(t, result.Businesses, 3)
	assert.False(t, result.FallbackUsed())

	// Maps under-fills with one hit; local search supplies the remainder and
	// the quota is met before generic search is needed.
	assert.Equal(t, []string{"maps_search", "local_search"}, result.Metadata["strategies_attempted"])

	urls := map[string]bool{}
	for _, biz := range result.Businesses {
		urls[biz.DetailURL] = true
	}
	assert.Len(t, urls, 3)
}

func TestEngine_StopSignalReturnsImmediately(t *testing.T) {
	factory := &mockFactory{handle: healthyHandler(map[string]string{
		"https://maps.test/maps/place/a": "Joe's Diner",
	})}
	engine := NewEngine(engineCfg(), factory, nil)

	result := engine.Discover(context.Background(), austinReq(10), func() bool { return true })

	// Nothing live was attempted, so the run degrades to sample data.
	assert.True(t, result.FallbackUsed())
	assert.Empty(t, factory.sessions)
}

func TestEngine_CoordinateBias(t *testing.T) {
	factory := &mockFactory{handle: healthyHandler(map[string]string{
		"https://maps.test/maps/place/a": "Joe's Diner",
	})}
	engine := NewEngine(engineCfg(), factory, coordResolver{&model.Coordinates{Lat: 30.2672, Lng: -97.7431}})

	result := engine.Discover(context.Background(), austinReq(5), nil)

	assert.Equal(t, "30.2672,-97.7431", result.Metadata["coordinates"])

	// First session resolves the location, second runs the maps strategy.
	require.GreaterOrEqual(t, len(factory.sessions), 2)
	found := false
	for url := range factory.sessions[1].navCalls {
		if strings.Contains(url, "@30.2672,-97.7431,12z") {
			found = true
		}
	}
	assert.True(t, found, "maps entry URL should carry the coordinate bias")
}

func TestEngine_DiscoverAll(t *testing.T) {
	factory := &mockFactory{handle: healthyHandler(map[string]string{
		"https://maps.test/maps/place/a": "Joe's Diner",
	})}
	engine := NewEngine(engineCfg(), factory, nil)

	reqs := []model.DiscoveryRequest{
		{Query: "restaurant", Location: "Austin, TX", MaxResults: 2},
		{Query: "cafe", Location: "Denver, CO", MaxResults: 2},
	}
	results := engine.DiscoverAll(context.Background(), reqs, nil)

	require.Len(t, results, 2)
	assert.Equal(t, "restaurant", results[0].Metadata["query"])
	assert.Equal(t, "cafe", results[1].Metadata["query"])
	assert.True(t, factory.allClosed())
}
