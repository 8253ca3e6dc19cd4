package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/outreachlabs/leadscout/internal/browser"
	"github.com/outreachlabs/leadscout/internal/config"
	"github.com/outreachlabs/leadscout/internal/model"
	"github.com/outreachlabs/leadscout/internal/resilience"
)

// nominatimResult is one entry of the Nominatim search response.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NominatimProvider geocodes via the OpenStreetMap Nominatim HTTP API,
// constrained to a configured set of country codes. A circuit breaker takes
// the provider out of rotation after repeated failures.
type NominatimProvider struct {
	baseURL      string
	countryCodes string
	userAgent    string
	client       *http.Client
	limiter      *rate.Limiter
	breaker      *resilience.CircuitBreaker
}

// NewNominatimProvider creates a provider from config.
func NewNominatimProvider(cfg config.GeocodeConfig) *NominatimProvider {
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	return &NominatimProvider{
		baseURL:      cfg.NominatimURL,
		countryCodes: cfg.CountryCodes,
		userAgent:    cfg.UserAgent,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		breaker: resilience.NewCircuitBreaker(
			resilience.FromCircuitConfig(cfg.BreakerFailures, cfg.BreakerResetSecs),
		),
	}
}

// Name implements Provider.
func (p *NominatimProvider) Name() string { return "nominatim" }

// Available implements Provider. The provider drops out of the chain while
// its circuit is open.
func (p *NominatimProvider) Available() bool {
	return p.breaker.State() != resilience.CircuitOpen
}

// Resolve implements Provider.
func (p *NominatimProvider) Resolve(ctx context.Context, location string, _ browser.Session) (*model.Coordinates, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim rate limit")
	}

	return resilience.ExecuteVal(ctx, p.breaker, func(ctx context.Context) (*model.Coordinates, error) {
		return p.query(ctx, location)
	})
}

func (p *NominatimProvider) query(ctx context.Context, location string) (*model.Coordinates, error) {
	params := url.Values{
		"q":              {location},
		"format":         {"json"},
		"limit":          {"1"},
		"addressdetails": {"1"},
		"countrycodes":   {p.countryCodes},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim build request")
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim read body")
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse response")
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse lat")
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse lon")
	}

	coords := &model.Coordinates{Lat: lat, Lng: lng}
	if !coords.Valid() {
		return nil, eris.Errorf("geocode: nominatim out-of-bounds coordinates %s", coords)
	}
	return coords, nil
}
