package geocode

import (
	"context"
	"net/url"
	"regexp"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/outreachlabs/leadscout/internal/browser"
	"github.com/outreachlabs/leadscout/internal/model"
)

// coordPairRe matches a "lat, lng"-shaped decimal pair in page text.
var coordPairRe = regexp.MustCompile(`(-?\d{1,3}\.\d+),\s*(-?\d{1,3}\.\d+)`)

// mapsURLCoordRe matches the "@lat,lng" fragment of a map surface URL.
var mapsURLCoordRe = regexp.MustCompile(`@(-?\d+\.?\d*),(-?\d+\.?\d*)`)

// WebSearchProvider extracts a coordinate pair from the rendered text of a
// generic web search for "<location> coordinates".
type WebSearchProvider struct {
	searchURL string
}

// NewWebSearchProvider creates the provider. searchURL defaults to Google
// web search when empty.
func NewWebSearchProvider(searchURL string) *WebSearchProvider {
	if searchURL == "" {
		searchURL = "https://www.google.com/search"
	}
	return &WebSearchProvider{searchURL: searchURL}
}

// Name implements Provider.
func (p *WebSearchProvider) Name() string { return "web_search" }

// Available implements Provider.
func (p *WebSearchProvider) Available() bool { return true }

// Resolve implements Provider.
func (p *WebSearchProvider) Resolve(ctx context.Context, location string, sess browser.Session) (*model.Coordinates, error) {
	if sess == nil {
		return nil, eris.New("geocode: web_search requires a browser session")
	}

	target := p.searchURL + "?q=" + url.QueryEscape(location+" coordinates")
	if err := sess.Navigate(ctx, target); err != nil {
		return nil, eris.Wrap(err, "geocode: web_search navigate")
	}

	html, err := sess.HTML(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: web_search snapshot")
	}

	for _, m := range coordPairRe.FindAllStringSubmatch(html, -1) {
		coords, parseErr := parseCoordPair(m[1], m[2])
		if parseErr == nil && coords.Valid() {
			return coords, nil
		}
	}
	return nil, nil
}

// MapsURLProvider navigates the map surface to the location and extracts the
// "@lat,lng" pattern from the URL the surface settles on.
type MapsURLProvider struct {
	mapsSearchURL string
}

// NewMapsURLProvider creates the provider. mapsSearchURL defaults to the
// Google Maps search path when empty.
func NewMapsURLProvider(mapsSearchURL string) *MapsURLProvider {
	if mapsSearchURL == "" {
		mapsSearchURL = "https://www.google.com/maps/search/"
	}
	return &MapsURLProvider{mapsSearchURL: mapsSearchURL}
}

// Name implements Provider.
func (p *MapsURLProvider) Name() string { return "maps_url" }

// Available implements Provider.
func (p *MapsURLProvider) Available() bool { return true }

// Resolve implements Provider.
func (p *MapsURLProvider) Resolve(ctx context.Context, location string, sess browser.Session) (*model.Coordinates, error) {
	if sess == nil {
		return nil, eris.New("geocode: maps_url requires a browser session")
	}

	if err := sess.Navigate(ctx, p.mapsSearchURL+url.QueryEscape(location)); err != nil {
		return nil, eris.Wrap(err, "geocode: maps_url navigate")
	}

	current, err := sess.Location(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: maps_url read location")
	}

	m := mapsURLCoordRe.FindStringSubmatch(current)
	if m == nil {
		return nil, nil
	}
	coords, err := parseCoordPair(m[1], m[2])
	if err != nil || !coords.Valid() {
		return nil, nil
	}
	return coords, nil
}

func parseCoordPair(latStr, lngStr string) (*model.Coordinates, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: parse lat")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: parse lng")
	}
	return &model.Coordinates{Lat: lat, Lng: lng}, nil
}
