// Package stealth supplies randomized browser identities and detects
// bot-challenge pages.
package stealth

import (
	"math/rand/v2"
)

// Fingerprint is a randomized browser identity applied to a fresh session.
type Fingerprint struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	Locale         string
	Timezone       string
	// Jittered geolocation reported to the page.
	Latitude  float64
	Longitude float64
}

var userAgents = []string{
	// Chrome on Windows
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36",
	// Chrome on macOS
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	// Firefox on Windows
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0",
	// Firefox on macOS
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
	// Safari on macOS
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Safari/605.1.15",
	// Edge on Windows
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
}

var viewports = [][2]int{
	{1920, 1080},
	{1366, 768},
	{1536, 864},
	{1440, 900},
	{1280, 720},
	{1600, 900},
	{1920, 1200},
}

var locales = []string{"en-US", "en-GB", "en-CA", "en-AU"}

var timezones = []string{
	"America/New_York",
	"America/Los_Angeles",
	"America/Chicago",
	"Europe/London",
}

// Geolocation base with ±0.1° jitter applied per fingerprint.
const (
	baseLatitude  = 40.7128
	baseLongitude = -74.0060
)

// NewFingerprint returns a fresh randomized identity.
func NewFingerprint() Fingerprint {
	vp := viewports[rand.IntN(len(viewports))]
	return Fingerprint{
		UserAgent:      userAgents[rand.IntN(len(userAgents))],
		ViewportWidth:  vp[0],
		ViewportHeight: vp[1],
		Locale:         locales[rand.IntN(len(locales))],
		Timezone:       timezones[rand.IntN(len(timezones))],
		Latitude:       baseLatitude + (rand.Float64()*0.2 - 0.1),
		Longitude:      baseLongitude + (rand.Float64()*0.2 - 0.1),
	}
}

// Headers returns the extra HTTP headers sent with every request of a session
// using this fingerprint.
func (f Fingerprint) Headers() map[string]string {
	return map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language":           f.Locale + ",en;q=0.9",
		"Accept-Encoding":           "gzip, deflate, br",
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Cache-Control":             "max-age=0",
	}
}
