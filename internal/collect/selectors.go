package collect

import "strings"

// SelectorSet describes how one search surface exposes listings: an ordered
// list of listing selectors (first non-empty match wins), the attributes a
// display name may live in, and a link acceptance check.
type SelectorSet struct {
	Listing    []string
	NameAttrs  []string
	AcceptLink func(href string) bool
	// FeedSelectors locate the scrollable results feed; the page body is
	// scrolled when none match.
	FeedSelectors []string
}

// searchEngineHosts are never business detail pages.
var searchEngineHosts = []string{
	"google.com/search",
	"google.com/maps",
	"google.com/url",
	"webcache.googleusercontent.com",
	"accounts.google.com",
	"support.google.com",
	"policies.google.com",
}

// MapsSelectors targets the map-search results feed.
func MapsSelectors() SelectorSet {
	return SelectorSet{
		Listing: []string{
			`[role="feed"] > div > div > a`,
			`.Nv2PK a`,
			`[data-value="Search results"] a`,
			`.section-result a`,
			`.section-result-content a`,
			`a[href*="/maps/place/"]`,
		},
		NameAttrs: []string{"aria-label", "title", "data-value"},
		AcceptLink: func(href string) bool {
			return strings.Contains(href, "/maps/place/")
		},
		FeedSelectors: []string{`[role="feed"]`, `.m6QErb`},
	}
}

// LocalSelectors targets the local-pack variant of web search.
func LocalSelectors() SelectorSet {
	return SelectorSet{
		Listing: []string{
			`div[jscontroller] a[href*="/maps/place/"]`,
			`.rllt__details a`,
			`.VkpGBb a`,
			`a[href*="/maps/place/"]`,
		},
		NameAttrs: []string{"aria-label", "title", "data-value"},
		AcceptLink: func(href string) bool {
			return strings.Contains(href, "/maps/place/")
		},
		FeedSelectors: []string{`#search`, `#rso`},
	}
}

// GenericSelectors targets plain web-search results: any outbound link that
// is not a search-engine internal page.
func GenericSelectors() SelectorSet {
	return SelectorSet{
		Listing: []string{
			`div#search a[href^="http"]`,
			`div#rso a[href^="http"]`,
			`a[href^="http"]`,
		},
		NameAttrs: []string{"aria-label", "title"},
		AcceptLink: func(href string) bool {
			if !strings.HasPrefix(href, "http") {
				return false
			}
			lower := strings.ToLower(href)
			for _, host := range searchEngineHosts {
				if strings.Contains(lower, host) {
					return false
				}
			}
			return true
		},
		FeedSelectors: []string{`#search`, `#rso`},
	}
}
