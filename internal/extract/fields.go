package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field extraction walks an ordered selector list per field; the first
// selector producing an acceptable value wins, with a regex sweep over the
// raw page as the last resort where one exists.

var websiteSelectors = []string{
	`a[data-item-id="authority"]`,
	`a[data-value="Website"]`,
	`a[aria-label*="Website"]`,
	`a[data-tooltip="Open website"]`,
}

// aggregatorHosts are links that point back at the platform or a social or
// review aggregator rather than the business's own site.
var aggregatorHosts = []string{
	"google.com",
	"gstatic.com",
	"googleusercontent.com",
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"youtube.com",
	"yelp.com",
	"tripadvisor.com",
	"foursquare.com",
}

var addressSelectors = []string{
	`button[data-item-id="address"]`,
	`[data-item-id="address"]`,
	`button[aria-label*="Address"]`,
	`.rogA2c`,
}

var phoneSelectors = []string{
	`button[data-item-id^="phone"]`,
	`[data-item-id^="phone:tel"]`,
	`a[href^="tel:"]`,
	`button[aria-label*="Phone"]`,
}

var (
	phoneRe = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	digitRe = regexp.MustCompile(`\d`)
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
)

// personalEmailDomains are consumer mailbox providers; an address there is
// almost never the business's contact.
var personalEmailDomains = []string{
	"gmail.com",
	"yahoo.com",
	"hotmail.com",
	"outlook.com",
	"aol.com",
	"icloud.com",
	"live.com",
}

// assetSuffixes catch filenames the email regex misreads as addresses
// (e.g. icon@2x.png).
var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}

// findWebsite returns the business's own website URL or "".
func findWebsite(doc *goquery.Document) string {
	for _, sel := range websiteSelectors {
		href := strings.TrimSpace(doc.Find(sel).First().AttrOr("href", ""))
		if acceptWebsite(href) {
			return href
		}
	}
	return ""
}

func acceptWebsite(href string) bool {
	if !strings.HasPrefix(href, "http") {
		return false
	}
	lower := strings.ToLower(href)
	for _, host := range aggregatorHosts {
		if strings.Contains(lower, host) {
			return false
		}
	}
	return true
}

// findAddress returns a street address or "". Short matches are rejected;
// a real address carries at least a number and street.
func findAddress(doc *goquery.Document) string {
	for _, sel := range addressSelectors {
		text := cleanText(doc.Find(sel).First())
		if len(text) > 10 {
			return text
		}
	}
	return ""
}

// findPhone returns a normalized phone number or "". Selector hits are tried
// first, then a regex sweep over the page text.
func findPhone(doc *goquery.Document, pageText string) string {
	for _, sel := range phoneSelectors {
		text := cleanText(doc.Find(sel).First())
		if m := phoneRe.FindString(text); m != "" {
			return formatPhone(m)
		}
	}
	if m := phoneRe.FindString(pageText); m != "" {
		return formatPhone(m)
	}
	return ""
}

// formatPhone normalizes a ten-digit US number to "(aaa) bbb-cccc".
// Anything else is returned trimmed as found.
func formatPhone(raw string) string {
	digits := strings.Join(digitRe.FindAllString(raw, -1), "")
	if len(digits) == 10 {
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	}
	if len(digits) == 11 && digits[0] == '1' {
		return fmt.Sprintf("(%s) %s-%s", digits[1:4], digits[4:7], digits[7:])
	}
	return strings.TrimSpace(raw)
}

// findEmail sweeps the raw page source for a business email address.
func findEmail(html string) string {
	for _, m := range emailRe.FindAllString(html, -1) {
		email := strings.ToLower(m)
		if acceptEmail(email) {
			return email
		}
	}
	return ""
}

func acceptEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 1 {
		return false
	}
	domain := email[at+1:]
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(domain, suffix) {
			return false
		}
	}
	for _, personal := range personalEmailDomains {
		if domain == personal {
			return false
		}
	}
	return true
}

func cleanText(s *goquery.Selection) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s.Text()), " "))
}
