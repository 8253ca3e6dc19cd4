package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreachlabs/leadscout/internal/config"
	"github.com/outreachlabs/leadscout/internal/model"
)

type detailSession struct {
	html     string
	navErr   error
	navCalls int
}

func (d *detailSession) Navigate(context.Context, string) error {
	d.navCalls++
	return d.navErr
}
func (d *detailSession) Location(context.Context) (string, error) { return "", nil }
func (d *detailSession) Title(context.Context) (string, error)    { return "", nil }
func (d *detailSession) HTML(context.Context) (string, error)     { return d.html, nil }
func (d *detailSession) ScrollFeed(context.Context, []string) error {
	return nil
}
func (d *detailSession) Close() error { return nil }

func testCfg() config.ExtractConfig {
	cfg := config.Default().Extract
	cfg.NavBackoffMs = 1
	return cfg
}

func cand() model.CandidateListing {
	return model.CandidateListing{
		DetailURL: "https://maps.test/maps/place/joes-diner",
		Name:      "Joe's Diner",
	}
}

const fullDetailPage = `<html><body>
<a data-item-id="authority" href="https://joesdiner.com">joesdiner.com</a>
<button data-item-id="address">123 Congress Ave, Austin, TX 78701</button>
<button data-item-id="phone:tel:5125551234">(512) 555-1234</button>
<span>contact us at info@joesdiner.com</span>
</body></html>`

func TestExtract_FullDetailPage(t *testing.T) {
	sess := &detailSession{html: fullDetailPage}

	biz := NewExtractor(testCfg()).Extract(context.Background(), sess, cand(), "restaurant", "Austin, TX")

	assert.Equal(t, "Joe's Diner", biz.BusinessName)
	assert.Equal(t, "restaurant", biz.Category)
	assert.Equal(t, "https://joesdiner.com", biz.WebsiteURL)
	assert.Equal(t, "(512) 555-1234", biz.Phone)
	assert.Equal(t, "info@joesdiner.com", biz.Email)
	assert.Equal(t, model.TagFullExtraction, biz.Tag)
	// 0.6 base + 0.2 website + 0.1 address + 0.05 phone + 0.05 email
	assert.InDelta(t, 1.0, biz.Confidence, 1e-9)
	assert.Equal(t, true, biz.Metadata["has_website"])
	assert.Equal(t, "detail_page", biz.Metadata["extraction_method"])
}

func TestExtract_PartialFields(t *testing.T) {
	sess := &detailSession{html: `<html><body>
<button data-item-id="address">500 E 5th St, Austin, TX 78701</button>
</body></html>`}

	biz := NewExtractor(testCfg()).Extract(context.Background(), sess, cand(), "cafe", "Austin, TX")

	assert.Empty(t, biz.WebsiteURL)
	assert.Empty(t, biz.Phone)
	assert.Equal(t, model.TagFullExtraction, biz.Tag)
	assert.InDelta(t, 0.7, biz.Confidence, 1e-9)
}

func TestExtract_NavigationFailureDegrades(t *testing.T) {
	sess := &detailSession{navErr: errors.New("net::ERR_CONNECTION_RESET")}

	biz := NewExtractor(testCfg()).Extract(context.Background(), sess, cand(), "cafe", "Austin, TX")

	assert.Equal(t, 3, sess.navCalls)
	assert.Equal(t, model.TagBasicInfoOnly, biz.Tag)
	assert.InDelta(t, 0.5, biz.Confidence, 1e-9)
	assert.Equal(t, "listing_only", biz.Metadata["extraction_method"])
	assert.Contains(t, biz.Metadata["navigation_error"], "ERR_CONNECTION_RESET")
	assert.Equal(t, "Joe's Diner", biz.BusinessName)
}

func TestFindWebsite_SkipsAggregators(t *testing.T) {
	doc := mustDoc(t, `<html><body>
<a data-item-id="authority" href="https://www.facebook.com/joesdiner">fb</a>
<a data-value="Website" href="https://joesdiner.com">site</a>
</body></html>`)
	assert.Equal(t, "https://joesdiner.com", findWebsite(doc))
}

func TestFindWebsite_NoneAcceptable(t *testing.T) {
	doc := mustDoc(t, `<html><body>
<a data-item-id="authority" href="https://maps.google.com/x">maps</a>
</body></html>`)
	assert.Empty(t, findWebsite(doc))
}

func TestFindAddress_RejectsShort(t *testing.T) {
	doc := mustDoc(t, `<html><body>
<button data-item-id="address">Austin</button>
</body></html>`)
	assert.Empty(t, findAddress(doc))
}

func TestFindPhone_RegexFallback(t *testing.T) {
	doc := mustDoc(t, `<html><body><p>Call us: 512.555.9876 today</p></body></html>`)
	assert.Equal(t, "(512) 555-9876", findPhone(doc, doc.Text()))
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "(512) 555-1234", formatPhone("512-555-1234"))
	assert.Equal(t, "(512) 555-1234", formatPhone("1 512 555 1234"))
	assert.Equal(t, "555-1234", formatPhone("555-1234"))
}

func TestFindEmail_Filters(t *testing.T) {
	assert.Equal(t, "sales@joesdiner.com", findEmail(`logo@2x.png joe@gmail.com Sales@JoesDiner.com`))
	assert.Empty(t, findEmail(`nothing here`))
	assert.Empty(t, findEmail(`personal@yahoo.com`))
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}
