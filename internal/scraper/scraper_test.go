package scraper

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund-scraper/internal/model"
)

const crowdcubeCard = `
<section class="cc-card">
  <a href="  /companies/solar-roof/pitches/abc  ">
    <h1>
      Solar   Roof
    </h1>
  </a>
  <a href="/second">second</a>
  <div class="cc-card__body"><p>Panels for every&nbsp;roof.</p></div>
  <div class="cc-card__stats">
    <div class="cc-inlineStats__group"><span class="cc-inlineStats__value">£1,234,567</span></div>
    <div class="cc-card__progress">
      <div class="cc-progressBar"><span>112%</span><span>ignored</span></div>
    </div>
  </div>
  <div class="cc-card__daysLeft">14 days left</div>
</section>`

func firstCard(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	card := doc.Find("section.cc-card").First()
	require.Equal(t, 1, card.Length())
	return card
}

func TestExtractCrowdcubeCard(t *testing.T) {
	extractor := NewExtractor(DefaultCrowdcubeSelectors().Fields, model.SourceCrowdcube, false)

	record, err := extractor.Extract(firstCard(t, crowdcubeCard))
	require.NoError(t, err)

	assert.Equal(t, "Solar Roof", record.Title)
	assert.Equal(t, "/companies/solar-roof/pitches/abc", record.Link)
	assert.Equal(t, "Panels for every roof.", record.Summary)
	assert.Equal(t, 1234567.0, record.AmountRaised.MustGet())
	assert.Equal(t, 112.0, record.Percentage.MustGet())
	assert.Equal(t, 14, record.DaysLeft.MustGet())
	assert.Equal(t, model.SourceCrowdcube, record.Source)
}

func TestExtractMissingFieldsDegrade(t *testing.T) {
	extractor := NewExtractor(DefaultCrowdcubeSelectors().Fields, model.SourceCrowdcube, false)

	record, err := extractor.Extract(firstCard(t, `<section class="cc-card"><h1>Only a title</h1></section>`))
	require.NoError(t, err)

	assert.Equal(t, "Only a title", record.Title)
	assert.Equal(t, "", record.Link)
	assert.Equal(t, "", record.Summary)
	assert.True(t, record.AmountRaised.IsAbsent())
	assert.True(t, record.DaysLeft.IsAbsent())
	assert.Equal(t, model.SourceCrowdcube, record.Source)
}

func TestExtractMissingAttributeIsEmpty(t *testing.T) {
	fields := []FieldDescriptor{{Key: model.KeyLink, Selector: "a", Type: FieldString, Attr: "href"}}
	extractor := NewExtractor(fields, model.SourceCrowdcube, false)

	record, err := extractor.Extract(firstCard(t, `<section class="cc-card"><a>no href</a></section>`))
	require.NoError(t, err)
	assert.Equal(t, "", record.Link)
}

func TestExtractNumericWithoutDigits(t *testing.T) {
	html := `<section class="cc-card"><div class="cc-card__daysLeft">Closing soon</div></section>`
	fields := []FieldDescriptor{{Key: model.KeyDaysLeft, Selector: "div.cc-card__daysLeft", Type: FieldInt}}

	lenient := NewExtractor(fields, model.SourceCrowdcube, false)
	record, err := lenient.Extract(firstCard(t, html))
	require.NoError(t, err)
	assert.True(t, record.DaysLeft.IsAbsent())

	strict := NewExtractor(fields, model.SourceCrowdcube, true)
	_, err = strict.Extract(firstCard(t, html))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoDigits))

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, model.KeyDaysLeft, fieldErr.Key)
	assert.Equal(t, "Closing soon", fieldErr.Raw)
}

func TestExtractDaysOutOfRange(t *testing.T) {
	html := `<section class="cc-card"><div class="cc-card__daysLeft">99999999999999999999999 days left</div></section>`
	fields := []FieldDescriptor{{Key: model.KeyDaysLeft, Selector: "div.cc-card__daysLeft", Type: FieldInt}}

	record, err := NewExtractor(fields, model.SourceCrowdcube, false).Extract(firstCard(t, html))
	require.NoError(t, err)
	assert.True(t, record.DaysLeft.IsAbsent())

	_, err = NewExtractor(fields, model.SourceCrowdcube, true).Extract(firstCard(t, html))
	assert.True(t, errors.Is(err, model.ErrOutOfRange))

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, model.KeyDaysLeft, fieldErr.Key)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"1,234 raised", 1234, false},
		{"1,234 backers", 1234, false},
		{"£12,500.75", 12500, false},
		{"Raised: 98%", 98, false},
		{"0", 0, false},
		{"", 0, true},
		{"no digits", 0, true},
	}

	for _, tt := range tests {
		value, err := ParseNumber(tt.input)
		if tt.wantErr {
			assert.True(t, errors.Is(err, ErrNoDigits), "ParseNumber(%q)", tt.input)
			continue
		}
		require.NoError(t, err, "ParseNumber(%q)", tt.input)
		assert.Equal(t, tt.expected, value, "ParseNumber(%q)", tt.input)
	}
}

func TestParseListingCardsAndCursor(t *testing.T) {
	page := `<html><body>` + strings.Repeat(crowdcubeCard, 3) +
		`<div id="cc-opportunities__paginate" data-nextcursor="abc123"></div></body></html>`

	s := NewScraper(DefaultCrowdcubeSelectors(), model.SourceCrowdcube, false)
	listing, err := s.ParseListing(page)
	require.NoError(t, err)

	assert.Len(t, listing.Records, 3)
	assert.Equal(t, "abc123", listing.Cursor.MustGet())
}

func TestParseListingWithoutPaginator(t *testing.T) {
	s := NewScraper(DefaultCrowdcubeSelectors(), model.SourceCrowdcube, false)

	listing, err := s.ParseListing(crowdcubeCard + crowdcubeCard)
	require.NoError(t, err)
	assert.Len(t, listing.Records, 2)
	assert.True(t, listing.Cursor.IsAbsent())

	listing, err = s.ParseListing(`<div id="cc-opportunities__paginate" data-nextcursor=""></div>`)
	require.NoError(t, err)
	assert.Empty(t, listing.Records)
	assert.True(t, listing.Cursor.IsAbsent())
}

func TestParseListingStrictFailure(t *testing.T) {
	s := NewScraper(DefaultCrowdcubeSelectors(), model.SourceCrowdcube, true)

	_, err := s.ParseListing(`<section class="cc-card"><div class="cc-card__daysLeft">soon</div></section>`)
	assert.True(t, errors.Is(err, ErrNoDigits))
}

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"content": "<section class=\"cc-card\"></section>", "cursorNext": "next-1"}`))
	require.NoError(t, err)
	assert.Equal(t, `<section class="cc-card"></section>`, env.Content)
	assert.Equal(t, "next-1", env.CursorNext.MustGet())

	env, err = ParseEnvelope([]byte(`{"content": "", "cursorNext": null}`))
	require.NoError(t, err)
	assert.True(t, env.CursorNext.IsAbsent())
}

func TestParseEnvelopeMalformed(t *testing.T) {
	bodies := []string{
		`{"cursorNext": null}`,
		`{"content": "<p></p>"}`,
		`{"content": 5, "cursorNext": null}`,
		`<html>not json</html>`,
	}

	for _, body := range bodies {
		_, err := ParseEnvelope([]byte(body))
		assert.True(t, errors.Is(err, ErrMalformedEnvelope), "body %s", body)
	}
}
