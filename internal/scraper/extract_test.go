package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	assert.NoError(t, err)
	return doc
}

func TestParseYear(t *testing.T) {
	testCases := []struct {
		text     string
		expected int
		ok       bool
	}{
		{"2022 Toyota Camry", 2022, true},
		{"Year: 1998", 1998, true},
		{"9999 Toyota Camry", 0, false},
		{"1899 antique", 0, false},
		{"no year here", 0, false},
		{"built in 1850, restored 2015", 2015, true},
	}

	for _, tc := range testCases {
		year, ok := ParseYear(tc.text)
		assert.Equal(t, tc.ok, ok, tc.text)
		assert.Equal(t, tc.expected, year, tc.text)
	}
}

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		text     string
		expected float64
		ok       bool
	}{
		{"$28,500", 28500, true},
		{"28500", 28500, true},
		{"$1,250.50", 1250.50, true},
		{"Call for price", 0, false},
		{"$0", 0, false},
		{"", 0, false},
	}

	for _, tc := range testCases {
		price, ok := ParsePrice(tc.text)
		assert.Equal(t, tc.ok, ok, tc.text)
		assert.Equal(t, tc.expected, price, tc.text)
	}
}

func TestParseMileage(t *testing.T) {
	miles, ok := ParseMileage("42,000 miles")
	assert.True(t, ok)
	assert.Equal(t, 42000, miles)

	miles, ok = ParseMileage("Mileage: 87,123 mi")
	assert.True(t, ok)
	assert.Equal(t, 87123, miles)

	_, ok = ParseMileage("500 milestones")
	assert.False(t, ok)
}

func TestDedupeStrings(t *testing.T) {
	result := DedupeStrings([]string{"AC", "ac", "Bluetooth", "", " Bluetooth ", "Sunroof"})
	assert.Equal(t, []string{"AC", "Bluetooth", "Sunroof"}, result)
}

func TestExtractPriceFallsBackToRegex(t *testing.T) {
	// No dedicated price node, but a currency amount appears in page text
	doc := mustDoc(t, `
		<html><body>
			<div class="some-panel">Great deal at $28,500 near you</div>
		</body></html>
	`)

	price := extractPrice(doc)
	assert.NotNil(t, price)
	assert.Equal(t, 28500.0, *price)
}

func TestExtractPricePrefersStructuredNode(t *testing.T) {
	doc := mustDoc(t, `
		<html><body>
			<span class="listing-price">$19,995</span>
			<div>elsewhere on the page: $1</div>
		</body></html>
	`)

	price := extractPrice(doc)
	assert.NotNil(t, price)
	assert.Equal(t, 19995.0, *price)
}

func TestExtractYearRejectsOutOfRange(t *testing.T) {
	doc := mustDoc(t, `
		<html><head><title>9999 Toyota Camry</title></head>
		<body><span class="year">9999</span></body></html>
	`)

	assert.Equal(t, 0, extractYear(doc))
}

func TestExtractFeaturesDedupes(t *testing.T) {
	doc := mustDoc(t, `
		<html><body>
			<ul class="features-list">
				<li>AC</li>
				<li>ac</li>
				<li>Bluetooth</li>
			</ul>
		</body></html>
	`)

	assert.Equal(t, []string{"AC", "Bluetooth"}, extractFeatures(doc))
}

func TestExtractImagesResolvesRelative(t *testing.T) {
	doc := mustDoc(t, `
		<html><body>
			<div class="gallery">
				<img src="/images/car-1.jpg" />
				<img src="https://cdn.example.com/car-2.jpg" />
				<img src="/images/car-1.jpg" />
			</div>
		</body></html>
	`)

	images := extractImages(doc, "https://www.cargurus.com")
	assert.Equal(t, []string{
		"https://www.cargurus.com/images/car-1.jpg",
		"https://cdn.example.com/car-2.jpg",
	}, images)
}

func TestExtractStats(t *testing.T) {
	doc := mustDoc(t, `
		<html><body>
			<dl>
				<dt>Drivetrain:</dt><dd>AWD</dd>
				<dt>Fuel Type</dt><dd>Gasoline</dd>
			</dl>
		</body></html>
	`)

	stats := extractStats(doc)
	assert.Equal(t, []Stat{
		{Label: "Drivetrain", Value: "AWD"},
		{Label: "Fuel Type", Value: "Gasoline"},
	}, stats)
}

func TestExtractVIN(t *testing.T) {
	doc := mustDoc(t, `
		<html><body>
			<span class="vin-number">VIN: 1HGCM82633A004352</span>
		</body></html>
	`)

	assert.Equal(t, "1HGCM82633A004352", extractVIN(doc))
}

func TestStatValue(t *testing.T) {
	stats := []Stat{
		{Label: "Exterior Color", Value: "Midnight Black"},
		{Label: "Stock #", Value: "T12345"},
	}

	assert.Equal(t, "Midnight Black", statValue(stats, "exterior color"))
	assert.Equal(t, "T12345", statValue(stats, "stock"))
	assert.Equal(t, "", statValue(stats, "drivetrain"))
}
