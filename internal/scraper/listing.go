package scraper

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"carlister/scrapeworker/helpers"
	"carlister/scrapeworker/logger"
)

// ListingParser converts one listing page into a ListingRecord. Parsing is
// total: an unrecognized layout yields a degraded, near-empty record, never
// an error.
type ListingParser struct {
	baseURL string
	log     *logger.Logger
}

// NewListingParser creates a listing parser resolving relative image links
// against baseURL.
func NewListingParser(baseURL string) *ListingParser {
	return &ListingParser{
		baseURL: baseURL,
		log:     logger.ForScraper(),
	}
}

// ParseHTML parses raw HTML into a record.
func (p *ListingParser) ParseHTML(html, originalURL string) ListingRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.log.Warn().Err(err).Str("url", originalURL).Msg("Failed to build document, returning degraded record")
		return NewListingRecord(originalURL)
	}
	return p.Parse(doc, originalURL)
}

// Parse runs every field's extractor chain over the document and merges the
// results into one record.
func (p *ListingParser) Parse(doc *goquery.Document, originalURL string) ListingRecord {
	record := NewListingRecord(originalURL)

	record.FullTitle = extractFullTitle(doc)
	record.Make = extractMake(doc)
	record.Model = extractModel(doc)
	record.Year = extractYear(doc)
	record.Price = extractPrice(doc)
	record.Description = extractDescription(doc)
	record.Features = extractFeatures(doc)
	record.Images = extractImages(doc, p.baseURL)
	record.Stats = extractStats(doc)
	record.VIN = extractVIN(doc)
	record.Mileage = extractMileage(doc)

	p.fillFromStats(&record)
	p.deriveFromTitle(&record)

	if record.Make == "" && record.Model == "" && record.Year == 0 {
		p.log.Warn().Str("url", originalURL).Msg("Page layout unrecognized, record is degraded")
	}

	return record
}

// fillFromStats backfills optional fields from the free-form spec pairs.
// Values found by dedicated extractors are never overwritten.
func (p *ListingParser) fillFromStats(record *ListingRecord) {
	stats := record.Stats
	if record.VIN == "" {
		if vin := vinRegex.FindString(strings.ToUpper(statValue(stats, "vin"))); vin != "" {
			record.VIN = vin
		}
	}
	if record.StockNumber == "" {
		record.StockNumber = statValue(stats, "stock")
	}
	if record.ExteriorColor == "" {
		record.ExteriorColor = statValue(stats, "exterior color", "ext. color")
	}
	if record.InteriorColor == "" {
		record.InteriorColor = statValue(stats, "interior color", "int. color")
	}
	if record.Drivetrain == "" {
		record.Drivetrain = statValue(stats, "drivetrain", "drive type")
	}
	if record.Transmission == "" {
		record.Transmission = statValue(stats, "transmission")
	}
	if record.FuelType == "" {
		record.FuelType = statValue(stats, "fuel")
	}
	if record.Mileage == 0 {
		if miles, ok := ParseMileage(statValue(stats, "mileage", "odometer")); ok {
			record.Mileage = miles
		}
	}
}

// deriveFromTitle is the last-resort cross-field derivation: only when
// make, model and year are all unset is the full title token-split into
// them. It never overrides values found by a dedicated extractor.
func (p *ListingParser) deriveFromTitle(record *ListingRecord) {
	if record.Make != "" || record.Model != "" || record.Year != 0 {
		return
	}
	if record.FullTitle == "" {
		return
	}

	year, vehicleMake, model := SplitTitle(record.FullTitle)
	record.Year = year
	record.Make = vehicleMake
	record.Model = model
}

// SplitTitle tokenizes a listing title like "2022 Toyota Camry XSE for
// sale" into year, make and model: the first in-range 4-digit token is the
// year, the next capitalized token the make, and the following capitalized
// tokens the model.
func SplitTitle(title string) (int, string, string) {
	tokens := strings.Fields(helpers.CleanText(title))

	year := 0
	rest := tokens
	for i, token := range tokens {
		if y, ok := ParseYear(token); ok {
			year = y
			rest = tokens[i+1:]
			break
		}
	}

	var vehicleMake string
	var modelTokens []string
	for _, token := range rest {
		if !startsUpper(token) {
			if vehicleMake != "" {
				break
			}
			continue
		}
		if vehicleMake == "" {
			vehicleMake = token
			continue
		}
		modelTokens = append(modelTokens, token)
		if len(modelTokens) == 2 {
			break
		}
	}

	return year, vehicleMake, strings.Join(modelTokens, " ")
}

func startsUpper(token string) bool {
	for _, r := range token {
		return unicode.IsUpper(r) || unicode.IsDigit(r)
	}
	return false
}
