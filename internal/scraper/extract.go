package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"carlister/scrapeworker/helpers"
)

// ExtractFunc is one extraction strategy targeting a single logical field.
// It returns an empty string when the strategy finds nothing valid.
type ExtractFunc func(doc *goquery.Document) string

// firstMatch applies the strategies in priority order and returns the first
// non-empty result.
func firstMatch(doc *goquery.Document, strategies ...ExtractFunc) string {
	for _, strategy := range strategies {
		if strategy == nil {
			continue
		}
		if result := strategy(doc); result != "" {
			return result
		}
	}
	return ""
}

// selectorText returns a strategy extracting the trimmed text of the first
// of the given selectors that matches a node with non-empty text.
func selectorText(selectors ...string) ExtractFunc {
	return func(doc *goquery.Document) string {
		for _, selector := range selectors {
			text := helpers.CleanText(doc.Find(selector).First().Text())
			if text != "" {
				return text
			}
		}
		return ""
	}
}

const (
	minYear = 1900
	maxYear = 2030
)

var (
	yearRegex    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	priceRegex   = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	numericRegex = regexp.MustCompile(`[^0-9.]`)
	vinRegex     = regexp.MustCompile(`\b[A-HJ-NPR-Z0-9]{17}\b`)
	mileageRegex = regexp.MustCompile(`(?i)([0-9][0-9,]*)\s*(?:mi\b|miles\b)`)
)

// ParseYear extracts the first plausible model year from text. Tokens
// outside [1900, 2030] are rejected.
func ParseYear(text string) (int, bool) {
	for _, match := range yearRegex.FindAllString(text, -1) {
		year, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		if year >= minYear && year <= maxYear {
			return year, true
		}
	}
	return 0, false
}

// ParsePrice parses a currency amount from text, stripping symbols and
// separators. Zero and negative amounts are rejected.
func ParsePrice(text string) (float64, bool) {
	stripped := numericRegex.ReplaceAllString(text, "")
	if stripped == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(stripped, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}

// ParseMileage extracts a mileage figure like "42,000 miles" from text.
func ParseMileage(text string) (int, bool) {
	match := mileageRegex.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	miles, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", ""))
	if err != nil || miles <= 0 {
		return 0, false
	}
	return miles, true
}

// DedupeStrings removes duplicates case-insensitively while preserving the
// order and casing of first occurrences.
func DedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, strings.TrimSpace(v))
	}
	return result
}
