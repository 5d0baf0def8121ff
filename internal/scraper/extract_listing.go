package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"carlister/scrapeworker/helpers"
)

// knownMakes backs the lowest-confidence strategies that scan free text for
// a manufacturer name.
var knownMakes = []string{
	"Toyota", "Honda", "Ford", "Chevrolet", "Nissan", "BMW",
	"Mercedes-Benz", "Audi", "Lexus", "Hyundai", "Kia", "Subaru",
	"Volkswagen", "Mazda", "Jeep", "Ram", "GMC", "Dodge", "Tesla",
	"Volvo", "Acura", "Infiniti", "Cadillac", "Buick", "Chrysler",
}

func extractFullTitle(doc *goquery.Document) string {
	return firstMatch(doc,
		selectorText(
			`h1[class*="listing-title"]`,
			`div[class*="vehicle-title"] h1`,
			`h1[class*="title"]`,
		),
		selectorText("title"),
	)
}

func extractMake(doc *goquery.Document) string {
	return firstMatch(doc,
		selectorText(
			`span[class*="make"]`,
			`div[class*="vehicle-title"] span[class*="make"]`,
			`h1[class*="title"] span[class*="make"]`,
			`div[class*="car-info"] span[class*="make"]`,
		),
		makeFromTitle,
	)
}

// makeFromTitle scans the page title for a known manufacturer name.
func makeFromTitle(doc *goquery.Document) string {
	title := strings.ToLower(doc.Find("title").Text())
	if title == "" {
		return ""
	}
	for _, name := range knownMakes {
		if strings.Contains(title, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}

func extractModel(doc *goquery.Document) string {
	return firstMatch(doc,
		selectorText(
			`span[class*="model"]`,
			`div[class*="vehicle-title"] span[class*="model"]`,
			`h1[class*="title"] span[class*="model"]`,
			`div[class*="car-info"] span[class*="model"]`,
		),
	)
}

// extractYear uses dedicated year nodes only; recovering the year from the
// page title is left to the cross-field title derivation so it cannot
// preempt it.
func extractYear(doc *goquery.Document) int {
	selectors := []string{
		`span[class*="year"]`,
		`div[class*="vehicle-title"] span[class*="year"]`,
		`h1[class*="title"] span[class*="year"]`,
	}
	for _, selector := range selectors {
		if year, ok := ParseYear(selectorText(selector)(doc)); ok {
			return year
		}
	}
	return 0
}

func extractPrice(doc *goquery.Document) *float64 {
	// Structured price nodes first.
	priceText := firstMatch(doc,
		selectorText(
			`span[class*="listing-price"]`,
			`div[class*="listing-price"]`,
			`span[class*="car-price"]`,
			`span[class*="price"]`,
			`div[class*="price"]`,
		),
	)
	if price, ok := ParsePrice(priceText); ok {
		return &price
	}

	// Regex fallback over page text for a currency-formatted amount.
	if match := priceRegex.FindStringSubmatch(doc.Text()); match != nil {
		if price, ok := ParsePrice(match[1]); ok {
			return &price
		}
	}
	return nil
}

func extractDescription(doc *goquery.Document) string {
	description := firstMatch(doc,
		selectorText(
			`div[class*="vehicle-description"]`,
			`div[class*="car-description"]`,
			`p[class*="description"]`,
			`div[class*="description"]`,
			`div[class*="overview"]`,
		),
	)
	// Very short matches are usually labels, not the description body.
	if len(description) <= 10 {
		return ""
	}
	return description
}

func extractFeatures(doc *goquery.Document) []string {
	selectors := []string{
		`div[class*="vehicle-features"] li`,
		`div[class*="car-features"] li`,
		`ul[class*="features"] li`,
		`div[class*="features"] li`,
		`div[class*="specs"] li`,
	}

	var features []string
	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if feature := helpers.CleanText(s.Text()); feature != "" {
				features = append(features, feature)
			}
		})
		if len(features) > 0 {
			break
		}
	}
	return DedupeStrings(features)
}

func extractImages(doc *goquery.Document, baseURL string) []string {
	selectors := []string{
		`img[class*="vehicle-image"]`,
		`img[class*="car-image"]`,
		`div[class*="gallery"] img`,
		`img[class*="listing-image"]`,
		`div[class*="car-gallery"] img`,
	}

	var images []string
	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			src, exists := s.Attr("src")
			if !exists || src == "" {
				src, _ = s.Attr("data-src")
			}
			if src == "" {
				return
			}
			images = append(images, helpers.AbsoluteURL(baseURL, src))
		})
		if len(images) > 0 {
			break
		}
	}
	return DedupeStrings(images)
}

// extractStats collects free-form label/value spec pairs. The site's spec
// schema varies per listing, so pairs are kept untyped and in page order.
func extractStats(doc *goquery.Document) []Stat {
	var stats []Stat
	seen := make(map[string]struct{})

	appendStat := func(label, value string) {
		label = helpers.CleanText(strings.TrimSuffix(strings.TrimSpace(label), ":"))
		value = helpers.CleanText(value)
		if label == "" || value == "" {
			return
		}
		key := strings.ToLower(label)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		stats = append(stats, Stat{Label: label, Value: value})
	}

	// Definition lists are the most common spec layout.
	doc.Find(`dl dt`).Each(func(_ int, dt *goquery.Selection) {
		appendStat(dt.Text(), dt.Next().Filter("dd").Text())
	})

	// Label/value row layouts.
	doc.Find(`div[class*="spec-row"], li[class*="spec"], tr[class*="spec"]`).Each(func(_ int, row *goquery.Selection) {
		label := row.Find(`[class*="label"], th`).First().Text()
		value := row.Find(`[class*="value"], td`).First().Text()
		appendStat(label, value)
	})

	return stats
}

func extractVIN(doc *goquery.Document) string {
	vin := firstMatch(doc,
		selectorText(
			`span[class*="vin"]`,
			`div[class*="vin"]`,
		),
	)
	if match := vinRegex.FindString(strings.ToUpper(vin)); match != "" {
		return match
	}
	// VINs frequently appear only in spec text.
	return vinRegex.FindString(strings.ToUpper(doc.Text()))
}

func extractMileage(doc *goquery.Document) int {
	strategies := []ExtractFunc{
		selectorText(
			`span[class*="mileage"]`,
			`div[class*="mileage"]`,
			`span[class*="odometer"]`,
		),
		func(doc *goquery.Document) string { return doc.Text() },
	}
	for _, strategy := range strategies {
		if miles, ok := ParseMileage(strategy(doc)); ok {
			return miles
		}
	}
	return 0
}

// statValue looks up a stat pair whose label contains any of the given
// fragments, case-insensitively.
func statValue(stats []Stat, fragments ...string) string {
	for _, stat := range stats {
		label := strings.ToLower(stat.Label)
		for _, fragment := range fragments {
			if strings.Contains(label, fragment) {
				return stat.Value
			}
		}
	}
	return ""
}
