package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"carlister/scrapeworker/helpers"
	"carlister/scrapeworker/logger"
)

var (
	totalResultsRegex = regexp.MustCompile(`(?i)([0-9][0-9,]*)\s+(?:results|listings|matches|cars)`)
	pageOfRegex       = regexp.MustCompile(`(?i)page\s+([0-9,]+)\s+of\s+([0-9,]+)`)
)

// tileSelectors are tried in order; the first one matching any node on the
// page defines the tile set.
var tileSelectors = []string{
	`[data-cg-ft="srp-listing-blade"]`,
	`div[class*="listing-blade"]`,
	`div[class*="srp-listing"]`,
	`div[class*="listing-tile"]`,
	`div[class*="result-tile"]`,
	`div[class*="inventory-listing"]`,
}

// SearchResultParser converts a multi-listing results page (location search
// or dealer inventory) into a page of listing summaries plus pagination
// metadata.
type SearchResultParser struct {
	baseURL string
	log     *logger.Logger
}

// NewSearchResultParser creates a parser resolving tile links against
// baseURL.
func NewSearchResultParser(baseURL string) *SearchResultParser {
	return &SearchResultParser{
		baseURL: baseURL,
		log:     logger.ForScraper(),
	}
}

// ParseHTML parses raw results-page HTML.
func (p *SearchResultParser) ParseHTML(html string, pageNumber int) SearchResultPage {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.log.Warn().Err(err).Msg("Failed to build results document")
		return SearchResultPage{
			Success:     true,
			Cars:        []ListingRecord{},
			CurrentPage: pageNumber,
			TotalPages:  pageNumber,
		}
	}
	return p.Parse(doc, pageNumber)
}

// Parse extracts listing tiles and pagination metadata. Like the listing
// parser it is total: missing tiles or unparsable counts degrade the page,
// they do not fail it.
func (p *SearchResultParser) Parse(doc *goquery.Document, pageNumber int) SearchResultPage {
	if pageNumber < 1 {
		pageNumber = 1
	}

	page := SearchResultPage{
		Success:     true,
		Cars:        []ListingRecord{},
		CurrentPage: pageNumber,
	}

	tiles := p.findTiles(doc)
	tiles.Each(func(_ int, tile *goquery.Selection) {
		if record, ok := p.parseTile(tile); ok {
			page.Cars = append(page.Cars, record)
		}
	})

	p.parsePagination(doc, &page)
	return page
}

func (p *SearchResultParser) findTiles(doc *goquery.Document) *goquery.Selection {
	for _, selector := range tileSelectors {
		if tiles := doc.Find(selector); tiles.Length() > 0 {
			return tiles
		}
	}
	return doc.Find(tileSelectors[0])
}

// parseTile extracts a lightweight summary from one tile. A tile without a
// title is skipped.
func (p *SearchResultParser) parseTile(tile *goquery.Selection) (ListingRecord, bool) {
	title := helpers.CleanText(firstTileText(tile,
		`h4[class*="title"]`,
		`[class*="listing-title"]`,
		`h4`, `h3`,
	))
	if title == "" {
		return ListingRecord{}, false
	}

	link, _ := tile.Find("a[href]").First().Attr("href")
	tileURL := helpers.AbsoluteURL(p.baseURL, link)

	record := NewListingRecord(tileURL)
	record.FullTitle = title

	year, vehicleMake, model := SplitTitle(title)
	record.Year = year
	record.Make = vehicleMake
	record.Model = model

	priceText := firstTileText(tile,
		`[class*="price"]`,
	)
	if price, ok := ParsePrice(priceText); ok {
		record.Price = &price
	} else if match := priceRegex.FindStringSubmatch(tile.Text()); match != nil {
		if price, ok := ParsePrice(match[1]); ok {
			record.Price = &price
		}
	}

	if miles, ok := ParseMileage(tile.Text()); ok {
		record.Mileage = miles
	}

	if thumb := tileThumbnail(tile); thumb != "" {
		record.Images = []string{helpers.AbsoluteURL(p.baseURL, thumb)}
	}

	return record, true
}

func firstTileText(tile *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(tile.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func tileThumbnail(tile *goquery.Selection) string {
	img := tile.Find("img").First()
	if src, exists := img.Attr("src"); exists && src != "" {
		return src
	}
	if src, exists := img.Attr("data-src"); exists && src != "" {
		return src
	}
	return ""
}

// parsePagination fills totalResults/totalPages/hasNextPage from the
// results-count text and page-navigation controls. An undeterminable total
// defaults hasNextPage to false so pagination stops instead of looping.
func (p *SearchResultParser) parsePagination(doc *goquery.Document, page *SearchResultPage) {
	scopes := []string{
		`[class*="results-count"]`,
		`[class*="result-count"]`,
		`[class*="pagination"]`,
		`[class*="page-info"]`,
	}

	var text strings.Builder
	for _, scope := range scopes {
		doc.Find(scope).Each(func(_ int, s *goquery.Selection) {
			text.WriteString(s.Text())
			text.WriteString(" ")
		})
	}
	if text.Len() == 0 {
		text.WriteString(doc.Text())
	}
	combined := helpers.CleanText(text.String())

	if match := totalResultsRegex.FindStringSubmatch(combined); match != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", "")); err == nil {
			page.TotalResults = n
		}
	}

	if match := pageOfRegex.FindStringSubmatch(combined); match != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(match[2], ",", "")); err == nil && n >= 1 {
			page.TotalPages = n
		}
	}

	if page.TotalPages == 0 {
		// Total pages undeterminable: stop paginating rather than guess.
		p.log.Debug().Int("page", page.CurrentPage).Msg("Pagination metadata undeterminable, stopping at current page")
		page.TotalPages = page.CurrentPage
		page.HasNextPage = false
		return
	}

	page.HasNextPage = page.CurrentPage < page.TotalPages
}
