package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"carlister/scrapeworker/config"
	"carlister/scrapeworker/logger"
	"carlister/scrapeworker/pkg/errors"
	"carlister/scrapeworker/services/publisher"
)

// failedScrapeMessage is the only failure text callers ever see for a
// page that could not be fetched or extracted. Detail stays in the logs.
const failedScrapeMessage = "failed to extract car details from the provided URL"

// Coordinator is the public entry point of the extraction pipeline. It
// validates input, wires fetcher and parsers together and maps every
// internal failure to a typed result. It holds no per-call state, so calls
// may run concurrently.
type Coordinator struct {
	fetcher       PageFetcher
	listingParser *ListingParser
	searchParser  *SearchResultParser
	publisher     publisher.Publisher
	baseURL       string
	hydrationCap  int
	hydrationMax  int
	log           *logger.Logger
}

// NewCoordinator wires the pipeline. pub may be nil, which disables record
// publishing.
func NewCoordinator(cfg config.Config, fetcher PageFetcher, pub publisher.Publisher) *Coordinator {
	return &Coordinator{
		fetcher:       fetcher,
		listingParser: NewListingParser(cfg.BaseURL),
		searchParser:  NewSearchResultParser(cfg.BaseURL),
		publisher:     pub,
		baseURL:       cfg.BaseURL,
		hydrationCap:  cfg.HydrationConcurrency,
		hydrationMax:  cfg.HydrationMaxPerPage,
		log:           logger.ForScraper(),
	}
}

// ScrapeListing scrapes one listing page by URL.
func (c *Coordinator) ScrapeListing(ctx context.Context, pageURL string) (ListingRecord, error) {
	start := time.Now()

	if !IsListingURL(pageURL) {
		return ListingRecord{}, errors.NewValidation("scraper", "invalid CarGurus listing URL")
	}

	html, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		c.log.Error().Err(err).Str("url", pageURL).Msg("Listing fetch failed")
		return ListingRecord{}, errors.NewFetch("scraper", failedScrapeMessage, err)
	}

	record := c.listingParser.ParseHTML(html, pageURL)
	if record.Make == "" && record.Model == "" && record.Year == 0 {
		// The page fetched fine but none of the identifying fields came
		// out; a record this empty is a failure, not a result.
		c.log.Warn().Str("url", pageURL).Msg("No identifying fields extracted")
		return ListingRecord{}, errors.NewParsing("scraper", failedScrapeMessage, nil)
	}
	c.publishRecords(record)

	c.log.Info().
		Str("url", pageURL).
		Str("make", record.Make).
		Str("model", record.Model).
		Int("year", record.Year).
		Dur("elapsed", time.Since(start)).
		Msg("Scraped listing")

	return record, nil
}

// SearchInventory runs a paginated location-based inventory search.
//
// The returned page is always well-formed; the error is non-nil only for
// validation failures so the transport layer can map them to 400.
func (c *Coordinator) SearchInventory(ctx context.Context, req SearchRequest) (SearchResultPage, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if err := validateSearch(req); err != nil {
		return failedPage(req.Page, err.Message), err
	}
	return c.fetchResultPage(ctx, BuildSearchURL(c.baseURL, req), req.Page), nil
}

// DealerInventory fetches one page of a dealer's inventory.
func (c *Coordinator) DealerInventory(ctx context.Context, req DealerRequest) (SearchResultPage, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.EntityID == "" {
		err := errors.NewValidation("scraper", "dealerEntityId is required")
		return failedPage(req.Page, err.Message), err
	}
	return c.fetchResultPage(ctx, BuildDealerURL(c.baseURL, req), req.Page), nil
}

// fetchResultPage is the shared fetch+parse+hydrate path for both result
// page operations.
func (c *Coordinator) fetchResultPage(ctx context.Context, pageURL string, pageNumber int) SearchResultPage {
	start := time.Now()

	html, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		c.log.Error().Err(err).Str("url", pageURL).Msg("Results fetch failed")
		page := failedPage(pageNumber, failedScrapeMessage)
		page.ProcessingTime = time.Since(start).Seconds()
		return page
	}

	page := c.searchParser.ParseHTML(html, pageNumber)
	c.hydrate(ctx, &page)
	c.publishRecords(page.Cars...)

	page.ProcessingTime = time.Since(start).Seconds()
	c.log.Info().
		Str("url", pageURL).
		Int("cars", len(page.Cars)).
		Int("total_results", page.TotalResults).
		Float64("processing_time", page.ProcessingTime).
		Msg("Parsed results page")

	return page
}

// hydrate re-fetches under-specified tiles (those without enough images to
// build a gallery) through the listing parser. The fan-out is bounded both
// in concurrency and in the number of tiles hydrated per page, and a failed
// hydration degrades only its own tile.
func (c *Coordinator) hydrate(ctx context.Context, page *SearchResultPage) {
	if c.hydrationMax == 0 {
		return
	}

	var targets []int
	for i := range page.Cars {
		if len(page.Cars[i].Images) <= 1 && page.Cars[i].OriginalURL != "" {
			targets = append(targets, i)
		}
		if len(targets) == c.hydrationMax {
			break
		}
	}
	if len(targets) == 0 {
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.hydrationCap)

	for _, idx := range targets {
		idx := idx
		group.Go(func() error {
			tileURL := page.Cars[idx].OriginalURL
			html, err := c.fetcher.Fetch(groupCtx, tileURL)
			if err != nil {
				c.log.Warn().Err(err).Str("url", tileURL).Msg("Tile hydration failed, keeping summary")
				return nil
			}
			full := c.listingParser.ParseHTML(html, tileURL)
			mergeHydrated(&page.Cars[idx], full)
			return nil
		})
	}
	group.Wait()
}

// mergeHydrated fills a tile summary with fields recovered from the full
// listing page. Summary values win wherever both are present, except the
// image gallery which prefers the richer set.
func mergeHydrated(summary *ListingRecord, full ListingRecord) {
	if len(full.Images) > len(summary.Images) {
		summary.Images = full.Images
	}
	if summary.Make == "" {
		summary.Make = full.Make
	}
	if summary.Model == "" {
		summary.Model = full.Model
	}
	if summary.Year == 0 {
		summary.Year = full.Year
	}
	if summary.Price == nil {
		summary.Price = full.Price
	}
	if summary.Mileage == 0 {
		summary.Mileage = full.Mileage
	}
	if summary.Description == "" {
		summary.Description = full.Description
	}
	if len(summary.Features) == 0 {
		summary.Features = full.Features
	}
	if len(summary.Stats) == 0 {
		summary.Stats = full.Stats
	}
	if summary.VIN == "" {
		summary.VIN = full.VIN
	}
	if summary.StockNumber == "" {
		summary.StockNumber = full.StockNumber
	}
	if summary.ExteriorColor == "" {
		summary.ExteriorColor = full.ExteriorColor
	}
	if summary.InteriorColor == "" {
		summary.InteriorColor = full.InteriorColor
	}
	if summary.Drivetrain == "" {
		summary.Drivetrain = full.Drivetrain
	}
	if summary.Transmission == "" {
		summary.Transmission = full.Transmission
	}
	if summary.FuelType == "" {
		summary.FuelType = full.FuelType
	}
}

// publishRecords fans scraped records out to the configured stream.
// Best-effort: failures are logged and never affect the caller's response.
func (c *Coordinator) publishRecords(records ...ListingRecord) {
	if c.publisher == nil {
		return
	}
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			c.log.Error().Err(err).Str("url", record.OriginalURL).Msg("Failed to marshal record")
			continue
		}
		if err := c.publisher.Publish("listing", data); err != nil {
			c.log.Error().Err(err).Str("url", record.OriginalURL).Msg("Failed to publish record")
		}
	}
}

func validateSearch(req SearchRequest) *errors.ScrapeError {
	if !zipRegex.MatchString(req.Zip) {
		return errors.NewValidation("scraper", "zip must be exactly 5 digits")
	}
	if req.Distance < 1 || req.Distance > 500 {
		return errors.NewValidation("scraper", fmt.Sprintf("distance must be between 1 and 500 miles, got %d", req.Distance))
	}
	return nil
}

func failedPage(pageNumber int, message string) SearchResultPage {
	return SearchResultPage{
		Success:      false,
		Cars:         []ListingRecord{},
		CurrentPage:  pageNumber,
		TotalPages:   pageNumber,
		ErrorMessage: message,
	}
}
