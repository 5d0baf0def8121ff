package scraper

import "time"

// Stat is one free-form spec pair from a listing page. The source site's
// spec tables vary per listing, so labels are not strongly typed.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ListingRecord represents one scraped vehicle listing.
//
// OriginalURL and ScrapedAt are always set; every other field is
// best-effort and left at its zero value when no extractor finds it.
type ListingRecord struct {
	Make          string    `json:"make"`
	Model         string    `json:"model"`
	Year          int       `json:"year"`
	Price         *float64  `json:"price"`
	Mileage       int       `json:"mileage,omitempty"`
	Description   string    `json:"description"`
	Features      []string  `json:"features"`
	Images        []string  `json:"images"`
	Stats         []Stat    `json:"stats"`
	VIN           string    `json:"vin,omitempty"`
	StockNumber   string    `json:"stockNumber,omitempty"`
	ExteriorColor string    `json:"exteriorColor,omitempty"`
	InteriorColor string    `json:"interiorColor,omitempty"`
	Drivetrain    string    `json:"drivetrain,omitempty"`
	Transmission  string    `json:"transmission,omitempty"`
	FuelType      string    `json:"fuelType,omitempty"`
	OriginalURL   string    `json:"originalUrl"`
	FullTitle     string    `json:"fullTitle,omitempty"`
	ScrapedAt     time.Time `json:"scrapedAt"`
}

// NewListingRecord creates a record carrying the two required fields.
func NewListingRecord(originalURL string) ListingRecord {
	return ListingRecord{
		Features:    []string{},
		Images:      []string{},
		Stats:       []Stat{},
		OriginalURL: originalURL,
		ScrapedAt:   time.Now().UTC(),
	}
}

// SearchResultPage is one page of listing summaries plus pagination
// metadata. It is built once per call and never cached or merged.
type SearchResultPage struct {
	Success        bool            `json:"success"`
	Cars           []ListingRecord `json:"cars"`
	TotalResults   int             `json:"totalResults"`
	CurrentPage    int             `json:"currentPage"`
	TotalPages     int             `json:"totalPages"`
	HasNextPage    bool            `json:"hasNextPage"`
	ProcessingTime float64         `json:"processingTime"`
	ErrorMessage   string          `json:"errorMessage,omitempty"`
}

// SearchRequest describes a location-based inventory search.
type SearchRequest struct {
	Zip          string `json:"zip"`
	Distance     int    `json:"distance"`
	Page         int    `json:"pageNumber"`
	NewUsed      string `json:"newUsed"`
	SrpVariation string `json:"srpVariation"`
}

// DealerRequest describes a per-dealer inventory listing request.
type DealerRequest struct {
	EntityID      string `json:"dealerEntityId"`
	Name          string `json:"dealerName"`
	URL           string `json:"dealerUrl"`
	Page          int    `json:"pageNumber"`
	InventoryType string `json:"inventoryType"`
}
