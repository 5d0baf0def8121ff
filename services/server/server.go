package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"carlister/scrapeworker/internal/scraper"
	"carlister/scrapeworker/logger"
	"carlister/scrapeworker/pkg/errors"
)

// API is the extraction pipeline surface the server exposes over HTTP.
type API interface {
	ScrapeListing(ctx context.Context, pageURL string) (scraper.ListingRecord, error)
	SearchInventory(ctx context.Context, req scraper.SearchRequest) (scraper.SearchResultPage, error)
	DealerInventory(ctx context.Context, req scraper.DealerRequest) (scraper.SearchResultPage, error)
}

// Server exposes the scrape endpoints consumed by the UI/CRUD layer.
type Server struct {
	api     API
	version string
	log     *logger.Logger
}

// New creates a server around the given pipeline.
func New(api API, version string) *Server {
	return &Server{
		api:     api,
		version: version,
		log:     logger.ForServer(),
	}
}

// scrapeRequest is the POST /api/scrape body.
type scrapeRequest struct {
	URL string `json:"url"`
}

// scrapeResponse is the POST /api/scrape reply.
type scrapeResponse struct {
	Success bool                   `json:"success"`
	Data    *scraper.ListingRecord `json:"data"`
	Error   *string                `json:"error"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Routes returns the HTTP handler for all endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/scrape", s.requirePost(s.handleScrape))
	mux.HandleFunc("/api/inventory/search", s.requirePost(s.handleSearch))
	mux.HandleFunc("/api/dealer/inventory", s.requirePost(s.handleDealerInventory))
	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

func (s *Server) requirePost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeScrapeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := s.api.ScrapeListing(r.Context(), req.URL)
	if err != nil {
		if errors.IsValidation(err) {
			s.writeScrapeError(w, http.StatusBadRequest, scrubMessage(err))
			return
		}
		// Fetch failures are a 200 with success=false; the caller payload
		// never carries transport detail.
		s.writeScrapeError(w, http.StatusOK, scrubMessage(err))
		return
	}

	s.writeJSON(w, http.StatusOK, scrapeResponse{Success: true, Data: &record})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req scraper.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, badRequestPage("invalid request body"))
		return
	}

	page, err := s.api.SearchInventory(r.Context(), req)
	s.writePage(w, page, err)
}

func (s *Server) handleDealerInventory(w http.ResponseWriter, r *http.Request) {
	var req scraper.DealerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, badRequestPage("invalid request body"))
		return
	}

	page, err := s.api.DealerInventory(r.Context(), req)
	s.writePage(w, page, err)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Service:   "car-lister-scraper",
		Version:   s.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writePage maps a result page and optional validation error to a
// response. Fetch failures are already folded into the page itself.
func (s *Server) writePage(w http.ResponseWriter, page scraper.SearchResultPage, err error) {
	status := http.StatusOK
	if err != nil && errors.IsValidation(err) {
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, page)
}

func (s *Server) writeScrapeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, scrapeResponse{Success: false, Error: &message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// scrubMessage returns the ScrapeError message without the wrapped
// internal error text.
func scrubMessage(err error) string {
	var se *errors.ScrapeError
	if stderrors.As(err, &se) {
		return se.Message
	}
	return "internal error"
}

func badRequestPage(message string) scraper.SearchResultPage {
	return scraper.SearchResultPage{
		Success:      false,
		Cars:         []scraper.ListingRecord{},
		ErrorMessage: message,
	}
}
