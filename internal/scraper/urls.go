package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var zipRegex = regexp.MustCompile(`^[0-9]{5}$`)

// IsListingURL reports whether raw is a plausible CarGurus listing URL:
// http(s) scheme, cargurus.com host and a /Cars/ path segment.
func IsListingURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host != "cargurus.com" && !strings.HasSuffix(host, ".cargurus.com") {
		return false
	}
	return strings.Contains(parsed.Path, "/Cars/")
}

// BuildSearchURL builds the inventory search URL for a zip/distance query.
func BuildSearchURL(base string, req SearchRequest) string {
	query := url.Values{}
	query.Set("zip", req.Zip)
	query.Set("distance", strconv.Itoa(req.Distance))
	query.Set("pageNumber", strconv.Itoa(req.Page))
	if req.NewUsed != "" {
		query.Set("newUsed", req.NewUsed)
	}
	if req.SrpVariation != "" {
		query.Set("srpVariation", req.SrpVariation)
	}
	return fmt.Sprintf("%s/Cars/searchresults.action?%s",
		strings.TrimRight(base, "/"), query.Encode())
}

// BuildDealerURL builds the inventory URL for one dealer entity. A caller
// provided dealer URL wins over the derived one; the page number is always
// applied.
func BuildDealerURL(base string, req DealerRequest) string {
	target := req.URL
	if target == "" {
		slug := dealerSlug(req.Name)
		if slug == "" {
			slug = "dealer"
		}
		target = fmt.Sprintf("%s/Cars/m-%s-sp%s", strings.TrimRight(base, "/"), slug, req.EntityID)
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return target
	}
	query := parsed.Query()
	query.Set("pageNumber", strconv.Itoa(req.Page))
	if req.InventoryType != "" {
		query.Set("inventoryType", req.InventoryType)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

var nonSlugRegex = regexp.MustCompile(`[^A-Za-z0-9]+`)

func dealerSlug(name string) string {
	return strings.Trim(nonSlugRegex.ReplaceAllString(name, "-"), "-")
}
