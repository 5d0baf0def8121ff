package helpers

import (
	"bytes"
	"fmt"
	"io"
	mathrand "math/rand"
	"net/http"

	"golang.org/x/net/html/charset"
)

// HeaderProfile is one browser-like set of request headers. Profiles are
// rotated between retry attempts so consecutive requests do not present an
// identical fingerprint.
type HeaderProfile struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
	Referer        string
}

var profiles = []HeaderProfile{
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.9",
		Referer:        "https://www.google.com/",
	},
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.8",
		Referer:        "https://www.bing.com/",
	},
	{
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.5",
		Referer:        "https://duckduckgo.com/",
	},
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36 Edg/123.0.0.0",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.9",
		Referer:        "https://www.google.com/",
	},
}

// ProfileAt returns a header profile for the given attempt number, cycling
// through the pool.
func ProfileAt(attempt int) HeaderProfile {
	if attempt < 0 {
		attempt = 0
	}
	return profiles[attempt%len(profiles)]
}

// RandomProfile returns a randomly chosen header profile.
func RandomProfile() HeaderProfile {
	return profiles[mathrand.Intn(len(profiles))]
}

// ApplyProfile sets browser-like headers on the request.
func ApplyProfile(req *http.Request, p HeaderProfile) {
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("Accept", p.Accept)
	req.Header.Set("Accept-Language", p.AcceptLanguage)
	req.Header.Set("Referer", p.Referer)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Sec-Fetch-User", "?1")
}

// DecodeUTF8 converts a response body to UTF-8 using the encoding declared
// in the Content-Type header or sniffed from the body itself.
func DecodeUTF8(body []byte, contentType string) (string, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || name == "UTF-8" {
		return string(body), nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(body))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return "", fmt.Errorf("failed to convert body to UTF-8: %w", err)
	}
	return buf.String(), nil
}
