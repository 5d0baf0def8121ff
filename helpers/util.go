package helpers

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText strips non-printable characters, collapses runs of whitespace
// and trims the result.
func CleanText(s string) string {
	var b strings.Builder
	for _, c := range s {
		if unicode.IsPrint(c) {
			b.WriteRune(c)
		} else {
			b.WriteRune(' ')
		}
	}
	cleaned := innerWhitespace.ReplaceAllString(b.String(), " ")
	return strings.TrimSpace(cleaned)
}

// AbsoluteURL resolves href against base. Scheme-relative and already
// absolute links are returned as-is (with the base scheme applied when
// missing). An empty href yields an empty string.
func AbsoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		scheme := "https"
		if u, err := url.Parse(base); err == nil && u.Scheme != "" {
			scheme = u.Scheme
		}
		return scheme + ":" + href
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
