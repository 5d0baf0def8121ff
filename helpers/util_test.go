package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"  hello   world  ", "hello world"},
		{"line\none\n\ttwo", "line one two"},
		{"", ""},
		{"\x00weird\x07bytes", "weird bytes"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, CleanText(tc.input))
	}
}

func TestAbsoluteURL(t *testing.T) {
	testCases := []struct {
		href     string
		expected string
	}{
		{
			href:     "/Cars/link-123",
			expected: "https://www.cargurus.com/Cars/link-123",
		},
		{
			href:     "//www.cargurus.com/Cars/link-123",
			expected: "https://www.cargurus.com/Cars/link-123",
		},
		{
			href:     "https://other.com/listing/123",
			expected: "https://other.com/listing/123",
		},
		{
			href:     "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		result := AbsoluteURL("https://www.cargurus.com", tc.href)
		assert.Equal(t, tc.expected, result)
	}
}
