package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check that browser-like headers are set
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))
		assert.NotEmpty(t, r.Header.Get("Referer"))
		assert.Equal(t, "1", r.Header.Get("Upgrade-Insecure-Requests"))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	assert.NoError(t, err)
	ApplyProfile(req, RandomProfile())

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	resp.Body.Close()
}

func TestProfileAtRotates(t *testing.T) {
	first := ProfileAt(0)
	second := ProfileAt(1)
	assert.NotEqual(t, first.UserAgent, second.UserAgent)

	// Cycles back around the pool
	assert.Equal(t, first, ProfileAt(len(profiles)))

	// Negative attempts are clamped instead of panicking
	assert.Equal(t, first, ProfileAt(-1))
}

func TestDecodeUTF8(t *testing.T) {
	// Already UTF-8 passes through unchanged
	body, err := DecodeUTF8([]byte("<html><body>Hello, World!</body></html>"), "text/html; charset=utf-8")
	assert.NoError(t, err)
	assert.Contains(t, body, "Hello, World!")

	// ISO-8859-1 is converted: 0xE9 is "é"
	latin1 := append([]byte("<html><body>Caf"), 0xE9)
	latin1 = append(latin1, []byte("</body></html>")...)
	body, err = DecodeUTF8(latin1, "text/html; charset=iso-8859-1")
	assert.NoError(t, err)
	assert.Contains(t, body, "Café")
}
