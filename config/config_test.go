package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, ":8000", config.ListenAddr)
	assert.Equal(t, "https://www.cargurus.com", config.BaseURL)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 30*time.Second, config.FetchTimeout)
	assert.Equal(t, 500*time.Millisecond, config.BaseBackoff)
	assert.Equal(t, 3, config.HydrationConcurrency)
	assert.Equal(t, 6, config.HydrationMaxPerPage)
	assert.Equal(t, "", config.MemcacheAddr)
	assert.Equal(t, "", config.RedisAddr)
	assert.Equal(t, "listings", config.RedisStream)

	// Test with environment variables
	os.Setenv("LISTEN_ADDR", ":9000")
	os.Setenv("CARGURUS_BASE_URL", "https://example.com")
	os.Setenv("MAX_RETRIES", "5")
	os.Setenv("FETCH_TIMEOUT_SECONDS", "10")
	os.Setenv("MEMCACHE_ADDR", "memcache.example.com:11211")
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")

	config = LoadConfig()
	assert.Equal(t, ":9000", config.ListenAddr)
	assert.Equal(t, "https://example.com", config.BaseURL)
	assert.Equal(t, 5, config.MaxRetries)
	assert.Equal(t, 10*time.Second, config.FetchTimeout)
	assert.Equal(t, "memcache.example.com:11211", config.MemcacheAddr)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)

	// Clean up
	os.Unsetenv("LISTEN_ADDR")
	os.Unsetenv("CARGURUS_BASE_URL")
	os.Unsetenv("MAX_RETRIES")
	os.Unsetenv("FETCH_TIMEOUT_SECONDS")
	os.Unsetenv("MEMCACHE_ADDR")
	os.Unsetenv("REDIS_ADDR")
}

func TestConfigValidate(t *testing.T) {
	config := LoadConfig()
	assert.NoError(t, config.Validate())

	invalid := config
	invalid.BaseURL = ""
	assert.Error(t, invalid.Validate())

	invalid = config
	invalid.MaxRetries = 0
	assert.Error(t, invalid.Validate())

	invalid = config
	invalid.RequestsPerSecond = 0
	assert.Error(t, invalid.Validate())

	invalid = config
	invalid.HydrationConcurrency = 0
	assert.Error(t, invalid.Validate())
}
