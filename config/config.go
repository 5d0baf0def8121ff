package config

import (
	"os"
	"strconv"
	"time"

	"carlister/scrapeworker/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// HTTP server
	ListenAddr string

	// Target site
	BaseURL string

	// Fetcher
	FetchTimeout      time.Duration
	MaxRetries        int
	BaseBackoff       time.Duration
	MaxBackoff        time.Duration
	RequestsPerSecond float64
	BlockTime         time.Duration

	// Hydration
	HydrationConcurrency int
	HydrationMaxPerPage  int

	// Memcache configuration (optional, empty disables the block guard)
	MemcacheAddr string

	// Redis configuration (optional, empty disables record publishing)
	RedisAddr      string
	RedisDB        int
	RedisStream    string
	RedisStreamMax int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	maxRetries, _ := strconv.Atoi(getEnv("MAX_RETRIES", "3"))
	fetchTimeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "30"))
	baseBackoff, _ := strconv.Atoi(getEnv("BASE_BACKOFF_MS", "500"))
	maxBackoff, _ := strconv.Atoi(getEnv("MAX_BACKOFF_MS", "8000"))
	requestRate, _ := strconv.ParseFloat(getEnv("REQUESTS_PER_SECOND", "2"), 64)
	blockTime, _ := strconv.Atoi(getEnv("BLOCK_TIME_SECONDS", "300"))
	hydrationConcurrency, _ := strconv.Atoi(getEnv("HYDRATION_CONCURRENCY", "3"))
	hydrationMax, _ := strconv.Atoi(getEnv("HYDRATION_MAX_PER_PAGE", "6"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamMax, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))

	return Config{
		ListenAddr:           getEnv("LISTEN_ADDR", ":8000"),
		BaseURL:              getEnv("CARGURUS_BASE_URL", "https://www.cargurus.com"),
		FetchTimeout:         time.Duration(fetchTimeout) * time.Second,
		MaxRetries:           maxRetries,
		BaseBackoff:          time.Duration(baseBackoff) * time.Millisecond,
		MaxBackoff:           time.Duration(maxBackoff) * time.Millisecond,
		RequestsPerSecond:    requestRate,
		BlockTime:            time.Duration(blockTime) * time.Second,
		HydrationConcurrency: hydrationConcurrency,
		HydrationMaxPerPage:  hydrationMax,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "listings"),
		RedisStreamMax:       redisStreamMax,
		Environment:          getEnv("CARLISTER_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.NewConfiguration("CARGURUS_BASE_URL must not be empty", nil)
	}
	if c.MaxRetries < 1 {
		return errors.NewConfiguration("MAX_RETRIES must be at least 1", nil)
	}
	if c.FetchTimeout <= 0 {
		return errors.NewConfiguration("FETCH_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.RequestsPerSecond <= 0 {
		return errors.NewConfiguration("REQUESTS_PER_SECOND must be positive", nil)
	}
	if c.HydrationConcurrency < 1 {
		return errors.NewConfiguration("HYDRATION_CONCURRENCY must be at least 1", nil)
	}
	if c.HydrationMaxPerPage < 0 {
		return errors.NewConfiguration("HYDRATION_MAX_PER_PAGE must not be negative", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
