package cache

import (
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
)

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")

	// Test if memcached is available
	_, err := mc.client.Get("test")
	if err != nil && err != memcache.ErrCacheMiss {
		t.Skip("Memcached is not available, skipping test")
	}

	// Set a cooldown marker the way the fetcher does
	err = mc.Set("cargurus_rate_limited", []byte("1"), 1*time.Second)
	assert.NoError(t, err)

	value, err := mc.Get("cargurus_rate_limited")
	assert.NoError(t, err)
	assert.Equal(t, "1", string(value))

	err = mc.Delete("cargurus_rate_limited")
	assert.NoError(t, err)

	_, err = mc.Get("cargurus_rate_limited")
	assert.Error(t, err)
}
