package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute)

	c.Set("score:PROJECT:p1", []byte(`{"total_score":80}`))

	data, ok := c.Get("score:PROJECT:p1")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"total_score":80}`), data)

	_, ok = c.Get("score:PROJECT:missing")
	assert.False(t, ok)
}

func TestCacheDelete(t *testing.T) {
	c := New(time.Minute)

	c.Set("key", []byte("value"))
	c.Delete("key")

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := New(-time.Second) // items are born expired

	c.Set("key", []byte("value"))

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestCacheStats(t *testing.T) {
	c := New(time.Minute)

	c.Set("key", []byte("value"))
	c.Get("key")
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, 1, stats["items"])
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
}
