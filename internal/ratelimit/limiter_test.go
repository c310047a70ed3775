package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsWithinBurst(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMin: 60, Burst: 5})

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "request %d within burst", i)
	}
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestLimiterTracksClientsIndependently(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMin: 60, Burst: 1})

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	// A different client has its own bucket.
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 60, cfg.RequestsPerMin)
	assert.Equal(t, 20, cfg.Burst)
}
