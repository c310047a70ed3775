package ratelimit

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMin int
	Burst          int
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerMin: 60,
		Burst:          20,
	}
}

// Limiter provides per-IP in-memory rate limiting
type Limiter struct {
	config   Config
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

// NewLimiter creates a new per-IP limiter
func NewLimiter(config Config) *Limiter {
	return &Limiter{
		config:   config,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the limiter for one client IP, creating it on demand
func (l *Limiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(float64(l.config.RequestsPerMin)/60.0), l.config.Burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// Allow reports whether a request from ip may proceed
func (l *Limiter) Allow(ip string) bool {
	return l.limiterFor(ip).Allow()
}

// Middleware rejects requests over the per-IP limit with 429
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
