package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	RequestCount      int64
	ErrorCount        int64
	CacheHits         int64
	CacheMisses       int64
	ScoreCalculations int64
	AlertsCreated     int64
	RiskScans         int64
	StartTime         time.Time

	// Status code tracking
	requestCountByStatus map[int]int64
	statusMutex          sync.RWMutex

	// Response time tracking
	responseTimes      []time.Duration
	responseTimesMutex sync.RWMutex
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		requestCountByStatus: make(map[int]int64),
	}
}

// IncrementRequests increments the request counter
func (m *Metrics) IncrementRequests() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementErrors increments the error counter
func (m *Metrics) IncrementErrors() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHits increments the cache hit counter
func (m *Metrics) IncrementCacheHits() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMisses increments the cache miss counter
func (m *Metrics) IncrementCacheMisses() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// IncrementScoreCalculations increments the score calculation counter
func (m *Metrics) IncrementScoreCalculations() {
	atomic.AddInt64(&m.ScoreCalculations, 1)
}

// AddAlertsCreated adds to the created-alert counter
func (m *Metrics) AddAlertsCreated(n int) {
	atomic.AddInt64(&m.AlertsCreated, int64(n))
}

// IncrementRiskScans increments the risk scan counter
func (m *Metrics) IncrementRiskScans() {
	atomic.AddInt64(&m.RiskScans, 1)
}

// RecordStatus records a response status code
func (m *Metrics) RecordStatus(status int) {
	m.statusMutex.Lock()
	defer m.statusMutex.Unlock()
	m.requestCountByStatus[status]++
}

// RecordResponseTime records one request duration, keeping a bounded window
func (m *Metrics) RecordResponseTime(d time.Duration) {
	m.responseTimesMutex.Lock()
	defer m.responseTimesMutex.Unlock()

	m.responseTimes = append(m.responseTimes, d)
	if len(m.responseTimes) > 1000 {
		m.responseTimes = m.responseTimes[len(m.responseTimes)-1000:]
	}
}

// GetStats returns a snapshot of all metrics
func (m *Metrics) GetStats() map[string]interface{} {
	m.statusMutex.RLock()
	statusCounts := make(map[int]int64, len(m.requestCountByStatus))
	for k, v := range m.requestCountByStatus {
		statusCounts[k] = v
	}
	m.statusMutex.RUnlock()

	m.responseTimesMutex.RLock()
	var avgResponseMs float64
	if len(m.responseTimes) > 0 {
		var total time.Duration
		for _, d := range m.responseTimes {
			total += d
		}
		avgResponseMs = float64(total.Milliseconds()) / float64(len(m.responseTimes))
	}
	m.responseTimesMutex.RUnlock()

	return map[string]interface{}{
		"request_count":      atomic.LoadInt64(&m.RequestCount),
		"error_count":        atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":         atomic.LoadInt64(&m.CacheHits),
		"cache_misses":       atomic.LoadInt64(&m.CacheMisses),
		"score_calculations": atomic.LoadInt64(&m.ScoreCalculations),
		"alerts_created":     atomic.LoadInt64(&m.AlertsCreated),
		"risk_scans":         atomic.LoadInt64(&m.RiskScans),
		"status_counts":      statusCounts,
		"avg_response_ms":    avgResponseMs,
		"uptime_seconds":     time.Since(m.StartTime).Seconds(),
	}
}
