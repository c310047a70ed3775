package monitoring

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware records request metrics and logs each request
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		metrics.IncrementRequests()
		metrics.RecordStatus(status)
		metrics.RecordResponseTime(duration)
		if status >= 500 {
			metrics.IncrementErrors()
		}

		slog.Info("Request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"ip", c.ClientIP())
	}
}
