package middleware

import (
	"strconv"
	"time"

	"github.com/ethanbaker/legal-assistant/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency by route
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		method := c.Request.Method

		metrics.RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}
