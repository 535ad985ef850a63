package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"novelpedia-backend/internal/metrics"
)

// Metrics records request latency under the matched route pattern.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
