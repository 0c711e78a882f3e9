package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jakartamandarin/jm_finance/internal/metrics"
)

// MetricsMiddleware records request latency per matched route.
func MetricsMiddleware(m *metrics.FinanceMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
