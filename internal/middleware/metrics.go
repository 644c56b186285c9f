package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Proton-105/socialpulse-onboarding/pkg/metrics"
)

// Metrics reports every handled request to Prometheus.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		metrics.RecordHTTPRequest(c.Request.Method, routeOf(c), c.Writer.Status())
	}
}
