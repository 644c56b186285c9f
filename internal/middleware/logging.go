// Package middleware holds the gin middleware shared by the HTTP gateway.
package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Proton-105/socialpulse-onboarding/pkg/logger"
)

// RequestLogger logs method, route, status and duration for every request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("route", routeOf(c)),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("correlation_id", logger.CorrelationIDFromContext(c.Request.Context())),
		}

		switch {
		case status >= 500:
			log.Error("handled http request", attrs...)
		case status >= 400:
			log.Warn("handled http request", attrs...)
		default:
			log.Info("handled http request", attrs...)
		}
	}
}

// routeOf prefers the registered route pattern so ids do not explode label sets.
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
