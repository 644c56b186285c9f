package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Proton-105/socialpulse-onboarding/internal/middleware"
	"github.com/Proton-105/socialpulse-onboarding/pkg/logger"
)

// NewRouter creates the gin engine with middleware and routes configured.
func NewRouter(handler *Handler, log *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		logger.Middleware(),
		middleware.RequestLogger(log),
		middleware.Metrics(),
	)

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	onboarding := r.Group("/onboarding")
	{
		onboarding.POST("", handler.CreateStep)
		onboarding.GET("", handler.ReadStep)
		onboarding.PUT("/decisions", handler.UpdateDecisions)
	}

	r.GET("/accounts/:id", handler.GetAccount)

	r.GET("/healthz", handler.Health)
	r.GET("/livez", handler.Live)
	r.GET("/readyz", handler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
