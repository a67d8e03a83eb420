package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"telemetry-bridge/internal/config"
	"telemetry-bridge/internal/logging"
)

func NewRouter(logger *logging.Logger, cfg config.Config, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(cfg.API.BasePath)
	{
		api.GET("/devices/:id/config", h.GetConfig)
		api.PUT("/devices/:id/config", h.UpdateConfig)
		api.GET("/devices/:id/status", h.GetStatus)
		api.GET("/devices/:id/history", h.GetHistory)
		api.GET("/devices/:id/errors", h.GetErrorState)
	}

	r.GET("/ws/devices/:id", h.AlertFeed)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
