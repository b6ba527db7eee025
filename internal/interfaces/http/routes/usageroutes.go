package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/postforge/postforge/internal/interfaces/http/handlers"
	"github.com/postforge/postforge/internal/interfaces/http/middleware"
)

// UsageRouteConfig holds dependencies for metering and generation routes.
type UsageRouteConfig struct {
	UsageHandler      *handlers.UsageHandler
	GenerationHandler *handlers.GenerationHandler
	AuthMiddleware    *middleware.AuthMiddleware
	// GenerationLimiter may be nil when Redis is disabled.
	GenerationLimiter *middleware.RateLimiter
}

// SetupUsageRoutes configures usage and generation routes.
func SetupUsageRoutes(api *gin.RouterGroup, cfg *UsageRouteConfig) {
	usage := api.Group("/usage")
	usage.Use(cfg.AuthMiddleware.RequireAuth())
	{
		usage.GET("", cfg.UsageHandler.GetUsage)
		usage.GET("/history", cfg.UsageHandler.GetHistory)
		usage.GET("/stats", cfg.UsageHandler.GetStats)
	}

	generate := []gin.HandlerFunc{cfg.AuthMiddleware.RequireAuth()}
	if cfg.GenerationLimiter != nil {
		generate = append(generate, cfg.GenerationLimiter.Limit())
	}
	generate = append(generate, cfg.GenerationHandler.Generate)
	api.POST("/generations", generate...)
}
