package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/postforge/postforge/internal/interfaces/http/handlers"
	"github.com/postforge/postforge/internal/interfaces/http/middleware"
)

// SubscriptionRouteConfig holds dependencies for the caller's subscription routes.
type SubscriptionRouteConfig struct {
	SubscriptionHandler *handlers.SubscriptionHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

// SetupSubscriptionRoutes configures subscription routes.
func SetupSubscriptionRoutes(api *gin.RouterGroup, cfg *SubscriptionRouteConfig) {
	subscriptions := api.Group("/subscriptions")
	subscriptions.Use(cfg.AuthMiddleware.RequireAuth())
	{
		subscriptions.GET("/current", cfg.SubscriptionHandler.GetCurrentSubscription)
		subscriptions.POST("", cfg.SubscriptionHandler.CreateSubscription)
		subscriptions.POST("/upgrade", cfg.SubscriptionHandler.UpgradeSubscription)
		subscriptions.POST("/cancel", cfg.SubscriptionHandler.CancelSubscription)
	}
}
