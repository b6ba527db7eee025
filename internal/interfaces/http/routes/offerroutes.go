package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/postforge/postforge/internal/infrastructure/permission"
	"github.com/postforge/postforge/internal/interfaces/http/handlers"
	"github.com/postforge/postforge/internal/interfaces/http/middleware"
)

// OfferRouteConfig holds dependencies for discount code routes.
type OfferRouteConfig struct {
	OfferHandler         *handlers.OfferHandler
	AdminOfferHandler    *handlers.AdminOfferHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// SetupOfferRoutes configures user and admin offer routes.
func SetupOfferRoutes(api *gin.RouterGroup, cfg *OfferRouteConfig) {
	offers := api.Group("/offers")
	offers.Use(cfg.AuthMiddleware.RequireAuth())
	{
		offers.POST("/validate", cfg.OfferHandler.Validate)
		offers.POST("/calculate", cfg.OfferHandler.Calculate)
		offers.POST("/apply", cfg.OfferHandler.Apply)
	}

	read := cfg.PermissionMiddleware.RequirePermission(permission.ResourceOffers, permission.ActionRead)
	write := cfg.PermissionMiddleware.RequirePermission(permission.ResourceOffers, permission.ActionWrite)

	adminOffers := api.Group("/admin/offers")
	adminOffers.Use(cfg.AuthMiddleware.RequireAuth())
	{
		adminOffers.POST("", write, cfg.AdminOfferHandler.CreateOffer)
		adminOffers.GET("", read, cfg.AdminOfferHandler.ListOffers)
		adminOffers.DELETE("/:code", write, cfg.AdminOfferHandler.DeactivateOffer)
	}
}
