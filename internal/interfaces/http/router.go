package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/infrastructure/config"
	"github.com/postforge/postforge/internal/interfaces/http/middleware"
	"github.com/postforge/postforge/internal/interfaces/http/routes"
	"github.com/postforge/postforge/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	container *Container
}

// NewRouter wires the container and returns a router ready for SetupRoutes.
func NewRouter(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Router, error) {
	container, err := NewContainer(db, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Router{container: container}, nil
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	c := r.container
	engine := c.engine

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(c.log.Named("access")))
	engine.Use(middleware.Recovery(c.log))
	engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	engine.Use(middleware.SecurityHeaders())
	engine.Use(middleware.Metrics(c.metrics))

	engine.GET("/health", c.hdlrs.healthHandler.HealthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})))

	api := engine.Group("/api/v1")

	routes.SetupUsageRoutes(api, &routes.UsageRouteConfig{
		UsageHandler:      c.hdlrs.usageHandler,
		GenerationHandler: c.hdlrs.generationHandler,
		AuthMiddleware:    c.authMiddleware,
		GenerationLimiter: c.generationLimiter,
	})

	routes.SetupSubscriptionRoutes(api, &routes.SubscriptionRouteConfig{
		SubscriptionHandler: c.hdlrs.subscriptionHandler,
		AuthMiddleware:      c.authMiddleware,
	})

	routes.SetupPaymentRoutes(api, &routes.PaymentRouteConfig{
		WebhookHandler: c.hdlrs.webhookHandler,
	})

	routes.SetupOfferRoutes(api, &routes.OfferRouteConfig{
		OfferHandler:         c.hdlrs.offerHandler,
		AdminOfferHandler:    c.hdlrs.adminOfferHandler,
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.container.Engine()
}

// Shutdown releases resources held by the router's dependencies.
func (r *Router) Shutdown() {
	r.container.Shutdown()
}
