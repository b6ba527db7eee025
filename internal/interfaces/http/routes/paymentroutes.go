package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/postforge/postforge/internal/interfaces/http/handlers"
)

// PaymentRouteConfig holds dependencies for payment processor callbacks.
type PaymentRouteConfig struct {
	WebhookHandler *handlers.WebhookHandler
}

// SetupPaymentRoutes configures the webhook route. It carries no auth
// middleware; the handler verifies the signature.
func SetupPaymentRoutes(api *gin.RouterGroup, cfg *PaymentRouteConfig) {
	api.POST("/webhooks/payments", cfg.WebhookHandler.HandlePaymentWebhook)
}
