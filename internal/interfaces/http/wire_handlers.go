package http

import (
	"github.com/postforge/postforge/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	healthHandler       *handlers.HealthHandler
	usageHandler        *handlers.UsageHandler
	generationHandler   *handlers.GenerationHandler
	subscriptionHandler *handlers.SubscriptionHandler
	webhookHandler      *handlers.WebhookHandler
	offerHandler        *handlers.OfferHandler
	adminOfferHandler   *handlers.AdminOfferHandler
}
