package usecases

import (
	"context"

	subscriptionUsecases "github.com/postforge/postforge/internal/application/subscription/usecases"
)

// SignatureVerifier authenticates a raw webhook body.
type SignatureVerifier interface {
	Verify(body []byte, signature string) bool
}

type ChargedHandler interface {
	Execute(ctx context.Context, cmd subscriptionUsecases.HandleChargedCommand) error
}

type CancelledHandler interface {
	Execute(ctx context.Context, cmd subscriptionUsecases.HandleCancelledCommand) error
}

type PausedHandler interface {
	Execute(ctx context.Context, cmd subscriptionUsecases.HandlePausedCommand) error
}

// WebhookObserver receives the outcome of every delivery.
type WebhookObserver interface {
	ObserveWebhookEvent(event, outcome string)
}
