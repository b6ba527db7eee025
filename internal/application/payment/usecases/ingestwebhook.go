package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	subscriptionUsecases "github.com/postforge/postforge/internal/application/subscription/usecases"
	"github.com/postforge/postforge/internal/shared/logger"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

const (
	OutcomeProcessed = "processed"
	OutcomeIgnored   = "ignored"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// IngestWebhookUseCase authenticates processor events and routes them to the
// subscription lifecycle. Deliveries are at-least-once; the handlers are
// idempotent so no delivery ids are tracked here.
type IngestWebhookUseCase struct {
	verifier  SignatureVerifier
	charged   ChargedHandler
	cancelled CancelledHandler
	paused    PausedHandler
	observer  WebhookObserver
	logger    logger.Interface
}

// NewIngestWebhookUseCase accepts a nil observer.
func NewIngestWebhookUseCase(
	verifier SignatureVerifier,
	charged ChargedHandler,
	cancelled CancelledHandler,
	paused PausedHandler,
	observer WebhookObserver,
	logger logger.Interface,
) *IngestWebhookUseCase {
	return &IngestWebhookUseCase{
		verifier:  verifier,
		charged:   charged,
		cancelled: cancelled,
		paused:    paused,
		observer:  observer,
		logger:    logger,
	}
}

// Execute verifies the signature before the body is parsed. It returns
// ErrInvalidSignature or ErrMalformedEvent for requests that must not be
// retried, and any other error when the processor should redeliver.
func (uc *IngestWebhookUseCase) Execute(ctx context.Context, rawBody []byte, signature string) error {
	if signature == "" || !uc.verifier.Verify(rawBody, signature) {
		uc.logger.Warnw("rejected webhook with invalid signature", "body_bytes", len(rawBody))
		uc.observe("unknown", OutcomeRejected)
		return ErrInvalidSignature
	}

	var event WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		uc.logger.Warnw("failed to parse webhook body", "error", err)
		uc.observe("unknown", OutcomeRejected)
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	err := uc.dispatch(ctx, &event)
	switch {
	case errors.Is(err, errIgnored):
		uc.logger.Infow("ignoring webhook event", "event", event.Event)
		uc.observe(event.Event, OutcomeIgnored)
		return nil
	case errors.Is(err, ErrMalformedEvent):
		uc.logger.Warnw("webhook event missing required fields", "event", event.Event, "error", err)
		uc.observe(event.Event, OutcomeRejected)
		return err
	case err != nil:
		uc.logger.Errorw("webhook handler failed", "event", event.Event, "error", err)
		uc.observe(event.Event, OutcomeFailed)
		return err
	}

	uc.observe(event.Event, OutcomeProcessed)
	return nil
}

var errIgnored = errors.New("event ignored")

func (uc *IngestWebhookUseCase) dispatch(ctx context.Context, event *WebhookEvent) error {
	switch event.Event {
	case EventSubscriptionCharged, EventSubscriptionCancelled, EventSubscriptionPaused:
	default:
		return errIgnored
	}

	if event.Payload.Subscription == nil || event.Payload.Subscription.Entity.ID == "" {
		return fmt.Errorf("%w: subscription entity is required", ErrMalformedEvent)
	}
	sub := event.Payload.Subscription.Entity

	switch event.Event {
	case EventSubscriptionCharged:
		cmd, err := chargedCommand(sub, event.Payload.Payment)
		if err != nil {
			return err
		}
		return uc.charged.Execute(ctx, cmd)
	case EventSubscriptionCancelled:
		return uc.cancelled.Execute(ctx, subscriptionUsecases.HandleCancelledCommand{ExternalID: sub.ID})
	default:
		return uc.paused.Execute(ctx, subscriptionUsecases.HandlePausedCommand{ExternalID: sub.ID})
	}
}

// chargedCommand prefers the payment's invoice id and amount and falls back to
// the payment id and the plan item amount.
func chargedCommand(sub SubscriptionEntity, payment *PaymentEnvelope) (subscriptionUsecases.HandleChargedCommand, error) {
	cmd := subscriptionUsecases.HandleChargedCommand{
		ExternalID: sub.ID,
		PeriodEnd:  unixTime(sub.CurrentEnd),
	}
	if sub.PlanItem != nil {
		cmd.Amount = sub.PlanItem.Amount
		cmd.Currency = sub.PlanItem.Currency
	}
	if payment != nil {
		p := payment.Entity
		cmd.ExternalInvoiceID = p.InvoiceID
		if cmd.ExternalInvoiceID == "" {
			cmd.ExternalInvoiceID = p.ID
		}
		if p.Amount > 0 {
			cmd.Amount = p.Amount
		}
		if p.Currency != "" {
			cmd.Currency = p.Currency
		}
		cmd.PaidAt = unixTime(p.CreatedAt)
		cmd.Email = p.Email
	}
	if cmd.ExternalInvoiceID == "" {
		return cmd, fmt.Errorf("%w: charge without invoice or payment id", ErrMalformedEvent)
	}
	return cmd, nil
}

func (uc *IngestWebhookUseCase) observe(event, outcome string) {
	if uc.observer != nil {
		uc.observer.ObserveWebhookEvent(event, outcome)
	}
}
