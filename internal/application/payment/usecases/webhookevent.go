package usecases

import "time"

const (
	EventSubscriptionCharged   = "subscription.charged"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionPaused    = "subscription.paused"
)

// WebhookEvent is the processor's event envelope. Timestamps are Unix seconds
// and amounts are in minor currency units.
type WebhookEvent struct {
	Event     string         `json:"event"`
	CreatedAt int64          `json:"created_at"`
	Payload   WebhookPayload `json:"payload"`
}

type WebhookPayload struct {
	Subscription *SubscriptionEnvelope `json:"subscription"`
	Payment      *PaymentEnvelope      `json:"payment,omitempty"`
}

type SubscriptionEnvelope struct {
	Entity SubscriptionEntity `json:"entity"`
}

type SubscriptionEntity struct {
	ID           string    `json:"id"`
	PlanID       string    `json:"plan_id"`
	Status       string    `json:"status"`
	CurrentStart int64     `json:"current_start"`
	CurrentEnd   int64     `json:"current_end"`
	PlanItem     *PlanItem `json:"plan_item,omitempty"`
}

type PlanItem struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type PaymentEnvelope struct {
	Entity PaymentEntity `json:"entity"`
}

type PaymentEntity struct {
	ID        string `json:"id"`
	InvoiceID string `json:"invoice_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"created_at"`
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
