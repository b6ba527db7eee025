package usecases

import (
	"context"
	"time"

	"github.com/postforge/postforge/internal/domain/plan"
)

// PaymentGateway is the payment processor's subscription API.
type PaymentGateway interface {
	CreateSubscription(ctx context.Context, req CreateRemoteSubscriptionRequest) (*RemoteSubscription, error)
	CancelSubscription(ctx context.Context, externalID string) error
}

type CreateRemoteSubscriptionRequest struct {
	UserID          uint
	Plan            plan.Tier
	ProcessorPlanID string
	Interval        plan.Interval
	Amount          int64
	Currency        string
}

type RemoteSubscription struct {
	ID       string
	Status   string
	ShortURL string
}

// EntitlementInvalidator drops a user's cached effective plan.
type EntitlementInvalidator interface {
	InvalidatePlan(ctx context.Context, userID uint) error
}

// TransactionRunner runs fn in a single database transaction.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Receipt struct {
	UserID         uint
	Email          string
	SubscriptionID string
	Plan           plan.Tier
	InvoiceID      string
	Amount         int64
	Currency       string
	PaidAt         time.Time
}

// ReceiptNotifier delivers a receipt for a newly recorded charge.
type ReceiptNotifier interface {
	SendReceipt(ctx context.Context, receipt Receipt) error
}
