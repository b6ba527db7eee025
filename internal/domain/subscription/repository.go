package subscription

import "context"

type Repository interface {
	// Create persists a new subscription. It returns ErrActiveSubscriptionExists
	// when the user already holds an active one.
	Create(ctx context.Context, sub *Subscription) error
	// Update persists state and pending invoices with optimistic locking on
	// the version. A replayed invoice yields ErrDuplicateInvoice.
	Update(ctx context.Context, sub *Subscription) error
	// GetByExternalID returns nil, nil when not found.
	GetByExternalID(ctx context.Context, externalID string) (*Subscription, error)
	// GetActiveByUserID returns nil, nil when the user has no active subscription.
	GetActiveByUserID(ctx context.Context, userID uint) (*Subscription, error)
	ListActiveUserIDs(ctx context.Context) ([]uint, error)
}
