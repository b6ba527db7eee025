package offer

import "context"

type Repository interface {
	// Create returns ErrOfferCodeExists on a duplicate code.
	Create(ctx context.Context, o *Offer) error
	// GetByCode returns nil, nil when the code is unknown.
	GetByCode(ctx context.Context, code string) (*Offer, error)
	// GetByCodeForUpdate is GetByCode holding a row lock for the enclosing
	// transaction.
	GetByCodeForUpdate(ctx context.Context, code string) (*Offer, error)
	// SaveUsage persists usedCount and the redemption of userID.
	SaveUsage(ctx context.Context, o *Offer, userID uint) error
	Update(ctx context.Context, o *Offer) error
	List(ctx context.Context, activeOnly bool) ([]*Offer, error)
}
