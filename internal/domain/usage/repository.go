package usage

import "context"

// Repository persists usage records. Implementations must make Increment a
// single atomic statement so concurrent increments never lose updates.
type Repository interface {
	// Get returns nil, nil when no record exists.
	Get(ctx context.Context, userID uint, period BillingPeriod) (*Record, error)
	// GetOrCreate inserts a zeroed record if absent and returns the stored one.
	GetOrCreate(ctx context.Context, userID uint, period BillingPeriod) (*Record, error)
	// Increment adds one to the kind's counter and tokens to the token total,
	// creating the record when needed.
	Increment(ctx context.Context, userID uint, period BillingPeriod, kind Kind, tokens uint64) (*Record, error)
	// ListRecent returns at most limit records, most recent period first.
	ListRecent(ctx context.Context, userID uint, limit int) ([]*Record, error)
	// EnsureForUsers creates zeroed records for users that lack one and
	// returns how many were created.
	EnsureForUsers(ctx context.Context, userIDs []uint, period BillingPeriod) (int64, error)
}
