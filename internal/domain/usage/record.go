package usage

import (
	"fmt"
	"time"
)

// Record holds one user's generation counters for one billing period. Counters
// only ever grow; the store is the single writer through an atomic increment.
type Record struct {
	id                uint
	userID            uint
	period            BillingPeriod
	postsGenerated    uint64
	commentsGenerated uint64
	totalTokensUsed   uint64
	createdAt         time.Time
	updatedAt         time.Time
}

// NewRecord returns a zeroed record for (userID, period).
func NewRecord(userID uint, period BillingPeriod, now time.Time) (*Record, error) {
	if userID == 0 {
		return nil, ErrInvalidUser
	}
	if period.IsZero() {
		return nil, ErrInvalidPeriod
	}
	return &Record{
		userID:    userID,
		period:    period,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructRecord rebuilds a record from persistence.
func ReconstructRecord(
	id, userID uint,
	period BillingPeriod,
	posts, comments, tokens uint64,
	createdAt, updatedAt time.Time,
) (*Record, error) {
	if id == 0 {
		return nil, fmt.Errorf("usage record ID cannot be zero")
	}
	if userID == 0 {
		return nil, ErrInvalidUser
	}
	return &Record{
		id:                id,
		userID:            userID,
		period:            period,
		postsGenerated:    posts,
		commentsGenerated: comments,
		totalTokensUsed:   tokens,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}, nil
}

func (r *Record) ID() uint                  { return r.id }
func (r *Record) UserID() uint              { return r.userID }
func (r *Record) Period() BillingPeriod     { return r.period }
func (r *Record) PostsGenerated() uint64    { return r.postsGenerated }
func (r *Record) CommentsGenerated() uint64 { return r.commentsGenerated }
func (r *Record) TotalTokensUsed() uint64   { return r.totalTokensUsed }
func (r *Record) CreatedAt() time.Time      { return r.createdAt }
func (r *Record) UpdatedAt() time.Time      { return r.updatedAt }

// Count returns the counter for kind. A nil record counts as zero.
func (r *Record) Count(kind Kind) uint64 {
	if r == nil {
		return 0
	}
	switch kind {
	case KindPost:
		return r.postsGenerated
	case KindComment:
		return r.commentsGenerated
	default:
		return 0
	}
}
