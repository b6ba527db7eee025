// Package usage meters generated posts and comments per billing period.
package usage

import (
	"context"
	"fmt"

	"github.com/postforge/postforge/internal/domain/plan"
	usagedomain "github.com/postforge/postforge/internal/domain/usage"
	"github.com/postforge/postforge/internal/shared/clock"
	"github.com/postforge/postforge/internal/shared/logger"
)

const (
	DefaultHistoryPeriods = 6
	MaxHistoryPeriods     = 24
)

// KindStats is the usage of one kind in the current period.
type KindStats struct {
	Used          uint64 `json:"used"`
	Limit         uint64 `json:"limit"`
	Remaining     uint64 `json:"remaining"`
	GrowthPercent int64  `json:"growth_percent"`
}

// Stats summarises the current period against the plan limits.
type Stats struct {
	Period          string    `json:"period"`
	Posts           KindStats `json:"posts"`
	Comments        KindStats `json:"comments"`
	TotalTokensUsed uint64    `json:"total_tokens_used"`
}

// Tracker is the only writer of usage records.
type Tracker struct {
	repo   usagedomain.Repository
	clock  clock.Clock
	logger logger.Interface
}

func NewTracker(repo usagedomain.Repository, clk clock.Clock, logger logger.Interface) *Tracker {
	return &Tracker{
		repo:   repo,
		clock:  clk,
		logger: logger,
	}
}

// CurrentPeriod is the UTC calendar month of the tracker's clock.
func (t *Tracker) CurrentPeriod() usagedomain.BillingPeriod {
	return usagedomain.PeriodOf(t.clock.Now())
}

func (t *Tracker) GetOrCreate(ctx context.Context, userID uint, period usagedomain.BillingPeriod) (*usagedomain.Record, error) {
	if userID == 0 {
		return nil, usagedomain.ErrInvalidUser
	}
	if period.IsZero() {
		return nil, usagedomain.ErrInvalidPeriod
	}
	return t.repo.GetOrCreate(ctx, userID, period)
}

// Increment records one completed generation in the current period.
func (t *Tracker) Increment(ctx context.Context, userID uint, kind usagedomain.Kind, tokens uint64) (*usagedomain.Record, error) {
	if userID == 0 {
		return nil, usagedomain.ErrInvalidUser
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", usagedomain.ErrInvalidKind, kind)
	}

	period := t.CurrentPeriod()
	rec, err := t.repo.Increment(ctx, userID, period, kind, tokens)
	if err != nil {
		return nil, err
	}

	t.logger.Debugw("usage incremented",
		"user_id", userID,
		"period", period.String(),
		"kind", kind,
		"tokens", tokens,
	)
	return rec, nil
}

// CheckQuota compares the current period counter with limit. It never creates
// a record; a missing one reads as zero.
func (t *Tracker) CheckQuota(ctx context.Context, userID uint, kind usagedomain.Kind, limit uint64) (usagedomain.QuotaStatus, error) {
	if !kind.IsValid() {
		return usagedomain.QuotaStatus{}, fmt.Errorf("%w: %q", usagedomain.ErrInvalidKind, kind)
	}

	rec, err := t.repo.Get(ctx, userID, t.CurrentPeriod())
	if err != nil {
		return usagedomain.QuotaStatus{}, err
	}
	return usagedomain.EvaluateQuota(rec.Count(kind), limit), nil
}

// History returns up to maxPeriods records, most recent first.
func (t *Tracker) History(ctx context.Context, userID uint, maxPeriods int) ([]*usagedomain.Record, error) {
	if maxPeriods <= 0 {
		maxPeriods = DefaultHistoryPeriods
	}
	if maxPeriods > MaxHistoryPeriods {
		maxPeriods = MaxHistoryPeriods
	}
	return t.repo.ListRecent(ctx, userID, maxPeriods)
}

func (t *Tracker) Stats(ctx context.Context, userID uint, limits plan.Limits) (*Stats, error) {
	period := t.CurrentPeriod()

	current, err := t.repo.Get(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	previous, err := t.repo.Get(ctx, userID, period.Previous())
	if err != nil {
		return nil, err
	}

	kindStats := func(kind usagedomain.Kind, limit uint64) KindStats {
		q := usagedomain.EvaluateQuota(current.Count(kind), limit)
		return KindStats{
			Used:          q.Current,
			Limit:         q.Limit,
			Remaining:     q.Remaining,
			GrowthPercent: usagedomain.GrowthPercent(current.Count(kind), previous.Count(kind)),
		}
	}

	stats := &Stats{
		Period:   period.String(),
		Posts:    kindStats(usagedomain.KindPost, limits.PostsPerMonth),
		Comments: kindStats(usagedomain.KindComment, limits.CommentsPerMonth),
	}
	if current != nil {
		stats.TotalTokensUsed = current.TotalTokensUsed()
	}
	return stats, nil
}

// EnsurePeriod creates zeroed records for userIDs. It is safe to repeat.
func (t *Tracker) EnsurePeriod(ctx context.Context, userIDs []uint, period usagedomain.BillingPeriod) (int, error) {
	if period.IsZero() {
		return 0, usagedomain.ErrInvalidPeriod
	}
	created, err := t.repo.EnsureForUsers(ctx, userIDs, period)
	if err != nil {
		return 0, err
	}
	return int(created), nil
}
