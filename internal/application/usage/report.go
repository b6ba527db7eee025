package usage

import (
	"context"

	"github.com/postforge/postforge/internal/domain/plan"
	usagedomain "github.com/postforge/postforge/internal/domain/usage"
	apperrors "github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/mapper"
)

// LimitsResolver returns the effective plan of a user and its limits.
type LimitsResolver interface {
	Limits(ctx context.Context, userID uint) (plan.Tier, plan.Limits, error)
}

type Overview struct {
	Plan            string                  `json:"plan"`
	Period          string                  `json:"period"`
	Posts           usagedomain.QuotaStatus `json:"posts"`
	Comments        usagedomain.QuotaStatus `json:"comments"`
	TotalTokensUsed uint64                  `json:"total_tokens_used"`
}

type PlanStats struct {
	Plan string `json:"plan"`
	*Stats
}

type HistoryEntry struct {
	Period            string `json:"period"`
	PostsGenerated    uint64 `json:"posts_generated"`
	CommentsGenerated uint64 `json:"comments_generated"`
	TotalTokensUsed   uint64 `json:"total_tokens_used"`
}

var historyMapper = mapper.New(
	func(r *usagedomain.Record) HistoryEntry {
		return HistoryEntry{
			Period:            r.Period().String(),
			PostsGenerated:    r.PostsGenerated(),
			CommentsGenerated: r.CommentsGenerated(),
			TotalTokensUsed:   r.TotalTokensUsed(),
		}
	},
)

// Reporter serves the read side of usage for the API.
type Reporter struct {
	tracker *Tracker
	limits  LimitsResolver
}

func NewReporter(tracker *Tracker, limits LimitsResolver) *Reporter {
	return &Reporter{tracker: tracker, limits: limits}
}

func (r *Reporter) resolve(ctx context.Context, userID uint) (plan.Tier, plan.Limits, error) {
	tier, limits, err := r.limits.Limits(ctx, userID)
	if err != nil {
		r.tracker.logger.Errorw("failed to resolve plan limits", "error", err, "user_id", userID)
		return "", plan.Limits{}, apperrors.NewUnavailableError("entitlement unavailable")
	}
	return tier, limits, nil
}

// Overview returns the current period's quota per kind. It opens the period
// record when absent.
func (r *Reporter) Overview(ctx context.Context, userID uint) (*Overview, error) {
	if userID == 0 {
		return nil, apperrors.NewValidationError("user id is required")
	}
	tier, limits, err := r.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	period := r.tracker.CurrentPeriod()
	rec, err := r.tracker.GetOrCreate(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Plan:            tier.String(),
		Period:          period.String(),
		Posts:           usagedomain.EvaluateQuota(rec.PostsGenerated(), limits.PostsPerMonth),
		Comments:        usagedomain.EvaluateQuota(rec.CommentsGenerated(), limits.CommentsPerMonth),
		TotalTokensUsed: rec.TotalTokensUsed(),
	}, nil
}

func (r *Reporter) Stats(ctx context.Context, userID uint) (*PlanStats, error) {
	if userID == 0 {
		return nil, apperrors.NewValidationError("user id is required")
	}
	tier, limits, err := r.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := r.tracker.Stats(ctx, userID, limits)
	if err != nil {
		return nil, err
	}
	return &PlanStats{Plan: tier.String(), Stats: stats}, nil
}

func (r *Reporter) History(ctx context.Context, userID uint, maxPeriods int) ([]HistoryEntry, error) {
	if userID == 0 {
		return nil, apperrors.NewValidationError("user id is required")
	}
	records, err := r.tracker.History(ctx, userID, maxPeriods)
	if err != nil {
		return nil, err
	}

	return historyMapper.ToDTOList(records), nil
}
