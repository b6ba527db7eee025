package entitlement

import (
	"context"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
	"github.com/postforge/postforge/internal/domain/usage"
)

// PlanCache caches resolved effective plans per user.
type PlanCache interface {
	// GetPlan reports found=false on a miss.
	GetPlan(ctx context.Context, userID uint) (tier plan.Tier, found bool, err error)
	SetPlan(ctx context.Context, userID uint, tier plan.Tier) error
	InvalidatePlan(ctx context.Context, userID uint) error
}

type QuotaChecker interface {
	CheckQuota(ctx context.Context, userID uint, kind usage.Kind, limit uint64) (usage.QuotaStatus, error)
}

type ActiveSubscriptionFinder interface {
	GetActiveByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error)
}

// DecisionObserver receives every authorization outcome.
type DecisionObserver interface {
	ObserveQuotaDecision(kind usage.Kind, allowed bool, reason string)
}
