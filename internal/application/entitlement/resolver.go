package entitlement

import (
	"context"
	"fmt"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/shared/clock"
	"github.com/postforge/postforge/internal/shared/logger"
)

// PlanResolver determines the plan whose limits currently apply to a user.
type PlanResolver struct {
	userPlans     plan.UserPlanRepository
	subscriptions ActiveSubscriptionFinder
	catalog       plan.Catalog
	cache         PlanCache
	clock         clock.Clock
	logger        logger.Interface
}

// NewPlanResolver accepts a nil cache.
func NewPlanResolver(
	userPlans plan.UserPlanRepository,
	subscriptions ActiveSubscriptionFinder,
	catalog plan.Catalog,
	cache PlanCache,
	clk clock.Clock,
	logger logger.Interface,
) *PlanResolver {
	return &PlanResolver{
		userPlans:     userPlans,
		subscriptions: subscriptions,
		catalog:       catalog,
		cache:         cache,
		clock:         clk,
		logger:        logger,
	}
}

// Resolve returns the effective plan. A suspended user, or a paid plan
// without a live active subscription, falls back to the default tier.
func (r *PlanResolver) Resolve(ctx context.Context, userID uint) (plan.Tier, error) {
	if r.cache != nil {
		tier, found, err := r.cache.GetPlan(ctx, userID)
		if err != nil {
			r.logger.Warnw("entitlement cache read failed", "error", err, "user_id", userID)
		} else if found {
			return tier, nil
		}
	}

	tier, err := r.resolveFromStore(ctx, userID)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		if err := r.cache.SetPlan(ctx, userID, tier); err != nil {
			r.logger.Warnw("entitlement cache write failed", "error", err, "user_id", userID)
		}
	}
	return tier, nil
}

func (r *PlanResolver) resolveFromStore(ctx context.Context, userID uint) (plan.Tier, error) {
	defaultTier := r.catalog.DefaultTier()

	up, err := r.userPlans.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load user plan: %w", err)
	}
	if up == nil || up.PremiumSuspended() || up.Tier() == defaultTier {
		return defaultTier, nil
	}

	sub, err := r.subscriptions.GetActiveByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load active subscription: %w", err)
	}
	if sub == nil || !sub.IsEntitled(r.clock.Now()) {
		return defaultTier, nil
	}
	return up.Tier(), nil
}

// Limits resolves the plan and its catalog limits.
func (r *PlanResolver) Limits(ctx context.Context, userID uint) (plan.Tier, plan.Limits, error) {
	tier, err := r.Resolve(ctx, userID)
	if err != nil {
		return "", plan.Limits{}, err
	}
	limits, err := r.catalog.LimitsFor(tier)
	if err != nil {
		return tier, plan.Limits{}, err
	}
	return tier, limits, nil
}
