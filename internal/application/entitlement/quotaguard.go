// Package entitlement decides whether a user may generate more content.
package entitlement

import (
	"context"
	"errors"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/usage"
	"github.com/postforge/postforge/internal/shared/logger"
)

type Reason string

const (
	ReasonNone                   Reason = ""
	ReasonQuotaExceeded          Reason = "quota_exceeded"
	ReasonEntitlementUnavailable Reason = "entitlement_unavailable"
	ReasonUnknownPlan            Reason = "unknown_plan"
)

// Decision is the outcome of an authorization. It is never an error.
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Reason    Reason    `json:"reason,omitempty"`
	Plan      plan.Tier `json:"plan,omitempty"`
	Current   uint64    `json:"current"`
	Limit     uint64    `json:"limit"`
	Remaining uint64    `json:"remaining"`
}

func deny(reason Reason, tier plan.Tier) Decision {
	return Decision{Reason: reason, Plan: tier}
}

// QuotaGuard gates generation on the effective plan's monthly limit.
// Check, generate and increment are not atomic; concurrent requests may
// overshoot a limit by the number in flight.
type QuotaGuard struct {
	resolver *PlanResolver
	catalog  plan.Catalog
	quota    QuotaChecker
	observer DecisionObserver
	logger   logger.Interface
}

// NewQuotaGuard accepts a nil observer.
func NewQuotaGuard(
	resolver *PlanResolver,
	catalog plan.Catalog,
	quota QuotaChecker,
	observer DecisionObserver,
	logger logger.Interface,
) *QuotaGuard {
	return &QuotaGuard{
		resolver: resolver,
		catalog:  catalog,
		quota:    quota,
		observer: observer,
		logger:   logger,
	}
}

// Authorize fails closed: any store, cache or catalog failure denies.
func (g *QuotaGuard) Authorize(ctx context.Context, userID uint, kind usage.Kind) Decision {
	d := g.authorize(ctx, userID, kind)
	if g.observer != nil {
		g.observer.ObserveQuotaDecision(kind, d.Allowed, string(d.Reason))
	}
	return d
}

func (g *QuotaGuard) authorize(ctx context.Context, userID uint, kind usage.Kind) Decision {
	if userID == 0 || !kind.IsValid() {
		return deny(ReasonEntitlementUnavailable, "")
	}

	tier, err := g.resolver.Resolve(ctx, userID)
	if err != nil {
		g.logger.Errorw("failed to resolve plan, denying", "error", err, "user_id", userID)
		return deny(ReasonEntitlementUnavailable, "")
	}

	limits, err := g.catalog.LimitsFor(tier)
	if err != nil {
		if errors.Is(err, plan.ErrUnknownTier) {
			g.logger.Warnw("user plan missing from catalog", "user_id", userID, "plan", tier)
			return deny(ReasonUnknownPlan, tier)
		}
		g.logger.Errorw("failed to load plan limits, denying", "error", err, "user_id", userID, "plan", tier)
		return deny(ReasonEntitlementUnavailable, tier)
	}

	limit := limits.PostsPerMonth
	if kind == usage.KindComment {
		limit = limits.CommentsPerMonth
	}

	status, err := g.quota.CheckQuota(ctx, userID, kind, limit)
	if err != nil {
		g.logger.Errorw("failed to read usage, denying", "error", err, "user_id", userID)
		return deny(ReasonEntitlementUnavailable, tier)
	}

	d := Decision{
		Allowed:   !status.Exceeded,
		Plan:      tier,
		Current:   status.Current,
		Limit:     status.Limit,
		Remaining: status.Remaining,
	}
	if status.Exceeded {
		d.Reason = ReasonQuotaExceeded
		g.logger.Infow("quota exceeded", "user_id", userID, "kind", kind, "plan", tier, "current", status.Current, "limit", status.Limit)
	}
	return d
}
