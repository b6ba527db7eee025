package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
	"github.com/postforge/postforge/internal/shared/clock"
	apperrors "github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
)

// maxConcurrentRetries bounds reload-and-retry on optimistic lock conflicts.
const maxConcurrentRetries = 3

// entitlementSync keeps the user's plan assignment in step with billing state.
type entitlementSync struct {
	userPlans   plan.UserPlanRepository
	catalog     plan.Catalog
	invalidator EntitlementInvalidator
	clock       clock.Clock
	logger      logger.Interface
}

func newEntitlementSync(
	userPlans plan.UserPlanRepository,
	catalog plan.Catalog,
	invalidator EntitlementInvalidator,
	clk clock.Clock,
	logger logger.Interface,
) *entitlementSync {
	return &entitlementSync{
		userPlans:   userPlans,
		catalog:     catalog,
		invalidator: invalidator,
		clock:       clk,
		logger:      logger,
	}
}

func (s *entitlementSync) load(ctx context.Context, userID uint) (*plan.UserPlan, error) {
	up, err := s.userPlans.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user plan: %w", err)
	}
	if up == nil {
		return plan.NewUserPlan(userID, s.catalog.DefaultTier(), s.clock.Now())
	}
	return up, nil
}

// activate grants tier and clears any suspension.
func (s *entitlementSync) activate(ctx context.Context, userID uint, tier plan.Tier) error {
	up, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	up.Activate(tier, s.clock.Now())
	return s.userPlans.Save(ctx, up)
}

// suspend withholds the paid tier without changing it.
func (s *entitlementSync) suspend(ctx context.Context, userID uint) error {
	up, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	up.Suspend(s.clock.Now())
	return s.userPlans.Save(ctx, up)
}

func (s *entitlementSync) downgrade(ctx context.Context, userID uint) error {
	up, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	up.Downgrade(s.catalog.DefaultTier(), s.clock.Now())
	return s.userPlans.Save(ctx, up)
}

// invalidate must run after the plan change is committed. A failure only
// delays the change until the cache entry expires.
func (s *entitlementSync) invalidate(ctx context.Context, userID uint) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidatePlan(ctx, userID); err != nil {
		s.logger.Warnw("failed to invalidate cached plan", "error", err, "user_id", userID)
	}
}

// retryOnConflict reruns fn while the subscription was modified concurrently.
// fn must reload the aggregate on every attempt.
func retryOnConflict(ctx context.Context, log logger.Interface, externalID string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxConcurrentRetries; attempt++ {
		err = fn(ctx)
		if !errors.Is(err, subscription.ErrConcurrentModification) {
			return err
		}
		log.Warnw("subscription modified concurrently, retrying",
			"external_id", externalID,
			"attempt", attempt,
		)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

// toAppError maps domain failures to transport-aware errors.
func toAppError(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, subscription.ErrActiveSubscriptionExists):
		return apperrors.NewConflictError("user already has an active subscription")
	case errors.Is(err, subscription.ErrNoActiveSubscription):
		return apperrors.NewNotFoundError("no active subscription")
	case errors.Is(err, plan.ErrUnknownTier), errors.Is(err, plan.ErrPriceNotFound), errors.Is(err, plan.ErrInvalidInterval):
		return apperrors.NewValidationError(err.Error())
	}
	return err
}
