package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
	"github.com/postforge/postforge/internal/shared/clock"
	"github.com/postforge/postforge/internal/shared/logger"
)

type HandlePausedCommand struct {
	ExternalID string
}

type HandlePausedUseCase struct {
	subscriptionRepo subscription.Repository
	txRunner         TransactionRunner
	sync             *entitlementSync
	clock            clock.Clock
	logger           logger.Interface
}

func NewHandlePausedUseCase(
	subscriptionRepo subscription.Repository,
	userPlans plan.UserPlanRepository,
	catalog plan.Catalog,
	txRunner TransactionRunner,
	invalidator EntitlementInvalidator,
	clk clock.Clock,
	logger logger.Interface,
) *HandlePausedUseCase {
	return &HandlePausedUseCase{
		subscriptionRepo: subscriptionRepo,
		txRunner:         txRunner,
		sync:             newEntitlementSync(userPlans, catalog, invalidator, clk, logger),
		clock:            clk,
		logger:           logger,
	}
}

// Execute suspends the paid entitlement and keeps the plan, so a later charge
// restores it. A pause for a cancelled subscription is ignored.
func (uc *HandlePausedUseCase) Execute(ctx context.Context, cmd HandlePausedCommand) error {
	var (
		userID  uint
		changed bool
	)

	err := retryOnConflict(ctx, uc.logger, cmd.ExternalID, func(ctx context.Context) error {
		changed = false
		return uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
			sub, err := uc.subscriptionRepo.GetByExternalID(txCtx, cmd.ExternalID)
			if err != nil {
				return err
			}
			if sub == nil {
				return fmt.Errorf("%w: %s", subscription.ErrSubscriptionNotFound, cmd.ExternalID)
			}
			userID = sub.UserID()

			paused, err := sub.Pause(uc.clock.Now())
			if err != nil || !paused {
				return err
			}
			if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
				return err
			}
			changed = true
			return uc.sync.suspend(txCtx, userID)
		})
	})
	if errors.Is(err, subscription.ErrInvalidStatusTransition) {
		uc.logger.Warnw("ignoring pause for subscription that cannot be paused", "error", err, "external_id", cmd.ExternalID)
		return nil
	}
	if err != nil {
		uc.logger.Errorw("failed to pause subscription from webhook", "error", err, "external_id", cmd.ExternalID)
		return fmt.Errorf("failed to pause subscription: %w", err)
	}
	if !changed {
		uc.logger.Debugw("subscription already paused", "external_id", cmd.ExternalID)
		return nil
	}

	uc.sync.invalidate(ctx, userID)
	uc.logger.Infow("subscription paused by payment processor", "external_id", cmd.ExternalID, "user_id", userID)
	return nil
}
