package usecases

import (
	"context"
	"fmt"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
	"github.com/postforge/postforge/internal/shared/clock"
	"github.com/postforge/postforge/internal/shared/logger"
)

type HandleCancelledCommand struct {
	ExternalID string
}

type HandleCancelledUseCase struct {
	subscriptionRepo subscription.Repository
	txRunner         TransactionRunner
	sync             *entitlementSync
	clock            clock.Clock
	logger           logger.Interface
}

func NewHandleCancelledUseCase(
	subscriptionRepo subscription.Repository,
	userPlans plan.UserPlanRepository,
	catalog plan.Catalog,
	txRunner TransactionRunner,
	invalidator EntitlementInvalidator,
	clk clock.Clock,
	logger logger.Interface,
) *HandleCancelledUseCase {
	return &HandleCancelledUseCase{
		subscriptionRepo: subscriptionRepo,
		txRunner:         txRunner,
		sync:             newEntitlementSync(userPlans, catalog, invalidator, clk, logger),
		clock:            clk,
		logger:           logger,
	}
}

func (uc *HandleCancelledUseCase) Execute(ctx context.Context, cmd HandleCancelledCommand) error {
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

			if !sub.Cancel(uc.clock.Now()) {
				return nil
			}
			if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
				return err
			}
			changed = true

			// A newer subscription keeps its entitlement.
			active, err := uc.subscriptionRepo.GetActiveByUserID(txCtx, userID)
			if err != nil {
				return err
			}
			if active != nil {
				return nil
			}
			return uc.sync.downgrade(txCtx, userID)
		})
	})
	if err != nil {
		uc.logger.Errorw("failed to cancel subscription from webhook", "error", err, "external_id", cmd.ExternalID)
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	if !changed {
		uc.logger.Debugw("subscription already cancelled", "external_id", cmd.ExternalID)
		return nil
	}

	uc.sync.invalidate(ctx, userID)
	uc.logger.Infow("subscription cancelled by payment processor", "external_id", cmd.ExternalID, "user_id", userID)
	return nil
}
