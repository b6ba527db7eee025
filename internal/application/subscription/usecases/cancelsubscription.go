package usecases

import (
	"context"
	"fmt"

	"github.com/postforge/postforge/internal/application/subscription/dto"
	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
	"github.com/postforge/postforge/internal/shared/clock"
	apperrors "github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
)

type CancelSubscriptionCommand struct {
	UserID uint
}

type CancelSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	gateway          PaymentGateway
	txRunner         TransactionRunner
	sync             *entitlementSync
	clock            clock.Clock
	logger           logger.Interface
}

func NewCancelSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	userPlans plan.UserPlanRepository,
	catalog plan.Catalog,
	gateway PaymentGateway,
	txRunner TransactionRunner,
	invalidator EntitlementInvalidator,
	clk clock.Clock,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
		txRunner:         txRunner,
		sync:             newEntitlementSync(userPlans, catalog, invalidator, clk, logger),
		clock:            clk,
		logger:           logger,
	}
}

// Execute cancels at the processor first; the local record changes only after
// the processor confirms.
func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	if cmd.UserID == 0 {
		return nil, apperrors.NewValidationError("user id is required")
	}

	sub, err := uc.subscriptionRepo.GetActiveByUserID(ctx, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("failed to get active subscription", "error", err, "user_id", cmd.UserID)
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("no active subscription")
	}

	if err := uc.gateway.CancelSubscription(ctx, sub.ExternalID()); err != nil {
		uc.logger.Errorw("payment processor rejected cancellation",
			"error", err,
			"user_id", cmd.UserID,
			"external_id", sub.ExternalID(),
		)
		return nil, apperrors.NewUpstreamError("failed to cancel subscription with payment processor")
	}

	now := uc.clock.Now()
	err = retryOnConflict(ctx, uc.logger, sub.ExternalID(), func(ctx context.Context) error {
		return uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
			current, err := uc.subscriptionRepo.GetByExternalID(txCtx, sub.ExternalID())
			if err != nil {
				return err
			}
			if current == nil {
				return subscription.ErrSubscriptionNotFound
			}
			sub = current
			if !sub.Cancel(now) {
				return nil
			}
			if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
				return err
			}
			return uc.sync.downgrade(txCtx, cmd.UserID)
		})
	})
	if err != nil {
		// The processor will deliver subscription.cancelled, which reconciles.
		uc.logger.Errorw("remote subscription cancelled but local update failed",
			"error", err,
			"user_id", cmd.UserID,
			"external_id", sub.ExternalID(),
		)
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	uc.sync.invalidate(ctx, cmd.UserID)

	uc.logger.Infow("subscription cancelled",
		"user_id", cmd.UserID,
		"external_id", sub.ExternalID(),
		"plan", sub.Plan(),
	)

	return dto.ToSubscriptionDTO(sub, now), nil
}
