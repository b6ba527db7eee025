package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/postforge/postforge/internal/application/subscription/dto"
	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
	"github.com/postforge/postforge/internal/shared/clock"
	apperrors "github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
	"github.com/postforge/postforge/internal/shared/utils"
)

type CreateSubscriptionCommand struct {
	UserID          uint   `validate:"required"`
	Plan            string `validate:"required"`
	Currency        string `validate:"required,iso4217"`
	BillingInterval string `validate:"required,oneof=monthly yearly"`
}

type CreateSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	catalog          plan.Catalog
	gateway          PaymentGateway
	txRunner         TransactionRunner
	sync             *entitlementSync
	clock            clock.Clock
	logger           logger.Interface
}

func NewCreateSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	userPlans plan.UserPlanRepository,
	catalog plan.Catalog,
	gateway PaymentGateway,
	txRunner TransactionRunner,
	invalidator EntitlementInvalidator,
	clk clock.Clock,
	logger logger.Interface,
) *CreateSubscriptionUseCase {
	return &CreateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		catalog:          catalog,
		gateway:          gateway,
		txRunner:         txRunner,
		sync:             newEntitlementSync(userPlans, catalog, invalidator, clk, logger),
		clock:            clk,
		logger:           logger,
	}
}

// resolvedPrice is a validated order for a paid tier.
type resolvedPrice struct {
	tier     plan.Tier
	interval plan.Interval
	price    plan.Price
}

func (uc *CreateSubscriptionUseCase) resolvePrice(cmd CreateSubscriptionCommand) (*resolvedPrice, error) {
	cmd.Currency = strings.ToUpper(strings.TrimSpace(cmd.Currency))
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	interval, err := plan.ParseInterval(cmd.BillingInterval)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid billing interval", cmd.BillingInterval)
	}
	def, err := uc.catalog.Get(plan.Normalize(cmd.Plan))
	if err != nil {
		return nil, apperrors.NewValidationError("unknown plan", cmd.Plan)
	}
	if !def.IsPaid() {
		return nil, apperrors.NewValidationError("plan cannot be subscribed to", cmd.Plan)
	}
	price, err := def.PriceFor(interval, cmd.Currency)
	if err != nil {
		return nil, apperrors.NewValidationError("plan is not offered at this interval and currency", err.Error())
	}
	return &resolvedPrice{tier: def.Tier, interval: interval, price: price}, nil
}

func (uc *CreateSubscriptionUseCase) Execute(ctx context.Context, cmd CreateSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	order, err := uc.resolvePrice(cmd)
	if err != nil {
		uc.logger.Warnw("invalid create subscription command", "error", err, "user_id", cmd.UserID)
		return nil, err
	}

	existing, err := uc.subscriptionRepo.GetActiveByUserID(ctx, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("failed to check active subscription", "error", err, "user_id", cmd.UserID)
		return nil, fmt.Errorf("failed to check active subscription: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("user already has an active subscription", existing.ExternalID())
	}

	remote, err := uc.gateway.CreateSubscription(ctx, CreateRemoteSubscriptionRequest{
		UserID:          cmd.UserID,
		Plan:            order.tier,
		ProcessorPlanID: order.price.ProcessorPlanID,
		Interval:        order.interval,
		Amount:          order.price.Amount,
		Currency:        order.price.Currency,
	})
	if err != nil {
		uc.logger.Errorw("payment processor rejected subscription", "error", err, "user_id", cmd.UserID, "plan", order.tier)
		return nil, apperrors.NewUpstreamError("failed to create subscription with payment processor")
	}

	now := uc.clock.Now()
	sub, err := subscription.NewSubscription(subscription.CreateParams{
		ExternalID: remote.ID,
		UserID:     cmd.UserID,
		Plan:       order.tier,
		Currency:   order.price.Currency,
		Amount:     order.price.Amount,
		Interval:   order.interval,
		Now:        now,
	})
	if err == nil {
		err = uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
			if err := uc.subscriptionRepo.Create(txCtx, sub); err != nil {
				return err
			}
			return uc.sync.activate(txCtx, cmd.UserID, order.tier)
		})
	}
	if err != nil {
		uc.logger.Errorw("failed to persist subscription, cancelling remote",
			"error", err,
			"user_id", cmd.UserID,
			"external_id", remote.ID,
		)
		uc.compensate(ctx, remote.ID)
		return nil, toAppError(err)
	}

	uc.sync.invalidate(ctx, cmd.UserID)

	uc.logger.Infow("subscription created",
		"user_id", cmd.UserID,
		"external_id", sub.ExternalID(),
		"plan", sub.Plan(),
		"interval", sub.Interval(),
		"amount", sub.Amount(),
		"currency", sub.Currency(),
	)

	return dto.ToSubscriptionDTO(sub, now), nil
}

// compensate cancels a remote subscription that could not be stored locally.
func (uc *CreateSubscriptionUseCase) compensate(ctx context.Context, externalID string) {
	if err := uc.gateway.CancelSubscription(context.WithoutCancel(ctx), externalID); err != nil {
		uc.logger.Errorw("failed to cancel orphaned remote subscription",
			"error", err,
			"external_id", externalID,
		)
	}
}
