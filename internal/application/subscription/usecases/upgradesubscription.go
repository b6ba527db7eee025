package usecases

import (
	"context"
	"strings"

	"github.com/postforge/postforge/internal/application/subscription/dto"
	"github.com/postforge/postforge/internal/domain/subscription"
	apperrors "github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
)

type UpgradeSubscriptionCommand struct {
	UserID          uint
	Plan            string
	Currency        string
	BillingInterval string
}

// UpgradeSubscriptionUseCase switches plans by cancelling the current
// subscription and creating a new one. The two steps are not atomic: if the
// create fails the user is left without an active subscription.
type UpgradeSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	cancel           *CancelSubscriptionUseCase
	create           *CreateSubscriptionUseCase
	logger           logger.Interface
}

func NewUpgradeSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	cancel *CancelSubscriptionUseCase,
	create *CreateSubscriptionUseCase,
	logger logger.Interface,
) *UpgradeSubscriptionUseCase {
	return &UpgradeSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		cancel:           cancel,
		create:           create,
		logger:           logger,
	}
}

func (uc *UpgradeSubscriptionUseCase) Execute(ctx context.Context, cmd UpgradeSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	createCmd := CreateSubscriptionCommand{
		UserID:          cmd.UserID,
		Plan:            cmd.Plan,
		Currency:        cmd.Currency,
		BillingInterval: cmd.BillingInterval,
	}
	order, err := uc.create.resolvePrice(createCmd)
	if err != nil {
		return nil, err
	}

	current, err := uc.subscriptionRepo.GetActiveByUserID(ctx, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("failed to get active subscription", "error", err, "user_id", cmd.UserID)
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NewNotFoundError("no active subscription to upgrade")
	}
	if current.Plan() == order.tier && current.Interval() == order.interval &&
		strings.EqualFold(current.Currency(), order.price.Currency) {
		return nil, apperrors.NewValidationError("already subscribed to this plan")
	}

	if _, err := uc.cancel.Execute(ctx, CancelSubscriptionCommand{UserID: cmd.UserID}); err != nil {
		return nil, err
	}

	created, err := uc.create.Execute(ctx, createCmd)
	if err != nil {
		uc.logger.Errorw("upgrade cancelled the old subscription but failed to create the new one",
			"error", err,
			"user_id", cmd.UserID,
			"previous_external_id", current.ExternalID(),
			"plan", order.tier,
		)
		return nil, err
	}

	uc.logger.Infow("subscription upgraded",
		"user_id", cmd.UserID,
		"from_plan", current.Plan(),
		"to_plan", created.Plan,
		"external_id", created.ExternalID,
	)
	return created, nil
}
