package usecases

import (
	"context"
	"fmt"

	"github.com/postforge/postforge/internal/application/subscription/dto"
	"github.com/postforge/postforge/internal/domain/subscription"
	"github.com/postforge/postforge/internal/shared/clock"
	apperrors "github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
)

type GetCurrentSubscriptionQuery struct {
	UserID uint
}

type GetCurrentSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	clock            clock.Clock
	logger           logger.Interface
}

func NewGetCurrentSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	clk clock.Clock,
	logger logger.Interface,
) *GetCurrentSubscriptionUseCase {
	return &GetCurrentSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		clock:            clk,
		logger:           logger,
	}
}

func (uc *GetCurrentSubscriptionUseCase) Execute(ctx context.Context, query GetCurrentSubscriptionQuery) (*dto.SubscriptionDTO, error) {
	sub, err := uc.subscriptionRepo.GetActiveByUserID(ctx, query.UserID)
	if err != nil {
		uc.logger.Errorw("failed to get active subscription", "error", err, "user_id", query.UserID)
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("no active subscription")
	}
	return dto.ToSubscriptionDTO(sub, uc.clock.Now()), nil
}
