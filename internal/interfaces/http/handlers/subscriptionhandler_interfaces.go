package handlers

import (
	"context"

	subdto "github.com/postforge/postforge/internal/application/subscription/dto"
	"github.com/postforge/postforge/internal/application/subscription/usecases"
)

// Use case interfaces for SubscriptionHandler

type createSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateSubscriptionCommand) (*subdto.SubscriptionDTO, error)
}

type upgradeSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpgradeSubscriptionCommand) (*subdto.SubscriptionDTO, error)
}

type cancelSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd usecases.CancelSubscriptionCommand) (*subdto.SubscriptionDTO, error)
}

type getCurrentSubscriptionUseCase interface {
	Execute(ctx context.Context, query usecases.GetCurrentSubscriptionQuery) (*subdto.SubscriptionDTO, error)
}
