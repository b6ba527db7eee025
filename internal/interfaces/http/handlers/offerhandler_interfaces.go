package handlers

import (
	"context"

	offerdto "github.com/postforge/postforge/internal/application/offer/dto"
	"github.com/postforge/postforge/internal/application/offer/usecases"
)

// Use case interfaces for OfferHandler

type validateOfferUseCase interface {
	Execute(ctx context.Context, query usecases.ValidateOfferQuery) (*offerdto.ValidationDTO, error)
}

type calculateDiscountUseCase interface {
	Execute(ctx context.Context, query usecases.CalculateDiscountQuery) (*offerdto.ValidationDTO, error)
}

type applyOfferUseCase interface {
	Execute(ctx context.Context, cmd usecases.ApplyOfferCommand) (*offerdto.ApplicationDTO, error)
}

// Use case interfaces for AdminOfferHandler

type createOfferUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateOfferCommand) (*offerdto.OfferDTO, error)
}

type listOffersUseCase interface {
	Execute(ctx context.Context, query usecases.ListOffersQuery) ([]*offerdto.OfferDTO, error)
}

type deactivateOfferUseCase interface {
	Execute(ctx context.Context, cmd usecases.DeactivateOfferCommand) error
}
