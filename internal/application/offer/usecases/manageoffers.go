package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/postforge/postforge/internal/application/offer/dto"
	"github.com/postforge/postforge/internal/domain/offer"
	"github.com/postforge/postforge/internal/shared/clock"
	apperrors "github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
)

type CreateOfferCommand struct {
	Code              string
	Description       string
	DiscountType      string
	DiscountValue     float64
	MaxDiscountAmount *float64
	MinAmount         float64
	ApplicablePlans   []string
	StartDate         time.Time
	EndDate           time.Time
	UsageLimit        *int
	PerUserLimit      int
}

type CreateOfferUseCase struct {
	offerRepo offer.Repository
	clock     clock.Clock
	logger    logger.Interface
}

func NewCreateOfferUseCase(offerRepo offer.Repository, clk clock.Clock, logger logger.Interface) *CreateOfferUseCase {
	return &CreateOfferUseCase{offerRepo: offerRepo, clock: clk, logger: logger}
}

func (uc *CreateOfferUseCase) Execute(ctx context.Context, cmd CreateOfferCommand) (*dto.OfferDTO, error) {
	o, err := offer.NewOffer(offer.CreateParams{
		Code:              cmd.Code,
		Description:       cmd.Description,
		DiscountType:      offer.DiscountType(cmd.DiscountType),
		DiscountValue:     cmd.DiscountValue,
		MaxDiscountAmount: cmd.MaxDiscountAmount,
		MinAmount:         cmd.MinAmount,
		ApplicablePlans:   cmd.ApplicablePlans,
		StartDate:         cmd.StartDate,
		EndDate:           cmd.EndDate,
		UsageLimit:        cmd.UsageLimit,
		PerUserLimit:      cmd.PerUserLimit,
		Now:               uc.clock.Now(),
	})
	if err != nil {
		return nil, apperrors.NewValidationError("invalid offer", err.Error())
	}

	if err := uc.offerRepo.Create(ctx, o); err != nil {
		if errors.Is(err, offer.ErrOfferCodeExists) {
			return nil, apperrors.NewConflictError("offer code already exists", o.Code())
		}
		uc.logger.Errorw("failed to create offer", "error", err, "code", o.Code())
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	uc.logger.Infow("offer created", "code", o.Code(), "type", o.DiscountType(), "value", o.DiscountValue())
	return dto.OfferMapper.ToDTO(o), nil
}

type ListOffersQuery struct {
	ActiveOnly bool
}

type ListOffersUseCase struct {
	offerRepo offer.Repository
	logger    logger.Interface
}

func NewListOffersUseCase(offerRepo offer.Repository, logger logger.Interface) *ListOffersUseCase {
	return &ListOffersUseCase{offerRepo: offerRepo, logger: logger}
}

func (uc *ListOffersUseCase) Execute(ctx context.Context, query ListOffersQuery) ([]*dto.OfferDTO, error) {
	offers, err := uc.offerRepo.List(ctx, query.ActiveOnly)
	if err != nil {
		uc.logger.Errorw("failed to list offers", "error", err)
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return dto.OfferMapper.ToDTOList(offers), nil
}

type DeactivateOfferCommand struct {
	Code string
}

type DeactivateOfferUseCase struct {
	offerRepo offer.Repository
	clock     clock.Clock
	logger    logger.Interface
}

func NewDeactivateOfferUseCase(offerRepo offer.Repository, clk clock.Clock, logger logger.Interface) *DeactivateOfferUseCase {
	return &DeactivateOfferUseCase{offerRepo: offerRepo, clock: clk, logger: logger}
}

func (uc *DeactivateOfferUseCase) Execute(ctx context.Context, cmd DeactivateOfferCommand) error {
	code := offer.NormalizeCode(cmd.Code)
	o, err := uc.offerRepo.GetByCode(ctx, code)
	if err != nil {
		uc.logger.Errorw("failed to load offer", "error", err, "code", code)
		return fmt.Errorf("failed to load offer: %w", err)
	}
	if o == nil {
		return apperrors.NewNotFoundError("offer not found", code)
	}
	if !o.IsActive() {
		return nil
	}

	o.Deactivate(uc.clock.Now())
	if err := uc.offerRepo.Update(ctx, o); err != nil {
		uc.logger.Errorw("failed to deactivate offer", "error", err, "code", code)
		return fmt.Errorf("failed to deactivate offer: %w", err)
	}

	uc.logger.Infow("offer deactivated", "code", code)
	return nil
}
