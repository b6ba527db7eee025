package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/postforge/postforge/internal/application/offer/dto"
	"github.com/postforge/postforge/internal/domain/offer"
	"github.com/postforge/postforge/internal/shared/clock"
	apperrors "github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
)

type ValidateOfferQuery struct {
	Code   string
	Amount float64
	UserID uint
	Plan   string
	// At defaults to the current time.
	At time.Time
}

// ValidateOfferUseCase checks a code against an order without changing any
// counters. Rejections are outcomes, not errors.
type ValidateOfferUseCase struct {
	offerRepo offer.Repository
	observer  OfferObserver
	clock     clock.Clock
	logger    logger.Interface
}

func NewValidateOfferUseCase(
	offerRepo offer.Repository,
	observer OfferObserver,
	clk clock.Clock,
	logger logger.Interface,
) *ValidateOfferUseCase {
	return &ValidateOfferUseCase{
		offerRepo: offerRepo,
		observer:  observer,
		clock:     clk,
		logger:    logger,
	}
}

func validateOrder(code string, amount float64, userID uint) error {
	if offer.NormalizeCode(code) == "" {
		return apperrors.NewValidationError("code is required")
	}
	if amount < 0 {
		return apperrors.NewValidationError("amount cannot be negative")
	}
	if userID == 0 {
		return apperrors.NewValidationError("user id is required")
	}
	return nil
}

func (uc *ValidateOfferUseCase) Execute(ctx context.Context, query ValidateOfferQuery) (*dto.ValidationDTO, error) {
	if err := validateOrder(query.Code, query.Amount, query.UserID); err != nil {
		return nil, err
	}
	code := offer.NormalizeCode(query.Code)
	at := query.At
	if at.IsZero() {
		at = uc.clock.Now()
	}

	o, err := uc.offerRepo.GetByCode(ctx, code)
	if err != nil {
		uc.logger.Errorw("failed to load offer", "error", err, "code", code)
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}

	var ev offer.Evaluation
	if o == nil {
		ev = offer.Unknown(query.Amount)
	} else {
		ev = o.Evaluate(query.Amount, query.UserID, query.Plan, at)
	}

	if uc.observer != nil {
		uc.observer.ObserveOfferEvaluation(operationValidate, ev.Valid, string(ev.Reason))
	}
	uc.logger.Debugw("offer validated",
		"code", code,
		"user_id", query.UserID,
		"valid", ev.Valid,
		"reason", ev.Reason,
	)

	return dto.NewValidationDTO(code, query.Amount, ev), nil
}

// CalculateDiscountUseCase prices an order at checkout time.
type CalculateDiscountUseCase struct {
	validate *ValidateOfferUseCase
}

func NewCalculateDiscountUseCase(validate *ValidateOfferUseCase) *CalculateDiscountUseCase {
	return &CalculateDiscountUseCase{validate: validate}
}

type CalculateDiscountQuery struct {
	Code   string
	Amount float64
	UserID uint
	Plan   string
}

func (uc *CalculateDiscountUseCase) Execute(ctx context.Context, query CalculateDiscountQuery) (*dto.ValidationDTO, error) {
	return uc.validate.Execute(ctx, ValidateOfferQuery{
		Code:   query.Code,
		Amount: query.Amount,
		UserID: query.UserID,
		Plan:   query.Plan,
	})
}
