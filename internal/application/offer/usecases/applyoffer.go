package usecases

import (
	"context"
	"fmt"

	"github.com/postforge/postforge/internal/application/offer/dto"
	"github.com/postforge/postforge/internal/domain/offer"
	"github.com/postforge/postforge/internal/shared/clock"
	"github.com/postforge/postforge/internal/shared/logger"
)

type ApplyOfferCommand struct {
	Code   string
	UserID uint
	Amount float64
	Plan   string
}

// ApplyOfferUseCase redeems a code for a completed order. It must be called
// once per order; concurrent applies of one code are serialized by a row lock.
type ApplyOfferUseCase struct {
	offerRepo offer.Repository
	txRunner  TransactionRunner
	observer  OfferObserver
	clock     clock.Clock
	logger    logger.Interface
}

func NewApplyOfferUseCase(
	offerRepo offer.Repository,
	txRunner TransactionRunner,
	observer OfferObserver,
	clk clock.Clock,
	logger logger.Interface,
) *ApplyOfferUseCase {
	return &ApplyOfferUseCase{
		offerRepo: offerRepo,
		txRunner:  txRunner,
		observer:  observer,
		clock:     clk,
		logger:    logger,
	}
}

func (uc *ApplyOfferUseCase) Execute(ctx context.Context, cmd ApplyOfferCommand) (*dto.ApplicationDTO, error) {
	if err := validateOrder(cmd.Code, cmd.Amount, cmd.UserID); err != nil {
		return nil, err
	}
	code := offer.NormalizeCode(cmd.Code)

	var ev offer.Evaluation
	err := uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
		o, err := uc.offerRepo.GetByCodeForUpdate(txCtx, code)
		if err != nil {
			return err
		}
		if o == nil {
			ev = offer.Unknown(cmd.Amount)
			return nil
		}
		ev = o.Redeem(cmd.Amount, cmd.UserID, cmd.Plan, uc.clock.Now())
		if !ev.Valid {
			return nil
		}
		return uc.offerRepo.SaveUsage(txCtx, o, cmd.UserID)
	})
	if err != nil {
		uc.logger.Errorw("failed to apply offer", "error", err, "code", code, "user_id", cmd.UserID)
		return nil, fmt.Errorf("failed to apply offer: %w", err)
	}

	if uc.observer != nil {
		uc.observer.ObserveOfferEvaluation(operationApply, ev.Valid, string(ev.Reason))
	}
	if ev.Valid {
		uc.logger.Infow("offer applied",
			"code", code,
			"user_id", cmd.UserID,
			"amount", cmd.Amount,
			"discount", ev.Discount,
		)
	} else {
		uc.logger.Infow("offer not applied", "code", code, "user_id", cmd.UserID, "reason", ev.Reason)
	}

	return dto.NewApplicationDTO(code, cmd.Amount, ev), nil
}
