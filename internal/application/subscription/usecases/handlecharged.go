package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
	vo "github.com/postforge/postforge/internal/domain/subscription/valueobjects"
	"github.com/postforge/postforge/internal/shared/clock"
	"github.com/postforge/postforge/internal/shared/goroutine"
	"github.com/postforge/postforge/internal/shared/logger"
)

const receiptTimeout = 30 * time.Second

type HandleChargedCommand struct {
	ExternalID        string
	ExternalInvoiceID string
	Amount            int64
	Currency          string
	PaidAt            time.Time
	PeriodEnd         time.Time
	// Email receives the receipt; empty skips it.
	Email string
}

type HandleChargedUseCase struct {
	subscriptionRepo subscription.Repository
	txRunner         TransactionRunner
	sync             *entitlementSync
	notifier         ReceiptNotifier
	clock            clock.Clock
	logger           logger.Interface
}

// NewHandleChargedUseCase accepts a nil notifier.
func NewHandleChargedUseCase(
	subscriptionRepo subscription.Repository,
	userPlans plan.UserPlanRepository,
	catalog plan.Catalog,
	txRunner TransactionRunner,
	invalidator EntitlementInvalidator,
	notifier ReceiptNotifier,
	clk clock.Clock,
	logger logger.Interface,
) *HandleChargedUseCase {
	return &HandleChargedUseCase{
		subscriptionRepo: subscriptionRepo,
		txRunner:         txRunner,
		sync:             newEntitlementSync(userPlans, catalog, invalidator, clk, logger),
		notifier:         notifier,
		clock:            clk,
		logger:           logger,
	}
}

// Execute records the charge once per invoice id. Replays are successful
// no-ops.
func (uc *HandleChargedUseCase) Execute(ctx context.Context, cmd HandleChargedCommand) error {
	var (
		sub      *subscription.Subscription
		recorded bool
	)

	err := retryOnConflict(ctx, uc.logger, cmd.ExternalID, func(ctx context.Context) error {
		recorded = false
		return uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
			var err error
			sub, err = uc.subscriptionRepo.GetByExternalID(txCtx, cmd.ExternalID)
			if err != nil {
				return err
			}
			if sub == nil {
				return fmt.Errorf("%w: %s", subscription.ErrSubscriptionNotFound, cmd.ExternalID)
			}

			currency := cmd.Currency
			if currency == "" {
				currency = sub.Currency()
			}
			paidAt := cmd.PaidAt
			now := uc.clock.Now()
			if paidAt.IsZero() {
				paidAt = now
			}
			inv, err := subscription.NewPaidInvoice(cmd.ExternalInvoiceID, cmd.Amount, currency, paidAt)
			if err != nil {
				return err
			}

			resume, err := uc.canResume(txCtx, sub)
			if err != nil {
				return err
			}
			var applied bool
			if resume {
				applied = sub.RecordCharge(inv, cmd.PeriodEnd, now)
			} else {
				applied = sub.RecordChargeWithoutResume(inv, cmd.PeriodEnd, now)
			}
			if !applied {
				return nil
			}
			if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
				// A new subscription took the slot after canResume; reload and
				// record without resuming.
				if errors.Is(err, subscription.ErrActiveSubscriptionExists) {
					return fmt.Errorf("%w: %w", subscription.ErrConcurrentModification, err)
				}
				return err
			}
			recorded = true

			if sub.Status() != vo.StatusActive {
				return nil
			}
			return uc.sync.activate(txCtx, sub.UserID(), sub.Plan())
		})
	})
	if errors.Is(err, subscription.ErrDuplicateInvoice) {
		uc.logger.Infow("charge already recorded by a concurrent delivery",
			"external_id", cmd.ExternalID,
			"invoice_id", cmd.ExternalInvoiceID,
		)
		return nil
	}
	if err != nil {
		uc.logger.Errorw("failed to record charge",
			"error", err,
			"external_id", cmd.ExternalID,
			"invoice_id", cmd.ExternalInvoiceID,
		)
		return fmt.Errorf("failed to record charge: %w", err)
	}

	if !recorded {
		uc.logger.Infow("charge replay ignored",
			"external_id", cmd.ExternalID,
			"invoice_id", cmd.ExternalInvoiceID,
		)
		return nil
	}

	uc.sync.invalidate(ctx, sub.UserID())

	uc.logger.Infow("subscription charged",
		"external_id", cmd.ExternalID,
		"invoice_id", cmd.ExternalInvoiceID,
		"amount", cmd.Amount,
		"status", sub.Status(),
		"next_billing_date", sub.NextBillingDate(),
	)

	uc.sendReceipt(sub, cmd)
	return nil
}

// canResume reports whether a paused subscription may take back the user's
// active slot. Pausing frees the slot, so the user may have subscribed again.
func (uc *HandleChargedUseCase) canResume(ctx context.Context, sub *subscription.Subscription) (bool, error) {
	if sub.Status() != vo.StatusPaused {
		return true, nil
	}
	active, err := uc.subscriptionRepo.GetActiveByUserID(ctx, sub.UserID())
	if err != nil {
		return false, err
	}
	if active != nil && active.ID() != sub.ID() {
		uc.logger.Warnw("charge on paused subscription recorded without resuming",
			"external_id", sub.ExternalID(),
			"active_external_id", active.ExternalID(),
			"user_id", sub.UserID(),
		)
		return false, nil
	}
	return true, nil
}

func (uc *HandleChargedUseCase) sendReceipt(sub *subscription.Subscription, cmd HandleChargedCommand) {
	if uc.notifier == nil || cmd.Email == "" {
		return
	}
	receipt := Receipt{
		UserID:         sub.UserID(),
		Email:          cmd.Email,
		SubscriptionID: sub.ExternalID(),
		Plan:           sub.Plan(),
		InvoiceID:      cmd.ExternalInvoiceID,
		Amount:         cmd.Amount,
		Currency:       sub.Currency(),
		PaidAt:         cmd.PaidAt,
	}
	goroutine.SafeGoWithTimeout(uc.logger, "send-receipt", receiptTimeout, func(ctx context.Context) {
		if err := uc.notifier.SendReceipt(ctx, receipt); err != nil {
			uc.logger.Warnw("failed to send receipt", "error", err, "invoice_id", receipt.InvoiceID)
		}
	})
}
