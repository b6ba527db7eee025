package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/postforge/postforge/internal/domain/subscription"
	vo "github.com/postforge/postforge/internal/domain/subscription/valueobjects"
	"github.com/postforge/postforge/internal/infrastructure/persistence/mappers"
	"github.com/postforge/postforge/internal/infrastructure/persistence/models"
	"github.com/postforge/postforge/internal/shared/db"
	apperrors "github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *subscription.Subscription) error {
	model := r.mapper.ToModel(sub)

	err := db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return r.translateWriteError(err)
		}
		invoices := r.mapper.ToInvoiceModels(model.ID, sub.PendingInvoices())
		if len(invoices) > 0 {
			if err := tx.Create(&invoices).Error; err != nil {
				return r.translateWriteError(err)
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, subscription.ErrActiveSubscriptionExists) {
			r.logger.Errorw("failed to create subscription", "error", err, "user_id", sub.UserID(), "external_id", sub.ExternalID())
		}
		return err
	}

	if err := sub.SetID(model.ID); err != nil {
		return err
	}
	sub.MarkPersisted()

	r.logger.Infow("subscription created", "id", model.ID, "user_id", sub.UserID(), "plan", sub.Plan())
	return nil
}

// Update writes state only when the aggregate changed since it was loaded.
func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *subscription.Subscription) error {
	if sub.Version() == sub.StoredVersion() && len(sub.PendingInvoices()) == 0 {
		return nil
	}

	model := r.mapper.ToModel(sub)
	err := db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.SubscriptionModel{}).
			Where("id = ? AND version = ?", sub.ID(), sub.StoredVersion()).
			Updates(map[string]interface{}{
				"active_user_id":    model.ActiveUserID,
				"status":            model.Status,
				"end_date":          model.EndDate,
				"next_billing_date": model.NextBillingDate,
				"cancelled_at":      model.CancelledAt,
				"paused_at":         model.PausedAt,
				"version":           model.Version,
				"updated_at":        model.UpdatedAt,
			})
		if result.Error != nil {
			return r.translateWriteError(result.Error)
		}
		if result.RowsAffected == 0 {
			return subscription.ErrConcurrentModification
		}

		invoices := r.mapper.ToInvoiceModels(sub.ID(), sub.PendingInvoices())
		if len(invoices) > 0 {
			if err := tx.Create(&invoices).Error; err != nil {
				if apperrors.IsDuplicateError(err) {
					return subscription.ErrDuplicateInvoice
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Warnw("failed to update subscription", "error", err, "id", sub.ID(), "version", sub.StoredVersion())
		return err
	}

	sub.MarkPersisted()
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByExternalID(ctx context.Context, externalID string) (*subscription.Subscription, error) {
	return r.first(ctx, "external_id = ?", externalID)
}

func (r *SubscriptionRepositoryImpl) GetActiveByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	return r.first(ctx, "active_user_id = ?", userID)
}

func (r *SubscriptionRepositoryImpl) ListActiveUserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("status = ?", vo.StatusActive.String()).
		Distinct().
		Pluck("user_id", &ids).Error
	if err != nil {
		r.logger.Errorw("failed to list active subscribers", "error", err)
		return nil, fmt.Errorf("failed to list active subscribers: %w", err)
	}
	return ids, nil
}

func (r *SubscriptionRepositoryImpl) first(ctx context.Context, query string, arg interface{}) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).
		Preload("Invoices", func(tx *gorm.DB) *gorm.DB { return tx.Order("paid_at ASC, id ASC") }).
		Where(query, arg).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription", "error", err, "query", query)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

// translateWriteError maps unique-index violations to domain errors. The
// active slot index is the only one whose name mentions active_user.
func (r *SubscriptionRepositoryImpl) translateWriteError(err error) error {
	if !apperrors.IsDuplicateError(err) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "active_user"):
		return subscription.ErrActiveSubscriptionExists
	case strings.Contains(msg, "external_invoice_id"), strings.Contains(msg, "uk_invoices_external_id"):
		return subscription.ErrDuplicateInvoice
	default:
		return apperrors.NewConflictError("subscription already exists", msg)
	}
}
