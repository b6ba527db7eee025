package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/postforge/postforge/internal/domain/offer"
	"github.com/postforge/postforge/internal/infrastructure/persistence/mappers"
	"github.com/postforge/postforge/internal/infrastructure/persistence/models"
	"github.com/postforge/postforge/internal/shared/db"
	apperrors "github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
)

type OfferRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.OfferMapper
	logger logger.Interface
}

func NewOfferRepository(db *gorm.DB, logger logger.Interface) offer.Repository {
	return &OfferRepositoryImpl{
		db:     db,
		mapper: mappers.NewOfferMapper(),
		logger: logger,
	}
}

func (r *OfferRepositoryImpl) Create(ctx context.Context, o *offer.Offer) error {
	model, err := r.mapper.ToModel(o)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return offer.ErrOfferCodeExists
		}
		r.logger.Errorw("failed to create offer", "error", err, "code", o.Code())
		return fmt.Errorf("failed to create offer: %w", err)
	}

	if err := o.SetID(model.ID); err != nil {
		return err
	}
	r.logger.Infow("offer created", "id", model.ID, "code", o.Code())
	return nil
}

func (r *OfferRepositoryImpl) GetByCode(ctx context.Context, code string) (*offer.Offer, error) {
	return r.getByCode(ctx, db.GetTxFromContext(ctx, r.db), code)
}

func (r *OfferRepositoryImpl) GetByCodeForUpdate(ctx context.Context, code string) (*offer.Offer, error) {
	tx := db.GetTxFromContext(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.getByCode(ctx, tx, code)
}

func (r *OfferRepositoryImpl) getByCode(ctx context.Context, tx *gorm.DB, code string) (*offer.Offer, error) {
	var model models.OfferModel
	err := tx.Preload("Redemptions").
		Where("code = ?", offer.NormalizeCode(code)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get offer", "error", err, "code", code)
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *OfferRepositoryImpl) SaveUsage(ctx context.Context, o *offer.Offer, userID uint) error {
	red := o.Redemption(userID)
	if red == nil {
		return fmt.Errorf("offer %s has no redemption for user %d", o.Code(), userID)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.OfferModel{}).
		Where("id = ?", o.ID()).
		Updates(map[string]interface{}{
			"used_count": o.UsedCount(),
			"updated_at": o.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to save offer usage", "error", result.Error, "code", o.Code())
		return fmt.Errorf("failed to save offer usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return offer.ErrOfferNotFound
	}

	redemption := &models.OfferRedemptionModel{
		OfferID:    o.ID(),
		UserID:     userID,
		UsageCount: red.UsageCount,
		UsedAt:     red.UsedAt,
		CreatedAt:  red.UsedAt,
		UpdatedAt:  red.UsedAt,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "offer_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"usage_count", "used_at", "updated_at"}),
	}).Create(redemption).Error
	if err != nil {
		r.logger.Errorw("failed to save offer redemption", "error", err, "code", o.Code(), "user_id", userID)
		return fmt.Errorf("failed to save offer redemption: %w", err)
	}
	return nil
}

// Update saves the offer's editable fields. used_count is owned by SaveUsage
// and never written here.
func (r *OfferRepositoryImpl) Update(ctx context.Context, o *offer.Offer) error {
	model, err := r.mapper.ToModel(o)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OfferModel{}).
		Where("id = ?", o.ID()).
		Updates(map[string]interface{}{
			"description": model.Description,
			"is_active":   model.IsActive,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update offer", "error", result.Error, "code", o.Code())
		return fmt.Errorf("failed to update offer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return offer.ErrOfferNotFound
	}
	return nil
}

func (r *OfferRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]*offer.Offer, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.OfferModel{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var offers []*models.OfferModel
	if err := query.Order("created_at DESC, id DESC").Find(&offers).Error; err != nil {
		r.logger.Errorw("failed to list offers", "error", err)
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return r.mapper.ToEntities(offers)
}
