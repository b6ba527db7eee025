package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/infrastructure/persistence/mappers"
	"github.com/postforge/postforge/internal/infrastructure/persistence/models"
	"github.com/postforge/postforge/internal/shared/db"
	"github.com/postforge/postforge/internal/shared/logger"
)

type UserPlanRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUserPlanRepository(db *gorm.DB, logger logger.Interface) plan.UserPlanRepository {
	return &UserPlanRepositoryImpl{db: db, logger: logger}
}

func (r *UserPlanRepositoryImpl) Get(ctx context.Context, userID uint) (*plan.UserPlan, error) {
	var model models.UserPlanModel
	err := db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get user plan", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get user plan: %w", err)
	}
	return mappers.UserPlanToEntity(&model), nil
}

func (r *UserPlanRepositoryImpl) Save(ctx context.Context, up *plan.UserPlan) error {
	model := mappers.UserPlanToModel(up)
	model.CreatedAt = model.UpdatedAt

	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"plan", "premium_suspended", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to save user plan", "error", err, "user_id", up.UserID())
		return fmt.Errorf("failed to save user plan: %w", err)
	}

	r.logger.Infow("user plan saved", "user_id", up.UserID(), "plan", up.Tier(), "suspended", up.PremiumSuspended())
	return nil
}
