package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/postforge/postforge/internal/domain/usage"
	"github.com/postforge/postforge/internal/infrastructure/persistence/mappers"
	"github.com/postforge/postforge/internal/infrastructure/persistence/models"
	"github.com/postforge/postforge/internal/shared/clock"
	"github.com/postforge/postforge/internal/shared/db"
	"github.com/postforge/postforge/internal/shared/logger"
)

const ensureBatchSize = 500

type UsageRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.UsageRecordMapper
	clock  clock.Clock
	logger logger.Interface
}

func NewUsageRecordRepository(db *gorm.DB, clk clock.Clock, logger logger.Interface) usage.Repository {
	return &UsageRecordRepositoryImpl{
		db:     db,
		mapper: mappers.NewUsageRecordMapper(),
		clock:  clk,
		logger: logger,
	}
}

func (r *UsageRecordRepositoryImpl) Get(ctx context.Context, userID uint, period usage.BillingPeriod) (*usage.Record, error) {
	var model models.UsageRecordModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND period = ?", userID, period.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get usage record", "error", err, "user_id", userID, "period", period.String())
		return nil, fmt.Errorf("failed to get usage record: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *UsageRecordRepositoryImpl) GetOrCreate(ctx context.Context, userID uint, period usage.BillingPeriod) (*usage.Record, error) {
	now := r.clock.Now()
	model := &models.UsageRecordModel{
		UserID:    userID,
		Period:    period.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to create usage record", "error", err, "user_id", userID, "period", period.String())
		return nil, fmt.Errorf("failed to create usage record: %w", err)
	}

	return r.Get(ctx, userID, period)
}

// Increment is a single INSERT ... ON CONFLICT UPDATE so concurrent callers
// never read-modify-write.
func (r *UsageRecordRepositoryImpl) Increment(ctx context.Context, userID uint, period usage.BillingPeriod, kind usage.Kind, tokens uint64) (*usage.Record, error) {
	if !kind.IsValid() {
		return nil, usage.ErrInvalidKind
	}

	now := r.clock.Now()
	model := &models.UsageRecordModel{
		UserID:          userID,
		Period:          period.String(),
		TotalTokensUsed: tokens,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	column := "comments_generated"
	if kind == usage.KindPost {
		column = "posts_generated"
		model.PostsGenerated = 1
	} else {
		model.CommentsGenerated = 1
	}

	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "period"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column:              gorm.Expr(column+" + ?", 1),
			"total_tokens_used": gorm.Expr("total_tokens_used + ?", tokens),
			"updated_at":        now,
		}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to increment usage", "error", err, "user_id", userID, "period", period.String(), "kind", kind)
		return nil, fmt.Errorf("failed to increment usage: %w", err)
	}

	return r.Get(ctx, userID, period)
}

func (r *UsageRecordRepositoryImpl) ListRecent(ctx context.Context, userID uint, limit int) ([]*usage.Record, error) {
	var records []*models.UsageRecordModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("period DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		r.logger.Errorw("failed to list usage records", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}
	return r.mapper.ToEntities(records)
}

func (r *UsageRecordRepositoryImpl) EnsureForUsers(ctx context.Context, userIDs []uint, period usage.BillingPeriod) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	now := r.clock.Now()
	rows := make([]models.UsageRecordModel, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, models.UsageRecordModel{
			UserID:    id,
			Period:    period.String(),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	result := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, ensureBatchSize)
	if result.Error != nil {
		r.logger.Errorw("failed to ensure usage records", "error", result.Error, "period", period.String(), "users", len(userIDs))
		return 0, fmt.Errorf("failed to ensure usage records: %w", result.Error)
	}

	r.logger.Infow("usage records ensured", "period", period.String(), "users", len(userIDs), "created", result.RowsAffected)
	return result.RowsAffected, nil
}
