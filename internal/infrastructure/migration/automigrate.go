package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/infrastructure/persistence/models"
	"github.com/postforge/postforge/internal/shared/logger"
)

// GormAutoMigrateStrategy derives the schema from the persistence models.
// It is used for sqlite and local development.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() Strategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.automigrate"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, extra ...interface{}) error {
	all := append(models.All(), extra...)
	s.logger.Infow("running gorm auto migrate", "models_count", len(all))

	if err := db.AutoMigrate(all...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return StrategyAutoMigrate
}
