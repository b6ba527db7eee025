// Package migration applies the database schema, with goose scripts for MySQL
// and gorm AutoMigrate for sqlite.
package migration

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/postforge/postforge/internal/shared/logger"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks goose for MySQL outside development and AutoMigrate
// otherwise. sqlite always uses AutoMigrate because the scripts are MySQL DDL.
func NewManager(environment, driver string) *Manager {
	var strategy Strategy
	switch {
	case strings.EqualFold(driver, "sqlite"):
		strategy = NewGormAutoMigrateStrategy()
	case strings.EqualFold(environment, "development"):
		strategy = NewGormAutoMigrateStrategy()
	default:
		strategy = NewGooseStrategy()
	}
	return NewManagerWithStrategy(strategy)
}

func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.NewLogger().With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB, models ...interface{}) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db, models...); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}

// Goose returns the goose strategy when the manager uses one.
func (m *Manager) Goose() (*GooseStrategy, bool) {
	g, ok := m.strategy.(*GooseStrategy)
	return g, ok
}
