package handlers

import (
	"context"

	"github.com/postforge/postforge/internal/application/usage"
)

// Use case interfaces for UsageHandler

type usageReporter interface {
	Overview(ctx context.Context, userID uint) (*usage.Overview, error)
	Stats(ctx context.Context, userID uint) (*usage.PlanStats, error)
	History(ctx context.Context, userID uint, maxPeriods int) ([]usage.HistoryEntry, error)
}
