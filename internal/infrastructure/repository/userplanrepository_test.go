package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postforge/postforge/internal/domain/plan"
)

func TestUserPlanRepository_SaveUpserts(t *testing.T) {
	repo := NewUserPlanRepository(setupTestDB(t), testLogger())
	ctx := context.Background()
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	missing, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing)

	up, err := plan.NewUserPlan(42, "free", now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, up))

	up.Activate("pro", now.Add(time.Hour))
	require.NoError(t, repo.Save(ctx, up))

	got, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, plan.Tier("pro"), got.Tier())
	assert.False(t, got.PremiumSuspended())

	up.Suspend(now.Add(2 * time.Hour))
	require.NoError(t, repo.Save(ctx, up))
	got, err = repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, got.PremiumSuspended())
}
