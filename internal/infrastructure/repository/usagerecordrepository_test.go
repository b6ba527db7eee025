package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postforge/postforge/internal/domain/usage"
)

func TestUsageRecordRepository_Increment(t *testing.T) {
	repo := NewUsageRecordRepository(setupTestDB(t), testClock(), testLogger())
	ctx := context.Background()
	period := usage.BillingPeriod{Year: 2024, Month: 3}

	t.Run("creates the record on first use", func(t *testing.T) {
		rec, err := repo.Increment(ctx, 1, period, usage.KindPost, 120)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), rec.PostsGenerated())
		assert.Equal(t, uint64(0), rec.CommentsGenerated())
		assert.Equal(t, uint64(120), rec.TotalTokensUsed())
	})

	t.Run("adds to existing counters", func(t *testing.T) {
		rec, err := repo.Increment(ctx, 1, period, usage.KindComment, 30)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), rec.PostsGenerated())
		assert.Equal(t, uint64(1), rec.CommentsGenerated())
		assert.Equal(t, uint64(150), rec.TotalTokensUsed())
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := repo.Increment(ctx, 1, period, usage.Kind("video"), 0)
		assert.ErrorIs(t, err, usage.ErrInvalidKind)
	})
}

func TestUsageRecordRepository_ConcurrentIncrements(t *testing.T) {
	repo := NewUsageRecordRepository(setupTestDB(t), testClock(), testLogger())
	ctx := context.Background()
	period := usage.BillingPeriod{Year: 2024, Month: 5}

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Increment(ctx, 9, period, usage.KindPost, 10)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rec, err := repo.Get(ctx, 9, period)
	require.NoError(t, err)
	assert.Equal(t, uint64(workers), rec.PostsGenerated())
	assert.Equal(t, uint64(workers*10), rec.TotalTokensUsed())
}

func TestUsageRecordRepository_GetOrCreate(t *testing.T) {
	repo := NewUsageRecordRepository(setupTestDB(t), testClock(), testLogger())
	ctx := context.Background()
	period := usage.BillingPeriod{Year: 2024, Month: 1}

	missing, err := repo.Get(ctx, 3, period)
	require.NoError(t, err)
	assert.Nil(t, missing)

	first, err := repo.GetOrCreate(ctx, 3, period)
	require.NoError(t, err)
	_, err = repo.Increment(ctx, 3, period, usage.KindPost, 0)
	require.NoError(t, err)

	second, err := repo.GetOrCreate(ctx, 3, period)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, uint64(1), second.PostsGenerated(), "existing counters are left alone")
}

func TestUsageRecordRepository_ListRecent(t *testing.T) {
	repo := NewUsageRecordRepository(setupTestDB(t), testClock(), testLogger())
	ctx := context.Background()

	for _, p := range []string{"2023-11", "2024-01", "2023-12", "2024-02"} {
		period, err := usage.ParsePeriod(p)
		require.NoError(t, err)
		_, err = repo.GetOrCreate(ctx, 4, period)
		require.NoError(t, err)
	}
	_, err := repo.GetOrCreate(ctx, 5, usage.BillingPeriod{Year: 2024, Month: 3})
	require.NoError(t, err)

	records, err := repo.ListRecent(ctx, 4, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2024-02", records[0].Period().String())
	assert.Equal(t, "2024-01", records[1].Period().String())
	assert.Equal(t, "2023-12", records[2].Period().String())
}

func TestUsageRecordRepository_EnsureForUsers(t *testing.T) {
	repo := NewUsageRecordRepository(setupTestDB(t), testClock(), testLogger())
	ctx := context.Background()
	period := usage.BillingPeriod{Year: 2024, Month: 6}

	_, err := repo.Increment(ctx, 1, period, usage.KindPost, 0)
	require.NoError(t, err)

	created, err := repo.EnsureForUsers(ctx, []uint{1, 2, 3}, period)
	require.NoError(t, err)
	assert.Equal(t, int64(2), created)

	created, err = repo.EnsureForUsers(ctx, []uint{1, 2, 3}, period)
	require.NoError(t, err)
	assert.Zero(t, created)

	rec, err := repo.Get(ctx, 1, period)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rec.PostsGenerated())
}

func TestUsageRecordRepository_TimestampsFollowClock(t *testing.T) {
	clk := testClock()
	repo := NewUsageRecordRepository(setupTestDB(t), clk, testLogger())
	ctx := context.Background()
	period := usage.PeriodOf(repoNow)

	rec, err := repo.GetOrCreate(ctx, 11, period)
	require.NoError(t, err)
	assert.True(t, rec.CreatedAt().Equal(repoNow), "created_at %s", rec.CreatedAt())
	assert.True(t, rec.UpdatedAt().Equal(repoNow), "updated_at %s", rec.UpdatedAt())

	later := repoNow.Add(2 * time.Hour)
	clk.Set(later)
	rec, err = repo.Increment(ctx, 11, period, usage.KindComment, 5)
	require.NoError(t, err)
	assert.True(t, rec.CreatedAt().Equal(repoNow))
	assert.True(t, rec.UpdatedAt().Equal(later), "updated_at %s", rec.UpdatedAt())
}
