package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
	vo "github.com/postforge/postforge/internal/domain/subscription/valueobjects"
)

var subNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestSubscription(t *testing.T, externalID string, userID uint) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewSubscription(subscription.CreateParams{
		ExternalID: externalID,
		UserID:     userID,
		Plan:       "pro",
		Currency:   "INR",
		Amount:     99900,
		Interval:   plan.IntervalMonthly,
		Now:        subNow,
	})
	require.NoError(t, err)
	return sub
}

func TestSubscriptionRepository_Create(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t), testLogger())
	ctx := context.Background()

	t.Run("persists and assigns an ID", func(t *testing.T) {
		sub := newTestSubscription(t, "sub_A", 1)
		require.NoError(t, repo.Create(ctx, sub))
		assert.NotZero(t, sub.ID())

		found, err := repo.GetActiveByUserID(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "sub_A", found.ExternalID())
		assert.Equal(t, vo.StatusActive, found.Status())
	})

	t.Run("second active subscription is rejected", func(t *testing.T) {
		err := repo.Create(ctx, newTestSubscription(t, "sub_B", 1))
		assert.ErrorIs(t, err, subscription.ErrActiveSubscriptionExists)
	})

	t.Run("cancelled subscription frees the slot", func(t *testing.T) {
		current, err := repo.GetActiveByUserID(ctx, 1)
		require.NoError(t, err)
		current.Cancel(subNow.Add(time.Hour))
		require.NoError(t, repo.Update(ctx, current))

		none, err := repo.GetActiveByUserID(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, none)

		require.NoError(t, repo.Create(ctx, newTestSubscription(t, "sub_C", 1)))
	})
}

func TestSubscriptionRepository_UpdateRecordsInvoices(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t), testLogger())
	ctx := context.Background()

	sub := newTestSubscription(t, "sub_inv", 2)
	require.NoError(t, repo.Create(ctx, sub))

	inv, err := subscription.NewPaidInvoice("inv_1", 99900, "INR", subNow)
	require.NoError(t, err)
	periodEnd := subNow.AddDate(0, 2, 0)
	require.True(t, sub.RecordCharge(inv, periodEnd, subNow))
	require.NoError(t, repo.Update(ctx, sub))
	assert.Empty(t, sub.PendingInvoices())

	loaded, err := repo.GetByExternalID(ctx, "sub_inv")
	require.NoError(t, err)
	assert.True(t, loaded.HasInvoice("inv_1"))
	assert.True(t, loaded.NextBillingDate().Equal(periodEnd))
	assert.Equal(t, 2, loaded.Version())
}

func TestSubscriptionRepository_DuplicateInvoiceAcrossSubscriptions(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t), testLogger())
	ctx := context.Background()

	a := newTestSubscription(t, "sub_a", 3)
	b := newTestSubscription(t, "sub_b", 4)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	inv, err := subscription.NewPaidInvoice("inv_shared", 100, "INR", subNow)
	require.NoError(t, err)
	a.RecordCharge(inv, time.Time{}, subNow)
	b.RecordCharge(inv, time.Time{}, subNow)

	require.NoError(t, repo.Update(ctx, a))
	assert.ErrorIs(t, repo.Update(ctx, b), subscription.ErrDuplicateInvoice)

	reloaded, err := repo.GetByExternalID(ctx, "sub_b")
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Version(), "failed update is rolled back")
}

func TestSubscriptionRepository_OptimisticLock(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t), testLogger())
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newTestSubscription(t, "sub_lock", 5)))

	first, err := repo.GetByExternalID(ctx, "sub_lock")
	require.NoError(t, err)
	second, err := repo.GetByExternalID(ctx, "sub_lock")
	require.NoError(t, err)

	first.Cancel(subNow)
	_, err = second.Pause(subNow)
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, first))
	assert.ErrorIs(t, repo.Update(ctx, second), subscription.ErrConcurrentModification)
}

func TestSubscriptionRepository_UnchangedUpdateIsNoop(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t), testLogger())
	ctx := context.Background()
	sub := newTestSubscription(t, "sub_noop", 6)
	require.NoError(t, repo.Create(ctx, sub))

	require.True(t, sub.Cancel(subNow))
	require.NoError(t, repo.Update(ctx, sub))
	assert.Equal(t, sub.Version(), sub.StoredVersion())

	// already cancelled: nothing to write, no version conflict
	require.False(t, sub.Cancel(subNow))
	assert.NoError(t, repo.Update(ctx, sub))
}

func TestSubscriptionRepository_ListActiveUserIDs(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t), testLogger())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestSubscription(t, "s1", 10)))
	require.NoError(t, repo.Create(ctx, newTestSubscription(t, "s2", 11)))
	paused := newTestSubscription(t, "s3", 12)
	require.NoError(t, repo.Create(ctx, paused))
	_, err := paused.Pause(subNow)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, paused))

	ids, err := repo.ListActiveUserIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{10, 11}, ids)
}
