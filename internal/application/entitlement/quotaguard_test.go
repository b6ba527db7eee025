package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
	"github.com/postforge/postforge/internal/domain/usage"
	"github.com/postforge/postforge/internal/shared/clock"
	"github.com/postforge/postforge/internal/shared/logger"
)

var guardNow = time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

func testCatalog(t *testing.T) plan.Catalog {
	t.Helper()
	c, err := plan.NewStaticCatalog("free",
		plan.Definition{Tier: "free", Limits: plan.Limits{PostsPerMonth: 3, CommentsPerMonth: 10}},
		plan.Definition{Tier: "starter", Limits: plan.Limits{PostsPerMonth: 10, CommentsPerMonth: 0},
			Prices: map[plan.Interval]plan.Price{plan.IntervalMonthly: {Amount: 49900, Currency: "INR"}}},
	)
	require.NoError(t, err)
	return c
}

type guardFixture struct {
	userPlans *mockUserPlanRepository
	subs      *mockSubscriptionFinder
	quota     *mockQuotaChecker
	cache     *mockPlanCache
	observer  *recordingObserver
	clock     *clock.FakeClock
	guard     *QuotaGuard
}

func newGuardFixture(t *testing.T, withCache bool) *guardFixture {
	f := &guardFixture{
		userPlans: new(mockUserPlanRepository),
		subs:      new(mockSubscriptionFinder),
		quota:     new(mockQuotaChecker),
		observer:  &recordingObserver{},
		clock:     clock.NewFakeClock(guardNow),
	}
	var cache PlanCache
	if withCache {
		f.cache = new(mockPlanCache)
		cache = f.cache
	}
	catalog := testCatalog(t)
	resolver := NewPlanResolver(f.userPlans, f.subs, catalog, cache, f.clock, logger.NewNopLogger())
	f.guard = NewQuotaGuard(resolver, catalog, f.quota, f.observer, logger.NewNopLogger())
	return f
}

func activeSubscription(t *testing.T, userID uint, tier plan.Tier, start time.Time) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewSubscription(subscription.CreateParams{
		ExternalID: "sub_test", UserID: userID, Plan: tier, Currency: "INR",
		Amount: 49900, Interval: plan.IntervalMonthly, Now: start,
	})
	require.NoError(t, err)
	return sub
}

func TestQuotaGuard_StarterScenario(t *testing.T) {
	f := newGuardFixture(t, false)
	up := plan.ReconstructUserPlan(1, "starter", false, guardNow)
	f.userPlans.On("Get", mock.Anything, uint(1)).Return(up, nil)
	f.subs.On("GetActiveByUserID", mock.Anything, uint(1)).Return(activeSubscription(t, 1, "starter", guardNow.Add(-time.Hour)), nil)

	f.quota.On("CheckQuota", mock.Anything, uint(1), usage.KindPost, uint64(10)).
		Return(usage.EvaluateQuota(9, 10), nil).Once()
	d := f.guard.Authorize(context.Background(), 1, usage.KindPost)
	assert.True(t, d.Allowed)
	assert.Equal(t, plan.Tier("starter"), d.Plan)
	assert.Equal(t, uint64(1), d.Remaining)

	f.quota.On("CheckQuota", mock.Anything, uint(1), usage.KindPost, uint64(10)).
		Return(usage.EvaluateQuota(10, 10), nil).Once()
	d = f.guard.Authorize(context.Background(), 1, usage.KindPost)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonQuotaExceeded, d.Reason)
	assert.Equal(t, uint64(10), d.Current)
	assert.Equal(t, uint64(10), d.Limit)

	assert.Equal(t, []string{"post:allowed:", "post:denied:quota_exceeded"}, f.observer.decisions)
}

func TestQuotaGuard_ZeroLimitDenies(t *testing.T) {
	f := newGuardFixture(t, false)
	up := plan.ReconstructUserPlan(1, "starter", false, guardNow)
	f.userPlans.On("Get", mock.Anything, uint(1)).Return(up, nil)
	f.subs.On("GetActiveByUserID", mock.Anything, uint(1)).Return(activeSubscription(t, 1, "starter", guardNow), nil)
	f.quota.On("CheckQuota", mock.Anything, uint(1), usage.KindComment, uint64(0)).
		Return(usage.EvaluateQuota(0, 0), nil)

	d := f.guard.Authorize(context.Background(), 1, usage.KindComment)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonQuotaExceeded, d.Reason)
}

func TestQuotaGuard_FallsBackToDefaultTier(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *guardFixture)
	}{
		{
			name: "no user plan",
			setup: func(t *testing.T, f *guardFixture) {
				f.userPlans.On("Get", mock.Anything, uint(1)).Return(nil, nil)
			},
		},
		{
			name: "suspended",
			setup: func(t *testing.T, f *guardFixture) {
				f.userPlans.On("Get", mock.Anything, uint(1)).Return(plan.ReconstructUserPlan(1, "starter", true, guardNow), nil)
			},
		},
		{
			name: "no active subscription",
			setup: func(t *testing.T, f *guardFixture) {
				f.userPlans.On("Get", mock.Anything, uint(1)).Return(plan.ReconstructUserPlan(1, "starter", false, guardNow), nil)
				f.subs.On("GetActiveByUserID", mock.Anything, uint(1)).Return(nil, nil)
			},
		},
		{
			name: "subscription past end date",
			setup: func(t *testing.T, f *guardFixture) {
				f.userPlans.On("Get", mock.Anything, uint(1)).Return(plan.ReconstructUserPlan(1, "starter", false, guardNow), nil)
				f.subs.On("GetActiveByUserID", mock.Anything, uint(1)).
					Return(activeSubscription(t, 1, "starter", guardNow.AddDate(0, -2, 0)), nil)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGuardFixture(t, false)
			tt.setup(t, f)
			f.quota.On("CheckQuota", mock.Anything, uint(1), usage.KindPost, uint64(3)).
				Return(usage.EvaluateQuota(0, 3), nil)

			d := f.guard.Authorize(context.Background(), 1, usage.KindPost)
			assert.True(t, d.Allowed)
			assert.Equal(t, plan.Tier("free"), d.Plan)
			assert.Equal(t, uint64(3), d.Limit)
		})
	}
}

func TestQuotaGuard_FailsClosed(t *testing.T) {
	t.Run("user plan store error", func(t *testing.T) {
		f := newGuardFixture(t, false)
		f.userPlans.On("Get", mock.Anything, uint(1)).Return(nil, errors.New("db down"))

		d := f.guard.Authorize(context.Background(), 1, usage.KindPost)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonEntitlementUnavailable, d.Reason)
		f.quota.AssertNotCalled(t, "CheckQuota", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("usage store error", func(t *testing.T) {
		f := newGuardFixture(t, false)
		f.userPlans.On("Get", mock.Anything, uint(1)).Return(nil, nil)
		f.quota.On("CheckQuota", mock.Anything, uint(1), usage.KindPost, uint64(3)).
			Return(usage.QuotaStatus{}, errors.New("timeout"))

		d := f.guard.Authorize(context.Background(), 1, usage.KindPost)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonEntitlementUnavailable, d.Reason)
	})

	t.Run("unknown plan", func(t *testing.T) {
		f := newGuardFixture(t, false)
		f.userPlans.On("Get", mock.Anything, uint(1)).Return(plan.ReconstructUserPlan(1, "legacy", false, guardNow), nil)
		f.subs.On("GetActiveByUserID", mock.Anything, uint(1)).Return(activeSubscription(t, 1, "legacy", guardNow), nil)

		d := f.guard.Authorize(context.Background(), 1, usage.KindPost)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonUnknownPlan, d.Reason)
	})

	t.Run("invalid kind", func(t *testing.T) {
		f := newGuardFixture(t, false)
		d := f.guard.Authorize(context.Background(), 1, usage.Kind("video"))
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonEntitlementUnavailable, d.Reason)
	})
}

func TestPlanResolver_UsesCache(t *testing.T) {
	f := newGuardFixture(t, true)
	f.cache.On("GetPlan", mock.Anything, uint(4)).Return(plan.Tier("starter"), true, nil)
	f.quota.On("CheckQuota", mock.Anything, uint(4), usage.KindPost, uint64(10)).
		Return(usage.EvaluateQuota(2, 10), nil)

	d := f.guard.Authorize(context.Background(), 4, usage.KindPost)
	assert.True(t, d.Allowed)
	assert.Equal(t, plan.Tier("starter"), d.Plan)
	f.userPlans.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestPlanResolver_CacheErrorIsAMiss(t *testing.T) {
	f := newGuardFixture(t, true)
	f.cache.On("GetPlan", mock.Anything, uint(4)).Return(plan.Tier(""), false, errors.New("redis down"))
	f.cache.On("SetPlan", mock.Anything, uint(4), plan.Tier("free")).Return(errors.New("redis down"))
	f.userPlans.On("Get", mock.Anything, uint(4)).Return(nil, nil)

	tier, err := f.guard.resolver.Resolve(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, plan.Tier("free"), tier)
	f.cache.AssertExpectations(t)
}
