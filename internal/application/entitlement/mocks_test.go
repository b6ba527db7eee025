package entitlement

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
	"github.com/postforge/postforge/internal/domain/usage"
)

type mockUserPlanRepository struct {
	mock.Mock
}

func (m *mockUserPlanRepository) Get(ctx context.Context, userID uint) (*plan.UserPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.UserPlan), args.Error(1)
}

func (m *mockUserPlanRepository) Save(ctx context.Context, up *plan.UserPlan) error {
	return m.Called(ctx, up).Error(0)
}

type mockSubscriptionFinder struct {
	mock.Mock
}

func (m *mockSubscriptionFinder) GetActiveByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

type mockQuotaChecker struct {
	mock.Mock
}

func (m *mockQuotaChecker) CheckQuota(ctx context.Context, userID uint, kind usage.Kind, limit uint64) (usage.QuotaStatus, error) {
	args := m.Called(ctx, userID, kind, limit)
	return args.Get(0).(usage.QuotaStatus), args.Error(1)
}

type mockPlanCache struct {
	mock.Mock
}

func (m *mockPlanCache) GetPlan(ctx context.Context, userID uint) (plan.Tier, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(plan.Tier), args.Bool(1), args.Error(2)
}

func (m *mockPlanCache) SetPlan(ctx context.Context, userID uint, tier plan.Tier) error {
	return m.Called(ctx, userID, tier).Error(0)
}

func (m *mockPlanCache) InvalidatePlan(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

type recordingObserver struct {
	decisions []string
}

func (o *recordingObserver) ObserveQuotaDecision(kind usage.Kind, allowed bool, reason string) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	o.decisions = append(o.decisions, string(kind)+":"+outcome+":"+reason)
}
