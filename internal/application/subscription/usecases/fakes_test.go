package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
	vo "github.com/postforge/postforge/internal/domain/subscription/valueobjects"
	"github.com/postforge/postforge/internal/shared/clock"
	"github.com/postforge/postforge/internal/shared/logger"
)

var testNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// =====================================================================
// in-memory subscription repository
// =====================================================================

type memorySubscriptionRepository struct {
	mu       sync.Mutex
	nextID   uint
	subs     map[uint]*subscription.Subscription
	invoices map[string]uint

	createErr   error
	conflictsTo int // Update reports a concurrent modification this many times
}

func newMemorySubscriptionRepository() *memorySubscriptionRepository {
	return &memorySubscriptionRepository{
		subs:     make(map[uint]*subscription.Subscription),
		invoices: make(map[string]uint),
	}
}

func cloneSubscription(s *subscription.Subscription) *subscription.Subscription {
	c, err := subscription.ReconstructSubscription(subscription.ReconstructParams{
		ID:              s.ID(),
		ExternalID:      s.ExternalID(),
		UserID:          s.UserID(),
		Plan:            s.Plan(),
		Status:          s.Status(),
		Currency:        s.Currency(),
		Amount:          s.Amount(),
		Interval:        s.Interval(),
		StartDate:       s.StartDate(),
		EndDate:         s.EndDate(),
		NextBillingDate: s.NextBillingDate(),
		CancelledAt:     s.CancelledAt(),
		PausedAt:        s.PausedAt(),
		Invoices:        s.Invoices(),
		Version:         s.Version(),
		CreatedAt:       s.CreatedAt(),
		UpdatedAt:       s.UpdatedAt(),
	})
	if err != nil {
		panic(err)
	}
	return c
}

func (r *memorySubscriptionRepository) activeFor(userID uint, except uint) *subscription.Subscription {
	for id, s := range r.subs {
		if id != except && s.UserID() == userID && s.HoldsActiveSlot() {
			return s
		}
	}
	return nil
}

func (r *memorySubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if sub.HoldsActiveSlot() && r.activeFor(sub.UserID(), 0) != nil {
		return subscription.ErrActiveSubscriptionExists
	}
	r.nextID++
	if err := sub.SetID(r.nextID); err != nil {
		return err
	}
	for _, inv := range sub.PendingInvoices() {
		r.invoices[inv.ExternalInvoiceID] = sub.ID()
	}
	sub.MarkPersisted()
	r.subs[sub.ID()] = cloneSubscription(sub)
	return nil
}

func (r *memorySubscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictsTo > 0 {
		r.conflictsTo--
		return subscription.ErrConcurrentModification
	}
	stored, ok := r.subs[sub.ID()]
	if !ok || stored.Version() != sub.StoredVersion() {
		return subscription.ErrConcurrentModification
	}
	if sub.HoldsActiveSlot() && r.activeFor(sub.UserID(), sub.ID()) != nil {
		return subscription.ErrActiveSubscriptionExists
	}
	for _, inv := range sub.PendingInvoices() {
		if _, dup := r.invoices[inv.ExternalInvoiceID]; dup {
			return subscription.ErrDuplicateInvoice
		}
	}
	for _, inv := range sub.PendingInvoices() {
		r.invoices[inv.ExternalInvoiceID] = sub.ID()
	}
	sub.MarkPersisted()
	r.subs[sub.ID()] = cloneSubscription(sub)
	return nil
}

func (r *memorySubscriptionRepository) GetByExternalID(ctx context.Context, externalID string) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ExternalID() == externalID {
			return cloneSubscription(s), nil
		}
	}
	return nil, nil
}

func (r *memorySubscriptionRepository) GetActiveByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.activeFor(userID, 0); s != nil {
		return cloneSubscription(s), nil
	}
	return nil, nil
}

func (r *memorySubscriptionRepository) ListActiveUserIDs(ctx context.Context) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for _, s := range r.subs {
		if s.HoldsActiveSlot() {
			ids = append(ids, s.UserID())
		}
	}
	return ids, nil
}

// seed stores an already persisted subscription.
func (r *memorySubscriptionRepository) seed(t *testing.T, externalID string, userID uint, tier plan.Tier, status vo.Status) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewSubscription(subscription.CreateParams{
		ExternalID: externalID,
		UserID:     userID,
		Plan:       tier,
		Currency:   "INR",
		Amount:     49900,
		Interval:   plan.IntervalMonthly,
		Now:        testNow.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, r.Create(context.Background(), sub))

	switch status {
	case vo.StatusPaused:
		_, err = sub.Pause(testNow.Add(-time.Hour))
		require.NoError(t, err)
		require.NoError(t, r.Update(context.Background(), sub))
	case vo.StatusCancelled:
		sub.Cancel(testNow.Add(-time.Hour))
		require.NoError(t, r.Update(context.Background(), sub))
	}
	return sub
}

func (r *memorySubscriptionRepository) mustGet(t *testing.T, externalID string) *subscription.Subscription {
	t.Helper()
	sub, err := r.GetByExternalID(context.Background(), externalID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	return sub
}

// =====================================================================
// in-memory user plan repository
// =====================================================================

type memoryUserPlanRepository struct {
	mu    sync.Mutex
	plans map[uint]*plan.UserPlan
}

func newMemoryUserPlanRepository() *memoryUserPlanRepository {
	return &memoryUserPlanRepository{plans: make(map[uint]*plan.UserPlan)}
}

func (r *memoryUserPlanRepository) Get(ctx context.Context, userID uint) (*plan.UserPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	up, ok := r.plans[userID]
	if !ok {
		return nil, nil
	}
	return plan.ReconstructUserPlan(up.UserID(), up.Tier(), up.PremiumSuspended(), up.UpdatedAt()), nil
}

func (r *memoryUserPlanRepository) Save(ctx context.Context, up *plan.UserPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[up.UserID()] = plan.ReconstructUserPlan(up.UserID(), up.Tier(), up.PremiumSuspended(), up.UpdatedAt())
	return nil
}

func (r *memoryUserPlanRepository) set(userID uint, tier plan.Tier, suspended bool) {
	r.plans[userID] = plan.ReconstructUserPlan(userID, tier, suspended, testNow)
}

func (r *memoryUserPlanRepository) mustGet(t *testing.T, userID uint) *plan.UserPlan {
	t.Helper()
	up, err := r.Get(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, up)
	return up
}

// =====================================================================
// mocks
// =====================================================================

type mockPaymentGateway struct {
	mock.Mock
}

func (m *mockPaymentGateway) CreateSubscription(ctx context.Context, req CreateRemoteSubscriptionRequest) (*RemoteSubscription, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RemoteSubscription), args.Error(1)
}

func (m *mockPaymentGateway) CancelSubscription(ctx context.Context, externalID string) error {
	return m.Called(ctx, externalID).Error(0)
}

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) InvalidatePlan(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

type mockReceiptNotifier struct {
	mock.Mock
}

func (m *mockReceiptNotifier) SendReceipt(ctx context.Context, receipt Receipt) error {
	return m.Called(ctx, receipt).Error(0)
}

// inlineTxRunner runs fn directly; the fakes are not transactional.
type inlineTxRunner struct{}

func (inlineTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// =====================================================================
// fixture
// =====================================================================

func testCatalog(t *testing.T) plan.Catalog {
	t.Helper()
	c, err := plan.NewStaticCatalog("free",
		plan.Definition{Tier: "free", Limits: plan.Limits{PostsPerMonth: 3, CommentsPerMonth: 10}},
		plan.Definition{
			Tier:   "starter",
			Limits: plan.Limits{PostsPerMonth: 10, CommentsPerMonth: 30},
			Prices: map[plan.Interval]plan.Price{
				plan.IntervalMonthly: {Amount: 49900, Currency: "INR", ProcessorPlanID: "plan_starter_m"},
			},
		},
		plan.Definition{
			Tier:   "pro",
			Limits: plan.Limits{PostsPerMonth: 50, CommentsPerMonth: 150},
			Prices: map[plan.Interval]plan.Price{
				plan.IntervalMonthly: {Amount: 99900, Currency: "INR", ProcessorPlanID: "plan_pro_m"},
				plan.IntervalYearly:  {Amount: 999000, Currency: "INR", ProcessorPlanID: "plan_pro_y"},
			},
		},
	)
	require.NoError(t, err)
	return c
}

type lifecycleFixture struct {
	subs        *memorySubscriptionRepository
	userPlans   *memoryUserPlanRepository
	catalog     plan.Catalog
	gateway     *mockPaymentGateway
	invalidator *mockInvalidator
	clock       *clock.FakeClock
	logger      logger.Interface
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	return &lifecycleFixture{
		subs:        newMemorySubscriptionRepository(),
		userPlans:   newMemoryUserPlanRepository(),
		catalog:     testCatalog(t),
		gateway:     new(mockPaymentGateway),
		invalidator: new(mockInvalidator),
		clock:       clock.NewFakeClock(testNow),
		logger:      logger.NewNopLogger(),
	}
}

func (f *lifecycleFixture) createUseCase() *CreateSubscriptionUseCase {
	return NewCreateSubscriptionUseCase(f.subs, f.userPlans, f.catalog, f.gateway, inlineTxRunner{}, f.invalidator, f.clock, f.logger)
}

func (f *lifecycleFixture) cancelUseCase() *CancelSubscriptionUseCase {
	return NewCancelSubscriptionUseCase(f.subs, f.userPlans, f.catalog, f.gateway, inlineTxRunner{}, f.invalidator, f.clock, f.logger)
}

func (f *lifecycleFixture) upgradeUseCase() *UpgradeSubscriptionUseCase {
	return NewUpgradeSubscriptionUseCase(f.subs, f.cancelUseCase(), f.createUseCase(), f.logger)
}

func (f *lifecycleFixture) chargedUseCase(notifier ReceiptNotifier) *HandleChargedUseCase {
	return NewHandleChargedUseCase(f.subs, f.userPlans, f.catalog, inlineTxRunner{}, f.invalidator, notifier, f.clock, f.logger)
}

func (f *lifecycleFixture) cancelledUseCase() *HandleCancelledUseCase {
	return NewHandleCancelledUseCase(f.subs, f.userPlans, f.catalog, inlineTxRunner{}, f.invalidator, f.clock, f.logger)
}

func (f *lifecycleFixture) pausedUseCase() *HandlePausedUseCase {
	return NewHandlePausedUseCase(f.subs, f.userPlans, f.catalog, inlineTxRunner{}, f.invalidator, f.clock, f.logger)
}
