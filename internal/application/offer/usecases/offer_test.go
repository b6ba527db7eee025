package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postforge/postforge/internal/domain/offer"
	"github.com/postforge/postforge/internal/shared/clock"
	apperrors "github.com/postforge/postforge/internal/shared/errors"
	"github.com/postforge/postforge/internal/shared/logger"
)

var now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

// memoryOfferRepository keeps offers keyed by code. Reads return the stored
// pointer's snapshot through ReconstructOffer so use cases never share state.
type memoryOfferRepository struct {
	mu     sync.Mutex
	nextID uint
	offers map[string]*offer.Offer
}

func newMemoryOfferRepository() *memoryOfferRepository {
	return &memoryOfferRepository{offers: make(map[string]*offer.Offer)}
}

func snapshot(o *offer.Offer, users ...uint) *offer.Offer {
	var redemptions []offer.Redemption
	for _, u := range users {
		if r := o.Redemption(u); r != nil {
			redemptions = append(redemptions, *r)
		}
	}
	c, err := offer.ReconstructOffer(offer.ReconstructParams{
		ID:                o.ID(),
		Code:              o.Code(),
		Description:       o.Description(),
		DiscountType:      o.DiscountType(),
		DiscountValue:     o.DiscountValue(),
		MaxDiscountAmount: o.MaxDiscountAmount(),
		MinAmount:         o.MinAmount(),
		ApplicablePlans:   o.ApplicablePlans(),
		StartDate:         o.StartDate(),
		EndDate:           o.EndDate(),
		UsageLimit:        o.UsageLimit(),
		UsedCount:         o.UsedCount(),
		PerUserLimit:      o.PerUserLimit(),
		IsActive:          o.IsActive(),
		Redemptions:       redemptions,
		CreatedAt:         o.CreatedAt(),
		UpdatedAt:         o.UpdatedAt(),
	})
	if err != nil {
		panic(err)
	}
	return c
}

// testUsers are the only users whose redemptions survive a snapshot.
var testUsers = []uint{1, 2, 3}

func (r *memoryOfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offers[o.Code()]; ok {
		return offer.ErrOfferCodeExists
	}
	r.nextID++
	if err := o.SetID(r.nextID); err != nil {
		return err
	}
	r.offers[o.Code()] = snapshot(o, testUsers...)
	return nil
}

func (r *memoryOfferRepository) GetByCode(ctx context.Context, code string) (*offer.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.offers[code]; ok {
		return snapshot(o, testUsers...), nil
	}
	return nil, nil
}

func (r *memoryOfferRepository) GetByCodeForUpdate(ctx context.Context, code string) (*offer.Offer, error) {
	return r.GetByCode(ctx, code)
}

func (r *memoryOfferRepository) SaveUsage(ctx context.Context, o *offer.Offer, userID uint) error {
	return r.Update(ctx, o)
}

func (r *memoryOfferRepository) Update(ctx context.Context, o *offer.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offers[o.Code()] = snapshot(o, testUsers...)
	return nil
}

func (r *memoryOfferRepository) List(ctx context.Context, activeOnly bool) ([]*offer.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*offer.Offer
	for _, o := range r.offers {
		if activeOnly && !o.IsActive() {
			continue
		}
		out = append(out, snapshot(o, testUsers...))
	}
	return out, nil
}

// serialTxRunner serializes transactions the way the row lock does.
type serialTxRunner struct {
	mu sync.Mutex
}

func (r *serialTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}

type recordingOfferObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *recordingOfferObserver) ObserveOfferEvaluation(operation string, valid bool, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if valid {
		reason = "ok"
	}
	o.events = append(o.events, operation+":"+reason)
}

type offerFixture struct {
	repo     *memoryOfferRepository
	observer *recordingOfferObserver
	clock    *clock.FakeClock
	validate *ValidateOfferUseCase
	apply    *ApplyOfferUseCase
	create   *CreateOfferUseCase
}

func newOfferFixture(t *testing.T) *offerFixture {
	f := &offerFixture{
		repo:     newMemoryOfferRepository(),
		observer: &recordingOfferObserver{},
		clock:    clock.NewFakeClock(now),
	}
	log := logger.NewNopLogger()
	f.validate = NewValidateOfferUseCase(f.repo, f.observer, f.clock, log)
	f.apply = NewApplyOfferUseCase(f.repo, &serialTxRunner{}, f.observer, f.clock, log)
	f.create = NewCreateOfferUseCase(f.repo, f.clock, log)
	return f
}

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

func (f *offerFixture) seedSave20(t *testing.T) {
	t.Helper()
	_, err := f.create.Execute(context.Background(), CreateOfferCommand{
		Code:              "save20",
		DiscountType:      "percentage",
		DiscountValue:     20,
		MaxDiscountAmount: ptrFloat(50),
		ApplicablePlans:   []string{"all"},
		StartDate:         now.AddDate(0, -1, 0),
		EndDate:           now.AddDate(0, 1, 0),
		PerUserLimit:      1,
	})
	require.NoError(t, err)
}

func TestOffer_Save20Scenario(t *testing.T) {
	f := newOfferFixture(t)
	f.seedSave20(t)
	ctx := context.Background()

	v, err := f.validate.Execute(ctx, ValidateOfferQuery{Code: "SAVE20", Amount: 100, UserID: 1, Plan: "starter"})
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, 20.0, v.Discount)
	assert.Equal(t, 80.0, v.FinalAmount)

	v, err = f.validate.Execute(ctx, ValidateOfferQuery{Code: "save20", Amount: 1000, UserID: 1, Plan: "pro"})
	require.NoError(t, err)
	assert.Equal(t, 50.0, v.Discount, "capped")
	assert.Equal(t, 950.0, v.FinalAmount)

	a, err := f.apply.Execute(ctx, ApplyOfferCommand{Code: "SAVE20", UserID: 1, Amount: 100, Plan: "starter"})
	require.NoError(t, err)
	assert.True(t, a.Applied)
	assert.Equal(t, 80.0, a.FinalAmount)

	v, err = f.validate.Execute(ctx, ValidateOfferQuery{Code: "SAVE20", Amount: 100, UserID: 1, Plan: "starter"})
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, string(offer.ReasonPerUserLimit), v.Reason)
	assert.Equal(t, 100.0, v.FinalAmount)

	// another user is unaffected
	v, err = f.validate.Execute(ctx, ValidateOfferQuery{Code: "SAVE20", Amount: 100, UserID: 2, Plan: "starter"})
	require.NoError(t, err)
	assert.True(t, v.Valid)

	stored, _ := f.repo.GetByCode(ctx, "SAVE20")
	assert.Equal(t, 1, stored.UsedCount())
}

func TestValidateOffer_IsReadOnly(t *testing.T) {
	f := newOfferFixture(t)
	f.seedSave20(t)

	for i := 0; i < 3; i++ {
		_, err := f.validate.Execute(context.Background(), ValidateOfferQuery{Code: "SAVE20", Amount: 100, UserID: 1})
		require.NoError(t, err)
	}

	stored, _ := f.repo.GetByCode(context.Background(), "SAVE20")
	assert.Equal(t, 0, stored.UsedCount())
	assert.Equal(t, 0, stored.UsedBy(1))
}

func TestValidateOffer_UnknownAndExpired(t *testing.T) {
	f := newOfferFixture(t)
	f.seedSave20(t)

	v, err := f.validate.Execute(context.Background(), ValidateOfferQuery{Code: "NOPE", Amount: 100, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, string(offer.ReasonInvalidCode), v.Reason)

	v, err = f.validate.Execute(context.Background(), ValidateOfferQuery{
		Code: "SAVE20", Amount: 100, UserID: 1, At: now.AddDate(0, 2, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, string(offer.ReasonExpired), v.Reason)

	f.clock.Set(now.AddDate(0, 2, 0))
	calc := NewCalculateDiscountUseCase(f.validate)
	v, err = calc.Execute(context.Background(), CalculateDiscountQuery{Code: "SAVE20", Amount: 100, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, string(offer.ReasonExpired), v.Reason)
}

func TestValidateOffer_RejectsBadInput(t *testing.T) {
	f := newOfferFixture(t)
	tests := []ValidateOfferQuery{
		{Code: " ", Amount: 10, UserID: 1},
		{Code: "X", Amount: -1, UserID: 1},
		{Code: "X", Amount: 10},
	}
	for _, q := range tests {
		_, err := f.validate.Execute(context.Background(), q)
		assert.True(t, apperrors.IsValidationError(err))
	}
}

func TestApplyOffer_ConcurrentAppliesRespectUsageLimit(t *testing.T) {
	f := newOfferFixture(t)
	_, err := f.create.Execute(context.Background(), CreateOfferCommand{
		Code:          "LAUNCH",
		DiscountType:  "flat",
		DiscountValue: 5,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
		UsageLimit:    ptrInt(2),
		PerUserLimit:  5,
	})
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(user uint) {
			defer wg.Done()
			a, err := f.apply.Execute(context.Background(), ApplyOfferCommand{Code: "LAUNCH", UserID: user, Amount: 50})
			if err == nil && a.Applied {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}(testUsers[i%len(testUsers)])
	}
	wg.Wait()

	assert.Equal(t, 2, applied)
	stored, _ := f.repo.GetByCode(context.Background(), "LAUNCH")
	assert.Equal(t, 2, stored.UsedCount())
}

func TestApplyOffer_UnknownCode(t *testing.T) {
	f := newOfferFixture(t)

	a, err := f.apply.Execute(context.Background(), ApplyOfferCommand{Code: "GHOST", UserID: 1, Amount: 10})

	require.NoError(t, err)
	assert.False(t, a.Applied)
	assert.Equal(t, string(offer.ReasonInvalidCode), a.Reason)
	assert.Equal(t, []string{"apply:invalid_code"}, f.observer.events)
}

func TestManageOffers(t *testing.T) {
	f := newOfferFixture(t)
	f.seedSave20(t)
	ctx := context.Background()
	log := logger.NewNopLogger()

	_, err := f.create.Execute(ctx, CreateOfferCommand{
		Code: "SAVE20", DiscountType: "flat", DiscountValue: 1, StartDate: now, EndDate: now.Add(time.Hour),
	})
	assert.True(t, apperrors.IsConflictError(err))

	_, err = f.create.Execute(ctx, CreateOfferCommand{
		Code: "BAD", DiscountType: "percentage", DiscountValue: 150, StartDate: now, EndDate: now.Add(time.Hour),
	})
	assert.True(t, apperrors.IsValidationError(err))

	deactivate := NewDeactivateOfferUseCase(f.repo, f.clock, log)
	require.NoError(t, deactivate.Execute(ctx, DeactivateOfferCommand{Code: "save20"}))
	assert.True(t, apperrors.IsNotFoundError(deactivate.Execute(ctx, DeactivateOfferCommand{Code: "NONE"})))

	list := NewListOffersUseCase(f.repo, log)
	active, err := list.Execute(ctx, ListOffersQuery{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := list.Execute(ctx, ListOffersQuery{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)

	v, err := f.validate.Execute(ctx, ValidateOfferQuery{Code: "SAVE20", Amount: 100, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, string(offer.ReasonInvalidCode), v.Reason)
}
