package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	subdto "github.com/postforge/postforge/internal/application/subscription/dto"
	"github.com/postforge/postforge/internal/application/subscription/usecases"
	"github.com/postforge/postforge/internal/interfaces/http/handlers/testutil"
	"github.com/postforge/postforge/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockCreateSubscriptionUC struct {
	result *subdto.SubscriptionDTO
	err    error
	got    usecases.CreateSubscriptionCommand
}

func (m *mockCreateSubscriptionUC) Execute(ctx context.Context, cmd usecases.CreateSubscriptionCommand) (*subdto.SubscriptionDTO, error) {
	m.got = cmd
	return m.result, m.err
}

type mockUpgradeSubscriptionUC struct {
	result *subdto.SubscriptionDTO
	err    error
}

func (m *mockUpgradeSubscriptionUC) Execute(ctx context.Context, cmd usecases.UpgradeSubscriptionCommand) (*subdto.SubscriptionDTO, error) {
	return m.result, m.err
}

type mockCancelSubscriptionUC struct {
	result *subdto.SubscriptionDTO
	err    error
}

func (m *mockCancelSubscriptionUC) Execute(ctx context.Context, cmd usecases.CancelSubscriptionCommand) (*subdto.SubscriptionDTO, error) {
	return m.result, m.err
}

type mockGetCurrentSubscriptionUC struct {
	result *subdto.SubscriptionDTO
	err    error
}

func (m *mockGetCurrentSubscriptionUC) Execute(ctx context.Context, query usecases.GetCurrentSubscriptionQuery) (*subdto.SubscriptionDTO, error) {
	return m.result, m.err
}

// =====================================================================
// Test helpers
// =====================================================================

func testSubscriptionDTO(status string) *subdto.SubscriptionDTO {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &subdto.SubscriptionDTO{
		ExternalID:      "sub_test123",
		UserID:          10,
		Plan:            "starter",
		Status:          status,
		Currency:        "INR",
		Amount:          49900,
		BillingInterval: "monthly",
		StartDate:       now,
		EndDate:         now.AddDate(0, 1, 0),
		NextBillingDate: now.AddDate(0, 1, 0),
		Invoices:        []subdto.InvoiceDTO{},
	}
}

type subscriptionMocks struct {
	create  *mockCreateSubscriptionUC
	upgrade *mockUpgradeSubscriptionUC
	cancel  *mockCancelSubscriptionUC
	current *mockGetCurrentSubscriptionUC
}

func newTestSubscriptionHandler() (*SubscriptionHandler, *subscriptionMocks) {
	m := &subscriptionMocks{
		create:  &mockCreateSubscriptionUC{},
		upgrade: &mockUpgradeSubscriptionUC{},
		cancel:  &mockCancelSubscriptionUC{},
		current: &mockGetCurrentSubscriptionUC{},
	}
	return NewSubscriptionHandler(m.create, m.upgrade, m.cancel, m.current, testutil.NewMockLogger()), m
}

// =====================================================================
// Tests
// =====================================================================

func TestSubscriptionHandler_CreateSubscription(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		h, m := newTestSubscriptionHandler()
		m.create.result = testSubscriptionDTO("active")

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/subscriptions", SubscribeRequest{
			Plan: "starter", Currency: "INR", BillingInterval: "monthly",
		})
		testutil.SetAuthContext(c, 10)
		h.CreateSubscription(c)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, uint(10), m.create.got.UserID)
		assert.Equal(t, "starter", m.create.got.Plan)

		var got subdto.SubscriptionDTO
		require.NoError(t, testutil.ParseData(w, &got))
		assert.Equal(t, "sub_test123", got.ExternalID)
		assert.Equal(t, int64(49900), got.Amount)
	})

	t.Run("invalid interval", func(t *testing.T) {
		h, _ := newTestSubscriptionHandler()

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/subscriptions", SubscribeRequest{
			Plan: "starter", Currency: "INR", BillingInterval: "weekly",
		})
		testutil.SetAuthContext(c, 10)
		h.CreateSubscription(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("already subscribed", func(t *testing.T) {
		h, m := newTestSubscriptionHandler()
		m.create.err = errors.NewConflictError("user already has an active subscription")

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/subscriptions", SubscribeRequest{
			Plan: "pro", Currency: "INR", BillingInterval: "yearly",
		})
		testutil.SetAuthContext(c, 10)
		h.CreateSubscription(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		h, _ := newTestSubscriptionHandler()

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/subscriptions", SubscribeRequest{})
		h.CreateSubscription(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSubscriptionHandler_UpgradeSubscription(t *testing.T) {
	h, m := newTestSubscriptionHandler()
	m.upgrade.result = testSubscriptionDTO("active")

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/subscriptions/upgrade", SubscribeRequest{
		Plan: "pro", Currency: "INR", BillingInterval: "monthly",
	})
	testutil.SetAuthContext(c, 10)
	h.UpgradeSubscription(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubscriptionHandler_CancelSubscription(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		h, m := newTestSubscriptionHandler()
		m.cancel.result = testSubscriptionDTO("cancelled")

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/subscriptions/cancel", nil)
		testutil.SetAuthContext(c, 10)
		h.CancelSubscription(c)

		require.Equal(t, http.StatusOK, w.Code)
		var got subdto.SubscriptionDTO
		require.NoError(t, testutil.ParseData(w, &got))
		assert.Equal(t, "cancelled", got.Status)
	})

	t.Run("nothing to cancel", func(t *testing.T) {
		h, m := newTestSubscriptionHandler()
		m.cancel.err = errors.NewNotFoundError("no active subscription")

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/subscriptions/cancel", nil)
		testutil.SetAuthContext(c, 10)
		h.CancelSubscription(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSubscriptionHandler_GetCurrentSubscription(t *testing.T) {
	h, m := newTestSubscriptionHandler()
	m.current.err = errors.NewNotFoundError("no active subscription")

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/subscriptions/current", nil)
	testutil.SetAuthContext(c, 10)
	h.GetCurrentSubscription(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
