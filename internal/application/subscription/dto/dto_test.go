package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
)

var dtoNow = time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)

func newMonthly(t *testing.T) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewSubscription(subscription.CreateParams{
		ExternalID: "sub_dto",
		UserID:     4,
		Plan:       "starter",
		Currency:   "INR",
		Amount:     49900,
		Interval:   plan.IntervalMonthly,
		Now:        dtoNow,
	})
	require.NoError(t, err)
	return sub
}

func TestToSubscriptionDTO_Invoices(t *testing.T) {
	sub := newMonthly(t)

	got := ToSubscriptionDTO(sub, dtoNow)
	require.NotNil(t, got.Invoices)
	assert.Empty(t, got.Invoices)

	inv, err := subscription.NewPaidInvoice("inv_9", 49900, "INR", dtoNow)
	require.NoError(t, err)
	sub.RecordCharge(inv, dtoNow.AddDate(0, 2, 0), dtoNow)

	got = ToSubscriptionDTO(sub, dtoNow)
	require.Len(t, got.Invoices, 1)
	assert.Equal(t, InvoiceDTO{
		ExternalInvoiceID: "inv_9",
		Amount:            49900,
		Currency:          "INR",
		Status:            inv.Status,
		PaidAt:            dtoNow,
	}, got.Invoices[0])
	assert.Equal(t, "starter", got.Plan)
	assert.Equal(t, "monthly", got.BillingInterval)
}

func TestToSubscriptionDTO_ReportsExpiredPastEndDate(t *testing.T) {
	sub := newMonthly(t)

	assert.Equal(t, "active", ToSubscriptionDTO(sub, dtoNow).Status)
	assert.Equal(t, "expired", ToSubscriptionDTO(sub, sub.EndDate().Add(time.Second)).Status)
	assert.Nil(t, ToSubscriptionDTO(nil, dtoNow))
}
