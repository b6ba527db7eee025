package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterval_Period(t *testing.T) {
	assert.Equal(t, 30*24*time.Hour, IntervalMonthly.Period())
	assert.Equal(t, 365*24*time.Hour, IntervalYearly.Period())

	_, err := ParseInterval("weekly")
	assert.ErrorIs(t, err, ErrInvalidInterval)

	i, err := ParseInterval("Yearly")
	require.NoError(t, err)
	assert.Equal(t, IntervalYearly, i)
}

func TestDefinition_PriceFor(t *testing.T) {
	d := &Definition{
		Tier: "pro",
		Prices: map[Interval]Price{
			IntervalMonthly: {Amount: 99900, Currency: "INR", ProcessorPlanID: "plan_pro_m"},
		},
	}

	p, err := d.PriceFor(IntervalMonthly, "inr")
	require.NoError(t, err)
	assert.Equal(t, int64(99900), p.Amount)

	_, err = d.PriceFor(IntervalYearly, "INR")
	assert.ErrorIs(t, err, ErrPriceNotFound)

	_, err = d.PriceFor(IntervalMonthly, "USD")
	assert.ErrorIs(t, err, ErrPriceNotFound)
}

func TestUserPlan_Transitions(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	up, err := NewUserPlan(7, "free", now)
	require.NoError(t, err)

	up.Activate("pro", now)
	assert.Equal(t, Tier("pro"), up.Tier())

	up.Suspend(now)
	assert.True(t, up.PremiumSuspended())
	assert.Equal(t, Tier("pro"), up.Tier(), "suspension keeps the tier")

	up.Activate("pro", now)
	assert.False(t, up.PremiumSuspended())

	up.Downgrade("free", now)
	assert.Equal(t, Tier("free"), up.Tier())
	assert.False(t, up.PremiumSuspended())
}

func TestNewUserPlan_Validation(t *testing.T) {
	_, err := NewUserPlan(0, "free", time.Now())
	assert.Error(t, err)

	_, err = NewUserPlan(1, "", time.Now())
	assert.ErrorIs(t, err, ErrUnknownTier)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Tier("starter"), Normalize("  Starter "))
}
