// Package plan defines plan tiers, their monthly generation limits and prices,
// and the per-user plan assignment that the quota guard reads.
package plan

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Tier identifies a plan such as "free", "starter" or "pro".
type Tier string

func (t Tier) String() string { return string(t) }

// Normalize lower-cases and trims a tier name.
func Normalize(s string) Tier {
	return Tier(strings.ToLower(strings.TrimSpace(s)))
}

// Interval is the billing cadence of a paid plan.
type Interval string

const (
	IntervalMonthly Interval = "monthly"
	IntervalYearly  Interval = "yearly"
)

// Period returns the subscription period length: 30 days for monthly and 365
// days for yearly.
func (i Interval) Period() time.Duration {
	switch i {
	case IntervalYearly:
		return 365 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

func (i Interval) IsValid() bool {
	return i == IntervalMonthly || i == IntervalYearly
}

func ParseInterval(s string) (Interval, error) {
	i := Interval(strings.ToLower(s))
	if !i.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}
	return i, nil
}

// Limits are the per-period generation allowances of a tier.
type Limits struct {
	PostsPerMonth    uint64 `json:"posts_per_month" yaml:"posts_per_month"`
	CommentsPerMonth uint64 `json:"comments_per_month" yaml:"comments_per_month"`
}

// Price is an amount in minor currency units.
type Price struct {
	Amount   int64  `json:"amount" yaml:"amount"`
	Currency string `json:"currency" yaml:"currency"`
	// ProcessorPlanID is the payment processor's plan reference.
	ProcessorPlanID string `json:"processor_plan_id" yaml:"processor_plan_id"`
}

// Definition describes one tier of the catalog.
type Definition struct {
	Tier   Tier
	Name   string
	Limits Limits
	Prices map[Interval]Price
}

// PriceFor returns the price for interval in currency.
func (d *Definition) PriceFor(interval Interval, currency string) (Price, error) {
	p, ok := d.Prices[interval]
	if !ok {
		return Price{}, fmt.Errorf("%w: %s has no %s price", ErrPriceNotFound, d.Tier, interval)
	}
	if currency != "" && !strings.EqualFold(p.Currency, currency) {
		return Price{}, fmt.Errorf("%w: %s %s is priced in %s", ErrPriceNotFound, d.Tier, interval, p.Currency)
	}
	return p, nil
}

// IsPaid reports whether the tier has any price.
func (d *Definition) IsPaid() bool {
	return len(d.Prices) > 0
}

// Catalog resolves tiers to their definitions.
type Catalog interface {
	Get(tier Tier) (*Definition, error)
	LimitsFor(tier Tier) (Limits, error)
	DefaultTier() Tier
	List() []*Definition
}

// UserPlanRepository stores plan assignments.
type UserPlanRepository interface {
	// Get returns nil, nil when the user has never been assigned a plan.
	Get(ctx context.Context, userID uint) (*UserPlan, error)
	Save(ctx context.Context, up *UserPlan) error
}
