// Package offer models coupon codes: their validity window, usage limits and
// the discount they grant on an order.
package offer

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

func (d DiscountType) IsValid() bool {
	return d == DiscountPercentage || d == DiscountFlat
}

// AllPlans in ApplicablePlans makes an offer valid for every plan.
const AllPlans = "all"

// Redemption tracks how many times a user has applied an offer.
type Redemption struct {
	UserID     uint
	UsedAt     time.Time
	UsageCount int
}

type Offer struct {
	id                uint
	code              string
	description       string
	discountType      DiscountType
	discountValue     float64
	maxDiscountAmount *float64
	minAmount         float64
	applicablePlans   []string
	startDate         time.Time
	endDate           time.Time
	usageLimit        *int
	usedCount         int
	perUserLimit      int
	isActive          bool
	redemptions       map[uint]*Redemption
	createdAt         time.Time
	updatedAt         time.Time
}

// NormalizeCode upper-cases and trims a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type CreateParams struct {
	Code              string
	Description       string
	DiscountType      DiscountType
	DiscountValue     float64
	MaxDiscountAmount *float64
	MinAmount         float64
	ApplicablePlans   []string
	StartDate         time.Time
	EndDate           time.Time
	UsageLimit        *int
	PerUserLimit      int
	Now               time.Time
}

func NewOffer(p CreateParams) (*Offer, error) {
	code := NormalizeCode(p.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidOffer)
	}
	if !p.DiscountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown discount type %q", ErrInvalidOffer, p.DiscountType)
	}
	if p.DiscountValue <= 0 {
		return nil, fmt.Errorf("%w: discount value must be positive", ErrInvalidOffer)
	}
	if p.DiscountType == DiscountPercentage && p.DiscountValue > 100 {
		return nil, fmt.Errorf("%w: percentage cannot exceed 100", ErrInvalidOffer)
	}
	if p.MaxDiscountAmount != nil {
		if p.DiscountType != DiscountPercentage {
			return nil, fmt.Errorf("%w: max discount applies to percentage offers only", ErrInvalidOffer)
		}
		if *p.MaxDiscountAmount <= 0 {
			return nil, fmt.Errorf("%w: max discount must be positive", ErrInvalidOffer)
		}
	}
	if p.MinAmount < 0 {
		return nil, fmt.Errorf("%w: min amount cannot be negative", ErrInvalidOffer)
	}
	if !p.EndDate.After(p.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrInvalidOffer)
	}
	if p.UsageLimit != nil && *p.UsageLimit < 1 {
		return nil, fmt.Errorf("%w: usage limit must be at least 1", ErrInvalidOffer)
	}
	perUser := p.PerUserLimit
	if perUser == 0 {
		perUser = 1
	}
	if perUser < 0 {
		return nil, fmt.Errorf("%w: per-user limit cannot be negative", ErrInvalidOffer)
	}

	return &Offer{
		code:              code,
		description:       p.Description,
		discountType:      p.DiscountType,
		discountValue:     p.DiscountValue,
		maxDiscountAmount: p.MaxDiscountAmount,
		minAmount:         p.MinAmount,
		applicablePlans:   normalizePlans(p.ApplicablePlans),
		startDate:         p.StartDate,
		endDate:           p.EndDate,
		usageLimit:        p.UsageLimit,
		perUserLimit:      perUser,
		isActive:          true,
		redemptions:       make(map[uint]*Redemption),
		createdAt:         p.Now,
		updatedAt:         p.Now,
	}, nil
}

type ReconstructParams struct {
	ID                uint
	Code              string
	Description       string
	DiscountType      DiscountType
	DiscountValue     float64
	MaxDiscountAmount *float64
	MinAmount         float64
	ApplicablePlans   []string
	StartDate         time.Time
	EndDate           time.Time
	UsageLimit        *int
	UsedCount         int
	PerUserLimit      int
	IsActive          bool
	Redemptions       []Redemption
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func ReconstructOffer(p ReconstructParams) (*Offer, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("offer ID cannot be zero")
	}
	if !p.DiscountType.IsValid() {
		return nil, fmt.Errorf("invalid discount type: %s", p.DiscountType)
	}
	redemptions := make(map[uint]*Redemption, len(p.Redemptions))
	for i := range p.Redemptions {
		r := p.Redemptions[i]
		redemptions[r.UserID] = &r
	}
	return &Offer{
		id:                p.ID,
		code:              p.Code,
		description:       p.Description,
		discountType:      p.DiscountType,
		discountValue:     p.DiscountValue,
		maxDiscountAmount: p.MaxDiscountAmount,
		minAmount:         p.MinAmount,
		applicablePlans:   p.ApplicablePlans,
		startDate:         p.StartDate,
		endDate:           p.EndDate,
		usageLimit:        p.UsageLimit,
		usedCount:         p.UsedCount,
		perUserLimit:      p.PerUserLimit,
		isActive:          p.IsActive,
		redemptions:       redemptions,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
	}, nil
}

func normalizePlans(plans []string) []string {
	out := make([]string, 0, len(plans))
	seen := make(map[string]bool, len(plans))
	for _, p := range plans {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func (o *Offer) ID() uint                    { return o.id }
func (o *Offer) Code() string                { return o.code }
func (o *Offer) Description() string         { return o.description }
func (o *Offer) DiscountType() DiscountType  { return o.discountType }
func (o *Offer) DiscountValue() float64      { return o.discountValue }
func (o *Offer) MaxDiscountAmount() *float64 { return o.maxDiscountAmount }
func (o *Offer) MinAmount() float64          { return o.minAmount }
func (o *Offer) ApplicablePlans() []string   { return o.applicablePlans }
func (o *Offer) StartDate() time.Time        { return o.startDate }
func (o *Offer) EndDate() time.Time          { return o.endDate }
func (o *Offer) UsageLimit() *int            { return o.usageLimit }
func (o *Offer) UsedCount() int              { return o.usedCount }
func (o *Offer) PerUserLimit() int           { return o.perUserLimit }
func (o *Offer) IsActive() bool              { return o.isActive }
func (o *Offer) CreatedAt() time.Time        { return o.createdAt }
func (o *Offer) UpdatedAt() time.Time        { return o.updatedAt }

func (o *Offer) SetID(id uint) error {
	if o.id != 0 {
		return fmt.Errorf("offer ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("offer ID cannot be zero")
	}
	o.id = id
	return nil
}

// Redemption returns the user's redemption entry, or nil.
func (o *Offer) Redemption(userID uint) *Redemption {
	if r, ok := o.redemptions[userID]; ok {
		cp := *r
		return &cp
	}
	return nil
}

// UsedBy returns the number of times userID has applied the offer.
func (o *Offer) UsedBy(userID uint) int {
	if r, ok := o.redemptions[userID]; ok {
		return r.UsageCount
	}
	return 0
}

func (o *Offer) AppliesToPlan(plan string) bool {
	if len(o.applicablePlans) == 0 {
		return true
	}
	plan = strings.ToLower(plan)
	for _, p := range o.applicablePlans {
		if p == AllPlans || p == plan {
			return true
		}
	}
	return false
}

// Deactivate withdraws the offer. Existing redemptions are kept.
func (o *Offer) Deactivate(now time.Time) {
	o.isActive = false
	o.updatedAt = now
}

// Discount returns the discount amount on amount, rounded to cents and never
// larger than amount.
func (o *Offer) Discount(amount float64) float64 {
	var d float64
	switch o.discountType {
	case DiscountPercentage:
		d = amount * o.discountValue / 100
		if o.maxDiscountAmount != nil && d > *o.maxDiscountAmount {
			d = *o.maxDiscountAmount
		}
	case DiscountFlat:
		d = o.discountValue
	}
	return RoundCents(math.Min(d, amount))
}

// RoundCents rounds to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
