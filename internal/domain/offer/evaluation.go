package offer

import "time"

// Reason explains why an offer cannot be used.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonInvalidCode        Reason = "invalid_code"
	ReasonExpired            Reason = "expired"
	ReasonUsageLimitExceeded Reason = "usage_limit_exceeded"
	ReasonMinAmountNotMet    Reason = "min_amount_not_met"
	ReasonPlanNotApplicable  Reason = "plan_not_applicable"
	ReasonPerUserLimit       Reason = "per_user_limit_reached"
)

// Evaluation is the outcome of checking an offer against an order.
type Evaluation struct {
	Valid       bool    `json:"valid"`
	Reason      Reason  `json:"reason,omitempty"`
	Discount    float64 `json:"discount"`
	FinalAmount float64 `json:"final_amount"`
}

func invalid(reason Reason, amount float64) Evaluation {
	return Evaluation{Reason: reason, FinalAmount: RoundCents(amount)}
}

// Unknown is the evaluation for a code that does not exist.
func Unknown(amount float64) Evaluation {
	return invalid(ReasonInvalidCode, amount)
}

// Evaluate runs the checks in order and stops at the first failure. It never
// mutates the offer.
func (o *Offer) Evaluate(amount float64, userID uint, plan string, now time.Time) Evaluation {
	switch {
	case o == nil || !o.isActive:
		return invalid(ReasonInvalidCode, amount)
	case now.Before(o.startDate) || now.After(o.endDate):
		return invalid(ReasonExpired, amount)
	case o.usageLimit != nil && o.usedCount >= *o.usageLimit:
		return invalid(ReasonUsageLimitExceeded, amount)
	case amount < o.minAmount:
		return invalid(ReasonMinAmountNotMet, amount)
	case !o.AppliesToPlan(plan):
		return invalid(ReasonPlanNotApplicable, amount)
	case o.UsedBy(userID) >= o.perUserLimit:
		return invalid(ReasonPerUserLimit, amount)
	}

	discount := o.Discount(amount)
	return Evaluation{
		Valid:       true,
		Discount:    discount,
		FinalAmount: RoundCents(amount - discount),
	}
}

// Redeem re-evaluates the order and, when still valid, records one use by
// userID. The returned evaluation is the one the redemption was based on.
func (o *Offer) Redeem(amount float64, userID uint, plan string, now time.Time) Evaluation {
	ev := o.Evaluate(amount, userID, plan, now)
	if !ev.Valid {
		return ev
	}

	o.usedCount++
	r, ok := o.redemptions[userID]
	if !ok {
		r = &Redemption{UserID: userID}
		o.redemptions[userID] = r
	}
	r.UsageCount++
	r.UsedAt = now
	o.updatedAt = now
	return ev
}
