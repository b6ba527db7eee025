package usage

import "math"

// QuotaStatus is the outcome of comparing a counter against a plan limit.
type QuotaStatus struct {
	Exceeded  bool   `json:"exceeded"`
	Current   uint64 `json:"current"`
	Limit     uint64 `json:"limit"`
	Remaining uint64 `json:"remaining"`
}

// EvaluateQuota reports exceeded once current reaches limit. A zero limit
// therefore means the kind is not available on the plan.
func EvaluateQuota(current, limit uint64) QuotaStatus {
	var remaining uint64
	if limit > current {
		remaining = limit - current
	}
	return QuotaStatus{
		Exceeded:  current >= limit,
		Current:   current,
		Limit:     limit,
		Remaining: remaining,
	}
}

// GrowthPercent is the period-over-period change, rounded to the nearest
// integer. A previous value of zero is treated as one.
func GrowthPercent(current, previous uint64) int64 {
	base := math.Max(float64(previous), 1)
	return int64(math.Round(100 * (float64(current) - float64(previous)) / base))
}
