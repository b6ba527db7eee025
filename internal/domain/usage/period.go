package usage

import (
	"fmt"
	"time"
)

const periodLayout = "2006-01"

// BillingPeriod is a calendar month in UTC. Usage accumulates per period and
// resets implicitly when the month rolls over.
type BillingPeriod struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t, evaluated in UTC.
func PeriodOf(t time.Time) BillingPeriod {
	u := t.UTC()
	return BillingPeriod{Year: u.Year(), Month: u.Month()}
}

// ParsePeriod parses the "YYYY-MM" form.
func ParsePeriod(s string) (BillingPeriod, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return BillingPeriod{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return BillingPeriod{Year: t.Year(), Month: t.Month()}, nil
}

func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p BillingPeriod) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Start is the first instant of the period.
func (p BillingPeriod) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant of the next period (exclusive bound).
func (p BillingPeriod) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

func (p BillingPeriod) Previous() BillingPeriod {
	return PeriodOf(p.Start().AddDate(0, -1, 0))
}

func (p BillingPeriod) Next() BillingPeriod {
	return PeriodOf(p.End())
}

func (p BillingPeriod) Before(o BillingPeriod) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

func (p BillingPeriod) Contains(t time.Time) bool {
	return PeriodOf(t) == p
}
