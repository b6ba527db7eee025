package subscription

import (
	"fmt"
	"time"

	"github.com/postforge/postforge/internal/domain/plan"
	vo "github.com/postforge/postforge/internal/domain/subscription/valueobjects"
)

// Subscription is the paid-plan aggregate mirrored from the payment processor.
type Subscription struct {
	id              uint
	externalID      string
	userID          uint
	plan            plan.Tier
	status          vo.Status
	currency        string
	amount          int64
	interval        plan.Interval
	startDate       time.Time
	endDate         time.Time
	nextBillingDate time.Time
	cancelledAt     *time.Time
	pausedAt        *time.Time
	invoices        []Invoice
	newInvoices     []Invoice
	version         int
	storedVersion   int
	createdAt       time.Time
	updatedAt       time.Time
}

// CreateParams describes a subscription the processor has just created.
type CreateParams struct {
	ExternalID string
	UserID     uint
	Plan       plan.Tier
	Currency   string
	Amount     int64
	Interval   plan.Interval
	Now        time.Time
}

// NewSubscription returns an active subscription whose first period starts now.
func NewSubscription(p CreateParams) (*Subscription, error) {
	if p.ExternalID == "" {
		return nil, fmt.Errorf("external subscription ID is required")
	}
	if p.UserID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if p.Plan == "" {
		return nil, fmt.Errorf("plan is required")
	}
	if !p.Interval.IsValid() {
		return nil, fmt.Errorf("%w: %q", plan.ErrInvalidInterval, p.Interval)
	}
	if p.Amount < 0 {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	end := p.Now.Add(p.Interval.Period())
	return &Subscription{
		externalID:      p.ExternalID,
		userID:          p.UserID,
		plan:            p.Plan,
		status:          vo.StatusActive,
		currency:        p.Currency,
		amount:          p.Amount,
		interval:        p.Interval,
		startDate:       p.Now,
		endDate:         end,
		nextBillingDate: end,
		version:         1,
		createdAt:       p.Now,
		updatedAt:       p.Now,
	}, nil
}

// ReconstructParams carries persisted state.
type ReconstructParams struct {
	ID              uint
	ExternalID      string
	UserID          uint
	Plan            plan.Tier
	Status          vo.Status
	Currency        string
	Amount          int64
	Interval        plan.Interval
	StartDate       time.Time
	EndDate         time.Time
	NextBillingDate time.Time
	CancelledAt     *time.Time
	PausedAt        *time.Time
	Invoices        []Invoice
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func ReconstructSubscription(p ReconstructParams) (*Subscription, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if p.ExternalID == "" {
		return nil, fmt.Errorf("external subscription ID is required")
	}
	if !vo.StoredStatuses[p.Status] {
		return nil, fmt.Errorf("invalid subscription status: %s", p.Status)
	}
	return &Subscription{
		id:              p.ID,
		externalID:      p.ExternalID,
		userID:          p.UserID,
		plan:            p.Plan,
		status:          p.Status,
		currency:        p.Currency,
		amount:          p.Amount,
		interval:        p.Interval,
		startDate:       p.StartDate,
		endDate:         p.EndDate,
		nextBillingDate: p.NextBillingDate,
		cancelledAt:     p.CancelledAt,
		pausedAt:        p.PausedAt,
		invoices:        p.Invoices,
		version:         p.Version,
		storedVersion:   p.Version,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}, nil
}

func (s *Subscription) ID() uint                   { return s.id }
func (s *Subscription) ExternalID() string         { return s.externalID }
func (s *Subscription) UserID() uint               { return s.userID }
func (s *Subscription) Plan() plan.Tier            { return s.plan }
func (s *Subscription) Status() vo.Status          { return s.status }
func (s *Subscription) Currency() string           { return s.currency }
func (s *Subscription) Amount() int64              { return s.amount }
func (s *Subscription) Interval() plan.Interval    { return s.interval }
func (s *Subscription) StartDate() time.Time       { return s.startDate }
func (s *Subscription) EndDate() time.Time         { return s.endDate }
func (s *Subscription) NextBillingDate() time.Time { return s.nextBillingDate }
func (s *Subscription) CancelledAt() *time.Time    { return s.cancelledAt }
func (s *Subscription) PausedAt() *time.Time       { return s.pausedAt }
func (s *Subscription) Version() int               { return s.version }
func (s *Subscription) CreatedAt() time.Time       { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time       { return s.updatedAt }

// Invoices returns every invoice, recorded and pending persistence, oldest first.
func (s *Subscription) Invoices() []Invoice {
	out := make([]Invoice, 0, len(s.invoices)+len(s.newInvoices))
	out = append(out, s.invoices...)
	return append(out, s.newInvoices...)
}

// PendingInvoices returns invoices added since the aggregate was loaded.
func (s *Subscription) PendingInvoices() []Invoice {
	return s.newInvoices
}

func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// StoredVersion is the version the aggregate was loaded with; updates are
// conditional on it.
func (s *Subscription) StoredVersion() int { return s.storedVersion }

// MarkPersisted clears pending invoices after a successful save.
func (s *Subscription) MarkPersisted() {
	s.invoices = append(s.invoices, s.newInvoices...)
	s.newInvoices = nil
	s.storedVersion = s.version
}

// EffectiveStatus derives expired for an active subscription past its end date.
func (s *Subscription) EffectiveStatus(now time.Time) vo.Status {
	if s.status == vo.StatusActive && s.endDate.Before(now) {
		return vo.StatusExpired
	}
	return s.status
}

// IsEntitled reports whether the subscription currently grants its plan.
func (s *Subscription) IsEntitled(now time.Time) bool {
	return s.EffectiveStatus(now) == vo.StatusActive
}

// HoldsActiveSlot reports whether the subscription occupies the user's single
// active slot in the store.
func (s *Subscription) HoldsActiveSlot() bool {
	return s.status == vo.StatusActive
}

// Cancel moves the subscription to cancelled. It returns false when it was
// already cancelled.
func (s *Subscription) Cancel(now time.Time) bool {
	if s.status == vo.StatusCancelled {
		return false
	}
	s.status = vo.StatusCancelled
	s.cancelledAt = &now
	s.touch(now)
	return true
}

// Pause suspends an active subscription. It returns false when already paused.
func (s *Subscription) Pause(now time.Time) (bool, error) {
	if s.status == vo.StatusPaused {
		return false, nil
	}
	if !s.status.CanTransitionTo(vo.StatusPaused) {
		return false, ErrInvalidTransition(s.status.String(), vo.StatusPaused.String())
	}
	s.status = vo.StatusPaused
	s.pausedAt = &now
	s.touch(now)
	return true, nil
}

// HasInvoice reports whether externalInvoiceID was already recorded.
func (s *Subscription) HasInvoice(externalInvoiceID string) bool {
	for _, inv := range s.invoices {
		if inv.ExternalInvoiceID == externalInvoiceID {
			return true
		}
	}
	for _, inv := range s.newInvoices {
		if inv.ExternalInvoiceID == externalInvoiceID {
			return true
		}
	}
	return false
}

// RecordCharge appends inv and extends the billing dates to periodEnd. A paused
// subscription resumes. A cancelled subscription keeps its status; the invoice
// is still recorded. Replays of the same invoice return false and change
// nothing.
func (s *Subscription) RecordCharge(inv Invoice, periodEnd time.Time, now time.Time) bool {
	return s.recordCharge(inv, periodEnd, now, true)
}

// RecordChargeWithoutResume records the invoice but leaves a paused
// subscription paused. Used when the user's active slot is taken by another
// subscription.
func (s *Subscription) RecordChargeWithoutResume(inv Invoice, periodEnd time.Time, now time.Time) bool {
	return s.recordCharge(inv, periodEnd, now, false)
}

func (s *Subscription) recordCharge(inv Invoice, periodEnd time.Time, now time.Time, resume bool) bool {
	if s.HasInvoice(inv.ExternalInvoiceID) {
		return false
	}

	s.newInvoices = append(s.newInvoices, inv)
	if !periodEnd.IsZero() {
		s.nextBillingDate = periodEnd
		if periodEnd.After(s.endDate) {
			s.endDate = periodEnd
		}
	}
	if resume && s.status == vo.StatusPaused {
		s.status = vo.StatusActive
		s.pausedAt = nil
	}
	s.touch(now)
	return true
}

// touch bumps the version at most once between saves.
func (s *Subscription) touch(now time.Time) {
	s.updatedAt = now
	if s.version == s.storedVersion {
		s.version++
	}
}
