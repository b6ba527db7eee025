package dto

import (
	"time"

	"github.com/postforge/postforge/internal/domain/subscription"
	"github.com/postforge/postforge/internal/shared/mapper"
)

type SubscriptionDTO struct {
	ExternalID      string       `json:"external_id"`
	UserID          uint         `json:"user_id"`
	Plan            string       `json:"plan"`
	Status          string       `json:"status"`
	Currency        string       `json:"currency"`
	Amount          int64        `json:"amount"`
	BillingInterval string       `json:"billing_interval"`
	StartDate       time.Time    `json:"start_date"`
	EndDate         time.Time    `json:"end_date"`
	NextBillingDate time.Time    `json:"next_billing_date"`
	CancelledAt     *time.Time   `json:"cancelled_at,omitempty"`
	PausedAt        *time.Time   `json:"paused_at,omitempty"`
	Invoices        []InvoiceDTO `json:"invoices"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type InvoiceDTO struct {
	ExternalInvoiceID string    `json:"external_invoice_id"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	PaidAt            time.Time `json:"paid_at"`
}

var InvoiceMapper = mapper.New(
	func(inv subscription.Invoice) InvoiceDTO {
		return InvoiceDTO{
			ExternalInvoiceID: inv.ExternalInvoiceID,
			Amount:            inv.Amount,
			Currency:          inv.Currency,
			Status:            inv.Status,
			PaidAt:            inv.PaidAt,
		}
	},
)

// ToSubscriptionDTO reports the status derived at now, so an active
// subscription past its end date shows as expired.
func ToSubscriptionDTO(sub *subscription.Subscription, now time.Time) *SubscriptionDTO {
	if sub == nil {
		return nil
	}
	return &SubscriptionDTO{
		ExternalID:      sub.ExternalID(),
		UserID:          sub.UserID(),
		Plan:            sub.Plan().String(),
		Status:          sub.EffectiveStatus(now).String(),
		Currency:        sub.Currency(),
		Amount:          sub.Amount(),
		BillingInterval: string(sub.Interval()),
		StartDate:       sub.StartDate(),
		EndDate:         sub.EndDate(),
		NextBillingDate: sub.NextBillingDate(),
		CancelledAt:     sub.CancelledAt(),
		PausedAt:        sub.PausedAt(),
		Invoices:        InvoiceMapper.ToDTOList(sub.Invoices()),
		CreatedAt:       sub.CreatedAt(),
		UpdatedAt:       sub.UpdatedAt(),
	}
}
