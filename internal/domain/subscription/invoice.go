package subscription

import (
	"fmt"
	"time"
)

// Invoice is a charge recorded against a subscription. ExternalInvoiceID is
// the processor's identifier and is unique across all subscriptions.
type Invoice struct {
	ExternalInvoiceID string
	Amount            int64
	Currency          string
	Status            string
	PaidAt            time.Time
}

const InvoiceStatusPaid = "paid"

func NewPaidInvoice(externalID string, amount int64, currency string, paidAt time.Time) (Invoice, error) {
	if externalID == "" {
		return Invoice{}, fmt.Errorf("external invoice ID is required")
	}
	if amount < 0 {
		return Invoice{}, fmt.Errorf("invoice amount cannot be negative")
	}
	return Invoice{
		ExternalInvoiceID: externalID,
		Amount:            amount,
		Currency:          currency,
		Status:            InvoiceStatusPaid,
		PaidAt:            paidAt,
	}, nil
}
