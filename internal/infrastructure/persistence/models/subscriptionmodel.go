package models

import "time"

// SubscriptionModel is the persistence model of a paid subscription.
// ActiveUserID equals UserID while the status is active and is NULL otherwise;
// its unique index allows at most one active subscription per user.
type SubscriptionModel struct {
	ID              uint   `gorm:"primarykey"`
	ExternalID      string `gorm:"type:varchar(64);not null;uniqueIndex:uk_subscriptions_external_id"`
	UserID          uint   `gorm:"not null;index:idx_subscriptions_user"`
	ActiveUserID    *uint  `gorm:"uniqueIndex:uk_subscriptions_active_user"`
	Plan            string `gorm:"type:varchar(32);not null"`
	Status          string `gorm:"type:varchar(16);not null;index:idx_subscriptions_status"`
	Currency        string `gorm:"type:char(3);not null"`
	Amount          int64  `gorm:"not null"`
	BillingInterval string `gorm:"type:varchar(16);not null"`
	StartDate       time.Time
	EndDate         time.Time
	NextBillingDate time.Time
	CancelledAt     *time.Time
	PausedAt        *time.Time
	Version         int `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Invoices []SubscriptionInvoiceModel `gorm:"foreignKey:SubscriptionID"`
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// SubscriptionInvoiceModel is a charge recorded for a subscription.
type SubscriptionInvoiceModel struct {
	ID                uint   `gorm:"primarykey"`
	SubscriptionID    uint   `gorm:"not null;index:idx_invoices_subscription"`
	ExternalInvoiceID string `gorm:"type:varchar(64);not null;uniqueIndex:uk_invoices_external_id"`
	Amount            int64  `gorm:"not null"`
	Currency          string `gorm:"type:char(3)"`
	Status            string `gorm:"type:varchar(16);not null"`
	PaidAt            time.Time
	CreatedAt         time.Time
}

func (SubscriptionInvoiceModel) TableName() string {
	return "subscription_invoices"
}
