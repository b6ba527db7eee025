package models

import (
	"time"

	"gorm.io/datatypes"
)

// OfferModel is the persistence model of a coupon. Code is stored upper-case.
type OfferModel struct {
	ID                uint     `gorm:"primarykey"`
	Code              string   `gorm:"type:varchar(64);not null;uniqueIndex:uk_offers_code"`
	Description       string   `gorm:"type:varchar(255)"`
	DiscountType      string   `gorm:"type:varchar(16);not null"`
	DiscountValue     float64  `gorm:"type:decimal(12,2);not null"`
	MaxDiscountAmount *float64 `gorm:"type:decimal(12,2)"`
	MinAmount         float64  `gorm:"type:decimal(12,2);not null;default:0"`
	ApplicablePlans   datatypes.JSON
	StartDate         time.Time
	EndDate           time.Time
	UsageLimit        *int
	UsedCount         int  `gorm:"not null;default:0"`
	PerUserLimit      int  `gorm:"not null;default:1"`
	IsActive          bool `gorm:"not null;default:true;index:idx_offers_active"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Redemptions []OfferRedemptionModel `gorm:"foreignKey:OfferID"`
}

func (OfferModel) TableName() string {
	return "offers"
}

// OfferRedemptionModel counts one user's uses of an offer.
type OfferRedemptionModel struct {
	ID         uint `gorm:"primarykey"`
	OfferID    uint `gorm:"not null;uniqueIndex:uk_redemptions_offer_user,priority:1"`
	UserID     uint `gorm:"not null;uniqueIndex:uk_redemptions_offer_user,priority:2"`
	UsageCount int  `gorm:"not null;default:0"`
	UsedAt     time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (OfferRedemptionModel) TableName() string {
	return "offer_redemptions"
}
