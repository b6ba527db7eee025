package dto

import (
	"time"

	"github.com/postforge/postforge/internal/domain/offer"
	"github.com/postforge/postforge/internal/shared/mapper"
)

// ValidationDTO is the read-only outcome of checking a code.
type ValidationDTO struct {
	Code           string  `json:"code"`
	Valid          bool    `json:"valid"`
	Reason         string  `json:"reason,omitempty"`
	OriginalAmount float64 `json:"original_amount"`
	Discount       float64 `json:"discount"`
	FinalAmount    float64 `json:"final_amount"`
}

// ApplicationDTO is the outcome of redeeming a code for a completed order.
type ApplicationDTO struct {
	Code           string  `json:"code"`
	Applied        bool    `json:"applied"`
	Reason         string  `json:"reason,omitempty"`
	OriginalAmount float64 `json:"original_amount"`
	Discount       float64 `json:"discount"`
	FinalAmount    float64 `json:"final_amount"`
}

type OfferDTO struct {
	Code              string    `json:"code"`
	Description       string    `json:"description,omitempty"`
	DiscountType      string    `json:"discount_type"`
	DiscountValue     float64   `json:"discount_value"`
	MaxDiscountAmount *float64  `json:"max_discount_amount,omitempty"`
	MinAmount         float64   `json:"min_amount"`
	ApplicablePlans   []string  `json:"applicable_plans"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	UsageLimit        *int      `json:"usage_limit,omitempty"`
	UsedCount         int       `json:"used_count"`
	PerUserLimit      int       `json:"per_user_limit"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func NewValidationDTO(code string, amount float64, ev offer.Evaluation) *ValidationDTO {
	return &ValidationDTO{
		Code:           code,
		Valid:          ev.Valid,
		Reason:         string(ev.Reason),
		OriginalAmount: amount,
		Discount:       ev.Discount,
		FinalAmount:    ev.FinalAmount,
	}
}

func NewApplicationDTO(code string, amount float64, ev offer.Evaluation) *ApplicationDTO {
	return &ApplicationDTO{
		Code:           code,
		Applied:        ev.Valid,
		Reason:         string(ev.Reason),
		OriginalAmount: amount,
		Discount:       ev.Discount,
		FinalAmount:    ev.FinalAmount,
	}
}

var OfferMapper = mapper.New(
	func(o *offer.Offer) *OfferDTO {
		plans := o.ApplicablePlans()
		if plans == nil {
			plans = []string{}
		}
		return &OfferDTO{
			Code:              o.Code(),
			Description:       o.Description(),
			DiscountType:      string(o.DiscountType()),
			DiscountValue:     o.DiscountValue(),
			MaxDiscountAmount: o.MaxDiscountAmount(),
			MinAmount:         o.MinAmount(),
			ApplicablePlans:   plans,
			StartDate:         o.StartDate(),
			EndDate:           o.EndDate(),
			UsageLimit:        o.UsageLimit(),
			UsedCount:         o.UsedCount(),
			PerUserLimit:      o.PerUserLimit(),
			IsActive:          o.IsActive(),
			CreatedAt:         o.CreatedAt(),
			UpdatedAt:         o.UpdatedAt(),
		}
	},
)
