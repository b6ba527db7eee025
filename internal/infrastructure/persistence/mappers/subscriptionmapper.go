package mappers

import (
	"fmt"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/domain/subscription"
	vo "github.com/postforge/postforge/internal/domain/subscription/valueobjects"
	"github.com/postforge/postforge/internal/infrastructure/persistence/models"
)

// SubscriptionMapper converts between subscriptions and their models.
type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) *models.SubscriptionModel
	ToInvoiceModels(subscriptionID uint, invoices []subscription.Invoice) []models.SubscriptionInvoiceModel
}

type subscriptionMapper struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &subscriptionMapper{}
}

func (m *subscriptionMapper) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	invoices := make([]subscription.Invoice, 0, len(model.Invoices))
	for _, inv := range model.Invoices {
		invoices = append(invoices, subscription.Invoice{
			ExternalInvoiceID: inv.ExternalInvoiceID,
			Amount:            inv.Amount,
			Currency:          inv.Currency,
			Status:            inv.Status,
			PaidAt:            inv.PaidAt,
		})
	}

	entity, err := subscription.ReconstructSubscription(subscription.ReconstructParams{
		ID:              model.ID,
		ExternalID:      model.ExternalID,
		UserID:          model.UserID,
		Plan:            plan.Tier(model.Plan),
		Status:          vo.Status(model.Status),
		Currency:        model.Currency,
		Amount:          model.Amount,
		Interval:        plan.Interval(model.BillingInterval),
		StartDate:       model.StartDate,
		EndDate:         model.EndDate,
		NextBillingDate: model.NextBillingDate,
		CancelledAt:     model.CancelledAt,
		PausedAt:        model.PausedAt,
		Invoices:        invoices,
		Version:         model.Version,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription: %w", err)
	}
	return entity, nil
}

// ToModel maps scalar state only; invoices are written separately.
func (m *subscriptionMapper) ToModel(entity *subscription.Subscription) *models.SubscriptionModel {
	if entity == nil {
		return nil
	}

	var activeUserID *uint
	if entity.HoldsActiveSlot() {
		uid := entity.UserID()
		activeUserID = &uid
	}

	return &models.SubscriptionModel{
		ID:              entity.ID(),
		ExternalID:      entity.ExternalID(),
		UserID:          entity.UserID(),
		ActiveUserID:    activeUserID,
		Plan:            entity.Plan().String(),
		Status:          entity.Status().String(),
		Currency:        entity.Currency(),
		Amount:          entity.Amount(),
		BillingInterval: string(entity.Interval()),
		StartDate:       entity.StartDate(),
		EndDate:         entity.EndDate(),
		NextBillingDate: entity.NextBillingDate(),
		CancelledAt:     entity.CancelledAt(),
		PausedAt:        entity.PausedAt(),
		Version:         entity.Version(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}
}

func (m *subscriptionMapper) ToInvoiceModels(subscriptionID uint, invoices []subscription.Invoice) []models.SubscriptionInvoiceModel {
	out := make([]models.SubscriptionInvoiceModel, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, models.SubscriptionInvoiceModel{
			SubscriptionID:    subscriptionID,
			ExternalInvoiceID: inv.ExternalInvoiceID,
			Amount:            inv.Amount,
			Currency:          inv.Currency,
			Status:            inv.Status,
			PaidAt:            inv.PaidAt,
		})
	}
	return out
}
