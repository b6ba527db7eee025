package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/postforge/postforge/internal/domain/offer"
	"github.com/postforge/postforge/internal/infrastructure/persistence/models"
)

// OfferMapper converts between offers and their models.
type OfferMapper interface {
	ToEntity(model *models.OfferModel) (*offer.Offer, error)
	ToEntities(models []*models.OfferModel) ([]*offer.Offer, error)
	ToModel(entity *offer.Offer) (*models.OfferModel, error)
}

type offerMapper struct{}

func NewOfferMapper() OfferMapper {
	return &offerMapper{}
}

func (m *offerMapper) ToEntity(model *models.OfferModel) (*offer.Offer, error) {
	if model == nil {
		return nil, nil
	}

	var plans []string
	if len(model.ApplicablePlans) > 0 {
		if err := json.Unmarshal(model.ApplicablePlans, &plans); err != nil {
			return nil, fmt.Errorf("offer %s: invalid applicable plans: %w", model.Code, err)
		}
	}

	redemptions := make([]offer.Redemption, 0, len(model.Redemptions))
	for _, r := range model.Redemptions {
		redemptions = append(redemptions, offer.Redemption{
			UserID:     r.UserID,
			UsedAt:     r.UsedAt,
			UsageCount: r.UsageCount,
		})
	}

	entity, err := offer.ReconstructOffer(offer.ReconstructParams{
		ID:                model.ID,
		Code:              model.Code,
		Description:       model.Description,
		DiscountType:      offer.DiscountType(model.DiscountType),
		DiscountValue:     model.DiscountValue,
		MaxDiscountAmount: model.MaxDiscountAmount,
		MinAmount:         model.MinAmount,
		ApplicablePlans:   plans,
		StartDate:         model.StartDate,
		EndDate:           model.EndDate,
		UsageLimit:        model.UsageLimit,
		UsedCount:         model.UsedCount,
		PerUserLimit:      model.PerUserLimit,
		IsActive:          model.IsActive,
		Redemptions:       redemptions,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct offer: %w", err)
	}
	return entity, nil
}

func (m *offerMapper) ToEntities(ms []*models.OfferModel) ([]*offer.Offer, error) {
	entities := make([]*offer.Offer, 0, len(ms))
	for i, model := range ms {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to map model at index %d: %w", i, err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// ToModel maps the offer row; redemptions are written by the repository.
func (m *offerMapper) ToModel(entity *offer.Offer) (*models.OfferModel, error) {
	if entity == nil {
		return nil, nil
	}

	plans := entity.ApplicablePlans()
	if plans == nil {
		plans = []string{}
	}
	raw, err := json.Marshal(plans)
	if err != nil {
		return nil, fmt.Errorf("failed to encode applicable plans: %w", err)
	}

	return &models.OfferModel{
		ID:                entity.ID(),
		Code:              entity.Code(),
		Description:       entity.Description(),
		DiscountType:      string(entity.DiscountType()),
		DiscountValue:     entity.DiscountValue(),
		MaxDiscountAmount: entity.MaxDiscountAmount(),
		MinAmount:         entity.MinAmount(),
		ApplicablePlans:   datatypes.JSON(raw),
		StartDate:         entity.StartDate(),
		EndDate:           entity.EndDate(),
		UsageLimit:        entity.UsageLimit(),
		UsedCount:         entity.UsedCount(),
		PerUserLimit:      entity.PerUserLimit(),
		IsActive:          entity.IsActive(),
		CreatedAt:         entity.CreatedAt(),
		UpdatedAt:         entity.UpdatedAt(),
	}, nil
}
