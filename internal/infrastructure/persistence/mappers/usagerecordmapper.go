package mappers

import (
	"fmt"

	"github.com/postforge/postforge/internal/domain/usage"
	"github.com/postforge/postforge/internal/infrastructure/persistence/models"
)

// UsageRecordMapper converts between usage records and their model.
type UsageRecordMapper interface {
	ToEntity(model *models.UsageRecordModel) (*usage.Record, error)
	ToEntities(models []*models.UsageRecordModel) ([]*usage.Record, error)
}

type usageRecordMapper struct{}

func NewUsageRecordMapper() UsageRecordMapper {
	return &usageRecordMapper{}
}

func (m *usageRecordMapper) ToEntity(model *models.UsageRecordModel) (*usage.Record, error) {
	if model == nil {
		return nil, nil
	}

	period, err := usage.ParsePeriod(model.Period)
	if err != nil {
		return nil, fmt.Errorf("usage record %d: %w", model.ID, err)
	}

	entity, err := usage.ReconstructRecord(
		model.ID,
		model.UserID,
		period,
		model.PostsGenerated,
		model.CommentsGenerated,
		model.TotalTokensUsed,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct usage record: %w", err)
	}
	return entity, nil
}

func (m *usageRecordMapper) ToEntities(ms []*models.UsageRecordModel) ([]*usage.Record, error) {
	entities := make([]*usage.Record, 0, len(ms))
	for i, model := range ms {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to map model at index %d: %w", i, err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
