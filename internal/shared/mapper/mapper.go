// Package mapper converts domain aggregates into response DTOs.
package mapper

// Mapper is a one-way conversion from a domain type to its DTO.
type Mapper[T any, D any] struct {
	toDTO func(T) D
}

func New[T any, D any](toDTO func(T) D) *Mapper[T, D] {
	return &Mapper[T, D]{toDTO: toDTO}
}

func (m *Mapper[T, D]) ToDTO(entity T) D {
	return m.toDTO(entity)
}

// ToDTOList never returns nil, so empty lists encode as [] rather than null.
func (m *Mapper[T, D]) ToDTOList(entities []T) []D {
	dtos := make([]D, 0, len(entities))
	for _, entity := range entities {
		dtos = append(dtos, m.toDTO(entity))
	}
	return dtos
}
