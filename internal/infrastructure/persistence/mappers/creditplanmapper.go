package mappers

import (
	"fmt"

	"mentora/internal/domain/pricing"
	"mentora/internal/infrastructure/persistence/models"
)

// CreditPlanMapper handles the conversion between domain entities and persistence models
type CreditPlanMapper interface {
	// ToEntity converts a persistence model to a domain entity
	ToEntity(model *models.CreditPlanModel) (*pricing.CreditPlan, error)

	// ToModel converts a domain entity to a persistence model
	ToModel(entity *pricing.CreditPlan) (*models.CreditPlanModel, error)

	// ToEntities converts multiple persistence models to domain entities
	ToEntities(models []*models.CreditPlanModel) ([]*pricing.CreditPlan, error)
}

type creditPlanMapper struct{}

// NewCreditPlanMapper creates a new credit plan mapper
func NewCreditPlanMapper() CreditPlanMapper {
	return &creditPlanMapper{}
}

// ToEntity converts a persistence model to a domain entity
func (m *creditPlanMapper) ToEntity(model *models.CreditPlanModel) (*pricing.CreditPlan, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := pricing.ReconstructCreditPlan(
		model.ID,
		model.Code,
		model.Name,
		model.Country,
		model.CreditsPerMonth,
		model.PricePerMonth,
		model.Currency,
		model.Active,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct credit plan entity: %w", err)
	}

	return entity, nil
}

// ToModel converts a domain entity to a persistence model
func (m *creditPlanMapper) ToModel(entity *pricing.CreditPlan) (*models.CreditPlanModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.CreditPlanModel{
		ID:              entity.ID(),
		Code:            entity.Code(),
		Name:            entity.Name(),
		Country:         entity.Country(),
		CreditsPerMonth: entity.CreditsPerMonth(),
		PricePerMonth:   entity.PricePerMonth(),
		Currency:        entity.Currency(),
		Active:          entity.IsActive(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}, nil
}

// ToEntities converts multiple persistence models to domain entities
func (m *creditPlanMapper) ToEntities(modelList []*models.CreditPlanModel) ([]*pricing.CreditPlan, error) {
	entities := make([]*pricing.CreditPlan, 0, len(modelList))

	for i, model := range modelList {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to map model at index %d (ID %d): %w", i, model.ID, err)
		}
		if entity != nil {
			entities = append(entities, entity)
		}
	}

	return entities, nil
}
