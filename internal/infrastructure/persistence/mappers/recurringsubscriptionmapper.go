package mappers

import (
	"fmt"

	"mentora/internal/domain/recurring"
	"mentora/internal/infrastructure/persistence/models"
)

// RecurringSubscriptionMapper handles the conversion between domain entities and persistence models
type RecurringSubscriptionMapper interface {
	// ToEntity converts a persistence model to a domain entity
	ToEntity(model *models.RecurringSubscriptionModel) (*recurring.CreditSubscription, error)

	// ToModel converts a domain entity to a persistence model
	ToModel(entity *recurring.CreditSubscription) (*models.RecurringSubscriptionModel, error)

	// ToEntities converts multiple persistence models to domain entities
	ToEntities(models []*models.RecurringSubscriptionModel) ([]*recurring.CreditSubscription, error)
}

type recurringSubscriptionMapper struct{}

// NewRecurringSubscriptionMapper creates a new recurring subscription mapper
func NewRecurringSubscriptionMapper() RecurringSubscriptionMapper {
	return &recurringSubscriptionMapper{}
}

// ToEntity converts a persistence model to a domain entity
func (m *recurringSubscriptionMapper) ToEntity(model *models.RecurringSubscriptionModel) (*recurring.CreditSubscription, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := recurring.ReconstructCreditSubscription(
		model.ID,
		model.AdvisorID,
		model.PlanID,
		model.CreditsPerMonth,
		model.PricePerMonth,
		model.Currency,
		model.Gateway,
		model.GatewaySubscriptionRef,
		recurring.Status(model.Status),
		model.CurrentPeriodStart,
		model.CurrentPeriodEnd,
		model.NextBillingDate,
		model.BillingCycleCount,
		model.TotalPaid,
		model.CancelledAt,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription entity: %w", err)
	}

	return entity, nil
}

// ToModel converts a domain entity to a persistence model
func (m *recurringSubscriptionMapper) ToModel(entity *recurring.CreditSubscription) (*models.RecurringSubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.RecurringSubscriptionModel{
		ID:                     entity.ID(),
		AdvisorID:              entity.AdvisorID(),
		PlanID:                 entity.PlanID(),
		CreditsPerMonth:        entity.CreditsPerMonth(),
		PricePerMonth:          entity.PricePerMonth(),
		Currency:               entity.Currency(),
		Gateway:                entity.Gateway(),
		GatewaySubscriptionRef: entity.GatewaySubscriptionRef(),
		Status:                 entity.Status().String(),
		CurrentPeriodStart:     entity.CurrentPeriodStart(),
		CurrentPeriodEnd:       entity.CurrentPeriodEnd(),
		NextBillingDate:        entity.NextBillingDate(),
		BillingCycleCount:      entity.BillingCycleCount(),
		TotalPaid:              entity.TotalPaid(),
		CancelledAt:            entity.CancelledAt(),
		CreatedAt:              entity.CreatedAt(),
		UpdatedAt:              entity.UpdatedAt(),
		Version:                entity.Version(),
	}, nil
}

// ToEntities converts multiple persistence models to domain entities
func (m *recurringSubscriptionMapper) ToEntities(modelList []*models.RecurringSubscriptionModel) ([]*recurring.CreditSubscription, error) {
	entities := make([]*recurring.CreditSubscription, 0, len(modelList))

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
