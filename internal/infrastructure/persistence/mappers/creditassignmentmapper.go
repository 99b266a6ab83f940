package mappers

import (
	"fmt"

	"mentora/internal/domain/assignment"
	"mentora/internal/infrastructure/persistence/models"
)

// CreditAssignmentMapper handles the conversion between domain entities and persistence models
type CreditAssignmentMapper interface {
	// ToEntity converts a persistence model to a domain entity
	ToEntity(model *models.CreditAssignmentModel) (*assignment.CreditAssignment, error)

	// ToModel converts a domain entity to a persistence model
	ToModel(entity *assignment.CreditAssignment) (*models.CreditAssignmentModel, error)

	// ToEntities converts multiple persistence models to domain entities
	ToEntities(models []*models.CreditAssignmentModel) ([]*assignment.CreditAssignment, error)
}

type creditAssignmentMapper struct{}

// NewCreditAssignmentMapper creates a new credit assignment mapper
func NewCreditAssignmentMapper() CreditAssignmentMapper {
	return &creditAssignmentMapper{}
}

// ToEntity converts a persistence model to a domain entity
func (m *creditAssignmentMapper) ToEntity(model *models.CreditAssignmentModel) (*assignment.CreditAssignment, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := assignment.ReconstructCreditAssignment(
		model.ID,
		model.AdvisorID,
		model.StartupID,
		model.StartDate,
		model.EndDate,
		assignment.Status(model.Status),
		model.AutoRenewEnabled,
		model.EntitlementID,
		model.AssignedAt,
		model.ExpiredAt,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct credit assignment entity: %w", err)
	}

	return entity, nil
}

// ToModel converts a domain entity to a persistence model. ActivePair is
// derived from the status: set while active, NULL once retired, which is what
// keeps the one-active-row unique index honest.
func (m *creditAssignmentMapper) ToModel(entity *assignment.CreditAssignment) (*models.CreditAssignmentModel, error) {
	if entity == nil {
		return nil, nil
	}

	var activePair *string
	if entity.Status() == assignment.StatusActive {
		key := models.ActivePairKey(entity.AdvisorID(), entity.StartupID())
		activePair = &key
	}

	return &models.CreditAssignmentModel{
		ID:               entity.ID(),
		AdvisorID:        entity.AdvisorID(),
		StartupID:        entity.StartupID(),
		ActivePair:       activePair,
		StartDate:        entity.StartDate(),
		EndDate:          entity.EndDate(),
		Status:           entity.Status().String(),
		AutoRenewEnabled: entity.AutoRenewEnabled(),
		EntitlementID:    entity.EntitlementID(),
		AssignedAt:       entity.AssignedAt(),
		ExpiredAt:        entity.ExpiredAt(),
		CreatedAt:        entity.CreatedAt(),
		UpdatedAt:        entity.UpdatedAt(),
		Version:          entity.Version(),
	}, nil
}

// ToEntities converts multiple persistence models to domain entities
func (m *creditAssignmentMapper) ToEntities(modelList []*models.CreditAssignmentModel) ([]*assignment.CreditAssignment, error) {
	entities := make([]*assignment.CreditAssignment, 0, len(modelList))

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
