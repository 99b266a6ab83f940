package mappers

import (
	"encoding/json"
	"fmt"

	"mentora/internal/domain/credit"
	"mentora/internal/infrastructure/persistence/models"
)

// PurchaseHistoryMapper handles the conversion between domain entities and persistence models
type PurchaseHistoryMapper interface {
	// ToEntity converts a persistence model to a domain entity
	ToEntity(model *models.PurchaseHistoryModel) (*credit.PurchaseHistoryEntry, error)

	// ToModel converts a domain entity to a persistence model
	ToModel(entity *credit.PurchaseHistoryEntry) (*models.PurchaseHistoryModel, error)

	// ToEntities converts multiple persistence models to domain entities
	ToEntities(models []*models.PurchaseHistoryModel) ([]*credit.PurchaseHistoryEntry, error)
}

type purchaseHistoryMapper struct{}

// NewPurchaseHistoryMapper creates a new purchase history mapper
func NewPurchaseHistoryMapper() PurchaseHistoryMapper {
	return &purchaseHistoryMapper{}
}

// ToEntity converts a persistence model to a domain entity
func (m *purchaseHistoryMapper) ToEntity(model *models.PurchaseHistoryModel) (*credit.PurchaseHistoryEntry, error) {
	if model == nil {
		return nil, nil
	}

	var metadata map[string]any
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal purchase metadata: %w", err)
		}
	}

	entity, err := credit.ReconstructPurchaseHistoryEntry(
		model.ID,
		model.AdvisorID,
		model.Credits,
		model.Amount,
		model.Currency,
		model.Gateway,
		model.TransactionID,
		credit.PurchaseStatus(model.Status),
		metadata,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct purchase history entity: %w", err)
	}

	return entity, nil
}

// ToModel converts a domain entity to a persistence model
func (m *purchaseHistoryMapper) ToModel(entity *credit.PurchaseHistoryEntry) (*models.PurchaseHistoryModel, error) {
	if entity == nil {
		return nil, nil
	}

	metadata, err := json.Marshal(entity.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal purchase metadata: %w", err)
	}

	return &models.PurchaseHistoryModel{
		ID:            entity.ID(),
		AdvisorID:     entity.AdvisorID(),
		Credits:       entity.Credits(),
		Amount:        entity.Amount(),
		Currency:      entity.Currency(),
		Gateway:       entity.Gateway(),
		TransactionID: entity.TransactionID(),
		Status:        entity.Status().String(),
		Metadata:      metadata,
		CreatedAt:     entity.CreatedAt(),
		UpdatedAt:     entity.UpdatedAt(),
	}, nil
}

// ToEntities converts multiple persistence models to domain entities
func (m *purchaseHistoryMapper) ToEntities(modelList []*models.PurchaseHistoryModel) ([]*credit.PurchaseHistoryEntry, error) {
	entities := make([]*credit.PurchaseHistoryEntry, 0, len(modelList))

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
