package mappers

import (
	"fmt"

	"mentora/internal/domain/credit"
	"mentora/internal/infrastructure/persistence/models"
)

// CreditAccountMapper handles the conversion between domain entities and persistence models
type CreditAccountMapper interface {
	// ToEntity converts a persistence model to a domain entity
	ToEntity(model *models.CreditAccountModel) (*credit.CreditAccount, error)

	// ToModel converts a domain entity to a persistence model
	ToModel(entity *credit.CreditAccount) (*models.CreditAccountModel, error)
}

type creditAccountMapper struct{}

// NewCreditAccountMapper creates a new credit account mapper
func NewCreditAccountMapper() CreditAccountMapper {
	return &creditAccountMapper{}
}

// ToEntity converts a persistence model to a domain entity
func (m *creditAccountMapper) ToEntity(model *models.CreditAccountModel) (*credit.CreditAccount, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := credit.ReconstructCreditAccount(
		model.ID,
		model.AdvisorID,
		model.CreditsAvailable,
		model.CreditsUsed,
		model.CreditsPurchased,
		model.LastPurchaseAmount,
		model.LastPurchaseCurrency,
		model.LastPurchaseAt,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct credit account entity: %w", err)
	}

	return entity, nil
}

// ToModel converts a domain entity to a persistence model
func (m *creditAccountMapper) ToModel(entity *credit.CreditAccount) (*models.CreditAccountModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.CreditAccountModel{
		ID:                   entity.ID(),
		AdvisorID:            entity.AdvisorID(),
		CreditsAvailable:     entity.CreditsAvailable(),
		CreditsUsed:          entity.CreditsUsed(),
		CreditsPurchased:     entity.CreditsPurchased(),
		LastPurchaseAmount:   entity.LastPurchaseAmount(),
		LastPurchaseCurrency: entity.LastPurchaseCurrency(),
		LastPurchaseAt:       entity.LastPurchaseAt(),
		CreatedAt:            entity.CreatedAt(),
		UpdatedAt:            entity.UpdatedAt(),
		Version:              entity.Version(),
	}, nil
}
