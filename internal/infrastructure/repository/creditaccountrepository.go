package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"mentora/internal/domain/credit"
	"mentora/internal/infrastructure/persistence/mappers"
	"mentora/internal/infrastructure/persistence/models"
	apperrors "mentora/internal/shared/errors"
	"mentora/internal/shared/logger"
)

// CreditAccountRepositoryImpl implements the credit.AccountRepository interface
type CreditAccountRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.CreditAccountMapper
	logger logger.Interface
}

// NewCreditAccountRepository creates a new credit account repository instance
func NewCreditAccountRepository(db *gorm.DB, logger logger.Interface) credit.AccountRepository {
	return &CreditAccountRepositoryImpl{
		db:     db,
		mapper: mappers.NewCreditAccountMapper(),
		logger: logger,
	}
}

// Create creates the ledger row for an advisor
func (r *CreditAccountRepositoryImpl) Create(ctx context.Context, account *credit.CreditAccount) error {
	model, err := r.mapper.ToModel(account)
	if err != nil {
		return fmt.Errorf("failed to map credit account entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return credit.ErrVersionConflict
		}
		r.logger.Errorw("failed to create credit account",
			"advisor_id", account.AdvisorID(), "error", err)
		return fmt.Errorf("failed to create credit account: %w", err)
	}

	if err := account.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set credit account ID: %w", err)
	}
	return nil
}

// Update conditionally writes the account against the version it was read at.
// Every mutation in the aggregate bumps the version, so the stored row must
// still hold version-1 for the write to land.
func (r *CreditAccountRepositoryImpl) Update(ctx context.Context, account *credit.CreditAccount) error {
	model, err := r.mapper.ToModel(account)
	if err != nil {
		return fmt.Errorf("failed to map credit account entity: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&models.CreditAccountModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"credits_available":      model.CreditsAvailable,
			"credits_used":           model.CreditsUsed,
			"credits_purchased":      model.CreditsPurchased,
			"last_purchase_amount":   model.LastPurchaseAmount,
			"last_purchase_currency": model.LastPurchaseCurrency,
			"last_purchase_at":       model.LastPurchaseAt,
			"updated_at":             model.UpdatedAt,
			"version":                model.Version,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update credit account", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update credit account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return credit.ErrVersionConflict
	}
	return nil
}

// GetByAdvisorID retrieves the account for an advisor, or (nil, nil) when the
// advisor has never been granted credits
func (r *CreditAccountRepositoryImpl) GetByAdvisorID(ctx context.Context, advisorID uint) (*credit.CreditAccount, error) {
	var model models.CreditAccountModel

	if err := r.db.WithContext(ctx).Where("advisor_id = ?", advisorID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get credit account", "advisor_id", advisorID, "error", err)
		return nil, fmt.Errorf("failed to get credit account: %w", err)
	}

	return r.mapper.ToEntity(&model)
}
