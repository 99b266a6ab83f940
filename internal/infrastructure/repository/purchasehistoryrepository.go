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

// PurchaseHistoryRepositoryImpl implements the credit.PurchaseHistoryRepository interface
type PurchaseHistoryRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PurchaseHistoryMapper
	logger logger.Interface
}

// NewPurchaseHistoryRepository creates a new purchase history repository instance
func NewPurchaseHistoryRepository(db *gorm.DB, logger logger.Interface) credit.PurchaseHistoryRepository {
	return &PurchaseHistoryRepositoryImpl{
		db:     db,
		mapper: mappers.NewPurchaseHistoryMapper(),
		logger: logger,
	}
}

// Create appends an audit entry. The unique (gateway, transaction_id) index
// rejects a second entry for the same charge.
func (r *PurchaseHistoryRepositoryImpl) Create(ctx context.Context, entry *credit.PurchaseHistoryEntry) error {
	model, err := r.mapper.ToModel(entry)
	if err != nil {
		return fmt.Errorf("failed to map purchase entry: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return credit.ErrDuplicateTransaction
		}
		r.logger.Errorw("failed to create purchase entry",
			"advisor_id", entry.AdvisorID(),
			"transaction_id", entry.TransactionID(),
			"error", err)
		return fmt.Errorf("failed to create purchase entry: %w", err)
	}

	if err := entry.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set purchase entry ID: %w", err)
	}
	return nil
}

// UpdateStatus persists a status transition on an existing entry
func (r *PurchaseHistoryRepositoryImpl) UpdateStatus(ctx context.Context, entry *credit.PurchaseHistoryEntry) error {
	model, err := r.mapper.ToModel(entry)
	if err != nil {
		return fmt.Errorf("failed to map purchase entry: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&models.PurchaseHistoryModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"metadata":   model.Metadata,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update purchase entry status", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update purchase entry status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return credit.ErrPurchaseEntryNotFound
	}
	return nil
}

// Delete removes an entry. Only the compensation path uses this, to free the
// unique transaction ID when the charge was never applied.
func (r *PurchaseHistoryRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.PurchaseHistoryModel{}, id)

	if result.Error != nil {
		r.logger.Errorw("failed to delete purchase entry", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete purchase entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return credit.ErrPurchaseEntryNotFound
	}
	return nil
}

// GetByTransactionID returns the entry for a gateway charge, or (nil, nil)
func (r *PurchaseHistoryRepositoryImpl) GetByTransactionID(ctx context.Context, gateway, transactionID string) (*credit.PurchaseHistoryEntry, error) {
	var model models.PurchaseHistoryModel

	err := r.db.WithContext(ctx).
		Where("gateway = ? AND transaction_id = ?", gateway, transactionID).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get purchase entry",
			"gateway", gateway, "transaction_id", transactionID, "error", err)
		return nil, fmt.Errorf("failed to get purchase entry: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// ListByAdvisor returns an advisor's purchase history, newest first
func (r *PurchaseHistoryRepositoryImpl) ListByAdvisor(ctx context.Context, advisorID uint, limit, offset int) ([]*credit.PurchaseHistoryEntry, error) {
	var modelList []*models.PurchaseHistoryModel

	if err := r.db.WithContext(ctx).
		Where("advisor_id = ?", advisorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list purchase history", "advisor_id", advisorID, "error", err)
		return nil, fmt.Errorf("failed to list purchase history: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}
