package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mentora/internal/domain/assignment"
	"mentora/internal/infrastructure/persistence/mappers"
	"mentora/internal/infrastructure/persistence/models"
	apperrors "mentora/internal/shared/errors"
	"mentora/internal/shared/logger"
)

// CreditAssignmentRepositoryImpl implements the assignment.Repository interface
type CreditAssignmentRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.CreditAssignmentMapper
	logger logger.Interface
}

// NewCreditAssignmentRepository creates a new credit assignment repository instance
func NewCreditAssignmentRepository(db *gorm.DB, logger logger.Interface) assignment.Repository {
	return &CreditAssignmentRepositoryImpl{
		db:     db,
		mapper: mappers.NewCreditAssignmentMapper(),
		logger: logger,
	}
}

// Create inserts an assignment row. A unique-key violation on the active-pair
// index means a concurrent writer already holds the active slot for this
// advisor and startup.
func (r *CreditAssignmentRepositoryImpl) Create(ctx context.Context, a *assignment.CreditAssignment) error {
	model, err := r.mapper.ToModel(a)
	if err != nil {
		return fmt.Errorf("failed to map assignment entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return assignment.ErrDuplicateActiveAssignment
		}
		r.logger.Errorw("failed to create assignment",
			"advisor_id", a.AdvisorID(), "startup_id", a.StartupID(), "error", err)
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	if err := a.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set assignment ID: %w", err)
	}
	return nil
}

// Update conditionally writes the assignment against its previous version.
// Reactivation flows through here too, so the active-pair column moves with
// the status and a duplicate violation again means a lost race.
func (r *CreditAssignmentRepositoryImpl) Update(ctx context.Context, a *assignment.CreditAssignment) error {
	model, err := r.mapper.ToModel(a)
	if err != nil {
		return fmt.Errorf("failed to map assignment entity: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&models.CreditAssignmentModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"active_pair":        model.ActivePair,
			"start_date":         model.StartDate,
			"end_date":           model.EndDate,
			"status":             model.Status,
			"auto_renew_enabled": model.AutoRenewEnabled,
			"entitlement_id":     model.EntitlementID,
			"assigned_at":        model.AssignedAt,
			"expired_at":         model.ExpiredAt,
			"updated_at":         model.UpdatedAt,
			"version":            model.Version,
		})

	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return assignment.ErrDuplicateActiveAssignment
		}
		r.logger.Errorw("failed to update assignment", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return assignment.ErrVersionConflict
	}
	return nil
}

// Delete removes an assignment row. Only the compensation path uses this,
// to undo an insert whose follow-up writes failed.
func (r *CreditAssignmentRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CreditAssignmentModel{}, id)

	if result.Error != nil {
		r.logger.Errorw("failed to delete assignment", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return assignment.ErrAssignmentNotFound
	}
	return nil
}

// GetByID retrieves an assignment by ID
func (r *CreditAssignmentRepositoryImpl) GetByID(ctx context.Context, id uint) (*assignment.CreditAssignment, error) {
	var model models.CreditAssignmentModel

	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get assignment", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetActiveByPair returns the active assignment for an advisor-startup pair,
// or (nil, nil) when none exists
func (r *CreditAssignmentRepositoryImpl) GetActiveByPair(ctx context.Context, advisorID, startupID uint) (*assignment.CreditAssignment, error) {
	var model models.CreditAssignmentModel

	err := r.db.WithContext(ctx).
		Where("advisor_id = ? AND startup_id = ? AND status = ?",
			advisorID, startupID, assignment.StatusActive.String()).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get active assignment",
			"advisor_id", advisorID, "startup_id", startupID, "error", err)
		return nil, fmt.Errorf("failed to get active assignment: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetLatestRetiredByPair returns the most recently retired assignment for a
// pair, or (nil, nil). Reusing this row for a new grant keeps one logical
// row per pair in the table.
func (r *CreditAssignmentRepositoryImpl) GetLatestRetiredByPair(ctx context.Context, advisorID, startupID uint) (*assignment.CreditAssignment, error) {
	var model models.CreditAssignmentModel

	err := r.db.WithContext(ctx).
		Where("advisor_id = ? AND startup_id = ? AND status IN ?",
			advisorID, startupID,
			[]string{assignment.StatusExpired.String(), assignment.StatusCancelled.String()}).
		Order("updated_at DESC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get retired assignment",
			"advisor_id", advisorID, "startup_id", startupID, "error", err)
		return nil, fmt.Errorf("failed to get retired assignment: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// ListByAdvisor returns all assignments an advisor has made, newest first
func (r *CreditAssignmentRepositoryImpl) ListByAdvisor(ctx context.Context, advisorID uint) ([]*assignment.CreditAssignment, error) {
	var modelList []*models.CreditAssignmentModel

	if err := r.db.WithContext(ctx).
		Where("advisor_id = ?", advisorID).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list assignments", "advisor_id", advisorID, "error", err)
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}

// FindRenewable returns active, auto-renew-enabled assignments whose end date
// falls on or before the given instant
func (r *CreditAssignmentRepositoryImpl) FindRenewable(ctx context.Context, until time.Time) ([]*assignment.CreditAssignment, error) {
	var modelList []*models.CreditAssignmentModel

	if err := r.db.WithContext(ctx).
		Where("status = ? AND auto_renew_enabled = ? AND end_date <= ?",
			assignment.StatusActive.String(), true, until).
		Order("end_date ASC").
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to find renewable assignments", "until", until, "error", err)
		return nil, fmt.Errorf("failed to find renewable assignments: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}
