package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"mentora/internal/domain/recurring"
	"mentora/internal/infrastructure/persistence/mappers"
	"mentora/internal/infrastructure/persistence/models"
	apperrors "mentora/internal/shared/errors"
	"mentora/internal/shared/logger"
)

// RecurringSubscriptionRepositoryImpl implements the recurring.Repository interface
type RecurringSubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.RecurringSubscriptionMapper
	logger logger.Interface
}

// NewRecurringSubscriptionRepository creates a new recurring subscription repository instance
func NewRecurringSubscriptionRepository(db *gorm.DB, logger logger.Interface) recurring.Repository {
	return &RecurringSubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewRecurringSubscriptionMapper(),
		logger: logger,
	}
}

// Create inserts a subscription row. The unique (gateway, ref) index rejects
// a second registration of the same gateway subscription.
func (r *RecurringSubscriptionRepositoryImpl) Create(ctx context.Context, s *recurring.CreditSubscription) error {
	model, err := r.mapper.ToModel(s)
	if err != nil {
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return recurring.ErrDuplicateSubscriptionRef
		}
		r.logger.Errorw("failed to create subscription",
			"advisor_id", s.AdvisorID(),
			"gateway", s.Gateway(),
			"ref", s.GatewaySubscriptionRef(),
			"error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := s.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}
	return nil
}

// Update conditionally writes the subscription against its previous version
func (r *RecurringSubscriptionRepositoryImpl) Update(ctx context.Context, s *recurring.CreditSubscription) error {
	model, err := r.mapper.ToModel(s)
	if err != nil {
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&models.RecurringSubscriptionModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"status":               model.Status,
			"current_period_start": model.CurrentPeriodStart,
			"current_period_end":   model.CurrentPeriodEnd,
			"next_billing_date":    model.NextBillingDate,
			"billing_cycle_count":  model.BillingCycleCount,
			"total_paid":           model.TotalPaid,
			"cancelled_at":         model.CancelledAt,
			"updated_at":           model.UpdatedAt,
			"version":              model.Version,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return recurring.ErrVersionConflict
	}
	return nil
}

// GetByID retrieves a subscription by ID
func (r *RecurringSubscriptionRepositoryImpl) GetByID(ctx context.Context, id uint) (*recurring.CreditSubscription, error) {
	var model models.RecurringSubscriptionModel

	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetByGatewayRef returns the subscription for a gateway reference, or (nil, nil)
func (r *RecurringSubscriptionRepositoryImpl) GetByGatewayRef(ctx context.Context, gateway, ref string) (*recurring.CreditSubscription, error) {
	var model models.RecurringSubscriptionModel

	err := r.db.WithContext(ctx).
		Where("gateway = ? AND gateway_subscription_ref = ?", gateway, ref).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by gateway ref",
			"gateway", gateway, "ref", ref, "error", err)
		return nil, fmt.Errorf("failed to get subscription by gateway ref: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// ListByAdvisor returns all subscriptions for an advisor, newest first
func (r *RecurringSubscriptionRepositoryImpl) ListByAdvisor(ctx context.Context, advisorID uint) ([]*recurring.CreditSubscription, error) {
	var modelList []*models.RecurringSubscriptionModel

	if err := r.db.WithContext(ctx).
		Where("advisor_id = ?", advisorID).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list subscriptions", "advisor_id", advisorID, "error", err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}
