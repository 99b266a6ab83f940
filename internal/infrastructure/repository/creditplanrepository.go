package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"mentora/internal/domain/pricing"
	"mentora/internal/infrastructure/persistence/mappers"
	"mentora/internal/infrastructure/persistence/models"
	"mentora/internal/shared/logger"
)

// CreditPlanRepositoryImpl implements the pricing.PlanRepository interface
type CreditPlanRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.CreditPlanMapper
	logger logger.Interface
}

// NewCreditPlanRepository creates a new credit plan repository instance
func NewCreditPlanRepository(db *gorm.DB, logger logger.Interface) pricing.PlanRepository {
	return &CreditPlanRepositoryImpl{
		db:     db,
		mapper: mappers.NewCreditPlanMapper(),
		logger: logger,
	}
}

// GetByID retrieves a plan by ID
func (r *CreditPlanRepositoryImpl) GetByID(ctx context.Context, id uint) (*pricing.CreditPlan, error) {
	var model models.CreditPlanModel

	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pricing.ErrPlanNotFound
		}
		r.logger.Errorw("failed to get credit plan", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get credit plan: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetByCode retrieves a plan by its stable code
func (r *CreditPlanRepositoryImpl) GetByCode(ctx context.Context, code string) (*pricing.CreditPlan, error) {
	var model models.CreditPlanModel

	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pricing.ErrPlanNotFound
		}
		r.logger.Errorw("failed to get credit plan by code", "code", code, "error", err)
		return nil, fmt.Errorf("failed to get credit plan by code: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// ListByCountry returns active plans offered in a jurisdiction
func (r *CreditPlanRepositoryImpl) ListByCountry(ctx context.Context, country string) ([]*pricing.CreditPlan, error) {
	var modelList []*models.CreditPlanModel

	if err := r.db.WithContext(ctx).
		Where("country = ? AND active = ?", strings.ToUpper(country), true).
		Order("price_per_month ASC").
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list credit plans", "country", country, "error", err)
		return nil, fmt.Errorf("failed to list credit plans: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}

// Create inserts a plan (admin path)
func (r *CreditPlanRepositoryImpl) Create(ctx context.Context, p *pricing.CreditPlan) error {
	model, err := r.mapper.ToModel(p)
	if err != nil {
		return fmt.Errorf("failed to map credit plan entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create credit plan", "code", p.Code(), "error", err)
		return fmt.Errorf("failed to create credit plan: %w", err)
	}

	if err := p.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set credit plan ID: %w", err)
	}
	return nil
}
