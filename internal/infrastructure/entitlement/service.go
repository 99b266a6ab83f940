package entitlement

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mentora/internal/infrastructure/persistence/models"
	apperrors "mentora/internal/shared/errors"
	"mentora/internal/shared/logger"
)

const (
	statusActive  = "active"
	statusRevoked = "revoked"
)

// Service keeps the startup entitlement records in step with credit
// assignments. Grant upserts the single entitlement row a startup may hold:
// a renewal supersedes the running record in place instead of stacking a
// second one, backed by the unique active-startup index.
type Service struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewService creates the entitlement service
func NewService(db *gorm.DB, logger logger.Interface) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// Grant creates or supersedes the active entitlement for a startup and
// returns the entitlement record ID.
func (s *Service) Grant(ctx context.Context, startupID uint, tier string, periodStart, periodEnd time.Time, paidByAdvisorID uint) (uint, error) {
	if startupID == 0 {
		return 0, fmt.Errorf("startup ID is required")
	}
	if !periodEnd.After(periodStart) {
		return 0, fmt.Errorf("period end must be after period start")
	}

	var existing models.StartupEntitlementModel
	err := s.db.WithContext(ctx).
		Where("startup_id = ? AND status = ?", startupID, statusActive).
		First(&existing).Error

	switch {
	case err == nil:
		result := s.db.WithContext(ctx).Model(&models.StartupEntitlementModel{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"tier":               tier,
				"period_start":       periodStart,
				"period_end":         periodEnd,
				"paid_by_advisor_id": paidByAdvisorID,
				"updated_at":         time.Now(),
			})
		if result.Error != nil {
			return 0, fmt.Errorf("failed to supersede entitlement: %w", result.Error)
		}
		s.logger.Infow("entitlement superseded",
			"entitlement_id", existing.ID,
			"startup_id", startupID,
			"period_end", periodEnd,
		)
		return existing.ID, nil

	case err == gorm.ErrRecordNotFound:
		startup := startupID
		model := &models.StartupEntitlementModel{
			StartupID:       startupID,
			ActiveStartup:   &startup,
			Tier:            tier,
			Status:          statusActive,
			PeriodStart:     periodStart,
			PeriodEnd:       periodEnd,
			PaidByAdvisorID: paidByAdvisorID,
		}
		if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
			if apperrors.IsDuplicateError(err) {
				// Lost a create race; the winner's record is the entitlement.
				return s.Grant(ctx, startupID, tier, periodStart, periodEnd, paidByAdvisorID)
			}
			return 0, fmt.Errorf("failed to grant entitlement: %w", err)
		}
		s.logger.Infow("entitlement granted",
			"entitlement_id", model.ID,
			"startup_id", startupID,
			"tier", tier,
			"period_end", periodEnd,
		)
		return model.ID, nil

	default:
		return 0, fmt.Errorf("failed to look up entitlement: %w", err)
	}
}

// Revoke deactivates an entitlement record. Revoking an already revoked
// record is a no-op so compensation paths can call it safely.
func (s *Service) Revoke(ctx context.Context, entitlementID uint) error {
	result := s.db.WithContext(ctx).Model(&models.StartupEntitlementModel{}).
		Where("id = ? AND status = ?", entitlementID, statusActive).
		Updates(map[string]interface{}{
			"status":         statusRevoked,
			"active_startup": nil,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to revoke entitlement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		s.logger.Debugw("entitlement already revoked or missing", "entitlement_id", entitlementID)
		return nil
	}

	s.logger.Infow("entitlement revoked", "entitlement_id", entitlementID)
	return nil
}

// HasValidEntitlement reports whether the startup holds an active entitlement
// whose period covers the given instant, from any paying source.
func (s *Service) HasValidEntitlement(ctx context.Context, startupID uint, at time.Time) (bool, error) {
	var count int64

	if err := s.db.WithContext(ctx).Model(&models.StartupEntitlementModel{}).
		Where("startup_id = ? AND status = ?", startupID, statusActive).
		Where("period_start <= ? AND period_end > ?", at, at).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check entitlement validity: %w", err)
	}

	return count > 0, nil
}
