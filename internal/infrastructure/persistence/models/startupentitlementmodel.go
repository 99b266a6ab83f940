package models

import (
	"time"

	"mentora/internal/shared/constants"
)

// StartupEntitlementModel represents the database persistence model for
// startup premium entitlements granted out of advisor credits.
//
// ActiveStartup mirrors the assignment table's partial-unique trick: it holds
// the startup ID while the entitlement is active and NULL once revoked, so a
// startup can carry at most one active entitlement at a time.
type StartupEntitlementModel struct {
	ID              uint   `gorm:"primarykey"`
	StartupID       uint   `gorm:"not null;index:idx_entitlement_startup"`
	ActiveStartup   *uint  `gorm:"uniqueIndex:idx_active_entitlement"`
	Tier            string `gorm:"not null;size:20"`
	Status          string `gorm:"not null;size:20;default:active"`
	PeriodStart     time.Time
	PeriodEnd       time.Time `gorm:"index:idx_entitlement_period"`
	PaidByAdvisorID uint      `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (StartupEntitlementModel) TableName() string {
	return constants.TableStartupEntitlements
}
