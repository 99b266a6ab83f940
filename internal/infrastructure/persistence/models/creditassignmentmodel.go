package models

import (
	"fmt"
	"time"

	"mentora/internal/shared/constants"
)

// CreditAssignmentModel represents the database persistence model for
// advisor-to-startup credit assignments.
//
// ActivePair emulates a partial unique index: it holds "advisor:startup"
// while the row is active and NULL otherwise. MySQL permits any number of
// NULLs under a unique index, so retired rows pile up freely while a second
// concurrent insert for the same active pair fails on the constraint.
type CreditAssignmentModel struct {
	ID               uint      `gorm:"primarykey"`
	AdvisorID        uint      `gorm:"not null;index:idx_advisor_assignments,priority:1"`
	StartupID        uint      `gorm:"not null;index:idx_startup_assignments"`
	ActivePair       *string   `gorm:"size:64;uniqueIndex:idx_active_assignment"`
	StartDate        time.Time `gorm:"not null"`
	EndDate          time.Time `gorm:"not null;index:idx_renewal_scan,priority:3"`
	Status           string    `gorm:"not null;size:20;default:active;index:idx_renewal_scan,priority:1"`
	AutoRenewEnabled bool      `gorm:"not null;default:false;index:idx_renewal_scan,priority:2"`
	EntitlementID    *uint
	AssignedAt       time.Time `gorm:"not null"`
	ExpiredAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM
func (CreditAssignmentModel) TableName() string {
	return constants.TableCreditAssignments
}

// ActivePairKey builds the uniqueness key stored while a row is active
func ActivePairKey(advisorID, startupID uint) string {
	return fmt.Sprintf("%d:%d", advisorID, startupID)
}
