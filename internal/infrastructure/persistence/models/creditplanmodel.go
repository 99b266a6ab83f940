package models

import (
	"time"

	"mentora/internal/shared/constants"
)

// CreditPlanModel represents the database persistence model for the monthly
// credit plan catalog.
type CreditPlanModel struct {
	ID              uint   `gorm:"primarykey"`
	Code            string `gorm:"not null;size:50;uniqueIndex:idx_unique_plan_code"`
	Name            string `gorm:"not null;size:100"`
	Country         string `gorm:"not null;size:2;index:idx_plan_country"`
	CreditsPerMonth int    `gorm:"not null"`
	PricePerMonth   int64  `gorm:"not null"`
	Currency        string `gorm:"size:3"`
	Active          bool   `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (CreditPlanModel) TableName() string {
	return constants.TableCreditPlans
}
