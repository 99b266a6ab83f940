package models

import (
	"time"

	"mentora/internal/shared/constants"
)

// CreditAccountModel represents the database persistence model for advisor
// credit accounts. This is the anti-corruption layer between domain and
// database; the version column backs the optimistic balance writes.
type CreditAccountModel struct {
	ID                   uint `gorm:"primarykey"`
	AdvisorID            uint `gorm:"not null;uniqueIndex:idx_unique_advisor_account"`
	CreditsAvailable     int  `gorm:"not null;default:0"`
	CreditsUsed          int  `gorm:"not null;default:0"`
	CreditsPurchased     int  `gorm:"not null;default:0"`
	LastPurchaseAmount   int64
	LastPurchaseCurrency string `gorm:"size:3"`
	LastPurchaseAt       *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Version              int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM
func (CreditAccountModel) TableName() string {
	return constants.TableCreditAccounts
}
