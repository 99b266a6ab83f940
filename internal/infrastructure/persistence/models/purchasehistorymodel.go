package models

import (
	"time"

	"gorm.io/datatypes"

	"mentora/internal/shared/constants"
)

// PurchaseHistoryModel represents the database persistence model for the
// credit purchase audit log. The unique (gateway, transaction_id) index is
// the idempotency barrier for webhook redelivery.
type PurchaseHistoryModel struct {
	ID            uint   `gorm:"primarykey"`
	AdvisorID     uint   `gorm:"not null;index:idx_advisor_purchases"`
	Credits       int    `gorm:"not null"`
	Amount        int64  `gorm:"not null"`
	Currency      string `gorm:"size:3"`
	Gateway       string `gorm:"not null;size:20;uniqueIndex:idx_unique_transaction,priority:1"`
	TransactionID string `gorm:"not null;size:191;uniqueIndex:idx_unique_transaction,priority:2"`
	Status        string `gorm:"not null;size:20;default:pending"`
	Metadata      datatypes.JSON
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (PurchaseHistoryModel) TableName() string {
	return constants.TablePurchaseHistory
}
