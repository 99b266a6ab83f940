package models

import (
	"time"

	"mentora/internal/shared/constants"
)

// RecurringSubscriptionModel represents the database persistence model for
// recurring credit subscriptions. The unique (gateway, ref) index makes
// redelivered creation webhooks converge on one row.
type RecurringSubscriptionModel struct {
	ID                     uint   `gorm:"primarykey"`
	AdvisorID              uint   `gorm:"not null;index:idx_advisor_subscriptions"`
	PlanID                 uint   `gorm:"not null"`
	CreditsPerMonth        int    `gorm:"not null"`
	PricePerMonth          int64  `gorm:"not null"`
	Currency               string `gorm:"size:3"`
	Gateway                string `gorm:"not null;size:20;uniqueIndex:idx_unique_gateway_ref,priority:1"`
	GatewaySubscriptionRef string `gorm:"not null;size:191;uniqueIndex:idx_unique_gateway_ref,priority:2"`
	Status                 string `gorm:"not null;size:20;default:active"`
	CurrentPeriodStart     time.Time
	CurrentPeriodEnd       time.Time
	NextBillingDate        time.Time
	BillingCycleCount      int   `gorm:"not null;default:0"`
	TotalPaid              int64 `gorm:"not null;default:0"`
	CancelledAt            *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
	Version                int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM
func (RecurringSubscriptionModel) TableName() string {
	return constants.TableRecurringSubscriptions
}
