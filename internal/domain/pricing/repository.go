package pricing

import (
	"context"
	"errors"
)

// ErrPlanNotFound is returned when no plan matches
var ErrPlanNotFound = errors.New("credit plan not found")

// ErrPriceNotFound is returned when no per-credit price is configured for a country
var ErrPriceNotFound = errors.New("credit price not found for country")

// PlanRepository defines read access to the plan catalog.
// The catalog is reference data; this engine never mutates it beyond
// administrative plan management.
type PlanRepository interface {
	// GetByID retrieves a plan by ID
	GetByID(ctx context.Context, id uint) (*CreditPlan, error)

	// GetByCode retrieves a plan by its stable code
	GetByCode(ctx context.Context, code string) (*CreditPlan, error)

	// ListByCountry returns active plans offered in a jurisdiction
	ListByCountry(ctx context.Context, country string) ([]*CreditPlan, error)

	// Create inserts a plan (admin path)
	Create(ctx context.Context, p *CreditPlan) error
}

// Resolver maps a jurisdiction to a per-credit price and to its plan catalog
type Resolver interface {
	// GetCreditPrice returns the one-time per-credit price for a country
	GetCreditPrice(ctx context.Context, country string) (CreditPrice, error)

	// GetSubscriptionPlans returns the monthly plans offered in a country
	GetSubscriptionPlans(ctx context.Context, country string) ([]*CreditPlan, error)
}
