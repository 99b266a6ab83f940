package pricing

import (
	"fmt"
	"time"
)

// CreditPrice is the per-credit price for a jurisdiction
type CreditPrice struct {
	Amount   int64 // minor currency units
	Currency string
}

// CreditPlan is a named monthly bundle of credits at a fixed price,
// offered per jurisdiction.
type CreditPlan struct {
	id              uint
	code            string
	name            string
	country         string
	creditsPerMonth int
	pricePerMonth   int64
	currency        string
	active          bool
	createdAt       time.Time
	updatedAt       time.Time
}

// NewCreditPlan creates an active plan
func NewCreditPlan(code, name, country string, creditsPerMonth int, pricePerMonth int64, currency string) (*CreditPlan, error) {
	if code == "" {
		return nil, fmt.Errorf("plan code is required")
	}
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if country == "" {
		return nil, fmt.Errorf("country is required")
	}
	if creditsPerMonth <= 0 {
		return nil, fmt.Errorf("credits per month must be positive")
	}
	if pricePerMonth < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}

	now := time.Now()
	return &CreditPlan{
		code:            code,
		name:            name,
		country:         country,
		creditsPerMonth: creditsPerMonth,
		pricePerMonth:   pricePerMonth,
		currency:        currency,
		active:          true,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructCreditPlan reconstructs a plan from persistence
func ReconstructCreditPlan(
	id uint,
	code, name, country string,
	creditsPerMonth int,
	pricePerMonth int64,
	currency string,
	active bool,
	createdAt, updatedAt time.Time,
) (*CreditPlan, error) {
	if id == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	if code == "" {
		return nil, fmt.Errorf("plan code is required")
	}

	return &CreditPlan{
		id:              id,
		code:            code,
		name:            name,
		country:         country,
		creditsPerMonth: creditsPerMonth,
		pricePerMonth:   pricePerMonth,
		currency:        currency,
		active:          active,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

// ID returns the plan ID
func (p *CreditPlan) ID() uint {
	return p.id
}

// Code returns the stable plan code
func (p *CreditPlan) Code() string {
	return p.code
}

// Name returns the display name
func (p *CreditPlan) Name() string {
	return p.name
}

// Country returns the jurisdiction the plan is offered in
func (p *CreditPlan) Country() string {
	return p.country
}

// CreditsPerMonth returns the monthly credit bundle size
func (p *CreditPlan) CreditsPerMonth() int {
	return p.creditsPerMonth
}

// PricePerMonth returns the monthly price in minor currency units
func (p *CreditPlan) PricePerMonth() int64 {
	return p.pricePerMonth
}

// Currency returns the plan currency
func (p *CreditPlan) Currency() string {
	return p.currency
}

// IsActive reports whether the plan may be subscribed to
func (p *CreditPlan) IsActive() bool {
	return p.active
}

// CreatedAt returns when the plan was created
func (p *CreditPlan) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt returns when the plan was last updated
func (p *CreditPlan) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetID sets the plan ID (only for persistence layer use)
func (p *CreditPlan) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("plan ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("plan ID cannot be zero")
	}
	p.id = id
	return nil
}

// Deactivate withdraws the plan from sale
func (p *CreditPlan) Deactivate() {
	if !p.active {
		return
	}
	p.active = false
	p.updatedAt = time.Now()
}
