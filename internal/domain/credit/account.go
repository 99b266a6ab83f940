package credit

import (
	"fmt"
	"time"
)

// CreditAccount represents the advisor credit ledger aggregate root.
// It is the single authority for balance mutation: every grant, reservation
// and release goes through this aggregate, and the conservation invariant
// available + used == purchased holds whenever no operation is mid-flight.
type CreditAccount struct {
	id                   uint
	advisorID            uint
	creditsAvailable     int
	creditsUsed          int
	creditsPurchased     int
	lastPurchaseAmount   int64 // minor currency units
	lastPurchaseCurrency string
	lastPurchaseAt       *time.Time
	version              int
	createdAt            time.Time
	updatedAt            time.Time
}

// NewCreditAccount creates an empty ledger row for an advisor.
// Accounts are created lazily on the first successful credit grant.
func NewCreditAccount(advisorID uint) (*CreditAccount, error) {
	if advisorID == 0 {
		return nil, fmt.Errorf("advisor ID is required")
	}

	now := time.Now()
	return &CreditAccount{
		advisorID: advisorID,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructCreditAccount reconstructs a credit account from persistence
func ReconstructCreditAccount(
	id, advisorID uint,
	creditsAvailable, creditsUsed, creditsPurchased int,
	lastPurchaseAmount int64,
	lastPurchaseCurrency string,
	lastPurchaseAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) (*CreditAccount, error) {
	if id == 0 {
		return nil, fmt.Errorf("credit account ID cannot be zero")
	}
	if advisorID == 0 {
		return nil, fmt.Errorf("advisor ID is required")
	}
	if creditsAvailable < 0 || creditsUsed < 0 || creditsPurchased < 0 {
		return nil, fmt.Errorf("credit counters cannot be negative")
	}

	return &CreditAccount{
		id:                   id,
		advisorID:            advisorID,
		creditsAvailable:     creditsAvailable,
		creditsUsed:          creditsUsed,
		creditsPurchased:     creditsPurchased,
		lastPurchaseAmount:   lastPurchaseAmount,
		lastPurchaseCurrency: lastPurchaseCurrency,
		lastPurchaseAt:       lastPurchaseAt,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}, nil
}

// ID returns the account ID
func (a *CreditAccount) ID() uint {
	return a.id
}

// AdvisorID returns the owning advisor ID
func (a *CreditAccount) AdvisorID() uint {
	return a.advisorID
}

// CreditsAvailable returns the spendable credit count
func (a *CreditAccount) CreditsAvailable() int {
	return a.creditsAvailable
}

// CreditsUsed returns the consumed credit count
func (a *CreditAccount) CreditsUsed() int {
	return a.creditsUsed
}

// CreditsPurchased returns the cumulative purchased counter
func (a *CreditAccount) CreditsPurchased() int {
	return a.creditsPurchased
}

// LastPurchaseAmount returns the amount of the most recent purchase in minor units
func (a *CreditAccount) LastPurchaseAmount() int64 {
	return a.lastPurchaseAmount
}

// LastPurchaseCurrency returns the currency of the most recent purchase
func (a *CreditAccount) LastPurchaseCurrency() string {
	return a.lastPurchaseCurrency
}

// LastPurchaseAt returns when the most recent purchase happened
func (a *CreditAccount) LastPurchaseAt() *time.Time {
	return a.lastPurchaseAt
}

// Version returns the aggregate version for optimistic locking
func (a *CreditAccount) Version() int {
	return a.version
}

// CreatedAt returns when the account was created
func (a *CreditAccount) CreatedAt() time.Time {
	return a.createdAt
}

// UpdatedAt returns when the account was last updated
func (a *CreditAccount) UpdatedAt() time.Time {
	return a.updatedAt
}

// SetID sets the account ID (only for persistence layer use)
func (a *CreditAccount) SetID(id uint) error {
	if a.id != 0 {
		return fmt.Errorf("credit account ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("credit account ID cannot be zero")
	}
	a.id = id
	return nil
}

// Grant adds purchased credits to the ledger. The purchased counter is
// monotonic; it moves together with the available counter so conservation
// holds without touching the used counter.
func (a *CreditAccount) Grant(credits int, amount int64, currency string, at time.Time) error {
	if credits <= 0 {
		return fmt.Errorf("credit grant must be positive, got %d", credits)
	}

	a.creditsAvailable += credits
	a.creditsPurchased += credits
	a.lastPurchaseAmount = amount
	a.lastPurchaseCurrency = currency
	a.lastPurchaseAt = &at
	a.updatedAt = time.Now()
	a.version++

	return nil
}

// Reserve consumes credits for an assignment: available decreases, used
// increases, purchased is untouched.
func (a *CreditAccount) Reserve(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("reserve amount must be positive, got %d", amount)
	}
	if a.creditsAvailable < amount {
		return &InsufficientCreditsError{Available: a.creditsAvailable, Required: amount}
	}

	a.creditsAvailable -= amount
	a.creditsUsed += amount
	a.updatedAt = time.Now()
	a.version++

	return nil
}

// Release is the compensating inverse of Reserve, used only for rollback.
// It refuses to drive the used counter below zero so that a double release
// cannot over-credit the account.
func (a *CreditAccount) Release(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("release amount must be positive, got %d", amount)
	}
	if a.creditsUsed < amount {
		return ErrDoubleRelease
	}

	a.creditsAvailable += amount
	a.creditsUsed -= amount
	a.updatedAt = time.Now()
	a.version++

	return nil
}

// Validate performs domain-level validation including ledger conservation
func (a *CreditAccount) Validate() error {
	if a.advisorID == 0 {
		return fmt.Errorf("advisor ID is required")
	}
	if a.creditsAvailable < 0 {
		return fmt.Errorf("credits available cannot be negative")
	}
	if a.creditsUsed < 0 {
		return fmt.Errorf("credits used cannot be negative")
	}
	if a.creditsAvailable+a.creditsUsed != a.creditsPurchased {
		return fmt.Errorf("ledger conservation violated: available %d + used %d != purchased %d",
			a.creditsAvailable, a.creditsUsed, a.creditsPurchased)
	}
	return nil
}
