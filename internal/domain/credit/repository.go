package credit

import "context"

// AccountRepository defines persistence operations for credit accounts.
// Update is a compare-and-swap: it writes conditionally on the version the
// aggregate was loaded with and returns ErrVersionConflict when a concurrent
// writer got there first. Callers retry the read-modify-write cycle.
type AccountRepository interface {
	// Create inserts a new account row
	Create(ctx context.Context, account *CreditAccount) error

	// Update conditionally writes the account; fails with ErrVersionConflict
	// when the stored version no longer matches
	Update(ctx context.Context, account *CreditAccount) error

	// GetByAdvisorID returns the account for an advisor, or (nil, nil) when
	// no row exists yet. Absence is an expected state, not an error.
	GetByAdvisorID(ctx context.Context, advisorID uint) (*CreditAccount, error)
}

// PurchaseHistoryRepository defines persistence for the purchase audit log
type PurchaseHistoryRepository interface {
	// Create appends an entry; fails with ErrDuplicateTransaction when an
	// entry with the same gateway transaction ID already exists
	Create(ctx context.Context, entry *PurchaseHistoryEntry) error

	// UpdateStatus persists a status transition on an existing entry
	UpdateStatus(ctx context.Context, entry *PurchaseHistoryEntry) error

	// Delete removes an entry. Only the compensation path uses this, to undo
	// a pending barrier write when the charge was not applied at all.
	Delete(ctx context.Context, id uint) error

	// GetByTransactionID returns the entry for a gateway transaction ID, or
	// (nil, nil) when none exists
	GetByTransactionID(ctx context.Context, gateway, transactionID string) (*PurchaseHistoryEntry, error)

	// ListByAdvisor returns entries for an advisor, newest first
	ListByAdvisor(ctx context.Context, advisorID uint, limit, offset int) ([]*PurchaseHistoryEntry, error)
}
