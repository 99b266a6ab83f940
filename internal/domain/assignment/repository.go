package assignment

import (
	"context"
	"time"
)

// Repository defines persistence operations for credit assignments.
// The database-level uniqueness constraint on active (advisor, startup) pairs
// is the source of truth for concurrency; Create surfaces a collision as
// ErrDuplicateActiveAssignment rather than a generic failure.
type Repository interface {
	// Create inserts a new assignment row
	Create(ctx context.Context, a *CreditAssignment) error

	// Update conditionally writes the assignment; fails with
	// ErrVersionConflict when the stored version no longer matches
	Update(ctx context.Context, a *CreditAssignment) error

	// Delete removes a row. Used only to compensate a freshly inserted row
	// after a downstream failure.
	Delete(ctx context.Context, id uint) error

	// GetByID retrieves an assignment by ID
	GetByID(ctx context.Context, id uint) (*CreditAssignment, error)

	// GetActiveByPair returns the status=active row for a pair, or (nil, nil)
	// when none exists. The row may already be past its end_date.
	GetActiveByPair(ctx context.Context, advisorID, startupID uint) (*CreditAssignment, error)

	// GetLatestRetiredByPair returns the most recent expired/cancelled row
	// for a pair, or (nil, nil). New grants reactivate this row in place.
	GetLatestRetiredByPair(ctx context.Context, advisorID, startupID uint) (*CreditAssignment, error)

	// ListByAdvisor returns all assignments for an advisor, newest first
	ListByAdvisor(ctx context.Context, advisorID uint) ([]*CreditAssignment, error)

	// FindRenewable returns active rows with auto-renewal enabled whose
	// end_date falls within (-inf, until]. The filter is what makes the
	// renewal sweep naturally idempotent across overlapping runs.
	FindRenewable(ctx context.Context, until time.Time) ([]*CreditAssignment, error)
}
