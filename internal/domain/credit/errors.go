package credit

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound is returned when a credit account row does not exist.
	// Most callers treat absence as a zero balance instead of an error.
	ErrAccountNotFound = errors.New("credit account not found")

	// ErrInsufficientCredits is returned when a reservation exceeds the
	// available balance. Recoverable by purchasing more credits.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrContention is returned when the optimistic read-compute-write cycle
	// exhausted its retry budget. Distinct from ErrInsufficientCredits so the
	// caller can retry at a higher level.
	ErrContention = errors.New("credit account contention: retries exhausted")

	// ErrDoubleRelease is returned when a release would drive the used
	// counter below zero, i.e. a compensation ran more than once.
	ErrDoubleRelease = errors.New("release would over-credit account")

	// ErrVersionConflict is returned by the repository when a conditional
	// write found a stale version. The ledger retries on this.
	ErrVersionConflict = errors.New("credit account version conflict")

	// ErrDuplicateTransaction is returned when a purchase history entry with
	// the same gateway transaction ID already exists.
	ErrDuplicateTransaction = errors.New("duplicate gateway transaction")

	// ErrPurchaseEntryNotFound is returned when a purchase history entry is not found
	ErrPurchaseEntryNotFound = errors.New("purchase history entry not found")
)

// InsufficientCreditsError carries the balance context of a refused
// reservation so the caller can render a purchase prompt. It matches
// ErrInsufficientCredits under errors.Is.
type InsufficientCreditsError struct {
	Available int
	Required  int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: %d available, %d required", e.Available, e.Required)
}

func (e *InsufficientCreditsError) Unwrap() error {
	return ErrInsufficientCredits
}
