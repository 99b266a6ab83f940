package assignment

import "errors"

var (
	// ErrAssignmentNotFound is returned when no assignment row matches
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrAlreadyEntitled is the domain refusal for spending a credit on a
	// startup that already holds a valid entitlement from any source.
	ErrAlreadyEntitled = errors.New("startup already holds a valid entitlement")

	// ErrDuplicateActiveAssignment is returned when an insert collides with
	// the one-active-row-per-pair uniqueness constraint. Callers treat it as
	// "someone got there first" and re-read instead of failing.
	ErrDuplicateActiveAssignment = errors.New("active assignment already exists for pair")

	// ErrVersionConflict is returned by the repository when a conditional
	// write found a stale version
	ErrVersionConflict = errors.New("assignment version conflict")
)
