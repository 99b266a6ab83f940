package recurring

import "errors"

var (
	// ErrSubscriptionNotFound is returned when no subscription matches
	ErrSubscriptionNotFound = errors.New("recurring subscription not found")

	// ErrDuplicateSubscriptionRef is returned when an insert collides with
	// the unique gateway subscription reference. Callers re-fetch the row
	// that won the race and treat the create as already done.
	ErrDuplicateSubscriptionRef = errors.New("subscription with gateway ref already exists")

	// ErrVersionConflict is returned by the repository when a conditional
	// write found a stale version
	ErrVersionConflict = errors.New("subscription version conflict")
)
