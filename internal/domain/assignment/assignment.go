package assignment

import (
	"fmt"
	"time"
)

// CreditAssignment represents the link between one advisor and one startup
// for a month-long sponsored entitlement. One logical link exists per
// (advisor, startup) pair; retired rows are reactivated in place rather than
// duplicated so the one-active-row uniqueness constraint is never violated.
type CreditAssignment struct {
	id               uint
	advisorID        uint
	startupID        uint
	startDate        time.Time
	endDate          time.Time
	status           Status
	autoRenewEnabled bool
	entitlementID    *uint
	assignedAt       time.Time
	expiredAt        *time.Time
	version          int
	createdAt        time.Time
	updatedAt        time.Time
}

// NewCreditAssignment creates an active assignment for a fresh validity window
func NewCreditAssignment(advisorID, startupID uint, startDate, endDate time.Time, autoRenew bool) (*CreditAssignment, error) {
	if advisorID == 0 {
		return nil, fmt.Errorf("advisor ID is required")
	}
	if startupID == 0 {
		return nil, fmt.Errorf("startup ID is required")
	}
	if !endDate.After(startDate) {
		return nil, fmt.Errorf("end date must be after start date")
	}

	now := time.Now()
	return &CreditAssignment{
		advisorID:        advisorID,
		startupID:        startupID,
		startDate:        startDate,
		endDate:          endDate,
		status:           StatusActive,
		autoRenewEnabled: autoRenew,
		assignedAt:       now,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructCreditAssignment reconstructs an assignment from persistence
func ReconstructCreditAssignment(
	id, advisorID, startupID uint,
	startDate, endDate time.Time,
	status Status,
	autoRenewEnabled bool,
	entitlementID *uint,
	assignedAt time.Time,
	expiredAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) (*CreditAssignment, error) {
	if id == 0 {
		return nil, fmt.Errorf("assignment ID cannot be zero")
	}
	if advisorID == 0 {
		return nil, fmt.Errorf("advisor ID is required")
	}
	if startupID == 0 {
		return nil, fmt.Errorf("startup ID is required")
	}
	if !ValidStatuses[status] {
		return nil, fmt.Errorf("invalid assignment status: %s", status)
	}

	return &CreditAssignment{
		id:               id,
		advisorID:        advisorID,
		startupID:        startupID,
		startDate:        startDate,
		endDate:          endDate,
		status:           status,
		autoRenewEnabled: autoRenewEnabled,
		entitlementID:    entitlementID,
		assignedAt:       assignedAt,
		expiredAt:        expiredAt,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}, nil
}

// ID returns the assignment ID
func (a *CreditAssignment) ID() uint {
	return a.id
}

// AdvisorID returns the sponsoring advisor ID
func (a *CreditAssignment) AdvisorID() uint {
	return a.advisorID
}

// StartupID returns the sponsored startup ID
func (a *CreditAssignment) StartupID() uint {
	return a.startupID
}

// StartDate returns the validity window start
func (a *CreditAssignment) StartDate() time.Time {
	return a.startDate
}

// EndDate returns the validity window end
func (a *CreditAssignment) EndDate() time.Time {
	return a.endDate
}

// Status returns the assignment status
func (a *CreditAssignment) Status() Status {
	return a.status
}

// AutoRenewEnabled returns whether the sweep may renew this assignment
func (a *CreditAssignment) AutoRenewEnabled() bool {
	return a.autoRenewEnabled
}

// EntitlementID returns the linked entitlement record ID, if persisted
func (a *CreditAssignment) EntitlementID() *uint {
	return a.entitlementID
}

// AssignedAt returns when the current grant was made
func (a *CreditAssignment) AssignedAt() time.Time {
	return a.assignedAt
}

// ExpiredAt returns when the assignment expired, if it did
func (a *CreditAssignment) ExpiredAt() *time.Time {
	return a.expiredAt
}

// Version returns the aggregate version for optimistic locking
func (a *CreditAssignment) Version() int {
	return a.version
}

// CreatedAt returns when the row was first created
func (a *CreditAssignment) CreatedAt() time.Time {
	return a.createdAt
}

// UpdatedAt returns when the row was last updated
func (a *CreditAssignment) UpdatedAt() time.Time {
	return a.updatedAt
}

// SetID sets the assignment ID (only for persistence layer use)
func (a *CreditAssignment) SetID(id uint) error {
	if a.id != 0 {
		return fmt.Errorf("assignment ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("assignment ID cannot be zero")
	}
	a.id = id
	return nil
}

// IsCurrent reports whether the assignment is active with a validity window
// strictly covering the given instant. A status=active row past its end_date
// is not current; it is material for the renewal sweep only.
func (a *CreditAssignment) IsCurrent(at time.Time) bool {
	return a.status == StatusActive && a.endDate.After(at)
}

// LinkEntitlement stores the back-reference to the entitlement record
func (a *CreditAssignment) LinkEntitlement(entitlementID uint) error {
	if entitlementID == 0 {
		return fmt.Errorf("entitlement ID cannot be zero")
	}
	a.entitlementID = &entitlementID
	a.updatedAt = time.Now()
	a.version++
	return nil
}

// SetAutoRenewal updates the auto-renewal flag and reports whether anything
// changed. In this domain "cancelling" means turning this flag off; the
// startup keeps the entitlement through the already-paid period. A same-value
// call leaves the version untouched, so callers must skip the conditional
// write when nothing changed.
func (a *CreditAssignment) SetAutoRenewal(enabled bool) bool {
	if a.autoRenewEnabled == enabled {
		return false
	}
	a.autoRenewEnabled = enabled
	a.updatedAt = time.Now()
	a.version++
	return true
}

// Expire retires the assignment. Auto-renewal is forced off so a re-run of
// the sweep never picks the row up again.
func (a *CreditAssignment) Expire(at time.Time) error {
	if a.status == StatusExpired {
		return nil
	}
	if !a.status.CanTransitionTo(StatusExpired) {
		return fmt.Errorf("cannot expire assignment with status %s", a.status)
	}

	a.status = StatusExpired
	a.expiredAt = &at
	a.autoRenewEnabled = false
	a.updatedAt = time.Now()
	a.version++

	return nil
}

// Cancel terminates the assignment administratively before its end date
func (a *CreditAssignment) Cancel() error {
	if a.status == StatusCancelled {
		return nil
	}
	if !a.status.CanTransitionTo(StatusCancelled) {
		return fmt.Errorf("cannot cancel assignment with status %s", a.status)
	}

	a.status = StatusCancelled
	a.autoRenewEnabled = false
	a.updatedAt = time.Now()
	a.version++

	return nil
}

// Reactivate reuses a retired row for a brand-new grant. The validity window
// and flags are reset together with the status so the row is indistinguishable
// from a freshly inserted one, and the uniqueness constraint on active rows
// stays intact.
func (a *CreditAssignment) Reactivate(startDate, endDate time.Time, autoRenew bool) error {
	if !a.status.IsRetired() {
		return fmt.Errorf("cannot reactivate assignment with status %s", a.status)
	}
	if !endDate.After(startDate) {
		return fmt.Errorf("end date must be after start date")
	}

	a.status = StatusActive
	a.startDate = startDate
	a.endDate = endDate
	a.autoRenewEnabled = autoRenew
	a.entitlementID = nil
	a.expiredAt = nil
	a.assignedAt = time.Now()
	a.updatedAt = time.Now()
	a.version++

	return nil
}

// RevertReactivation restores the state captured in snapshot after a failed
// reactivation. The receiver keeps moving forward in version: the row already
// carries the reactivation write, so the compensating conditional write must
// target that version, not the one the snapshot was taken at.
func (a *CreditAssignment) RevertReactivation(snapshot *CreditAssignment) {
	a.status = snapshot.status
	a.startDate = snapshot.startDate
	a.endDate = snapshot.endDate
	a.autoRenewEnabled = snapshot.autoRenewEnabled
	a.entitlementID = snapshot.entitlementID
	a.assignedAt = snapshot.assignedAt
	a.expiredAt = snapshot.expiredAt
	a.updatedAt = time.Now()
	a.version++
}

// Validate performs domain-level validation
func (a *CreditAssignment) Validate() error {
	if a.advisorID == 0 {
		return fmt.Errorf("advisor ID is required")
	}
	if a.startupID == 0 {
		return fmt.Errorf("startup ID is required")
	}
	if !ValidStatuses[a.status] {
		return fmt.Errorf("invalid status: %s", a.status)
	}
	if !a.endDate.After(a.startDate) {
		return fmt.Errorf("end date must be after start date")
	}
	if a.status == StatusExpired && a.expiredAt == nil {
		return fmt.Errorf("expired assignment must have expired_at set")
	}
	return nil
}
