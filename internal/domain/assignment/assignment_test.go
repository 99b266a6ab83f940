package assignment

import (
	"testing"
	"time"
)

func newActiveAssignment(t *testing.T) *CreditAssignment {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a, err := NewCreditAssignment(1, 2, start, start.AddDate(0, 1, 0), true)
	if err != nil {
		t.Fatalf("NewCreditAssignment() error = %v", err)
	}
	return a
}

func TestNewCreditAssignment(t *testing.T) {
	a := newActiveAssignment(t)

	if a.Status() != StatusActive {
		t.Errorf("Status() = %s, want %s", a.Status(), StatusActive)
	}
	if !a.AutoRenewEnabled() {
		t.Error("AutoRenewEnabled() = false, want true")
	}
	if a.Version() != 1 {
		t.Errorf("Version() = %d, want 1", a.Version())
	}
}

func TestNewCreditAssignment_Invalid(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		advisorID uint
		startupID uint
		start     time.Time
		end       time.Time
	}{
		{"zero advisor", 0, 2, start, start.AddDate(0, 1, 0)},
		{"zero startup", 1, 0, start, start.AddDate(0, 1, 0)},
		{"end before start", 1, 2, start, start.AddDate(0, -1, 0)},
		{"end equals start", 1, 2, start, start},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCreditAssignment(tt.advisorID, tt.startupID, tt.start, tt.end, false)
			if err == nil {
				t.Error("NewCreditAssignment() error = nil, want error")
			}
		})
	}
}

func TestCreditAssignment_IsCurrent(t *testing.T) {
	a := newActiveAssignment(t)

	inside := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	atEnd := a.EndDate()
	after := a.EndDate().Add(time.Hour)

	if !a.IsCurrent(inside) {
		t.Error("IsCurrent(inside window) = false, want true")
	}
	if a.IsCurrent(atEnd) {
		t.Error("IsCurrent(at end date) = true, want false")
	}
	if a.IsCurrent(after) {
		t.Error("IsCurrent(after end date) = true, want false")
	}

	_ = a.Expire(after)
	if a.IsCurrent(inside) {
		t.Error("IsCurrent() on expired assignment = true, want false")
	}
}

func TestCreditAssignment_Expire(t *testing.T) {
	a := newActiveAssignment(t)
	at := a.EndDate()

	if err := a.Expire(at); err != nil {
		t.Fatalf("Expire() error = %v, want nil", err)
	}
	if a.Status() != StatusExpired {
		t.Errorf("Status() = %s, want %s", a.Status(), StatusExpired)
	}
	if a.AutoRenewEnabled() {
		t.Error("AutoRenewEnabled() after expire = true, want false")
	}
	if a.ExpiredAt() == nil || !a.ExpiredAt().Equal(at) {
		t.Errorf("ExpiredAt() = %v, want %v", a.ExpiredAt(), at)
	}

	// Expiring twice is a no-op, not an error.
	version := a.Version()
	if err := a.Expire(at.Add(time.Hour)); err != nil {
		t.Errorf("second Expire() error = %v, want nil", err)
	}
	if a.Version() != version {
		t.Errorf("second Expire() bumped version from %d to %d", version, a.Version())
	}
}

func TestCreditAssignment_Cancel(t *testing.T) {
	a := newActiveAssignment(t)

	if err := a.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v, want nil", err)
	}
	if a.Status() != StatusCancelled {
		t.Errorf("Status() = %s, want %s", a.Status(), StatusCancelled)
	}
	if a.AutoRenewEnabled() {
		t.Error("AutoRenewEnabled() after cancel = true, want false")
	}
}

func TestCreditAssignment_Reactivate(t *testing.T) {
	a := newActiveAssignment(t)
	_ = a.LinkEntitlement(99)
	_ = a.Expire(a.EndDate())

	newStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	newEnd := newStart.AddDate(0, 1, 0)

	if err := a.Reactivate(newStart, newEnd, false); err != nil {
		t.Fatalf("Reactivate() error = %v, want nil", err)
	}
	if a.Status() != StatusActive {
		t.Errorf("Status() = %s, want %s", a.Status(), StatusActive)
	}
	if !a.StartDate().Equal(newStart) || !a.EndDate().Equal(newEnd) {
		t.Errorf("window = [%v, %v), want [%v, %v)", a.StartDate(), a.EndDate(), newStart, newEnd)
	}
	if a.EntitlementID() != nil {
		t.Error("EntitlementID() after reactivation != nil, want nil")
	}
	if a.ExpiredAt() != nil {
		t.Error("ExpiredAt() after reactivation != nil, want nil")
	}
	if a.AutoRenewEnabled() {
		t.Error("AutoRenewEnabled() = true, want false")
	}
}

func TestCreditAssignment_Reactivate_ActiveRow(t *testing.T) {
	a := newActiveAssignment(t)

	err := a.Reactivate(a.StartDate(), a.EndDate().AddDate(0, 1, 0), false)
	if err == nil {
		t.Error("Reactivate() on active assignment error = nil, want error")
	}
}

func TestCreditAssignment_SetAutoRenewal(t *testing.T) {
	a := newActiveAssignment(t)
	version := a.Version()

	// Same value must not bump the version.
	a.SetAutoRenewal(true)
	if a.Version() != version {
		t.Errorf("SetAutoRenewal(same) bumped version from %d to %d", version, a.Version())
	}

	a.SetAutoRenewal(false)
	if a.AutoRenewEnabled() {
		t.Error("AutoRenewEnabled() = true, want false")
	}
	if a.Version() != version+1 {
		t.Errorf("Version() = %d, want %d", a.Version(), version+1)
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		to       Status
		expected bool
	}{
		{"active to expired", StatusActive, StatusExpired, true},
		{"active to cancelled", StatusActive, StatusCancelled, true},
		{"expired to active", StatusExpired, StatusActive, true},
		{"cancelled to active", StatusCancelled, StatusActive, true},
		{"expired to cancelled", StatusExpired, StatusCancelled, false},
		{"cancelled to expired", StatusCancelled, StatusExpired, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("%s.CanTransitionTo(%s) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}
