package recurring

import (
	"testing"
	"time"
)

func newActiveSubscription(t *testing.T) *CreditSubscription {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s, err := NewCreditSubscription(
		1, 7, 10, 90000, "USD", "razorpay", "sub_abc123",
		start, start.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("NewCreditSubscription() error = %v", err)
	}
	return s
}

func TestNewCreditSubscription(t *testing.T) {
	s := newActiveSubscription(t)

	if s.Status() != StatusActive {
		t.Errorf("Status() = %s, want %s", s.Status(), StatusActive)
	}
	if !s.NextBillingDate().Equal(s.CurrentPeriodEnd()) {
		t.Errorf("NextBillingDate() = %v, want period end %v", s.NextBillingDate(), s.CurrentPeriodEnd())
	}
	if s.BillingCycleCount() != 0 {
		t.Errorf("BillingCycleCount() = %d, want 0", s.BillingCycleCount())
	}
}

func TestNewCreditSubscription_Invalid(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	tests := []struct {
		name    string
		mutate  func() (*CreditSubscription, error)
		message string
	}{
		{"zero advisor", func() (*CreditSubscription, error) {
			return NewCreditSubscription(0, 7, 10, 0, "USD", "razorpay", "sub_1", start, end)
		}, "advisor"},
		{"zero plan", func() (*CreditSubscription, error) {
			return NewCreditSubscription(1, 0, 10, 0, "USD", "razorpay", "sub_1", start, end)
		}, "plan"},
		{"zero credits", func() (*CreditSubscription, error) {
			return NewCreditSubscription(1, 7, 0, 0, "USD", "razorpay", "sub_1", start, end)
		}, "credits"},
		{"empty gateway", func() (*CreditSubscription, error) {
			return NewCreditSubscription(1, 7, 10, 0, "USD", "", "sub_1", start, end)
		}, "gateway"},
		{"empty ref", func() (*CreditSubscription, error) {
			return NewCreditSubscription(1, 7, 10, 0, "USD", "razorpay", "", start, end)
		}, "ref"},
		{"inverted period", func() (*CreditSubscription, error) {
			return NewCreditSubscription(1, 7, 10, 0, "USD", "razorpay", "sub_1", end, start)
		}, "period"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.mutate(); err == nil {
				t.Error("NewCreditSubscription() error = nil, want error")
			}
		})
	}
}

func TestCreditSubscription_ApplyBillingCycle(t *testing.T) {
	s := newActiveSubscription(t)
	prevEnd := s.CurrentPeriodEnd()

	if err := s.ApplyBillingCycle(90000); err != nil {
		t.Fatalf("ApplyBillingCycle() error = %v, want nil", err)
	}

	if !s.CurrentPeriodStart().Equal(prevEnd) {
		t.Errorf("CurrentPeriodStart() = %v, want previous end %v", s.CurrentPeriodStart(), prevEnd)
	}
	wantEnd := prevEnd.AddDate(0, 1, 0)
	if !s.CurrentPeriodEnd().Equal(wantEnd) {
		t.Errorf("CurrentPeriodEnd() = %v, want %v", s.CurrentPeriodEnd(), wantEnd)
	}
	if s.BillingCycleCount() != 1 {
		t.Errorf("BillingCycleCount() = %d, want 1", s.BillingCycleCount())
	}
	if s.TotalPaid() != 90000 {
		t.Errorf("TotalPaid() = %d, want 90000", s.TotalPaid())
	}
}

func TestCreditSubscription_ApplyBillingCycle_AnchorsAtPeriodEnd(t *testing.T) {
	// Two late-delivered cycles must still produce contiguous periods.
	s := newActiveSubscription(t)
	firstEnd := s.CurrentPeriodEnd()

	_ = s.ApplyBillingCycle(90000)
	_ = s.ApplyBillingCycle(90000)

	if !s.CurrentPeriodStart().Equal(firstEnd.AddDate(0, 1, 0)) {
		t.Errorf("CurrentPeriodStart() = %v, want %v", s.CurrentPeriodStart(), firstEnd.AddDate(0, 1, 0))
	}
	if !s.CurrentPeriodEnd().Equal(firstEnd.AddDate(0, 2, 0)) {
		t.Errorf("CurrentPeriodEnd() = %v, want %v", s.CurrentPeriodEnd(), firstEnd.AddDate(0, 2, 0))
	}
}

func TestCreditSubscription_ApplyBillingCycle_ReactivatesPaused(t *testing.T) {
	s := newActiveSubscription(t)
	_ = s.Pause()

	if err := s.ApplyBillingCycle(90000); err != nil {
		t.Fatalf("ApplyBillingCycle() on paused error = %v, want nil", err)
	}
	if s.Status() != StatusActive {
		t.Errorf("Status() = %s, want %s", s.Status(), StatusActive)
	}
}

func TestCreditSubscription_ApplyBillingCycle_Cancelled(t *testing.T) {
	s := newActiveSubscription(t)
	_ = s.Cancel()

	if err := s.ApplyBillingCycle(90000); err == nil {
		t.Error("ApplyBillingCycle() on cancelled error = nil, want error")
	}
}

func TestCreditSubscription_Cancel(t *testing.T) {
	s := newActiveSubscription(t)

	if err := s.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v, want nil", err)
	}
	if s.Status() != StatusCancelled {
		t.Errorf("Status() = %s, want %s", s.Status(), StatusCancelled)
	}
	if s.CancelledAt() == nil {
		t.Error("CancelledAt() = nil, want timestamp")
	}

	// Cancelling twice is a no-op.
	version := s.Version()
	if err := s.Cancel(); err != nil {
		t.Errorf("second Cancel() error = %v, want nil", err)
	}
	if s.Version() != version {
		t.Errorf("second Cancel() bumped version from %d to %d", version, s.Version())
	}
}

func TestStatus_CanBill(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusActive, true},
		{StatusPaused, true},
		{StatusCancelled, false},
		{StatusExpired, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.CanBill(); got != tt.expected {
				t.Errorf("%s.CanBill() = %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}
