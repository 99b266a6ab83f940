package recurring

import (
	"fmt"
	"time"
)

// CreditSubscription represents an advisor-level recurring credit
// subscription: a monthly bundle of credits billed through a payment gateway.
// It is distinct from per-startup assignments; an advisor may hold several
// concurrent subscriptions. Each successful billing cycle advances the period
// and feeds a credit grant into the ledger.
type CreditSubscription struct {
	id                     uint
	advisorID              uint
	planID                 uint
	creditsPerMonth        int
	pricePerMonth          int64 // minor currency units
	currency               string
	gateway                string
	gatewaySubscriptionRef string
	status                 Status
	currentPeriodStart     time.Time
	currentPeriodEnd       time.Time
	nextBillingDate        time.Time
	billingCycleCount      int
	totalPaid              int64
	cancelledAt            *time.Time
	version                int
	createdAt              time.Time
	updatedAt              time.Time
}

// NewCreditSubscription creates a subscription with its first billing period
func NewCreditSubscription(
	advisorID, planID uint,
	creditsPerMonth int,
	pricePerMonth int64,
	currency, gateway, gatewaySubscriptionRef string,
	periodStart, periodEnd time.Time,
) (*CreditSubscription, error) {
	if advisorID == 0 {
		return nil, fmt.Errorf("advisor ID is required")
	}
	if planID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if creditsPerMonth <= 0 {
		return nil, fmt.Errorf("credits per month must be positive")
	}
	if gateway == "" {
		return nil, fmt.Errorf("gateway is required")
	}
	if gatewaySubscriptionRef == "" {
		return nil, fmt.Errorf("gateway subscription ref is required")
	}
	if !periodEnd.After(periodStart) {
		return nil, fmt.Errorf("period end must be after period start")
	}

	now := time.Now()
	return &CreditSubscription{
		advisorID:              advisorID,
		planID:                 planID,
		creditsPerMonth:        creditsPerMonth,
		pricePerMonth:          pricePerMonth,
		currency:               currency,
		gateway:                gateway,
		gatewaySubscriptionRef: gatewaySubscriptionRef,
		status:                 StatusActive,
		currentPeriodStart:     periodStart,
		currentPeriodEnd:       periodEnd,
		nextBillingDate:        periodEnd,
		version:                1,
		createdAt:              now,
		updatedAt:              now,
	}, nil
}

// ReconstructCreditSubscription reconstructs a subscription from persistence
func ReconstructCreditSubscription(
	id, advisorID, planID uint,
	creditsPerMonth int,
	pricePerMonth int64,
	currency, gateway, gatewaySubscriptionRef string,
	status Status,
	currentPeriodStart, currentPeriodEnd, nextBillingDate time.Time,
	billingCycleCount int,
	totalPaid int64,
	cancelledAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) (*CreditSubscription, error) {
	if id == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if advisorID == 0 {
		return nil, fmt.Errorf("advisor ID is required")
	}
	if planID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if !ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}

	return &CreditSubscription{
		id:                     id,
		advisorID:              advisorID,
		planID:                 planID,
		creditsPerMonth:        creditsPerMonth,
		pricePerMonth:          pricePerMonth,
		currency:               currency,
		gateway:                gateway,
		gatewaySubscriptionRef: gatewaySubscriptionRef,
		status:                 status,
		currentPeriodStart:     currentPeriodStart,
		currentPeriodEnd:       currentPeriodEnd,
		nextBillingDate:        nextBillingDate,
		billingCycleCount:      billingCycleCount,
		totalPaid:              totalPaid,
		cancelledAt:            cancelledAt,
		version:                version,
		createdAt:              createdAt,
		updatedAt:              updatedAt,
	}, nil
}

// ID returns the subscription ID
func (s *CreditSubscription) ID() uint {
	return s.id
}

// AdvisorID returns the owning advisor ID
func (s *CreditSubscription) AdvisorID() uint {
	return s.advisorID
}

// PlanID returns the credit plan ID
func (s *CreditSubscription) PlanID() uint {
	return s.planID
}

// CreditsPerMonth returns the credits granted per billing cycle
func (s *CreditSubscription) CreditsPerMonth() int {
	return s.creditsPerMonth
}

// PricePerMonth returns the monthly price in minor currency units
func (s *CreditSubscription) PricePerMonth() int64 {
	return s.pricePerMonth
}

// Currency returns the billing currency
func (s *CreditSubscription) Currency() string {
	return s.currency
}

// Gateway returns the payment gateway name
func (s *CreditSubscription) Gateway() string {
	return s.gateway
}

// GatewaySubscriptionRef returns the gateway's subscription reference
func (s *CreditSubscription) GatewaySubscriptionRef() string {
	return s.gatewaySubscriptionRef
}

// Status returns the subscription status
func (s *CreditSubscription) Status() Status {
	return s.status
}

// CurrentPeriodStart returns the current billing period start
func (s *CreditSubscription) CurrentPeriodStart() time.Time {
	return s.currentPeriodStart
}

// CurrentPeriodEnd returns the current billing period end
func (s *CreditSubscription) CurrentPeriodEnd() time.Time {
	return s.currentPeriodEnd
}

// NextBillingDate returns when the next billing cycle is expected
func (s *CreditSubscription) NextBillingDate() time.Time {
	return s.nextBillingDate
}

// BillingCycleCount returns the number of applied billing cycles
func (s *CreditSubscription) BillingCycleCount() int {
	return s.billingCycleCount
}

// TotalPaid returns the accumulated paid amount in minor currency units
func (s *CreditSubscription) TotalPaid() int64 {
	return s.totalPaid
}

// CancelledAt returns when the subscription was cancelled
func (s *CreditSubscription) CancelledAt() *time.Time {
	return s.cancelledAt
}

// Version returns the aggregate version for optimistic locking
func (s *CreditSubscription) Version() int {
	return s.version
}

// CreatedAt returns when the subscription was created
func (s *CreditSubscription) CreatedAt() time.Time {
	return s.createdAt
}

// UpdatedAt returns when the subscription was last updated
func (s *CreditSubscription) UpdatedAt() time.Time {
	return s.updatedAt
}

// SetID sets the subscription ID (only for persistence layer use)
func (s *CreditSubscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// ApplyBillingCycle advances the billing period by one month from the current
// period end, never from "now", so periods stay contiguous under late webhook
// delivery. The cycle counter and paid total move with it.
func (s *CreditSubscription) ApplyBillingCycle(amountPaid int64) error {
	if !s.status.CanBill() {
		return fmt.Errorf("cannot apply billing cycle to subscription with status %s", s.status)
	}
	if amountPaid < 0 {
		return fmt.Errorf("amount paid cannot be negative")
	}

	s.currentPeriodStart = s.currentPeriodEnd
	s.currentPeriodEnd = s.currentPeriodEnd.AddDate(0, 1, 0)
	s.nextBillingDate = s.currentPeriodEnd
	s.billingCycleCount++
	s.totalPaid += amountPaid
	s.updatedAt = time.Now()
	s.version++

	// A paid cycle on a paused subscription reactivates it.
	if s.status == StatusPaused {
		s.status = StatusActive
	}

	return nil
}

// Cancel stops future billing. Cancellation is a status transition, not a
// delete; history and the current period stay intact.
func (s *CreditSubscription) Cancel() error {
	if s.status == StatusCancelled {
		return nil
	}
	if !s.status.CanTransitionTo(StatusCancelled) {
		return fmt.Errorf("cannot cancel subscription with status %s", s.status)
	}

	now := time.Now()
	s.status = StatusCancelled
	s.cancelledAt = &now
	s.updatedAt = now
	s.version++

	return nil
}

// Pause suspends billing without cancelling
func (s *CreditSubscription) Pause() error {
	if s.status == StatusPaused {
		return nil
	}
	if !s.status.CanTransitionTo(StatusPaused) {
		return fmt.Errorf("cannot pause subscription with status %s", s.status)
	}

	s.status = StatusPaused
	s.updatedAt = time.Now()
	s.version++

	return nil
}

// MarkExpired marks a subscription the gateway reported as ended
func (s *CreditSubscription) MarkExpired() error {
	if s.status == StatusExpired {
		return nil
	}
	if !s.status.CanTransitionTo(StatusExpired) {
		return fmt.Errorf("cannot expire subscription with status %s", s.status)
	}

	s.status = StatusExpired
	s.updatedAt = time.Now()
	s.version++

	return nil
}

// Validate performs domain-level validation
func (s *CreditSubscription) Validate() error {
	if s.advisorID == 0 {
		return fmt.Errorf("advisor ID is required")
	}
	if s.planID == 0 {
		return fmt.Errorf("plan ID is required")
	}
	if !ValidStatuses[s.status] {
		return fmt.Errorf("invalid status: %s", s.status)
	}
	if !s.currentPeriodEnd.After(s.currentPeriodStart) {
		return fmt.Errorf("current period end must be after current period start")
	}
	if s.billingCycleCount < 0 {
		return fmt.Errorf("billing cycle count cannot be negative")
	}
	return nil
}
