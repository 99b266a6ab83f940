package credit

import (
	"fmt"
	"time"
)

// PurchaseStatus is the lifecycle status of a purchase history entry.
// Entries are append-only; the only permitted mutation is the status
// transition pending -> completed/failed, plus completed -> refunded.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
	PurchaseStatusRefunded  PurchaseStatus = "refunded"
)

func (s PurchaseStatus) String() string {
	return string(s)
}

func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusCompleted, PurchaseStatusFailed, PurchaseStatusRefunded:
		return true
	}
	return false
}

func (s PurchaseStatus) CanTransitionTo(target PurchaseStatus) bool {
	transitions := map[PurchaseStatus][]PurchaseStatus{
		PurchaseStatusPending:   {PurchaseStatusCompleted, PurchaseStatusFailed},
		PurchaseStatusCompleted: {PurchaseStatusRefunded},
		PurchaseStatusFailed:    {},
		PurchaseStatusRefunded:  {},
	}

	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// PurchaseHistoryEntry is one immutable audit row per credit-granting event,
// one-time purchase or recurring billing cycle alike. The gateway transaction
// ID doubles as the idempotency key for webhook redelivery.
type PurchaseHistoryEntry struct {
	id            uint
	advisorID     uint
	credits       int
	amount        int64 // minor currency units
	currency      string
	gateway       string
	transactionID string
	status        PurchaseStatus
	metadata      map[string]any
	createdAt     time.Time
	updatedAt     time.Time
}

// NewPurchaseHistoryEntry creates a pending audit entry
func NewPurchaseHistoryEntry(
	advisorID uint,
	credits int,
	amount int64,
	currency, gateway, transactionID string,
) (*PurchaseHistoryEntry, error) {
	if advisorID == 0 {
		return nil, fmt.Errorf("advisor ID is required")
	}
	if credits <= 0 {
		return nil, fmt.Errorf("credits must be positive, got %d", credits)
	}
	if amount < 0 {
		return nil, fmt.Errorf("amount cannot be negative")
	}
	if gateway == "" {
		return nil, fmt.Errorf("gateway is required")
	}
	if transactionID == "" {
		return nil, fmt.Errorf("transaction ID is required")
	}

	now := time.Now()
	return &PurchaseHistoryEntry{
		advisorID:     advisorID,
		credits:       credits,
		amount:        amount,
		currency:      currency,
		gateway:       gateway,
		transactionID: transactionID,
		status:        PurchaseStatusPending,
		metadata:      make(map[string]any),
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructPurchaseHistoryEntry reconstructs an entry from persistence
func ReconstructPurchaseHistoryEntry(
	id, advisorID uint,
	credits int,
	amount int64,
	currency, gateway, transactionID string,
	status PurchaseStatus,
	metadata map[string]any,
	createdAt, updatedAt time.Time,
) (*PurchaseHistoryEntry, error) {
	if id == 0 {
		return nil, fmt.Errorf("purchase entry ID cannot be zero")
	}
	if advisorID == 0 {
		return nil, fmt.Errorf("advisor ID is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid purchase status: %s", status)
	}

	if metadata == nil {
		metadata = make(map[string]any)
	}

	return &PurchaseHistoryEntry{
		id:            id,
		advisorID:     advisorID,
		credits:       credits,
		amount:        amount,
		currency:      currency,
		gateway:       gateway,
		transactionID: transactionID,
		status:        status,
		metadata:      metadata,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}, nil
}

// ID returns the entry ID
func (p *PurchaseHistoryEntry) ID() uint {
	return p.id
}

// AdvisorID returns the advisor ID
func (p *PurchaseHistoryEntry) AdvisorID() uint {
	return p.advisorID
}

// Credits returns the number of credits granted by this event
func (p *PurchaseHistoryEntry) Credits() int {
	return p.credits
}

// Amount returns the paid amount in minor currency units
func (p *PurchaseHistoryEntry) Amount() int64 {
	return p.amount
}

// Currency returns the payment currency
func (p *PurchaseHistoryEntry) Currency() string {
	return p.currency
}

// Gateway returns the payment gateway name
func (p *PurchaseHistoryEntry) Gateway() string {
	return p.gateway
}

// TransactionID returns the gateway transaction ID
func (p *PurchaseHistoryEntry) TransactionID() string {
	return p.transactionID
}

// Status returns the entry status
func (p *PurchaseHistoryEntry) Status() PurchaseStatus {
	return p.status
}

// Metadata returns the free-form entry metadata
func (p *PurchaseHistoryEntry) Metadata() map[string]any {
	return p.metadata
}

// CreatedAt returns when the entry was written
func (p *PurchaseHistoryEntry) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt returns when the entry status last changed
func (p *PurchaseHistoryEntry) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetID sets the entry ID (only for persistence layer use)
func (p *PurchaseHistoryEntry) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("purchase entry ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("purchase entry ID cannot be zero")
	}
	p.id = id
	return nil
}

// SetMetadata sets a metadata value
func (p *PurchaseHistoryEntry) SetMetadata(key string, value any) {
	if p.metadata == nil {
		p.metadata = make(map[string]any)
	}
	p.metadata[key] = value
	p.updatedAt = time.Now()
}

// MarkCompleted transitions the entry to completed
func (p *PurchaseHistoryEntry) MarkCompleted() error {
	return p.transition(PurchaseStatusCompleted)
}

// MarkFailed transitions the entry to failed
func (p *PurchaseHistoryEntry) MarkFailed() error {
	return p.transition(PurchaseStatusFailed)
}

// MarkRefunded transitions the entry to refunded
func (p *PurchaseHistoryEntry) MarkRefunded() error {
	return p.transition(PurchaseStatusRefunded)
}

func (p *PurchaseHistoryEntry) transition(target PurchaseStatus) error {
	if p.status == target {
		return nil
	}
	if !p.status.CanTransitionTo(target) {
		return fmt.Errorf("invalid purchase status transition from %s to %s", p.status, target)
	}
	p.status = target
	p.updatedAt = time.Now()
	return nil
}
