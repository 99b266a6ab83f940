package recurring

import "context"

// Repository defines persistence operations for recurring credit subscriptions
type Repository interface {
	// Create inserts a subscription row; fails with
	// ErrDuplicateSubscriptionRef when the gateway ref already exists
	Create(ctx context.Context, s *CreditSubscription) error

	// Update conditionally writes the subscription; fails with
	// ErrVersionConflict when the stored version no longer matches
	Update(ctx context.Context, s *CreditSubscription) error

	// GetByID retrieves a subscription by ID
	GetByID(ctx context.Context, id uint) (*CreditSubscription, error)

	// GetByGatewayRef returns the subscription for a gateway reference, or
	// (nil, nil) when none exists
	GetByGatewayRef(ctx context.Context, gateway, ref string) (*CreditSubscription, error)

	// ListByAdvisor returns all subscriptions for an advisor, newest first
	ListByAdvisor(ctx context.Context, advisorID uint) ([]*CreditSubscription, error)
}
