package usecases

import (
	"context"
	"fmt"

	"mentora/internal/domain/recurring"
	"mentora/internal/shared/logger"
)

// ListSubscriptionsUseCase lists an advisor's recurring credit subscriptions
type ListSubscriptionsUseCase struct {
	subscriptionRepo recurring.Repository
	logger           logger.Interface
}

// NewListSubscriptionsUseCase creates a new ListSubscriptionsUseCase
func NewListSubscriptionsUseCase(subscriptionRepo recurring.Repository, logger logger.Interface) *ListSubscriptionsUseCase {
	return &ListSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *ListSubscriptionsUseCase) Execute(ctx context.Context, advisorID uint) ([]*recurring.CreditSubscription, error) {
	subs, err := uc.subscriptionRepo.ListByAdvisor(ctx, advisorID)
	if err != nil {
		uc.logger.Errorw("failed to list subscriptions", "advisor_id", advisorID, "error", err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}
