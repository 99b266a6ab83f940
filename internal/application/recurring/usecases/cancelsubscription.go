package usecases

import (
	"context"
	"fmt"

	"mentora/internal/domain/recurring"
	"mentora/internal/shared/logger"
)

// CancelSubscriptionUseCase stops future billing on a subscription the
// gateway reports as cancelled. Already-granted credits are unaffected;
// cancellation only ends the credit stream.
type CancelSubscriptionUseCase struct {
	subscriptionRepo recurring.Repository
	logger           logger.Interface
}

// NewCancelSubscriptionUseCase creates a new CancelSubscriptionUseCase
func NewCancelSubscriptionUseCase(subscriptionRepo recurring.Repository, logger logger.Interface) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, gateway, gatewayRef string) error {
	sub, err := uc.subscriptionRepo.GetByGatewayRef(ctx, gateway, gatewayRef)
	if err != nil {
		return fmt.Errorf("failed to look up subscription: %w", err)
	}
	if sub == nil {
		return recurring.ErrSubscriptionNotFound
	}

	if sub.Status() == recurring.StatusCancelled {
		return nil
	}

	if err := sub.Cancel(); err != nil {
		return err
	}
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	uc.logger.Infow("recurring credit subscription cancelled",
		"subscription_id", sub.ID(),
		"advisor_id", sub.AdvisorID(),
		"gateway", gateway,
	)
	return nil
}
