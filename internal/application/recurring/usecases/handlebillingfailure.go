package usecases

import (
	"context"
	"errors"
	"fmt"

	"mentora/internal/domain/credit"
	"mentora/internal/domain/recurring"
	"mentora/internal/shared/logger"
)

// HandleBillingFailureCommand describes a failed recurring charge reported by
// the payment gateway.
type HandleBillingFailureCommand struct {
	Gateway                string
	GatewaySubscriptionRef string
	TransactionID          string
	AmountDue              int64
	Currency               string
	Reason                 string
}

// HandleBillingFailureUseCase records a failed charge in the audit log and
// alerts an operator. The subscription itself is left untouched; gateways
// retry failed charges on their own schedule and a later success flows
// through the regular billing cycle path.
type HandleBillingFailureUseCase struct {
	subscriptionRepo recurring.Repository
	historyRepo      credit.PurchaseHistoryRepository
	notifier         OperatorNotifier // Optional
	logger           logger.Interface
}

// NewHandleBillingFailureUseCase creates a new HandleBillingFailureUseCase
func NewHandleBillingFailureUseCase(
	subscriptionRepo recurring.Repository,
	historyRepo credit.PurchaseHistoryRepository,
	logger logger.Interface,
) *HandleBillingFailureUseCase {
	return &HandleBillingFailureUseCase{
		subscriptionRepo: subscriptionRepo,
		historyRepo:      historyRepo,
		logger:           logger,
	}
}

// SetNotifier sets the operator notifier (optional)
func (uc *HandleBillingFailureUseCase) SetNotifier(notifier OperatorNotifier) {
	uc.notifier = notifier
}

func (uc *HandleBillingFailureUseCase) Execute(ctx context.Context, cmd HandleBillingFailureCommand) error {
	sub, err := uc.subscriptionRepo.GetByGatewayRef(ctx, cmd.Gateway, cmd.GatewaySubscriptionRef)
	if err != nil {
		return fmt.Errorf("failed to look up subscription: %w", err)
	}
	if sub == nil {
		uc.logger.Warnw("billing failure for unknown subscription",
			"gateway", cmd.Gateway, "ref", cmd.GatewaySubscriptionRef)
		return recurring.ErrSubscriptionNotFound
	}

	if cmd.TransactionID != "" {
		existing, err := uc.historyRepo.GetByTransactionID(ctx, cmd.Gateway, cmd.TransactionID)
		if err != nil {
			return fmt.Errorf("failed to check purchase history: %w", err)
		}
		if existing != nil {
			uc.logger.Infow("billing failure already recorded, skipping",
				"gateway", cmd.Gateway, "transaction_id", cmd.TransactionID)
			return nil
		}

		entry, err := credit.NewPurchaseHistoryEntry(
			sub.AdvisorID(), sub.CreditsPerMonth(), cmd.AmountDue, cmd.Currency,
			cmd.Gateway, cmd.TransactionID)
		if err != nil {
			return err
		}
		entry.SetMetadata("source", "recurring_billing_failure")
		entry.SetMetadata("failure_reason", cmd.Reason)
		if err := entry.MarkFailed(); err != nil {
			return err
		}

		if err := uc.historyRepo.Create(ctx, entry); err != nil && !errors.Is(err, credit.ErrDuplicateTransaction) {
			return fmt.Errorf("failed to record billing failure: %w", err)
		}
	}

	uc.logger.Warnw("billing cycle failed",
		"subscription_id", sub.ID(),
		"advisor_id", sub.AdvisorID(),
		"gateway", cmd.Gateway,
		"reason", cmd.Reason,
	)

	if uc.notifier != nil {
		uc.notifier.NotifyBillingFailure(ctx, sub.AdvisorID(), cmd.Gateway, cmd.GatewaySubscriptionRef, cmd.Reason)
	}
	return nil
}
