package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentora/internal/application/credit/services"
	"mentora/internal/domain/credit"
	"mentora/internal/domain/recurring"
	"mentora/internal/shared/logger"
)

// maxSubscriptionRetries bounds the optimistic update loop on the
// subscription row under concurrent webhook delivery.
const maxSubscriptionRetries = 3

// ProcessBillingCycleCommand describes a successful recurring charge reported
// by the payment gateway.
type ProcessBillingCycleCommand struct {
	Gateway                string
	GatewaySubscriptionRef string
	TransactionID          string
	AmountPaid             int64
	Currency               string
}

// ProcessBillingCycleResult reports the cycle outcome
type ProcessBillingCycleResult struct {
	SubscriptionID   uint
	CreditsGranted   int
	CreditsAvailable int
	PeriodStart      time.Time
	PeriodEnd        time.Time
	AlreadyProcessed bool
}

// ProcessBillingCycleUseCase applies one paid billing cycle: advance the
// subscription period, then grant the month's credits through the privileged
// ledger path. The audit entry's unique transaction ID is written pending
// before any other write, so a redelivered webhook finds it and stops; the
// same charge never grants credits twice.
type ProcessBillingCycleUseCase struct {
	subscriptionRepo recurring.Repository
	historyRepo      credit.PurchaseHistoryRepository
	ledger           *services.Ledger
	notifier         OperatorNotifier // Optional
	logger           logger.Interface
}

// NewProcessBillingCycleUseCase creates a new ProcessBillingCycleUseCase
func NewProcessBillingCycleUseCase(
	subscriptionRepo recurring.Repository,
	historyRepo credit.PurchaseHistoryRepository,
	ledger *services.Ledger,
	logger logger.Interface,
) *ProcessBillingCycleUseCase {
	return &ProcessBillingCycleUseCase{
		subscriptionRepo: subscriptionRepo,
		historyRepo:      historyRepo,
		ledger:           ledger,
		logger:           logger,
	}
}

// SetNotifier sets the operator notifier (optional)
func (uc *ProcessBillingCycleUseCase) SetNotifier(notifier OperatorNotifier) {
	uc.notifier = notifier
}

func (uc *ProcessBillingCycleUseCase) Execute(ctx context.Context, cmd ProcessBillingCycleCommand) (*ProcessBillingCycleResult, error) {
	if cmd.TransactionID == "" {
		return nil, fmt.Errorf("transaction ID is required")
	}

	sub, err := uc.subscriptionRepo.GetByGatewayRef(ctx, cmd.Gateway, cmd.GatewaySubscriptionRef)
	if err != nil {
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}
	if sub == nil {
		uc.logger.Errorw("billing cycle for unknown subscription",
			"gateway", cmd.Gateway, "ref", cmd.GatewaySubscriptionRef,
			"transaction_id", cmd.TransactionID)
		if uc.notifier != nil {
			uc.notifier.NotifyInconsistency(ctx, "billing cycle for unknown subscription",
				fmt.Sprintf("gateway %s reported charge %s for unknown subscription %s",
					cmd.Gateway, cmd.TransactionID, cmd.GatewaySubscriptionRef))
		}
		return nil, recurring.ErrSubscriptionNotFound
	}

	existing, err := uc.historyRepo.GetByTransactionID(ctx, cmd.Gateway, cmd.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase history: %w", err)
	}
	if existing != nil {
		uc.logger.Infow("billing cycle already processed, skipping",
			"gateway", cmd.Gateway, "transaction_id", cmd.TransactionID,
			"status", existing.Status())
		return &ProcessBillingCycleResult{
			SubscriptionID:   sub.ID(),
			PeriodStart:      sub.CurrentPeriodStart(),
			PeriodEnd:        sub.CurrentPeriodEnd(),
			AlreadyProcessed: true,
		}, nil
	}

	entry, err := credit.NewPurchaseHistoryEntry(
		sub.AdvisorID(), sub.CreditsPerMonth(), cmd.AmountPaid, cmd.Currency,
		cmd.Gateway, cmd.TransactionID)
	if err != nil {
		return nil, err
	}
	entry.SetMetadata("source", "recurring_billing_cycle")
	entry.SetMetadata("subscription_ref", cmd.GatewaySubscriptionRef)

	if err := uc.historyRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, credit.ErrDuplicateTransaction) {
			uc.logger.Infow("billing cycle raced with duplicate delivery",
				"gateway", cmd.Gateway, "transaction_id", cmd.TransactionID)
			return &ProcessBillingCycleResult{
				SubscriptionID:   sub.ID(),
				AlreadyProcessed: true,
			}, nil
		}
		return nil, fmt.Errorf("failed to record billing cycle: %w", err)
	}

	advanced, err := uc.advancePeriod(ctx, sub, cmd)
	if err != nil {
		// Nothing was applied: no period moved, no credits landed. Remove the
		// pending barrier entry so the gateway's redelivery of this charge can
		// retry the whole cycle instead of being refused as already processed.
		uc.discardEntry(ctx, entry)
		if uc.notifier != nil {
			uc.notifier.NotifyInconsistency(ctx, "billing cycle not applied",
				fmt.Sprintf("charge %s for subscription %d did not advance the billing period; awaiting gateway redelivery",
					cmd.TransactionID, sub.ID()))
		}
		return nil, err
	}
	sub = advanced

	account, err := uc.ledger.AddCredits(ctx, sub.AdvisorID(), sub.CreditsPerMonth(), services.PurchaseContext{
		Amount:   cmd.AmountPaid,
		Currency: cmd.Currency,
		At:       time.Now(),
	})
	if err != nil {
		// The period already advanced but the credits did not land. This is
		// the one place the flow can leave visible partial state, so it is
		// flagged to an operator instead of silently retried.
		uc.logger.Errorw("credit grant failed after billing period advanced",
			"subscription_id", sub.ID(),
			"advisor_id", sub.AdvisorID(),
			"transaction_id", cmd.TransactionID,
			"error", err,
		)
		if uc.notifier != nil {
			uc.notifier.NotifyInconsistency(ctx, "billing cycle credits not granted",
				fmt.Sprintf("subscription %d period advanced for charge %s but %d credits were not granted",
					sub.ID(), cmd.TransactionID, sub.CreditsPerMonth()))
		}
		uc.failEntry(ctx, entry, err)
		return nil, fmt.Errorf("failed to grant billing cycle credits: %w", err)
	}

	if err := entry.MarkCompleted(); err != nil {
		return nil, err
	}
	if err := uc.historyRepo.UpdateStatus(ctx, entry); err != nil {
		uc.logger.Warnw("failed to mark billing cycle entry completed",
			"entry_id", entry.ID(), "error", err)
	}

	uc.logger.Infow("billing cycle processed",
		"subscription_id", sub.ID(),
		"advisor_id", sub.AdvisorID(),
		"credits_granted", sub.CreditsPerMonth(),
		"cycle", sub.BillingCycleCount(),
		"period_end", sub.CurrentPeriodEnd(),
	)

	return &ProcessBillingCycleResult{
		SubscriptionID:   sub.ID(),
		CreditsGranted:   sub.CreditsPerMonth(),
		CreditsAvailable: account.CreditsAvailable(),
		PeriodStart:      sub.CurrentPeriodStart(),
		PeriodEnd:        sub.CurrentPeriodEnd(),
	}, nil
}

// advancePeriod applies the cycle to the subscription under the optimistic
// lock, re-reading and reapplying on version conflicts.
func (uc *ProcessBillingCycleUseCase) advancePeriod(
	ctx context.Context,
	sub *recurring.CreditSubscription,
	cmd ProcessBillingCycleCommand,
) (*recurring.CreditSubscription, error) {
	for attempt := 0; attempt < maxSubscriptionRetries; attempt++ {
		if err := sub.ApplyBillingCycle(cmd.AmountPaid); err != nil {
			return nil, err
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			if errors.Is(err, recurring.ErrVersionConflict) {
				fresh, ferr := uc.subscriptionRepo.GetByGatewayRef(ctx, cmd.Gateway, cmd.GatewaySubscriptionRef)
				if ferr != nil {
					return nil, fmt.Errorf("failed to re-read subscription: %w", ferr)
				}
				if fresh == nil {
					return nil, recurring.ErrSubscriptionNotFound
				}
				sub = fresh
				continue
			}
			return nil, fmt.Errorf("failed to advance billing period: %w", err)
		}
		return sub, nil
	}

	uc.logger.Warnw("billing period update retries exhausted",
		"subscription_id", sub.ID(), "transaction_id", cmd.TransactionID)
	return nil, credit.ErrContention
}

// discardEntry undoes the pending barrier write. Used only when the cycle was
// not applied at all; a failed entry is kept instead whenever partial state
// exists, so redelivery stays blocked on it.
func (uc *ProcessBillingCycleUseCase) discardEntry(ctx context.Context, entry *credit.PurchaseHistoryEntry) {
	if err := uc.historyRepo.Delete(ctx, entry.ID()); err != nil {
		uc.logger.Errorw("failed to remove pending billing cycle entry",
			"entry_id", entry.ID(), "error", err)
	}
}

func (uc *ProcessBillingCycleUseCase) failEntry(ctx context.Context, entry *credit.PurchaseHistoryEntry, cause error) {
	if err := entry.MarkFailed(); err != nil {
		return
	}
	if err := uc.historyRepo.UpdateStatus(ctx, entry); err != nil {
		uc.logger.Errorw("failed to mark billing cycle entry failed",
			"entry_id", entry.ID(), "cause", cause, "error", err)
	}
}
