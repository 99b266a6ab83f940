package usecases

import (
	"context"
	"fmt"
	"time"

	"mentora/internal/application/credit/services"
	"mentora/internal/domain/credit"
	"mentora/internal/shared/logger"
)

// RecordPurchaseCommand describes a one-time credit purchase reported by the
// payment gateway. The engine never initiates a charge; it only reacts to a
// reported outcome.
type RecordPurchaseCommand struct {
	AdvisorID     uint
	Credits       int
	Amount        int64
	Currency      string
	Gateway       string
	TransactionID string
}

// RecordPurchaseResult reports the grant outcome
type RecordPurchaseResult struct {
	EntryID          uint
	CreditsAvailable int
	AlreadyRecorded  bool
}

// RecordPurchaseUseCase appends the audit entry for a paid one-time purchase
// and grants the credits through the privileged ledger path. The audit entry
// is written pending before the grant: its unique transaction ID is the
// idempotency barrier against gateway webhook redelivery.
type RecordPurchaseUseCase struct {
	historyRepo credit.PurchaseHistoryRepository
	ledger      *services.Ledger
	logger      logger.Interface
}

// NewRecordPurchaseUseCase creates a new RecordPurchaseUseCase
func NewRecordPurchaseUseCase(
	historyRepo credit.PurchaseHistoryRepository,
	ledger *services.Ledger,
	logger logger.Interface,
) *RecordPurchaseUseCase {
	return &RecordPurchaseUseCase{
		historyRepo: historyRepo,
		ledger:      ledger,
		logger:      logger,
	}
}

func (uc *RecordPurchaseUseCase) Execute(ctx context.Context, cmd RecordPurchaseCommand) (*RecordPurchaseResult, error) {
	existing, err := uc.historyRepo.GetByTransactionID(ctx, cmd.Gateway, cmd.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase history: %w", err)
	}
	if existing != nil {
		uc.logger.Infow("purchase already recorded, skipping",
			"gateway", cmd.Gateway, "transaction_id", cmd.TransactionID,
			"status", existing.Status())
		return &RecordPurchaseResult{EntryID: existing.ID(), AlreadyRecorded: true}, nil
	}

	entry, err := credit.NewPurchaseHistoryEntry(
		cmd.AdvisorID, cmd.Credits, cmd.Amount, cmd.Currency, cmd.Gateway, cmd.TransactionID)
	if err != nil {
		return nil, err
	}
	entry.SetMetadata("source", "one_time_purchase")

	if err := uc.historyRepo.Create(ctx, entry); err != nil {
		if err == credit.ErrDuplicateTransaction {
			// Concurrent delivery of the same webhook; the other writer owns it.
			uc.logger.Infow("purchase entry raced with duplicate delivery",
				"gateway", cmd.Gateway, "transaction_id", cmd.TransactionID)
			return &RecordPurchaseResult{AlreadyRecorded: true}, nil
		}
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	account, err := uc.ledger.AddCredits(ctx, cmd.AdvisorID, cmd.Credits, services.PurchaseContext{
		Amount:   cmd.Amount,
		Currency: cmd.Currency,
		At:       time.Now(),
	})
	if err != nil {
		uc.logger.Errorw("credit grant failed after purchase entry was written",
			"advisor_id", cmd.AdvisorID,
			"transaction_id", cmd.TransactionID,
			"error", err,
		)
		// No credits landed, so the entry protects nothing. Remove it to free
		// the unique transaction ID for the gateway's redelivery.
		if delErr := uc.historyRepo.Delete(ctx, entry.ID()); delErr != nil {
			uc.logger.Errorw("failed to remove pending purchase entry",
				"entry_id", entry.ID(), "error", delErr)
		}
		return nil, fmt.Errorf("failed to grant purchased credits: %w", err)
	}

	if err := entry.MarkCompleted(); err != nil {
		return nil, err
	}
	if err := uc.historyRepo.UpdateStatus(ctx, entry); err != nil {
		// The grant is in the ledger; a stale pending status is an audit
		// blemish, not a reason to fail the purchase.
		uc.logger.Warnw("failed to mark purchase entry completed",
			"entry_id", entry.ID(), "error", err)
	}

	uc.logger.Infow("one-time purchase recorded",
		"advisor_id", cmd.AdvisorID,
		"credits", cmd.Credits,
		"transaction_id", cmd.TransactionID,
	)

	return &RecordPurchaseResult{
		EntryID:          entry.ID(),
		CreditsAvailable: account.CreditsAvailable(),
	}, nil
}
