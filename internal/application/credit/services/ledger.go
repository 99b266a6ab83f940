package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentora/internal/domain/credit"
	"mentora/internal/shared/logger"
)

// maxBalanceRetries bounds the optimistic read-compute-write cycle on the
// ledger. Exhaustion surfaces as credit.ErrContention, never as a blind write.
const maxBalanceRetries = 3

// PurchaseContext carries the audit metadata of a credit grant
type PurchaseContext struct {
	Amount   int64
	Currency string
	At       time.Time
}

// Ledger is the single privileged mutation path for advisor credit balances.
// Nothing else in the engine writes the credit_accounts table: exposing a
// direct balance write to an external caller would let an advisor mint its
// own credits. All three operations run a bounded compare-and-swap loop
// because the store gives no cross-step atomicity between read and write.
type Ledger struct {
	accountRepo credit.AccountRepository
	logger      logger.Interface
}

// NewLedger creates the ledger service
func NewLedger(accountRepo credit.AccountRepository, logger logger.Interface) *Ledger {
	return &Ledger{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// GetAccount returns the account for an advisor, or (nil, nil) when no row
// exists yet. Callers treat absence as a zero balance.
func (l *Ledger) GetAccount(ctx context.Context, advisorID uint) (*credit.CreditAccount, error) {
	return l.accountRepo.GetByAdvisorID(ctx, advisorID)
}

// AddCredits increases the available and purchased counters, creating the
// account row on first use.
func (l *Ledger) AddCredits(ctx context.Context, advisorID uint, delta int, pctx PurchaseContext) (*credit.CreditAccount, error) {
	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		account, err := l.accountRepo.GetByAdvisorID(ctx, advisorID)
		if err != nil {
			return nil, fmt.Errorf("failed to read credit account: %w", err)
		}

		if account == nil {
			account, err = credit.NewCreditAccount(advisorID)
			if err != nil {
				return nil, err
			}
			if err := account.Grant(delta, pctx.Amount, pctx.Currency, pctx.At); err != nil {
				return nil, err
			}
			if err := l.accountRepo.Create(ctx, account); err != nil {
				// Lost the create race; retry as an update on the row that won.
				l.logger.Debugw("credit account create raced, retrying",
					"advisor_id", advisorID, "error", err)
				continue
			}
			l.logger.Infow("credit account created",
				"advisor_id", advisorID, "credits", delta)
			return account, nil
		}

		if err := account.Grant(delta, pctx.Amount, pctx.Currency, pctx.At); err != nil {
			return nil, err
		}
		if err := l.accountRepo.Update(ctx, account); err != nil {
			if errors.Is(err, credit.ErrVersionConflict) {
				continue
			}
			return nil, fmt.Errorf("failed to persist credit grant: %w", err)
		}

		l.logger.Infow("credits granted",
			"advisor_id", advisorID,
			"credits", delta,
			"available", account.CreditsAvailable(),
			"purchased", account.CreditsPurchased(),
		)
		return account, nil
	}

	l.logger.Warnw("credit grant retries exhausted", "advisor_id", advisorID)
	return nil, credit.ErrContention
}

// Reserve atomically consumes credits if the balance covers the amount.
// Insufficient balance fails fast with credit.ErrInsufficientCredits and no
// partial state; CAS conflicts retry up to the budget.
func (l *Ledger) Reserve(ctx context.Context, advisorID uint, amount int) (*credit.CreditAccount, error) {
	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		account, err := l.accountRepo.GetByAdvisorID(ctx, advisorID)
		if err != nil {
			return nil, fmt.Errorf("failed to read credit account: %w", err)
		}
		if account == nil {
			return nil, &credit.InsufficientCreditsError{Available: 0, Required: amount}
		}

		if err := account.Reserve(amount); err != nil {
			return nil, err
		}
		if err := l.accountRepo.Update(ctx, account); err != nil {
			if errors.Is(err, credit.ErrVersionConflict) {
				continue
			}
			return nil, fmt.Errorf("failed to persist credit reservation: %w", err)
		}

		l.logger.Infow("credit reserved",
			"advisor_id", advisorID,
			"amount", amount,
			"available", account.CreditsAvailable(),
			"used", account.CreditsUsed(),
		)
		return account, nil
	}

	l.logger.Warnw("credit reservation retries exhausted", "advisor_id", advisorID)
	return nil, credit.ErrContention
}

// Release is the compensating inverse of Reserve. It must be called exactly
// once per failed reservation; the aggregate refuses releases that would
// over-credit, which guards against a double rollback.
func (l *Ledger) Release(ctx context.Context, advisorID uint, amount int) error {
	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		account, err := l.accountRepo.GetByAdvisorID(ctx, advisorID)
		if err != nil {
			return fmt.Errorf("failed to read credit account: %w", err)
		}
		if account == nil {
			return credit.ErrAccountNotFound
		}

		if err := account.Release(amount); err != nil {
			if errors.Is(err, credit.ErrDoubleRelease) {
				l.logger.Errorw("release rejected: would over-credit account",
					"advisor_id", advisorID, "amount", amount,
					"used", account.CreditsUsed())
			}
			return err
		}
		if err := l.accountRepo.Update(ctx, account); err != nil {
			if errors.Is(err, credit.ErrVersionConflict) {
				continue
			}
			return fmt.Errorf("failed to persist credit release: %w", err)
		}

		l.logger.Infow("credit released",
			"advisor_id", advisorID,
			"amount", amount,
			"available", account.CreditsAvailable(),
		)
		return nil
	}

	l.logger.Warnw("credit release retries exhausted", "advisor_id", advisorID)
	return credit.ErrContention
}
