package usecases

import (
	"context"
	"fmt"
	"time"

	"mentora/internal/domain/credit"
	"mentora/internal/shared/logger"
)

// BalanceResult is the read-only ledger projection exposed to callers
type BalanceResult struct {
	AdvisorID            uint
	CreditsAvailable     int
	CreditsUsed          int
	CreditsPurchased     int
	LastPurchaseAmount   int64
	LastPurchaseCurrency string
	LastPurchaseAt       *time.Time
}

// GetBalanceUseCase returns an advisor's credit balance. A missing account
// row is a valid state reported as a zero balance.
type GetBalanceUseCase struct {
	accountRepo credit.AccountRepository
	logger      logger.Interface
}

// NewGetBalanceUseCase creates a new GetBalanceUseCase
func NewGetBalanceUseCase(accountRepo credit.AccountRepository, logger logger.Interface) *GetBalanceUseCase {
	return &GetBalanceUseCase{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (uc *GetBalanceUseCase) Execute(ctx context.Context, advisorID uint) (*BalanceResult, error) {
	account, err := uc.accountRepo.GetByAdvisorID(ctx, advisorID)
	if err != nil {
		uc.logger.Errorw("failed to read credit account", "advisor_id", advisorID, "error", err)
		return nil, fmt.Errorf("failed to read credit account: %w", err)
	}

	if account == nil {
		return &BalanceResult{AdvisorID: advisorID}, nil
	}

	return &BalanceResult{
		AdvisorID:            account.AdvisorID(),
		CreditsAvailable:     account.CreditsAvailable(),
		CreditsUsed:          account.CreditsUsed(),
		CreditsPurchased:     account.CreditsPurchased(),
		LastPurchaseAmount:   account.LastPurchaseAmount(),
		LastPurchaseCurrency: account.LastPurchaseCurrency(),
		LastPurchaseAt:       account.LastPurchaseAt(),
	}, nil
}
