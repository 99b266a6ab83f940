package usecases

import (
	"context"
	"time"

	"mentora/internal/application/credit/services"
	"mentora/internal/shared/logger"
)

// AddCreditsCommand is the administrative credit grant. It exists for support
// operations (goodwill credits, manual reconciliation) and is only reachable
// through the authenticated admin surface; gateway-driven grants go through
// RecordPurchase and ProcessBillingCycle instead.
type AddCreditsCommand struct {
	AdvisorID uint
	Credits   int
	Amount    int64
	Currency  string
	Reason    string
}

// AddCreditsUseCase routes administrative grants through the privileged ledger
type AddCreditsUseCase struct {
	ledger *services.Ledger
	logger logger.Interface
}

// NewAddCreditsUseCase creates a new AddCreditsUseCase
func NewAddCreditsUseCase(ledger *services.Ledger, logger logger.Interface) *AddCreditsUseCase {
	return &AddCreditsUseCase{
		ledger: ledger,
		logger: logger,
	}
}

func (uc *AddCreditsUseCase) Execute(ctx context.Context, cmd AddCreditsCommand) (*BalanceResult, error) {
	account, err := uc.ledger.AddCredits(ctx, cmd.AdvisorID, cmd.Credits, services.PurchaseContext{
		Amount:   cmd.Amount,
		Currency: cmd.Currency,
		At:       time.Now(),
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("administrative credit grant",
		"advisor_id", cmd.AdvisorID,
		"credits", cmd.Credits,
		"reason", cmd.Reason,
	)

	return &BalanceResult{
		AdvisorID:        account.AdvisorID(),
		CreditsAvailable: account.CreditsAvailable(),
		CreditsUsed:      account.CreditsUsed(),
		CreditsPurchased: account.CreditsPurchased(),
	}, nil
}
