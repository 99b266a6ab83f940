package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentora/internal/domain/pricing"
	"mentora/internal/domain/recurring"
	"mentora/internal/shared/logger"
)

// CreateSubscriptionCommand registers a recurring credit subscription the
// payment gateway reports as created. PeriodStart is optional; when zero the
// first period starts now.
type CreateSubscriptionCommand struct {
	AdvisorID              uint
	PlanCode               string
	Gateway                string
	GatewaySubscriptionRef string
	PeriodStart            time.Time
}

// CreateSubscriptionResult reports the registration outcome
type CreateSubscriptionResult struct {
	SubscriptionID  uint
	PlanID          uint
	CreditsPerMonth int
	PeriodStart     time.Time
	PeriodEnd       time.Time
	AlreadyExists   bool
}

// CreateSubscriptionUseCase registers gateway-created subscriptions. The
// gateway subscription reference is unique in the store, so a redelivered
// creation webhook resolves to the row that already exists instead of a
// second subscription.
type CreateSubscriptionUseCase struct {
	subscriptionRepo recurring.Repository
	planRepo         pricing.PlanRepository
	logger           logger.Interface
}

// NewCreateSubscriptionUseCase creates a new CreateSubscriptionUseCase
func NewCreateSubscriptionUseCase(
	subscriptionRepo recurring.Repository,
	planRepo pricing.PlanRepository,
	logger logger.Interface,
) *CreateSubscriptionUseCase {
	return &CreateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		logger:           logger,
	}
}

func (uc *CreateSubscriptionUseCase) Execute(ctx context.Context, cmd CreateSubscriptionCommand) (*CreateSubscriptionResult, error) {
	if cmd.AdvisorID == 0 {
		return nil, fmt.Errorf("advisor ID is required")
	}
	if cmd.GatewaySubscriptionRef == "" {
		return nil, fmt.Errorf("gateway subscription ref is required")
	}

	existing, err := uc.subscriptionRepo.GetByGatewayRef(ctx, cmd.Gateway, cmd.GatewaySubscriptionRef)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}
	if existing != nil {
		uc.logger.Infow("subscription already registered, skipping",
			"gateway", cmd.Gateway, "ref", cmd.GatewaySubscriptionRef)
		return resultFrom(existing, true), nil
	}

	plan, err := uc.planRepo.GetByCode(ctx, cmd.PlanCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plan %q: %w", cmd.PlanCode, err)
	}
	if !plan.IsActive() {
		return nil, fmt.Errorf("plan %q is no longer offered", cmd.PlanCode)
	}

	periodStart := cmd.PeriodStart
	if periodStart.IsZero() {
		periodStart = time.Now()
	}
	periodEnd := periodStart.AddDate(0, 1, 0)

	sub, err := recurring.NewCreditSubscription(
		cmd.AdvisorID, plan.ID(),
		plan.CreditsPerMonth(), plan.PricePerMonth(), plan.Currency(),
		cmd.Gateway, cmd.GatewaySubscriptionRef,
		periodStart, periodEnd,
	)
	if err != nil {
		return nil, err
	}

	if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
		if errors.Is(err, recurring.ErrDuplicateSubscriptionRef) {
			// Concurrent delivery of the same creation webhook; the other
			// writer's row is the subscription.
			winner, ferr := uc.subscriptionRepo.GetByGatewayRef(ctx, cmd.Gateway, cmd.GatewaySubscriptionRef)
			if ferr != nil {
				return nil, fmt.Errorf("failed to re-read subscription after conflict: %w", ferr)
			}
			if winner == nil {
				return nil, recurring.ErrDuplicateSubscriptionRef
			}
			return resultFrom(winner, true), nil
		}
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	uc.logger.Infow("recurring credit subscription registered",
		"advisor_id", cmd.AdvisorID,
		"plan_code", cmd.PlanCode,
		"gateway", cmd.Gateway,
		"ref", cmd.GatewaySubscriptionRef,
		"credits_per_month", plan.CreditsPerMonth(),
	)
	return resultFrom(sub, false), nil
}

func resultFrom(s *recurring.CreditSubscription, existed bool) *CreateSubscriptionResult {
	return &CreateSubscriptionResult{
		SubscriptionID:  s.ID(),
		PlanID:          s.PlanID(),
		CreditsPerMonth: s.CreditsPerMonth(),
		PeriodStart:     s.CurrentPeriodStart(),
		PeriodEnd:       s.CurrentPeriodEnd(),
		AlreadyExists:   existed,
	}
}
