package usecases

import (
	"context"
	"fmt"

	"mentora/internal/domain/assignment"
	"mentora/internal/shared/logger"
)

// CancelAutoRenewalUseCase disables auto-renewal on the active assignment for
// a pair. The startup keeps its entitlement through the already-paid period;
// the sweep expires the row once end_date passes. A missing active row makes
// this an idempotent no-op.
type CancelAutoRenewalUseCase struct {
	assignmentRepo assignment.Repository
	logger         logger.Interface
}

// NewCancelAutoRenewalUseCase creates a new CancelAutoRenewalUseCase
func NewCancelAutoRenewalUseCase(assignmentRepo assignment.Repository, logger logger.Interface) *CancelAutoRenewalUseCase {
	return &CancelAutoRenewalUseCase{
		assignmentRepo: assignmentRepo,
		logger:         logger,
	}
}

func (uc *CancelAutoRenewalUseCase) Execute(ctx context.Context, advisorID, startupID uint) error {
	active, err := uc.assignmentRepo.GetActiveByPair(ctx, advisorID, startupID)
	if err != nil {
		return fmt.Errorf("failed to look up active assignment: %w", err)
	}
	if active == nil {
		uc.logger.Debugw("cancel auto-renewal: no active assignment",
			"advisor_id", advisorID, "startup_id", startupID)
		return nil
	}

	if !active.AutoRenewEnabled() {
		return nil
	}

	active.SetAutoRenewal(false)
	if err := uc.assignmentRepo.Update(ctx, active); err != nil {
		return fmt.Errorf("failed to disable auto-renewal: %w", err)
	}

	uc.logger.Infow("auto-renewal disabled",
		"advisor_id", advisorID,
		"startup_id", startupID,
		"end_date", active.EndDate(),
	)
	return nil
}
