package usecases

import (
	"context"
	"fmt"
	"time"

	"mentora/internal/domain/assignment"
	"mentora/internal/shared/logger"
)

// GetActiveAssignmentUseCase returns the currently valid assignment for a
// pair. A status=active row whose end_date has passed is not returned here;
// that row is material for the renewal sweep only.
type GetActiveAssignmentUseCase struct {
	assignmentRepo assignment.Repository
	logger         logger.Interface
}

// NewGetActiveAssignmentUseCase creates a new GetActiveAssignmentUseCase
func NewGetActiveAssignmentUseCase(assignmentRepo assignment.Repository, logger logger.Interface) *GetActiveAssignmentUseCase {
	return &GetActiveAssignmentUseCase{
		assignmentRepo: assignmentRepo,
		logger:         logger,
	}
}

func (uc *GetActiveAssignmentUseCase) Execute(ctx context.Context, advisorID, startupID uint) (*assignment.CreditAssignment, error) {
	active, err := uc.assignmentRepo.GetActiveByPair(ctx, advisorID, startupID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active assignment: %w", err)
	}
	if active == nil || !active.IsCurrent(time.Now()) {
		return nil, nil
	}
	return active, nil
}
