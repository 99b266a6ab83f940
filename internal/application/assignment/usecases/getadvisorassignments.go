package usecases

import (
	"context"
	"fmt"

	"mentora/internal/domain/assignment"
	"mentora/internal/shared/logger"
)

// GetAdvisorAssignmentsUseCase lists all assignments an advisor has made,
// active and historical alike.
type GetAdvisorAssignmentsUseCase struct {
	assignmentRepo assignment.Repository
	logger         logger.Interface
}

// NewGetAdvisorAssignmentsUseCase creates a new GetAdvisorAssignmentsUseCase
func NewGetAdvisorAssignmentsUseCase(assignmentRepo assignment.Repository, logger logger.Interface) *GetAdvisorAssignmentsUseCase {
	return &GetAdvisorAssignmentsUseCase{
		assignmentRepo: assignmentRepo,
		logger:         logger,
	}
}

func (uc *GetAdvisorAssignmentsUseCase) Execute(ctx context.Context, advisorID uint) ([]*assignment.CreditAssignment, error) {
	assignments, err := uc.assignmentRepo.ListByAdvisor(ctx, advisorID)
	if err != nil {
		uc.logger.Errorw("failed to list advisor assignments", "advisor_id", advisorID, "error", err)
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}
