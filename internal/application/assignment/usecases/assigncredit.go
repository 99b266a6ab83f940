package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentora/internal/domain/assignment"
	"mentora/internal/domain/credit"
	"mentora/internal/shared/constants"
	"mentora/internal/shared/logger"
)

// AssignCreditCommand requests a month-long sponsored entitlement for a
// startup. StartAt is normally nil (grant starts now); the renewal sweep sets
// it to the previous end_date so consecutive windows never gap.
type AssignCreditCommand struct {
	AdvisorID         uint
	StartupID         uint
	EnableAutoRenewal bool
	StartAt           *time.Time
}

// AssignCreditResult reports the grant outcome. CreditSpent is false when the
// call only toggled auto-renewal on an existing active assignment.
type AssignCreditResult struct {
	AssignmentID     uint
	CreditSpent      bool
	StartDate        time.Time
	EndDate          time.Time
	CreditsAvailable int
}

// AssignCreditUseCase owns the assignment state machine. The write sequence
// spans three resources (ledger, assignment row, entitlement record) with no
// multi-table transaction, so every write after the credit reservation has a
// declared undo that runs in reverse order on failure.
type AssignCreditUseCase struct {
	assignmentRepo assignment.Repository
	ledger         CreditLedger
	entitlements   EntitlementService
	logger         logger.Interface
}

// NewAssignCreditUseCase creates a new AssignCreditUseCase
func NewAssignCreditUseCase(
	assignmentRepo assignment.Repository,
	ledger CreditLedger,
	entitlements EntitlementService,
	logger logger.Interface,
) *AssignCreditUseCase {
	return &AssignCreditUseCase{
		assignmentRepo: assignmentRepo,
		ledger:         ledger,
		entitlements:   entitlements,
		logger:         logger,
	}
}

func (uc *AssignCreditUseCase) Execute(ctx context.Context, cmd AssignCreditCommand) (*AssignCreditResult, error) {
	if cmd.AdvisorID == 0 || cmd.StartupID == 0 {
		return nil, fmt.Errorf("advisor ID and startup ID are required")
	}

	// An existing active link makes this a no-op credit-wise: only the
	// auto-renewal flag moves, and the ledger is never touched.
	existing, err := uc.assignmentRepo.GetActiveByPair(ctx, cmd.AdvisorID, cmd.StartupID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active assignment: %w", err)
	}
	if existing != nil {
		return uc.updateExistingAssignment(ctx, existing, cmd.EnableAutoRenewal)
	}

	// Credits must never be spent on a startup that is already entitled,
	// regardless of who paid for it. The renewal re-entry (StartAt set) is
	// exempt: the sweep has already retired this pair's assignment and its
	// still-running entitlement is superseded in place by the grant below.
	if cmd.StartAt == nil {
		entitled, err := uc.entitlements.HasValidEntitlement(ctx, cmd.StartupID, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to check existing entitlement: %w", err)
		}
		if entitled {
			uc.logger.Infow("assignment refused: startup already entitled",
				"advisor_id", cmd.AdvisorID, "startup_id", cmd.StartupID)
			return nil, assignment.ErrAlreadyEntitled
		}
	}

	account, err := uc.ledger.Reserve(ctx, cmd.AdvisorID, 1)
	if err != nil {
		return nil, err
	}

	startDate := time.Now()
	if cmd.StartAt != nil {
		startDate = *cmd.StartAt
	}
	endDate := startDate.AddDate(0, constants.GrantMonths, 0)

	result, err := uc.writeAssignmentAndEntitlement(ctx, cmd, startDate, endDate)
	if err != nil {
		// The reservation is the only surviving write at this point; release
		// it exactly once and surface the original error.
		if relErr := uc.ledger.Release(ctx, cmd.AdvisorID, 1); relErr != nil {
			uc.logger.Errorw("compensation failed: credit not released",
				"advisor_id", cmd.AdvisorID,
				"startup_id", cmd.StartupID,
				"error", relErr,
			)
		}
		if errors.Is(err, assignment.ErrDuplicateActiveAssignment) {
			// A concurrent request won the insert race. Fall back to the
			// update-only path against the row that got there first.
			return uc.retryAsUpdate(ctx, cmd)
		}
		return nil, err
	}

	result.CreditsAvailable = account.CreditsAvailable()
	uc.logger.Infow("credit assigned",
		"advisor_id", cmd.AdvisorID,
		"startup_id", cmd.StartupID,
		"assignment_id", result.AssignmentID,
		"start_date", result.StartDate,
		"end_date", result.EndDate,
	)
	return result, nil
}

// updateExistingAssignment handles the idempotent re-assignment path
func (uc *AssignCreditUseCase) updateExistingAssignment(
	ctx context.Context,
	existing *assignment.CreditAssignment,
	autoRenew bool,
) (*AssignCreditResult, error) {
	if existing.SetAutoRenewal(autoRenew) {
		if err := uc.assignmentRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update auto-renewal flag: %w", err)
		}
	}

	uc.logger.Infow("assignment already active, auto-renewal updated",
		"advisor_id", existing.AdvisorID(),
		"startup_id", existing.StartupID(),
		"auto_renewal", autoRenew,
	)

	return &AssignCreditResult{
		AssignmentID: existing.ID(),
		CreditSpent:  false,
		StartDate:    existing.StartDate(),
		EndDate:      existing.EndDate(),
	}, nil
}

// writeAssignmentAndEntitlement performs the post-reservation write sequence:
// assignment row (reusing a retired row where one exists), then entitlement
// grant, then the best-effort entitlement back-reference. On failure it
// unwinds its own writes in reverse order and returns the original error; the
// caller releases the credit.
func (uc *AssignCreditUseCase) writeAssignmentAndEntitlement(
	ctx context.Context,
	cmd AssignCreditCommand,
	startDate, endDate time.Time,
) (*AssignCreditResult, error) {
	var (
		assigned *assignment.CreditAssignment
		reused   bool
		undo     func()
	)

	retired, err := uc.assignmentRepo.GetLatestRetiredByPair(ctx, cmd.AdvisorID, cmd.StartupID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up retired assignment: %w", err)
	}

	if retired != nil {
		prior := *retired
		if err := retired.Reactivate(startDate, endDate, cmd.EnableAutoRenewal); err != nil {
			return nil, err
		}
		if err := uc.assignmentRepo.Update(ctx, retired); err != nil {
			return nil, uc.classifyWriteError(err, "failed to reactivate assignment")
		}
		assigned = retired
		reused = true
		undo = func() {
			// The row already carries the reactivation write, so the revert
			// must move forward from that version; writing the snapshot as-is
			// would run the conditional update against a version the row left
			// behind and never match.
			retired.RevertReactivation(&prior)
			if err := uc.assignmentRepo.Update(ctx, retired); err != nil {
				uc.logger.Errorw("compensation failed: assignment row not reverted",
					"assignment_id", retired.ID(), "error", err)
			}
		}
	} else {
		created, err := assignment.NewCreditAssignment(
			cmd.AdvisorID, cmd.StartupID, startDate, endDate, cmd.EnableAutoRenewal)
		if err != nil {
			return nil, err
		}
		if err := uc.assignmentRepo.Create(ctx, created); err != nil {
			return nil, uc.classifyWriteError(err, "failed to create assignment")
		}
		assigned = created
		undo = func() {
			if err := uc.assignmentRepo.Delete(ctx, created.ID()); err != nil {
				uc.logger.Errorw("compensation failed: assignment row not deleted",
					"assignment_id", created.ID(), "error", err)
			}
		}
	}

	entitlementID, err := uc.entitlements.Grant(
		ctx, cmd.StartupID, constants.EntitlementTierPremium, startDate, endDate, cmd.AdvisorID)
	if err != nil {
		uc.logger.Warnw("entitlement grant failed, compensating assignment write",
			"advisor_id", cmd.AdvisorID,
			"startup_id", cmd.StartupID,
			"reused_row", reused,
			"error", err,
		)
		undo()
		return nil, fmt.Errorf("failed to grant entitlement: %w", err)
	}

	// Best-effort back-reference: the entitlement is already correctly
	// granted, so a failure here is logged rather than rolled back.
	if err := assigned.LinkEntitlement(entitlementID); err == nil {
		if err := uc.assignmentRepo.Update(ctx, assigned); err != nil {
			uc.logger.Warnw("failed to persist entitlement back-reference",
				"assignment_id", assigned.ID(),
				"entitlement_id", entitlementID,
				"error", err,
			)
		}
	}

	return &AssignCreditResult{
		AssignmentID: assigned.ID(),
		CreditSpent:  true,
		StartDate:    startDate,
		EndDate:      endDate,
	}, nil
}

// retryAsUpdate resolves a lost insert race by treating the winner's row as
// the existing assignment.
func (uc *AssignCreditUseCase) retryAsUpdate(ctx context.Context, cmd AssignCreditCommand) (*AssignCreditResult, error) {
	winner, err := uc.assignmentRepo.GetActiveByPair(ctx, cmd.AdvisorID, cmd.StartupID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read assignment after conflict: %w", err)
	}
	if winner == nil {
		return nil, assignment.ErrDuplicateActiveAssignment
	}
	return uc.updateExistingAssignment(ctx, winner, cmd.EnableAutoRenewal)
}

func (uc *AssignCreditUseCase) classifyWriteError(err error, msg string) error {
	if errors.Is(err, assignment.ErrDuplicateActiveAssignment) {
		return err
	}
	if errors.Is(err, credit.ErrVersionConflict) || errors.Is(err, assignment.ErrVersionConflict) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
