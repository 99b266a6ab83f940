package usecases

import (
	"context"
	"fmt"
	"time"

	"mentora/internal/domain/assignment"
	"mentora/internal/shared/logger"
)

// RenewalSweepResult is the aggregate outcome of one sweep run
type RenewalSweepResult struct {
	Renewed int
	Failed  int
}

// RenewAssignmentsUseCase is the renewal sweep. It walks active,
// auto-renewal-enabled assignments whose end_date falls within the lookahead
// window and either renews them by consuming another credit or expires them.
// One startup's failure never blocks the rest of the batch, and a re-run only
// acts on rows still matching the active+expiring filter, which makes
// overlapping or interrupted sweeps safe.
type RenewAssignmentsUseCase struct {
	assignmentRepo assignment.Repository
	ledger         CreditLedger
	entitlements   EntitlementService
	assignUC       *AssignCreditUseCase
	notifier       OperatorNotifier // Optional
	lookahead      time.Duration
	logger         logger.Interface
}

// NewRenewAssignmentsUseCase creates a new RenewAssignmentsUseCase
func NewRenewAssignmentsUseCase(
	assignmentRepo assignment.Repository,
	ledger CreditLedger,
	entitlements EntitlementService,
	assignUC *AssignCreditUseCase,
	lookahead time.Duration,
	logger logger.Interface,
) *RenewAssignmentsUseCase {
	return &RenewAssignmentsUseCase{
		assignmentRepo: assignmentRepo,
		ledger:         ledger,
		entitlements:   entitlements,
		assignUC:       assignUC,
		lookahead:      lookahead,
		logger:         logger,
	}
}

// SetNotifier sets the operator notifier (optional)
func (uc *RenewAssignmentsUseCase) SetNotifier(notifier OperatorNotifier) {
	uc.notifier = notifier
}

func (uc *RenewAssignmentsUseCase) Execute(ctx context.Context) (RenewalSweepResult, error) {
	now := time.Now()
	expiring, err := uc.assignmentRepo.FindRenewable(ctx, now.Add(uc.lookahead))
	if err != nil {
		return RenewalSweepResult{}, fmt.Errorf("failed to find renewable assignments: %w", err)
	}

	if len(expiring) == 0 {
		uc.logger.Debugw("renewal sweep: nothing to do")
		return RenewalSweepResult{}, nil
	}

	uc.logger.Infow("renewal sweep started", "candidates", len(expiring))

	var result RenewalSweepResult
	for _, a := range expiring {
		if err := ctx.Err(); err != nil {
			uc.logger.Warnw("renewal sweep interrupted", "error", err,
				"renewed", result.Renewed, "failed", result.Failed)
			break
		}

		if uc.renewOne(ctx, a, now) {
			result.Renewed++
		} else {
			result.Failed++
		}
	}

	uc.logger.Infow("renewal sweep finished",
		"renewed", result.Renewed,
		"failed", result.Failed,
	)

	if uc.notifier != nil {
		uc.notifier.NotifySweepCompleted(ctx, result.Renewed, result.Failed)
	}

	return result, nil
}

// renewOne processes a single expiring assignment and reports success.
// Rows without balance cover expire immediately; the rest are retired and
// re-entered through the regular assignment path with the window anchored at
// the previous end_date so the startup never sees a coverage gap.
func (uc *RenewAssignmentsUseCase) renewOne(ctx context.Context, a *assignment.CreditAssignment, now time.Time) bool {
	log := uc.logger.With(
		"assignment_id", a.ID(),
		"advisor_id", a.AdvisorID(),
		"startup_id", a.StartupID(),
	)

	account, err := uc.ledger.GetAccount(ctx, a.AdvisorID())
	if err != nil {
		log.Errorw("renewal skipped: balance unknown", "error", err)
		return false
	}

	if account == nil || account.CreditsAvailable() < 1 {
		return uc.expireWithoutRenewal(ctx, a, now, log)
	}

	prevEnd := a.EndDate()
	autoRenew := a.AutoRenewEnabled()
	entitlementID := a.EntitlementID()

	if err := a.Expire(now); err != nil {
		log.Warnw("failed to retire assignment before renewal", "error", err)
		return false
	}
	if err := uc.assignmentRepo.Update(ctx, a); err != nil {
		log.Errorw("failed to persist assignment expiry before renewal", "error", err)
		return false
	}

	// Renewal windows start at the previous end_date, not at sweep time.
	renewResult, err := uc.assignUC.Execute(ctx, AssignCreditCommand{
		AdvisorID:         a.AdvisorID(),
		StartupID:         a.StartupID(),
		EnableAutoRenewal: autoRenew,
		StartAt:           &prevEnd,
	})
	if err != nil {
		log.Errorw("renewal failed after retiring assignment", "error", err)
		uc.revokeEntitlement(ctx, entitlementID, log)
		return false
	}

	log.Infow("assignment renewed",
		"new_start", renewResult.StartDate,
		"new_end", renewResult.EndDate,
		"credit_spent", renewResult.CreditSpent,
	)
	return true
}

// expireWithoutRenewal retires an assignment whose advisor has no balance
// cover and deactivates the linked entitlement.
func (uc *RenewAssignmentsUseCase) expireWithoutRenewal(
	ctx context.Context,
	a *assignment.CreditAssignment,
	now time.Time,
	log logger.Interface,
) bool {
	entitlementID := a.EntitlementID()

	if err := a.Expire(now); err != nil {
		log.Warnw("failed to expire assignment", "error", err)
		return false
	}
	if err := uc.assignmentRepo.Update(ctx, a); err != nil {
		log.Errorw("failed to persist assignment expiry", "error", err)
		return false
	}

	uc.revokeEntitlement(ctx, entitlementID, log)

	log.Infow("assignment expired: insufficient credits for renewal")
	return false
}

func (uc *RenewAssignmentsUseCase) revokeEntitlement(ctx context.Context, entitlementID *uint, log logger.Interface) {
	if entitlementID == nil {
		return
	}
	if err := uc.entitlements.Revoke(ctx, *entitlementID); err != nil {
		log.Errorw("failed to revoke entitlement for expired assignment",
			"entitlement_id", *entitlementID, "error", err)
		if uc.notifier != nil {
			uc.notifier.NotifyInconsistency(ctx, "entitlement revoke failed",
				fmt.Sprintf("entitlement %d still active after assignment expiry", *entitlementID))
		}
	}
}
