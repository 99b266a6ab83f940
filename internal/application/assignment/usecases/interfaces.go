package usecases

import (
	"context"
	"time"

	"mentora/internal/domain/credit"
)

// EntitlementService is the downstream synchronizer for startup entitlement
// records. Grant creates or updates the startup's single entitlement row;
// it never duplicates.
type EntitlementService interface {
	Grant(ctx context.Context, startupID uint, tier string, periodStart, periodEnd time.Time, paidByAdvisorID uint) (uint, error)
	Revoke(ctx context.Context, entitlementID uint) error
	HasValidEntitlement(ctx context.Context, startupID uint, at time.Time) (bool, error)
}

// CreditLedger is the privileged balance mutation boundary this context
// consumes. Reserve and Release are internal-only operations; they are never
// exposed to external callers directly.
type CreditLedger interface {
	GetAccount(ctx context.Context, advisorID uint) (*credit.CreditAccount, error)
	Reserve(ctx context.Context, advisorID uint, amount int) (*credit.CreditAccount, error)
	Release(ctx context.Context, advisorID uint, amount int) error
}

// OperatorNotifier is a best-effort sink for operator visibility. It is never
// on the critical path; implementations log their own failures.
type OperatorNotifier interface {
	NotifySweepCompleted(ctx context.Context, renewed, failed int)
	NotifyInconsistency(ctx context.Context, subject, detail string)
}
