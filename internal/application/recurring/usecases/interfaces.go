package usecases

import "context"

// OperatorNotifier surfaces billing anomalies to a human. Implementations are
// best-effort and must never fail the calling flow.
type OperatorNotifier interface {
	NotifyBillingFailure(ctx context.Context, advisorID uint, gateway, ref, reason string)
	NotifyInconsistency(ctx context.Context, subject, detail string)
}
