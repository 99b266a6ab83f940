package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentora/internal/domain/assignment"
	"mentora/internal/shared/logger"
)

type fakeNotifier struct {
	sweeps          []RenewalSweepResult
	inconsistencies []string
}

func (n *fakeNotifier) NotifySweepCompleted(ctx context.Context, renewed, failed int) {
	n.sweeps = append(n.sweeps, RenewalSweepResult{Renewed: renewed, Failed: failed})
}

func (n *fakeNotifier) NotifyInconsistency(ctx context.Context, subject, detail string) {
	n.inconsistencies = append(n.inconsistencies, subject)
}

func seedExpiringAssignment(t *testing.T, repo *fakeAssignmentRepo, advisorID, startupID uint, endsIn time.Duration) *assignment.CreditAssignment {
	t.Helper()
	end := time.Now().Add(endsIn)
	a, err := assignment.NewCreditAssignment(advisorID, startupID, end.AddDate(0, -1, 0), end, true)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func newSweep(repo *fakeAssignmentRepo, ledger *fakeLedger, entitlements *fakeEntitlements, lookahead time.Duration) *RenewAssignmentsUseCase {
	log := logger.NewLogger()
	assignUC := NewAssignCreditUseCase(repo, ledger, entitlements, log)
	return NewRenewAssignmentsUseCase(repo, ledger, entitlements, assignUC, lookahead, log)
}

func TestRenewAssignments_RenewsExpiring(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 2)
	entitlements := &fakeEntitlements{entitled: true}
	uc := newSweep(repo, ledger, entitlements, 72*time.Hour)
	notifier := &fakeNotifier{}
	uc.SetNotifier(notifier)

	seeded := seedExpiringAssignment(t, repo, 1, 2, 24*time.Hour)
	prevEnd := seeded.EndDate()

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Renewed)
	assert.Zero(t, result.Failed)

	// One credit went out and the window is anchored at the previous end date.
	assert.Equal(t, 1, ledger.account.CreditsAvailable())
	renewed, _ := repo.GetActiveByPair(context.Background(), 1, 2)
	require.NotNil(t, renewed)
	assert.True(t, renewed.StartDate().Equal(prevEnd))
	assert.True(t, renewed.EndDate().Equal(prevEnd.AddDate(0, 1, 0)))
	assert.True(t, renewed.AutoRenewEnabled())

	require.Len(t, notifier.sweeps, 1)
	assert.Equal(t, RenewalSweepResult{Renewed: 1, Failed: 0}, notifier.sweeps[0])
}

func TestRenewAssignments_ExpiresWithoutBalance(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 0)
	entitlements := &fakeEntitlements{}
	uc := newSweep(repo, ledger, entitlements, 72*time.Hour)

	seeded := seedExpiringAssignment(t, repo, 1, 2, 24*time.Hour)
	entitlementID := uint(77)
	row, _ := repo.GetByID(context.Background(), seeded.ID())
	require.NoError(t, row.LinkEntitlement(entitlementID))
	require.NoError(t, repo.Update(context.Background(), row))

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Renewed)
	assert.Equal(t, 1, result.Failed)

	expired, _ := repo.GetByID(context.Background(), seeded.ID())
	assert.Equal(t, assignment.StatusExpired, expired.Status())
	assert.False(t, expired.AutoRenewEnabled())
	assert.Equal(t, []uint{entitlementID}, entitlements.revoked)
}

func TestRenewAssignments_SkipsRowsOutsideLookahead(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 5)
	uc := newSweep(repo, ledger, &fakeEntitlements{}, 72*time.Hour)

	seedExpiringAssignment(t, repo, 1, 2, 30*24*time.Hour)

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Renewed)
	assert.Zero(t, result.Failed)
	assert.Equal(t, 5, ledger.account.CreditsAvailable())
}

func TestRenewAssignments_OneFailureDoesNotBlockBatch(t *testing.T) {
	repo := newFakeAssignmentRepo()
	// Balance covers only one of the two renewals.
	ledger := newFakeLedger(t, 1, 1)
	uc := newSweep(repo, ledger, &fakeEntitlements{}, 72*time.Hour)

	seedExpiringAssignment(t, repo, 1, 2, 24*time.Hour)
	seedExpiringAssignment(t, repo, 1, 3, 24*time.Hour)

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Renewed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, ledger.account.CreditsAvailable())
}

func TestRenewAssignments_RerunIsIdempotent(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 5)
	uc := newSweep(repo, ledger, &fakeEntitlements{}, 72*time.Hour)

	seedExpiringAssignment(t, repo, 1, 2, 24*time.Hour)

	first, err := uc.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Renewed)

	// The renewed row's end date is a month out, so a second sweep finds
	// nothing and spends nothing.
	second, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Renewed)
	assert.Zero(t, second.Failed)
	assert.Equal(t, 4, ledger.account.CreditsAvailable())
}
