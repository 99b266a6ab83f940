package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentora/internal/domain/assignment"
	"mentora/internal/domain/credit"
	"mentora/internal/shared/logger"
)

// =====================================================================
// Fakes
// =====================================================================

type fakeAssignmentRepo struct {
	rows      map[uint]*assignment.CreditAssignment
	nextID    uint
	createErr error
	updateErr error
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{rows: map[uint]*assignment.CreditAssignment{}, nextID: 1}
}

func (r *fakeAssignmentRepo) Create(ctx context.Context, a *assignment.CreditAssignment) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, row := range r.rows {
		if row.Status() == assignment.StatusActive &&
			row.AdvisorID() == a.AdvisorID() && row.StartupID() == a.StartupID() {
			return assignment.ErrDuplicateActiveAssignment
		}
	}
	if err := a.SetID(r.nextID); err != nil {
		return err
	}
	r.nextID++
	copied := *a
	r.rows[a.ID()] = &copied
	return nil
}

func (r *fakeAssignmentRepo) Update(ctx context.Context, a *assignment.CreditAssignment) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.rows[a.ID()]
	if !ok {
		return assignment.ErrAssignmentNotFound
	}
	// Same conditional write as the real store: the incoming aggregate must
	// have been loaded at exactly the stored version.
	if stored.Version() != a.Version()-1 {
		return assignment.ErrVersionConflict
	}
	copied := *a
	r.rows[a.ID()] = &copied
	return nil
}

func (r *fakeAssignmentRepo) Delete(ctx context.Context, id uint) error {
	delete(r.rows, id)
	return nil
}

func (r *fakeAssignmentRepo) GetByID(ctx context.Context, id uint) (*assignment.CreditAssignment, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (r *fakeAssignmentRepo) GetActiveByPair(ctx context.Context, advisorID, startupID uint) (*assignment.CreditAssignment, error) {
	for _, row := range r.rows {
		if row.Status() == assignment.StatusActive &&
			row.AdvisorID() == advisorID && row.StartupID() == startupID {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAssignmentRepo) GetLatestRetiredByPair(ctx context.Context, advisorID, startupID uint) (*assignment.CreditAssignment, error) {
	var latest *assignment.CreditAssignment
	for _, row := range r.rows {
		if !row.Status().IsRetired() ||
			row.AdvisorID() != advisorID || row.StartupID() != startupID {
			continue
		}
		if latest == nil || row.UpdatedAt().After(latest.UpdatedAt()) {
			latest = row
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeAssignmentRepo) ListByAdvisor(ctx context.Context, advisorID uint) ([]*assignment.CreditAssignment, error) {
	var out []*assignment.CreditAssignment
	for _, row := range r.rows {
		if row.AdvisorID() == advisorID {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) FindRenewable(ctx context.Context, until time.Time) ([]*assignment.CreditAssignment, error) {
	var out []*assignment.CreditAssignment
	for _, row := range r.rows {
		if row.Status() == assignment.StatusActive && row.AutoRenewEnabled() &&
			!row.EndDate().After(until) {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeLedger struct {
	account      *credit.CreditAccount
	reserveCalls int
	releaseCalls int
}

func newFakeLedger(t *testing.T, advisorID uint, credits int) *fakeLedger {
	t.Helper()
	account, err := credit.NewCreditAccount(advisorID)
	require.NoError(t, err)
	if credits > 0 {
		require.NoError(t, account.Grant(credits, int64(credits)*5000, "USD", time.Now()))
	}
	return &fakeLedger{account: account}
}

func (l *fakeLedger) GetAccount(ctx context.Context, advisorID uint) (*credit.CreditAccount, error) {
	return l.account, nil
}

func (l *fakeLedger) Reserve(ctx context.Context, advisorID uint, amount int) (*credit.CreditAccount, error) {
	l.reserveCalls++
	if err := l.account.Reserve(amount); err != nil {
		return nil, err
	}
	return l.account, nil
}

func (l *fakeLedger) Release(ctx context.Context, advisorID uint, amount int) error {
	l.releaseCalls++
	return l.account.Release(amount)
}

type fakeEntitlements struct {
	nextID   uint
	grantErr error
	entitled bool
	grants   []uint
	revoked  []uint
}

func (e *fakeEntitlements) Grant(ctx context.Context, startupID uint, tier string, periodStart, periodEnd time.Time, paidByAdvisorID uint) (uint, error) {
	if e.grantErr != nil {
		return 0, e.grantErr
	}
	e.nextID++
	e.grants = append(e.grants, startupID)
	return e.nextID, nil
}

func (e *fakeEntitlements) Revoke(ctx context.Context, entitlementID uint) error {
	e.revoked = append(e.revoked, entitlementID)
	return nil
}

func (e *fakeEntitlements) HasValidEntitlement(ctx context.Context, startupID uint, at time.Time) (bool, error) {
	return e.entitled, nil
}

// =====================================================================
// AssignCredit
// =====================================================================

func TestAssignCredit_FreshGrant(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 2)
	entitlements := &fakeEntitlements{}
	uc := NewAssignCreditUseCase(repo, ledger, entitlements, logger.NewLogger())

	result, err := uc.Execute(context.Background(), AssignCreditCommand{
		AdvisorID:         1,
		StartupID:         2,
		EnableAutoRenewal: true,
	})
	require.NoError(t, err)

	assert.True(t, result.CreditSpent)
	assert.Equal(t, 1, result.CreditsAvailable)
	assert.Equal(t, result.StartDate.AddDate(0, 1, 0), result.EndDate)

	row, err := repo.GetActiveByPair(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.True(t, row.AutoRenewEnabled())
	require.NotNil(t, row.EntitlementID())

	assert.Equal(t, []uint{2}, entitlements.grants)
	assert.Equal(t, 1, ledger.reserveCalls)
	assert.Zero(t, ledger.releaseCalls)
}

func TestAssignCredit_InsufficientBalance(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 0)
	uc := NewAssignCreditUseCase(repo, ledger, &fakeEntitlements{}, logger.NewLogger())

	_, err := uc.Execute(context.Background(), AssignCreditCommand{AdvisorID: 1, StartupID: 2})
	assert.ErrorIs(t, err, credit.ErrInsufficientCredits)
	assert.Empty(t, repo.rows)
}

func TestAssignCredit_StartupAlreadyEntitled(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 5)
	uc := NewAssignCreditUseCase(repo, ledger, &fakeEntitlements{entitled: true}, logger.NewLogger())

	_, err := uc.Execute(context.Background(), AssignCreditCommand{AdvisorID: 1, StartupID: 2})
	assert.ErrorIs(t, err, assignment.ErrAlreadyEntitled)
	assert.Zero(t, ledger.reserveCalls)
	assert.Equal(t, 5, ledger.account.CreditsAvailable())
}

func TestAssignCredit_IdempotentReassignment(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 2)
	uc := NewAssignCreditUseCase(repo, ledger, &fakeEntitlements{}, logger.NewLogger())

	first, err := uc.Execute(context.Background(), AssignCreditCommand{
		AdvisorID: 1, StartupID: 2, EnableAutoRenewal: false,
	})
	require.NoError(t, err)
	require.True(t, first.CreditSpent)

	second, err := uc.Execute(context.Background(), AssignCreditCommand{
		AdvisorID: 1, StartupID: 2, EnableAutoRenewal: true,
	})
	require.NoError(t, err)

	assert.False(t, second.CreditSpent)
	assert.Equal(t, first.AssignmentID, second.AssignmentID)
	assert.Equal(t, 1, ledger.reserveCalls)
	assert.Equal(t, 1, ledger.account.CreditsAvailable())

	row, _ := repo.GetActiveByPair(context.Background(), 1, 2)
	assert.True(t, row.AutoRenewEnabled())
}

func TestAssignCredit_TwoStartupsSpendTwoCredits(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 2)
	uc := NewAssignCreditUseCase(repo, ledger, &fakeEntitlements{}, logger.NewLogger())

	for _, startupID := range []uint{10, 11} {
		result, err := uc.Execute(context.Background(), AssignCreditCommand{
			AdvisorID: 1, StartupID: startupID,
		})
		require.NoError(t, err)
		assert.True(t, result.CreditSpent)
	}

	assert.Equal(t, 0, ledger.account.CreditsAvailable())
	assert.Equal(t, 2, ledger.account.CreditsUsed())

	_, err := uc.Execute(context.Background(), AssignCreditCommand{AdvisorID: 1, StartupID: 12})
	assert.ErrorIs(t, err, credit.ErrInsufficientCredits)
}

func TestAssignCredit_CompensationOnEntitlementFailure(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 2)
	entitlements := &fakeEntitlements{grantErr: assert.AnError}
	uc := NewAssignCreditUseCase(repo, ledger, entitlements, logger.NewLogger())

	_, err := uc.Execute(context.Background(), AssignCreditCommand{AdvisorID: 1, StartupID: 2})
	require.Error(t, err)

	// The inserted row is gone and the reserved credit came back.
	assert.Empty(t, repo.rows)
	assert.Equal(t, 1, ledger.releaseCalls)
	assert.Equal(t, 2, ledger.account.CreditsAvailable())
	assert.Equal(t, 0, ledger.account.CreditsUsed())
	require.NoError(t, ledger.account.Validate())
}

func TestAssignCredit_CompensationRevertsReusedRow(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 2)
	entitlements := &fakeEntitlements{}
	uc := NewAssignCreditUseCase(repo, ledger, entitlements, logger.NewLogger())

	// Seed a retired row by granting and expiring.
	first, err := uc.Execute(context.Background(), AssignCreditCommand{AdvisorID: 1, StartupID: 2})
	require.NoError(t, err)
	row, _ := repo.GetByID(context.Background(), first.AssignmentID)
	require.NoError(t, row.Expire(row.EndDate()))
	require.NoError(t, repo.Update(context.Background(), row))

	entitlements.grantErr = assert.AnError
	_, err = uc.Execute(context.Background(), AssignCreditCommand{AdvisorID: 1, StartupID: 2})
	require.Error(t, err)

	// The retired row was reactivated and then reverted, not deleted. The
	// revert must land through the version-conditional write, which means it
	// has to target the version the reactivation left behind.
	reverted, _ := repo.GetByID(context.Background(), first.AssignmentID)
	require.NotNil(t, reverted)
	assert.Equal(t, assignment.StatusExpired, reverted.Status())
	active, _ := repo.GetActiveByPair(context.Background(), 1, 2)
	assert.Nil(t, active)
	assert.Equal(t, 1, ledger.account.CreditsAvailable())
	require.NoError(t, ledger.account.Validate())

	// The pair is not wedged: once granting works again, a retry spends the
	// credit and entitles the startup instead of short-circuiting on a
	// half-reactivated row.
	entitlements.grantErr = nil
	retried, err := uc.Execute(context.Background(), AssignCreditCommand{AdvisorID: 1, StartupID: 2})
	require.NoError(t, err)
	assert.True(t, retried.CreditSpent)
	assert.Equal(t, []uint{2, 2}, entitlements.grants)
	assert.Equal(t, 0, ledger.account.CreditsAvailable())
}

func TestAssignCredit_SameFlagReassignmentSkipsWrite(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 2)
	uc := NewAssignCreditUseCase(repo, ledger, &fakeEntitlements{}, logger.NewLogger())

	first, err := uc.Execute(context.Background(), AssignCreditCommand{
		AdvisorID: 1, StartupID: 2, EnableAutoRenewal: true,
	})
	require.NoError(t, err)

	// Re-sending the same flag must not produce a no-op conditional write,
	// which the store would reject as a version conflict.
	second, err := uc.Execute(context.Background(), AssignCreditCommand{
		AdvisorID: 1, StartupID: 2, EnableAutoRenewal: true,
	})
	require.NoError(t, err)
	assert.False(t, second.CreditSpent)
	assert.Equal(t, first.AssignmentID, second.AssignmentID)
}

func TestAssignCredit_ReusesRetiredRow(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 3)
	uc := NewAssignCreditUseCase(repo, ledger, &fakeEntitlements{}, logger.NewLogger())

	first, err := uc.Execute(context.Background(), AssignCreditCommand{AdvisorID: 1, StartupID: 2})
	require.NoError(t, err)

	row, _ := repo.GetByID(context.Background(), first.AssignmentID)
	require.NoError(t, row.Expire(row.EndDate()))
	require.NoError(t, repo.Update(context.Background(), row))

	second, err := uc.Execute(context.Background(), AssignCreditCommand{AdvisorID: 1, StartupID: 2})
	require.NoError(t, err)

	assert.True(t, second.CreditSpent)
	assert.Equal(t, first.AssignmentID, second.AssignmentID)
	assert.Len(t, repo.rows, 1)
}

func TestAssignCredit_RenewalStartAnchorsWindow(t *testing.T) {
	repo := newFakeAssignmentRepo()
	ledger := newFakeLedger(t, 1, 2)
	// The pair's previous entitlement is still running; the renewal re-entry
	// must not be refused for it.
	entitlements := &fakeEntitlements{entitled: true}
	uc := NewAssignCreditUseCase(repo, ledger, entitlements, logger.NewLogger())

	prevEnd := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	result, err := uc.Execute(context.Background(), AssignCreditCommand{
		AdvisorID: 1,
		StartupID: 2,
		StartAt:   &prevEnd,
	})
	require.NoError(t, err)

	assert.True(t, result.CreditSpent)
	assert.Equal(t, prevEnd, result.StartDate)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), result.EndDate)
}

func TestAssignCredit_MissingIDs(t *testing.T) {
	uc := NewAssignCreditUseCase(newFakeAssignmentRepo(), newFakeLedger(t, 1, 1), &fakeEntitlements{}, logger.NewLogger())

	_, err := uc.Execute(context.Background(), AssignCreditCommand{AdvisorID: 0, StartupID: 2})
	assert.Error(t, err)

	_, err = uc.Execute(context.Background(), AssignCreditCommand{AdvisorID: 1, StartupID: 0})
	assert.Error(t, err)
}
