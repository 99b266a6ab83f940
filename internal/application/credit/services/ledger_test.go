package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentora/internal/domain/credit"
	"mentora/internal/shared/logger"
)

// =====================================================================
// Fakes
// =====================================================================

// fakeAccountRepo stores value copies and enforces the same version-conditional
// write as the real store. conflicts injects that many ErrVersionConflict
// results before writes succeed again; missReads makes that many reads return
// no row, simulating a reader racing an account creation.
type fakeAccountRepo struct {
	accounts  map[uint]*credit.CreditAccount
	nextID    uint
	conflicts int
	missReads int
	updates   int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[uint]*credit.CreditAccount{}, nextID: 1}
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *credit.CreditAccount) error {
	if _, ok := r.accounts[account.AdvisorID()]; ok {
		return credit.ErrVersionConflict
	}
	if err := account.SetID(r.nextID); err != nil {
		return err
	}
	r.nextID++
	copied := *account
	r.accounts[account.AdvisorID()] = &copied
	return nil
}

func (r *fakeAccountRepo) Update(ctx context.Context, account *credit.CreditAccount) error {
	r.updates++
	if r.conflicts > 0 {
		r.conflicts--
		return credit.ErrVersionConflict
	}
	stored, ok := r.accounts[account.AdvisorID()]
	if !ok || stored.Version() != account.Version()-1 {
		return credit.ErrVersionConflict
	}
	copied := *account
	r.accounts[account.AdvisorID()] = &copied
	return nil
}

func (r *fakeAccountRepo) GetByAdvisorID(ctx context.Context, advisorID uint) (*credit.CreditAccount, error) {
	if r.missReads > 0 {
		r.missReads--
		return nil, nil
	}
	stored, ok := r.accounts[advisorID]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func seedAccount(t *testing.T, repo *fakeAccountRepo, advisorID uint, credits int) {
	t.Helper()
	ledger := NewLedger(repo, logger.NewLogger())
	_, err := ledger.AddCredits(context.Background(), advisorID, credits, PurchaseContext{
		Amount: int64(credits) * 5000, Currency: "USD", At: time.Now(),
	})
	require.NoError(t, err)
}

// =====================================================================
// Ledger
// =====================================================================

func TestLedger_AddCredits_RetriesOnVersionConflict(t *testing.T) {
	repo := newFakeAccountRepo()
	ledger := NewLedger(repo, logger.NewLogger())
	seedAccount(t, repo, 1, 5)

	repo.conflicts = 1
	account, err := ledger.AddCredits(context.Background(), 1, 5, PurchaseContext{
		Amount: 25000, Currency: "USD", At: time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, 10, account.CreditsAvailable())
	assert.Equal(t, 10, account.CreditsPurchased())
	// One rejected write, then the re-read cycle landed the grant.
	assert.Equal(t, 2, repo.updates)
	require.NoError(t, account.Validate())
}

func TestLedger_AddCredits_CreateRaceFallsBackToUpdate(t *testing.T) {
	repo := newFakeAccountRepo()
	ledger := NewLedger(repo, logger.NewLogger())
	seedAccount(t, repo, 1, 5)

	// The first read misses the row a concurrent writer just created; the
	// insert loses to the existing row and the retry grants via update.
	repo.missReads = 1
	account, err := ledger.AddCredits(context.Background(), 1, 3, PurchaseContext{
		Amount: 15000, Currency: "USD", At: time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, 8, account.CreditsAvailable())
	assert.Equal(t, 8, account.CreditsPurchased())
}

func TestLedger_Reserve_RetriesOnVersionConflict(t *testing.T) {
	repo := newFakeAccountRepo()
	ledger := NewLedger(repo, logger.NewLogger())
	seedAccount(t, repo, 1, 3)

	repo.conflicts = 1
	account, err := ledger.Reserve(context.Background(), 1, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, account.CreditsAvailable())
	assert.Equal(t, 1, account.CreditsUsed())
	require.NoError(t, account.Validate())
}

func TestLedger_Reserve_ContentionExhaustsRetries(t *testing.T) {
	repo := newFakeAccountRepo()
	ledger := NewLedger(repo, logger.NewLogger())
	seedAccount(t, repo, 1, 3)

	repo.conflicts = 3
	_, err := ledger.Reserve(context.Background(), 1, 1)
	assert.ErrorIs(t, err, credit.ErrContention)

	// The stored balance never moved.
	stored, getErr := repo.GetByAdvisorID(context.Background(), 1)
	require.NoError(t, getErr)
	assert.Equal(t, 3, stored.CreditsAvailable())
	assert.Equal(t, 0, stored.CreditsUsed())
}

func TestLedger_Reserve_MissingAccountIsInsufficient(t *testing.T) {
	ledger := NewLedger(newFakeAccountRepo(), logger.NewLogger())

	_, err := ledger.Reserve(context.Background(), 1, 2)
	assert.ErrorIs(t, err, credit.ErrInsufficientCredits)

	var balance *credit.InsufficientCreditsError
	require.True(t, errors.As(err, &balance))
	assert.Equal(t, 0, balance.Available)
	assert.Equal(t, 2, balance.Required)
}

func TestLedger_Release_ContentionExhaustsRetries(t *testing.T) {
	repo := newFakeAccountRepo()
	ledger := NewLedger(repo, logger.NewLogger())
	seedAccount(t, repo, 1, 3)

	_, err := ledger.Reserve(context.Background(), 1, 2)
	require.NoError(t, err)

	repo.conflicts = 3
	assert.ErrorIs(t, ledger.Release(context.Background(), 1, 2), credit.ErrContention)

	repo.conflicts = 1
	require.NoError(t, ledger.Release(context.Background(), 1, 2))

	stored, _ := repo.GetByAdvisorID(context.Background(), 1)
	assert.Equal(t, 3, stored.CreditsAvailable())
	assert.Equal(t, 0, stored.CreditsUsed())
	require.NoError(t, stored.Validate())
}
