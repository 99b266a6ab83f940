package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentora/internal/application/credit/services"
	"mentora/internal/domain/credit"
	"mentora/internal/domain/pricing"
	"mentora/internal/domain/recurring"
	"mentora/internal/shared/logger"
)

// =====================================================================
// Fakes
// =====================================================================

// fakeSubscriptionRepo stores value copies and enforces the same
// version-conditional write as the real store. conflicts injects that many
// ErrVersionConflict results before writes succeed again.
type fakeSubscriptionRepo struct {
	subs      map[string]*recurring.CreditSubscription
	nextID    uint
	conflicts int
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: map[string]*recurring.CreditSubscription{}, nextID: 1}
}

func subKey(gateway, ref string) string {
	return gateway + "|" + ref
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, s *recurring.CreditSubscription) error {
	key := subKey(s.Gateway(), s.GatewaySubscriptionRef())
	if _, ok := r.subs[key]; ok {
		return recurring.ErrDuplicateSubscriptionRef
	}
	if err := s.SetID(r.nextID); err != nil {
		return err
	}
	r.nextID++
	copied := *s
	r.subs[key] = &copied
	return nil
}

func (r *fakeSubscriptionRepo) Update(ctx context.Context, s *recurring.CreditSubscription) error {
	if r.conflicts > 0 {
		r.conflicts--
		return recurring.ErrVersionConflict
	}
	key := subKey(s.Gateway(), s.GatewaySubscriptionRef())
	stored, ok := r.subs[key]
	if !ok {
		return recurring.ErrSubscriptionNotFound
	}
	if stored.Version() != s.Version()-1 {
		return recurring.ErrVersionConflict
	}
	copied := *s
	r.subs[key] = &copied
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(ctx context.Context, id uint) (*recurring.CreditSubscription, error) {
	for _, stored := range r.subs {
		if stored.ID() == id {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) GetByGatewayRef(ctx context.Context, gateway, ref string) (*recurring.CreditSubscription, error) {
	stored, ok := r.subs[subKey(gateway, ref)]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeSubscriptionRepo) ListByAdvisor(ctx context.Context, advisorID uint) ([]*recurring.CreditSubscription, error) {
	var out []*recurring.CreditSubscription
	for _, stored := range r.subs {
		if stored.AdvisorID() == advisorID {
			copied := *stored
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakePlanRepo struct {
	plans map[string]*pricing.CreditPlan
}

func newFakePlanRepo(t *testing.T) *fakePlanRepo {
	t.Helper()
	plan, err := pricing.NewCreditPlan("starter-10", "Starter", "US", 10, 90000, "USD")
	require.NoError(t, err)
	require.NoError(t, plan.SetID(7))
	return &fakePlanRepo{plans: map[string]*pricing.CreditPlan{plan.Code(): plan}}
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id uint) (*pricing.CreditPlan, error) {
	for _, p := range r.plans {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, pricing.ErrPlanNotFound
}

func (r *fakePlanRepo) GetByCode(ctx context.Context, code string) (*pricing.CreditPlan, error) {
	p, ok := r.plans[code]
	if !ok {
		return nil, pricing.ErrPlanNotFound
	}
	return p, nil
}

func (r *fakePlanRepo) ListByCountry(ctx context.Context, country string) ([]*pricing.CreditPlan, error) {
	var out []*pricing.CreditPlan
	for _, p := range r.plans {
		if p.Country() == country && p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) Create(ctx context.Context, p *pricing.CreditPlan) error {
	r.plans[p.Code()] = p
	return nil
}

type fakeAccountRepo struct {
	accounts  map[uint]*credit.CreditAccount
	nextID    uint
	updateErr error
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
	if r.updateErr != nil {
		return r.updateErr
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
	stored, ok := r.accounts[advisorID]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

type fakeHistoryRepo struct {
	entries map[string]*credit.PurchaseHistoryEntry
	nextID  uint
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{entries: map[string]*credit.PurchaseHistoryEntry{}, nextID: 1}
}

func (r *fakeHistoryRepo) Create(ctx context.Context, entry *credit.PurchaseHistoryEntry) error {
	key := subKey(entry.Gateway(), entry.TransactionID())
	if _, ok := r.entries[key]; ok {
		return credit.ErrDuplicateTransaction
	}
	if err := entry.SetID(r.nextID); err != nil {
		return err
	}
	r.nextID++
	copied := *entry
	r.entries[key] = &copied
	return nil
}

func (r *fakeHistoryRepo) UpdateStatus(ctx context.Context, entry *credit.PurchaseHistoryEntry) error {
	key := subKey(entry.Gateway(), entry.TransactionID())
	if _, ok := r.entries[key]; !ok {
		return credit.ErrPurchaseEntryNotFound
	}
	copied := *entry
	r.entries[key] = &copied
	return nil
}

func (r *fakeHistoryRepo) Delete(ctx context.Context, id uint) error {
	for key, stored := range r.entries {
		if stored.ID() == id {
			delete(r.entries, key)
			return nil
		}
	}
	return credit.ErrPurchaseEntryNotFound
}

func (r *fakeHistoryRepo) GetByTransactionID(ctx context.Context, gateway, transactionID string) (*credit.PurchaseHistoryEntry, error) {
	stored, ok := r.entries[subKey(gateway, transactionID)]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeHistoryRepo) ListByAdvisor(ctx context.Context, advisorID uint, limit, offset int) ([]*credit.PurchaseHistoryEntry, error) {
	var out []*credit.PurchaseHistoryEntry
	for _, stored := range r.entries {
		if stored.AdvisorID() == advisorID {
			copied := *stored
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeOperatorNotifier struct {
	billingFailures []string
	inconsistencies []string
}

func (n *fakeOperatorNotifier) NotifyBillingFailure(ctx context.Context, advisorID uint, gateway, ref, reason string) {
	n.billingFailures = append(n.billingFailures, ref)
}

func (n *fakeOperatorNotifier) NotifyInconsistency(ctx context.Context, subject, detail string) {
	n.inconsistencies = append(n.inconsistencies, subject)
}

// =====================================================================
// ProcessBillingCycle
// =====================================================================

func seedSubscription(t *testing.T, repo *fakeSubscriptionRepo) *recurring.CreditSubscription {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sub, err := recurring.NewCreditSubscription(
		1, 7, 10, 90000, "USD", "razorpay", "sub_abc",
		start, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), sub))
	return sub
}

func billingCmd() ProcessBillingCycleCommand {
	return ProcessBillingCycleCommand{
		Gateway:                "razorpay",
		GatewaySubscriptionRef: "sub_abc",
		TransactionID:          "pay_cycle_001",
		AmountPaid:             90000,
		Currency:               "USD",
	}
}

func TestProcessBillingCycle_GrantsAndAdvances(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	historyRepo := newFakeHistoryRepo()
	accountRepo := newFakeAccountRepo()
	ledger := services.NewLedger(accountRepo, logger.NewLogger())
	uc := NewProcessBillingCycleUseCase(subRepo, historyRepo, ledger, logger.NewLogger())

	seeded := seedSubscription(t, subRepo)
	prevEnd := seeded.CurrentPeriodEnd()

	result, err := uc.Execute(context.Background(), billingCmd())
	require.NoError(t, err)

	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, 10, result.CreditsGranted)
	assert.Equal(t, 10, result.CreditsAvailable)
	assert.True(t, result.PeriodStart.Equal(prevEnd))
	assert.True(t, result.PeriodEnd.Equal(prevEnd.AddDate(0, 1, 0)))

	account, _ := accountRepo.GetByAdvisorID(context.Background(), 1)
	require.NotNil(t, account)
	assert.Equal(t, 10, account.CreditsAvailable())

	entry, _ := historyRepo.GetByTransactionID(context.Background(), "razorpay", "pay_cycle_001")
	require.NotNil(t, entry)
	assert.Equal(t, credit.PurchaseStatusCompleted, entry.Status())
}

func TestProcessBillingCycle_RedeliveryGrantsOnce(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	historyRepo := newFakeHistoryRepo()
	accountRepo := newFakeAccountRepo()
	ledger := services.NewLedger(accountRepo, logger.NewLogger())
	uc := NewProcessBillingCycleUseCase(subRepo, historyRepo, ledger, logger.NewLogger())

	seedSubscription(t, subRepo)

	first, err := uc.Execute(context.Background(), billingCmd())
	require.NoError(t, err)
	require.False(t, first.AlreadyProcessed)

	second, err := uc.Execute(context.Background(), billingCmd())
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)

	account, _ := accountRepo.GetByAdvisorID(context.Background(), 1)
	assert.Equal(t, 10, account.CreditsAvailable())

	stored, _ := subRepo.GetByGatewayRef(context.Background(), "razorpay", "sub_abc")
	assert.Equal(t, 1, stored.BillingCycleCount())
}

func TestProcessBillingCycle_PeriodAdvanceRetriesOnConflict(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	historyRepo := newFakeHistoryRepo()
	accountRepo := newFakeAccountRepo()
	ledger := services.NewLedger(accountRepo, logger.NewLogger())
	uc := NewProcessBillingCycleUseCase(subRepo, historyRepo, ledger, logger.NewLogger())

	seedSubscription(t, subRepo)

	// A concurrent writer bumps the row once; the advance re-reads and lands.
	subRepo.conflicts = 1
	result, err := uc.Execute(context.Background(), billingCmd())
	require.NoError(t, err)

	assert.Equal(t, 10, result.CreditsGranted)
	stored, _ := subRepo.GetByGatewayRef(context.Background(), "razorpay", "sub_abc")
	assert.Equal(t, 1, stored.BillingCycleCount())
}

func TestProcessBillingCycle_AdvanceFailureUnblocksRedelivery(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	historyRepo := newFakeHistoryRepo()
	accountRepo := newFakeAccountRepo()
	ledger := services.NewLedger(accountRepo, logger.NewLogger())
	uc := NewProcessBillingCycleUseCase(subRepo, historyRepo, ledger, logger.NewLogger())
	notifier := &fakeOperatorNotifier{}
	uc.SetNotifier(notifier)

	seedSubscription(t, subRepo)

	// Every write conflicts, so the period never advances and no credits land.
	subRepo.conflicts = 3
	_, err := uc.Execute(context.Background(), billingCmd())
	assert.ErrorIs(t, err, credit.ErrContention)
	assert.Len(t, notifier.inconsistencies, 1)

	// Nothing was applied, so the barrier entry must be gone: leaving it in
	// place would answer the gateway's retry with "already processed" and
	// silently drop a paid cycle.
	entry, getErr := historyRepo.GetByTransactionID(context.Background(), "razorpay", "pay_cycle_001")
	require.NoError(t, getErr)
	assert.Nil(t, entry)

	// The redelivered webhook applies the cycle.
	result, err := uc.Execute(context.Background(), billingCmd())
	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, 10, result.CreditsGranted)

	stored, _ := subRepo.GetByGatewayRef(context.Background(), "razorpay", "sub_abc")
	assert.Equal(t, 1, stored.BillingCycleCount())
	account, _ := accountRepo.GetByAdvisorID(context.Background(), 1)
	assert.Equal(t, 10, account.CreditsAvailable())
}

func TestProcessBillingCycle_UnknownSubscription(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	uc := NewProcessBillingCycleUseCase(subRepo, newFakeHistoryRepo(),
		services.NewLedger(newFakeAccountRepo(), logger.NewLogger()), logger.NewLogger())
	notifier := &fakeOperatorNotifier{}
	uc.SetNotifier(notifier)

	_, err := uc.Execute(context.Background(), billingCmd())
	assert.ErrorIs(t, err, recurring.ErrSubscriptionNotFound)
	assert.Len(t, notifier.inconsistencies, 1)
}

func TestProcessBillingCycle_GrantFailureFlagsInconsistency(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	historyRepo := newFakeHistoryRepo()
	accountRepo := newFakeAccountRepo()
	ledger := services.NewLedger(accountRepo, logger.NewLogger())
	uc := NewProcessBillingCycleUseCase(subRepo, historyRepo, ledger, logger.NewLogger())
	notifier := &fakeOperatorNotifier{}
	uc.SetNotifier(notifier)

	seedSubscription(t, subRepo)

	// The grant's CAS writes always fail; the period advance already happened.
	account, err := credit.NewCreditAccount(1)
	require.NoError(t, err)
	require.NoError(t, accountRepo.Create(context.Background(), account))
	accountRepo.updateErr = credit.ErrVersionConflict

	_, err = uc.Execute(context.Background(), billingCmd())
	require.Error(t, err)

	assert.Len(t, notifier.inconsistencies, 1)

	entry, _ := historyRepo.GetByTransactionID(context.Background(), "razorpay", "pay_cycle_001")
	require.NotNil(t, entry)
	assert.Equal(t, credit.PurchaseStatusFailed, entry.Status())
}

func TestProcessBillingCycle_MissingTransactionID(t *testing.T) {
	uc := NewProcessBillingCycleUseCase(newFakeSubscriptionRepo(), newFakeHistoryRepo(),
		services.NewLedger(newFakeAccountRepo(), logger.NewLogger()), logger.NewLogger())

	cmd := billingCmd()
	cmd.TransactionID = ""
	_, err := uc.Execute(context.Background(), cmd)
	assert.Error(t, err)
}

// =====================================================================
// CreateSubscription
// =====================================================================

func TestCreateSubscription_Registers(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	uc := NewCreateSubscriptionUseCase(subRepo, newFakePlanRepo(t), logger.NewLogger())

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	result, err := uc.Execute(context.Background(), CreateSubscriptionCommand{
		AdvisorID:              1,
		PlanCode:               "starter-10",
		Gateway:                "razorpay",
		GatewaySubscriptionRef: "sub_abc",
		PeriodStart:            start,
	})
	require.NoError(t, err)

	assert.False(t, result.AlreadyExists)
	assert.Equal(t, uint(7), result.PlanID)
	assert.Equal(t, 10, result.CreditsPerMonth)
	assert.True(t, result.PeriodEnd.Equal(start.AddDate(0, 1, 0)))
}

func TestCreateSubscription_RedeliveryReturnsExisting(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	uc := NewCreateSubscriptionUseCase(subRepo, newFakePlanRepo(t), logger.NewLogger())

	cmd := CreateSubscriptionCommand{
		AdvisorID:              1,
		PlanCode:               "starter-10",
		Gateway:                "razorpay",
		GatewaySubscriptionRef: "sub_abc",
	}

	first, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)

	assert.True(t, second.AlreadyExists)
	assert.Equal(t, first.SubscriptionID, second.SubscriptionID)
	assert.Len(t, subRepo.subs, 1)
}

func TestCreateSubscription_InactivePlan(t *testing.T) {
	planRepo := newFakePlanRepo(t)
	planRepo.plans["starter-10"].Deactivate()
	uc := NewCreateSubscriptionUseCase(newFakeSubscriptionRepo(), planRepo, logger.NewLogger())

	_, err := uc.Execute(context.Background(), CreateSubscriptionCommand{
		AdvisorID:              1,
		PlanCode:               "starter-10",
		Gateway:                "razorpay",
		GatewaySubscriptionRef: "sub_abc",
	})
	assert.Error(t, err)
}

func TestCreateSubscription_UnknownPlan(t *testing.T) {
	uc := NewCreateSubscriptionUseCase(newFakeSubscriptionRepo(), newFakePlanRepo(t), logger.NewLogger())

	_, err := uc.Execute(context.Background(), CreateSubscriptionCommand{
		AdvisorID:              1,
		PlanCode:               "missing",
		Gateway:                "razorpay",
		GatewaySubscriptionRef: "sub_abc",
	})
	assert.ErrorIs(t, err, pricing.ErrPlanNotFound)
}

// =====================================================================
// CancelSubscription / HandleBillingFailure
// =====================================================================

func TestCancelSubscription(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	uc := NewCancelSubscriptionUseCase(subRepo, logger.NewLogger())

	seedSubscription(t, subRepo)

	require.NoError(t, uc.Execute(context.Background(), "razorpay", "sub_abc"))

	stored, _ := subRepo.GetByGatewayRef(context.Background(), "razorpay", "sub_abc")
	assert.Equal(t, recurring.StatusCancelled, stored.Status())

	// A redelivered cancellation is a no-op.
	require.NoError(t, uc.Execute(context.Background(), "razorpay", "sub_abc"))
}

func TestHandleBillingFailure_NotifiesOperator(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	historyRepo := newFakeHistoryRepo()
	uc := NewHandleBillingFailureUseCase(subRepo, historyRepo, logger.NewLogger())
	notifier := &fakeOperatorNotifier{}
	uc.SetNotifier(notifier)

	seedSubscription(t, subRepo)

	err := uc.Execute(context.Background(), HandleBillingFailureCommand{
		Gateway:                "razorpay",
		GatewaySubscriptionRef: "sub_abc",
		TransactionID:          "pay_fail_001",
		AmountDue:              90000,
		Currency:               "USD",
		Reason:                 "card declined",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"sub_abc"}, notifier.billingFailures)

	// The subscription itself is untouched by a failed charge.
	stored, _ := subRepo.GetByGatewayRef(context.Background(), "razorpay", "sub_abc")
	assert.Equal(t, recurring.StatusActive, stored.Status())

	entry, _ := historyRepo.GetByTransactionID(context.Background(), "razorpay", "pay_fail_001")
	require.NotNil(t, entry)
	assert.Equal(t, credit.PurchaseStatusFailed, entry.Status())
}
