package transaction

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/greenledger/fiscal-backend-go/internal/domain/sequence"
	"github.com/greenledger/fiscal-backend-go/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransactionRepo struct {
	mu      sync.Mutex
	records map[string]transaction.Record
	nextID  int

	createErr error
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{records: make(map[string]transaction.Record)}
}

func (f *fakeTransactionRepo) Create(_ context.Context, record transaction.Record) (transaction.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return transaction.Record{}, f.createErr
	}
	f.nextID++
	record.ID = fmt.Sprintf("txn-%d", f.nextID)
	f.records[record.ID] = record
	return record, nil
}

func (f *fakeTransactionRepo) GetByID(_ context.Context, id, companyID string) (transaction.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok || record.CompanyID != companyID {
		return transaction.Record{}, transaction.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeTransactionRepo) List(_ context.Context, companyID string, _ transaction.Filter) ([]transaction.Record, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []transaction.Record
	for _, r := range f.records {
		if r.CompanyID == companyID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeTransactionRepo) ListByPeriod(_ context.Context, companyID string, start, end time.Time) ([]transaction.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []transaction.Record
	for _, r := range f.records {
		if r.CompanyID == companyID && !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeTransactionRepo) Update(_ context.Context, record transaction.Record) (transaction.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.records[record.ID]
	if !ok {
		return transaction.Record{}, transaction.ErrRecordNotFound
	}
	if existing.Reconciled {
		return transaction.Record{}, transaction.ErrReconciled
	}
	f.records[record.ID] = record
	return record, nil
}

func (f *fakeTransactionRepo) MarkReconciled(_ context.Context, id, companyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok || record.CompanyID != companyID {
		return transaction.ErrRecordNotFound
	}
	record.Reconciled = true
	f.records[id] = record
	return nil
}

type fakeSequenceService struct {
	mu       sync.Mutex
	counters map[string]int64
}

func (f *fakeSequenceService) NextNumber(_ context.Context, companyID, kind, periodKey string, format sequence.Format) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counters == nil {
		f.counters = make(map[string]int64)
	}
	key := companyID + "/" + kind + "/" + periodKey
	f.counters[key]++
	return fmt.Sprintf("%s-%s-%05d", format.Prefix, periodKey, f.counters[key]), nil
}

func newTestService() (Service, *fakeTransactionRepo) {
	repo := newFakeTransactionRepo()
	svc := NewTransactionService(repo, &fakeSequenceService{}, nil, nil)
	return svc, repo
}

func TestTransactionService_Create_DerivesTax(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()

	rate := decimal.NewFromFloat(0.15)
	created, err := svc.Create(context.Background(), "company-1", transaction.CreateRecordRequest{
		Type:      "income",
		Amount:    decimal.NewFromInt(100000),
		IsTaxable: true,
		TaxRate:   &rate,
		Date:      "2025-03-10",
	})
	require.NoError(t, err)

	assert.Equal(t, "TXN-2025-03-00001", created.Number)
	assert.Equal(t, "15000.00", created.TaxAmount.StringFixed(2))
	assert.Equal(t, "115000.00", created.TotalDue.StringFixed(2))
	assert.False(t, created.Reconciled)
}

func TestTransactionService_Create_DefaultRateFromRules(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()

	// No explicit rate: the year's consumption rate applies (15% in fixtures).
	created, err := svc.Create(context.Background(), "company-1", transaction.CreateRecordRequest{
		Type:      "expense",
		Amount:    decimal.NewFromInt(2000),
		IsTaxable: true,
		Date:      "2025-06-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "300.00", created.TaxAmount.StringFixed(2))
}

func TestTransactionService_Create_NonTaxable(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), "company-1", transaction.CreateRecordRequest{
		Type:   "transfer",
		Amount: decimal.NewFromInt(5000),
		Date:   "2025-03-10",
	})
	require.NoError(t, err)
	assert.True(t, created.TaxAmount.IsZero())
	assert.Equal(t, "5000.00", created.TotalDue.StringFixed(2))
}

func TestTransactionService_Create_Invalid(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "company-1", transaction.CreateRecordRequest{
		Type:   "bribe",
		Amount: decimal.NewFromInt(100),
		Date:   "2025-03-10",
	})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), "company-1", transaction.CreateRecordRequest{
		Type:   "income",
		Amount: decimal.NewFromInt(-100),
		Date:   "2025-03-10",
	})
	assert.Error(t, err)
}

func TestTransactionService_ReconcileIsTerminal(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "company-1", transaction.CreateRecordRequest{
		Type:   "income",
		Amount: decimal.NewFromInt(100),
		Date:   "2025-03-10",
	})
	require.NoError(t, err)

	reconciled, err := svc.Reconcile(ctx, "company-1", created.ID)
	require.NoError(t, err)
	assert.True(t, reconciled.Reconciled)

	_, err = svc.Reconcile(ctx, "company-1", created.ID)
	assert.ErrorIs(t, err, transaction.ErrReconciled)

	record, err := repo.GetByID(ctx, created.ID, "company-1")
	require.NoError(t, err)
	record.Description = "edited"
	_, err = repo.Update(ctx, record)
	assert.ErrorIs(t, err, transaction.ErrReconciled)
}

func TestTransactionService_UpdateRecomputesTax(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()
	ctx := context.Background()

	rate := decimal.NewFromFloat(0.15)
	created, err := svc.Create(ctx, "company-1", transaction.CreateRecordRequest{
		Type:      "income",
		Amount:    decimal.NewFromInt(100000),
		IsTaxable: true,
		TaxRate:   &rate,
		Date:      "2025-03-10",
	})
	require.NoError(t, err)

	amount := decimal.NewFromInt(200000)
	updated, err := svc.Update(ctx, "company-1", transaction.UpdateRecordRequest{
		ID:     created.ID,
		Amount: &amount,
	})
	require.NoError(t, err)

	assert.Equal(t, "30000.00", updated.TaxAmount.StringFixed(2))
	assert.Equal(t, "230000.00", updated.TotalDue.StringFixed(2))
	assert.Equal(t, created.Number, updated.Number, "the assigned number never changes")
}

func TestTransactionService_UpdateReconciledRejected(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "company-1", transaction.CreateRecordRequest{
		Type:   "income",
		Amount: decimal.NewFromInt(100),
		Date:   "2025-03-10",
	})
	require.NoError(t, err)

	_, err = svc.Reconcile(ctx, "company-1", created.ID)
	require.NoError(t, err)

	desc := "edited"
	_, err = svc.Update(ctx, "company-1", transaction.UpdateRecordRequest{ID: created.ID, Description: &desc})
	assert.ErrorIs(t, err, transaction.ErrReconciled)
}

func TestTransactionService_CreateInsertFailureAbortsTransaction(t *testing.T) {
	t.Parallel()
	repo := newFakeTransactionRepo()
	repo.createErr = transaction.ErrRecordNotFound
	var rolledBack bool
	runner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		err := fn(ctx)
		if err != nil {
			rolledBack = true
		}
		return err
	}
	svc := NewTransactionService(repo, &fakeSequenceService{}, nil, runner)

	_, err := svc.Create(context.Background(), "company-1", transaction.CreateRecordRequest{
		Type:   "income",
		Amount: decimal.NewFromInt(100),
		Date:   "2025-03-10",
	})
	assert.Error(t, err)
	assert.True(t, rolledBack, "a failed insert must abort the transaction holding the counter increment")
}

func TestTransactionService_CrossCompanyAccessDenied(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), "company-1", transaction.CreateRecordRequest{
		Type:   "income",
		Amount: decimal.NewFromInt(100),
		Date:   "2025-03-10",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "company-2", created.ID)
	assert.ErrorIs(t, err, transaction.ErrRecordNotFound)
}
