package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/greenledger/fiscal-backend-go/internal/domain/company"
	"github.com/greenledger/fiscal-backend-go/internal/domain/employee"
	"github.com/greenledger/fiscal-backend-go/internal/domain/payroll"
	"github.com/greenledger/fiscal-backend-go/internal/domain/report"
	"github.com/greenledger/fiscal-backend-go/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========== FAKES ==========

type fakeTransactionRepo struct {
	records []transaction.Record
	err     error
}

func (f *fakeTransactionRepo) Create(_ context.Context, r transaction.Record) (transaction.Record, error) {
	return r, nil
}

func (f *fakeTransactionRepo) GetByID(_ context.Context, _, _ string) (transaction.Record, error) {
	return transaction.Record{}, transaction.ErrRecordNotFound
}

func (f *fakeTransactionRepo) List(_ context.Context, _ string, _ transaction.Filter) ([]transaction.Record, int64, error) {
	return f.records, int64(len(f.records)), f.err
}

func (f *fakeTransactionRepo) ListByPeriod(_ context.Context, companyID string, start, end time.Time) ([]transaction.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []transaction.Record
	for _, r := range f.records {
		if r.CompanyID == companyID && !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeTransactionRepo) Update(_ context.Context, r transaction.Record) (transaction.Record, error) {
	return r, nil
}

func (f *fakeTransactionRepo) MarkReconciled(_ context.Context, _, _ string) error {
	return nil
}

type fakePayrollRepo struct {
	records []payroll.Record
	err     error
}

func (f *fakePayrollRepo) Create(_ context.Context, r payroll.Record) (payroll.Record, error) {
	return r, nil
}

func (f *fakePayrollRepo) GetByID(_ context.Context, _, _ string) (payroll.Record, error) {
	return payroll.Record{}, payroll.ErrRecordNotFound
}

func (f *fakePayrollRepo) List(_ context.Context, _ string, _ payroll.Filter) ([]payroll.Record, int64, error) {
	return f.records, int64(len(f.records)), f.err
}

func (f *fakePayrollRepo) ListByPeriod(_ context.Context, companyID string, start, end time.Time) ([]payroll.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []payroll.Record
	for _, r := range f.records {
		if r.CompanyID == companyID && !r.Period.Start.Before(start) && !r.Period.Start.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePayrollRepo) Save(_ context.Context, r payroll.Record) (payroll.Record, error) {
	return r, nil
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
	err       error
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, _, _ string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetActiveByCompanyID(_ context.Context, _ string) ([]employee.Employee, error) {
	return f.employees, f.err
}

type fakeCompanyRepo struct {
	company     company.Company
	filings     []company.Filing
	outstanding bool
	err         error
	filingsErr  error
}

func (f *fakeCompanyRepo) GetByID(_ context.Context, _ string) (company.Company, error) {
	return f.company, f.err
}

func (f *fakeCompanyRepo) ListFilings(_ context.Context, _ string, _ int) ([]company.Filing, error) {
	return f.filings, f.filingsErr
}

func (f *fakeCompanyRepo) OutstandingLiability(_ context.Context, _ string) (bool, error) {
	return f.outstanding, nil
}

// ========== HELPERS ==========

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func txn(kind transaction.Type, amount string, taxAmount string, date string) transaction.Record {
	d, _ := time.Parse("2006-01-02", date)
	taxable := taxAmount != ""
	tax := transaction.TaxInfo{IsTaxable: taxable}
	if taxable {
		tax.Amount = dec(taxAmount)
	}
	return transaction.Record{
		CompanyID: "company-1",
		Type:      kind,
		Amount:    dec(amount),
		Tax:       tax,
		Date:      d,
	}
}

func payrollRecord(employeeID string, month int, gross, incomeTax, si, edu, training, pension, net string) payroll.Record {
	start := time.Date(2025, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return payroll.Record{
		CompanyID:  "company-1",
		EmployeeID: employeeID,
		Period: payroll.PayPeriod{
			Start:   start,
			End:     start.AddDate(0, 1, -1),
			Cadence: payroll.CadenceMonthly,
		},
		Earnings: payroll.EarningsBreakdown{
			BasicSalary:   dec(gross),
			GrossEarnings: dec(gross),
		},
		Deductions: payroll.DeductionsBreakdown{
			IncomeTax:       payroll.IncomeTaxDetail{Amount: dec(incomeTax)},
			SocialInsurance: dec(si),
			EducationLevy:   dec(edu),
			TrainingLevy:    dec(training),
			Pension:         payroll.PensionDetail{EmployeeContribution: dec(pension)},
		},
		NetPay: dec(net),
		Status: payroll.StatusPaid,
	}
}

func newTestService(txnRepo *fakeTransactionRepo, payRepo *fakePayrollRepo, empRepo *fakeEmployeeRepo, compRepo *fakeCompanyRepo) Service {
	if txnRepo == nil {
		txnRepo = &fakeTransactionRepo{}
	}
	if payRepo == nil {
		payRepo = &fakePayrollRepo{}
	}
	if empRepo == nil {
		empRepo = &fakeEmployeeRepo{}
	}
	if compRepo == nil {
		compRepo = &fakeCompanyRepo{}
	}
	return NewReportService(txnRepo, payRepo, empRepo, compRepo, nil, report.DefaultComplianceConfig())
}

// ========== PERIOD SUMMARY ==========

func TestAggregatePeriod_Summary(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeTransactionRepo{records: []transaction.Record{
		txn(transaction.TypeIncome, "100000", "15000", "2025-03-05"),
		txn(transaction.TypeIncome, "50000", "", "2025-03-10"),
		txn(transaction.TypeExpense, "40000", "6000", "2025-03-15"),
		txn(transaction.TypeTransfer, "99999", "", "2025-03-20"),
		txn(transaction.TypeIncome, "77777", "1000", "2025-04-01"), // outside range
	}}, nil, nil, nil)

	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC)
	summary, err := svc.AggregatePeriod(context.Background(), "company-1", start, end)
	require.NoError(t, err)

	assert.Equal(t, "150000", summary.TotalIncome.String())
	assert.Equal(t, "40000", summary.TotalExpense.String())
	assert.Equal(t, "110000", summary.NetProfit.String())
	assert.Equal(t, "15000", summary.ConsumptionCollected.String())
	assert.Equal(t, "6000", summary.ConsumptionPaid.String())
	assert.Equal(t, "9000", summary.NetPayable.String())
	assert.Equal(t, 4, summary.TransactionCount)
}

func TestAggregatePeriod_NetPayableNeverNegative(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeTransactionRepo{records: []transaction.Record{
		txn(transaction.TypeIncome, "1000", "150", "2025-03-05"),
		txn(transaction.TypeExpense, "9000", "1350", "2025-03-06"),
	}}, nil, nil, nil)

	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	summary, err := svc.AggregatePeriod(context.Background(), "company-1", start, end)
	require.NoError(t, err)
	assert.True(t, summary.NetPayable.IsZero())
}

func TestAggregatePeriod_InvalidRange(t *testing.T) {
	t.Parallel()
	svc := newTestService(nil, nil, nil, nil)

	at := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.AggregatePeriod(context.Background(), "company-1", at, at)
	assert.ErrorIs(t, err, report.ErrInvalidPeriod)
}

func TestAggregatePeriod_RepoFailureIsDataUnavailable(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeTransactionRepo{err: errors.New("connection refused")}, nil, nil, nil)

	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	_, err := svc.AggregatePeriod(context.Background(), "company-1", start, end)
	assert.ErrorIs(t, err, report.ErrDataUnavailable)
}

// ========== MONTHLY PAYROLL TOTALS ==========

func TestMonthlyPayrollTotals_GroupsByMonth(t *testing.T) {
	t.Parallel()
	cancelled := payrollRecord("emp-3", 3, "999999", "0", "0", "0", "0", "0", "999999")
	cancelled.Status = payroll.StatusCancelled

	svc := newTestService(nil, &fakePayrollRepo{records: []payroll.Record{
		payrollRecord("emp-1", 3, "200000", "18750", "6000", "0", "6000", "10000", "159250"),
		payrollRecord("emp-2", 3, "100000", "0", "3000", "0", "3000", "5000", "89000"),
		payrollRecord("emp-1", 4, "200000", "18750", "6000", "0", "6000", "10000", "159250"),
		cancelled,
	}}, nil, nil)

	totals, err := svc.MonthlyPayrollTotals(context.Background(), "company-1", 2025)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	march := totals[0]
	assert.Equal(t, 3, march.Month)
	assert.Equal(t, "300000", march.GrossEarnings.String())
	assert.Equal(t, "18750", march.IncomeTax.String())
	assert.Equal(t, "9000", march.SocialInsurance.String())
	assert.Equal(t, "15000", march.PensionEmployee.String())
	assert.Equal(t, "248250", march.NetPay.String())
	assert.Equal(t, 2, march.EmployeeCount)

	april := totals[1]
	assert.Equal(t, 4, april.Month)
	assert.Equal(t, 1, april.EmployeeCount)
}

func TestMonthlyPayrollTotals_RepoFailureIsDataUnavailable(t *testing.T) {
	t.Parallel()
	svc := newTestService(nil, &fakePayrollRepo{err: errors.New("timeout")}, nil, nil)

	_, err := svc.MonthlyPayrollTotals(context.Background(), "company-1", 2025)
	assert.ErrorIs(t, err, report.ErrDataUnavailable)
}

// ========== ANNUAL TAX REPORT ==========

func fullYearPayroll() []payroll.Record {
	records := make([]payroll.Record, 0, 12)
	for m := 1; m <= 12; m++ {
		records = append(records, payrollRecord("emp-1", m, "200000", "18750", "6000", "0", "6000", "10000", "159250"))
	}
	return records
}

func TestGenerateAnnualTaxReport_ReconcilesWithMonthly(t *testing.T) {
	t.Parallel()
	svc := newTestService(nil, &fakePayrollRepo{records: fullYearPayroll()}, &fakeEmployeeRepo{
		employees: []employee.Employee{{ID: "emp-1", FirstName: "Ann", LastName: "Chin"}},
	}, &fakeCompanyRepo{company: company.Company{ID: "company-1", LegalForm: company.LegalFormSoleTrader}})

	annual, err := svc.GenerateAnnualTaxReport(context.Background(), "company-1", 2025)
	require.NoError(t, err)
	require.Len(t, annual.Monthly, 12)

	// The annual totals must equal the sum of the twelve monthly buckets.
	sumGross := decimal.Zero
	sumTax := decimal.Zero
	sumNet := decimal.Zero
	for _, m := range annual.Monthly {
		sumGross = sumGross.Add(m.GrossEarnings)
		sumTax = sumTax.Add(m.IncomeTax)
		sumNet = sumNet.Add(m.NetPay)
	}
	assert.True(t, annual.TotalGross.Equal(sumGross))
	assert.True(t, annual.TotalIncomeTax.Equal(sumTax))
	assert.True(t, annual.TotalNetPay.Equal(sumNet))
	assert.Equal(t, "2400000", annual.TotalGross.String())
	assert.Equal(t, "225000", annual.TotalIncomeTax.String())

	require.Len(t, annual.Employees, 1)
	assert.Equal(t, "Ann Chin", annual.Employees[0].EmployeeName)
	assert.True(t, annual.Employees[0].GrossEarnings.Equal(annual.TotalGross))

	assert.False(t, annual.CorporateTaxable)
	assert.Empty(t, annual.Sections.Unavailable)
}

func TestGenerateAnnualTaxReport_CorporateTax(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeTransactionRepo{records: []transaction.Record{
		txn(transaction.TypeIncome, "1000000", "", "2025-06-01"),
		txn(transaction.TypeExpense, "400000", "", "2025-07-01"),
	}}, &fakePayrollRepo{}, &fakeEmployeeRepo{}, &fakeCompanyRepo{
		company: company.Company{ID: "company-1", LegalForm: company.LegalFormCorporation},
	})

	annual, err := svc.GenerateAnnualTaxReport(context.Background(), "company-1", 2025)
	require.NoError(t, err)

	assert.True(t, annual.CorporateTaxable)
	assert.Equal(t, "600000", annual.NetProfit.String())
	// 25% corporate rate on net profit.
	assert.Equal(t, "150000.00", annual.CorporateTax.StringFixed(2))
}

func TestGenerateAnnualTaxReport_LossMeansNoCorporateTax(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeTransactionRepo{records: []transaction.Record{
		txn(transaction.TypeIncome, "100000", "", "2025-06-01"),
		txn(transaction.TypeExpense, "400000", "", "2025-07-01"),
	}}, &fakePayrollRepo{}, &fakeEmployeeRepo{}, &fakeCompanyRepo{
		company: company.Company{ID: "company-1", LegalForm: company.LegalFormCorporation},
	})

	annual, err := svc.GenerateAnnualTaxReport(context.Background(), "company-1", 2025)
	require.NoError(t, err)
	assert.True(t, annual.CorporateTaxable)
	assert.True(t, annual.CorporateTax.IsZero())
}

func TestGenerateAnnualTaxReport_PartialSections(t *testing.T) {
	t.Parallel()
	svc := newTestService(nil, &fakePayrollRepo{records: fullYearPayroll()}, &fakeEmployeeRepo{
		err: errors.New("directory down"),
	}, &fakeCompanyRepo{err: errors.New("master data down")})

	annual, err := svc.GenerateAnnualTaxReport(context.Background(), "company-1", 2025)
	require.NoError(t, err)

	// Payroll sections still stand; the failed joins are marked.
	assert.Equal(t, "2400000", annual.TotalGross.String())
	assert.Contains(t, annual.Sections.Unavailable, "employee_names")
	assert.Contains(t, annual.Sections.Unavailable, "corporate_tax")
	require.Len(t, annual.Employees, 1)
	assert.Empty(t, annual.Employees[0].EmployeeName)
}

func TestGenerateAnnualTaxReport_PayrollFailureAborts(t *testing.T) {
	t.Parallel()
	svc := newTestService(nil, &fakePayrollRepo{err: errors.New("timeout")}, nil, nil)

	_, err := svc.GenerateAnnualTaxReport(context.Background(), "company-1", 2025)
	assert.ErrorIs(t, err, report.ErrDataUnavailable)
}

// ========== MONTHLY RETURN ==========

func TestGenerateMonthlyReturn_FlagsAndDueDate(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeTransactionRepo{records: []transaction.Record{
		txn(transaction.TypeIncome, "100000", "15000", "2025-03-05"),
	}}, &fakePayrollRepo{records: []payroll.Record{
		payrollRecord("emp-1", 3, "200000", "18750", "6000", "0", "6000", "10000", "159250"),
	}}, nil, nil)

	ret, err := svc.GenerateMonthlyReturn(context.Background(), "company-1", 2025, 3)
	require.NoError(t, err)
	require.Len(t, ret.Lines, 5)

	byLevy := make(map[string]report.ReturnLine)
	for _, l := range ret.Lines {
		byLevy[l.Levy] = l
	}

	assert.Equal(t, report.FilingRequired, byLevy[report.LevyIncomeTax].Status)
	assert.Equal(t, "18750", byLevy[report.LevyIncomeTax].Amount.String())
	assert.Equal(t, report.FilingRequired, byLevy[report.LevySocialInsurance].Status)
	assert.Equal(t, report.FilingNilReturn, byLevy[report.LevyEducation].Status)
	assert.Equal(t, report.FilingRequired, byLevy[report.LevyConsumption].Status)
	assert.Equal(t, "15000", byLevy[report.LevyConsumption].Amount.String())

	// Due on the 14th of the following month.
	for _, l := range ret.Lines {
		assert.Equal(t, "2025-04-14", l.DueDate)
	}
}

func TestGenerateMonthlyReturn_DecemberDueDateRollsYear(t *testing.T) {
	t.Parallel()
	svc := newTestService(nil, nil, nil, nil)

	ret, err := svc.GenerateMonthlyReturn(context.Background(), "company-1", 2025, 12)
	require.NoError(t, err)
	require.NotEmpty(t, ret.Lines)
	assert.Equal(t, "2026-01-14", ret.Lines[0].DueDate)
}

func TestGenerateMonthlyReturn_EmptyMonthIsAllNilReturns(t *testing.T) {
	t.Parallel()
	svc := newTestService(nil, nil, nil, nil)

	ret, err := svc.GenerateMonthlyReturn(context.Background(), "company-1", 2025, 6)
	require.NoError(t, err)
	require.Len(t, ret.Lines, 5)
	for _, l := range ret.Lines {
		assert.Equal(t, report.FilingNilReturn, l.Status, l.Levy)
		assert.True(t, l.Amount.IsZero())
	}
}

func TestGenerateMonthlyReturn_ConsumptionSectionDegrades(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeTransactionRepo{err: errors.New("ledger down")}, &fakePayrollRepo{records: []payroll.Record{
		payrollRecord("emp-1", 3, "200000", "18750", "6000", "0", "6000", "10000", "159250"),
	}}, nil, nil)

	ret, err := svc.GenerateMonthlyReturn(context.Background(), "company-1", 2025, 3)
	require.NoError(t, err)
	require.Len(t, ret.Lines, 4)
	assert.Contains(t, ret.Sections.Unavailable, report.LevyConsumption)
}

func TestGenerateMonthlyReturn_InvalidMonth(t *testing.T) {
	t.Parallel()
	svc := newTestService(nil, nil, nil, nil)

	_, err := svc.GenerateMonthlyReturn(context.Background(), "company-1", 2025, 13)
	assert.ErrorIs(t, err, report.ErrInvalidPeriod)
}

// ========== COMPLIANCE SCORE ==========

func registrations(levies ...string) []company.Registration {
	out := make([]company.Registration, 0, len(levies))
	for _, l := range levies {
		out = append(out, company.Registration{Levy: l, Registered: true})
	}
	return out
}

func TestComplianceScore_FullyCompliant(t *testing.T) {
	t.Parallel()
	cfg := report.DefaultComplianceConfig()
	svc := newTestService(nil, nil, nil, &fakeCompanyRepo{
		company: company.Company{ID: "company-1", Registrations: registrations(cfg.Levies...)},
		filings: []company.Filing{
			{Levy: report.LevyIncomeTax, Year: 2025, Month: 1, Filed: true},
			{Levy: report.LevyIncomeTax, Year: 2025, Month: 2, Filed: true},
		},
	})

	got, err := svc.ComplianceScore(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.Score.StringFixed(2))
}

func TestComplianceScore_WeightedCategories(t *testing.T) {
	t.Parallel()
	cfg := report.DefaultComplianceConfig()
	// 3 of 5 registrations, 1 of 2 filings, outstanding liability.
	svc := newTestService(nil, nil, nil, &fakeCompanyRepo{
		company: company.Company{
			ID:            "company-1",
			Registrations: registrations(report.LevyIncomeTax, report.LevySocialInsurance, report.LevyConsumption),
		},
		filings: []company.Filing{
			{Levy: report.LevyIncomeTax, Year: 2025, Month: 1, Filed: true},
			{Levy: report.LevyIncomeTax, Year: 2025, Month: 2, Filed: false},
		},
		outstanding: true,
	})

	got, err := svc.ComplianceScore(context.Background(), "company-1")
	require.NoError(t, err)
	require.Len(t, got.Categories, 3)

	byCategory := make(map[string]report.CategoryScore)
	for _, c := range got.Categories {
		byCategory[c.Category] = c
	}
	assert.Equal(t, "60.00", byCategory["registration"].Score.StringFixed(2))
	assert.Equal(t, "50.00", byCategory["filing"].Score.StringFixed(2))
	assert.Equal(t, "0.00", byCategory["payment"].Score.StringFixed(2))
	assert.True(t, byCategory["registration"].Weight.Equal(cfg.RegistrationWeight))

	// (30×60 + 40×50 + 30×0) / 100 = 38.
	assert.Equal(t, "38.00", got.Score.StringFixed(2))
}

func TestComplianceScore_NoFilingsDueScoresFull(t *testing.T) {
	t.Parallel()
	cfg := report.DefaultComplianceConfig()
	svc := newTestService(nil, nil, nil, &fakeCompanyRepo{
		company: company.Company{ID: "company-1", Registrations: registrations(cfg.Levies...)},
	})

	got, err := svc.ComplianceScore(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.Score.StringFixed(2))
}

func TestComplianceScore_DataUnavailable(t *testing.T) {
	t.Parallel()
	svc := newTestService(nil, nil, nil, &fakeCompanyRepo{err: errors.New("master data down")})

	_, err := svc.ComplianceScore(context.Background(), "company-1")
	assert.ErrorIs(t, err, report.ErrDataUnavailable)
}
