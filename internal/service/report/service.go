package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/greenledger/fiscal-backend-go/internal/domain/company"
	"github.com/greenledger/fiscal-backend-go/internal/domain/employee"
	"github.com/greenledger/fiscal-backend-go/internal/domain/payroll"
	"github.com/greenledger/fiscal-backend-go/internal/domain/report"
	"github.com/greenledger/fiscal-backend-go/internal/domain/tax"
	"github.com/greenledger/fiscal-backend-go/internal/domain/transaction"
	"github.com/greenledger/fiscal-backend-go/internal/fixtures"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RulesProvider resolves tax year rules for the corporate rate.
type RulesProvider func(year int) (tax.TaxYearRules, error)

// Service rolls up transaction and payroll populations into periodic
// summaries, statutory returns and the compliance score. Reads are
// eventually consistent over an active company; failures surface as
// DataUnavailable with partial reports carrying explicit markers where the
// remaining sections are still useful.
type Service interface {
	AggregatePeriod(ctx context.Context, companyID string, start, end time.Time) (report.PeriodSummary, error)
	MonthlyPayrollTotals(ctx context.Context, companyID string, year int) ([]report.MonthlyPayrollTotals, error)
	GenerateAnnualTaxReport(ctx context.Context, companyID string, year int) (report.AnnualTaxReport, error)
	GenerateMonthlyReturn(ctx context.Context, companyID string, year, month int) (report.MonthlyReturn, error)
	ComplianceScore(ctx context.Context, companyID string) (report.ComplianceReport, error)
}

type ServiceImpl struct {
	transactionRepo transaction.Repository
	payrollRepo     payroll.Repository
	employeeRepo    employee.Repository
	companyRepo     company.Repository
	rulesFor        RulesProvider
	cfg             report.ComplianceConfig
}

func NewReportService(
	transactionRepo transaction.Repository,
	payrollRepo payroll.Repository,
	employeeRepo employee.Repository,
	companyRepo company.Repository,
	rulesFor RulesProvider,
	cfg report.ComplianceConfig,
) Service {
	if rulesFor == nil {
		rulesFor = fixtures.RulesForYear
	}
	return &ServiceImpl{
		transactionRepo: transactionRepo,
		payrollRepo:     payrollRepo,
		employeeRepo:    employeeRepo,
		companyRepo:     companyRepo,
		rulesFor:        rulesFor,
		cfg:             cfg,
	}
}

// ========== PERIOD SUMMARY ==========

func (s *ServiceImpl) AggregatePeriod(ctx context.Context, companyID string, start, end time.Time) (report.PeriodSummary, error) {
	if !end.After(start) {
		return report.PeriodSummary{}, report.ErrInvalidPeriod
	}

	records, err := s.transactionRepo.ListByPeriod(ctx, companyID, start, end)
	if err != nil {
		return report.PeriodSummary{}, fmt.Errorf("%w: %v", report.ErrDataUnavailable, err)
	}

	summary := report.PeriodSummary{
		CompanyID:   companyID,
		PeriodStart: start.Format("2006-01-02"),
		PeriodEnd:   end.Format("2006-01-02"),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	summary.TotalIncome = decimal.Zero
	summary.TotalExpense = decimal.Zero
	summary.ConsumptionCollected = decimal.Zero
	summary.ConsumptionPaid = decimal.Zero

	for _, r := range records {
		summary.TransactionCount++
		switch r.Type {
		case transaction.TypeIncome, transaction.TypeAssetSale:
			if r.Type == transaction.TypeIncome {
				summary.TotalIncome = summary.TotalIncome.Add(r.Amount)
			}
			if r.Tax.IsTaxable {
				summary.ConsumptionCollected = summary.ConsumptionCollected.Add(r.Tax.Amount)
			}
		case transaction.TypeExpense, transaction.TypeAssetPurchase:
			if r.Type == transaction.TypeExpense {
				summary.TotalExpense = summary.TotalExpense.Add(r.Amount)
			}
			if r.Tax.IsTaxable {
				summary.ConsumptionPaid = summary.ConsumptionPaid.Add(r.Tax.Amount)
			}
		}
	}

	summary.NetProfit = summary.TotalIncome.Sub(summary.TotalExpense)

	netPayable := summary.ConsumptionCollected.Sub(summary.ConsumptionPaid)
	if netPayable.IsNegative() {
		netPayable = decimal.Zero
	}
	summary.NetPayable = netPayable

	return summary, nil
}

// ========== MONTHLY PAYROLL TOTALS ==========

func (s *ServiceImpl) MonthlyPayrollTotals(ctx context.Context, companyID string, year int) ([]report.MonthlyPayrollTotals, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	records, err := s.payrollRepo.ListByPeriod(ctx, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrDataUnavailable, err)
	}

	return groupMonthly(records), nil
}

// groupMonthly buckets payroll records by the month their period starts in.
// Cancelled records are excluded.
func groupMonthly(records []payroll.Record) []report.MonthlyPayrollTotals {
	type key struct {
		year  int
		month int
	}

	buckets := make(map[key]*report.MonthlyPayrollTotals)
	members := make(map[key]map[string]bool)

	for _, r := range records {
		if r.Status == payroll.StatusCancelled {
			continue
		}
		k := key{year: r.Period.Start.Year(), month: int(r.Period.Start.Month())}
		b, ok := buckets[k]
		if !ok {
			b = &report.MonthlyPayrollTotals{Year: k.year, Month: k.month}
			buckets[k] = b
			members[k] = make(map[string]bool)
		}

		b.GrossEarnings = b.GrossEarnings.Add(r.Earnings.GrossEarnings)
		b.IncomeTax = b.IncomeTax.Add(r.Deductions.IncomeTax.Amount)
		b.SocialInsurance = b.SocialInsurance.Add(r.Deductions.SocialInsurance)
		b.EducationLevy = b.EducationLevy.Add(r.Deductions.EducationLevy)
		b.TrainingLevy = b.TrainingLevy.Add(r.Deductions.TrainingLevy)
		b.PensionEmployee = b.PensionEmployee.Add(r.Deductions.Pension.EmployeeContribution)
		b.PensionEmployer = b.PensionEmployer.Add(r.Deductions.Pension.EmployerContribution)
		for _, o := range r.Deductions.Other {
			b.OtherDeductions = b.OtherDeductions.Add(o.Amount)
		}
		b.NetPay = b.NetPay.Add(r.NetPay)
		members[k][r.EmployeeID] = true
	}

	out := make([]report.MonthlyPayrollTotals, 0, len(buckets))
	for k, b := range buckets {
		b.EmployeeCount = len(members[k])
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})

	return out
}

// ========== ANNUAL TAX REPORT ==========

func (s *ServiceImpl) GenerateAnnualTaxReport(ctx context.Context, companyID string, year int) (report.AnnualTaxReport, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	var (
		payrollRecords []payroll.Record
		employees      []employee.Employee
		comp           company.Company
		periodSummary  report.PeriodSummary

		employeesErr error
		companyErr   error
		summaryErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payrollRecords, err = s.payrollRepo.ListByPeriod(gctx, companyID, start, end)
		// Payroll is the backbone of the annual report; without it the
		// report is not worth producing.
		return err
	})
	g.Go(func() error {
		employees, employeesErr = s.employeeRepo.GetActiveByCompanyID(gctx, companyID)
		return nil
	})
	g.Go(func() error {
		comp, companyErr = s.companyRepo.GetByID(gctx, companyID)
		return nil
	})
	g.Go(func() error {
		periodSummary, summaryErr = s.AggregatePeriod(gctx, companyID, start, end)
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.AnnualTaxReport{}, fmt.Errorf("%w: %v", report.ErrDataUnavailable, err)
	}

	r := report.AnnualTaxReport{
		CompanyID:   companyID,
		Year:        year,
		Monthly:     groupMonthly(payrollRecords),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, m := range r.Monthly {
		r.TotalGross = r.TotalGross.Add(m.GrossEarnings)
		r.TotalIncomeTax = r.TotalIncomeTax.Add(m.IncomeTax)
		r.TotalSocialIns = r.TotalSocialIns.Add(m.SocialInsurance)
		r.TotalEducation = r.TotalEducation.Add(m.EducationLevy)
		r.TotalTraining = r.TotalTraining.Add(m.TrainingLevy)
		r.TotalNetPay = r.TotalNetPay.Add(m.NetPay)
	}

	names := make(map[string]string)
	if employeesErr != nil {
		r.Sections.MarkUnavailable("employee_names")
	} else {
		for _, e := range employees {
			names[e.ID] = e.FullName()
		}
	}
	r.Employees = perEmployeeTotals(payrollRecords, names)

	if summaryErr != nil {
		r.Sections.MarkUnavailable("net_profit")
		r.Sections.MarkUnavailable("corporate_tax")
	} else {
		r.NetProfit = periodSummary.NetProfit
		if companyErr != nil {
			r.Sections.MarkUnavailable("corporate_tax")
		} else if comp.LegalForm.TaxableAsCorporation() {
			rules, err := s.rulesFor(year)
			if err != nil {
				r.Sections.MarkUnavailable("corporate_tax")
			} else {
				r.CorporateTaxable = true
				taxableProfit := periodSummary.NetProfit
				if taxableProfit.IsNegative() {
					taxableProfit = decimal.Zero
				}
				r.CorporateTax = taxableProfit.Mul(rules.CorporateRate).Round(2)
			}
		}
	}

	return r, nil
}

func perEmployeeTotals(records []payroll.Record, names map[string]string) []report.EmployeeDeductionTotals {
	byEmployee := make(map[string]*report.EmployeeDeductionTotals)
	for _, r := range records {
		if r.Status == payroll.StatusCancelled {
			continue
		}
		e, ok := byEmployee[r.EmployeeID]
		if !ok {
			e = &report.EmployeeDeductionTotals{
				EmployeeID:   r.EmployeeID,
				EmployeeName: names[r.EmployeeID],
			}
			byEmployee[r.EmployeeID] = e
		}
		e.GrossEarnings = e.GrossEarnings.Add(r.Earnings.GrossEarnings)
		e.IncomeTax = e.IncomeTax.Add(r.Deductions.IncomeTax.Amount)
		e.SocialInsurance = e.SocialInsurance.Add(r.Deductions.SocialInsurance)
		e.EducationLevy = e.EducationLevy.Add(r.Deductions.EducationLevy)
		e.TrainingLevy = e.TrainingLevy.Add(r.Deductions.TrainingLevy)
		e.PensionEmployee = e.PensionEmployee.Add(r.Deductions.Pension.EmployeeContribution)
		e.NetPay = e.NetPay.Add(r.NetPay)
	}

	out := make([]report.EmployeeDeductionTotals, 0, len(byEmployee))
	for _, e := range byEmployee {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

// ========== MONTHLY STATUTORY RETURN ==========

func (s *ServiceImpl) GenerateMonthlyReturn(ctx context.Context, companyID string, year, month int) (report.MonthlyReturn, error) {
	if month < 1 || month > 12 {
		return report.MonthlyReturn{}, report.ErrInvalidPeriod
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)

	ret := report.MonthlyReturn{
		CompanyID:   companyID,
		Year:        year,
		Month:       month,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	dueDate := s.dueDateFor(year, month)

	payrollRecords, err := s.payrollRepo.ListByPeriod(ctx, companyID, start, end)
	if err != nil {
		return report.MonthlyReturn{}, fmt.Errorf("%w: %v", report.ErrDataUnavailable, err)
	}

	var monthTotals report.MonthlyPayrollTotals
	if grouped := groupMonthly(payrollRecords); len(grouped) > 0 {
		monthTotals = grouped[0]
	}

	ret.Lines = []report.ReturnLine{
		returnLine(report.LevyIncomeTax, monthTotals.IncomeTax, dueDate),
		returnLine(report.LevySocialInsurance, monthTotals.SocialInsurance, dueDate),
		returnLine(report.LevyEducation, monthTotals.EducationLevy, dueDate),
		returnLine(report.LevyTraining, monthTotals.TrainingLevy, dueDate),
	}

	// Consumption tax rides on transactions, not payroll; its section can be
	// unavailable while the payroll lines still stand.
	summary, err := s.AggregatePeriod(ctx, companyID, start, end)
	if err != nil {
		ret.Sections.MarkUnavailable(report.LevyConsumption)
	} else {
		ret.Lines = append(ret.Lines, returnLine(report.LevyConsumption, summary.NetPayable, dueDate))
	}

	return ret, nil
}

func returnLine(levy string, amount decimal.Decimal, dueDate time.Time) report.ReturnLine {
	status := report.FilingNilReturn
	if !amount.IsZero() {
		status = report.FilingRequired
	}
	return report.ReturnLine{
		Levy:    levy,
		Amount:  amount,
		Status:  status,
		DueDate: dueDate.Format("2006-01-02"),
	}
}

// dueDateFor computes the statutory due date: the configured day of the
// month following the return period. time.Date normalizes month 13 into
// January of the next year.
func (s *ServiceImpl) dueDateFor(year, month int) time.Time {
	day := s.cfg.ReturnDueDay
	if day <= 0 {
		day = report.DefaultComplianceConfig().ReturnDueDay
	}
	return time.Date(year, time.Month(month)+1, day, 0, 0, 0, 0, time.UTC)
}
