package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/greenledger/fiscal-backend-go/internal/domain/employee"
	"github.com/greenledger/fiscal-backend-go/internal/domain/payroll"
	"github.com/greenledger/fiscal-backend-go/internal/domain/sequence"
	"github.com/greenledger/fiscal-backend-go/internal/domain/tax"
	"github.com/greenledger/fiscal-backend-go/internal/fixtures"
	"github.com/greenledger/fiscal-backend-go/internal/pkg/database"
	sequenceService "github.com/greenledger/fiscal-backend-go/internal/service/sequence"
	taxService "github.com/greenledger/fiscal-backend-go/internal/service/tax"
	"github.com/shopspring/decimal"
)

// RulesProvider resolves the statutory tables for a tax year, so historical
// periods recompute under the rules in force at the time.
type RulesProvider func(year int) (tax.TaxYearRules, error)

// Service owns the payroll record lifecycle: draft -> calculated -> approved
// -> paid, with cancelled reachable from every state except paid. Every save
// before paid runs a full recomputation of the derived fields.
type Service interface {
	Create(ctx context.Context, companyID string, req payroll.CreateRecordRequest) (payroll.RecordResponse, error)
	Get(ctx context.Context, companyID, id string) (payroll.RecordResponse, error)
	List(ctx context.Context, companyID string, filter payroll.Filter) (payroll.ListRecordResponse, error)
	UpdateEarnings(ctx context.Context, companyID string, req payroll.UpdateEarningsRequest) (payroll.RecordResponse, error)
	Transition(ctx context.Context, companyID string, req payroll.TransitionRequest, actor string, at time.Time) (payroll.RecordResponse, error)
}

type ServiceImpl struct {
	payrollRepo  payroll.Repository
	employeeRepo employee.Repository
	sequenceSvc  sequenceService.Service
	rulesFor     RulesProvider
	inTx         database.TxRunner
}

func NewPayrollService(payrollRepo payroll.Repository, employeeRepo employee.Repository, sequenceSvc sequenceService.Service, rulesFor RulesProvider, inTx database.TxRunner) Service {
	if rulesFor == nil {
		rulesFor = fixtures.RulesForYear
	}
	if inTx == nil {
		inTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &ServiceImpl{
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		sequenceSvc:  sequenceSvc,
		rulesFor:     rulesFor,
		inTx:         inTx,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, companyID string, req payroll.CreateRecordRequest) (payroll.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RecordResponse{}, err
	}

	start, _ := time.Parse("2006-01-02", req.PeriodStart)
	end, _ := time.Parse("2006-01-02", req.PeriodEnd)
	if !end.After(start) {
		return payroll.RecordResponse{}, payroll.ErrInvalidPeriod
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID); err != nil {
		return payroll.RecordResponse{}, err
	}

	record := payroll.Record{
		CompanyID:  companyID,
		EmployeeID: req.EmployeeID,
		Period: payroll.PayPeriod{
			Start:   start,
			End:     end,
			Cadence: payroll.PayCadence(req.Cadence),
		},
		Earnings: earningsFromCreate(req),
		Status:   payroll.StatusDraft,
	}

	if err := s.recompute(&record); err != nil {
		return payroll.RecordResponse{}, err
	}

	// Number issuance and the insert share one transaction: a failed insert
	// rolls the counter increment back, so ordinals stay gapless per key.
	var created payroll.Record
	err := s.inTx(ctx, func(ctx context.Context) error {
		periodKey := start.Format("2006-01")
		number, err := s.sequenceSvc.NextNumber(ctx, companyID, sequence.KindPayroll, periodKey, sequence.Format{Prefix: "PAY"})
		if err != nil {
			return fmt.Errorf("failed to assign payroll number: %w", err)
		}
		record.Number = number

		created, err = s.payrollRepo.Create(ctx, record)
		return err
	})
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	return mapToRecordResponse(created), nil
}

func (s *ServiceImpl) Get(ctx context.Context, companyID, id string) (payroll.RecordResponse, error) {
	record, err := s.payrollRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	return mapToRecordResponse(record), nil
}

func (s *ServiceImpl) List(ctx context.Context, companyID string, filter payroll.Filter) (payroll.ListRecordResponse, error) {
	records, totalCount, err := s.payrollRepo.List(ctx, companyID, filter)
	if err != nil {
		return payroll.ListRecordResponse{}, err
	}

	return payroll.ListRecordResponse{
		Data:       mapToRecordResponses(records),
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *ServiceImpl) UpdateEarnings(ctx context.Context, companyID string, req payroll.UpdateEarningsRequest) (payroll.RecordResponse, error) {
	record, err := s.payrollRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	switch record.Status {
	case payroll.StatusPaid:
		return payroll.RecordResponse{}, payroll.ErrRecordImmutable
	case payroll.StatusCancelled:
		return payroll.RecordResponse{}, payroll.ErrInvalidTransition
	}

	applyEarningsPatch(&record.Earnings, req)

	// An earnings change invalidates any earlier approval.
	record.Status = payroll.StatusCalculated
	record.Approvals = nil

	if err := s.recompute(&record); err != nil {
		return payroll.RecordResponse{}, err
	}

	saved, err := s.payrollRepo.Save(ctx, record)
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	return mapToRecordResponse(saved), nil
}

func (s *ServiceImpl) Transition(ctx context.Context, companyID string, req payroll.TransitionRequest, actor string, at time.Time) (payroll.RecordResponse, error) {
	target := payroll.Status(req.Target)
	if !target.Valid() {
		return payroll.RecordResponse{}, payroll.ErrInvalidTransition
	}

	record, err := s.payrollRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	if err := s.applyTransition(&record, target, actor, at, req); err != nil {
		return payroll.RecordResponse{}, err
	}

	saved, err := s.payrollRepo.Save(ctx, record)
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	return mapToRecordResponse(saved), nil
}

func (s *ServiceImpl) applyTransition(record *payroll.Record, target payroll.Status, actor string, at time.Time, req payroll.TransitionRequest) error {
	if record.Status == payroll.StatusPaid {
		// A paid record is immutable. Cancelling it is reported as an invalid
		// transition; any other edit as an immutability violation.
		if target == payroll.StatusCancelled {
			return payroll.ErrInvalidTransition
		}
		return payroll.ErrRecordImmutable
	}

	switch target {
	case payroll.StatusCalculated:
		// Recomputation is idempotent, so re-entering calculated is allowed.
		if record.Status != payroll.StatusDraft && record.Status != payroll.StatusCalculated {
			return payroll.ErrInvalidTransition
		}
		if err := s.recompute(record); err != nil {
			return err
		}
		record.Status = payroll.StatusCalculated

	case payroll.StatusApproved:
		if record.Status != payroll.StatusCalculated {
			return payroll.ErrInvalidTransition
		}
		if actor == "" {
			return payroll.ErrApproverRequired
		}
		record.Approvals = append(record.Approvals, payroll.Approval{
			ApproverID: actor,
			ApprovedAt: at,
		})
		record.Status = payroll.StatusApproved

	case payroll.StatusPaid:
		if record.Status != payroll.StatusApproved {
			return payroll.ErrInvalidTransition
		}
		payDate, ok := parsePayDate(req.PayDate)
		if !ok {
			return payroll.ErrPayDateRequired
		}
		record.Payment = payroll.PaymentInfo{
			PayDate: &payDate,
			Method:  req.Method,
			Paid:    true,
		}
		record.Status = payroll.StatusPaid

	case payroll.StatusCancelled:
		record.Status = payroll.StatusCancelled

	default:
		return payroll.ErrInvalidTransition
	}

	return nil
}

// recompute derives overtime amount, gross earnings, the statutory deduction
// breakdown and net pay from the earnings inputs. Pure apart from the rules
// lookup; running it twice on the same inputs yields identical fields.
func (s *ServiceImpl) recompute(record *payroll.Record) error {
	if !record.Period.Cadence.Valid() {
		return payroll.ErrInvalidCadence
	}

	record.Earnings.Overtime.Amount = record.Earnings.Overtime.Hours.
		Mul(record.Earnings.Overtime.Rate).Round(2)
	record.Earnings.GrossEarnings = record.Earnings.Gross()

	rules, err := s.rulesFor(record.Period.Start.Year())
	if err != nil {
		return err
	}

	deductions, err := taxService.ComputeDeductions(record.Earnings.GrossEarnings, record.Period.Cadence, rules)
	if err != nil {
		return err
	}
	deductions.Other = record.Deductions.Other
	deductions.TotalDeductions = deductions.Total()
	record.Deductions = deductions

	netPay := record.Earnings.GrossEarnings.Sub(record.Deductions.TotalDeductions)
	if netPay.IsNegative() {
		netPay = decimal.Zero
	}
	record.NetPay = netPay

	return nil
}

func earningsFromCreate(req payroll.CreateRecordRequest) payroll.EarningsBreakdown {
	e := payroll.EarningsBreakdown{
		BasicSalary: req.BasicSalary,
		Bonus:       req.Bonus,
		Commission:  req.Commission,
		BackPay:     req.BackPay,
	}
	if req.Overtime != nil {
		e.Overtime = payroll.Overtime{Hours: req.Overtime.Hours, Rate: req.Overtime.Rate}
	}
	for _, a := range req.Allowances {
		e.Allowances = append(e.Allowances, payroll.Allowance{
			Type:    a.Type,
			Amount:  a.Amount,
			Taxable: a.Taxable,
		})
	}
	return e
}

func applyEarningsPatch(e *payroll.EarningsBreakdown, req payroll.UpdateEarningsRequest) {
	if req.BasicSalary != nil {
		e.BasicSalary = *req.BasicSalary
	}
	if req.Overtime != nil {
		e.Overtime = payroll.Overtime{Hours: req.Overtime.Hours, Rate: req.Overtime.Rate}
	}
	if req.Allowances != nil {
		e.Allowances = nil
		for _, a := range req.Allowances {
			e.Allowances = append(e.Allowances, payroll.Allowance{
				Type:    a.Type,
				Amount:  a.Amount,
				Taxable: a.Taxable,
			})
		}
	}
	if req.Bonus != nil {
		e.Bonus = *req.Bonus
	}
	if req.Commission != nil {
		e.Commission = *req.Commission
	}
	if req.BackPay != nil {
		e.BackPay = *req.BackPay
	}
}

func parsePayDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ========== HELPERS ==========

func mapToRecordResponse(r payroll.Record) payroll.RecordResponse {
	var payDateStr *string
	if r.Payment.PayDate != nil {
		str := r.Payment.PayDate.Format("2006-01-02")
		payDateStr = &str
	}

	return payroll.RecordResponse{
		ID:          r.ID,
		Number:      r.Number,
		EmployeeID:  r.EmployeeID,
		PeriodStart: r.Period.Start.Format("2006-01-02"),
		PeriodEnd:   r.Period.End.Format("2006-01-02"),
		Cadence:     string(r.Period.Cadence),
		Earnings:    r.Earnings,
		Deductions:  r.Deductions,
		NetPay:      r.NetPay,
		Status:      string(r.Status),
		Approvals:   r.Approvals,
		PayDate:     payDateStr,
		Method:      r.Payment.Method,
	}
}

func mapToRecordResponses(records []payroll.Record) []payroll.RecordResponse {
	result := make([]payroll.RecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToRecordResponse(r))
	}
	return result
}
