package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayCadence enum
type PayCadence string

const (
	CadenceWeekly   PayCadence = "weekly"
	CadenceBiWeekly PayCadence = "bi-weekly"
	CadenceMonthly  PayCadence = "monthly"
)

// PeriodsPerYear returns the annualization factor for the cadence. Weekly and
// bi-weekly records annualize by their own factor, not a blanket ×12.
func (c PayCadence) PeriodsPerYear() int64 {
	switch c {
	case CadenceWeekly:
		return 52
	case CadenceBiWeekly:
		return 26
	default:
		return 12
	}
}

func (c PayCadence) Valid() bool {
	switch c {
	case CadenceWeekly, CadenceBiWeekly, CadenceMonthly:
		return true
	}
	return false
}

// PayPeriod is the interval one payroll record covers.
type PayPeriod struct {
	Start   time.Time
	End     time.Time
	Cadence PayCadence
}

// Overtime detail inside the earnings breakdown.
type Overtime struct {
	Hours  decimal.Decimal
	Rate   decimal.Decimal
	Amount decimal.Decimal
}

// Allowance line. Only taxable allowances count toward gross earnings.
type Allowance struct {
	Type    string
	Amount  decimal.Decimal
	Taxable bool
}

// EarningsBreakdown - component earnings for one pay period. GrossEarnings is
// always derived from the components, never accepted as input.
type EarningsBreakdown struct {
	BasicSalary   decimal.Decimal
	Overtime      Overtime
	Allowances    []Allowance
	Bonus         decimal.Decimal
	Commission    decimal.Decimal
	BackPay       decimal.Decimal
	GrossEarnings decimal.Decimal
}

// Gross recomputes gross earnings from the components.
func (e EarningsBreakdown) Gross() decimal.Decimal {
	gross := e.BasicSalary.
		Add(e.Overtime.Amount).
		Add(e.Bonus).
		Add(e.Commission).
		Add(e.BackPay)
	for _, a := range e.Allowances {
		if a.Taxable {
			gross = gross.Add(a.Amount)
		}
	}
	return gross
}

// IncomeTaxDetail carries the annual taxable base alongside the per-period amount.
type IncomeTaxDetail struct {
	TaxableIncome decimal.Decimal // annual
	Amount        decimal.Decimal // per period
}

// PensionDetail - employer contribution is informational only and never
// subtracted from net pay.
type PensionDetail struct {
	EmployeeContribution decimal.Decimal
	EmployerContribution decimal.Decimal
}

// OtherDeduction - ad hoc deduction line (garnishments, loans, ...).
type OtherDeduction struct {
	Type   string
	Amount decimal.Decimal
}

// DeductionsBreakdown - statutory deductions for one pay period.
type DeductionsBreakdown struct {
	IncomeTax       IncomeTaxDetail
	SocialInsurance decimal.Decimal
	EducationLevy   decimal.Decimal
	TrainingLevy    decimal.Decimal
	Pension         PensionDetail
	Other           []OtherDeduction
	TotalDeductions decimal.Decimal
}

// Total recomputes the deduction total. The employer pension share is excluded.
func (d DeductionsBreakdown) Total() decimal.Decimal {
	total := d.IncomeTax.Amount.
		Add(d.SocialInsurance).
		Add(d.EducationLevy).
		Add(d.TrainingLevy).
		Add(d.Pension.EmployeeContribution)
	for _, o := range d.Other {
		total = total.Add(o.Amount)
	}
	return total
}

// Status enum
type Status string

const (
	StatusDraft      Status = "draft"
	StatusCalculated Status = "calculated"
	StatusApproved   Status = "approved"
	StatusPaid       Status = "paid"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusCalculated, StatusApproved, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Approval - one entry of the approvals log.
type Approval struct {
	ApproverID string
	ApprovedAt time.Time
}

// PaymentInfo - set when the record transitions to paid.
type PaymentInfo struct {
	PayDate *time.Time
	Method  string
	Paid    bool
}

// Record - one employee's payroll for one pay period. Derived fields
// (gross, deductions, net pay) are recomputed on every save before the record
// is paid; a paid record is immutable. Version backs optimistic concurrency
// on status transitions.
type Record struct {
	ID         string
	Number     string
	CompanyID  string
	EmployeeID string
	Period     PayPeriod
	Earnings   EarningsBreakdown
	Deductions DeductionsBreakdown
	NetPay     decimal.Decimal
	Status     Status
	Approvals  []Approval
	Payment    PaymentInfo
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
