package payroll

import (
	"github.com/greenledger/fiscal-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// AllowanceInput - one allowance line of a create/update request.
type AllowanceInput struct {
	Type    string          `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
	Taxable bool            `json:"taxable"`
}

// OvertimeInput - overtime hours and rate; the amount is derived.
type OvertimeInput struct {
	Hours decimal.Decimal `json:"hours"`
	Rate  decimal.Decimal `json:"rate"`
}

// CreateRecordRequest creates a draft payroll record. Gross earnings and all
// deductions are derived server-side; they are not accepted as input.
type CreateRecordRequest struct {
	EmployeeID  string           `json:"employee_id"`
	PeriodStart string           `json:"period_start"`
	PeriodEnd   string           `json:"period_end"`
	Cadence     string           `json:"cadence"`
	BasicSalary decimal.Decimal  `json:"basic_salary"`
	Overtime    *OvertimeInput   `json:"overtime,omitempty"`
	Allowances  []AllowanceInput `json:"allowances,omitempty"`
	Bonus       decimal.Decimal  `json:"bonus"`
	Commission  decimal.Decimal  `json:"commission"`
	BackPay     decimal.Decimal  `json:"back_pay"`
}

func (r CreateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.PeriodStart); !ok {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be YYYY-MM-DD"})
	}
	if _, ok := validator.IsValidDate(r.PeriodEnd); !ok {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be YYYY-MM-DD"})
	}
	if !PayCadence(r.Cadence).Valid() {
		errs = append(errs, validator.ValidationError{Field: "cadence", Message: "must be weekly, bi-weekly or monthly"})
	}
	if r.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must not be negative"})
	}
	for _, a := range r.Allowances {
		if a.Amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "allowances", Message: "amounts must not be negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateEarningsRequest replaces the earnings inputs of a pre-paid record and
// triggers a full recomputation of the derived fields.
type UpdateEarningsRequest struct {
	ID          string           `json:"-"`
	BasicSalary *decimal.Decimal `json:"basic_salary,omitempty"`
	Overtime    *OvertimeInput   `json:"overtime,omitempty"`
	Allowances  []AllowanceInput `json:"allowances,omitempty"`
	Bonus       *decimal.Decimal `json:"bonus,omitempty"`
	Commission  *decimal.Decimal `json:"commission,omitempty"`
	BackPay     *decimal.Decimal `json:"back_pay,omitempty"`
}

// TransitionRequest moves a record to a target status.
type TransitionRequest struct {
	ID      string `json:"-"`
	Target  string `json:"target"`
	PayDate string `json:"pay_date,omitempty"`
	Method  string `json:"method,omitempty"`
}

// RecordResponse - API shape of a payroll record.
type RecordResponse struct {
	ID          string              `json:"id"`
	Number      string              `json:"number"`
	EmployeeID  string              `json:"employee_id"`
	PeriodStart string              `json:"period_start"`
	PeriodEnd   string              `json:"period_end"`
	Cadence     string              `json:"cadence"`
	Earnings    EarningsBreakdown   `json:"earnings"`
	Deductions  DeductionsBreakdown `json:"deductions"`
	NetPay      decimal.Decimal     `json:"net_pay"`
	Status      string              `json:"status"`
	Approvals   []Approval          `json:"approvals,omitempty"`
	PayDate     *string             `json:"pay_date,omitempty"`
	Method      string              `json:"payment_method,omitempty"`
}

// ListRecordResponse - paginated list of records.
type ListRecordResponse struct {
	Data       []RecordResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}
