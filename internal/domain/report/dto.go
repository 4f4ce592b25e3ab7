package report

import (
	"github.com/shopspring/decimal"
)

// PeriodSummary - income/expense roll-up for an arbitrary time range,
// including consumption tax collected on income vs paid on expenses.
type PeriodSummary struct {
	CompanyID            string          `json:"company_id"`
	PeriodStart          string          `json:"period_start"`
	PeriodEnd            string          `json:"period_end"`
	TotalIncome          decimal.Decimal `json:"total_income"`
	TotalExpense         decimal.Decimal `json:"total_expense"`
	NetProfit            decimal.Decimal `json:"net_profit"`
	ConsumptionCollected decimal.Decimal `json:"consumption_tax_collected"`
	ConsumptionPaid      decimal.Decimal `json:"consumption_tax_paid"`
	NetPayable           decimal.Decimal `json:"consumption_tax_net_payable"`
	TransactionCount     int             `json:"transaction_count"`
	GeneratedAt          string          `json:"generated_at"`
}

// MonthlyPayrollTotals - payroll aggregates for one (year, month).
type MonthlyPayrollTotals struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	GrossEarnings   decimal.Decimal `json:"gross_earnings"`
	IncomeTax       decimal.Decimal `json:"income_tax"`
	SocialInsurance decimal.Decimal `json:"social_insurance"`
	EducationLevy   decimal.Decimal `json:"education_levy"`
	TrainingLevy    decimal.Decimal `json:"training_levy"`
	PensionEmployee decimal.Decimal `json:"pension_employee"`
	PensionEmployer decimal.Decimal `json:"pension_employer"`
	OtherDeductions decimal.Decimal `json:"other_deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
	EmployeeCount   int             `json:"employee_count"`
}

// EmployeeDeductionTotals - per-employee annual totals for statutory filing.
type EmployeeDeductionTotals struct {
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name,omitempty"`
	GrossEarnings   decimal.Decimal `json:"gross_earnings"`
	IncomeTax       decimal.Decimal `json:"income_tax"`
	SocialInsurance decimal.Decimal `json:"social_insurance"`
	EducationLevy   decimal.Decimal `json:"education_levy"`
	TrainingLevy    decimal.Decimal `json:"training_levy"`
	PensionEmployee decimal.Decimal `json:"pension_employee"`
	NetPay          decimal.Decimal `json:"net_pay"`
}

// AnnualTaxReport - full-year roll-up for statutory filing.
type AnnualTaxReport struct {
	CompanyID         string                    `json:"company_id"`
	Year              int                       `json:"year"`
	Monthly           []MonthlyPayrollTotals    `json:"monthly_payroll_totals"`
	TotalGross        decimal.Decimal           `json:"total_gross_earnings"`
	TotalIncomeTax    decimal.Decimal           `json:"total_income_tax"`
	TotalSocialIns    decimal.Decimal           `json:"total_social_insurance"`
	TotalEducation    decimal.Decimal           `json:"total_education_levy"`
	TotalTraining     decimal.Decimal           `json:"total_training_levy"`
	TotalNetPay       decimal.Decimal           `json:"total_net_pay"`
	Employees         []EmployeeDeductionTotals `json:"employee_totals"`
	NetProfit         decimal.Decimal           `json:"net_profit"`
	CorporateTax      decimal.Decimal           `json:"corporate_tax_liability"`
	CorporateTaxable  bool                      `json:"corporate_taxable"`
	Sections          SectionStatus             `json:"sections"`
	GeneratedAt       string                    `json:"generated_at"`
}

// FilingStatus enum for one levy line of a monthly return.
type FilingStatus string

const (
	FilingRequired  FilingStatus = "required"
	FilingNilReturn FilingStatus = "nil_return"
)

// ReturnLine - one levy of a monthly statutory return.
type ReturnLine struct {
	Levy    string          `json:"levy"`
	Amount  decimal.Decimal `json:"amount"`
	Status  FilingStatus    `json:"status"`
	DueDate string          `json:"due_date"`
}

// MonthlyReturn - per-levy totals for one month with filing flags and due dates.
type MonthlyReturn struct {
	CompanyID   string        `json:"company_id"`
	Year        int           `json:"year"`
	Month       int           `json:"month"`
	Lines       []ReturnLine  `json:"lines"`
	Sections    SectionStatus `json:"sections"`
	GeneratedAt string        `json:"generated_at"`
}

// CategoryScore - one weighted category of the compliance score.
type CategoryScore struct {
	Category string          `json:"category"`
	Weight   decimal.Decimal `json:"weight"`
	Score    decimal.Decimal `json:"score"` // 0-100 within the category
}

// ComplianceReport - weighted registration/filing/payment health, 0-100.
// Derived view, never persisted as a source of truth.
type ComplianceReport struct {
	CompanyID   string          `json:"company_id"`
	Score       decimal.Decimal `json:"score"`
	Categories  []CategoryScore `json:"categories"`
	GeneratedAt string          `json:"generated_at"`
}

// SectionStatus marks report sections that could not be computed. A partial
// report with explicit markers is preferred over aborting the whole report.
type SectionStatus struct {
	Unavailable []string `json:"unavailable,omitempty"`
}

func (s *SectionStatus) MarkUnavailable(section string) {
	s.Unavailable = append(s.Unavailable, section)
}
