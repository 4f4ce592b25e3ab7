package report

import "github.com/shopspring/decimal"

// Levy names used across returns and compliance checks.
const (
	LevyIncomeTax       = "income_tax"
	LevySocialInsurance = "social_insurance"
	LevyEducation       = "education_levy"
	LevyTraining        = "training_levy"
	LevyConsumption     = "consumption_tax"
)

// ComplianceConfig - weights and category membership for the compliance
// score, plus the statutory return due day. Configuration, not hard-coded
// per call.
type ComplianceConfig struct {
	RegistrationWeight decimal.Decimal
	FilingWeight       decimal.Decimal
	PaymentWeight      decimal.Decimal

	// Levies a registered company is expected to hold registrations and
	// file returns for.
	Levies []string

	// Day of the following month a monthly return falls due.
	ReturnDueDay int
}

// DefaultComplianceConfig - registration 30 / filing 40 / payment 30,
// returns due on the 14th of the following month.
func DefaultComplianceConfig() ComplianceConfig {
	return ComplianceConfig{
		RegistrationWeight: decimal.NewFromInt(30),
		FilingWeight:       decimal.NewFromInt(40),
		PaymentWeight:      decimal.NewFromInt(30),
		Levies: []string{
			LevyIncomeTax,
			LevySocialInsurance,
			LevyEducation,
			LevyTraining,
			LevyConsumption,
		},
		ReturnDueDay: 14,
	}
}
