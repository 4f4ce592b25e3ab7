package tax

import (
	"github.com/greenledger/fiscal-backend-go/internal/domain/payroll"
	"github.com/greenledger/fiscal-backend-go/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// moneyScale - all monetary outputs round to 2 decimal places, half-up.
// Rounding happens only at the final output step; intermediate annual figures
// stay unrounded so repeated recomputation cannot drift.
const moneyScale = 2

// ComputeDeductions derives the statutory deduction breakdown for one pay
// period's gross earnings under the given tax year rules. Statutory tables
// are annual, so the period gross is annualized by the cadence factor and the
// resulting annual levies divided back by the same factor. Pure and
// deterministic: identical inputs always produce identical output.
func ComputeDeductions(gross decimal.Decimal, cadence payroll.PayCadence, rules tax.TaxYearRules) (payroll.DeductionsBreakdown, error) {
	if gross.IsNegative() {
		return payroll.DeductionsBreakdown{}, tax.ErrNegativeGross
	}
	if err := rules.Validate(); err != nil {
		return payroll.DeductionsBreakdown{}, err
	}

	factor := decimal.NewFromInt(cadence.PeriodsPerYear())
	annualGross := gross.Mul(factor)

	taxableIncome := annualGross.Sub(rules.PersonalAllowance)
	if taxableIncome.IsNegative() {
		taxableIncome = decimal.Zero
	}

	// The bracket walk runs over annual gross: the zero-rate first band is
	// the personal allowance, so subtracting the allowance again would
	// double-count it. TaxableIncome is reported as the statutory base.
	annualIncomeTax := progressiveTax(annualGross, rules.Brackets)

	// Social insurance contributes on annual gross up to the cap.
	insurableGross := annualGross
	if insurableGross.GreaterThan(rules.SocialInsuranceCap) {
		insurableGross = rules.SocialInsuranceCap
	}
	annualSocialInsurance := insurableGross.Mul(rules.SocialInsuranceRate)

	// Education levy applies only above its threshold.
	educationBase := annualGross.Sub(rules.EducationLevyThreshold)
	if educationBase.IsNegative() {
		educationBase = decimal.Zero
	}
	annualEducationLevy := educationBase.Mul(rules.EducationLevyRate)

	// Training levy has no threshold.
	annualTrainingLevy := annualGross.Mul(rules.TrainingLevyRate)

	// Pension applies to the period gross directly; the employer side is
	// informational and never reduces net pay.
	pensionEmployee := gross.Mul(rules.PensionEmployeeRate)
	pensionEmployer := gross.Mul(rules.PensionEmployerRate)

	d := payroll.DeductionsBreakdown{
		IncomeTax: payroll.IncomeTaxDetail{
			TaxableIncome: taxableIncome,
			Amount:        annualIncomeTax.Div(factor).Round(moneyScale),
		},
		SocialInsurance: annualSocialInsurance.Div(factor).Round(moneyScale),
		EducationLevy:   annualEducationLevy.Div(factor).Round(moneyScale),
		TrainingLevy:    annualTrainingLevy.Div(factor).Round(moneyScale),
		Pension: payroll.PensionDetail{
			EmployeeContribution: pensionEmployee.Round(moneyScale),
			EmployerContribution: pensionEmployer.Round(moneyScale),
		},
	}
	d.TotalDeductions = d.Total()

	return d, nil
}

// progressiveTax walks the brackets in ascending order accumulating marginal
// tax: each bracket taxes only the income falling inside its own band.
// Zero-rate brackets still consume their width.
func progressiveTax(income decimal.Decimal, brackets []tax.Bracket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range brackets {
		width := b.Width(income)
		if width.IsZero() {
			continue
		}
		total = total.Add(width.Mul(b.Rate))
	}
	return total
}
