package tax

import (
	"github.com/shopspring/decimal"
)

// Bracket is one band of the progressive income tax table. Bounds are annual
// amounts. Upper is nil on the last bracket (unbounded).
type Bracket struct {
	Lower decimal.Decimal
	Upper *decimal.Decimal
	Rate  decimal.Decimal
}

// TaxYearRules holds every statutory rate and threshold in force for one tax
// year. Rules are passed explicitly into the calculators so historical
// periods can be recomputed with the rules that applied at the time.
type TaxYearRules struct {
	Year int

	// Progressive income tax
	Brackets          []Bracket
	PersonalAllowance decimal.Decimal // annual

	// Social insurance: flat rate up to an annual income cap
	SocialInsuranceRate decimal.Decimal
	SocialInsuranceCap  decimal.Decimal // annual

	// Education levy: flat rate on annual income above the threshold
	EducationLevyRate      decimal.Decimal
	EducationLevyThreshold decimal.Decimal // annual

	// Training levy: flat rate, no threshold
	TrainingLevyRate decimal.Decimal

	// Pension: applied to period gross, employee and employer sides
	PensionEmployeeRate decimal.Decimal
	PensionEmployerRate decimal.Decimal

	// Corporate income tax on annual net profit
	CorporateRate decimal.Decimal

	// Default consumption tax rate for taxable transactions
	ConsumptionRate decimal.Decimal
}

// Validate checks the bracket table invariants: sorted ascending by lower
// bound, contiguous, non-overlapping, last bracket unbounded, rates
// non-negative.
func (r TaxYearRules) Validate() error {
	if len(r.Brackets) == 0 {
		return ErrNoBrackets
	}

	for i, b := range r.Brackets {
		if b.Rate.IsNegative() {
			return ErrNegativeRate
		}
		if b.Lower.IsNegative() {
			return ErrMalformedBrackets
		}

		last := i == len(r.Brackets)-1
		if last {
			if b.Upper != nil {
				return ErrUnboundedLastBracket
			}
			continue
		}

		if b.Upper == nil {
			// Only the last bracket may be open-ended.
			return ErrMalformedBrackets
		}
		if b.Upper.LessThanOrEqual(b.Lower) {
			return ErrMalformedBrackets
		}
		next := r.Brackets[i+1]
		if !next.Lower.Equal(*b.Upper) {
			// Gap or overlap between adjacent brackets.
			return ErrMalformedBrackets
		}
	}

	if r.PersonalAllowance.IsNegative() ||
		r.SocialInsuranceRate.IsNegative() || r.SocialInsuranceCap.IsNegative() ||
		r.EducationLevyRate.IsNegative() || r.EducationLevyThreshold.IsNegative() ||
		r.TrainingLevyRate.IsNegative() ||
		r.PensionEmployeeRate.IsNegative() || r.PensionEmployerRate.IsNegative() {
		return ErrNegativeRate
	}

	return nil
}

// Width returns the taxable span of the bracket covered by annual income,
// zero if income does not reach the bracket.
func (b Bracket) Width(income decimal.Decimal) decimal.Decimal {
	if income.LessThanOrEqual(b.Lower) {
		return decimal.Zero
	}
	top := income
	if b.Upper != nil && b.Upper.LessThan(income) {
		top = *b.Upper
	}
	return top.Sub(b.Lower)
}
