package fixtures

import (
	"github.com/greenledger/fiscal-backend-go/internal/domain/tax"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("fixtures: bad decimal literal " + s)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// defaultRules holds the statutory tables per effective tax year. Amounts are
// annual. Keeping old years around lets historical payroll periods recompute
// under the rules in force at the time.
var defaultRules = map[int]tax.TaxYearRules{
	2024: {
		Year: 2024,
		Brackets: []tax.Bracket{
			{Lower: dec("0"), Upper: decPtr("1500096"), Rate: dec("0")},
			{Lower: dec("1500096"), Upper: decPtr("6000000"), Rate: dec("0.25")},
			{Lower: dec("6000000"), Upper: nil, Rate: dec("0.30")},
		},
		PersonalAllowance:      dec("1500096"),
		SocialInsuranceRate:    dec("0.03"),
		SocialInsuranceCap:     dec("5000000"),
		EducationLevyRate:      dec("0.0225"),
		EducationLevyThreshold: dec("0"),
		TrainingLevyRate:       dec("0.03"),
		PensionEmployeeRate:    dec("0.05"),
		PensionEmployerRate:    dec("0.05"),
		CorporateRate:          dec("0.25"),
		ConsumptionRate:        dec("0.15"),
	},
	2025: {
		Year: 2025,
		Brackets: []tax.Bracket{
			{Lower: dec("0"), Upper: decPtr("1500000"), Rate: dec("0")},
			{Lower: dec("1500000"), Upper: decPtr("6000000"), Rate: dec("0.25")},
			{Lower: dec("6000000"), Upper: nil, Rate: dec("0.30")},
		},
		PersonalAllowance:      dec("1500000"),
		SocialInsuranceRate:    dec("0.03"),
		SocialInsuranceCap:     dec("5000000"),
		EducationLevyRate:      dec("0.0225"),
		EducationLevyThreshold: dec("0"),
		TrainingLevyRate:       dec("0.03"),
		PensionEmployeeRate:    dec("0.05"),
		PensionEmployerRate:    dec("0.05"),
		CorporateRate:          dec("0.25"),
		ConsumptionRate:        dec("0.15"),
	},
}

// RulesForYear returns the statutory table for the year. Years after the
// newest table fall forward to it; years before the oldest are an error.
func RulesForYear(year int) (tax.TaxYearRules, error) {
	if rules, ok := defaultRules[year]; ok {
		return rules, nil
	}

	newest := 0
	for y := range defaultRules {
		if y > newest {
			newest = y
		}
	}
	if year > newest {
		return defaultRules[newest], nil
	}
	return tax.TaxYearRules{}, tax.ErrRulesNotFound
}
