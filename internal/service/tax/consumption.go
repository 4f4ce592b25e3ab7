package tax

import (
	"github.com/greenledger/fiscal-backend-go/internal/domain/tax"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// ComputeConsumptionTax returns amount × rate for a taxable transaction and
// zero otherwise. Rates are clamped into [0, 1]; negative amounts are
// rejected. The result rounds to 2 decimal places, half-up.
func ComputeConsumptionTax(amount decimal.Decimal, isTaxable bool, rate decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, tax.ErrNegativeAmount
	}
	if !isTaxable {
		return decimal.Zero, nil
	}

	if rate.IsNegative() {
		rate = decimal.Zero
	} else if rate.GreaterThan(one) {
		rate = one
	}

	return amount.Mul(rate).Round(moneyScale), nil
}
