package tax

import (
	"testing"

	"github.com/greenledger/fiscal-backend-go/internal/domain/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeConsumptionTax_Taxable(t *testing.T) {
	t.Parallel()

	amount := dec(t, "100000")
	got, err := ComputeConsumptionTax(amount, true, dec(t, "0.15"))
	require.NoError(t, err)

	assert.Equal(t, "15000.00", got.StringFixed(2))
	assert.Equal(t, "115000.00", amount.Add(got).StringFixed(2))
}

func TestComputeConsumptionTax_NotTaxable(t *testing.T) {
	t.Parallel()

	got, err := ComputeConsumptionTax(dec(t, "100000"), false, dec(t, "0.15"))
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestComputeConsumptionTax_RateClamped(t *testing.T) {
	t.Parallel()

	// Above 1 clamps to the full amount.
	got, err := ComputeConsumptionTax(dec(t, "500"), true, dec(t, "1.5"))
	require.NoError(t, err)
	assert.Equal(t, "500.00", got.StringFixed(2))

	// Below 0 clamps to zero.
	got, err = ComputeConsumptionTax(dec(t, "500"), true, dec(t, "-0.1"))
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestComputeConsumptionTax_NegativeAmount(t *testing.T) {
	t.Parallel()

	_, err := ComputeConsumptionTax(dec(t, "-1"), true, dec(t, "0.15"))
	assert.ErrorIs(t, err, tax.ErrNegativeAmount)
	assert.ErrorIs(t, err, tax.ErrInvalidInput)
}

func TestComputeConsumptionTax_RoundsHalfUp(t *testing.T) {
	t.Parallel()

	// 33.33 × 0.15 = 4.9995 -> 5.00
	got, err := ComputeConsumptionTax(decimal.RequireFromString("33.33"), true, dec(t, "0.15"))
	require.NoError(t, err)
	assert.Equal(t, "5.00", got.StringFixed(2))
}
