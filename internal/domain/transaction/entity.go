package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type enum
type Type string

const (
	TypeIncome        Type = "income"
	TypeExpense       Type = "expense"
	TypeAssetPurchase Type = "asset_purchase"
	TypeAssetSale     Type = "asset_sale"
	TypeLiability     Type = "liability"
	TypeEquity        Type = "equity"
	TypeTransfer      Type = "transfer"
	TypeAdjustment    Type = "adjustment"
)

func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeAssetPurchase, TypeAssetSale,
		TypeLiability, TypeEquity, TypeTransfer, TypeAdjustment:
		return true
	}
	return false
}

// TaxInfo - consumption tax applied to the transaction. Amount is derived
// from Amount × Rate when the transaction is taxable.
type TaxInfo struct {
	IsTaxable bool
	Rate      decimal.Decimal
	Amount    decimal.Decimal
}

// Record - one financial transaction owned by a company. Reconciled records
// are immutable.
type Record struct {
	ID          string
	Number      string
	CompanyID   string
	Type        Type
	Amount      decimal.Decimal
	Tax         TaxInfo
	Date        time.Time
	Description string
	Reconciled  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
