package transaction

import (
	"github.com/greenledger/fiscal-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// CreateRecordRequest creates a transaction. The tax amount is derived
// server-side from amount × rate when taxable.
type CreateRecordRequest struct {
	Type        string           `json:"type"`
	Amount      decimal.Decimal  `json:"amount"`
	IsTaxable   bool             `json:"is_taxable"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	Date        string           `json:"date"`
	Description string           `json:"description,omitempty"`
}

func (r CreateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if !Type(r.Type).Valid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "unknown transaction type"})
	}
	if r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must not be negative"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateRecordRequest patches a record's mutable fields before it is
// reconciled. The tax amount is re-derived from the patched inputs.
type UpdateRecordRequest struct {
	ID          string           `json:"-"`
	Type        *string          `json:"type,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	IsTaxable   *bool            `json:"is_taxable,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	Date        *string          `json:"date,omitempty"`
	Description *string          `json:"description,omitempty"`
}

func (r UpdateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Type != nil && !Type(*r.Type).Valid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "unknown transaction type"})
	}
	if r.Amount != nil && r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must not be negative"})
	}
	if r.Date != nil {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RecordResponse - API shape of a transaction record.
type RecordResponse struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	IsTaxable   bool            `json:"is_taxable"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalDue    decimal.Decimal `json:"total_due"`
	Date        string          `json:"date"`
	Description string          `json:"description,omitempty"`
	Reconciled  bool            `json:"reconciled"`
}

// ListRecordResponse - paginated list of transaction records.
type ListRecordResponse struct {
	Data       []RecordResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}
