package company

import "time"

// LegalForm enum. Corporations are liable for corporate income tax on net
// profit; sole traders are not.
type LegalForm string

const (
	LegalFormSoleTrader  LegalForm = "sole_trader"
	LegalFormPartnership LegalForm = "partnership"
	LegalFormCorporation LegalForm = "corporation"
)

// TaxableAsCorporation reports whether the form attracts corporate tax.
func (f LegalForm) TaxableAsCorporation() bool {
	return f == LegalFormCorporation
}

// Registration - the company's registration for one statutory levy.
type Registration struct {
	Levy         string
	Registered   bool
	RegisteredAt *time.Time
}

// Filing - one statutory return the company filed (or should have filed).
type Filing struct {
	Levy    string
	Year    int
	Month   int
	Filed   bool
	FiledAt *time.Time
}

// Company - the tenant that owns payroll and transaction records. The
// calculation core reads this master data and never mutates it.
type Company struct {
	ID            string
	Name          string
	LegalForm     LegalForm
	Registrations []Registration
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
