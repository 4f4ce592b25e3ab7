package employee

import "time"

// Employee - read model for aggregation joins. Master data is owned
// elsewhere; the calculation core never mutates it.
type Employee struct {
	ID        string
	CompanyID string
	Code      string
	FirstName string
	LastName  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name for report rows.
func (e Employee) FullName() string {
	if e.FirstName == "" {
		return e.LastName
	}
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
