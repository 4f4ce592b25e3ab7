package payroll

import (
	"context"
	"time"
)

// Repository defines data access for payroll records.
// All methods include companyID to prevent cross-company data access.
type Repository interface {
	Create(ctx context.Context, record Record) (Record, error)
	GetByID(ctx context.Context, id string, companyID string) (Record, error)
	List(ctx context.Context, companyID string, filter Filter) ([]Record, int64, error)
	ListByPeriod(ctx context.Context, companyID string, start, end time.Time) ([]Record, error)

	// Save persists derived fields and the approvals/payment state. The update
	// is conditional on the stored version matching record.Version; a mismatch
	// returns ErrVersionConflict and the caller retries the whole transition.
	Save(ctx context.Context, record Record) (Record, error)
}

// Filter - list query parameters.
type Filter struct {
	EmployeeID string
	Status     Status
	Year       int
	Month      int
	Page       int
	Limit      int
}
