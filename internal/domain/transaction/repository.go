package transaction

import (
	"context"
	"time"
)

// Repository defines data access for transaction records.
// All methods include companyID to prevent cross-company data access.
type Repository interface {
	Create(ctx context.Context, record Record) (Record, error)
	GetByID(ctx context.Context, id string, companyID string) (Record, error)
	List(ctx context.Context, companyID string, filter Filter) ([]Record, int64, error)
	ListByPeriod(ctx context.Context, companyID string, start, end time.Time) ([]Record, error)
	Update(ctx context.Context, record Record) (Record, error)
	MarkReconciled(ctx context.Context, id string, companyID string) error
}

// Filter - list query parameters.
type Filter struct {
	Type  Type
	From  *time.Time
	To    *time.Time
	Page  int
	Limit int
}
