package employee

import "context"

// Repository - read access to employee master data, tenant scoped.
type Repository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
}
