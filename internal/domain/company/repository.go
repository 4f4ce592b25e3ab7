package company

import "context"

// Repository - read access to tenant master data. Filings back the
// compliance score; OutstandingLiability backs its payment category.
type Repository interface {
	GetByID(ctx context.Context, id string) (Company, error)
	ListFilings(ctx context.Context, companyID string, year int) ([]Filing, error)
	OutstandingLiability(ctx context.Context, companyID string) (bool, error)
}
