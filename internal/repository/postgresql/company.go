package postgresql

import (
	"context"
	"fmt"

	"github.com/greenledger/fiscal-backend-go/internal/domain/company"
	"github.com/greenledger/fiscal-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type companyRepository struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.Repository {
	return &companyRepository{db: db}
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (company.Company, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, legal_form, created_at, updated_at
		FROM companies
		WHERE id = $1 AND deleted_at IS NULL
	`

	var c company.Company
	err := q.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.LegalForm, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return company.Company{}, company.ErrCompanyNotFound
		}
		return company.Company{}, database.MapError(fmt.Errorf("failed to get company: %w", err))
	}

	regQuery := `
		SELECT levy, registered, registered_at
		FROM company_levy_registrations
		WHERE company_id = $1
		ORDER BY levy
	`

	rows, err := q.Query(ctx, regQuery, id)
	if err != nil {
		return company.Company{}, database.MapError(fmt.Errorf("failed to list levy registrations: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var reg company.Registration
		if err := rows.Scan(&reg.Levy, &reg.Registered, &reg.RegisteredAt); err != nil {
			return company.Company{}, fmt.Errorf("failed to scan levy registration: %w", err)
		}
		c.Registrations = append(c.Registrations, reg)
	}

	return c, nil
}

func (r *companyRepository) ListFilings(ctx context.Context, companyID string, year int) ([]company.Filing, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	// Only filings already due count toward the score.
	query := `
		SELECT levy, year, month, filed, filed_at
		FROM statutory_filings
		WHERE company_id = $1 AND year = $2 AND due_date <= NOW()
		ORDER BY month, levy
	`

	rows, err := q.Query(ctx, query, companyID, year)
	if err != nil {
		return nil, database.MapError(fmt.Errorf("failed to list statutory filings: %w", err))
	}
	defer rows.Close()

	var filings []company.Filing
	for rows.Next() {
		var f company.Filing
		if err := rows.Scan(&f.Levy, &f.Year, &f.Month, &f.Filed, &f.FiledAt); err != nil {
			return nil, fmt.Errorf("failed to scan statutory filing: %w", err)
		}
		filings = append(filings, f)
	}

	return filings, nil
}

func (r *companyRepository) OutstandingLiability(ctx context.Context, companyID string) (bool, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM statutory_payments
			WHERE company_id = $1 AND settled = false AND due_date < NOW()
		)
	`

	var outstanding bool
	err := q.QueryRow(ctx, query, companyID).Scan(&outstanding)
	if err != nil {
		return false, database.MapError(fmt.Errorf("failed to check outstanding liability: %w", err))
	}

	return outstanding, nil
}
