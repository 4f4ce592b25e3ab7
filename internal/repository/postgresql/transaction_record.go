package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/greenledger/fiscal-backend-go/internal/domain/transaction"
	"github.com/greenledger/fiscal-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type transactionRepository struct {
	db *database.DB
}

func NewTransactionRepository(db *database.DB) transaction.Repository {
	return &transactionRepository{db: db}
}

const transactionColumns = `
	id, number, company_id, type, amount, is_taxable, tax_rate, tax_amount,
	date, description, reconciled, created_at, updated_at
`

func (r *transactionRepository) Create(ctx context.Context, record transaction.Record) (transaction.Record, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	record.ID = uuid.NewString()

	query := `
		INSERT INTO transaction_records (
			id, number, company_id, type, amount, is_taxable, tax_rate, tax_amount,
			date, description, reconciled
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID, record.Number, record.CompanyID, record.Type,
		record.Amount, record.Tax.IsTaxable, record.Tax.Rate, record.Tax.Amount,
		record.Date, record.Description,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_transaction_number") {
			return transaction.Record{}, fmt.Errorf("transaction number taken: %w", err)
		}
		return transaction.Record{}, database.MapError(fmt.Errorf("failed to create transaction record: %w", err))
	}

	return record, nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string, companyID string) (transaction.Record, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + transactionColumns + ` FROM transaction_records WHERE id = $1 AND company_id = $2`

	record, err := scanTransactionRecord(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return transaction.Record{}, transaction.ErrRecordNotFound
		}
		return transaction.Record{}, database.MapError(fmt.Errorf("failed to get transaction record: %w", err))
	}

	return record, nil
}

func (r *transactionRepository) List(ctx context.Context, companyID string, filter transaction.Filter) ([]transaction.Record, int64, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	baseQuery := ` FROM transaction_records WHERE company_id = $1`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Type != "" {
		baseQuery += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, filter.Type)
		argIdx++
	}
	if filter.From != nil {
		baseQuery += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		baseQuery += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.To)
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, database.MapError(fmt.Errorf("failed to count transaction records: %w", err))
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(
		"SELECT "+transactionColumns+baseQuery+" ORDER BY date DESC, number DESC LIMIT $%d OFFSET $%d",
		argIdx, argIdx+1,
	)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, database.MapError(fmt.Errorf("failed to list transaction records: %w", err))
	}
	defer rows.Close()

	var records []transaction.Record
	for rows.Next() {
		record, err := scanTransactionRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction record: %w", err)
		}
		records = append(records, record)
	}

	return records, totalCount, nil
}

func (r *transactionRepository) ListByPeriod(ctx context.Context, companyID string, start, end time.Time) ([]transaction.Record, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + transactionColumns + `
		FROM transaction_records
		WHERE company_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, number`

	rows, err := q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, database.MapError(fmt.Errorf("failed to list transaction records by period: %w", err))
	}
	defer rows.Close()

	var records []transaction.Record
	for rows.Next() {
		record, err := scanTransactionRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction record: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}

// Update rewrites a record's mutable fields. Reconciled records never match
// the predicate, so editing one reports ErrReconciled.
func (r *transactionRepository) Update(ctx context.Context, record transaction.Record) (transaction.Record, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE transaction_records
		SET type = $3, amount = $4, is_taxable = $5, tax_rate = $6, tax_amount = $7,
			date = $8, description = $9, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND reconciled = false
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID, record.CompanyID, record.Type,
		record.Amount, record.Tax.IsTaxable, record.Tax.Rate, record.Tax.Amount,
		record.Date, record.Description,
	).Scan(&record.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			var reconciled bool
			checkErr := q.QueryRow(ctx,
				`SELECT reconciled FROM transaction_records WHERE id = $1 AND company_id = $2`,
				record.ID, record.CompanyID,
			).Scan(&reconciled)
			if checkErr == nil && reconciled {
				return transaction.Record{}, transaction.ErrReconciled
			}
			return transaction.Record{}, transaction.ErrRecordNotFound
		}
		return transaction.Record{}, database.MapError(fmt.Errorf("failed to update transaction record: %w", err))
	}

	return record, nil
}

func (r *transactionRepository) MarkReconciled(ctx context.Context, id string, companyID string) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE transaction_records
		SET reconciled = true, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND reconciled = false
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, companyID).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			var exists bool
			checkErr := q.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM transaction_records WHERE id = $1 AND company_id = $2)`,
				id, companyID,
			).Scan(&exists)
			if checkErr == nil && exists {
				return transaction.ErrReconciled
			}
			return transaction.ErrRecordNotFound
		}
		return database.MapError(fmt.Errorf("failed to reconcile transaction record: %w", err))
	}

	return nil
}

func scanTransactionRecord(row pgx.Row) (transaction.Record, error) {
	var record transaction.Record
	err := row.Scan(
		&record.ID, &record.Number, &record.CompanyID, &record.Type,
		&record.Amount, &record.Tax.IsTaxable, &record.Tax.Rate, &record.Tax.Amount,
		&record.Date, &record.Description, &record.Reconciled,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return transaction.Record{}, err
	}
	return record, nil
}
