package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/greenledger/fiscal-backend-go/internal/domain/payroll"
	"github.com/greenledger/fiscal-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.Repository {
	return &payrollRepository{db: db}
}

const payrollColumns = `
	id, number, company_id, employee_id, period_start, period_end, cadence,
	earnings, deductions, net_pay, status, approvals,
	pay_date, payment_method, paid, version, created_at, updated_at
`

func (r *payrollRepository) Create(ctx context.Context, record payroll.Record) (payroll.Record, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	earningsJSON, _ := json.Marshal(record.Earnings)
	deductionsJSON, _ := json.Marshal(record.Deductions)
	approvalsJSON, _ := json.Marshal(record.Approvals)

	record.ID = uuid.NewString()
	record.Version = 1

	query := `
		INSERT INTO payroll_records (
			id, number, company_id, employee_id, period_start, period_end, cadence,
			earnings, deductions, net_pay, status, approvals,
			pay_date, payment_method, paid, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID, record.Number, record.CompanyID, record.EmployeeID,
		record.Period.Start, record.Period.End, record.Period.Cadence,
		earningsJSON, deductionsJSON, record.NetPay, record.Status, approvalsJSON,
		record.Payment.PayDate, record.Payment.Method, record.Payment.Paid, record.Version,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_employee_period") || strings.Contains(err.Error(), "uk_payroll_number") {
			return payroll.Record{}, payroll.ErrRecordAlreadyExists
		}
		return payroll.Record{}, database.MapError(fmt.Errorf("failed to create payroll record: %w", err))
	}

	return record, nil
}

func (r *payrollRepository) GetByID(ctx context.Context, id string, companyID string) (payroll.Record, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + ` FROM payroll_records WHERE id = $1 AND company_id = $2`

	record, err := scanPayrollRecord(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Record{}, payroll.ErrRecordNotFound
		}
		return payroll.Record{}, database.MapError(fmt.Errorf("failed to get payroll record: %w", err))
	}

	return record, nil
}

func (r *payrollRepository) List(ctx context.Context, companyID string, filter payroll.Filter) ([]payroll.Record, int64, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	baseQuery := ` FROM payroll_records WHERE company_id = $1`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != "" {
		baseQuery += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.Status != "" {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Year != 0 {
		baseQuery += fmt.Sprintf(" AND EXTRACT(YEAR FROM period_start) = $%d", argIdx)
		args = append(args, filter.Year)
		argIdx++
	}
	if filter.Month != 0 {
		baseQuery += fmt.Sprintf(" AND EXTRACT(MONTH FROM period_start) = $%d", argIdx)
		args = append(args, filter.Month)
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, database.MapError(fmt.Errorf("failed to count payroll records: %w", err))
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(
		"SELECT "+payrollColumns+baseQuery+" ORDER BY period_start DESC, number LIMIT $%d OFFSET $%d",
		argIdx, argIdx+1,
	)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, database.MapError(fmt.Errorf("failed to list payroll records: %w", err))
	}
	defer rows.Close()

	var records []payroll.Record
	for rows.Next() {
		record, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, record)
	}

	return records, totalCount, nil
}

func (r *payrollRepository) ListByPeriod(ctx context.Context, companyID string, start, end time.Time) ([]payroll.Record, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + `
		FROM payroll_records
		WHERE company_id = $1 AND period_start >= $2 AND period_start <= $3
		ORDER BY period_start, number`

	rows, err := q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, database.MapError(fmt.Errorf("failed to list payroll records by period: %w", err))
	}
	defer rows.Close()

	var records []payroll.Record
	for rows.Next() {
		record, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}

// Save persists derived fields and lifecycle state. The update is conditional
// on the stored version; losing a concurrent race returns ErrVersionConflict.
func (r *payrollRepository) Save(ctx context.Context, record payroll.Record) (payroll.Record, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	earningsJSON, _ := json.Marshal(record.Earnings)
	deductionsJSON, _ := json.Marshal(record.Deductions)
	approvalsJSON, _ := json.Marshal(record.Approvals)

	query := `
		UPDATE payroll_records
		SET earnings = $4, deductions = $5, net_pay = $6, status = $7, approvals = $8,
			pay_date = $9, payment_method = $10, paid = $11,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND version = $3
		RETURNING version, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID, record.CompanyID, record.Version,
		earningsJSON, deductionsJSON, record.NetPay, record.Status, approvalsJSON,
		record.Payment.PayDate, record.Payment.Method, record.Payment.Paid,
	).Scan(&record.Version, &record.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			var exists bool
			checkErr := q.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM payroll_records WHERE id = $1 AND company_id = $2)`,
				record.ID, record.CompanyID,
			).Scan(&exists)
			if checkErr == nil && exists {
				return payroll.Record{}, payroll.ErrVersionConflict
			}
			return payroll.Record{}, payroll.ErrRecordNotFound
		}
		return payroll.Record{}, database.MapError(fmt.Errorf("failed to save payroll record: %w", err))
	}

	return record, nil
}

// scanPayrollRecord hydrates one row; earnings, deductions and approvals live
// in jsonb columns.
func scanPayrollRecord(row pgx.Row) (payroll.Record, error) {
	var record payroll.Record
	var earningsBytes, deductionsBytes, approvalsBytes []byte

	err := row.Scan(
		&record.ID, &record.Number, &record.CompanyID, &record.EmployeeID,
		&record.Period.Start, &record.Period.End, &record.Period.Cadence,
		&earningsBytes, &deductionsBytes, &record.NetPay, &record.Status, &approvalsBytes,
		&record.Payment.PayDate, &record.Payment.Method, &record.Payment.Paid,
		&record.Version, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return payroll.Record{}, err
	}

	_ = json.Unmarshal(earningsBytes, &record.Earnings)
	_ = json.Unmarshal(deductionsBytes, &record.Deductions)
	_ = json.Unmarshal(approvalsBytes, &record.Approvals)

	return record, nil
}
