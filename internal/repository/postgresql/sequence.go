package postgresql

import (
	"context"
	"fmt"

	"github.com/greenledger/fiscal-backend-go/internal/domain/sequence"
	"github.com/greenledger/fiscal-backend-go/internal/pkg/database"
)

type sequenceRepository struct {
	db *database.DB
}

func NewSequenceRepository(db *database.DB) sequence.Repository {
	return &sequenceRepository{db: db}
}

// Increment bumps the counter for one (company, kind, period) key and returns
// the new ordinal. The upsert is a single statement, so two concurrent calls
// can never read the same value and a crash between read and write cannot
// happen. Ordinals are gapless per key.
func (r *sequenceRepository) Increment(ctx context.Context, companyID, kind, periodKey string) (int64, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO sequence_counters (company_id, kind, period_key, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, kind, period_key)
		DO UPDATE SET last_value = sequence_counters.last_value + 1, updated_at = NOW()
		RETURNING last_value
	`

	var lastValue int64
	err := q.QueryRow(ctx, query, companyID, kind, periodKey).Scan(&lastValue)
	if err != nil {
		return 0, database.MapError(fmt.Errorf("failed to increment sequence counter: %w", err))
	}

	return lastValue, nil
}

// NumberExists reports whether a formatted number is already carried by a
// record of the given kind.
func (r *sequenceRepository) NumberExists(ctx context.Context, companyID, kind, number string) (bool, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()
	q := GetQuerier(ctx, r.db)

	var table string
	switch kind {
	case sequence.KindPayroll:
		table = "payroll_records"
	case sequence.KindTransaction:
		table = "transaction_records"
	default:
		return false, sequence.ErrInvalidKey
	}

	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE company_id = $1 AND number = $2)`, table)

	var exists bool
	err := q.QueryRow(ctx, query, companyID, number).Scan(&exists)
	if err != nil {
		return false, database.MapError(fmt.Errorf("failed to check number existence: %w", err))
	}

	return exists, nil
}
