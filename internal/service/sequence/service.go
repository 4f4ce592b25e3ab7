package sequence

import (
	"context"
	"fmt"
	"strings"

	"github.com/greenledger/fiscal-backend-go/internal/domain/sequence"
	"github.com/greenledger/fiscal-backend-go/internal/pkg/validator"
)

// Service issues unique, monotonically increasing record numbers scoped to
// (company, kind, period). The ordinal always comes from the repository's
// atomic increment; deriving it from a count of existing records races under
// concurrent creation and is never done here.
type Service interface {
	NextNumber(ctx context.Context, companyID, kind, periodKey string, format sequence.Format) (string, error)
}

type ServiceImpl struct {
	repo sequence.Repository
}

func NewSequenceService(repo sequence.Repository) Service {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) NextNumber(ctx context.Context, companyID, kind, periodKey string, format sequence.Format) (string, error) {
	if companyID == "" || kind == "" {
		return "", sequence.ErrInvalidKey
	}
	if !validator.IsValidPeriodKey(periodKey) {
		return "", sequence.ErrInvalidKey
	}

	ordinal, err := s.repo.Increment(ctx, companyID, kind, periodKey)
	if err != nil {
		return "", fmt.Errorf("failed to increment sequence counter: %w", err)
	}

	number := FormatNumber(format, periodKey, ordinal)

	// Defensive check: under correct counter discipline an issued number can
	// never collide, so a hit here means the counter was tampered with.
	exists, err := s.repo.NumberExists(ctx, companyID, kind, number)
	if err != nil {
		return "", fmt.Errorf("failed to verify sequence number: %w", err)
	}
	if exists {
		return "", sequence.ErrNumberConflict
	}

	return number, nil
}

// FormatNumber renders "<PREFIX>-<compact period>-<zero-padded ordinal>",
// e.g. ("PAY", "2025-03", 1) -> "PAY-202503-00001".
func FormatNumber(format sequence.Format, periodKey string, ordinal int64) string {
	width := format.Width
	if width <= 0 {
		width = sequence.DefaultWidth
	}
	compact := strings.ReplaceAll(periodKey, "-", "")
	return fmt.Sprintf("%s-%s-%0*d", format.Prefix, compact, width, ordinal)
}
