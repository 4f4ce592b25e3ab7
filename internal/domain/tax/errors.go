package tax

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the root of the calculator input errors; the specific
// sentinels below wrap it so callers can match either level with errors.Is.
var ErrInvalidInput = errors.New("invalid calculation input")

var (
	ErrNegativeGross        = fmt.Errorf("%w: gross earnings must not be negative", ErrInvalidInput)
	ErrNegativeAmount       = fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	ErrNoBrackets           = fmt.Errorf("%w: tax year rules have no brackets", ErrInvalidInput)
	ErrMalformedBrackets    = fmt.Errorf("%w: tax brackets must be sorted, contiguous and non-overlapping", ErrInvalidInput)
	ErrUnboundedLastBracket = fmt.Errorf("%w: only the last tax bracket may be unbounded", ErrInvalidInput)
	ErrNegativeRate         = fmt.Errorf("%w: tax rates and thresholds must not be negative", ErrInvalidInput)
)

var ErrRulesNotFound = errors.New("no tax rules for requested year")
