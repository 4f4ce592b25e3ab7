package report

import "errors"

var (
	ErrDataUnavailable = errors.New("underlying records unavailable or inconsistent")
	ErrInvalidPeriod   = errors.New("invalid reporting period")
)
