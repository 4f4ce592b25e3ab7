package payroll

import "errors"

var (
	ErrRecordNotFound      = errors.New("payroll record not found")
	ErrRecordAlreadyExists = errors.New("payroll record already exists for this period")
	ErrInvalidTransition   = errors.New("invalid payroll status transition")
	ErrRecordImmutable     = errors.New("payroll record is paid and immutable")
	ErrVersionConflict     = errors.New("payroll record changed since it was read")
	ErrApproverRequired    = errors.New("approver identity is required")
	ErrPayDateRequired     = errors.New("payment date is required")
	ErrInvalidPeriod       = errors.New("invalid pay period")
	ErrInvalidCadence      = errors.New("invalid pay cadence")
)
