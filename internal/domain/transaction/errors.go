package transaction

import "errors"

var (
	ErrRecordNotFound = errors.New("transaction record not found")
	ErrInvalidType    = errors.New("invalid transaction type")
	ErrInvalidAmount  = errors.New("transaction amount must not be negative")
	ErrReconciled     = errors.New("transaction is reconciled and immutable")
)
