package sequence

import "errors"

var (
	ErrInvalidKey     = errors.New("sequence key must include company, kind and period")
	ErrNumberConflict = errors.New("sequence number already issued")
)
