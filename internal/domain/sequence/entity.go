package sequence

import "time"

// Kind constants for the record families that consume sequence numbers.
const (
	KindPayroll     = "payroll"
	KindTransaction = "txn"
)

// Counter - last ordinal issued for one (company, kind, period) key. The
// next ordinal must only ever be produced by an atomic increment-and-read
// against this row, never by counting existing records.
type Counter struct {
	CompanyID string
	Kind      string
	PeriodKey string
	LastValue int64
	UpdatedAt time.Time
}

// Format controls how an issued ordinal renders as a record number,
// e.g. Prefix "PAY", Width 5 with period "2025-03" -> "PAY-202503-00001".
type Format struct {
	Prefix string
	Width  int
}

// DefaultWidth pads ordinals when a format does not set one.
const DefaultWidth = 5
