package sequence

import "context"

// Repository defines counter storage. Increment must be a single atomic
// increment-and-read per key; concurrent calls for different keys proceed
// independently.
type Repository interface {
	Increment(ctx context.Context, companyID, kind, periodKey string) (int64, error)
	NumberExists(ctx context.Context, companyID, kind, number string) (bool, error)
}
