package fiscalyear

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines financial year persistence operations
type Repository interface {
	Create(ctx context.Context, y *Year) error

	// Get returns nil, nil when no record exists for the year; callers treat
	// an absent record as closed
	Get(ctx context.Context, year int) (*Year, error)

	Update(ctx context.Context, y *Year) error

	// LockForUpdate acquires the year's row lock so concurrent close attempts
	// serialize. Returns nil, nil when the year has no record.
	LockForUpdate(ctx context.Context, year int) (*Year, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrYearNotFound indicates a year with no closure record
type ErrYearNotFound struct {
	Year int
}

func (e ErrYearNotFound) Error() string {
	return "financial year has no record"
}

func (e ErrYearNotFound) Is(target error) bool {
	t, ok := target.(ErrYearNotFound)
	if !ok {
		return false
	}
	return t.Year == 0 || t.Year == e.Year
}

// CounterRepository allocates per-year receipt sequence numbers. The
// underlying increment must hold the counter's row lock for the duration of
// the enclosing transaction so two approvals can never observe the same
// next value.
type CounterRepository interface {
	// Next returns the next 1-based sequence number for the year
	Next(ctx context.Context, year int) (int64, error)
	WithTx(tx pgx.Tx) CounterRepository
}
