package fund

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines fund persistence operations
type Repository interface {
	Create(ctx context.Context, f *Fund) error
	GetByID(ctx context.Context, id uuid.UUID) (*Fund, error)
	List(ctx context.Context, limit, offset int) ([]*Fund, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, f *Fund) error

	// LockForUpdate acquires the fund's row lock. The fund row is the
	// serialization point for every balance-affecting operation on the fund.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Fund, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrFundNotFound indicates missing fund
type ErrFundNotFound struct {
	FundID uuid.UUID
}

func (e ErrFundNotFound) Error() string {
	return "fund not found: " + e.FundID.String()
}

// Is implements the errors.Is interface for ErrFundNotFound
func (e ErrFundNotFound) Is(target error) bool {
	t, ok := target.(ErrFundNotFound)
	if !ok {
		return false
	}
	return t.FundID == uuid.Nil || t.FundID == e.FundID
}

// ErrFundInactive indicates a mutation attempted against a deactivated fund
type ErrFundInactive struct {
	FundID uuid.UUID
}

func (e ErrFundInactive) Error() string {
	return "fund is inactive: " + e.FundID.String()
}

func (e ErrFundInactive) Is(target error) bool {
	t, ok := target.(ErrFundInactive)
	if !ok {
		return false
	}
	return t.FundID == uuid.Nil || t.FundID == e.FundID
}
