package contribution

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines contribution persistence operations
type Repository interface {
	Create(ctx context.Context, c *Contribution) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contribution, error)
	ListByFund(ctx context.Context, fundID uuid.UUID, status Status, limit, offset int) ([]*Contribution, error)
	CountByFund(ctx context.Context, fundID uuid.UUID, status Status) (int64, error)
	Update(ctx context.Context, c *Contribution) error

	// LockForUpdate acquires the contribution's row lock so a status check and
	// the subsequent transition commit as one unit
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Contribution, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrContributionNotFound indicates missing contribution
type ErrContributionNotFound struct {
	ContributionID uuid.UUID
}

func (e ErrContributionNotFound) Error() string {
	return "contribution not found: " + e.ContributionID.String()
}

// Is implements the errors.Is interface for ErrContributionNotFound
func (e ErrContributionNotFound) Is(target error) bool {
	t, ok := target.(ErrContributionNotFound)
	if !ok {
		return false
	}
	return t.ContributionID == uuid.Nil || t.ContributionID == e.ContributionID
}
