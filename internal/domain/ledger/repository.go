package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages the append-only ledger. There is deliberately no update
// or delete operation.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error

	// LatestByFund returns the most recently created entry for the fund, or
	// nil when the fund has no ledger history yet. Callers that feed the
	// result into a mutation must invoke this through WithTx under the fund
	// lock, otherwise the balance read may be stale.
	LatestByFund(ctx context.Context, fundID uuid.UUID) (*Entry, error)

	GetBySource(ctx context.Context, source Source, sourceID uuid.UUID) (*Entry, error)
	ListByFund(ctx context.Context, fundID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByFund(ctx context.Context, fundID uuid.UUID) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrEntryNotFound indicates missing ledger entry
type ErrEntryNotFound struct {
	SourceID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found for source: " + e.SourceID.String()
}

// Is implements the errors.Is interface for ErrEntryNotFound
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	return t.SourceID == uuid.Nil || t.SourceID == e.SourceID
}
