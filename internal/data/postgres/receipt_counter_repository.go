package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/association-ledger/internal/domain/fiscalyear"
	"github.com/association-ledger/internal/platform/persistence"
)

// ReceiptCounterRepository implements fiscalyear.CounterRepository for
// PostgreSQL. The increment runs as a single statement, so the counter row is
// locked by the statement itself and stays locked until the enclosing
// transaction commits. Concurrent approvals for the same year therefore queue
// on the row and can never observe the same next value; a sequence number is
// consumed permanently even if the approval later rolls back the record, which
// keeps issued numbers strictly increasing but not necessarily gapless.
type ReceiptCounterRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewReceiptCounterRepository creates a new PostgreSQL receipt counter repository
func NewReceiptCounterRepository(logger *slog.Logger, db *persistence.PostgresDB) fiscalyear.CounterRepository {
	return &ReceiptCounterRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *ReceiptCounterRepository) WithTx(tx pgx.Tx) fiscalyear.CounterRepository {
	return &ReceiptCounterRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Next allocates the next 1-based sequence number for the year
func (r *ReceiptCounterRepository) Next(ctx context.Context, year int) (int64, error) {
	query := `
		INSERT INTO receipt_counters (year, last_seq)
		VALUES ($1, 1)
		ON CONFLICT (year)
		DO UPDATE SET last_seq = receipt_counters.last_seq + 1
		RETURNING last_seq
	`

	var seq int64
	if err := r.querier.QueryRow(ctx, query, year).Scan(&seq); err != nil {
		r.logger.Error("Failed to allocate receipt sequence", "year", year, "error", err)
		return 0, fmt.Errorf("failed to allocate receipt sequence: %w", err)
	}

	return seq, nil
}
