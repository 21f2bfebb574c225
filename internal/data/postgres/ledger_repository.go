package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/association-ledger/internal/domain/ledger"
	"github.com/association-ledger/internal/platform/persistence"
)

// LedgerRepository implements the ledger.Repository interface for PostgreSQL.
// The ledger_entries table is append-only: this repository intentionally has
// no update or delete statements.
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create appends a new ledger entry
func (r *LedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries (id, fund_id, entry_type, source, source_id, amount, balance_after, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.FundID,
		entry.EntryType,
		entry.Source,
		entry.SourceID,
		entry.Amount,
		entry.BalanceAfter,
		entry.CreatedBy,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create ledger entry", "fund_id", entry.FundID.String(), "error", err)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

// LatestByFund returns the most recently created entry for the fund, or nil
// when the fund has no ledger history. Entries share a creation instant only
// within the same transaction, so seq breaks ties deterministically.
func (r *LedgerRepository) LatestByFund(ctx context.Context, fundID uuid.UUID) (*ledger.Entry, error) {
	query := `
		SELECT id, fund_id, entry_type, source, source_id, amount, balance_after, created_by, created_at
		FROM ledger_entries
		WHERE fund_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`

	entry, err := r.scanOne(r.querier.QueryRow(ctx, query, fundID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No history yet, balance is zero
		}
		r.logger.Error("Failed to get latest ledger entry", "fund_id", fundID.String(), "error", err)
		return nil, fmt.Errorf("failed to get latest ledger entry: %w", err)
	}

	return entry, nil
}

// GetBySource retrieves the entry committed for a given financial record
func (r *LedgerRepository) GetBySource(ctx context.Context, source ledger.Source, sourceID uuid.UUID) (*ledger.Entry, error) {
	query := `
		SELECT id, fund_id, entry_type, source, source_id, amount, balance_after, created_by, created_at
		FROM ledger_entries
		WHERE source = $1 AND source_id = $2
	`

	entry, err := r.scanOne(r.querier.QueryRow(ctx, query, source, sourceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrEntryNotFound{SourceID: sourceID}
		}
		r.logger.Error("Failed to get ledger entry by source", "source_id", sourceID.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger entry by source: %w", err)
	}

	return entry, nil
}

// ListByFund retrieves paginated ledger entries for a fund, newest first
func (r *LedgerRepository) ListByFund(ctx context.Context, fundID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	query := `
		SELECT id, fund_id, entry_type, source, source_id, amount, balance_after, created_by, created_at
		FROM ledger_entries
		WHERE fund_id = $1
		ORDER BY seq DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, fundID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list ledger entries", "fund_id", fundID.String(), "error", err)
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.ID, &e.FundID, &e.EntryType, &e.Source, &e.SourceID, &e.Amount, &e.BalanceAfter, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entry rows: %w", err)
	}

	return entries, nil
}

// CountByFund returns the number of ledger entries for a fund
func (r *LedgerRepository) CountByFund(ctx context.Context, fundID uuid.UUID) (int64, error) {
	var count int64
	err := r.querier.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entries WHERE fund_id = $1`, fundID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count ledger entries", "fund_id", fundID.String(), "error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return count, nil
}

func (r *LedgerRepository) scanOne(row pgx.Row) (*ledger.Entry, error) {
	var e ledger.Entry
	err := row.Scan(
		&e.ID,
		&e.FundID,
		&e.EntryType,
		&e.Source,
		&e.SourceID,
		&e.Amount,
		&e.BalanceAfter,
		&e.CreatedBy,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
