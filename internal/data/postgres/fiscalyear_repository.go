package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/association-ledger/internal/domain/fiscalyear"
	"github.com/association-ledger/internal/platform/persistence"
)

// FiscalYearRepository implements the fiscalyear.Repository interface for PostgreSQL
type FiscalYearRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewFiscalYearRepository creates a new PostgreSQL financial year repository
func NewFiscalYearRepository(logger *slog.Logger, db *persistence.PostgresDB) fiscalyear.Repository {
	return &FiscalYearRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *FiscalYearRepository) WithTx(tx pgx.Tx) fiscalyear.Repository {
	return &FiscalYearRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new financial year record
func (r *FiscalYearRepository) Create(ctx context.Context, y *fiscalyear.Year) error {
	query := `
		INSERT INTO financial_years (year, status, opened_by, opened_at, closed_by, closed_at, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		y.Year,
		y.Status,
		y.OpenedBy,
		y.OpenedAt,
		y.ClosedBy,
		y.ClosedAt,
		y.Remarks,
	)
	if err != nil {
		r.logger.Error("Failed to create financial year", "year", y.Year, "error", err)
		return fmt.Errorf("failed to create financial year: %w", err)
	}

	return nil
}

// Get retrieves a financial year record, or nil when no record exists
func (r *FiscalYearRepository) Get(ctx context.Context, year int) (*fiscalyear.Year, error) {
	query := `
		SELECT year, status, opened_by, opened_at, closed_by, closed_at, remarks
		FROM financial_years
		WHERE year = $1
	`

	y, err := r.scanOne(r.querier.QueryRow(ctx, query, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Absent record, treated as closed by the gate
		}
		r.logger.Error("Failed to get financial year", "year", year, "error", err)
		return nil, fmt.Errorf("failed to get financial year: %w", err)
	}

	return y, nil
}

// Update persists the closure fields of a financial year
func (r *FiscalYearRepository) Update(ctx context.Context, y *fiscalyear.Year) error {
	query := `
		UPDATE financial_years
		SET status = $1, closed_by = $2, closed_at = $3, remarks = $4
		WHERE year = $5
	`

	result, err := r.querier.Exec(ctx, query,
		y.Status,
		y.ClosedBy,
		y.ClosedAt,
		y.Remarks,
		y.Year,
	)
	if err != nil {
		r.logger.Error("Failed to update financial year", "year", y.Year, "error", err)
		return fmt.Errorf("failed to update financial year: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fiscalyear.ErrYearNotFound{Year: y.Year}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the year record so concurrent
// close attempts serialize. Returns nil, nil when the year has no record.
func (r *FiscalYearRepository) LockForUpdate(ctx context.Context, year int) (*fiscalyear.Year, error) {
	query := `
		SELECT year, status, opened_by, opened_at, closed_by, closed_at, remarks
		FROM financial_years
		WHERE year = $1
		FOR UPDATE
	`

	y, err := r.scanOne(r.querier.QueryRow(ctx, query, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to lock financial year", "year", year, "error", err)
		return nil, fmt.Errorf("failed to lock financial year: %w", err)
	}

	return y, nil
}

func (r *FiscalYearRepository) scanOne(row pgx.Row) (*fiscalyear.Year, error) {
	var y fiscalyear.Year
	err := row.Scan(
		&y.Year,
		&y.Status,
		&y.OpenedBy,
		&y.OpenedAt,
		&y.ClosedBy,
		&y.ClosedAt,
		&y.Remarks,
	)
	if err != nil {
		return nil, err
	}
	return &y, nil
}
