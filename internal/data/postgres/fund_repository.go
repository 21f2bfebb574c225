// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the association ledger.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/association-ledger/internal/domain/fund"
	"github.com/association-ledger/internal/platform/persistence"
)

// FundRepository implements the fund.Repository interface for PostgreSQL
type FundRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewFundRepository creates a new PostgreSQL fund repository
func NewFundRepository(logger *slog.Logger, db *persistence.PostgresDB) fund.Repository {
	return &FundRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls
func (r *FundRepository) WithTx(tx pgx.Tx) fund.Repository {
	return &FundRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new fund in the database
func (r *FundRepository) Create(ctx context.Context, f *fund.Fund) error {
	query := `
		INSERT INTO funds (id, name, kind, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		f.ID,
		f.Name,
		f.Kind,
		f.Status,
		f.CreatedAt,
		f.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create fund", "error", err)
		return fmt.Errorf("failed to create fund: %w", err)
	}

	return nil
}

// GetByID retrieves a fund by its ID
func (r *FundRepository) GetByID(ctx context.Context, id uuid.UUID) (*fund.Fund, error) {
	query := `
		SELECT id, name, kind, status, created_at, updated_at
		FROM funds
		WHERE id = $1
	`

	var f fund.Fund
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&f.ID,
		&f.Name,
		&f.Kind,
		&f.Status,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fund.ErrFundNotFound{FundID: id}
		}
		r.logger.Error("Failed to get fund", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}

	return &f, nil
}

// List retrieves funds ordered by creation time, newest first
func (r *FundRepository) List(ctx context.Context, limit, offset int) ([]*fund.Fund, error) {
	query := `
		SELECT id, name, kind, status, created_at, updated_at
		FROM funds
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list funds", "error", err)
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	var funds []*fund.Fund
	for rows.Next() {
		var f fund.Fund
		if err := rows.Scan(&f.ID, &f.Name, &f.Kind, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fund row: %w", err)
		}
		funds = append(funds, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fund rows: %w", err)
	}

	return funds, nil
}

// Count returns the total number of funds
func (r *FundRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.querier.QueryRow(ctx, `SELECT COUNT(*) FROM funds`).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count funds", "error", err)
		return 0, fmt.Errorf("failed to count funds: %w", err)
	}
	return count, nil
}

// Update updates an existing fund in the database
func (r *FundRepository) Update(ctx context.Context, f *fund.Fund) error {
	query := `
		UPDATE funds
		SET name = $1, kind = $2, status = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.querier.Exec(ctx, query,
		f.Name,
		f.Kind,
		f.Status,
		f.UpdatedAt,
		f.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update fund", "id", f.ID.String(), "error", err)
		return fmt.Errorf("failed to update fund: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fund.ErrFundNotFound{FundID: f.ID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the fund and returns its current
// state. The fund row lock serializes every balance-affecting operation on the
// fund, so this must be called inside a transaction before reading the balance.
func (r *FundRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*fund.Fund, error) {
	query := `
		SELECT id, name, kind, status, created_at, updated_at
		FROM funds
		WHERE id = $1
		FOR UPDATE
	`

	var f fund.Fund
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&f.ID,
		&f.Name,
		&f.Kind,
		&f.Status,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fund.ErrFundNotFound{FundID: id}
		}
		r.logger.Error("Failed to lock fund for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock fund for update: %w", err)
	}

	return &f, nil
}
