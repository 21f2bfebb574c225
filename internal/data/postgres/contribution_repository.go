package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/association-ledger/internal/domain/contribution"
	"github.com/association-ledger/internal/platform/persistence"
)

const contributionColumns = `id, fund_id, payer_ref, amount, payment_mode, reference_no, status,
		receipt_no, receipt_date, approved_by, reject_reason, cancel_reason, cancelled_by, cancelled_at,
		created_by, created_at, updated_at`

// ContributionRepository implements the contribution.Repository interface for PostgreSQL
type ContributionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewContributionRepository creates a new PostgreSQL contribution repository
func NewContributionRepository(logger *slog.Logger, db *persistence.PostgresDB) contribution.Repository {
	return &ContributionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *ContributionRepository) WithTx(tx pgx.Tx) contribution.Repository {
	return &ContributionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new pending contribution
func (r *ContributionRepository) Create(ctx context.Context, c *contribution.Contribution) error {
	query := `
		INSERT INTO contributions (id, fund_id, payer_ref, amount, payment_mode, reference_no, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		c.ID,
		c.FundID,
		c.PayerRef,
		c.Amount,
		c.PaymentMode,
		c.ReferenceNo,
		c.Status,
		c.CreatedBy,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create contribution", "error", err)
		return fmt.Errorf("failed to create contribution: %w", err)
	}

	return nil
}

// GetByID retrieves a contribution by its ID
func (r *ContributionRepository) GetByID(ctx context.Context, id uuid.UUID) (*contribution.Contribution, error) {
	query := `
		SELECT ` + contributionColumns + `
		FROM contributions
		WHERE id = $1
	`

	c, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contribution.ErrContributionNotFound{ContributionID: id}
		}
		r.logger.Error("Failed to get contribution", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get contribution: %w", err)
	}

	return c, nil
}

// ListByFund retrieves paginated contributions for a fund, newest first.
// An empty status matches all statuses.
func (r *ContributionRepository) ListByFund(ctx context.Context, fundID uuid.UUID, status contribution.Status, limit, offset int) ([]*contribution.Contribution, error) {
	query := `
		SELECT ` + contributionColumns + `
		FROM contributions
		WHERE fund_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.querier.Query(ctx, query, fundID, string(status), limit, offset)
	if err != nil {
		r.logger.Error("Failed to list contributions", "fund_id", fundID.String(), "error", err)
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*contribution.Contribution
	for rows.Next() {
		c, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution row: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contribution rows: %w", err)
	}

	return contributions, nil
}

// CountByFund returns the number of contributions for a fund and status
func (r *ContributionRepository) CountByFund(ctx context.Context, fundID uuid.UUID, status contribution.Status) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM contributions WHERE fund_id = $1 AND ($2 = '' OR status = $2)`
	err := r.querier.QueryRow(ctx, query, fundID, string(status)).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count contributions", "fund_id", fundID.String(), "error", err)
		return 0, fmt.Errorf("failed to count contributions: %w", err)
	}
	return count, nil
}

// Update persists the mutable approval fields of a contribution. The identity
// fields (fund, payer, amount) are immutable once created.
func (r *ContributionRepository) Update(ctx context.Context, c *contribution.Contribution) error {
	query := `
		UPDATE contributions
		SET status = $1, receipt_no = $2, receipt_date = $3, approved_by = $4,
			reject_reason = $5, cancel_reason = $6, cancelled_by = $7, cancelled_at = $8, updated_at = $9
		WHERE id = $10
	`

	result, err := r.querier.Exec(ctx, query,
		c.Status,
		c.ReceiptNo,
		c.ReceiptDate,
		c.ApprovedBy,
		c.RejectReason,
		c.CancelReason,
		c.CancelledBy,
		c.CancelledAt,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update contribution", "id", c.ID.String(), "error", err)
		return fmt.Errorf("failed to update contribution: %w", err)
	}

	if result.RowsAffected() == 0 {
		return contribution.ErrContributionNotFound{ContributionID: c.ID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the contribution row so the
// state check and the transition commit atomically
func (r *ContributionRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*contribution.Contribution, error) {
	query := `
		SELECT ` + contributionColumns + `
		FROM contributions
		WHERE id = $1
		FOR UPDATE
	`

	c, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contribution.ErrContributionNotFound{ContributionID: id}
		}
		r.logger.Error("Failed to lock contribution for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock contribution for update: %w", err)
	}

	return c, nil
}

func (r *ContributionRepository) scanOne(row pgx.Row) (*contribution.Contribution, error) {
	var c contribution.Contribution
	err := row.Scan(
		&c.ID,
		&c.FundID,
		&c.PayerRef,
		&c.Amount,
		&c.PaymentMode,
		&c.ReferenceNo,
		&c.Status,
		&c.ReceiptNo,
		&c.ReceiptDate,
		&c.ApprovedBy,
		&c.RejectReason,
		&c.CancelReason,
		&c.CancelledBy,
		&c.CancelledAt,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
