package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/association-ledger/internal/domain/expense"
	"github.com/association-ledger/internal/platform/persistence"
)

const expenseColumns = `id, fund_id, purpose, amount, expense_date, status, requested_by,
		approved_by, approved_at, cancelled_by, cancelled_at, cancel_reason, created_at, updated_at`

// ExpenseRepository implements the expense.Repository interface for PostgreSQL
type ExpenseRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewExpenseRepository creates a new PostgreSQL expense repository
func NewExpenseRepository(logger *slog.Logger, db *persistence.PostgresDB) expense.Repository {
	return &ExpenseRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *ExpenseRepository) WithTx(tx pgx.Tx) expense.Repository {
	return &ExpenseRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new pending expense
func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (id, fund_id, purpose, amount, expense_date, status, requested_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		e.ID,
		e.FundID,
		e.Purpose,
		e.Amount,
		e.ExpenseDate,
		e.Status,
		e.RequestedBy,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", "error", err)
		return fmt.Errorf("failed to create expense: %w", err)
	}

	return nil
}

// GetByID retrieves an expense by its ID
func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE id = $1
	`

	e, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, expense.ErrExpenseNotFound{ExpenseID: id}
		}
		r.logger.Error("Failed to get expense", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return e, nil
}

// ListByFund retrieves paginated expenses for a fund, newest first.
// An empty status matches all statuses.
func (r *ExpenseRepository) ListByFund(ctx context.Context, fundID uuid.UUID, status expense.Status, limit, offset int) ([]*expense.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE fund_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.querier.Query(ctx, query, fundID, string(status), limit, offset)
	if err != nil {
		r.logger.Error("Failed to list expenses", "fund_id", fundID.String(), "error", err)
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*expense.Expense
	for rows.Next() {
		e, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense rows: %w", err)
	}

	return expenses, nil
}

// CountByFund returns the number of expenses for a fund and status
func (r *ExpenseRepository) CountByFund(ctx context.Context, fundID uuid.UUID, status expense.Status) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM expenses WHERE fund_id = $1 AND ($2 = '' OR status = $2)`
	err := r.querier.QueryRow(ctx, query, fundID, string(status)).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count expenses", "fund_id", fundID.String(), "error", err)
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

// Update persists the mutable approval fields of an expense
func (r *ExpenseRepository) Update(ctx context.Context, e *expense.Expense) error {
	query := `
		UPDATE expenses
		SET status = $1, approved_by = $2, approved_at = $3,
			cancelled_by = $4, cancelled_at = $5, cancel_reason = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := r.querier.Exec(ctx, query,
		e.Status,
		e.ApprovedBy,
		e.ApprovedAt,
		e.CancelledBy,
		e.CancelledAt,
		e.CancelReason,
		e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update expense", "id", e.ID.String(), "error", err)
		return fmt.Errorf("failed to update expense: %w", err)
	}

	if result.RowsAffected() == 0 {
		return expense.ErrExpenseNotFound{ExpenseID: e.ID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the expense row
func (r *ExpenseRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE id = $1
		FOR UPDATE
	`

	e, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, expense.ErrExpenseNotFound{ExpenseID: id}
		}
		r.logger.Error("Failed to lock expense for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock expense for update: %w", err)
	}

	return e, nil
}

func (r *ExpenseRepository) scanOne(row pgx.Row) (*expense.Expense, error) {
	var e expense.Expense
	err := row.Scan(
		&e.ID,
		&e.FundID,
		&e.Purpose,
		&e.Amount,
		&e.ExpenseDate,
		&e.Status,
		&e.RequestedBy,
		&e.ApprovedBy,
		&e.ApprovedAt,
		&e.CancelledBy,
		&e.CancelledAt,
		&e.CancelReason,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
