package expense

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines expense persistence operations
type Repository interface {
	Create(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	ListByFund(ctx context.Context, fundID uuid.UUID, status Status, limit, offset int) ([]*Expense, error)
	CountByFund(ctx context.Context, fundID uuid.UUID, status Status) (int64, error)
	Update(ctx context.Context, e *Expense) error

	// LockForUpdate acquires the expense's row lock for an atomic
	// check-then-transition
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Expense, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrExpenseNotFound indicates missing expense
type ErrExpenseNotFound struct {
	ExpenseID uuid.UUID
}

func (e ErrExpenseNotFound) Error() string {
	return "expense not found: " + e.ExpenseID.String()
}

// Is implements the errors.Is interface for ErrExpenseNotFound
func (e ErrExpenseNotFound) Is(target error) bool {
	t, ok := target.(ErrExpenseNotFound)
	if !ok {
		return false
	}
	return t.ExpenseID == uuid.Nil || t.ExpenseID == e.ExpenseID
}
