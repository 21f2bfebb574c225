package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/association-ledger/internal/domain/contribution"
	"github.com/association-ledger/internal/domain/expense"
	"github.com/association-ledger/internal/domain/fiscalyear"
	"github.com/association-ledger/internal/domain/fund"
	"github.com/association-ledger/internal/domain/ledger"
	"github.com/association-ledger/internal/engine"
)

// The handlers depend on these interfaces rather than the concrete engines so
// tests can substitute mocks. The engine package satisfies all of them.

// FundService manages the fund catalogue
type FundService interface {
	Create(ctx context.Context, name string, kind fund.Kind, actorID uuid.UUID) (*fund.Fund, error)
	Deactivate(ctx context.Context, id, actorID uuid.UUID) (*fund.Fund, error)
	GetByID(ctx context.Context, id uuid.UUID) (*fund.Fund, error)
	List(ctx context.Context, limit, offset int) ([]*fund.Fund, int64, error)
}

// BalanceService resolves fund balances and statements from the ledger
type BalanceService interface {
	Balance(ctx context.Context, fundID uuid.UUID) (decimal.Decimal, error)
	Statement(ctx context.Context, fundID uuid.UUID, limit, offset int) ([]*ledger.Entry, int64, error)
}

// ContributionService drives the contribution approval state machine
type ContributionService interface {
	Create(ctx context.Context, fundID uuid.UUID, payerRef string, amount decimal.Decimal, mode contribution.PaymentMode, referenceNo string, actorID uuid.UUID) (*contribution.Contribution, error)
	Approve(ctx context.Context, contributionID, approverID uuid.UUID) (*engine.ContributionResult, error)
	Reject(ctx context.Context, contributionID, approverID uuid.UUID, reason string) (*contribution.Contribution, error)
	Cancel(ctx context.Context, contributionID, actorID uuid.UUID, reason string) (*engine.ContributionResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*contribution.Contribution, error)
	ListByFund(ctx context.Context, fundID uuid.UUID, status contribution.Status, limit, offset int) ([]*contribution.Contribution, int64, error)
}

// ExpenseService drives the expense approval state machine
type ExpenseService interface {
	Create(ctx context.Context, fundID uuid.UUID, purpose string, amount decimal.Decimal, expenseDate time.Time, requesterID uuid.UUID) (*expense.Expense, error)
	Approve(ctx context.Context, expenseID, approverID uuid.UUID) (*engine.ExpenseResult, error)
	Cancel(ctx context.Context, expenseID, actorID uuid.UUID, reason string) (*engine.ExpenseResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error)
	ListByFund(ctx context.Context, fundID uuid.UUID, status expense.Status, limit, offset int) ([]*expense.Expense, int64, error)
}

// YearService manages the financial year gate
type YearService interface {
	Get(ctx context.Context, year int) (*fiscalyear.Year, error)
	Open(ctx context.Context, year int, actorID uuid.UUID) (*fiscalyear.Year, error)
	Close(ctx context.Context, year int, actorID uuid.UUID, remarks string) (*fiscalyear.Year, error)
}
