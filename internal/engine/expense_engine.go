package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/association-ledger/internal/domain/audit"
	"github.com/association-ledger/internal/domain/expense"
	"github.com/association-ledger/internal/domain/fiscalyear"
	"github.com/association-ledger/internal/domain/fund"
	"github.com/association-ledger/internal/domain/ledger"
	"github.com/association-ledger/internal/domain/shared"
	"github.com/association-ledger/internal/platform/persistence"
)

// ExpenseResult is the success payload of a balance-affecting expense operation
type ExpenseResult struct {
	Expense    *expense.Expense
	NewBalance decimal.Decimal
}

// ExpenseEngine drives an expense through its approval state machine. It is
// the mirror of the contribution engine with two differences: approvals DEBIT
// the fund and must pass a solvency check, and the fiscal year is always the
// expense date's year.
type ExpenseEngine struct {
	db         persistence.TxRunner
	funds      fund.Repository
	ledger     ledger.Repository
	expenses   expense.Repository
	years      fiscalyear.Repository
	dispatcher AuditDispatcher
	logger     *slog.Logger
}

// NewExpenseEngine wires the expense approval engine
func NewExpenseEngine(
	db persistence.TxRunner,
	funds fund.Repository,
	ledgerRepo ledger.Repository,
	expenses expense.Repository,
	years fiscalyear.Repository,
	dispatcher AuditDispatcher,
	logger *slog.Logger,
) *ExpenseEngine {
	return &ExpenseEngine{
		db:         db,
		funds:      funds,
		ledger:     ledgerRepo,
		expenses:   expenses,
		years:      years,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Create records a new PENDING expense dated expenseDate. The fund must be
// active and the expense date's year open.
func (e *ExpenseEngine) Create(ctx context.Context, fundID uuid.UUID, purpose string, amount decimal.Decimal, expenseDate time.Time, requesterID uuid.UUID) (*expense.Expense, error) {
	exp, err := expense.NewExpense(fundID, purpose, amount, expenseDate, requesterID)
	if err != nil {
		return nil, shared.ErrValidation{Field: "expense", Reason: err.Error()}
	}

	err = e.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		f, err := e.funds.WithTx(tx).GetByID(ctx, fundID)
		if err != nil {
			return err
		}
		if !f.IsActive() {
			return fund.ErrFundInactive{FundID: fundID}
		}

		if err := requireOpenYear(ctx, e.years.WithTx(tx), exp.FiscalYear()); err != nil {
			return err
		}

		return e.expenses.WithTx(tx).Create(ctx, exp)
	})
	if err != nil {
		return nil, classifyStorageErr(err, "expenses")
	}

	e.logger.Info("Expense created", "expense_id", exp.ID.String(), "fund_id", fundID.String(), "amount", amount.String())
	e.dispatcher.Dispatch(audit.ActionCreate, audit.EntityExpense, exp.ID.String(), requesterID, map[string]string{
		"fund_id": fundID.String(),
		"amount":  amount.String(),
	})
	return exp, nil
}

// Approve moves a PENDING expense to APPROVED: under the fund lock it
// resolves the balance, rejects the approval outright if the fund cannot
// cover the amount, and otherwise appends the DEBIT entry and stamps the
// record.
func (e *ExpenseEngine) Approve(ctx context.Context, expenseID, approverID uuid.UUID) (*ExpenseResult, error) {
	var result *ExpenseResult

	err := e.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		expensesTx := e.expenses.WithTx(tx)

		exp, err := expensesTx.LockForUpdate(ctx, expenseID)
		if err != nil {
			return err
		}
		if exp.Status != expense.StatusPending {
			return shared.ErrInvalidStateTransition{
				Entity: "expense",
				ID:     exp.ID,
				From:   string(exp.Status),
				To:     string(expense.StatusApproved),
			}
		}

		if err := requireOpenYear(ctx, e.years.WithTx(tx), exp.FiscalYear()); err != nil {
			return err
		}

		if _, err := e.funds.WithTx(tx).LockForUpdate(ctx, exp.FundID); err != nil {
			return err
		}

		ledgerTx := e.ledger.WithTx(tx)
		balance, err := resolveBalance(ctx, ledgerTx, exp.FundID)
		if err != nil {
			return err
		}
		if balance.LessThan(exp.Amount) {
			return shared.ErrInsufficientFunds{
				FundID:    exp.FundID,
				Balance:   balance.String(),
				Requested: exp.Amount.String(),
			}
		}

		entry, err := ledger.NewEntry(exp.FundID, ledger.EntryDebit, ledger.SourceExpense, exp.ID, exp.Amount, balance, approverID)
		if err != nil {
			return shared.ErrValidation{Field: "amount", Reason: err.Error()}
		}
		if err := ledgerTx.Create(ctx, entry); err != nil {
			return err
		}

		now := time.Now()
		if err := exp.Approve(approverID, now); err != nil {
			return err
		}
		if err := expensesTx.Update(ctx, exp); err != nil {
			return err
		}

		result = &ExpenseResult{Expense: exp, NewBalance: entry.BalanceAfter}
		return nil
	})
	if err != nil {
		return nil, classifyStorageErr(err, "expenses")
	}

	e.logger.Info("Expense approved",
		"expense_id", expenseID.String(),
		"amount", result.Expense.Amount.String(),
		"new_balance", result.NewBalance.String(),
	)
	e.dispatcher.Dispatch(audit.ActionApprove, audit.EntityExpense, expenseID.String(), approverID, map[string]string{
		"amount":        result.Expense.Amount.String(),
		"balance_after": result.NewBalance.String(),
	})
	return result, nil
}

// Cancel moves an expense to CANCELLED. A PENDING expense is simply closed
// out with no ledger effect; an APPROVED expense gets a CREDIT reversal under
// the fund lock, gated on the expense date's year.
func (e *ExpenseEngine) Cancel(ctx context.Context, expenseID, actorID uuid.UUID, reason string) (*ExpenseResult, error) {
	if reason == "" {
		return nil, shared.ErrValidation{Field: "reason", Reason: "a cancellation reason is required"}
	}

	var result *ExpenseResult
	err := e.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		expensesTx := e.expenses.WithTx(tx)

		exp, err := expensesTx.LockForUpdate(ctx, expenseID)
		if err != nil {
			return err
		}

		now := time.Now()
		wasApproved := exp.Status == expense.StatusApproved

		if wasApproved {
			if err := requireOpenYear(ctx, e.years.WithTx(tx), exp.FiscalYear()); err != nil {
				return err
			}
			if _, err := e.funds.WithTx(tx).LockForUpdate(ctx, exp.FundID); err != nil {
				return err
			}
		}

		if err := exp.Cancel(reason, actorID, now); err != nil {
			return err
		}

		newBalance := decimal.Zero
		if wasApproved {
			ledgerTx := e.ledger.WithTx(tx)
			balance, err := resolveBalance(ctx, ledgerTx, exp.FundID)
			if err != nil {
				return err
			}

			entry, err := ledger.NewEntry(exp.FundID, ledger.EntryCredit, ledger.SourceExpenseReversal, exp.ID, exp.Amount, balance, actorID)
			if err != nil {
				return shared.ErrValidation{Field: "amount", Reason: err.Error()}
			}
			if err := ledgerTx.Create(ctx, entry); err != nil {
				return err
			}
			newBalance = entry.BalanceAfter
		}

		if err := expensesTx.Update(ctx, exp); err != nil {
			return err
		}

		result = &ExpenseResult{Expense: exp, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, classifyStorageErr(err, "expenses")
	}

	e.logger.Info("Expense cancelled", "expense_id", expenseID.String(), "reason", reason)
	e.dispatcher.Dispatch(audit.ActionCancel, audit.EntityExpense, expenseID.String(), actorID, map[string]string{
		"reason": reason,
	})
	return result, nil
}

// GetByID retrieves an expense
func (e *ExpenseEngine) GetByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	exp, err := e.expenses.GetByID(ctx, id)
	if err != nil {
		return nil, classifyStorageErr(err, "expenses")
	}
	return exp, nil
}

// ListByFund retrieves a page of expenses with the total count
func (e *ExpenseEngine) ListByFund(ctx context.Context, fundID uuid.UUID, status expense.Status, limit, offset int) ([]*expense.Expense, int64, error) {
	items, err := e.expenses.ListByFund(ctx, fundID, status, limit, offset)
	if err != nil {
		return nil, 0, classifyStorageErr(err, "expenses")
	}
	total, err := e.expenses.CountByFund(ctx, fundID, status)
	if err != nil {
		return nil, 0, classifyStorageErr(err, "expenses")
	}
	return items, total, nil
}
