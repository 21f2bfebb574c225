package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/association-ledger/internal/domain/audit"
	"github.com/association-ledger/internal/domain/contribution"
	"github.com/association-ledger/internal/domain/fiscalyear"
	"github.com/association-ledger/internal/domain/fund"
	"github.com/association-ledger/internal/domain/ledger"
	"github.com/association-ledger/internal/domain/shared"
	"github.com/association-ledger/internal/platform/persistence"
)

// ContributionResult is the success payload of a balance-affecting
// contribution operation
type ContributionResult struct {
	Contribution *contribution.Contribution
	NewBalance   decimal.Decimal
}

// ContributionEngine drives a contribution through its approval state machine
// and commits the matching ledger effects. Each mutation is one transaction:
// the record transition, the ledger entry and the balance all commit together
// or not at all.
type ContributionEngine struct {
	db            persistence.TxRunner
	funds         fund.Repository
	ledger        ledger.Repository
	contributions contribution.Repository
	years         fiscalyear.Repository
	receipts      *ReceiptAllocator
	dispatcher    AuditDispatcher
	logger        *slog.Logger
}

// NewContributionEngine wires the contribution approval engine
func NewContributionEngine(
	db persistence.TxRunner,
	funds fund.Repository,
	ledgerRepo ledger.Repository,
	contributions contribution.Repository,
	years fiscalyear.Repository,
	receipts *ReceiptAllocator,
	dispatcher AuditDispatcher,
	logger *slog.Logger,
) *ContributionEngine {
	return &ContributionEngine{
		db:            db,
		funds:         funds,
		ledger:        ledgerRepo,
		contributions: contributions,
		years:         years,
		receipts:      receipts,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// Create records a new PENDING contribution. The fund must be active and the
// current year open; there is no ledger effect until approval.
func (e *ContributionEngine) Create(ctx context.Context, fundID uuid.UUID, payerRef string, amount decimal.Decimal, mode contribution.PaymentMode, referenceNo string, actorID uuid.UUID) (*contribution.Contribution, error) {
	c, err := contribution.NewContribution(fundID, payerRef, amount, mode, referenceNo, actorID)
	if err != nil {
		return nil, shared.ErrValidation{Field: "contribution", Reason: err.Error()}
	}

	err = e.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		f, err := e.funds.WithTx(tx).GetByID(ctx, fundID)
		if err != nil {
			return err
		}
		if !f.IsActive() {
			return fund.ErrFundInactive{FundID: fundID}
		}

		// A new record may only be opened in the current open year
		if err := requireOpenYear(ctx, e.years.WithTx(tx), time.Now().Year()); err != nil {
			return err
		}

		return e.contributions.WithTx(tx).Create(ctx, c)
	})
	if err != nil {
		return nil, classifyStorageErr(err, "contributions")
	}

	e.logger.Info("Contribution created", "contribution_id", c.ID.String(), "fund_id", fundID.String(), "amount", amount.String())
	e.dispatcher.Dispatch(audit.ActionCreate, audit.EntityContribution, c.ID.String(), actorID, map[string]string{
		"fund_id": fundID.String(),
		"amount":  amount.String(),
	})
	return c, nil
}

// Approve moves a PENDING contribution to APPROVED: under the fund lock it
// resolves the balance, allocates the receipt number, appends the CREDIT
// entry and stamps the record. The receipt date is the approval instant, and
// its year is the fiscal year the gate is checked against.
func (e *ContributionEngine) Approve(ctx context.Context, contributionID, approverID uuid.UUID) (*ContributionResult, error) {
	var result *ContributionResult

	err := e.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		contributionsTx := e.contributions.WithTx(tx)

		c, err := contributionsTx.LockForUpdate(ctx, contributionID)
		if err != nil {
			return err
		}
		if c.Status != contribution.StatusPending {
			return shared.ErrInvalidStateTransition{
				Entity: "contribution",
				ID:     c.ID,
				From:   string(c.Status),
				To:     string(contribution.StatusApproved),
			}
		}

		receiptDate := time.Now()
		year := receiptDate.Year()
		if err := requireOpenYear(ctx, e.years.WithTx(tx), year); err != nil {
			return err
		}

		// The fund row lock is the serialization point: balance read,
		// receipt allocation and ledger append happen under it
		f, err := e.funds.WithTx(tx).LockForUpdate(ctx, c.FundID)
		if err != nil {
			return err
		}
		if !f.IsActive() {
			return fund.ErrFundInactive{FundID: f.ID}
		}

		ledgerTx := e.ledger.WithTx(tx)
		balance, err := resolveBalance(ctx, ledgerTx, c.FundID)
		if err != nil {
			return err
		}

		receiptNo, err := e.receipts.Allocate(ctx, tx, year)
		if err != nil {
			return err
		}

		entry, err := ledger.NewEntry(c.FundID, ledger.EntryCredit, ledger.SourceContribution, c.ID, c.Amount, balance, approverID)
		if err != nil {
			return shared.ErrValidation{Field: "amount", Reason: err.Error()}
		}
		if err := ledgerTx.Create(ctx, entry); err != nil {
			return err
		}

		if err := c.Approve(receiptNo, receiptDate, approverID); err != nil {
			return err
		}
		if err := contributionsTx.Update(ctx, c); err != nil {
			return err
		}

		result = &ContributionResult{Contribution: c, NewBalance: entry.BalanceAfter}
		return nil
	})
	if err != nil {
		return nil, classifyStorageErr(err, "contributions")
	}

	e.logger.Info("Contribution approved",
		"contribution_id", contributionID.String(),
		"receipt_no", *result.Contribution.ReceiptNo,
		"new_balance", result.NewBalance.String(),
	)
	e.dispatcher.Dispatch(audit.ActionApprove, audit.EntityContribution, contributionID.String(), approverID, map[string]string{
		"receipt_no":    *result.Contribution.ReceiptNo,
		"amount":        result.Contribution.Amount.String(),
		"balance_after": result.NewBalance.String(),
	})
	return result, nil
}

// Reject moves a PENDING contribution to REJECTED. Rejections never touch the
// ledger, so the year gate is not consulted.
func (e *ContributionEngine) Reject(ctx context.Context, contributionID, approverID uuid.UUID, reason string) (*contribution.Contribution, error) {
	if reason == "" {
		return nil, shared.ErrValidation{Field: "reason", Reason: "a rejection reason is required"}
	}

	var rejected *contribution.Contribution
	err := e.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		contributionsTx := e.contributions.WithTx(tx)

		c, err := contributionsTx.LockForUpdate(ctx, contributionID)
		if err != nil {
			return err
		}
		if err := c.Reject(reason, approverID); err != nil {
			return err
		}
		if err := contributionsTx.Update(ctx, c); err != nil {
			return err
		}

		rejected = c
		return nil
	})
	if err != nil {
		return nil, classifyStorageErr(err, "contributions")
	}

	e.logger.Info("Contribution rejected", "contribution_id", contributionID.String(), "reason", reason)
	e.dispatcher.Dispatch(audit.ActionReject, audit.EntityContribution, contributionID.String(), approverID, map[string]string{
		"reason": reason,
	})
	return rejected, nil
}

// Cancel reverses an APPROVED contribution: under the fund lock it appends a
// DEBIT reversal entry and moves the record to CANCELLED. The original
// receipt number stays with the record and is never reissued. The year gate
// is checked against the receipt date's year.
func (e *ContributionEngine) Cancel(ctx context.Context, contributionID, actorID uuid.UUID, reason string) (*ContributionResult, error) {
	if reason == "" {
		return nil, shared.ErrValidation{Field: "reason", Reason: "a cancellation reason is required"}
	}

	var result *ContributionResult
	err := e.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		contributionsTx := e.contributions.WithTx(tx)

		c, err := contributionsTx.LockForUpdate(ctx, contributionID)
		if err != nil {
			return err
		}
		if c.Status != contribution.StatusApproved {
			return shared.ErrInvalidStateTransition{
				Entity: "contribution",
				ID:     c.ID,
				From:   string(c.Status),
				To:     string(contribution.StatusCancelled),
			}
		}

		if err := requireOpenYear(ctx, e.years.WithTx(tx), c.FiscalYear()); err != nil {
			return err
		}

		if _, err := e.funds.WithTx(tx).LockForUpdate(ctx, c.FundID); err != nil {
			return err
		}

		ledgerTx := e.ledger.WithTx(tx)
		balance, err := resolveBalance(ctx, ledgerTx, c.FundID)
		if err != nil {
			return err
		}

		entry, err := ledger.NewEntry(c.FundID, ledger.EntryDebit, ledger.SourceContributionReversal, c.ID, c.Amount, balance, actorID)
		if err != nil {
			return shared.ErrValidation{Field: "amount", Reason: err.Error()}
		}
		if err := ledgerTx.Create(ctx, entry); err != nil {
			return err
		}

		now := time.Now()
		if err := c.Cancel(reason, actorID, now); err != nil {
			return err
		}
		if err := contributionsTx.Update(ctx, c); err != nil {
			return err
		}

		result = &ContributionResult{Contribution: c, NewBalance: entry.BalanceAfter}
		return nil
	})
	if err != nil {
		return nil, classifyStorageErr(err, "contributions")
	}

	e.logger.Info("Contribution cancelled",
		"contribution_id", contributionID.String(),
		"reason", reason,
		"new_balance", result.NewBalance.String(),
	)
	e.dispatcher.Dispatch(audit.ActionCancel, audit.EntityContribution, contributionID.String(), actorID, map[string]string{
		"reason":        reason,
		"balance_after": result.NewBalance.String(),
	})
	return result, nil
}

// GetByID retrieves a contribution
func (e *ContributionEngine) GetByID(ctx context.Context, id uuid.UUID) (*contribution.Contribution, error) {
	c, err := e.contributions.GetByID(ctx, id)
	if err != nil {
		return nil, classifyStorageErr(err, "contributions")
	}
	return c, nil
}

// ListByFund retrieves a page of contributions with the total count
func (e *ContributionEngine) ListByFund(ctx context.Context, fundID uuid.UUID, status contribution.Status, limit, offset int) ([]*contribution.Contribution, int64, error) {
	items, err := e.contributions.ListByFund(ctx, fundID, status, limit, offset)
	if err != nil {
		return nil, 0, classifyStorageErr(err, "contributions")
	}
	total, err := e.contributions.CountByFund(ctx, fundID, status)
	if err != nil {
		return nil, 0, classifyStorageErr(err, "contributions")
	}
	return items, total, nil
}
