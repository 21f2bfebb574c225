// Package engine implements the financial core: the contribution and expense
// approval engines, the year closing gate, the receipt number allocator and
// the fund balance resolver. Every balance-affecting operation runs inside a
// single database transaction under the fund's row lock, so per-fund effects
// are serialized and commit all-or-nothing.
package engine

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/association-ledger/internal/domain/contribution"
	"github.com/association-ledger/internal/domain/expense"
	"github.com/association-ledger/internal/domain/fiscalyear"
	"github.com/association-ledger/internal/domain/fund"
	"github.com/association-ledger/internal/domain/ledger"
	"github.com/association-ledger/internal/domain/shared"
)

// Postgres error codes that mean the transaction lost a race rather than hit
// a real failure: lock_not_available (bounded lock wait expired),
// serialization_failure and deadlock_detected.
const (
	pgCodeLockNotAvailable     = "55P03"
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
)

// classifyStorageErr translates storage-level failures into the engine error
// taxonomy. Domain errors pass through untouched; retryable lock and
// serialization failures become ErrConcurrencyConflict; anything else from
// the database becomes ErrPersistence.
func classifyStorageErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if isDomainErr(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeLockNotAvailable, pgCodeSerializationFailure, pgCodeDeadlockDetected:
			return shared.ErrConcurrencyConflict{Resource: op}
		}
	}

	return shared.ErrPersistence{Op: op, Err: err}
}

// isDomainErr reports whether err is one of the typed business errors that
// must surface to the caller as-is
func isDomainErr(err error) bool {
	return errors.Is(err, shared.ErrValidation{}) ||
		errors.Is(err, shared.ErrInvalidStateTransition{}) ||
		errors.Is(err, shared.ErrYearClosed{}) ||
		errors.Is(err, shared.ErrYearAlreadyClosed{}) ||
		errors.Is(err, shared.ErrInsufficientFunds{}) ||
		errors.Is(err, shared.ErrConcurrencyConflict{}) ||
		errors.Is(err, fund.ErrFundNotFound{}) ||
		errors.Is(err, fund.ErrFundInactive{}) ||
		errors.Is(err, contribution.ErrContributionNotFound{}) ||
		errors.Is(err, expense.ErrExpenseNotFound{}) ||
		errors.Is(err, ledger.ErrEntryNotFound{}) ||
		errors.Is(err, fiscalyear.ErrYearNotFound{})
}
