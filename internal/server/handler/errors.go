package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/association-ledger/internal/domain/contribution"
	"github.com/association-ledger/internal/domain/expense"
	"github.com/association-ledger/internal/domain/fiscalyear"
	"github.com/association-ledger/internal/domain/fund"
	"github.com/association-ledger/internal/domain/ledger"
	"github.com/association-ledger/internal/domain/shared"
)

// respondEngineError translates an engine error into the matching HTTP
// response. Not-found errors map to 404, state machine and concurrency
// violations to 409, business rule refusals to 422, bad input to 400, and
// everything else to a logged 500.
func respondEngineError(c *gin.Context, logger *slog.Logger, err error) {
	var validation shared.ErrValidation
	if errors.As(err, &validation) {
		RespondBadRequest(c, validation.Error())
		return
	}

	switch {
	case errors.Is(err, fund.ErrFundNotFound{}),
		errors.Is(err, contribution.ErrContributionNotFound{}),
		errors.Is(err, expense.ErrExpenseNotFound{}),
		errors.Is(err, ledger.ErrEntryNotFound{}),
		errors.Is(err, fiscalyear.ErrYearNotFound{}):
		RespondNotFound(c, err.Error())

	case errors.Is(err, shared.ErrInvalidStateTransition{}):
		RespondConflict(c, "INVALID_STATE_TRANSITION", err.Error())

	case errors.Is(err, shared.ErrYearAlreadyClosed{}):
		RespondConflict(c, "YEAR_ALREADY_CLOSED", err.Error())

	case errors.Is(err, shared.ErrConcurrencyConflict{}):
		RespondConflict(c, "CONCURRENCY_CONFLICT", err.Error())

	case errors.Is(err, shared.ErrYearClosed{}):
		RespondUnprocessable(c, "YEAR_CLOSED", err.Error())

	case errors.Is(err, shared.ErrInsufficientFunds{}):
		RespondUnprocessable(c, "INSUFFICIENT_FUNDS", err.Error())

	case errors.Is(err, fund.ErrFundInactive{}):
		RespondUnprocessable(c, "FUND_INACTIVE", err.Error())

	default:
		logger.Error("Unhandled engine error", "error", err)
		RespondInternalError(c)
	}
}
