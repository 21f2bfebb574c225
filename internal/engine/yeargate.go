package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/association-ledger/internal/domain/audit"
	"github.com/association-ledger/internal/domain/fiscalyear"
	"github.com/association-ledger/internal/domain/shared"
	"github.com/association-ledger/internal/platform/persistence"
)

// YearGate is the one-way switch consulted before every balance-affecting
// write. A year with no record is closed: years must be opened explicitly,
// and closing is permanent.
type YearGate struct {
	db         persistence.TxRunner
	years      fiscalyear.Repository
	dispatcher AuditDispatcher
}

// NewYearGate creates the year closing gate
func NewYearGate(db persistence.TxRunner, years fiscalyear.Repository, dispatcher AuditDispatcher) *YearGate {
	return &YearGate{
		db:         db,
		years:      years,
		dispatcher: dispatcher,
	}
}

// IsOpen reports whether the year accepts balance-affecting writes
func (g *YearGate) IsOpen(ctx context.Context, year int) (bool, error) {
	y, err := g.years.Get(ctx, year)
	if err != nil {
		return false, classifyStorageErr(err, "financial_years")
	}
	return y != nil && y.IsOpen(), nil
}

// Get returns the year record for API consumers
func (g *YearGate) Get(ctx context.Context, year int) (*fiscalyear.Year, error) {
	y, err := g.years.Get(ctx, year)
	if err != nil {
		return nil, classifyStorageErr(err, "financial_years")
	}
	if y == nil {
		return nil, fiscalyear.ErrYearNotFound{Year: year}
	}
	return y, nil
}

// Open records the explicit opening of a year. Opening an already-open year
// is idempotent; a closed year can never be reopened.
func (g *YearGate) Open(ctx context.Context, year int, actorID uuid.UUID) (*fiscalyear.Year, error) {
	var result *fiscalyear.Year

	err := g.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		yearsTx := g.years.WithTx(tx)

		existing, err := yearsTx.LockForUpdate(ctx, year)
		if err != nil {
			return err
		}
		if existing != nil {
			if !existing.IsOpen() {
				return shared.ErrYearAlreadyClosed{Year: year}
			}
			result = existing
			return nil
		}

		y, err := fiscalyear.NewOpenYear(year, actorID)
		if err != nil {
			return shared.ErrValidation{Field: "year", Reason: err.Error()}
		}
		if err := yearsTx.Create(ctx, y); err != nil {
			return err
		}

		result = y
		return nil
	})
	if err != nil {
		return nil, classifyStorageErr(err, "financial_years")
	}

	g.dispatcher.Dispatch(audit.ActionOpen, audit.EntityYear, strconv.Itoa(year), actorID, nil)
	return result, nil
}

// Close flips the year to CLOSED. A year that was never opened gets a CLOSED
// record so the closure decision is durable; a year already closed fails.
func (g *YearGate) Close(ctx context.Context, year int, actorID uuid.UUID, remarks string) (*fiscalyear.Year, error) {
	var result *fiscalyear.Year
	now := time.Now()

	err := g.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		yearsTx := g.years.WithTx(tx)

		existing, err := yearsTx.LockForUpdate(ctx, year)
		if err != nil {
			return err
		}

		if existing == nil {
			y, err := fiscalyear.NewOpenYear(year, actorID)
			if err != nil {
				return shared.ErrValidation{Field: "year", Reason: err.Error()}
			}
			y.Close(actorID, remarks, now)
			if err := yearsTx.Create(ctx, y); err != nil {
				return err
			}
			result = y
			return nil
		}

		if !existing.IsOpen() {
			return shared.ErrYearAlreadyClosed{Year: year}
		}

		existing.Close(actorID, remarks, now)
		if err := yearsTx.Update(ctx, existing); err != nil {
			return err
		}

		result = existing
		return nil
	})
	if err != nil {
		return nil, classifyStorageErr(err, "financial_years")
	}

	g.dispatcher.Dispatch(audit.ActionClose, audit.EntityYear, strconv.Itoa(year), actorID, map[string]string{"remarks": remarks})
	return result, nil
}

// requireOpenYear enforces the gate inside an engine transaction. The year
// checked is the fiscal year the financial record belongs to, never the
// wall-clock year of the API call.
func requireOpenYear(ctx context.Context, years fiscalyear.Repository, year int) error {
	y, err := years.Get(ctx, year)
	if err != nil {
		return err
	}
	if y == nil || !y.IsOpen() {
		return shared.ErrYearClosed{Year: year}
	}
	return nil
}
