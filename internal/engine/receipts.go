package engine

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/association-ledger/internal/domain/fiscalyear"
)

// ReceiptAllocator issues receipt numbers of the form <PREFIX>-<year>-<seq>,
// where seq is a 1-based zero-padded counter scoped to the year. Allocation
// goes through the per-year counter row, whose lock is held until the
// caller's transaction commits, so numbers are unique and strictly increasing
// even under concurrent approvals. An allocated number is consumed for good:
// a rollback leaves a gap, never a duplicate.
type ReceiptAllocator struct {
	prefix   string
	counters fiscalyear.CounterRepository
}

// NewReceiptAllocator creates an allocator with the configured prefix
func NewReceiptAllocator(prefix string, counters fiscalyear.CounterRepository) *ReceiptAllocator {
	return &ReceiptAllocator{
		prefix:   prefix,
		counters: counters,
	}
}

// Allocate issues the next receipt number for the year inside the caller's
// transaction
func (a *ReceiptAllocator) Allocate(ctx context.Context, tx pgx.Tx, year int) (string, error) {
	seq, err := a.counters.WithTx(tx).Next(ctx, year)
	if err != nil {
		return "", err
	}
	return a.Format(year, seq), nil
}

// Format renders a receipt number without consuming a sequence value
func (a *ReceiptAllocator) Format(year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", a.prefix, year, seq)
}
