package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/association-ledger/internal/domain/fund"
	"github.com/association-ledger/internal/domain/ledger"
)

// BalanceService resolves fund balances from the ledger, which is the sole
// source of truth: a fund's balance is the balance_after of its newest entry,
// or zero when it has no history. The engines do the same resolution inside
// their transactions via the tx-bound ledger repository; this service covers
// the read-only API paths.
type BalanceService struct {
	funds  fund.Repository
	ledger ledger.Repository
}

// NewBalanceService creates the read-side balance resolver
func NewBalanceService(funds fund.Repository, ledger ledger.Repository) *BalanceService {
	return &BalanceService{
		funds:  funds,
		ledger: ledger,
	}
}

// Balance returns the fund's current balance
func (s *BalanceService) Balance(ctx context.Context, fundID uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.funds.GetByID(ctx, fundID); err != nil {
		return decimal.Zero, classifyStorageErr(err, "funds")
	}

	latest, err := s.ledger.LatestByFund(ctx, fundID)
	if err != nil {
		return decimal.Zero, classifyStorageErr(err, "ledger_entries")
	}
	if latest == nil {
		return decimal.Zero, nil
	}
	return latest.BalanceAfter, nil
}

// Statement returns a page of the fund's ledger, newest first, with the total
// entry count
func (s *BalanceService) Statement(ctx context.Context, fundID uuid.UUID, limit, offset int) ([]*ledger.Entry, int64, error) {
	if _, err := s.funds.GetByID(ctx, fundID); err != nil {
		return nil, 0, classifyStorageErr(err, "funds")
	}

	entries, err := s.ledger.ListByFund(ctx, fundID, limit, offset)
	if err != nil {
		return nil, 0, classifyStorageErr(err, "ledger_entries")
	}

	total, err := s.ledger.CountByFund(ctx, fundID)
	if err != nil {
		return nil, 0, classifyStorageErr(err, "ledger_entries")
	}

	return entries, total, nil
}

// resolveBalance reads the current balance through a tx-bound repository.
// Callers must hold the fund row lock.
func resolveBalance(ctx context.Context, ledgerRepo ledger.Repository, fundID uuid.UUID) (decimal.Decimal, error) {
	latest, err := ledgerRepo.LatestByFund(ctx, fundID)
	if err != nil {
		return decimal.Zero, err
	}
	if latest == nil {
		return decimal.Zero, nil
	}
	return latest.BalanceAfter, nil
}
