package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/association-ledger/internal/domain/fund"
)

// world wires every engine over the in-memory repositories so tests can drive
// full financial flows without a database
type world struct {
	funds         *memFundRepo
	ledger        *memLedgerRepo
	contributions *memContributionRepo
	expenses      *memExpenseRepo
	years         *memYearRepo
	counters      *memCounterRepo
	dispatcher    *recordingDispatcher

	fundService        *FundService
	balances           *BalanceService
	contributionEngine *ContributionEngine
	expenseEngine      *ExpenseEngine
	gate               *YearGate
}

func newWorld(t *testing.T) *world {
	t.Helper()

	w := &world{
		funds:         newMemFundRepo(),
		ledger:        newMemLedgerRepo(),
		contributions: newMemContributionRepo(),
		expenses:      newMemExpenseRepo(),
		years:         newMemYearRepo(),
		counters:      newMemCounterRepo(),
		dispatcher:    &recordingDispatcher{},
	}

	db := fakeTxRunner{}
	logger := newTestLogger()
	receipts := NewReceiptAllocator("REC", w.counters)

	w.fundService = NewFundService(w.funds, w.dispatcher, logger)
	w.balances = NewBalanceService(w.funds, w.ledger)
	w.contributionEngine = NewContributionEngine(db, w.funds, w.ledger, w.contributions, w.years, receipts, w.dispatcher, logger)
	w.expenseEngine = NewExpenseEngine(db, w.funds, w.ledger, w.expenses, w.years, w.dispatcher, logger)
	w.gate = NewYearGate(db, w.years, w.dispatcher)

	return w
}

// openCurrentYear opens the wall-clock year, which gates record creation
func (w *world) openCurrentYear(t *testing.T) {
	t.Helper()
	_, err := w.gate.Open(context.Background(), time.Now().Year(), uuid.New())
	require.NoError(t, err)
}

// activeFund creates a fund ready to receive records
func (w *world) activeFund(t *testing.T) *fund.Fund {
	t.Helper()
	f, err := w.fundService.Create(context.Background(), "General Fund", fund.KindGeneral, uuid.New())
	require.NoError(t, err)
	return f
}
