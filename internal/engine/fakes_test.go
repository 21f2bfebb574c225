package engine

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/association-ledger/internal/domain/audit"
	"github.com/association-ledger/internal/domain/contribution"
	"github.com/association-ledger/internal/domain/expense"
	"github.com/association-ledger/internal/domain/fiscalyear"
	"github.com/association-ledger/internal/domain/fund"
	"github.com/association-ledger/internal/domain/ledger"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTxRunner runs the transaction function directly. The in-memory
// repositories below ignore the tx handle, so a nil pgx.Tx is fine.
type fakeTxRunner struct{}

func (fakeTxRunner) ExecuteTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type memFundRepo struct {
	mu    sync.Mutex
	funds map[uuid.UUID]*fund.Fund
}

func newMemFundRepo() *memFundRepo {
	return &memFundRepo{funds: make(map[uuid.UUID]*fund.Fund)}
}

func (r *memFundRepo) Create(_ context.Context, f *fund.Fund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	r.funds[f.ID] = &cp
	return nil
}

func (r *memFundRepo) GetByID(_ context.Context, id uuid.UUID) (*fund.Fund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.funds[id]
	if !ok {
		return nil, fund.ErrFundNotFound{FundID: id}
	}
	cp := *f
	return &cp, nil
}

func (r *memFundRepo) List(_ context.Context, limit, offset int) ([]*fund.Fund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*fund.Fund
	for _, f := range r.funds {
		cp := *f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memFundRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.funds)), nil
}

func (r *memFundRepo) Update(_ context.Context, f *fund.Fund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.funds[f.ID]; !ok {
		return fund.ErrFundNotFound{FundID: f.ID}
	}
	cp := *f
	r.funds[f.ID] = &cp
	return nil
}

func (r *memFundRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*fund.Fund, error) {
	return r.GetByID(ctx, id)
}

func (r *memFundRepo) WithTx(pgx.Tx) fund.Repository { return r }

type memLedgerRepo struct {
	mu      sync.Mutex
	entries []*ledger.Entry
}

func newMemLedgerRepo() *memLedgerRepo { return &memLedgerRepo{} }

func (r *memLedgerRepo) Create(_ context.Context, entry *ledger.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *memLedgerRepo) LatestByFund(_ context.Context, fundID uuid.UUID) (*ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].FundID == fundID {
			cp := *r.entries[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memLedgerRepo) GetBySource(_ context.Context, source ledger.Source, sourceID uuid.UUID) (*ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Source == source && e.SourceID == sourceID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ledger.ErrEntryNotFound{SourceID: sourceID}
}

func (r *memLedgerRepo) ListByFund(_ context.Context, fundID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ledger.Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].FundID == fundID {
			cp := *r.entries[i]
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memLedgerRepo) CountByFund(_ context.Context, fundID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.entries {
		if e.FundID == fundID {
			n++
		}
	}
	return n, nil
}

func (r *memLedgerRepo) WithTx(pgx.Tx) ledger.Repository { return r }

type memContributionRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*contribution.Contribution
}

func newMemContributionRepo() *memContributionRepo {
	return &memContributionRepo{items: make(map[uuid.UUID]*contribution.Contribution)}
}

func (r *memContributionRepo) Create(_ context.Context, c *contribution.Contribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *memContributionRepo) GetByID(_ context.Context, id uuid.UUID) (*contribution.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, contribution.ErrContributionNotFound{ContributionID: id}
	}
	cp := *c
	return &cp, nil
}

func (r *memContributionRepo) ListByFund(_ context.Context, fundID uuid.UUID, status contribution.Status, limit, offset int) ([]*contribution.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*contribution.Contribution
	for _, c := range r.items {
		if c.FundID == fundID && (status == "" || c.Status == status) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memContributionRepo) CountByFund(_ context.Context, fundID uuid.UUID, status contribution.Status) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.items {
		if c.FundID == fundID && (status == "" || c.Status == status) {
			n++
		}
	}
	return n, nil
}

func (r *memContributionRepo) Update(_ context.Context, c *contribution.Contribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return contribution.ErrContributionNotFound{ContributionID: c.ID}
	}
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *memContributionRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*contribution.Contribution, error) {
	return r.GetByID(ctx, id)
}

func (r *memContributionRepo) WithTx(pgx.Tx) contribution.Repository { return r }

type memExpenseRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*expense.Expense
}

func newMemExpenseRepo() *memExpenseRepo {
	return &memExpenseRepo{items: make(map[uuid.UUID]*expense.Expense)}
}

func (r *memExpenseRepo) Create(_ context.Context, e *expense.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *memExpenseRepo) GetByID(_ context.Context, id uuid.UUID) (*expense.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return nil, expense.ErrExpenseNotFound{ExpenseID: id}
	}
	cp := *e
	return &cp, nil
}

func (r *memExpenseRepo) ListByFund(_ context.Context, fundID uuid.UUID, status expense.Status, limit, offset int) ([]*expense.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*expense.Expense
	for _, e := range r.items {
		if e.FundID == fundID && (status == "" || e.Status == status) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memExpenseRepo) CountByFund(_ context.Context, fundID uuid.UUID, status expense.Status) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.items {
		if e.FundID == fundID && (status == "" || e.Status == status) {
			n++
		}
	}
	return n, nil
}

func (r *memExpenseRepo) Update(_ context.Context, e *expense.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[e.ID]; !ok {
		return expense.ErrExpenseNotFound{ExpenseID: e.ID}
	}
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *memExpenseRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	return r.GetByID(ctx, id)
}

func (r *memExpenseRepo) WithTx(pgx.Tx) expense.Repository { return r }

type memYearRepo struct {
	mu    sync.Mutex
	years map[int]*fiscalyear.Year
}

func newMemYearRepo() *memYearRepo {
	return &memYearRepo{years: make(map[int]*fiscalyear.Year)}
}

func (r *memYearRepo) Create(_ context.Context, y *fiscalyear.Year) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *y
	r.years[y.Year] = &cp
	return nil
}

func (r *memYearRepo) Get(_ context.Context, year int) (*fiscalyear.Year, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	y, ok := r.years[year]
	if !ok {
		return nil, nil
	}
	cp := *y
	return &cp, nil
}

func (r *memYearRepo) Update(_ context.Context, y *fiscalyear.Year) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.years[y.Year]; !ok {
		return fiscalyear.ErrYearNotFound{Year: y.Year}
	}
	cp := *y
	r.years[y.Year] = &cp
	return nil
}

func (r *memYearRepo) LockForUpdate(ctx context.Context, year int) (*fiscalyear.Year, error) {
	return r.Get(ctx, year)
}

func (r *memYearRepo) WithTx(pgx.Tx) fiscalyear.Repository { return r }

type memCounterRepo struct {
	mu   sync.Mutex
	last map[int]int64
}

func newMemCounterRepo() *memCounterRepo {
	return &memCounterRepo{last: make(map[int]int64)}
}

func (r *memCounterRepo) Next(_ context.Context, year int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last[year]++
	return r.last[year], nil
}

func (r *memCounterRepo) WithTx(pgx.Tx) fiscalyear.CounterRepository { return r }

// recordingDispatcher captures dispatched audit notifications synchronously
type recordingDispatcher struct {
	mu     sync.Mutex
	events []*audit.Event
}

func (d *recordingDispatcher) Dispatch(action audit.Action, entityType audit.EntityType, entityID string, actorID uuid.UUID, metadata map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, audit.NewEvent(action, entityType, entityID, actorID, metadata))
}

func (d *recordingDispatcher) Events() []*audit.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*audit.Event(nil), d.events...)
}
