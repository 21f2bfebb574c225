package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/association-ledger/internal/domain/contribution"
	"github.com/association-ledger/internal/domain/expense"
	"github.com/association-ledger/internal/domain/fiscalyear"
	"github.com/association-ledger/internal/domain/fund"
	"github.com/association-ledger/internal/domain/ledger"
	"github.com/association-ledger/internal/engine"
	"github.com/association-ledger/internal/server/middleware"
)

var testActorID = uuid.MustParse("6f1e4a32-4f2d-4b5e-9a3c-8d7f2b1c0a9e")

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Authenticate())
	return router
}

// newAuthedRequest builds a request carrying valid admin actor headers
func newAuthedRequest(method, url string, body io.Reader) *http.Request {
	req, _ := http.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorIDHeader, testActorID.String())
	req.Header.Set(middleware.ActorRoleHeader, "ADMIN")
	return req
}

type MockFundService struct {
	mock.Mock
}

func (m *MockFundService) Create(ctx context.Context, name string, kind fund.Kind, actorID uuid.UUID) (*fund.Fund, error) {
	args := m.Called(ctx, name, kind, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fund.Fund), args.Error(1)
}

func (m *MockFundService) Deactivate(ctx context.Context, id, actorID uuid.UUID) (*fund.Fund, error) {
	args := m.Called(ctx, id, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fund.Fund), args.Error(1)
}

func (m *MockFundService) GetByID(ctx context.Context, id uuid.UUID) (*fund.Fund, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fund.Fund), args.Error(1)
}

func (m *MockFundService) List(ctx context.Context, limit, offset int) ([]*fund.Fund, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*fund.Fund), args.Get(1).(int64), args.Error(2)
}

type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) Balance(ctx context.Context, fundID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, fundID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBalanceService) Statement(ctx context.Context, fundID uuid.UUID, limit, offset int) ([]*ledger.Entry, int64, error) {
	args := m.Called(ctx, fundID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*ledger.Entry), args.Get(1).(int64), args.Error(2)
}

type MockContributionService struct {
	mock.Mock
}

func (m *MockContributionService) Create(ctx context.Context, fundID uuid.UUID, payerRef string, amount decimal.Decimal, mode contribution.PaymentMode, referenceNo string, actorID uuid.UUID) (*contribution.Contribution, error) {
	args := m.Called(ctx, fundID, payerRef, amount, mode, referenceNo, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contribution.Contribution), args.Error(1)
}

func (m *MockContributionService) Approve(ctx context.Context, contributionID, approverID uuid.UUID) (*engine.ContributionResult, error) {
	args := m.Called(ctx, contributionID, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.ContributionResult), args.Error(1)
}

func (m *MockContributionService) Reject(ctx context.Context, contributionID, approverID uuid.UUID, reason string) (*contribution.Contribution, error) {
	args := m.Called(ctx, contributionID, approverID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contribution.Contribution), args.Error(1)
}

func (m *MockContributionService) Cancel(ctx context.Context, contributionID, actorID uuid.UUID, reason string) (*engine.ContributionResult, error) {
	args := m.Called(ctx, contributionID, actorID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.ContributionResult), args.Error(1)
}

func (m *MockContributionService) GetByID(ctx context.Context, id uuid.UUID) (*contribution.Contribution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contribution.Contribution), args.Error(1)
}

func (m *MockContributionService) ListByFund(ctx context.Context, fundID uuid.UUID, status contribution.Status, limit, offset int) ([]*contribution.Contribution, int64, error) {
	args := m.Called(ctx, fundID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*contribution.Contribution), args.Get(1).(int64), args.Error(2)
}

type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) Create(ctx context.Context, fundID uuid.UUID, purpose string, amount decimal.Decimal, expenseDate time.Time, requesterID uuid.UUID) (*expense.Expense, error) {
	args := m.Called(ctx, fundID, purpose, amount, expenseDate, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseService) Approve(ctx context.Context, expenseID, approverID uuid.UUID) (*engine.ExpenseResult, error) {
	args := m.Called(ctx, expenseID, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.ExpenseResult), args.Error(1)
}

func (m *MockExpenseService) Cancel(ctx context.Context, expenseID, actorID uuid.UUID, reason string) (*engine.ExpenseResult, error) {
	args := m.Called(ctx, expenseID, actorID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.ExpenseResult), args.Error(1)
}

func (m *MockExpenseService) GetByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseService) ListByFund(ctx context.Context, fundID uuid.UUID, status expense.Status, limit, offset int) ([]*expense.Expense, int64, error) {
	args := m.Called(ctx, fundID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*expense.Expense), args.Get(1).(int64), args.Error(2)
}

type MockYearService struct {
	mock.Mock
}

func (m *MockYearService) Get(ctx context.Context, year int) (*fiscalyear.Year, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscalyear.Year), args.Error(1)
}

func (m *MockYearService) Open(ctx context.Context, year int, actorID uuid.UUID) (*fiscalyear.Year, error) {
	args := m.Called(ctx, year, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscalyear.Year), args.Error(1)
}

func (m *MockYearService) Close(ctx context.Context, year int, actorID uuid.UUID, remarks string) (*fiscalyear.Year, error) {
	args := m.Called(ctx, year, actorID, remarks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscalyear.Year), args.Error(1)
}
