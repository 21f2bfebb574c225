package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/association-ledger/internal/domain/expense"
	"github.com/association-ledger/internal/server/middleware"
)

// ExpenseHandler handles HTTP requests for the expense approval flow
type ExpenseHandler struct {
	expenses ExpenseService
	logger   *slog.Logger
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(logger *slog.Logger, expenses ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{
		expenses: expenses,
		logger:   logger,
	}
}

// Create records a new PENDING expense
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	fundID, err := uuid.Parse(req.FundID)
	if err != nil {
		h.logger.Error("Invalid fund ID", "fund_id", req.FundID, "error", err)
		RespondBadRequest(c, "Invalid fund ID")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.logger.Error("Invalid amount", "amount", req.Amount, "error", err)
		RespondBadRequest(c, "Invalid amount: must be a decimal string")
		return
	}

	expenseDate, err := time.Parse("2006-01-02", req.ExpenseDate)
	if err != nil {
		h.logger.Error("Invalid expense date", "expense_date", req.ExpenseDate, "error", err)
		RespondBadRequest(c, "Invalid expense date: expected YYYY-MM-DD")
		return
	}

	actor, _ := middleware.ActorFrom(c)
	record, err := h.expenses.Create(c.Request.Context(), fundID, req.Purpose, amount, expenseDate, actor.ID)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapExpenseToResponse(record))
}

// Approve commits a pending expense to the ledger after the solvency check
func (h *ExpenseHandler) Approve(c *gin.Context) {
	id, ok := h.expenseIDParam(c)
	if !ok {
		return
	}

	actor, _ := middleware.ActorFrom(c)
	result, err := h.expenses.Approve(c.Request.Context(), id, actor.ID)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	response := mapExpenseToResponse(result.Expense)
	response.NewBalance = result.NewBalance.String()
	RespondOK(c, response)
}

// Cancel closes out an expense; an approved one gets a compensating credit
func (h *ExpenseHandler) Cancel(c *gin.Context) {
	id, ok := h.expenseIDParam(c)
	if !ok {
		return
	}

	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "A reason is required")
		return
	}

	actor, _ := middleware.ActorFrom(c)
	result, err := h.expenses.Cancel(c.Request.Context(), id, actor.ID, req.Reason)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	response := mapExpenseToResponse(result.Expense)
	if result.Expense.Status == expense.StatusCancelled && result.Expense.ApprovedAt != nil {
		response.NewBalance = result.NewBalance.String()
	}
	RespondOK(c, response)
}

// GetByID retrieves expense details, returns 404 if not found
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	id, ok := h.expenseIDParam(c)
	if !ok {
		return
	}

	record, err := h.expenses.GetByID(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, mapExpenseToResponse(record))
}

// GetByFundID retrieves paginated expenses for a fund, optionally filtered by
// status
func (h *ExpenseHandler) GetByFundID(c *gin.Context) {
	fundIDParam := c.Param("id")
	fundID, err := uuid.Parse(fundIDParam)
	if err != nil {
		h.logger.Error("Invalid fund ID", "fund_id", fundIDParam, "error", err)
		RespondBadRequest(c, "Invalid fund ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	status := expense.Status(c.Query("status"))

	items, total, err := h.expenses.ListByFund(
		c.Request.Context(),
		fundID,
		status,
		pagination.PerPage,
		(pagination.Page-1)*pagination.PerPage,
	)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	expenses := make([]ExpenseResponse, 0, len(items))
	for _, record := range items {
		expenses = append(expenses, mapExpenseToResponse(record))
	}

	RespondWithPaginatedData(c, http.StatusOK, expenses, pagination.Page, pagination.PerPage, int(total))
}

func (h *ExpenseHandler) expenseIDParam(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid expense ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid expense ID")
		return uuid.Nil, false
	}
	return id, true
}
