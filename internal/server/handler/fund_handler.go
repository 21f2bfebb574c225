package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/association-ledger/internal/domain/fund"
	"github.com/association-ledger/internal/server/middleware"
)

// FundHandler handles HTTP requests for the fund catalogue and fund reporting
type FundHandler struct {
	funds    FundService
	balances BalanceService
	logger   *slog.Logger
}

// NewFundHandler creates a new fund handler
func NewFundHandler(logger *slog.Logger, funds FundService, balances BalanceService) *FundHandler {
	return &FundHandler{
		funds:    funds,
		balances: balances,
		logger:   logger,
	}
}

// Create registers a new fund
func (h *FundHandler) Create(c *gin.Context) {
	var req CreateFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	actor, _ := middleware.ActorFrom(c)
	f, err := h.funds.Create(c.Request.Context(), req.Name, fund.Kind(req.Kind), actor.ID)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapFundToResponse(f))
}

// Deactivate retires a fund
func (h *FundHandler) Deactivate(c *gin.Context) {
	id, ok := h.fundIDParam(c)
	if !ok {
		return
	}

	actor, _ := middleware.ActorFrom(c)
	f, err := h.funds.Deactivate(c.Request.Context(), id, actor.ID)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, mapFundToResponse(f))
}

// GetByID retrieves fund details, returns 404 if not found
func (h *FundHandler) GetByID(c *gin.Context) {
	id, ok := h.fundIDParam(c)
	if !ok {
		return
	}

	f, err := h.funds.GetByID(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, mapFundToResponse(f))
}

// List retrieves the paginated fund catalogue
func (h *FundHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	items, total, err := h.funds.List(c.Request.Context(), pagination.PerPage, (pagination.Page-1)*pagination.PerPage)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	funds := make([]FundResponse, 0, len(items))
	for _, f := range items {
		funds = append(funds, mapFundToResponse(f))
	}

	RespondWithPaginatedData(c, http.StatusOK, funds, pagination.Page, pagination.PerPage, int(total))
}

// GetBalance resolves the fund's current balance from its ledger
func (h *FundHandler) GetBalance(c *gin.Context) {
	id, ok := h.fundIDParam(c)
	if !ok {
		return
	}

	balance, err := h.balances.Balance(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, BalanceResponse{
		FundID:  id.String(),
		Balance: balance.String(),
		AsOf:    nowRFC3339(),
	})
}

// GetStatement retrieves the fund's paginated ledger history, newest first
func (h *FundHandler) GetStatement(c *gin.Context) {
	id, ok := h.fundIDParam(c)
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	entries, total, err := h.balances.Statement(c.Request.Context(), id, pagination.PerPage, (pagination.Page-1)*pagination.PerPage)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	statement := make([]LedgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		statement = append(statement, mapLedgerEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, http.StatusOK, statement, pagination.Page, pagination.PerPage, int(total))
}

func (h *FundHandler) fundIDParam(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid fund ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid fund ID")
		return uuid.Nil, false
	}
	return id, true
}
