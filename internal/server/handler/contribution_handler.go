package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/association-ledger/internal/domain/contribution"
	"github.com/association-ledger/internal/server/middleware"
)

// ContributionHandler handles HTTP requests for the contribution approval flow
type ContributionHandler struct {
	contributions ContributionService
	logger        *slog.Logger
}

// NewContributionHandler creates a new contribution handler
func NewContributionHandler(logger *slog.Logger, contributions ContributionService) *ContributionHandler {
	return &ContributionHandler{
		contributions: contributions,
		logger:        logger,
	}
}

// Create records a new PENDING contribution
func (h *ContributionHandler) Create(c *gin.Context) {
	var req CreateContributionRequest
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

	actor, _ := middleware.ActorFrom(c)
	record, err := h.contributions.Create(
		c.Request.Context(),
		fundID,
		req.PayerRef,
		amount,
		contribution.PaymentMode(req.PaymentMode),
		req.ReferenceNo,
		actor.ID,
	)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapContributionToResponse(record))
}

// Approve commits a pending contribution to the ledger and issues its receipt
func (h *ContributionHandler) Approve(c *gin.Context) {
	id, ok := h.contributionIDParam(c)
	if !ok {
		return
	}

	actor, _ := middleware.ActorFrom(c)
	result, err := h.contributions.Approve(c.Request.Context(), id, actor.ID)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	response := mapContributionToResponse(result.Contribution)
	response.NewBalance = result.NewBalance.String()
	RespondOK(c, response)
}

// Reject closes out a pending contribution with a reason and no ledger effect
func (h *ContributionHandler) Reject(c *gin.Context) {
	id, ok := h.contributionIDParam(c)
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
	record, err := h.contributions.Reject(c.Request.Context(), id, actor.ID, req.Reason)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, mapContributionToResponse(record))
}

// Cancel reverses an approved contribution with a compensating debit
func (h *ContributionHandler) Cancel(c *gin.Context) {
	id, ok := h.contributionIDParam(c)
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
	result, err := h.contributions.Cancel(c.Request.Context(), id, actor.ID, req.Reason)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	response := mapContributionToResponse(result.Contribution)
	response.NewBalance = result.NewBalance.String()
	RespondOK(c, response)
}

// GetByID retrieves contribution details, returns 404 if not found
func (h *ContributionHandler) GetByID(c *gin.Context) {
	id, ok := h.contributionIDParam(c)
	if !ok {
		return
	}

	record, err := h.contributions.GetByID(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, mapContributionToResponse(record))
}

// GetByFundID retrieves paginated contributions for a fund, optionally
// filtered by status
func (h *ContributionHandler) GetByFundID(c *gin.Context) {
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

	status := contribution.Status(c.Query("status"))

	items, total, err := h.contributions.ListByFund(
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

	contributions := make([]ContributionResponse, 0, len(items))
	for _, record := range items {
		contributions = append(contributions, mapContributionToResponse(record))
	}

	RespondWithPaginatedData(c, http.StatusOK, contributions, pagination.Page, pagination.PerPage, int(total))
}

func (h *ContributionHandler) contributionIDParam(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid contribution ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid contribution ID")
		return uuid.Nil, false
	}
	return id, true
}
