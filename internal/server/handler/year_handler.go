package handler

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/association-ledger/internal/server/middleware"
)

// YearHandler handles HTTP requests for financial year opening and closure
type YearHandler struct {
	years  YearService
	logger *slog.Logger
}

// NewYearHandler creates a new financial year handler
func NewYearHandler(logger *slog.Logger, years YearService) *YearHandler {
	return &YearHandler{
		years:  years,
		logger: logger,
	}
}

// Get retrieves the closure record for a year, returns 404 if the year was
// never opened or closed
func (h *YearHandler) Get(c *gin.Context) {
	year, ok := h.yearParam(c)
	if !ok {
		return
	}

	record, err := h.years.Get(c.Request.Context(), year)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, mapYearToResponse(record))
}

// Open marks a year open for financial activity. Opening an already-open year
// is a no-op.
func (h *YearHandler) Open(c *gin.Context) {
	year, ok := h.yearParam(c)
	if !ok {
		return
	}

	actor, _ := middleware.ActorFrom(c)
	record, err := h.years.Open(c.Request.Context(), year, actor.ID)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, mapYearToResponse(record))
}

// Close permanently freezes a year's financial records
func (h *YearHandler) Close(c *gin.Context) {
	year, ok := h.yearParam(c)
	if !ok {
		return
	}

	var req CloseYearRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Error("Invalid request body", "error", err)
			RespondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	actor, _ := middleware.ActorFrom(c)
	record, err := h.years.Close(c.Request.Context(), year, actor.ID, req.Remarks)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, mapYearToResponse(record))
}

func (h *YearHandler) yearParam(c *gin.Context) (int, bool) {
	yearParam := c.Param("year")
	year, err := strconv.Atoi(yearParam)
	if err != nil || year < 1900 || year > 9999 {
		h.logger.Error("Invalid year", "year", yearParam)
		RespondBadRequest(c, "Invalid year: expected a four-digit year")
		return 0, false
	}
	return year, true
}
