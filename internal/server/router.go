package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/association-ledger/internal/domain/shared"
	"github.com/association-ledger/internal/server/handler"
	"github.com/association-ledger/internal/server/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	fundHandler *handler.FundHandler,
	contributionHandler *handler.ContributionHandler,
	expenseHandler *handler.ExpenseHandler,
	yearHandler *handler.YearHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Authenticate())
	{
		// Fund catalogue and reporting
		funds := v1.Group("/funds")
		{
			funds.POST("", middleware.Require(shared.CapManageFund), fundHandler.Create)
			funds.GET("", middleware.Require(shared.CapViewLedger), fundHandler.List)
			funds.GET("/:id", middleware.Require(shared.CapViewLedger), fundHandler.GetByID)
			funds.POST("/:id/deactivate", middleware.Require(shared.CapManageFund), fundHandler.Deactivate)
			funds.GET("/:id/balance", middleware.Require(shared.CapViewLedger), fundHandler.GetBalance)
			funds.GET("/:id/statement", middleware.Require(shared.CapViewLedger), fundHandler.GetStatement)
			funds.GET("/:id/contributions", middleware.Require(shared.CapViewLedger), contributionHandler.GetByFundID)
			funds.GET("/:id/expenses", middleware.Require(shared.CapViewLedger), expenseHandler.GetByFundID)
		}

		// Contribution approval flow
		contributions := v1.Group("/contributions")
		{
			contributions.POST("", middleware.Require(shared.CapCreateContribution), contributionHandler.Create)
			contributions.GET("/:id", middleware.Require(shared.CapViewLedger), contributionHandler.GetByID)
			contributions.POST("/:id/approve", middleware.Require(shared.CapApproveContribution), contributionHandler.Approve)
			contributions.POST("/:id/reject", middleware.Require(shared.CapApproveContribution), contributionHandler.Reject)
			contributions.POST("/:id/cancel", middleware.Require(shared.CapCancelContribution), contributionHandler.Cancel)
		}

		// Expense approval flow
		expenses := v1.Group("/expenses")
		{
			expenses.POST("", middleware.Require(shared.CapManageExpense), expenseHandler.Create)
			expenses.GET("/:id", middleware.Require(shared.CapViewLedger), expenseHandler.GetByID)
			expenses.POST("/:id/approve", middleware.Require(shared.CapManageExpense), expenseHandler.Approve)
			expenses.POST("/:id/cancel", middleware.Require(shared.CapManageExpense), expenseHandler.Cancel)
		}

		// Financial year gate
		years := v1.Group("/years")
		{
			years.GET("/:year", middleware.Require(shared.CapViewLedger), yearHandler.Get)
			years.POST("/:year/open", middleware.Require(shared.CapCloseYear), yearHandler.Open)
			years.POST("/:year/close", middleware.Require(shared.CapCloseYear), yearHandler.Close)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
