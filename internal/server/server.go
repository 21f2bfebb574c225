// Package server wires the approval engines to the gin HTTP surface.
// Authorization happens here: the engines never consult roles.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/association-ledger/internal/config"
	"github.com/association-ledger/internal/engine"
	"github.com/association-ledger/internal/server/handler"
)

// Engines bundles the core services exposed over HTTP
type Engines struct {
	Funds         *engine.FundService
	Balances      *engine.BalanceService
	Contributions *engine.ContributionEngine
	Expenses      *engine.ExpenseEngine
	Years         *engine.YearGate
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// NewServer creates and configures a new HTTP server over the given engines
func NewServer(log *slog.Logger, cfg *config.Config, engines Engines) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	fundHandler := handler.NewFundHandler(log, engines.Funds, engines.Balances)
	contributionHandler := handler.NewContributionHandler(log, engines.Contributions)
	expenseHandler := handler.NewExpenseHandler(log, engines.Expenses)
	yearHandler := handler.NewYearHandler(log, engines.Years)

	setupRouter(log, httpRouter, fundHandler, contributionHandler, expenseHandler, yearHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
