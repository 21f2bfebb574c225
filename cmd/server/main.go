package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/association-ledger/internal/config"
	"github.com/association-ledger/internal/data/postgres"
	"github.com/association-ledger/internal/engine"
	"github.com/association-ledger/internal/logger"
	"github.com/association-ledger/internal/platform/messaging/producers"
	"github.com/association-ledger/internal/platform/persistence"
	"github.com/association-ledger/internal/server"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for the audit trail
	auditProducer, err := producers.NewAuditEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize audit Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	fundRepo := postgres.NewFundRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	contributionRepo := postgres.NewContributionRepository(log, postgresDB)
	expenseRepo := postgres.NewExpenseRepository(log, postgresDB)
	yearRepo := postgres.NewFiscalYearRepository(log, postgresDB)
	counterRepo := postgres.NewReceiptCounterRepository(log, postgresDB)

	// Initialize the post-commit audit dispatcher
	dispatcher, err := engine.NewDispatcher(auditProducer, cfg.Dispatcher.PoolSize, 5*time.Second, log)
	if err != nil {
		log.Error("Failed to initialize audit dispatcher", "error", err)
		os.Exit(1)
	}

	// Initialize engines
	receipts := engine.NewReceiptAllocator(cfg.Receipt.Prefix, counterRepo)
	engines := server.Engines{
		Funds:         engine.NewFundService(fundRepo, dispatcher, log),
		Balances:      engine.NewBalanceService(fundRepo, ledgerRepo),
		Contributions: engine.NewContributionEngine(postgresDB, fundRepo, ledgerRepo, contributionRepo, yearRepo, receipts, dispatcher, log),
		Expenses:      engine.NewExpenseEngine(postgresDB, fundRepo, ledgerRepo, expenseRepo, yearRepo, dispatcher, log),
		Years:         engine.NewYearGate(postgresDB, yearRepo, dispatcher),
	}

	// Initialize REST server
	srv := server.NewServer(log, cfg, engines)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so no new operations arrive
	if err = srv.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Drain the side-effect pool before closing its producer
	log.Info("Shutting down audit dispatcher", "running_workers", dispatcher.Running())
	dispatcher.Shutdown()

	if err = auditProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
