/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the deposit engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment), then flags
  2. Initialize logger
  3. Initialize SQLite store, optionally seeding it from a portfolio file
  4. Create API handler and router
  5. Start the staleness scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: PORT or 8080)
  -db      SQLite database path (default: DEPOSITS_DB_PATH or deposits.db)
           Use ":memory:" for in-memory database
  -seed    Portfolio JSON file to import on startup (replaces stored data)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/deposits.db"

  # Demo with in-memory database seeded from a file
  ./server -db=":memory:" -seed=portfolio.json

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Staleness job
  - config/config.go: Environment variables
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/warp/deposit-engine/api"
	"github.com/warp/deposit-engine/config"
	"github.com/warp/deposit-engine/factory"
	"github.com/warp/deposit-engine/logger"
	"github.com/warp/deposit-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path")
	seed := flag.String("seed", "", "portfolio JSON file imported on startup")
	flag.Parse()

	l := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(l)

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		l.Fatal().Err(err).Str("db", *dbPath).Msg("Failed to initialize database")
	}
	defer store.Close()

	if *seed != "" {
		p, err := factory.LoadPortfolioFile(*seed)
		if err != nil {
			l.Fatal().Err(err).Msg("Failed to read seed portfolio")
		}
		if err := store.ReplaceAll(context.Background(), p.Banks, p.Deposits); err != nil {
			l.Fatal().Err(err).Msg("Failed to import seed portfolio")
		}
		l.Info().Str("file", *seed).Int("deposits", len(p.Deposits)).Msg("Seed portfolio imported")
	}

	// Initialize handler
	handler := api.NewHandler(store, l)
	handler.Advisor.MinBenefit = cfg.MinBenefit
	handler.MaxDataAge = cfg.StaleAfter

	// Scheduler
	scheduler := api.NewScheduler(l)
	if err := scheduler.AddJob(cfg.CheckSchedule, api.NewStalenessJob(store, cfg.StaleAfter, l)); err != nil {
		l.Fatal().Err(err).Msg("Failed to schedule staleness check")
	}
	scheduler.Start()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		l.Info().Int("port", *port).Str("db", *dbPath).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		l.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	l.Info().Msg("Server stopped")
}
