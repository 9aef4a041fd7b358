// Package main is the entry point for the lottery shop back-office server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lotto-pos/internal/config"
	"lotto-pos/internal/handler"
	"lotto-pos/internal/pkg/db"
	"lotto-pos/internal/pkg/lock"
	"lotto-pos/internal/repository"
	"lotto-pos/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	slipRepo := repository.NewSlipRepository(dbPool.Pool)
	drawRepo := repository.NewDrawRepository(dbPool.Pool)
	agentRepo := repository.NewAgentRepository(dbPool.Pool)

	// Initialize services
	clock := clockwork.NewRealClock()
	drawLocks := lock.NewDrawLock()

	settlementService := service.NewSettlementService(slipRepo, drawRepo, agentRepo, drawLocks)
	slipService := service.NewSlipService(slipRepo, drawRepo, agentRepo, clock, drawLocks, cfg.Slips.NumberPrefix)
	drawService := service.NewDrawService(drawRepo, settlementService, clock, cfg.Settlement.ResultEditWindow)
	agentService := service.NewAgentService(agentRepo)
	reportService := service.NewReportService(slipRepo, drawRepo, agentRepo)

	// Initialize HTTP API
	h := handler.New(slipService, drawService, agentService, settlementService, reportService)
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      h.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Server is starting...")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	log.Info().Msg("Server stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create draws table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS draws (
			id UUID PRIMARY KEY,
			label VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'open',
			opened_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			closed_at TIMESTAMPTZ,
			banned_numbers JSONB,
			payout_rates JSONB,
			result JSONB
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_draws_single_open ON draws ((status)) WHERE status = 'open';
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: draws table created")

	// Migration 2: Create slips table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS slips (
			id UUID PRIMARY KEY,
			slip_number VARCHAR(50) NOT NULL,
			customer_name VARCHAR(255) NOT NULL DEFAULT '',
			items JSONB NOT NULL,
			total_amount NUMERIC(14,2) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending-result',
			draw_id UUID REFERENCES draws(id),
			agent_id UUID,
			agent_name VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_slips_draw ON slips(draw_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_slips_agent ON slips(agent_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_slips_status ON slips(status);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: slips table created")

	// Migration 3: Create agents table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS agents (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			commission_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
			payout_2digit NUMERIC(10,2),
			payout_3straight NUMERIC(10,2),
			payout_3tod NUMERIC(10,2),
			banned_numbers JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: agents table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
