// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

// Package main is the entry point for the CloudCart analytics server.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered settings from defaults, config file and
//     environment variables (Koanf v2)
//  2. Database: DuckDB columnar store for order events and line items
//  3. NATS (optional): durable JetStream consumption of order events
//  4. Recommendation engine: co-occurrence model with optional training
//     on startup and periodic retraining
//  5. HTTP server: Chi-routed analytics and recommendation API
//
// Graceful shutdown on SIGINT/SIGTERM stops the HTTP server first, then
// drains the event consumer, then checkpoints and closes the database.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudcart/analytics/internal/api"
	"github.com/cloudcart/analytics/internal/config"
	"github.com/cloudcart/analytics/internal/database"
	"github.com/cloudcart/analytics/internal/logging"
	"github.com/cloudcart/analytics/internal/recommend"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Str("environment", cfg.Server.Environment).
		Msg("Starting CloudCart analytics")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Recommendation engine fed by the persisted order lines.
	engine := recommend.NewEngine(database.NewRecommendationDataProvider(db))
	stopTraining := startTraining(ctx, engine, &cfg.Recommend)
	defer stopTraining()

	// NATS JetStream ingest (optional).
	ingest, err := initIngest(ctx, cfg, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event ingest")
	}
	if ingest != nil {
		defer ingest.Close()
	}

	handler := api.NewHandler(db, engine, cfg)
	router := api.NewRouter(handler, &cfg.API)

	server := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErrCh:
		logging.Error().Err(err).Msg("HTTP server failed")
	}

	// Stop accepting requests, then drain in-flight ones.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	// Cancel background work (training ticker, consumer subscription).
	cancel()

	logging.Info().Msg("Shutdown complete")
}
