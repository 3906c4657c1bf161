// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

// Package main is the entry point for the ClassPulse analytics server.
//
// ClassPulse runs the booking analytics engine for studio and class booking
// platforms: revenue aggregation, booking forecasts, instructor performance,
// cohort retention, and schedule optimization, each dispatched as a job
// through an in-process FIFO engine.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, optional YAML file, environment
//     variables (Koanf v2)
//  2. Logging: zerolog, console or JSON format
//  3. Engine: the analytics job dispatcher (watermill in-memory pub/sub)
//  4. HTTP API: chi router exposing one POST endpoint per job type,
//     plus health and Prometheus metrics endpoints
//  5. Supervisor tree: suture v4 supervising the engine and HTTP server
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, LOG_LEVEL, ENGINE_JOB_TIMEOUT, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests and the in-flight job to complete
//   - Stops the supervisor tree
//
// # Example Usage
//
//	export HTTP_PORT=8640
//	export LOG_LEVEL=debug
//	export LOG_FORMAT=console
//	./classpulse
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/classpulse/classpulse/internal/api"
	"github.com/classpulse/classpulse/internal/config"
	"github.com/classpulse/classpulse/internal/engine"
	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/supervisor"
	"github.com/classpulse/classpulse/internal/supervisor/services"
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
		Str("addr", cfg.Server.Addr()).
		Dur("job_timeout", cfg.Engine.JobTimeout).
		Msg("Starting ClassPulse")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	eng, err := engine.New(logging.Logger(), engine.Config{
		OutputBuffer: cfg.Engine.OutputBuffer,
		CloseTimeout: cfg.Engine.CloseTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create analytics engine")
	}
	tree.AddEngineService(services.NewEngineService(eng))

	// The client's response subscription outlives individual requests; it
	// is torn down with the shutdown context.
	client, err := engine.NewClient(ctx, eng, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create engine client")
	}
	defer client.Close()

	router := api.NewRouter(client, eng, *cfg)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// Readiness is also surfaced at /api/v1/health/ready; this log line is
	// for operators tailing startup.
	select {
	case <-eng.Running():
		logging.Info().Msg("Analytics engine accepting jobs")
	case <-time.After(10 * time.Second):
		logging.Warn().Msg("Analytics engine slow to start")
	case <-ctx.Done():
	}

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor closes the channel
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("ClassPulse stopped gracefully")
}
