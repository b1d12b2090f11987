// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package main runs the Sentinel server.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, config.yaml, environment)
//  2. Logging
//  3. Event sinks (badger, NATS, both or none) behind the mirror
//  4. Alert channels and dispatcher
//  5. Engine
//  6. HTTP API
//  7. Supervisor tree, until SIGINT or SIGTERM
//
// Example:
//
//	export ENVIRONMENT=production
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export SINK_TYPE=both
//	export NATS_EMBEDDED=true
//	./sentinel
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/sentinel/internal/api"
	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/engine"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/supervisor"
	"github.com/tomtom215/sentinel/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggingSettings())

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("sink", cfg.Sink.Type).
		Int("block_threshold", cfg.Audit.BlockThreshold).
		Bool("auth", cfg.Security.JWTSecret != "").
		Msg("Starting Sentinel")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), cfg.TreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === Data layer ===

	sinks, err := initSinks(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event sinks")
	}
	defer sinks.Close()

	// === Messaging layer ===

	alerts, err := initAlerts(cfg)
	if err != nil {
		sinks.Close()
		logging.Fatal().Err(err).Msg("Failed to initialize alert channels")
	}

	// === Engine ===

	opts := []engine.Option{engine.WithAlerter(alerts.dispatcher)}
	if sinks.mirror != nil {
		opts = append(opts, engine.WithSink(sinks.mirror))
	}
	eng, err := engine.New(cfg.EngineConfig(), opts...)
	if err != nil {
		sinks.Close()
		logging.Fatal().Err(err).Msg("Failed to create engine")
	}

	// === API ===

	deps := api.Deps{
		Engine: eng,
		Alerts: alerts.memory,
		Queue:  alerts.dispatcher,
	}
	// Interfaces stay nil unless the component exists.
	if alerts.hub != nil {
		deps.Stream = alerts.hub
	}
	if sinks.badger != nil {
		deps.Archive = sinks.badger
	}
	if sinks.mirror != nil {
		deps.Mirror = sinks.mirror
	}
	router, err := api.NewRouter(cfg.APIConfig(), deps)
	if err != nil {
		sinks.Close()
		logging.Fatal().Err(err).Msg("Failed to create API router")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === Supervisor tree ===

	if sinks.mirror != nil {
		tree.AddDataService(sinks.mirror)
	}
	if sinks.gc != nil {
		tree.AddDataService(sinks.gc)
	}
	tree.AddDataService(eng)

	tree.AddMessagingService(alerts.dispatcher)
	if alerts.hub != nil {
		tree.AddMessagingService(alerts.hub)
	}

	tree.AddAPIService(services.NewHTTPServerService(server, addr, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}
	stop()

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().
		Int("events_stored", eng.Len()).
		Uint64("events_total", eng.Total()).
		Msg("Sentinel stopped")
}
