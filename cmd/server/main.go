// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

// Package main is the entry point for the Orderhub server.
//
// Orderhub is the live order-broadcast service of the Dinehall restaurant
// platform. Kitchen displays, floor tablets, and back-office dashboards keep
// a WebSocket open to it; any order status change pushed by one client (or
// injected over the HTTP ingress endpoint) is fanned out to every other
// connected client in real time.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered settings from defaults, config file, and
//     environment variables (Koanf v2)
//  2. WebSocket Hub: connection registry, broadcast fan-out, heartbeat
//  3. HTTP Server: upgrade path, ingress, health, and metrics endpoints (chi)
//  4. Supervisor Tree: suture-managed lifecycle with failure isolation
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (PORT, HEARTBEAT_INTERVAL, LOG_LEVEL, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (bounded by SHUTDOWN_TIMEOUT)
//   - Sends close frames to connected WebSocket clients
//
// # Example Usage
//
// Development:
//
//	PORT=4100 LOG_LEVEL=debug LOG_FORMAT=console ./orderhub
//
// Production:
//
//	export ENVIRONMENT=production
//	export CORS_ORIGINS=https://dashboard.dinehall.example
//	export HEARTBEAT_INTERVAL=30s
//	./orderhub
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dinehall/orderhub/internal/api"
	"github.com/dinehall/orderhub/internal/config"
	"github.com/dinehall/orderhub/internal/logging"
	"github.com/dinehall/orderhub/internal/supervisor"
	"github.com/dinehall/orderhub/internal/supervisor/services"
	ws "github.com/dinehall/orderhub/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("addr", cfg.ListenAddr()).
		Dur("heartbeat_interval", cfg.Hub.HeartbeatInterval).
		Msg("Starting Orderhub with supervisor tree")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Hub must exist before the HTTP layer: upgrade handlers register
	// clients against it and the ingress endpoint broadcasts through it.
	hub := ws.NewHub(ws.Config{
		HeartbeatInterval:   cfg.Hub.HeartbeatInterval,
		WriteTimeout:        cfg.Hub.WriteTimeout,
		MaxMessageSize:      cfg.Hub.MaxMessageSize,
		SendBufferSize:      cfg.Hub.SendBufferSize,
		BroadcastBufferSize: cfg.Hub.BroadcastBufferSize,
	})
	frameRouter := ws.NewRouter(hub)

	handler := api.NewHandler(hub, frameRouter, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	// Messaging layer services
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddMessagingService(services.NewHeartbeatService(hub))
	logging.Info().Msg("Hub and heartbeat monitor added to supervisor tree")

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
