// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

// Package config loads and validates Orderhub configuration.
//
// Configuration is loaded via Koanf v2 with layered sources, highest
// priority last:
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, config.yml, /etc/orderhub/...)
//  3. Environment variables (ORDERHUB_SERVER_PORT, HEARTBEAT_INTERVAL, ...)
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration for the broadcast service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Hub      HubConfig      `koanf:"hub"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds the combined HTTP+WebSocket listener settings.
type ServerConfig struct {
	// Host is the bind address. The ingress endpoint performs no
	// authentication, so binding to a private interface is the
	// operator's primary hardening knob.
	Host string `koanf:"host"`

	// Port is the listen port for the combined listener.
	Port int `koanf:"port"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// ReadHeaderTimeout bounds request header reads.
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`
}

// HubConfig holds connection-registry and heartbeat settings.
type HubConfig struct {
	// HeartbeatInterval is the period between heartbeat sweeps. A
	// connection that misses two consecutive sweeps is evicted.
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval"`

	// WriteTimeout bounds a single frame write to a client.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// MaxMessageSize caps inbound frame size in bytes.
	MaxMessageSize int64 `koanf:"max_message_size"`

	// SendBufferSize is the per-client outbound frame buffer. A client
	// whose buffer fills during fan-out is evicted rather than blocking
	// delivery to other clients.
	SendBufferSize int `koanf:"send_buffer_size"`

	// BroadcastBufferSize is the hub's pending-broadcast queue.
	BroadcastBufferSize int `koanf:"broadcast_buffer_size"`
}

// SecurityConfig holds CORS and rate-limit settings for the HTTP surface.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              4100,
			ShutdownTimeout:   10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			Environment:       "development",
		},
		Hub: HubConfig{
			HeartbeatInterval:   30 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxMessageSize:      64 * 1024,
			SendBufferSize:      256,
			BroadcastBufferSize: 256,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("server.environment must be development or production, got %q", c.Server.Environment)
	}
	if c.Hub.HeartbeatInterval <= 0 {
		return fmt.Errorf("hub.heartbeat_interval must be positive, got %s", c.Hub.HeartbeatInterval)
	}
	if c.Hub.WriteTimeout <= 0 {
		return fmt.Errorf("hub.write_timeout must be positive, got %s", c.Hub.WriteTimeout)
	}
	if c.Hub.MaxMessageSize <= 0 {
		return fmt.Errorf("hub.max_message_size must be positive, got %d", c.Hub.MaxMessageSize)
	}
	if c.Hub.SendBufferSize < 1 {
		return fmt.Errorf("hub.send_buffer_size must be at least 1, got %d", c.Hub.SendBufferSize)
	}
	if c.Hub.BroadcastBufferSize < 1 {
		return fmt.Errorf("hub.broadcast_buffer_size must be at least 1, got %d", c.Hub.BroadcastBufferSize)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// ListenAddr returns the host:port pair for the combined listener.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
