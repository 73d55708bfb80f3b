// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gorilla "github.com/gorilla/websocket"

	"github.com/dinehall/orderhub/internal/logging"
	"github.com/dinehall/orderhub/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
// This enables clear observability in logs and metrics.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	// This may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Config carries the hub's tunables. Zero values fall back to defaults so
// tests can construct a hub with only the fields they care about.
type Config struct {
	// HeartbeatInterval is the period between heartbeat sweeps. A client
	// that misses two consecutive sweeps is evicted.
	HeartbeatInterval time.Duration

	// WriteTimeout bounds a single frame or control write.
	WriteTimeout time.Duration

	// MaxMessageSize caps inbound frame size in bytes.
	MaxMessageSize int64

	// SendBufferSize is the per-client outbound buffer.
	SendBufferSize int

	// BroadcastBufferSize is the pending-broadcast queue.
	BroadcastBufferSize int
}

// DefaultConfig returns the hub defaults used in production.
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval:   30 * time.Second,
		WriteTimeout:        10 * time.Second,
		MaxMessageSize:      64 * 1024,
		SendBufferSize:      256,
		BroadcastBufferSize: 256,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = d.SendBufferSize
	}
	if c.BroadcastBufferSize <= 0 {
		c.BroadcastBufferSize = d.BroadcastBufferSize
	}
	return c
}

// outbound is one pending fan-out: a frame serialized exactly once, plus
// the originating client to skip (nil for ingress-originated broadcasts).
type outbound struct {
	payload []byte
	exclude *Client
}

// Hub maintains the set of active clients and broadcasts frames to the clients
type Hub struct {
	cfg        Config
	clients    map[*Client]bool
	broadcast  chan outbound
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub(cfg Config) *Hub {
	cfg = cfg.withDefaults()
	return &Hub{
		cfg:        cfg,
		broadcast:  make(chan outbound, cfg.BroadcastBufferSize),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext starts the hub with context support for graceful shutdown.
// This method is designed for use with suture supervision.
//
// When the context is canceled:
//  1. All connected clients are gracefully closed
//  2. The method returns ctx.Err()
//
// This allows the hub to be restarted by a supervisor without leaving
// orphaned connections.
//
// DETERMINISM: Uses priority-based selection to ensure predictable behavior:
// - Priority 1: Context cancellation (shutdown)
// - Priority 2: Client lifecycle events (Register/Unregister)
// - Priority 3: Broadcast frames
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: Check for shutdown (highest priority, non-blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
			// Context not canceled, continue
		}

		// Priority 2: Handle client lifecycle events (non-blocking check)
		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
			// No lifecycle events pending
		}

		// Priority 3: Handle broadcast frames or wait for any event (blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.addClient(client)

		case client := <-h.Unregister:
			h.removeClient(client)

		case out := <-h.broadcast:
			h.broadcastToClients(out)
		}
	}
}

// addClient inserts a client into the registry.
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.RecordConnection(true)
	logging.Info().Uint64("client_id", client.id).Int("total_clients", total).Msg("websocket client connected")
}

// removeClient removes a client and closes its send channel. Removal is
// idempotent: the close handler and the heartbeat sweep may both call it.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.RecordConnection(false)
		logging.Info().Uint64("client_id", client.id).Int("total_clients", total).Msg("websocket client disconnected")
	}
}

// logGracefulShutdown closes all clients and logs structured shutdown
// information. ctx.Err() is NOT logged as an error because context
// cancellation is expected behavior during graceful shutdown.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()

	h.closeAllClients()

	reason := getShutdownReason(ctx)

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

// getShutdownReason determines the shutdown reason from the context error.
func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		// Fallback for any future context error types
		return ShutdownReasonContextCanceled
	}
}

// broadcastToClients delivers one serialized frame to every registered
// client except the excluded originator.
// DETERMINISM: Sorts clients by ID to ensure consistent iteration order.
// A client whose send buffer is full is evicted rather than blocking
// delivery to the rest.
func (h *Hub) broadcastToClients(out outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	// Track clients to remove (can't modify map during iteration)
	var toRemove []*Client

	for _, client := range clients {
		if client == out.exclude {
			continue
		}
		select {
		case client.send <- out.payload:
			// Frame enqueued successfully
		default:
			// Channel full or closed, mark for removal
			metrics.RecordDroppedDelivery()
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.RecordConnection(false)
		logging.Warn().Uint64("client_id", client.id).Msg("evicted slow websocket client during broadcast")
	}
}

// closeAllClients gracefully closes all connected WebSocket clients.
// Called during shutdown to ensure clean termination.
// DETERMINISM: Closes clients in ID order to ensure consistent shutdown behavior.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
		metrics.RecordConnection(false)
	}
	logging.Info().Msg("closed all websocket clients during shutdown")
}

// Broadcast serializes an event exactly once and fans the bytes out to every
// registered client except the excluded one. Pass a nil exclude to reach all
// clients. Fire-and-forget: a full pending queue drops the event with a log.
func (h *Hub) Broadcast(event interface{}, exclude *Client) {
	payload, err := json.Marshal(event)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal broadcast event")
		return
	}

	select {
	case h.broadcast <- outbound{payload: payload, exclude: exclude}:
		metrics.RecordBroadcast("socket")
	default:
		logging.Warn().Msg("broadcast channel full, dropping event")
	}
}

// BroadcastRaw fans out pre-encoded JSON from the HTTP ingress. There is no
// originator on the socket side, so no client is excluded.
func (h *Hub) BroadcastRaw(payload []byte) {
	select {
	case h.broadcast <- outbound{payload: payload}:
		metrics.RecordBroadcast("ingress")
	default:
		logging.Warn().Msg("broadcast channel full, dropping ingress event")
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RunHeartbeat runs the heartbeat monitor until the context is canceled.
// It is supervised separately from the hub loop so a sweep failure never
// stalls registration or fan-out.
func (h *Hub) RunHeartbeat(ctx context.Context) error {
	interval := h.cfg.HeartbeatInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", interval).Msg("heartbeat monitor started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().
				Str("component", "heartbeat-monitor").
				Str("reason", string(getShutdownReason(ctx))).
				Msg("heartbeat monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			h.sweep()
		}
	}
}

// sweep pings every registered client and evicts the ones that never
// answered the previous ping. Eviction closes the transport, which also
// unblocks the client's read pump. Per-client errors evict only that client.
func (h *Hub) sweep() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	evicted := 0
	for _, client := range clients {
		if !client.alive.Load() {
			logging.Warn().Uint64("client_id", client.id).Msg("client missed two heartbeats, evicting")
			h.removeClient(client)
			_ = client.conn.Close()
			evicted++
			continue
		}

		client.alive.Store(false)
		deadline := time.Now().Add(h.cfg.WriteTimeout)
		if err := client.conn.WriteControl(gorilla.PingMessage, nil, deadline); err != nil {
			logging.Warn().Err(err).Uint64("client_id", client.id).Msg("heartbeat ping failed, evicting client")
			h.removeClient(client)
			_ = client.conn.Close()
			evicted++
		}
	}

	metrics.RecordHeartbeatSweep(evicted)
}
