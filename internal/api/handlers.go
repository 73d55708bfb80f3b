// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

package api

import (
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/dinehall/orderhub/internal/config"
	"github.com/dinehall/orderhub/internal/logging"
	"github.com/dinehall/orderhub/internal/metrics"
	ws "github.com/dinehall/orderhub/internal/websocket"
)

// maxIngressBodySize bounds how much of an ingress request body is read.
// Broadcast events are small; anything past this is a misbehaving caller.
const maxIngressBodySize = 1 << 20 // 1 MB

// Handler holds the dependencies of the HTTP surface.
type Handler struct {
	hub         *ws.Hub
	frameRouter *ws.Router
	config      *config.Config
}

// NewHandler creates a Handler bound to a hub and its frame router.
func NewHandler(hub *ws.Hub, frameRouter *ws.Router, cfg *config.Config) *Handler {
	return &Handler{
		hub:         hub,
		frameRouter: frameRouter,
		config:      cfg,
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout for protection against slow clients.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins.
// Legitimate browser WebSockets always include Origin; an empty Origin is
// rejected because allowing it would bypass the CORS policy entirely.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	// If config is nil, allow by default (fail open for tests/development)
	if h.config == nil {
		return true
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection, registers the client, and sends the
// greeting frame to the new connection only.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		metrics.RecordWSError("upgrade")
		return
	}

	client := ws.NewClient(h.hub, conn, h.frameRouter)
	h.hub.Register <- client
	client.Start()

	greeting, err := json.Marshal(ws.ConnectedMessage{Type: ws.MessageTypeConnected})
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal greeting")
		return
	}
	client.Enqueue(greeting)
}

// Broadcast is the HTTP ingress: stateless request handlers elsewhere in
// the platform POST an event here to fan it out to every open connection.
// The response bodies are a fixed wire contract, not the APIResponse
// envelope.
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxIngressBodySize))
	if err != nil {
		logging.Warn().Err(err).Msg("failed to read ingress body")
		writeIngressError(w)
		return
	}

	if !json.Valid(body) {
		writeIngressError(w)
		return
	}

	// Forward the exact bytes so every dashboard receives the object the
	// caller posted.
	h.hub.BroadcastRaw(body)

	logging.Info().Int("bytes", len(body)).Int("clients", h.hub.GetClientCount()).Msg("ingress broadcast accepted")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func writeIngressError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(`{"error":"invalid json"}`))
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status": "alive",
	})
}

// HealthReady reports readiness and the current connection count.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "hub not initialized", nil)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status":      "ready",
		"connections": h.hub.GetClientCount(),
	})
}
