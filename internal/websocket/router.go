// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

package websocket

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/dinehall/orderhub/internal/logging"
	"github.com/dinehall/orderhub/internal/metrics"
	"github.com/dinehall/orderhub/internal/validation"
)

// Router validates inbound frames and dispatches them by type. Error
// replies go to the sending client only and never reach other connections.
type Router struct {
	hub *Hub
}

// NewRouter creates a Router bound to a hub.
func NewRouter(hub *Hub) *Router {
	return &Router{hub: hub}
}

// statusChange carries the validated fields of an order:status-changed frame.
type statusChange struct {
	OrderID string `validate:"required,min=1"`
	Status  string `validate:"required,min=1"`
}

// HandleFrame implements FrameHandler. A malformed frame produces exactly
// one error reply to the sender and no broadcast; the connection stays open.
func (r *Router) HandleFrame(c *Client, data []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		metrics.RecordMessageReceived("invalid")
		logging.Debug().Err(err).Uint64("client_id", c.ID()).Msg("unparseable inbound frame")
		r.reply(c, "invalid message")
		return
	}

	if msg.Type == "" || msg.Token == "" {
		metrics.RecordMessageReceived("invalid")
		r.reply(c, "malformed message: type and token are required")
		return
	}

	metrics.RecordMessageReceived(msg.Type)

	switch msg.Type {
	case MessageTypeOrderStatusChanged:
		r.handleStatusChange(c, msg)
	default:
		logging.Debug().Str("type", msg.Type).Uint64("client_id", c.ID()).Msg("unknown inbound message type")
		r.reply(c, fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

// handleStatusChange normalizes a status-change frame and fans it out to
// every connection except the sender. The sender already knows its own
// action and must not receive an echo.
func (r *Router) handleStatusChange(c *Client, msg InboundMessage) {
	req := statusChange{OrderID: msg.OrderID, Status: msg.Status}
	if err := validation.ValidateStruct(&req); err != nil {
		logging.Debug().Err(err).Uint64("client_id", c.ID()).Msg("invalid status-change frame")
		r.reply(c, err.ToAPIError().Message)
		return
	}

	event := StatusChangedEvent{
		Type:      MessageTypeOrderStatusChanged,
		OrderID:   msg.OrderID,
		Status:    msg.Status,
		Timestamp: time.Now().UnixMilli(),
	}

	logging.Info().
		Str("order_id", msg.OrderID).
		Str("status", msg.Status).
		Uint64("client_id", c.ID()).
		Msg("order status change broadcast")

	r.hub.Broadcast(event, c)
}

// reply sends an error frame to the sender's buffer, best effort.
func (r *Router) reply(c *Client, message string) {
	payload, err := json.Marshal(ErrorMessage{Error: message})
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal error reply")
		return
	}

	if !c.Enqueue(payload) {
		logging.Warn().Uint64("client_id", c.ID()).Msg("send buffer full, dropping error reply")
	}
}
