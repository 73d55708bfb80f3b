// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

package websocket

// Message types for WebSocket communication
const (
	MessageTypeConnected          = "connected"
	MessageTypeOrderStatusChanged = "order:status-changed"
	MessageTypeOrderAdded         = "order:added"
)

// InboundMessage is a client-originated frame. Every inbound frame must
// carry a type discriminator and a token; fields beyond those vary per type.
// The token check is presence-only at this layer. Authorization happened
// before the token was issued.
type InboundMessage struct {
	Type    string `json:"type"`
	Token   string `json:"token"`
	OrderID string `json:"orderId,omitempty"`
	Status  string `json:"status,omitempty"`
}

// StatusChangedEvent is the normalized event fanned out to dashboards when
// a client reports an order status change. Timestamp is server-stamped in
// epoch milliseconds.
type StatusChangedEvent struct {
	Type      string `json:"type"`
	OrderID   string `json:"orderId"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// ConnectedMessage is the greeting sent to a newly upgraded connection only.
type ConnectedMessage struct {
	Type string `json:"type"`
}

// ErrorMessage is a reply sent to a single sender, never broadcast.
type ErrorMessage struct {
	Error string `json:"error"`
}
