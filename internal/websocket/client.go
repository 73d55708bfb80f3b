// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

package websocket

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dinehall/orderhub/internal/logging"
	"github.com/dinehall/orderhub/internal/metrics"
)

// Conn is the subset of *websocket.Conn the client and heartbeat sweep
// use. Tests substitute fakes.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// FrameHandler processes one inbound frame from a client. Implementations
// must contain their own failures; a panic is recovered by the caller.
type FrameHandler interface {
	HandleFrame(c *Client, data []byte)
}

// clientIDCounter generates unique, monotonically increasing IDs for clients.
// DETERMINISM: This ensures clients can be sorted in a consistent order for
// broadcast operations, eliminating non-deterministic map iteration order.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub
type Client struct {
	// id is a unique identifier for this client, used for deterministic ordering.
	// DETERMINISM: Assigned from an atomic counter to ensure consistent sorting.
	id      uint64
	hub     *Hub
	conn    Conn
	send    chan []byte
	handler FrameHandler

	// alive is cleared by each heartbeat sweep and set again by the pong
	// handler. A client found with the flag still cleared on the next
	// sweep has missed two consecutive beats and is evicted.
	alive atomic.Bool
}

// NewClient creates a new Client with a unique deterministic ID.
// The client starts alive; the first heartbeat sweep pings it.
func NewClient(hub *Hub, conn Conn, handler FrameHandler) *Client {
	c := &Client{
		id:      clientIDCounter.Add(1),
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, hub.cfg.SendBufferSize),
		handler: handler,
	}
	c.alive.Store(true)
	return c
}

// ID returns the client's unique identifier for deterministic ordering
func (c *Client) ID() uint64 {
	return c.id
}

// Enqueue places a pre-encoded frame on the client's send buffer without
// blocking. It reports whether the frame was accepted.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// readPump pumps frames from the websocket connection to the frame handler.
// There is no read deadline: liveness is the heartbeat monitor's job, and a
// dashboard that is merely quiet must not be disconnected.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Uint64("client_id", c.id).Msg("unexpected websocket close error")
				metrics.RecordWSError("read")
			}
			break
		}

		if c.handler != nil {
			c.handleFrame(data)
		}
	}
}

// handleFrame dispatches one frame, containing any handler panic to this
// message so a single bad frame never takes the connection down.
func (c *Client) handleFrame(data []byte) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().
				Uint64("client_id", c.id).
				Interface("panic", r).
				Msg("frame handler panicked")
			metrics.RecordWSError("handler_panic")
		}
	}()

	c.handler.HandleFrame(c, data)
}

// writePump pumps frames from the hub to the websocket connection.
// Heartbeat pings are written by the sweep via WriteControl, which gorilla
// allows concurrently with this pump, so no ping ticker lives here.
func (c *Client) writePump() {
	defer func() {
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	for {
		payload, ok := <-c.send
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout)); err != nil {
			logging.Error().Err(err).Uint64("client_id", c.id).Msg("failed to set write deadline")
			return
		}

		if !ok {
			// The hub closed the channel
			if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
				logging.Debug().Err(err).Uint64("client_id", c.id).Msg("failed to write close message")
			}
			return
		}

		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logging.Error().Err(err).Uint64("client_id", c.id).Msg("failed to write frame")
			metrics.RecordWSError("write")
			return
		}
		metrics.RecordMessageSent()
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
