// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

package websocket

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// routerFixture wires a running hub, a router, a sender, and one receiver.
type routerFixture struct {
	hub      *Hub
	router   *Router
	sender   *Client
	receiver *Client
}

func setupRouter(t *testing.T) *routerFixture {
	t.Helper()
	hub := setupHub(t)
	sender := NewClient(hub, newFakeConn(), nil)
	receiver := NewClient(hub, newFakeConn(), nil)
	registerClient(hub, sender)
	registerClient(hub, receiver)

	return &routerFixture{
		hub:      hub,
		router:   NewRouter(hub),
		sender:   sender,
		receiver: receiver,
	}
}

// senderError unmarshals the single error reply buffered for the sender.
func senderError(t *testing.T, sender *Client) string {
	t.Helper()
	frames := drain(sender)
	if len(frames) != 1 {
		t.Fatalf("sender got %d frames, want exactly 1 error reply", len(frames))
	}
	var reply ErrorMessage
	if err := json.Unmarshal(frames[0], &reply); err != nil {
		t.Fatalf("error reply is not valid JSON: %v", err)
	}
	if reply.Error == "" {
		t.Fatal("error reply has empty error field")
	}
	return reply.Error
}

func TestRouter_InvalidJSON(t *testing.T) {
	f := setupRouter(t)

	f.router.HandleFrame(f.sender, []byte("not-json"))
	time.Sleep(20 * time.Millisecond)

	if got := senderError(t, f.sender); got != "invalid message" {
		t.Errorf("error = %q, want %q", got, "invalid message")
	}
	if frames := drain(f.receiver); len(frames) != 0 {
		t.Errorf("receiver got %d frames, want 0; parse failures must not broadcast", len(frames))
	}
}

func TestRouter_MissingTypeOrToken(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"missing token", `{"type":"order:status-changed"}`},
		{"missing type", `{"token":"t"}`},
		{"missing both", `{}`},
		{"empty strings", `{"type":"","token":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupRouter(t)

			f.router.HandleFrame(f.sender, []byte(tt.frame))
			time.Sleep(20 * time.Millisecond)

			got := senderError(t, f.sender)
			if got != "malformed message: type and token are required" {
				t.Errorf("error = %q, want format-error reply", got)
			}
			if frames := drain(f.receiver); len(frames) != 0 {
				t.Errorf("receiver got %d frames, want 0", len(frames))
			}
		})
	}
}

func TestRouter_UnknownType(t *testing.T) {
	f := setupRouter(t)

	f.router.HandleFrame(f.sender, []byte(`{"type":"bogus","token":"t"}`))
	time.Sleep(20 * time.Millisecond)

	got := senderError(t, f.sender)
	if !strings.Contains(got, "unknown message type") || !strings.Contains(got, "bogus") {
		t.Errorf("error = %q, want unknown-type reply naming the type", got)
	}
	if frames := drain(f.receiver); len(frames) != 0 {
		t.Errorf("receiver got %d frames, want 0; unknown types must not broadcast", len(frames))
	}
}

func TestRouter_StatusChangeBroadcast(t *testing.T) {
	f := setupRouter(t)
	before := time.Now().UnixMilli()

	frame := `{"type":"order:status-changed","token":"t","orderId":"ord-42","status":"preparing"}`
	f.router.HandleFrame(f.sender, []byte(frame))
	time.Sleep(20 * time.Millisecond)

	if frames := drain(f.sender); len(frames) != 0 {
		t.Errorf("sender got %d frames, want 0 (no echo)", len(frames))
	}

	frames := drain(f.receiver)
	if len(frames) != 1 {
		t.Fatalf("receiver got %d frames, want 1", len(frames))
	}

	var event StatusChangedEvent
	if err := json.Unmarshal(frames[0], &event); err != nil {
		t.Fatalf("broadcast is not valid JSON: %v", err)
	}
	if event.Type != MessageTypeOrderStatusChanged {
		t.Errorf("type = %q, want %q", event.Type, MessageTypeOrderStatusChanged)
	}
	if event.OrderID != "ord-42" {
		t.Errorf("orderId = %q, want ord-42", event.OrderID)
	}
	if event.Status != "preparing" {
		t.Errorf("status = %q, want preparing", event.Status)
	}
	if event.Timestamp < before || event.Timestamp > time.Now().UnixMilli() {
		t.Errorf("timestamp %d is not a server-stamped epoch-ms value", event.Timestamp)
	}
}

func TestRouter_StatusChangeMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"missing orderId", `{"type":"order:status-changed","token":"t","status":"ready"}`},
		{"missing status", `{"type":"order:status-changed","token":"t","orderId":"ord-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupRouter(t)

			f.router.HandleFrame(f.sender, []byte(tt.frame))
			time.Sleep(20 * time.Millisecond)

			if got := senderError(t, f.sender); got == "" {
				t.Error("want a validation error reply")
			}
			if frames := drain(f.receiver); len(frames) != 0 {
				t.Errorf("receiver got %d frames, want 0", len(frames))
			}
		})
	}
}

func TestRouter_TokenPresenceOnly(t *testing.T) {
	// Any non-empty token passes. Verification happened upstream when the
	// token was issued.
	f := setupRouter(t)

	frame := `{"type":"order:status-changed","token":"anything-at-all","orderId":"o","status":"s"}`
	f.router.HandleFrame(f.sender, []byte(frame))
	time.Sleep(20 * time.Millisecond)

	if frames := drain(f.receiver); len(frames) != 1 {
		t.Errorf("receiver got %d frames, want 1", len(frames))
	}
}
