// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

// Package services wraps the hub, heartbeat monitor, and HTTP server as
// suture services.
package services

import (
	"context"
)

// ContextHub matches *websocket.Hub's RunWithContext method. The interface
// keeps this package free of a websocket import and lets tests mock the hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// HubService wraps the hub's registry/fan-out loop as a supervised service.
//
// Example usage:
//
//	hub := websocket.NewHub(cfg)
//	tree.AddMessagingService(services.NewHubService(hub))
type HubService struct {
	hub  ContextHub
	name string
}

// NewHubService creates a new hub service wrapper.
func NewHubService(hub ContextHub) *HubService {
	return &HubService{
		hub:  hub,
		name: "websocket-hub",
	}
}

// Serve implements suture.Service. It delegates to hub.RunWithContext,
// which returns ctx.Err() on normal shutdown after closing all clients.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
func (s *HubService) String() string {
	return s.name
}
