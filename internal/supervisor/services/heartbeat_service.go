// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

package services

import (
	"context"
)

// HeartbeatRunner matches *websocket.Hub's RunHeartbeat method.
type HeartbeatRunner interface {
	RunHeartbeat(ctx context.Context) error
}

// HeartbeatService wraps the heartbeat monitor as a supervised service.
// It is supervised separately from the hub loop so a failure in the sweep
// never stalls registration or fan-out, and the supervisor restarts the
// monitor without dropping any connections.
type HeartbeatService struct {
	runner HeartbeatRunner
	name   string
}

// NewHeartbeatService creates a new heartbeat service wrapper.
func NewHeartbeatService(runner HeartbeatRunner) *HeartbeatService {
	return &HeartbeatService{
		runner: runner,
		name:   "heartbeat-monitor",
	}
}

// Serve implements suture.Service.
func (s *HeartbeatService) Serve(ctx context.Context) error {
	return s.runner.RunHeartbeat(ctx)
}

// String implements fmt.Stringer for logging.
func (s *HeartbeatService) String() string {
	return s.name
}
