// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

/*
Package websocket implements the live order-broadcast layer: the connection
registry, the heartbeat monitor, the inbound message router, and the
broadcast fan-out.

# Architecture

The Hub owns the registry of connected dashboard clients. Clients register
and unregister through channels serviced by a single supervised goroutine
(RunWithContext), so registry mutations are serialized. Broadcasts are
serialized to JSON exactly once and the resulting bytes are enqueued on each
client's buffered send channel; a client whose buffer is full is evicted
rather than allowed to stall delivery to the rest.

# Heartbeat

A separate supervised loop (RunHeartbeat) pings every client on a fixed
interval using WebSocket control frames. The pong handler marks the client
alive; a client found not-alive at the start of a sweep has missed two
consecutive beats and is closed and unregistered. There are no read
deadlines. The heartbeat is the only liveness mechanism, so an idle but
responsive dashboard stays connected indefinitely.

# Message flow

Inbound frames reach the Router, which enforces the wire contract: frames
must be valid JSON and carry both a type and a token. Recognized events are
normalized, server-timestamped, and fanned out to every connection except
the sender. Errors are replied to the sender only and are never broadcast.

The Hub also accepts pre-encoded payloads through BroadcastRaw, which the
HTTP ingress uses to trigger fan-out from stateless request handlers.
*/
package websocket
