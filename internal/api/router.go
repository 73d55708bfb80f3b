// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dinehall/orderhub/internal/config"
	"github.com/dinehall/orderhub/internal/middleware"
)

// Router assembles the HTTP surface: the WebSocket upgrade path, the
// broadcast ingress, health endpoints, and Prometheus exposition.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router from the handler and service configuration.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	mwConfig := DefaultChiMiddlewareConfig()
	if cfg != nil {
		mwConfig.CORSAllowedOrigins = cfg.Security.CORSOrigins
		mwConfig.RateLimitRequests = cfg.Security.RateLimitReqs
		mwConfig.RateLimitWindow = cfg.Security.RateLimitWindow
		mwConfig.RateLimitDisabled = cfg.Security.RateLimitDisabled
	}

	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// Setup configures all HTTP routes.
//
// Any path or method outside the routes below answers 404. The ingress
// contract requires this even for wrong-method requests on known paths,
// so Chi's default 405 handler is replaced.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(http.NotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		http.NotFound(w, req)
	})

	// Dedicated WebSocket upgrade path. No rate limit: a dashboard
	// reconnect storm after a deploy must not lock clients out.
	r.Get("/ws", router.handler.WebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Post("/broadcast", router.handler.Broadcast)
		r.Get("/health/live", router.handler.HealthLive)
		r.Get("/health/ready", router.handler.HealthReady)
	})

	// Prometheus exposition
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
