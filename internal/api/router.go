// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

// Package api exposes the analytics engine over HTTP. Each analytics
// endpoint accepts a job payload, dispatches it through the engine client,
// and returns the correlated result in a standard response envelope.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/classpulse/classpulse/internal/config"
	"github.com/classpulse/classpulse/internal/engine"
)

// Health checks poll frequently; 1000/min leaves monitoring headroom.
const rateLimitHealthWindow = time.Minute

// Router builds the HTTP routing tree for the analytics API.
type Router struct {
	handler *Handler
	cfg     config.APIConfig
}

// NewRouter creates a Router serving jobs through the given engine client.
func NewRouter(client *engine.Client, eng *engine.Engine, cfg config.Config) *Router {
	return &Router{
		handler: NewHandler(client, eng, cfg.Engine.JobTimeout),
		cfg:     cfg.API,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(RequestIDWithLogging())
	r.Use(RequestLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	// Health endpoints get their own permissive rate limit so monitoring
	// probes never compete with analytics traffic.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(RateLimit(1000, rateLimitHealthWindow, router.cfg.RateLimitDisabled))
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Analytics endpoints: one POST per job type
	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Use(RateLimit(router.cfg.RateLimitReqs, router.cfg.RateLimitWindow, router.cfg.RateLimitDisabled))
		r.Use(PrometheusMetrics())
		r.Use(MaxBodyBytes(router.cfg.MaxBodyBytes))

		r.Post("/revenue", router.handler.Revenue)
		r.Post("/predictions", router.handler.Predictions)
		r.Post("/instructors", router.handler.Instructors)
		r.Post("/cohorts", router.handler.Cohorts)
		r.Post("/schedule", router.handler.Schedule)
		r.Post("/report", router.handler.Report)
	})

	// Observability
	r.Handle("/metrics", promhttp.Handler())

	// Everything else answers in the standard envelope
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).NotFound("no such endpoint")
	})

	return r
}
