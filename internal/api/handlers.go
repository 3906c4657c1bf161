// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/engine"
	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/validation"
)

// Handler holds the dependencies for the analytics HTTP handlers. Every
// analytics endpoint decodes a request payload, dispatches the matching job
// through the engine client, and waits for the correlated response.
type Handler struct {
	client     *engine.Client
	engine     *engine.Engine
	jobTimeout time.Duration
}

// NewHandler creates the handler set. jobTimeout bounds one dispatched job.
func NewHandler(client *engine.Client, eng *engine.Engine, jobTimeout time.Duration) *Handler {
	if jobTimeout <= 0 {
		jobTimeout = 60 * time.Second
	}
	return &Handler{
		client:     client,
		engine:     eng,
		jobTimeout: jobTimeout,
	}
}

// ready reports whether the dispatcher accepts jobs, answering 503 when it
// does not. A job submitted before the dispatcher subscribes would be
// dropped by the in-memory pub/sub and the caller would wait out the full
// job timeout.
func (h *Handler) ready(rw *ResponseWriter) bool {
	select {
	case <-h.engine.Running():
		return true
	default:
		rw.ServiceUnavailable("analytics engine not ready")
		return false
	}
}

// Revenue handles POST /api/v1/analytics/revenue.
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.ready(rw) {
		return
	}

	var req analytics.RevenueRequest
	if !h.decode(rw, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.jobTimeout)
	defer cancel()

	result, err := h.client.CalculateRevenue(ctx, req)
	if err != nil {
		h.respondJobError(rw, r, err)
		return
	}
	rw.Success(result)
}

// Predictions handles POST /api/v1/analytics/predictions.
func (h *Handler) Predictions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.ready(rw) {
		return
	}

	var req analytics.TrendRequest
	if !h.decode(rw, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.jobTimeout)
	defer cancel()

	result, err := h.client.PredictBookingTrends(ctx, req)
	if err != nil {
		h.respondJobError(rw, r, err)
		return
	}
	rw.Success(result)
}

// Instructors handles POST /api/v1/analytics/instructors.
func (h *Handler) Instructors(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.ready(rw) {
		return
	}

	var req analytics.InstructorRequest
	if !h.decode(rw, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.jobTimeout)
	defer cancel()

	result, err := h.client.AnalyzeInstructors(ctx, req)
	if err != nil {
		h.respondJobError(rw, r, err)
		return
	}
	rw.Success(result)
}

// Cohorts handles POST /api/v1/analytics/cohorts.
func (h *Handler) Cohorts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.ready(rw) {
		return
	}

	var req analytics.CohortRequest
	if !h.decode(rw, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.jobTimeout)
	defer cancel()

	result, err := h.client.CalculateCohortRetention(ctx, req)
	if err != nil {
		h.respondJobError(rw, r, err)
		return
	}
	rw.Success(result)
}

// Schedule handles POST /api/v1/analytics/schedule.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.ready(rw) {
		return
	}

	var req analytics.ScheduleRequest
	if !h.decode(rw, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.jobTimeout)
	defer cancel()

	result, err := h.client.OptimizeSchedule(ctx, req)
	if err != nil {
		h.respondJobError(rw, r, err)
		return
	}
	rw.Success(result)
}

// Report handles POST /api/v1/analytics/report, the composite job.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.ready(rw) {
		return
	}

	var req analytics.ReportRequest
	if !h.decode(rw, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.jobTimeout)
	defer cancel()

	result, err := h.client.GenerateReport(ctx, req)
	if err != nil {
		h.respondJobError(rw, r, err)
		return
	}
	rw.Success(result)
}

// HealthLive handles GET /api/v1/health/live. Always healthy while the
// process serves requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. Ready once the dispatcher
// accepts jobs.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	select {
	case <-h.engine.Running():
		rw.Success(map[string]string{"status": "ready"})
	default:
		rw.ServiceUnavailable("analytics engine not ready")
	}
}

// decode unmarshals and validates the request body, writing the error
// response itself on failure.
func (h *Handler) decode(rw *ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
			return false
		}
		rw.BadRequest("invalid JSON body: " + err.Error())
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// respondJobError maps engine client failures to HTTP errors. Payloads are
// validated before submit, so a JobError here is a calculator failure, not
// caller input.
func (h *Handler) respondJobError(rw *ResponseWriter, r *http.Request, err error) {
	var jobErr *engine.JobError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeJobTimeout, "analytics job timed out")
	case errors.As(err, &jobErr):
		logging.Ctx(r.Context()).Error().Err(err).Msg("analytics job failed")
		rw.Error(http.StatusInternalServerError, ErrCodeJobFailed, jobErr.Message)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("analytics dispatch failed")
		rw.InternalError(err.Error())
	}
}
