// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/metrics"
	"github.com/classpulse/classpulse/internal/validation"
)

const (
	jobsTopic    = "analytics.jobs"
	resultsTopic = "analytics.results"

	metaCorrelationID = "correlation_id"
)

// Config holds dispatcher configuration.
type Config struct {
	// OutputBuffer is the per-subscriber channel buffer of the in-memory
	// pub/sub. Default: 64.
	OutputBuffer int64

	// CloseTimeout is how long to wait for the in-flight job when closing.
	// Default: 30s.
	CloseTimeout time.Duration
}

// DefaultConfig returns production defaults for the dispatcher.
func DefaultConfig() Config {
	return Config{
		OutputBuffer: 64,
		CloseTimeout: 30 * time.Second,
	}
}

// Engine is the analytics job dispatcher. Requests published to its jobs
// topic run through the matching calculator one at a time, in arrival
// order, and every request produces exactly one response on the results
// topic: the job's success type, or ERROR. Handler panics are recovered at
// the dispatch boundary, so a poisonous payload cannot take the dispatcher
// down.
//
// The engine implements suture.Service via Serve and holds no state across
// jobs; every result is built fresh from the request payload.
type Engine struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger zerolog.Logger
	config Config

	// runFn executes one decoded job; tests substitute it to exercise the
	// dispatch boundary.
	runFn func(Request) (interface{}, error)
}

// New creates an Engine. Call Serve to start processing jobs.
func New(logger zerolog.Logger, cfg Config) (*Engine, error) {
	if cfg.OutputBuffer == 0 {
		cfg.OutputBuffer = 64
	}
	if cfg.CloseTimeout == 0 {
		cfg.CloseTimeout = 30 * time.Second
	}

	wmLogger := newWatermillLogger(logger)

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.OutputBuffer,
	}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create dispatcher router: %w", err)
	}

	e := &Engine{
		pubsub: pubsub,
		router: router,
		logger: logger.With().Str("component", "engine").Logger(),
		config: cfg,
	}
	e.runFn = e.run

	router.AddHandler(
		"analytics-dispatcher",
		jobsTopic,
		pubsub,
		resultsTopic,
		pubsub,
		e.handle,
	)

	return e, nil
}

// Serve runs the dispatcher until the context is canceled. It implements
// suture.Service.
func (e *Engine) Serve(ctx context.Context) error {
	e.logger.Info().Msg("analytics engine starting")
	defer e.logger.Info().Msg("analytics engine stopped")
	return e.router.Run(ctx)
}

// Running returns a channel that closes once the dispatcher accepts jobs.
// Jobs submitted before that are dropped by the in-memory pub/sub.
func (e *Engine) Running() <-chan struct{} {
	return e.router.Running()
}

// Close stops the dispatcher, waiting up to CloseTimeout for the in-flight
// job.
func (e *Engine) Close() error {
	if err := e.router.Close(); err != nil {
		return fmt.Errorf("close dispatcher router: %w", err)
	}
	return e.pubsub.Close()
}

// Submit publishes one job request to the dispatcher.
func (e *Engine) Submit(req Request) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request %s: %w", req.ID, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), raw)
	msg.Metadata.Set(metaCorrelationID, req.ID)
	return e.pubsub.Publish(jobsTopic, msg)
}

// Results subscribes to the response stream. The subscription lives until
// the context is canceled.
func (e *Engine) Results(ctx context.Context) (<-chan *message.Message, error) {
	return e.pubsub.Subscribe(ctx, resultsTopic)
}

// handle converts one job message into exactly one response message. It
// never returns an error: failures become ERROR responses so the router
// does not retry or drop the job.
func (e *Engine) handle(msg *message.Message) ([]*message.Message, error) {
	resp := e.dispatch(msg)

	raw, err := json.Marshal(resp)
	if err != nil {
		// Response types marshal cleanly; this guards future fields.
		e.logger.Error().Err(err).Str("job_id", resp.ID).Msg("marshal response")
		raw, _ = json.Marshal(Response{
			ID:    resp.ID,
			Type:  ResponseError,
			Error: &JobError{Message: "marshal response: " + err.Error()},
		})
	}

	out := message.NewMessage(watermill.NewUUID(), raw)
	out.Metadata.Set(metaCorrelationID, resp.ID)
	return []*message.Message{out}, nil
}

// dispatch runs one job to completion, recovering panics into ERROR
// responses carrying the stack.
func (e *Engine) dispatch(msg *message.Message) (resp Response) {
	start := time.Now()
	var req Request

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			err := fmt.Errorf("handler panic: %v", r)
			metrics.RecordPanic()
			metrics.RecordJob(jobLabel(req.Type), time.Since(start), err)
			e.logger.Error().
				Str("job_id", req.ID).
				Str("job_type", string(req.Type)).
				Str("stack", stack).
				Msg("recovered handler panic")
			resp = Response{
				ID:    req.ID,
				Type:  ResponseError,
				Error: &JobError{Message: err.Error(), Stack: stack},
			}
		}
	}()

	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		e.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("malformed request envelope")
		return Response{
			ID:    msg.Metadata.Get(metaCorrelationID),
			Type:  ResponseError,
			Error: &JobError{Message: "malformed request envelope: " + err.Error()},
		}
	}

	logger := e.logger.With().
		Str("job_id", req.ID).
		Str("job_type", string(req.Type)).
		Logger()
	logger.Debug().Msg("job received")

	result, err := e.runFn(req)
	metrics.RecordJob(jobLabel(req.Type), time.Since(start), err)
	if err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("job failed")
		return Response{
			ID:    req.ID,
			Type:  ResponseError,
			Error: &JobError{Message: err.Error()},
		}
	}

	raw, err := json.Marshal(result)
	if err != nil {
		logger.Error().Err(err).Msg("marshal job result")
		return Response{
			ID:    req.ID,
			Type:  ResponseError,
			Error: &JobError{Message: "marshal result: " + err.Error()},
		}
	}

	logger.Debug().Dur("duration", time.Since(start)).Msg("job complete")
	return Response{
		ID:      req.ID,
		Type:    req.Type.ResponseType(),
		Payload: raw,
	}
}

// run decodes the payload for the job type and invokes the matching
// calculator. The switch is exhaustive over the closed job type set.
func (e *Engine) run(req Request) (interface{}, error) {
	switch req.Type {
	case JobCalculateRevenue:
		var in analytics.RevenueRequest
		if err := decodePayload(req, &in); err != nil {
			return nil, err
		}
		result, err := analytics.CalculateRevenue(in)
		if err != nil {
			return nil, err
		}
		metrics.RecordSkippedRecords(jobLabel(req.Type), result.SkippedRecords)
		return result, nil

	case JobPredictTrends:
		var in analytics.TrendRequest
		if err := decodePayload(req, &in); err != nil {
			return nil, err
		}
		return analytics.PredictBookingTrends(in)

	case JobAnalyzeInstructors:
		var in analytics.InstructorRequest
		if err := decodePayload(req, &in); err != nil {
			return nil, err
		}
		return analytics.AnalyzeInstructors(in)

	case JobCalculateRetention:
		var in analytics.CohortRequest
		if err := decodePayload(req, &in); err != nil {
			return nil, err
		}
		return analytics.CalculateCohortRetention(in)

	case JobOptimizeSchedule:
		var in analytics.ScheduleRequest
		if err := decodePayload(req, &in); err != nil {
			return nil, err
		}
		return analytics.OptimizeSchedule(in)

	case JobGenerateReport:
		var in analytics.ReportRequest
		if err := decodePayload(req, &in); err != nil {
			return nil, err
		}
		result, err := analytics.GenerateReport(in)
		if err != nil {
			return nil, err
		}
		if result.Revenue != nil {
			metrics.RecordSkippedRecords(jobLabel(req.Type), result.Revenue.SkippedRecords)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("unknown job type %q", req.Type)
	}
}

// decodePayload unmarshals and validates a job payload. An absent payload
// decodes as the zero request.
func decodePayload(req Request, out interface{}) error {
	if len(req.Payload) > 0 {
		if err := json.Unmarshal(req.Payload, out); err != nil {
			return fmt.Errorf("decode %s payload: %w", req.Type, err)
		}
	}
	if verr := validation.ValidateStruct(out); verr != nil {
		return fmt.Errorf("invalid %s payload: %w", req.Type, verr)
	}
	return nil
}

// jobLabel keeps metric cardinality bounded: anything outside the closed
// job type set is counted as "unknown".
func jobLabel(t JobType) string {
	if t.Known() {
		return string(t)
	}
	return "unknown"
}
