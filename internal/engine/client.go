// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/models"
)

// Client submits jobs to an Engine and matches responses to requests by
// correlation ID. One Client serves any number of concurrent callers; each
// call blocks until its own response arrives or the context ends.
type Client struct {
	engine *Engine
	logger zerolog.Logger
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[string]chan Response
}

// NewClient subscribes to the engine's response stream. The subscription
// lives until Close; ctx bounds its setup and lifetime.
func NewClient(ctx context.Context, e *Engine, logger zerolog.Logger) (*Client, error) {
	ctx, cancel := context.WithCancel(ctx)

	msgs, err := e.Results(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe to results: %w", err)
	}

	c := &Client{
		engine:  e,
		logger:  logger.With().Str("component", "engine-client").Logger(),
		cancel:  cancel,
		pending: make(map[string]chan Response),
	}
	go c.route(msgs)
	return c, nil
}

// Close stops the response subscription. In-flight calls return when their
// contexts end.
func (c *Client) Close() {
	c.cancel()
}

// route delivers each response to the caller waiting on its correlation
// ID. Responses nobody waits for are dropped.
func (c *Client) route(msgs <-chan *message.Message) {
	for msg := range msgs {
		var resp Response
		if err := json.Unmarshal(msg.Payload, &resp); err != nil {
			c.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("malformed response")
			msg.Ack()
			continue
		}
		msg.Ack()

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()

		if ok {
			ch <- resp
		} else {
			c.logger.Debug().Str("job_id", resp.ID).Msg("response with no waiting caller")
		}
	}
}

// Do submits one job and waits for its response. ERROR responses surface as
// a *JobError.
func (c *Client) Do(ctx context.Context, jobType JobType, payload interface{}) (Response, error) {
	req, err := NewRequest(jobType, payload)
	if err != nil {
		return Response{}, err
	}

	ch := make(chan Response, 1)
	c.mu.Lock()
	c.pending[req.ID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	if err := c.engine.Submit(req); err != nil {
		return Response{}, fmt.Errorf("submit %s: %w", jobType, err)
	}

	select {
	case resp := <-ch:
		if resp.Type == ResponseError {
			if resp.Error != nil {
				return resp, resp.Error
			}
			return resp, fmt.Errorf("%s failed", jobType)
		}
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// CalculateRevenue runs the revenue analytics job.
func (c *Client) CalculateRevenue(ctx context.Context, req analytics.RevenueRequest) (*models.RevenueAnalytics, error) {
	var out models.RevenueAnalytics
	if err := c.do(ctx, JobCalculateRevenue, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PredictBookingTrends runs the booking forecast job.
func (c *Client) PredictBookingTrends(ctx context.Context, req analytics.TrendRequest) (*models.BookingForecast, error) {
	var out models.BookingForecast
	if err := c.do(ctx, JobPredictTrends, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeInstructors runs the instructor performance job.
func (c *Client) AnalyzeInstructors(ctx context.Context, req analytics.InstructorRequest) (*models.InstructorAnalysis, error) {
	var out models.InstructorAnalysis
	if err := c.do(ctx, JobAnalyzeInstructors, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CalculateCohortRetention runs the cohort retention job.
func (c *Client) CalculateCohortRetention(ctx context.Context, req analytics.CohortRequest) (*models.RetentionAnalysis, error) {
	var out models.RetentionAnalysis
	if err := c.do(ctx, JobCalculateRetention, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OptimizeSchedule runs the schedule optimization job.
func (c *Client) OptimizeSchedule(ctx context.Context, req analytics.ScheduleRequest) (*models.ScheduleOptimization, error) {
	var out models.ScheduleOptimization
	if err := c.do(ctx, JobOptimizeSchedule, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateReport runs the composite report job.
func (c *Client) GenerateReport(ctx context.Context, req analytics.ReportRequest) (*models.AnalyticsReport, error) {
	var out models.AnalyticsReport
	if err := c.do(ctx, JobGenerateReport, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, jobType JobType, payload, out interface{}) error {
	resp, err := c.Do(ctx, jobType, payload)
	if err != nil {
		return err
	}
	if len(resp.Payload) == 0 {
		return fmt.Errorf("%s returned empty payload", jobType)
	}
	if err := json.Unmarshal(resp.Payload, out); err != nil {
		return fmt.Errorf("decode %s response: %w", jobType, err)
	}
	return nil
}
