// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package engine

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// JobType identifies one analytics operation. The set is closed: the
// dispatcher matches exhaustively and answers anything else with an ERROR
// response.
type JobType string

// Job types accepted by the dispatcher.
const (
	JobCalculateRevenue   JobType = "CALCULATE_REVENUE_ANALYTICS"
	JobPredictTrends      JobType = "PREDICT_BOOKING_TRENDS"
	JobAnalyzeInstructors JobType = "ANALYZE_INSTRUCTOR_PERFORMANCE"
	JobCalculateRetention JobType = "CALCULATE_COHORT_RETENTION"
	JobOptimizeSchedule   JobType = "OPTIMIZE_CLASS_SCHEDULE"
	JobGenerateReport     JobType = "GENERATE_REPORT"
)

// Response types emitted by the dispatcher.
const (
	ResponseRevenueComplete     = "REVENUE_ANALYTICS_COMPLETE"
	ResponsePredictionsComplete = "BOOKING_PREDICTIONS_COMPLETE"
	ResponseInstructorsComplete = "INSTRUCTOR_ANALYSIS_COMPLETE"
	ResponseRetentionComplete   = "COHORT_RETENTION_COMPLETE"
	ResponseScheduleComplete    = "SCHEDULE_OPTIMIZATION_COMPLETE"
	ResponseReportGenerated     = "REPORT_GENERATED"
	ResponseError               = "ERROR"
)

// Known reports whether t is one of the dispatchable job types.
func (t JobType) Known() bool {
	switch t {
	case JobCalculateRevenue, JobPredictTrends, JobAnalyzeInstructors,
		JobCalculateRetention, JobOptimizeSchedule, JobGenerateReport:
		return true
	default:
		return false
	}
}

// ResponseType returns the success response type paired with this job type.
func (t JobType) ResponseType() string {
	switch t {
	case JobCalculateRevenue:
		return ResponseRevenueComplete
	case JobPredictTrends:
		return ResponsePredictionsComplete
	case JobAnalyzeInstructors:
		return ResponseInstructorsComplete
	case JobCalculateRetention:
		return ResponseRetentionComplete
	case JobOptimizeSchedule:
		return ResponseScheduleComplete
	case JobGenerateReport:
		return ResponseReportGenerated
	default:
		return ResponseError
	}
}

// Request is the wire envelope for one job. ID correlates the request with
// its response; callers that omit it get one assigned by NewRequest.
type Request struct {
	ID      string          `json:"id"`
	Type    JobType         `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewRequest builds a Request with a fresh correlation ID, marshaling the
// payload struct into the envelope.
func NewRequest(jobType JobType, payload interface{}) (Request, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("marshal %s payload: %w", jobType, err)
	}
	return Request{
		ID:      uuid.New().String(),
		Type:    jobType,
		Payload: raw,
	}, nil
}

// Response is the wire envelope for one job result. Type is the job's
// success response type, or ERROR with the Error field populated.
type Response struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *JobError       `json:"error,omitempty"`
}

// JobError is the structured error carried by ERROR responses. Stack is
// populated only for recovered panics.
type JobError struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Error implements the error interface.
func (e *JobError) Error() string {
	return e.Message
}
