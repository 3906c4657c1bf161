// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package services

import (
	"context"
)

// AnalyticsEngine matches the engine's Serve method without importing the
// engine package, keeping this package free of domain dependencies.
//
// Satisfied by *engine.Engine.
type AnalyticsEngine interface {
	// Serve runs the job dispatcher until the context is canceled.
	Serve(ctx context.Context) error
}

// EngineService wraps the analytics job dispatcher as a supervised service.
// The supervisor restarts it if it crashes; the dispatcher holds no state
// across jobs, so a restart loses at most the in-flight job.
//
// Example usage:
//
//	eng, _ := engine.New(logger, engine.DefaultConfig())
//	svc := services.NewEngineService(eng)
//	tree.AddEngineService(svc)
type EngineService struct {
	engine AnalyticsEngine
	name   string
}

// NewEngineService creates a new engine service wrapper.
func NewEngineService(engine AnalyticsEngine) *EngineService {
	return &EngineService{
		engine: engine,
		name:   "analytics-engine",
	}
}

// Serve implements suture.Service by delegating to the dispatcher. Returns
// ctx.Err() on normal shutdown.
func (e *EngineService) Serve(ctx context.Context) error {
	return e.engine.Serve(ctx)
}

// String implements fmt.Stringer for suture's log messages.
func (e *EngineService) String() string {
	return e.name
}
