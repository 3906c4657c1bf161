// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

/*
Package engine dispatches analytics jobs to the calculators in
internal/analytics over an in-memory Watermill pub/sub.

A job is a typed request envelope: correlation ID, one of six closed job
types, and a JSON payload. The dispatcher runs jobs strictly one at a time
in arrival order and answers every request with exactly one response on the
results topic, either the job's success type or ERROR. Error responses carry
a structured message, plus the stack when a handler panicked. After any
failure the dispatcher keeps accepting jobs; no retries happen inside the
engine.

Use Client for request/response calls:

	eng, _ := engine.New(logger, engine.DefaultConfig())
	go eng.Serve(ctx)
	<-eng.Running()

	client, _ := engine.NewClient(ctx, eng, logger)
	forecast, err := client.PredictBookingTrends(ctx, analytics.TrendRequest{
	    HistoricalData: history,
	    HorizonDays:    14,
	})

Engine implements suture.Service, so it slots into the supervisor tree like
any other long-running service.
*/
package engine
