// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

// Package models provides data structures for the ClassPulse analytics engine.
//
// The package is split into two families:
//
//   - Input records (BookingRecord, UserRecord, InstructorRecord,
//     ReviewRecord, ScheduledClass): immutable snapshots supplied by the
//     caller's data-fetch layer. The engine never mutates them.
//
//   - Result objects (RevenueAnalytics, BookingForecast,
//     InstructorAnalysis, RetentionAnalysis, ScheduleOptimization,
//     AnalyticsReport): value objects created fresh per job and owned
//     exclusively by the caller that receives them.
//
// No type in this package holds a reference back into engine state; the
// engine is safe to terminate and restart without data loss to callers.
package models
