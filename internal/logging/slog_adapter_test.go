// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestSlogLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(NewSlogHandlerWithLogger(zerolog.New(buf)))
}

func TestSlogHandlerLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func(l *slog.Logger)
		want string
	}{
		{"debug", func(l *slog.Logger) { l.Debug("msg") }, `"level":"debug"`},
		{"info", func(l *slog.Logger) { l.Info("msg") }, `"level":"info"`},
		{"warn", func(l *slog.Logger) { l.Warn("msg") }, `"level":"warn"`},
		{"error", func(l *slog.Logger) { l.Error("msg") }, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newTestSlogLogger(&buf))
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q missing %q", buf.String(), tt.want)
			}
		})
	}
}

func TestSlogHandlerAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestSlogLogger(&buf)

	logger.Info("typed attrs",
		slog.String("service", "engine"),
		slog.Int("restarts", 2),
		slog.Bool("healthy", true),
		slog.Duration("uptime", 3*time.Second),
	)

	out := buf.String()
	for _, want := range []string{
		`"service":"engine"`,
		`"restarts":2`,
		`"healthy":true`,
		`"uptime":3000`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestSlogHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestSlogLogger(&buf).With(slog.String("supervisor", "root"))

	logger.Info("service started")

	if !strings.Contains(buf.String(), `"supervisor":"root"`) {
		t.Errorf("pre-configured attr missing: %q", buf.String())
	}
}

func TestSlogHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestSlogLogger(&buf).WithGroup("suture")

	logger.Info("event", slog.String("name", "engine"))

	if !strings.Contains(buf.String(), `"suture.name":"engine"`) {
		t.Errorf("group prefix missing: %q", buf.String())
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	h := NewSlogHandlerWithLogger(zerolog.New(nil).Level(zerolog.WarnLevel))

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestNewSlogLoggerUsesGlobal(t *testing.T) {
	var buf bytes.Buffer
	original := Logger()
	defer SetLogger(original)
	SetLogger(zerolog.New(&buf))

	NewSlogLogger().Info("bridged")

	if !strings.Contains(buf.String(), "bridged") {
		t.Errorf("global logger not used: %q", buf.String())
	}
}
