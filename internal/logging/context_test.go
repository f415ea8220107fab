// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGenerateIDs(t *testing.T) {
	t.Parallel()

	c1, c2 := GenerateCorrelationID(), GenerateCorrelationID()
	if len(c1) != 8 {
		t.Errorf("correlation ID length = %d, want 8", len(c1))
	}
	if c1 == c2 {
		t.Error("correlation IDs should be unique")
	}

	r1, r2 := GenerateRequestID(), GenerateRequestID()
	if len(r1) != 36 {
		t.Errorf("request ID length = %d, want 36", len(r1))
	}
	if r1 == r2 {
		t.Error("request IDs should be unique")
	}
}

func TestContextIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if CorrelationIDFromContext(ctx) != "" || RequestIDFromContext(ctx) != "" {
		t.Fatal("empty context should carry no IDs")
	}

	ctx = ContextWithCorrelationID(ctx, "train-01")
	ctx = ContextWithRequestID(ctx, "req-42")
	if got := CorrelationIDFromContext(ctx); got != "train-01" {
		t.Errorf("CorrelationIDFromContext = %q", got)
	}
	if got := RequestIDFromContext(ctx); got != "req-42" {
		t.Errorf("RequestIDFromContext = %q", got)
	}

	fresh := ContextWithNewCorrelationID(context.Background())
	if len(CorrelationIDFromContext(fresh)) != 8 {
		t.Error("ContextWithNewCorrelationID should attach a generated ID")
	}
}

func TestCtx_AddsIDs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithCorrelationID(ctx, "abc12345")
	ctx = ContextWithRequestID(ctx, "req-1")

	Ctx(ctx).Info().Msg("handled")

	out := buf.String()
	for _, want := range []string{`"correlation_id":"abc12345"`, `"request_id":"req-1"`, "handled"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestCtxWith_ExtraFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithRequestID(ctx, "req-9")

	logger := CtxWith(ctx).Str("user_id", "u7").Logger()
	logger.Info().Msg("recommended")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-9"`) || !strings.Contains(out, `"user_id":"u7"`) {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Contains(out, "correlation_id") {
		t.Errorf("absent correlation ID should not be written: %s", out)
	}
}

func TestLoggerFromContext_Fallback(t *testing.T) {
	t.Parallel()

	// Without a stored logger the global one is returned; it must be usable.
	logger := LoggerFromContext(context.Background())
	_ = logger.With()
}
