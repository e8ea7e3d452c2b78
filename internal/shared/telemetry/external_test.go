package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOutcome(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("post: %w", context.DeadlineExceeded), "timeout"},
		{errors.New("connection refused"), "error"},
	}
	for _, tc := range cases {
		if got := Outcome(tc.err); got != tc.want {
			t.Fatalf("Outcome(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestExternalCallLogsFailuresAtWarn(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	ExternalCall("markdown", time.Now(), errors.New("boom"), map[string]any{"host": "example.com"})

	entries := logs.FilterMessage("external.call").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != zap.WarnLevel {
		t.Fatalf("expected warn level, got %s", entries[0].Level)
	}
	ctx := entries[0].ContextMap()
	if ctx["service"] != "markdown" || ctx["outcome"] != "error" || ctx["host"] != "example.com" {
		t.Fatalf("unexpected fields: %v", ctx)
	}
}
