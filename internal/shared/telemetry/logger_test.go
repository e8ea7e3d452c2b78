package telemetry

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInfoWritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	Info("request.complete", map[string]any{
		"status": 200,
		"path":   "/api/analyze",
		"err":    errors.New("boom"),
	})

	entries := logs.FilterMessage("request.complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["path"] != "/api/analyze" {
		t.Fatalf("unexpected path: %v", ctx["path"])
	}
	if ctx["err"] != "boom" {
		t.Fatalf("expected error rendered as string, got %v", ctx["err"])
	}
}

func TestLevelsFilteredByCore(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	restore := Replace(zap.New(core))
	defer restore()

	Debug("debug", nil)
	Info("info", nil)
	Warn("warn", nil)
	Error("error", nil)

	if logs.Len() != 2 {
		t.Fatalf("expected 2 entries at warn+, got %d", logs.Len())
	}
}
