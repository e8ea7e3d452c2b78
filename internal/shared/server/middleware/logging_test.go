package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"resume-coach/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	restore := telemetry.Replace(zap.New(core))
	defer restore()

	router := gin.New()
	router.Use(RequestID(), fakeAuth("user-1"), Logging())
	router.GET("/api/cover-letter/:id", func(c *gin.Context) {
		c.Set(CoverLetterIDKey, "cl-1")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/cover-letter/cl-1", nil)
	req.Header.Set("X-Request-Id", "req-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	entries := logs.FilterMessage("request.complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log, got %d", len(entries))
	}
	payload := entries[0].ContextMap()
	for _, key := range []string{"request_id", "user_id", "cover_letter_id", "duration_ms", "status", "route"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["request_id"] != "req-123" {
		t.Fatalf("unexpected request_id: %v", payload["request_id"])
	}
	if payload["user_id"] != "user-1" {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
	if payload["route"] != "/api/cover-letter/:id" {
		t.Fatalf("unexpected route: %v", payload["route"])
	}
}
