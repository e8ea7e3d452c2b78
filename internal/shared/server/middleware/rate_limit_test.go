package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/ratelimit"
)

func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	}
}

func TestGateLimitsPerRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	gate := Gate{
		Auth:    fakeAuth("user-1"),
		Limiter: ratelimit.NewMemoryLimiter(func() time.Time { return now }),
		Rules: map[string]ratelimit.Rule{
			"analyze": {Limit: 1, Window: time.Hour},
			"patch":   {Limit: 3, Window: time.Hour},
		},
	}

	calls := 0
	r := gin.New()
	r.POST("/api/analyze", gate.Protect("analyze", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})...)
	r.PATCH("/api/cover-letter/:id", gate.Protect("patch", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})...)

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPatch, "/api/cover-letter/cl-1", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("patch %d expected 200, got %d", i+1, resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/analyze", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("first analyze expected 200, got %d", resp.Code)
	}
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/analyze", nil))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("second analyze expected 429, got %d", resp.Code)
	}
	if calls != 1 {
		t.Fatalf("limited request must not reach the handler, calls=%d", calls)
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	gate := Gate{
		Auth:    fakeAuth("user-1"),
		Limiter: ratelimit.NewMemoryLimiter(func() time.Time { return now }),
		Rules:   map[string]ratelimit.Rule{"limited": {Limit: 1, Window: time.Second}},
	}

	r := gin.New()
	r.GET("/api/limited", gate.Protect("limited", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})...)

	resp1 := httptest.NewRecorder()
	r.ServeHTTP(resp1, httptest.NewRequest(http.MethodGet, "/api/limited", nil))
	if resp1.Code != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", resp1.Code)
	}

	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, httptest.NewRequest(http.MethodGet, "/api/limited", nil))
	if resp2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp2.Code)
	}
	if resp2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	var payload map[string]any
	if err := json.NewDecoder(resp2.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["success"] != false || payload["code"] != "rate_limited" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, ok := payload["retryAfterMs"]; !ok {
		t.Fatalf("expected retryAfterMs in response")
	}
}

func TestGateAuthRunsBeforeRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := ratelimit.NewMemoryLimiter(nil)
	signer := newSigner(t)
	gate := Gate{
		Auth:    Auth(signer, "rc_session"),
		Limiter: limiter,
		Rules:   map[string]ratelimit.Rule{"wipe": {Limit: 1, Window: time.Hour}},
	}
	r := gin.New()
	r.DELETE("/api/user/wipe", gate.Protect("wipe", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})...)

	// Unauthenticated calls are rejected before consuming quota.
	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/user/wipe", nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.Code)
		}
	}

	token, _ := signer.Sign("user-1", "", "", "")
	req := httptest.NewRequest(http.MethodDelete, "/api/user/wipe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected quota untouched by rejected calls, got %d", resp.Code)
	}
}
