package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/shared/apperr"
)

func serve(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { Fail(c, err) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	var body ErrorResponse
	if decodeErr := json.Unmarshal(rec.Body.Bytes(), &body); decodeErr != nil {
		t.Fatalf("decode: %v", decodeErr)
	}
	return rec, body
}

func TestFailEnvelope(t *testing.T) {
	rec, body := serve(t, apperr.NotFound("Cover letter not found"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body.Success || body.Error != "Cover letter not found" || body.Code != "not_found" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestFailRateLimitedSetsRetryAfter(t *testing.T) {
	err := &apperr.Error{Kind: apperr.KindTooManyRequests, Message: "Too many requests", RetryAfter: 1500 * time.Millisecond}
	rec, body := serve(t, err)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "2" {
		t.Fatalf("expected Retry-After 2, got %q", rec.Header().Get("Retry-After"))
	}
	if body.RetryAfterMs != 1500 {
		t.Fatalf("expected retryAfterMs 1500, got %d", body.RetryAfterMs)
	}
}

func TestFailUntypedIsInternal(t *testing.T) {
	rec, body := serve(t, errors.New("db exploded"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body.Error == "db exploded" {
		t.Fatalf("internal error text must not leak")
	}
}

func TestFailFallbackFlag(t *testing.T) {
	err := &apperr.Error{Kind: apperr.KindServiceUnavailable, Message: "Compiler unavailable", Fallback: true}
	rec, body := serve(t, err)
	if rec.Code != http.StatusServiceUnavailable || !body.Fallback {
		t.Fatalf("expected 503 with fallback, got %d %+v", rec.Code, body)
	}
}
