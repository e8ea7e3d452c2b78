package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{New(KindUnauthorized, "x"), http.StatusUnauthorized},
		{New(KindTooManyRequests, "x"), http.StatusTooManyRequests},
		{Validation("x"), http.StatusBadRequest},
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{New(KindTimeout, "x"), http.StatusGatewayTimeout},
		{New(KindExternalService, "x"), http.StatusBadGateway},
		{New(KindServiceUnavailable, "x"), http.StatusServiceUnavailable},
		{Schema("feedback", "bad", SourceAI), http.StatusInternalServerError},
		{Schema("cover_letter_patch", "bad", SourceClient), http.StatusBadRequest},
		{New(KindContentTooShort, "x"), http.StatusBadRequest},
		{New(KindContentTooLong, "x"), http.StatusBadRequest},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", Conflict("x")), http.StatusConflict},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Fatalf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestFromTransport(t *testing.T) {
	if got := FromTransport(nil, "x"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}

	timeout := FromTransport(fmt.Errorf("post: %w", context.DeadlineExceeded), "fallback")
	if KindOf(timeout) != KindTimeout {
		t.Fatalf("expected timeout kind, got %s", KindOf(timeout))
	}

	ext := FromTransport(errors.New("connection refused"), "Conversion service failed")
	if KindOf(ext) != KindExternalService {
		t.Fatalf("expected external kind, got %s", KindOf(ext))
	}
	if Message(ext, "") != "Conversion service failed" {
		t.Fatalf("expected fallback message, got %q", Message(ext, ""))
	}

	typed := Conflict("stale")
	if FromTransport(typed, "x") != error(typed) {
		t.Fatalf("expected typed error to pass through")
	}
}
