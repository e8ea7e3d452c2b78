package telemetry

import (
	"context"
	"errors"
	"net"
	"time"
)

// ExternalCall logs one call to a dependency outside the process. extra may be nil.
func ExternalCall(service string, start time.Time, err error, extra map[string]any) {
	fields := make(map[string]any, len(extra)+4)
	for k, v := range extra {
		fields[k] = v
	}
	fields["service"] = service
	fields["duration_ms"] = time.Since(start).Milliseconds()
	fields["outcome"] = Outcome(err)
	if err != nil {
		fields["error"] = err
		Warn("external.call", fields)
		return
	}
	Info("external.call", fields)
}

// Outcome classifies err as ok, timeout or error.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	return "error"
}
