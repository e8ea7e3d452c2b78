package respond

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/telemetry"
)

// ErrorResponse is the failure envelope returned by every endpoint.
type ErrorResponse struct {
	Success      bool   `json:"success"`
	Error        string `json:"error"`
	Code         string `json:"code,omitempty"`
	Fallback     bool   `json:"fallback,omitempty"`
	RetryAfterMs int64  `json:"retryAfterMs,omitempty"`
	Log          string `json:"log,omitempty"`
}

// Error sends a failure envelope with an explicit status and code.
func Error(c *gin.Context, status int, code, message string) {
	write(c, status, ErrorResponse{Error: message, Code: code}, nil)
}

// Fail maps err through the error taxonomy and sends the matching envelope.
func Fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	body := ErrorResponse{
		Error: apperr.Message(err, "Something went wrong. Please try again."),
		Code:  string(apperr.KindOf(err)),
	}
	if e, ok := apperr.As(err); ok {
		body.Fallback = e.Fallback
		if e.Kind == apperr.KindTooManyRequests {
			body.RetryAfterMs = retryAfterMs(e.RetryAfter)
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(e.RetryAfter)))
		}
	}
	write(c, status, body, err)
}

// WithLog sends a failure envelope carrying a diagnostic log, used for compile failures.
func WithLog(c *gin.Context, status int, code, message, log string) {
	write(c, status, ErrorResponse{Error: message, Code: code, Log: log}, nil)
}

func write(c *gin.Context, status int, body ErrorResponse, cause error) {
	body.Success = false
	fields := map[string]any{
		"status":     status,
		"code":       body.Code,
		"message":    body.Error,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if cause != nil {
		fields["error"] = cause.Error()
		var e *apperr.Error
		if errors.As(cause, &e) && e.Shape != "" {
			fields["shape"] = e.Shape
			fields["source"] = string(e.Source)
		}
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}
	c.AbortWithStatusJSON(status, body)
}

func retryAfterMs(d time.Duration) int64 {
	ms := d.Milliseconds()
	if ms <= 0 {
		return 1000
	}
	return ms
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(float64(retryAfterMs(d)) / 1000.0))
	if secs <= 0 {
		return 1
	}
	return secs
}
