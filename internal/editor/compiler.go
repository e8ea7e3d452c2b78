package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/telemetry"
)

const (
	DefaultCompileTimeout = 15 * time.Second
	maxPDFBytes           = 20 << 20
	maxLogBytes           = 64 << 10
)

// CompileError is a document the compile service rejected. Log is the compiler output.
type CompileError struct {
	Status int
	Log    string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("latex compile failed with status %d", e.Status)
}

// HTTPCompiler proxies LaTeX documents to a remote compile service.
type HTTPCompiler struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration
}

// NewHTTPCompiler returns a compiler for the service at baseURL.
func NewHTTPCompiler(baseURL string, timeout time.Duration) *HTTPCompiler {
	if timeout <= 0 {
		timeout = DefaultCompileTimeout
	}
	return &HTTPCompiler{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{},
		Timeout: timeout,
	}
}

// Compile returns the rendered PDF. Rejections by the service come back as *CompileError;
// timeouts and outages are ServiceUnavailable with Fallback set so the client can render locally.
func (c *HTTPCompiler) Compile(ctx context.Context, latex string) (_ []byte, err error) {
	defer func(start time.Time) { telemetry.ExternalCall("latex", start, err, nil) }(time.Now())
	if c == nil || c.BaseURL == "" {
		return nil, unavailable(errors.New("compile service not configured"))
	}
	payload, err := json.Marshal(map[string]string{"latex": latex})
	if err != nil {
		return nil, err
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCompileTimeout
	}
	// A client disconnect must not abort a compile already in flight.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/compile", bytes.NewReader(payload))
	if err != nil {
		return nil, unavailable(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, unavailable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
		if mediaType != "application/pdf" {
			return nil, unavailable(fmt.Errorf("unexpected content type %q", mediaType))
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes+1))
		if err != nil {
			return nil, unavailable(err)
		}
		if len(body) > maxPDFBytes {
			return nil, unavailable(errors.New("compiled pdf too large"))
		}
		return body, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxLogBytes))
		return nil, &CompileError{Status: resp.StatusCode, Log: compileLog(body)}
	default:
		return nil, unavailable(fmt.Errorf("compile service returned %d", resp.StatusCode))
	}
}

func unavailable(err error) error {
	return &apperr.Error{
		Kind:     apperr.KindServiceUnavailable,
		Message:  "LaTeX compilation is unavailable right now",
		Err:      err,
		Fallback: true,
	}
}

// compileLog accepts either a JSON body with a log or error field, or plain text.
func compileLog(body []byte) string {
	var parsed struct {
		Log   string `json:"log"`
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Log != "" {
			return parsed.Log
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return strings.TrimSpace(string(body))
}
