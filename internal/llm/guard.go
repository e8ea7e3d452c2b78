package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/telemetry"
)

// DefaultTimeout bounds a single generation call when the caller sets none.
const DefaultTimeout = 25 * time.Second

// Guard races one completion against a deadline. A call that loses the race is
// abandoned, not cancelled: it keeps running on a detached context and its result is dropped.
type Guard struct {
	Client  Completer
	Timeout time.Duration
}

// CallOptions overrides per-call settings.
type CallOptions struct {
	Timeout time.Duration
	Effort  Effort
}

func NewGuard(client Completer, timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Guard{Client: client, Timeout: timeout}
}

// GenerateText returns the trimmed text of the first choice.
func (g *Guard) GenerateText(ctx context.Context, messages []Message, opts CallOptions) (string, error) {
	return g.call(ctx, Request{Messages: messages, Effort: effortOrDefault(opts.Effort), Format: FormatText}, opts.Timeout)
}

// GenerateJSON returns the first choice parsed as JSON.
func (g *Guard) GenerateJSON(ctx context.Context, messages []Message, opts CallOptions) (any, error) {
	content, err := g.call(ctx, Request{Messages: messages, Effort: effortOrDefault(opts.Effort), Format: FormatJSON}, opts.Timeout)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &out); err != nil {
		return nil, apperr.Wrap(apperr.KindExternalService,
			"The AI returned an unreadable response. Please try again.",
			fmt.Errorf("%w: %v", ErrMalformedJSON, err))
	}
	return out, nil
}

type outcome struct {
	content string
	err     error
}

func (g *Guard) call(ctx context.Context, req Request, timeout time.Duration) (string, error) {
	if g == nil || g.Client == nil {
		return "", apperr.Wrap(apperr.KindServiceUnavailable, "AI service is not configured.", ErrNotConfigured)
	}
	if timeout <= 0 {
		timeout = g.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Buffered so the goroutine can always deliver and exit after the caller gave up.
	done := make(chan outcome, 1)
	detached := context.WithoutCancel(ctx)
	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("llm call panic: %v", r)}
			}
		}()
		content, err := g.Client.Complete(detached, req)
		done <- outcome{content: content, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		logCall(req, start, out.err)
		if out.err != nil {
			return "", apperr.FromTransport(out.err, "The AI service failed to respond. Please try again.")
		}
		content := strings.TrimSpace(out.content)
		if content == "" {
			return "", apperr.Wrap(apperr.KindExternalService, "The AI returned an empty response. Please try again.", ErrEmptyResponse)
		}
		return content, nil
	case <-timer.C:
		logCall(req, start, ErrTimeout)
		return "", apperr.Wrap(apperr.KindTimeout, "The AI took too long to respond. Please try again.",
			fmt.Errorf("%w after %s", ErrTimeout, timeout))
	}
}

// StripCodeFence removes a Markdown code fence wrapped around a payload.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the info string, e.g. "json".
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(strings.TrimSpace(s), "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func effortOrDefault(e Effort) Effort {
	if e == "" {
		return EffortLow
	}
	return e
}

func logCall(req Request, start time.Time, err error) {
	if errors.Is(err, ErrTimeout) {
		err = fmt.Errorf("%w: %w", ErrTimeout, context.DeadlineExceeded)
	}
	telemetry.ExternalCall("llm", start, err, map[string]any{
		"format": string(req.Format),
		"effort": string(req.Effort),
	})
}
