package llm

import (
	"context"
	"errors"
	"strings"
)

// Role tags a prompt message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged prompt entry.
type Message struct {
	Role    Role
	Content string
}

// System and User build messages for the common prompt pair.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message   { return Message{Role: RoleUser, Content: content} }

// Effort is the reasoning level requested from the provider.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// ParseEffort maps free input to an Effort, defaulting to low.
func ParseEffort(raw string) Effort {
	switch Effort(strings.ToLower(strings.TrimSpace(raw))) {
	case EffortMedium:
		return EffortMedium
	case EffortHigh:
		return EffortHigh
	default:
		return EffortLow
	}
}

// Format selects free text or JSON object output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Request is a single completion request.
type Request struct {
	Messages []Message
	Effort   Effort
	Format   Format
}

// Completer performs exactly one remote completion and returns the first choice's content.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

var (
	// ErrNotConfigured is returned by the placeholder client.
	ErrNotConfigured = errors.New("llm provider not configured")
	ErrTimeout       = errors.New("llm call exceeded deadline")
	ErrEmptyResponse = errors.New("llm returned no content")
	ErrMalformedJSON = errors.New("llm returned malformed json")
)

// PlaceholderClient stands in when no provider credential is configured in dev.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}
