package openai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resume-coach/internal/llm"
	"resume-coach/internal/shared/telemetry"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements llm.Completer using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client. The HTTP timeout is a backstop for abandoned
// calls; callers enforce their own deadlines through llm.Guard.
func NewClient(apiKey, model, baseURL string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 180 * time.Second,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model           string          `json:"model"`
	Messages        []chatMessage   `json:"messages"`
	Temperature     *float32        `json:"temperature,omitempty"`
	ReasoningEffort string          `json:"reasoning_effort,omitempty"`
	ResponseFormat  *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends one chat completion request and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	reqBody := chatRequest{
		Model:    c.model,
		Messages: make([]chatMessage, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	if req.Format == llm.FormatJSON {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	if isReasoningModel(c.model) {
		if req.Effort != "" {
			reqBody.ReasoningEffort = string(req.Effort)
		}
	} else {
		temp := float32(0.4)
		reqBody.Temperature = &temp
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("openai response parse (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("openai status %d", resp.StatusCode)
	}
	logUsage(c.model, req, parsed.Usage)
	if len(parsed.Choices) == 0 {
		// An empty content slot is reported by the caller as an empty response.
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

func logUsage(model string, req llm.Request, usage *chatUsage) {
	fields := map[string]any{
		"model":       model,
		"format":      string(req.Format),
		"prompt_hash": hashPrompt(req.Messages),
	}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokens
		fields["completion_tokens"] = usage.CompletionTokens
		fields["total_tokens"] = usage.TotalTokens
	}
	telemetry.Info("llm.usage", fields)
}

// isReasoningModel reports models that take reasoning_effort and reject custom temperature.
func isReasoningModel(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	return strings.HasPrefix(m, "gpt-5") || strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4")
}

func hashPrompt(messages []llm.Message) string {
	h := sha256.New()
	for i, m := range messages {
		if i > 0 {
			h.Write([]byte("\n\n"))
		}
		h.Write([]byte(m.Role))
		h.Write([]byte(": "))
		h.Write([]byte(m.Content))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

var _ llm.Completer = (*Client)(nil)
