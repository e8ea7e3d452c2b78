package outreach

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/generation"
	"resume-coach/internal/llm"
	"resume-coach/internal/shared/server/middleware"
)

type stubGenerator struct {
	text     string
	json     any
	calls    int
	messages []llm.Message
}

func (s *stubGenerator) GenerateText(_ context.Context, messages []llm.Message, _ llm.CallOptions) (string, error) {
	s.calls++
	s.messages = messages
	return s.text, nil
}

func (s *stubGenerator) GenerateJSON(_ context.Context, messages []llm.Message, _ llm.CallOptions) (any, error) {
	s.calls++
	s.messages = messages
	return s.json, nil
}

type fakeResumes struct{ markdown string }

func (f fakeResumes) ResumeMarkdown(context.Context, string, string) (string, error) {
	return f.markdown, nil
}

type fixture struct {
	router    *gin.Engine
	repo      *MemoryRepo
	generator *stubGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{
		repo: NewMemoryRepo(),
		generator: &stubGenerator{
			text: "Hi Grace, I admire the compiler work your team ships and would love to chat about the platform role.",
			json: map[string]any{"subject": "Platform engineer application", "body": "Dear Grace,\n\nI would love to talk about the platform role."},
		},
	}
	svc := &Service{
		Repo:    f.repo,
		Writer:  generation.NewOrchestrator(f.generator),
		Resumes: fakeResumes{markdown: "# Ada Lovelace\nAnalytical engine programmer"},
		Now:     func() time.Time { return time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC) },
	}
	gate := middleware.Gate{Auth: func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	}}
	f.router = gin.New()
	NewHandler(svc, gate).RegisterRoutes(f.router.Group("/api"))
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

func (f *fixture) seed(t *testing.T, owner string) Message {
	t.Helper()
	m := Message{
		ID:        "or-1",
		OwnerID:   owner,
		Channel:   string(generation.ChannelLinkedInDM),
		Tone:      string(generation.ToneFriendly),
		JobTitle:  "Platform Engineer",
		Content:   "Hi Grace, would love to connect about the platform role on your team.",
		Context:   Context{JobDescription: "Build the platform.", ResumeMarkdown: "# Ada"},
		CreatedAt: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
	m.UpdatedAt = m.CreatedAt
	if err := f.repo.Create(context.Background(), m); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return m
}

func TestRegenerateShortFeedbackMakesNoCall(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "user-1")

	resp := f.do(http.MethodPost, "/api/outreach/or-1/regenerate", `{"userFeedback":"short"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Feedback must be 10-500 characters") {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
	if f.generator.calls != 0 {
		t.Fatalf("expected no model call, got %d", f.generator.calls)
	}
}

func TestRegenerateFeedbackCheckedBeforeLookup(t *testing.T) {
	f := newFixture(t)
	resp := f.do(http.MethodPost, "/api/outreach/missing/regenerate", `{"userFeedback":"tiny"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 before the 404 lookup, got %d", resp.Code)
	}
}

func TestRegenerateUsesStoredContext(t *testing.T) {
	f := newFixture(t)
	seeded := f.seed(t, "user-1")

	resp := f.do(http.MethodPost, "/api/outreach/or-1/regenerate", `{"userFeedback":"Mention my compiler experience please"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if f.generator.calls != 1 {
		t.Fatalf("expected one model call, got %d", f.generator.calls)
	}
	var prompt strings.Builder
	for _, m := range f.generator.messages {
		prompt.WriteString(m.Content)
	}
	if !strings.Contains(prompt.String(), "Build the platform.") || !strings.Contains(prompt.String(), seeded.Content) {
		t.Fatalf("expected stored context and current content in prompt")
	}

	stored, _ := f.repo.GetForOwner(context.Background(), "or-1", "user-1")
	if stored.Content != f.generator.text {
		t.Fatalf("content not updated: %q", stored.Content)
	}
	if stored.Context != seeded.Context {
		t.Fatalf("context must not change on regeneration")
	}
	if strings.Contains(resp.Body.String(), `"subject"`) {
		t.Fatalf("non-email channel must not return a subject: %s", resp.Body.String())
	}
}

func TestGenerateEmailChannelReturnsSubject(t *testing.T) {
	f := newFixture(t)
	resp := f.do(http.MethodPost, "/api/outreach/generate",
		`{"channel":"cold-email","tone":"professional","jobTitle":"Platform Engineer","recipientName":"Grace","resumeId":"an-1"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var out struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
		Subject string `json:"subject"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || out.Subject != "Platform engineer application" || out.ID == "" {
		t.Fatalf("unexpected response: %s", resp.Body.String())
	}
	stored, err := f.repo.GetForOwner(context.Background(), out.ID, "user-1")
	if err != nil {
		t.Fatalf("stored message: %v", err)
	}
	if stored.Context.ResumeMarkdown == "" {
		t.Fatalf("expected resume snapshot to be stored")
	}
}

func TestGenerateRejectsUnknownChannel(t *testing.T) {
	f := newFixture(t)
	resp := f.do(http.MethodPost, "/api/outreach/generate", `{"channel":"carrier-pigeon","jobTitle":"Engineer"}`)
	if resp.Code != http.StatusBadRequest || f.generator.calls != 0 {
		t.Fatalf("expected 400 without call, got %d", resp.Code)
	}
}

func TestTextChannelOutOfWindowIs500(t *testing.T) {
	f := newFixture(t)
	f.generator.text = "Hi!"
	resp := f.do(http.MethodPost, "/api/outreach/generate", `{"channel":"twitter-dm","jobTitle":"Engineer"}`)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for a too-short message, got %d", resp.Code)
	}
	if n, _ := f.repo.ListByOwner(context.Background(), "user-1", 10, 0); len(n) != 0 {
		t.Fatalf("nothing should be stored on failure")
	}
}

func TestOutreachIsOwnerScoped(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "user-2")

	if resp := f.do(http.MethodGet, "/api/outreach/or-1", ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if resp := f.do(http.MethodDelete, "/api/outreach/or-1", ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if resp := f.do(http.MethodPost, "/api/outreach/or-1/regenerate", `{"userFeedback":"Make it more concise please"}`); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if f.generator.calls != 0 {
		t.Fatalf("expected no model call for foreign message")
	}
}
