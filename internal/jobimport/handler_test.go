package jobimport

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/documents"
	"resume-coach/internal/schemas"
	"resume-coach/internal/shared/server/middleware"
)

type fakeExtractor struct {
	calls  int
	source string
}

func (f *fakeExtractor) ExtractJob(_ context.Context, source string) (schemas.JobData, error) {
	f.calls++
	f.source = source
	return schemas.JobData{CompanyName: "Acme", JobTitle: "Platform Engineer", JobDescription: "Build Go services."}, nil
}

type stubConverter struct{ text string }

func (s stubConverter) Convert(context.Context, string) (string, error) { return s.text, nil }

type fixture struct {
	router    *gin.Engine
	extractor *fakeExtractor
	requests  int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{extractor: &fakeExtractor{}}
	fetcher := &Fetcher{
		Guard:  URLGuard{Resolver: publicResolver()},
		Client: stubClient(http.StatusOK, "text/html", postingHTML, &f.requests),
	}
	svc := &Service{
		Fetcher: fetcher,
		Pipeline: &documents.Pipeline{
			Markdown: stubConverter{text: strings.Repeat("Platform Engineer at Acme. Build Go services. ", 3)},
			TempDir:  t.TempDir(),
		},
		Extractor: f.extractor,
	}
	gate := middleware.Gate{Auth: func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	}}
	f.router = gin.New()
	NewHandler(svc, gate).RegisterRoutes(f.router.Group("/api"))
	return f
}

func (f *fixture) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

func TestImportRejectsLocalhostBeforeFetch(t *testing.T) {
	f := newFixture(t)
	resp := f.postJSON("/api/import-job", `{"url":"http://localhost/x"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if f.requests != 0 || f.extractor.calls != 0 {
		t.Fatalf("expected no fetch and no extraction, got %d/%d", f.requests, f.extractor.calls)
	}
}

func TestImportURLReturnsJobData(t *testing.T) {
	f := newFixture(t)
	resp := f.postJSON("/api/import-job", `{"url":"https://jobs.example.com/posting/42"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var out struct {
		Success bool            `json:"success"`
		Data    schemas.JobData `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || out.Data.JobTitle != "Platform Engineer" {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
	if strings.Contains(f.extractor.source, "trackVisitor") {
		t.Fatalf("script text leaked into extraction input")
	}
}

func TestImportPDFUsesExtractionOnly(t *testing.T) {
	f := newFixture(t)
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="posting.pdf"`)
	h.Set("Content-Type", "application/pdf")
	part, _ := w.CreatePart(h)
	_, _ = part.Write([]byte("%PDF-1.4\n% job posting\n"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import-job-pdf", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if f.extractor.calls != 1 || !strings.Contains(f.extractor.source, "Platform Engineer at Acme") {
		t.Fatalf("expected extraction from converted text, got %q", f.extractor.source)
	}
}

func TestImportPDFRequiresFile(t *testing.T) {
	f := newFixture(t)
	resp := f.postJSON("/api/import-job-pdf", `{}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
