package documents

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestHTTPConverter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/convert":
			file, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "missing file", http.StatusBadRequest)
				return
			}
			raw, _ := io.ReadAll(file)
			if !strings.HasPrefix(string(raw), "%PDF-") {
				http.Error(w, "not pdf", http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"markdown":"# Jane Doe\n\nEngineer"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewHTTPConverter(srv.URL + "/")
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	md, err := c.Convert(context.Background(), writePDF(t))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.HasPrefix(md, "# Jane Doe") {
		t.Fatalf("unexpected markdown %q", md)
	}
}

func TestHTTPConverterErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPConverter(srv.URL)
	if err := c.Health(context.Background()); err == nil {
		t.Fatalf("expected health error")
	}
	if _, err := c.Convert(context.Background(), writePDF(t)); err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestHTTPRasterizer(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/render" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}))
	defer srv.Close()

	img, err := NewHTTPRasterizer(srv.URL).Render(context.Background(), writePDF(t))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	if img != want {
		t.Fatalf("got %q, want %q", img, want)
	}
}

func TestNoopRasterizer(t *testing.T) {
	img, err := NoopRasterizer{}.Render(context.Background(), "ignored")
	if err != nil || img != "" {
		t.Fatalf("expected empty preview, got %q %v", img, err)
	}
}
