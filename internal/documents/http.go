package documents

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-coach/internal/shared/telemetry"
)

const healthTimeout = 3 * time.Second

// HTTPConverter calls the markdown conversion service.
type HTTPConverter struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPConverter(baseURL string) *HTTPConverter {
	return &HTTPConverter{BaseURL: strings.TrimRight(baseURL, "/"), Client: &http.Client{}}
}

// Health fails fast when the service is down so uploads do not wait for the full conversion deadline.
func (c *HTTPConverter) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("markdown service health: status %d", resp.StatusCode)
	}
	return nil
}

// Convert posts the file to /convert and returns the markdown field of the reply.
func (c *HTTPConverter) Convert(ctx context.Context, path string) (_ string, err error) {
	defer func(start time.Time) { telemetry.ExternalCall("markdown", start, err, nil) }(time.Now())
	resp, err := postFile(ctx, c.client(), c.BaseURL+"/convert", path)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("markdown service: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var out struct {
		Markdown string `json:"markdown"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("markdown service: decode: %w", err)
	}
	return out.Markdown, nil
}

func (c *HTTPConverter) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

// HTTPRasterizer calls the preview service, which answers with PNG bytes.
type HTTPRasterizer struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPRasterizer(baseURL string) *HTTPRasterizer {
	return &HTTPRasterizer{BaseURL: strings.TrimRight(baseURL, "/"), Client: &http.Client{}}
}

// Render returns the preview as a data URL.
func (r *HTTPRasterizer) Render(ctx context.Context, path string) (_ string, err error) {
	defer func(start time.Time) { telemetry.ExternalCall("preview", start, err, nil) }(time.Now())
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := postFile(ctx, client, r.BaseURL+"/render", path)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("preview service: status %d", resp.StatusCode)
	}
	// Read one byte past the cap so oversize images are detectable without buffering them whole.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, int64(MaxPreviewChars/4*3)+1))
	if err != nil {
		return "", fmt.Errorf("preview service: read: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("preview service: empty image")
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// NoopRasterizer is used when no preview service is configured.
type NoopRasterizer struct{}

func (NoopRasterizer) Render(context.Context, string) (string, error) { return "", nil }

func postFile(ctx context.Context, client *http.Client, url, path string) (*http.Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return client.Do(req)
}
