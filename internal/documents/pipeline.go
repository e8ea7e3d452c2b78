package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/metrics"
	"resume-coach/internal/shared/telemetry"
	"resume-coach/internal/shared/util"
)

const (
	MimePDF = "application/pdf"

	MaxResumeBytes int64 = 20 << 20
	MaxJobPDFBytes int64 = 10 << 20

	// MaxPreviewChars caps the encoded preview. Larger images are dropped, never cut.
	MaxPreviewChars = 5000000

	DefaultMarkdownTimeout = 120 * time.Second
	DefaultPreviewTimeout  = 60 * time.Second
)

var pdfMagic = []byte("%PDF-")

// Upload is one received file. Size is the size the client declared.
type Upload struct {
	Owner       string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Options controls a single Process run.
type Options struct {
	MaxBytes    int64
	WithPreview bool
}

// Result holds the derived artifacts. PreviewImage is empty when no preview was produced.
type Result struct {
	Markdown     string
	Truncated    bool
	PreviewImage string
}

// MarkdownConverter turns the PDF at path into markdown text.
type MarkdownConverter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// Rasterizer renders the first page of the PDF at path as an encoded image.
type Rasterizer interface {
	Render(ctx context.Context, path string) (string, error)
}

// HealthChecker is implemented by converters that can report availability cheaply.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Pipeline turns uploaded PDFs into markdown and an optional preview image.
type Pipeline struct {
	Markdown        MarkdownConverter
	Preview         Rasterizer
	TempDir         string
	MarkdownTimeout time.Duration
	PreviewTimeout  time.Duration
}

// Process validates the upload, spools it to a private temp file and runs both conversions
// concurrently. The temp file is removed before Process returns on every path.
func (p *Pipeline) Process(ctx context.Context, up Upload, opts Options) (res Result, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(apperr.KindOf(err))
		}
		metrics.IncDocumentPipeline(outcome)
		telemetry.Info("document.pipeline", map[string]any{
			"file":        displayName(up.FileName),
			"size":        up.Size,
			"preview":     res.PreviewImage != "",
			"truncated":   res.Truncated,
			"outcome":     outcome,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}()

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = MaxResumeBytes
	}
	body, err := checkUpload(up, maxBytes)
	if err != nil {
		return Result{}, err
	}
	if p.Markdown == nil {
		return Result{}, apperr.New(apperr.KindServiceUnavailable, "PDF conversion is not configured.")
	}
	// Conversions outlive a disconnected client and stop only at their own deadlines.
	detached := context.WithoutCancel(ctx)
	if hc, ok := p.Markdown.(HealthChecker); ok {
		if err := hc.Health(detached); err != nil {
			return Result{}, apperr.Wrap(apperr.KindServiceUnavailable,
				"PDF conversion service is unavailable. Please try again later.", err)
		}
	}

	path, err := p.spool(up.Owner, body, maxBytes)
	if path != "" {
		defer removeTemp(path)
	}
	if err != nil {
		return Result{}, err
	}

	var (
		g        errgroup.Group
		markdown string
		preview  string
	)
	g.Go(func() error {
		mctx, cancel := context.WithTimeout(detached, durationOr(p.MarkdownTimeout, DefaultMarkdownTimeout))
		defer cancel()
		out, err := p.Markdown.Convert(mctx, path)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(mctx.Err(), context.DeadlineExceeded) {
				return apperr.Wrap(apperr.KindTimeout, "PDF conversion timed out. Please try a smaller file.", err)
			}
			return apperr.FromTransport(err, "Failed to convert the PDF. Please try again.")
		}
		markdown = out
		return nil
	})
	if opts.WithPreview && p.Preview != nil {
		g.Go(func() error {
			preview = p.renderPreview(detached, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	text, truncated := util.Truncate(strings.TrimSpace(markdown), util.MaxTextChars)
	if util.CharCount(text) < util.MinTextChars {
		return Result{}, apperr.New(apperr.KindContentTooShort,
			"We could not extract enough text from this PDF. Please upload a text-based PDF.")
	}
	return Result{Markdown: text, Truncated: truncated, PreviewImage: preview}, nil
}

// renderPreview never fails: any error or oversize image yields no preview.
func (p *Pipeline) renderPreview(ctx context.Context, path string) string {
	pctx, cancel := context.WithTimeout(ctx, durationOr(p.PreviewTimeout, DefaultPreviewTimeout))
	defer cancel()
	img, err := p.Preview.Render(pctx, path)
	if err != nil {
		telemetry.Warn("document.preview_failed", map[string]any{"error": err})
		return ""
	}
	if len(img) > MaxPreviewChars {
		telemetry.Warn("document.preview_dropped", map[string]any{"chars": len(img), "max": MaxPreviewChars})
		return ""
	}
	return img
}

// checkUpload validates type and declared size and sniffs the PDF header without touching disk.
func checkUpload(up Upload, maxBytes int64) (io.Reader, error) {
	if up.Body == nil || up.Size == 0 {
		return nil, apperr.Validation("A PDF file is required")
	}
	if up.Size > maxBytes {
		return nil, apperr.Validation(fmt.Sprintf("File is too large (max %dMB)", maxBytes>>20))
	}
	mediaType, _, err := mime.ParseMediaType(up.ContentType)
	if err != nil || mediaType != MimePDF {
		return nil, apperr.Validation("Only PDF files are supported")
	}
	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(up.Body, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return nil, apperr.Validation("Only PDF files are supported")
	}
	return io.MultiReader(bytes.NewReader(head), up.Body), nil
}

// spool writes body to a new private file. The returned path is set whenever a file was
// created, even on error, so the caller can remove it.
func (p *Pipeline) spool(owner string, body io.Reader, maxBytes int64) (string, error) {
	dir := p.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	name := util.HashIdentity(owner)[:16] + "-" + uuid.NewString() + ".pdf"
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	n, copyErr := io.Copy(f, io.LimitReader(body, maxBytes+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		return path, apperr.Wrap(apperr.KindValidation, "Failed to read the uploaded file", copyErr)
	case closeErr != nil:
		return path, fmt.Errorf("close temp file: %w", closeErr)
	case n > maxBytes:
		return path, apperr.Validation(fmt.Sprintf("File is too large (max %dMB)", maxBytes>>20))
	}
	return path, nil
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		telemetry.Error("document.temp_cleanup_failed", map[string]any{"path": path, "error": err})
	}
}

func displayName(name string) string {
	clean, err := util.SanitizeFileName(filepath.Base(name))
	if err != nil {
		return ""
	}
	return clean
}

func durationOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
