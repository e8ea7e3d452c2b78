package jobimport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/telemetry"
)

const (
	DefaultFetchTimeout = 15 * time.Second
	MaxPageBytes        = 2 << 20
	maxRedirects        = 5
	userAgent           = "ResumeCoachBot/1.0 (+job posting import)"
)

// Fetcher downloads a job posting page and reduces it to readable text.
type Fetcher struct {
	Guard    URLGuard
	Client   *http.Client
	Timeout  time.Duration
	MaxBytes int64
}

// NewFetcher builds a Fetcher whose client re-checks every redirect and refuses to dial
// internal addresses.
func NewFetcher(guard URLGuard) *Fetcher {
	f := &Fetcher{Guard: guard, Timeout: DefaultFetchTimeout, MaxBytes: MaxPageBytes}
	dialer := &net.Dialer{Timeout: 5 * time.Second, Control: dialControl}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	f.Client = &http.Client{
		Transport:     transport,
		CheckRedirect: f.checkRedirect,
	}
	return f
}

func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("too many redirects")
	}
	if _, err := f.Guard.Check(req.Context(), req.URL.String()); err != nil {
		return err
	}
	return nil
}

// Fetch validates raw, downloads it and returns the visible text of the page.
func (f *Fetcher) Fetch(ctx context.Context, raw string) (_ string, err error) {
	u, err := f.Guard.Check(ctx, raw)
	if err != nil {
		return "", err
	}
	defer func(start time.Time) {
		telemetry.ExternalCall("job_page", start, err, map[string]any{"host": u.Hostname()})
	}(time.Now())

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	maxBytes := f.MaxBytes
	if maxBytes <= 0 {
		maxBytes = MaxPageBytes
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", apperr.Validation("A valid job posting URL is required")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html, text/plain;q=0.9, */*;q=0.1")

	resp, err := client.Do(req)
	if err != nil {
		var typed *apperr.Error
		if errors.As(err, &typed) {
			return "", typed
		}
		return "", apperr.FromTransport(err, "Could not fetch the job posting")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperr.New(apperr.KindExternalService, fmt.Sprintf("Could not fetch the job posting (status %d)", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return "", apperr.FromTransport(err, "Could not fetch the job posting")
	}
	if int64(len(body)) > maxBytes {
		return "", apperr.New(apperr.KindContentTooLong, "The job posting page is too large to import")
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		return collapseLines(string(body)), nil
	}
	text, err := HTMLToText(bytes.NewReader(body))
	if err != nil {
		return "", apperr.Wrap(apperr.KindExternalService, "Could not read the job posting page", err)
	}
	return text, nil
}

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"footer":   true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"head":     true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "tr": true, "table": true, "header": true, "main": true,
}

// HTMLToText returns the readable text of an HTML document, one block per line.
func HTMLToText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteByte('\n')
		}
	}
	walk(doc)
	return collapseLines(b.String()), nil
}

func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
