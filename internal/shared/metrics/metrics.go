package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	generationStarted   = newCounterVec("use_case")
	generationFailed    = newCounterVec("use_case", "kind")
	documentPipeline    = newCounterVec("outcome")
	rateLimited         = newCounterVec("route")
	httpRequests        = newCounterVec("code")
	generationDuration  = newHistogram([]float64{500, 1000, 2500, 5000, 10000, 20000, 30000, 60000})
	httpRequestDuration = newHistogram([]float64{5, 25, 100, 250, 1000, 5000, 30000, 120000})
)

// IncGenerationStarted counts a generation call for useCase.
func IncGenerationStarted(useCase string) {
	generationStarted.Inc(useCase)
}

// IncGenerationFailed counts a failed generation call by failure kind.
func IncGenerationFailed(useCase, kind string) {
	generationFailed.Inc(useCase, kind)
}

// ObserveGenerationDuration records a generation call duration.
func ObserveGenerationDuration(d time.Duration) {
	generationDuration.Observe(ms(d))
}

// IncDocumentPipeline counts a document pipeline run by outcome.
func IncDocumentPipeline(outcome string) {
	documentPipeline.Inc(outcome)
}

// IncRateLimited counts a request rejected by the gate.
func IncRateLimited(route string) {
	rateLimited.Inc(route)
}

// ObserveRequest records an HTTP request outcome.
func ObserveRequest(status int, d time.Duration) {
	httpRequests.Inc(strconv.Itoa(status))
	httpRequestDuration.Observe(ms(d))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounterVec(&buf, "generation_started_total", "Generation calls started", generationStarted)
	writeCounterVec(&buf, "generation_failed_total", "Generation calls failed", generationFailed)
	writeHistogram(&buf, "generation_duration_ms", "Generation call duration in milliseconds", generationDuration.Snapshot())
	writeCounterVec(&buf, "document_pipeline_total", "Document pipeline runs", documentPipeline)
	writeCounterVec(&buf, "rate_limited_total", "Requests rejected by rate limiting", rateLimited)
	writeCounterVec(&buf, "http_requests_total", "HTTP requests by status code", httpRequests)
	writeHistogram(&buf, "http_request_duration_ms", "HTTP request duration in milliseconds", httpRequestDuration.Snapshot())
	return buf.String()
}

func ms(d time.Duration) float64 {
	v := float64(d.Microseconds()) / 1000.0
	if v < 0 {
		return 0
	}
	return v
}

type counterVec struct {
	mu     sync.Mutex
	labels []string
	values map[string]uint64
}

func newCounterVec(labels ...string) *counterVec {
	return &counterVec{labels: labels, values: make(map[string]uint64)}
}

func (v *counterVec) Inc(values ...string) {
	var b bytes.Buffer
	for i, name := range v.labels {
		if i > 0 {
			b.WriteByte(',')
		}
		val := ""
		if i < len(values) {
			val = values[i]
		}
		fmt.Fprintf(&b, "%s=%q", name, val)
	}
	v.mu.Lock()
	v.values[b.String()]++
	v.mu.Unlock()
}

func (v *counterVec) snapshot() map[string]uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]uint64, len(v.values))
	for k, n := range v.values {
		out[k] = n
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe stores value in the first bucket whose bound covers it; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounterVec(buf *bytes.Buffer, name, help string, v *counterVec) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	snap := v.snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s} %d\n", name, k, snap[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
