package health

import (
	"context"
	"time"
)

const checkTimeout = 3 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Checker reports whether a downstream service is reachable.
type Checker interface {
	Health(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB       Pinger
	Markdown Checker
}

// NewService constructs a new health service. Either dependency may be nil.
func NewService(db Pinger, markdown Checker) *Service {
	return &Service{DB: db, Markdown: markdown}
}

// Report is the health payload. OK is false only when a configured dependency is down.
type Report struct {
	OK         bool              `json:"ok"`
	Components map[string]string `json:"components"`
}

// Status checks each configured dependency with a short deadline.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true, Components: map[string]string{}}
	if s == nil {
		return report
	}
	if s.DB != nil {
		report.record("database", check(ctx, s.DB.PingContext))
	} else {
		report.Components["database"] = "memory"
	}
	if s.Markdown != nil {
		report.record("markdown", check(ctx, s.Markdown.Health))
	} else {
		report.Components["markdown"] = "local"
	}
	return report
}

func (r *Report) record(name string, err error) {
	if err != nil {
		r.OK = false
		r.Components[name] = "down"
		return
	}
	r.Components[name] = "up"
}

func check(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return fn(ctx)
}
