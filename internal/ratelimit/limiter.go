package ratelimit

import (
	"context"
	"time"
)

// Rule is a quota of Limit requests per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Enabled reports whether the rule limits anything.
func (r Rule) Enabled() bool {
	return r.Limit > 0 && r.Window > 0
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter counts requests keyed by route and identity.
type Limiter interface {
	Allow(ctx context.Context, route, identity string, rule Rule) (Decision, error)
	// Reset drops every counter owned by identity except those of the keep routes.
	Reset(ctx context.Context, identity string, keep ...string) error
}

// Key is the composite counter key.
func Key(route, identity string) string {
	return route + "|" + identity
}

// Route names used as the first half of every counter key.
const (
	RouteAnalyze               = "analyze"
	RouteImportJob             = "import-job"
	RouteImportJobPDF          = "import-job-pdf"
	RouteCoverLetterGenerate   = "cover-letter-generate"
	RouteCoverLetterRegenerate = "cover-letter-regenerate"
	RouteCoverLetterPatch      = "cover-letter-patch"
	RouteOutreachGenerate      = "outreach-generate"
	RouteOutreachRegenerate    = "outreach-regenerate"
	RouteEditorCompile         = "editor-compile"
	RouteEditorImprove         = "editor-improve"
	RouteLatexSave             = "latex-save"
	RouteDelete                = "delete"
	RouteWipe                  = "wipe"
)

// DefaultRules are the per-route quotas applied when no override is configured.
func DefaultRules() map[string]Rule {
	hour := time.Hour
	return map[string]Rule{
		RouteAnalyze:               {Limit: 5, Window: hour},
		RouteImportJob:             {Limit: 20, Window: hour},
		RouteImportJobPDF:          {Limit: 10, Window: hour},
		RouteCoverLetterGenerate:   {Limit: 20, Window: hour},
		RouteCoverLetterRegenerate: {Limit: 30, Window: hour},
		RouteCoverLetterPatch:      {Limit: 120, Window: hour},
		RouteOutreachGenerate:      {Limit: 20, Window: hour},
		RouteOutreachRegenerate:    {Limit: 30, Window: hour},
		RouteEditorCompile:         {Limit: 60, Window: hour},
		RouteEditorImprove:         {Limit: 10, Window: hour},
		RouteLatexSave:             {Limit: 120, Window: hour},
		RouteDelete:                {Limit: 60, Window: hour},
		RouteWipe:                  {Limit: 3, Window: hour},
	}
}
