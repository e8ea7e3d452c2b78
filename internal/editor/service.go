package editor

import (
	"context"
	"strings"
	"time"

	"resume-coach/internal/analyses"
	"resume-coach/internal/generation"
	"resume-coach/internal/schemas"
	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/telemetry"
	"resume-coach/internal/shared/util"
)

// Compiler renders LaTeX to PDF.
type Compiler interface {
	Compile(ctx context.Context, latex string) ([]byte, error)
}

// ResumeStore reads analyses and stores edited LaTeX on them.
type ResumeStore interface {
	Get(ctx context.Context, id, ownerID string) (analyses.Analysis, error)
	SaveLatex(ctx context.Context, id, ownerID, latex string) (time.Time, error)
}

// Improver applies line improvements to a LaTeX document.
type Improver interface {
	ImproveLatex(ctx context.Context, in generation.LatexInput) (schemas.LatexImprovement, error)
}

// Service backs the LaTeX editor.
type Service struct {
	Compiler Compiler
	Resumes  ResumeStore
	Improver Improver
}

// Compile checks the document bounds and forwards it to the compiler.
func (s *Service) Compile(ctx context.Context, ownerID, latex string) ([]byte, error) {
	if strings.TrimSpace(latex) == "" {
		return nil, apperr.Validation("latex is required")
	}
	if util.CharCount(latex) > generation.MaxLatexChars {
		return nil, apperr.New(apperr.KindContentTooLong, "LaTeX document must be at most 200000 characters")
	}
	start := time.Now()
	pdf, err := s.Compiler.Compile(ctx, latex)
	fields := map[string]any{
		"user_id":     ownerID,
		"duration_ms": time.Since(start).Milliseconds(),
		"ok":          err == nil,
	}
	if err != nil {
		fields["error"] = err
	}
	telemetry.Info("editor.compile", fields)
	return pdf, err
}

// Improvement is the outcome of applying stored line improvements.
type Improvement struct {
	ImprovedLatex    string    `json:"improvedLatex"`
	ChangesApplied   int       `json:"changesApplied"`
	SectionsModified []string  `json:"sectionsModified"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Improve applies the analysis' line improvements to its saved LaTeX and stores the result.
func (s *Service) Improve(ctx context.Context, ownerID, resumeID string) (Improvement, error) {
	resumeID = strings.TrimSpace(resumeID)
	if resumeID == "" {
		return Improvement{}, apperr.Validation("resumeId is required")
	}
	a, err := s.Resumes.Get(ctx, resumeID, ownerID)
	if err != nil {
		return Improvement{}, err
	}
	if strings.TrimSpace(a.LatexContent) == "" {
		return Improvement{}, apperr.Validation("Save a LaTeX version of this resume before improving it")
	}
	out, err := s.Improver.ImproveLatex(ctx, generation.LatexInput{
		Latex:        a.LatexContent,
		Improvements: a.Feedback.LineImprovements,
	})
	if err != nil {
		return Improvement{}, err
	}
	at, err := s.Resumes.SaveLatex(ctx, resumeID, ownerID, out.ImprovedLatex)
	if err != nil {
		return Improvement{}, err
	}
	return Improvement{
		ImprovedLatex:    out.ImprovedLatex,
		ChangesApplied:   out.ChangesApplied,
		SectionsModified: out.SectionsModified,
		UpdatedAt:        at,
	}, nil
}
