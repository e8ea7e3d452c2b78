package analyses

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-coach/internal/documents"
	"resume-coach/internal/generation"
	"resume-coach/internal/llm"
	"resume-coach/internal/schemas"
	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/telemetry"
	"resume-coach/internal/shared/util"
)

const (
	maxJobTitleChars    = 200
	maxCompanyNameChars = 200

	// MaxLatexChars bounds editor LaTeX stored on an analysis.
	MaxLatexChars = generation.MaxLatexChars
)

// DocumentProcessor turns an uploaded PDF into markdown and a preview.
type DocumentProcessor interface {
	Process(ctx context.Context, up documents.Upload, opts documents.Options) (documents.Result, error)
}

// Critic produces résumé feedback.
type Critic interface {
	CritiqueResume(ctx context.Context, in generation.CritiqueInput) (schemas.Feedback, error)
}

// Service contains business logic for analyses.
type Service struct {
	Repo     Repo
	Pipeline DocumentProcessor
	Critic   Critic
	Now      func() time.Time
}

// AnalyzeInput is one upload plus the job it is measured against.
type AnalyzeInput struct {
	OwnerID        string
	Upload         documents.Upload
	JobTitle       string
	JobDescription string
	CompanyName    string
	ReasoningLevel string
}

// Analyze extracts the résumé, critiques it and stores the result. Nothing is stored unless
// both steps succeed.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (Analysis, error) {
	jobTitle := strings.TrimSpace(in.JobTitle)
	jobDescription := strings.TrimSpace(in.JobDescription)
	companyName := strings.TrimSpace(in.CompanyName)
	switch {
	case jobTitle == "":
		return Analysis{}, apperr.Validation("jobTitle is required")
	case util.CharCount(jobTitle) > maxJobTitleChars:
		return Analysis{}, apperr.Validation("jobTitle must be at most 200 characters")
	case util.CharCount(jobDescription) < util.MinTextChars:
		return Analysis{}, apperr.Validation("jobDescription must be at least 50 characters")
	case util.CharCount(companyName) > maxCompanyNameChars:
		return Analysis{}, apperr.Validation("companyName must be at most 200 characters")
	}
	jobDescription, _ = util.Truncate(jobDescription, util.MaxTextChars)

	in.Upload.Owner = in.OwnerID
	doc, err := s.Pipeline.Process(ctx, in.Upload, documents.Options{
		MaxBytes:    documents.MaxResumeBytes,
		WithPreview: true,
	})
	if err != nil {
		return Analysis{}, err
	}

	feedback, err := s.Critic.CritiqueResume(ctx, generation.CritiqueInput{
		ResumeMarkdown: doc.Markdown,
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
		CompanyName:    companyName,
		Effort:         llm.ParseEffort(in.ReasoningLevel),
	})
	if err != nil {
		return Analysis{}, err
	}

	now := s.now()
	a := Analysis{
		ID:             uuid.NewString(),
		OwnerID:        in.OwnerID,
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
		CompanyName:    companyName,
		ResumeMarkdown: doc.Markdown,
		Feedback:       feedback,
		PreviewImage:   doc.PreviewImage,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return Analysis{}, err
	}
	telemetry.Info("analysis.created", map[string]any{
		"analysis_id":   a.ID,
		"user_id":       in.OwnerID,
		"overall_score": feedback.OverallScore,
		"has_preview":   a.PreviewImage != "",
		"truncated":     doc.Truncated,
	})
	return a, nil
}

// Get returns an owned analysis.
func (s *Service) Get(ctx context.Context, id, ownerID string) (Analysis, error) {
	a, err := s.Repo.GetForOwner(ctx, id, ownerID)
	return a, notFound(err)
}

// ResumeMarkdown returns the extracted text of an owned analysis, for grounding other generators.
func (s *Service) ResumeMarkdown(ctx context.Context, id, ownerID string) (string, error) {
	a, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return "", err
	}
	return a.ResumeMarkdown, nil
}

// List returns the owner's analyses newest first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Summary, error) {
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}

// SaveLatex stores editor LaTeX on an owned analysis.
func (s *Service) SaveLatex(ctx context.Context, id, ownerID, latex string) (time.Time, error) {
	if strings.TrimSpace(latex) == "" {
		return time.Time{}, apperr.Validation("latex is required")
	}
	if util.CharCount(latex) > MaxLatexChars {
		return time.Time{}, apperr.New(apperr.KindContentTooLong, "The LaTeX document is too large to save.")
	}
	now := s.now()
	return now, notFound(s.Repo.UpdateLatex(ctx, id, ownerID, latex, now))
}

// Delete removes an owned analysis.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	return notFound(s.Repo.Delete(ctx, id, ownerID))
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func notFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Resume not found")
	}
	return err
}
