package coverletters

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-coach/internal/generation"
	"resume-coach/internal/schemas"
	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/telemetry"
	"resume-coach/internal/shared/util"
	"resume-coach/internal/templates"
)

const dateLayout = "January 2, 2006"

// Writer drafts and rewrites letters.
type Writer interface {
	DraftCoverLetter(ctx context.Context, in generation.CoverLetterInput) (schemas.CoverLetterContent, error)
	RewriteCoverLetterSection(ctx context.Context, in generation.SectionInput) (schemas.CoverLetterContent, error)
}

// ResumeSource resolves an owned résumé to its extracted text.
type ResumeSource interface {
	ResumeMarkdown(ctx context.Context, id, ownerID string) (string, error)
}

// Service contains business logic for cover letters.
type Service struct {
	Repo    Repo
	Writer  Writer
	Resumes ResumeSource
	Now     func() time.Time
}

// GenerateInput is a request for a new letter.
type GenerateInput struct {
	OwnerID        string
	TemplateID     string
	JobTitle       string
	CompanyName    string
	JobDescription string
	ResumeID       string
	Header         json.RawMessage
}

// Generate drafts a letter and stores it. The template and header are checked before any
// generation call.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (CoverLetter, error) {
	tmpl, ok := templates.Lookup(strings.TrimSpace(in.TemplateID))
	if !ok {
		return CoverLetter{}, apperr.Validation("Unknown template")
	}
	jobTitle := strings.TrimSpace(in.JobTitle)
	if jobTitle == "" {
		return CoverLetter{}, apperr.Validation("jobTitle is required")
	}
	if len(in.Header) == 0 {
		return CoverLetter{}, apperr.Validation("header is required")
	}
	header := schemas.Validate[schemas.CoverLetterHeader](schemas.ShapeCoverLetterHeader, []byte(in.Header))
	if !header.OK() {
		return CoverLetter{}, header.Err(apperr.SourceClient)
	}

	var resume string
	resumeID := strings.TrimSpace(in.ResumeID)
	if resumeID != "" && s.Resumes != nil {
		md, err := s.Resumes.ResumeMarkdown(ctx, resumeID, in.OwnerID)
		if err != nil {
			return CoverLetter{}, err
		}
		resume = md
	}
	jobDescription, _ := util.Truncate(strings.TrimSpace(in.JobDescription), util.MaxTextChars)

	now := s.now()
	content, err := s.Writer.DraftCoverLetter(ctx, generation.CoverLetterInput{
		Template:       tmpl,
		JobTitle:       jobTitle,
		CompanyName:    strings.TrimSpace(in.CompanyName),
		JobDescription: jobDescription,
		ResumeMarkdown: resume,
		Header:         header.Value,
		Date:           now.Format(dateLayout),
	})
	if err != nil {
		return CoverLetter{}, err
	}

	letter := CoverLetter{
		ID:             uuid.NewString(),
		OwnerID:        in.OwnerID,
		TemplateID:     tmpl.ID,
		JobTitle:       jobTitle,
		CompanyName:    strings.TrimSpace(in.CompanyName),
		JobDescription: jobDescription,
		Content:        content,
		ResumeID:       resumeID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.Create(ctx, letter); err != nil {
		return CoverLetter{}, err
	}
	telemetry.Info("cover_letter.created", map[string]any{
		"cover_letter_id": letter.ID,
		"user_id":         in.OwnerID,
		"template_id":     tmpl.ID,
		"grounded":        resume != "",
	})
	return letter, nil
}

// Regenerate rewrites one section and stores the merged letter. The write is last-write-wins:
// a PATCH that lands while the model runs is overwritten.
func (s *Service) Regenerate(ctx context.Context, id, ownerID, section, feedback string) (CoverLetter, error) {
	section = strings.ToLower(strings.TrimSpace(section))
	switch section {
	case generation.SectionOpening, generation.SectionBody, generation.SectionClosing:
	default:
		return CoverLetter{}, apperr.Validation("section must be one of opening, body, closing")
	}
	feedback = strings.TrimSpace(feedback)
	if util.CharCount(feedback) > 500 {
		return CoverLetter{}, apperr.Validation("feedback must be at most 500 characters")
	}

	letter, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return CoverLetter{}, err
	}
	content, err := s.Writer.RewriteCoverLetterSection(ctx, generation.SectionInput{
		Section:        section,
		Current:        letter.Content,
		Template:       templates.LookupOrDefault(letter.TemplateID),
		JobTitle:       letter.JobTitle,
		CompanyName:    letter.CompanyName,
		JobDescription: letter.JobDescription,
		Feedback:       feedback,
	})
	if err != nil {
		return CoverLetter{}, err
	}
	at := s.now()
	if err := s.Repo.ReplaceContent(ctx, id, ownerID, content, at); err != nil {
		return CoverLetter{}, notFound(err)
	}
	letter.Content = content
	letter.UpdatedAt = at
	return letter, nil
}

// Patch applies a partial content update if the caller still holds the current updatedAt.
func (s *Service) Patch(ctx context.Context, id, ownerID string, raw json.RawMessage, expected time.Time) (time.Time, error) {
	if len(raw) == 0 {
		return time.Time{}, apperr.Validation("content is required")
	}
	patch := schemas.Validate[schemas.CoverLetterPatch](schemas.ShapeCoverLetterPatch, []byte(raw))
	if !patch.OK() {
		return time.Time{}, patch.Err(apperr.SourceClient)
	}
	letter, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return time.Time{}, err
	}
	merged := schemas.Validate[schemas.CoverLetterContent](schemas.ShapeCoverLetterContent, Merge(letter.Content, patch.Value))
	if !merged.OK() {
		return time.Time{}, merged.Err(apperr.SourceClient)
	}

	expected = expected.UTC().Truncate(time.Microsecond)
	at := s.now()
	if !at.After(expected) {
		at = expected.Add(time.Microsecond)
	}
	err = s.Repo.UpdateContent(ctx, id, ownerID, merged.Value, expected, at)
	switch {
	case errors.Is(err, ErrConflict):
		return time.Time{}, apperr.Conflict("This cover letter was changed elsewhere. Reload and try again.")
	case err != nil:
		return time.Time{}, notFound(err)
	}
	return at, nil
}

// Get returns an owned letter.
func (s *Service) Get(ctx context.Context, id, ownerID string) (CoverLetter, error) {
	l, err := s.Repo.GetForOwner(ctx, id, ownerID)
	return l, notFound(err)
}

// List returns the owner's letters newest first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]CoverLetter, error) {
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}

// Delete removes an owned letter.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	return notFound(s.Repo.Delete(ctx, id, ownerID))
}

// now is truncated to the storage precision so a returned updatedAt compares equal on the next patch.
func (s *Service) now() time.Time {
	t := time.Now()
	if s.Now != nil {
		t = s.Now()
	}
	return t.UTC().Truncate(time.Microsecond)
}

func notFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Cover letter not found")
	}
	return err
}
