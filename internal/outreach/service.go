package outreach

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-coach/internal/generation"
	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/telemetry"
	"resume-coach/internal/shared/util"
)

const maxFieldChars = 200

// Writer drafts and revises outreach messages.
type Writer interface {
	DraftOutreach(ctx context.Context, in generation.OutreachInput) (generation.OutreachDraft, error)
	RegenerateOutreach(ctx context.Context, in generation.OutreachRevision) (generation.OutreachDraft, error)
}

// ResumeSource resolves an owned résumé to its extracted text.
type ResumeSource interface {
	ResumeMarkdown(ctx context.Context, id, ownerID string) (string, error)
}

// Service contains business logic for outreach messages.
type Service struct {
	Repo    Repo
	Writer  Writer
	Resumes ResumeSource
	Now     func() time.Time
}

// GenerateInput is a request for a new outreach message.
type GenerateInput struct {
	OwnerID        string
	Channel        string
	Tone           string
	JobTitle       string
	CompanyName    string
	RecipientName  string
	JobDescription string
	ResumeID       string
}

// Generate drafts a message for the channel and stores it along with its input snapshot.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (Message, error) {
	channel, ok := generation.ParseChannel(in.Channel)
	if !ok {
		return Message{}, apperr.Validation("Unknown channel")
	}
	tone := generation.ToneProfessional
	if strings.TrimSpace(in.Tone) != "" {
		if tone, ok = generation.ParseTone(in.Tone); !ok {
			return Message{}, apperr.Validation("Unknown tone")
		}
	}
	jobTitle := strings.TrimSpace(in.JobTitle)
	if jobTitle == "" {
		return Message{}, apperr.Validation("jobTitle is required")
	}
	companyName := strings.TrimSpace(in.CompanyName)
	recipientName := strings.TrimSpace(in.RecipientName)
	if util.CharCount(jobTitle) > maxFieldChars || util.CharCount(companyName) > maxFieldChars || util.CharCount(recipientName) > maxFieldChars {
		return Message{}, apperr.Validation("jobTitle, companyName and recipientName must be at most 200 characters")
	}

	var resume string
	if id := strings.TrimSpace(in.ResumeID); id != "" && s.Resumes != nil {
		md, err := s.Resumes.ResumeMarkdown(ctx, id, in.OwnerID)
		if err != nil {
			return Message{}, err
		}
		resume = md
	}
	snapshot := Context{}
	snapshot.JobDescription, _ = util.Truncate(strings.TrimSpace(in.JobDescription), util.MaxTextChars)
	snapshot.ResumeMarkdown, _ = util.Truncate(resume, util.MaxTextChars)

	draft, err := s.Writer.DraftOutreach(ctx, generation.OutreachInput{
		Channel:        channel,
		Tone:           tone,
		JobTitle:       jobTitle,
		CompanyName:    companyName,
		RecipientName:  recipientName,
		JobDescription: snapshot.JobDescription,
		ResumeMarkdown: snapshot.ResumeMarkdown,
	})
	if err != nil {
		return Message{}, err
	}

	now := s.now()
	m := Message{
		ID:            uuid.NewString(),
		OwnerID:       in.OwnerID,
		Channel:       string(channel),
		Tone:          string(tone),
		JobTitle:      jobTitle,
		CompanyName:   companyName,
		RecipientName: recipientName,
		Subject:       draft.Subject,
		Content:       draft.Content,
		Context:       snapshot,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return Message{}, err
	}
	telemetry.Info("outreach.created", map[string]any{
		"outreach_id": m.ID,
		"user_id":     in.OwnerID,
		"channel":     m.Channel,
		"tone":        m.Tone,
	})
	return m, nil
}

// Regenerate revises the stored message from user feedback. Feedback is checked before
// anything is loaded. The write is last-write-wins.
func (s *Service) Regenerate(ctx context.Context, id, ownerID, feedback string) (Message, error) {
	feedback, err := generation.ValidateOutreachFeedback(feedback)
	if err != nil {
		return Message{}, err
	}
	m, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return Message{}, err
	}
	channel, ok := generation.ParseChannel(m.Channel)
	if !ok {
		return Message{}, apperr.Validation("Unknown channel")
	}
	tone, ok := generation.ParseTone(m.Tone)
	if !ok {
		tone = generation.ToneProfessional
	}

	draft, err := s.Writer.RegenerateOutreach(ctx, generation.OutreachRevision{
		OutreachInput: generation.OutreachInput{
			Channel:        channel,
			Tone:           tone,
			JobTitle:       m.JobTitle,
			CompanyName:    m.CompanyName,
			RecipientName:  m.RecipientName,
			JobDescription: m.Context.JobDescription,
			ResumeMarkdown: m.Context.ResumeMarkdown,
		},
		CurrentSubject: m.Subject,
		CurrentContent: m.Content,
		Feedback:       feedback,
	})
	if err != nil {
		return Message{}, err
	}
	at := s.now()
	if err := s.Repo.UpdateGenerated(ctx, id, ownerID, draft.Content, draft.Subject, at); err != nil {
		return Message{}, notFound(err)
	}
	m.Content = draft.Content
	m.Subject = draft.Subject
	m.UpdatedAt = at
	return m, nil
}

// Get returns an owned message.
func (s *Service) Get(ctx context.Context, id, ownerID string) (Message, error) {
	m, err := s.Repo.GetForOwner(ctx, id, ownerID)
	return m, notFound(err)
}

// List returns the owner's messages newest first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Message, error) {
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}

// Delete removes an owned message.
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
		return apperr.NotFound("Outreach message not found")
	}
	return err
}
