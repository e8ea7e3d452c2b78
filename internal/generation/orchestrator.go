package generation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"resume-coach/internal/llm"
	"resume-coach/internal/schemas"
	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/metrics"
	"resume-coach/internal/shared/telemetry"
	"resume-coach/internal/shared/util"
	"resume-coach/internal/templates"
)

// Use case labels for logs and metrics.
const (
	UseCaseCritique           = "critique"
	UseCaseExtractJob         = "extract_job"
	UseCaseCoverLetter        = "cover_letter"
	UseCaseCoverLetterSection = "cover_letter_section"
	UseCaseOutreach           = "outreach"
	UseCaseOutreachRevision   = "outreach_revision"
	UseCaseLatex              = "latex_improve"
)

const (
	critiqueTimeout    = 60 * time.Second
	extractJobTimeout  = 30 * time.Second
	coverLetterTimeout = 45 * time.Second
	latexTimeout       = 60 * time.Second

	// MaxLatexChars bounds the document sent for improvement.
	MaxLatexChars = 200000

	minOutreachChars = 20
	maxOutreachChars = 2000
)

// Generator is the guarded model surface. *llm.Guard satisfies it.
type Generator interface {
	GenerateText(ctx context.Context, messages []llm.Message, opts llm.CallOptions) (string, error)
	GenerateJSON(ctx context.Context, messages []llm.Message, opts llm.CallOptions) (any, error)
}

// Orchestrator runs each generation use case: prompt, guarded call, shape check.
type Orchestrator struct {
	LLM Generator
}

func NewOrchestrator(g Generator) *Orchestrator {
	return &Orchestrator{LLM: g}
}

// CritiqueInput is the context for a résumé critique.
type CritiqueInput struct {
	ResumeMarkdown string
	JobTitle       string
	JobDescription string
	CompanyName    string
	Effort         llm.Effort
}

// CritiqueResume scores a résumé against a job. Résumés at or over the text bound are
// rejected before any model call.
func (o *Orchestrator) CritiqueResume(ctx context.Context, in CritiqueInput) (fb schemas.Feedback, err error) {
	resume, _ := util.Truncate(strings.TrimSpace(in.ResumeMarkdown), util.MaxTextChars)
	switch n := util.CharCount(resume); {
	case n >= util.MaxTextChars:
		return fb, apperr.New(apperr.KindContentTooLong, "Your resume is too detailed to analyze. Please shorten it and try again.")
	case n < util.MinTextChars:
		return fb, apperr.New(apperr.KindContentTooShort, "We could not read enough text from your resume. Please upload a text-based PDF.")
	}
	jobDescription, _ := util.Truncate(strings.TrimSpace(in.JobDescription), util.MaxTextChars)

	defer o.track(UseCaseCritique)(&err)

	raw, err := o.LLM.GenerateJSON(ctx, critiqueMessages(in, resume, jobDescription), llm.CallOptions{
		Timeout: critiqueTimeout,
		Effort:  in.Effort,
	})
	if err != nil {
		return fb, err
	}
	res := schemas.Validate[schemas.Feedback](schemas.ShapeFeedback, raw)
	if !res.OK() {
		return fb, res.Err(apperr.SourceAI)
	}
	return res.Value, nil
}

// ExtractJob turns raw posting text into structured job data.
func (o *Orchestrator) ExtractJob(ctx context.Context, source string) (job schemas.JobData, err error) {
	text, _ := util.Truncate(strings.TrimSpace(source), util.MaxTextChars)
	if util.CharCount(text) < util.MinTextChars {
		return job, apperr.New(apperr.KindContentTooShort, "Not enough job posting text to extract. Paste the full description instead.")
	}

	defer o.track(UseCaseExtractJob)(&err)

	raw, err := o.LLM.GenerateJSON(ctx, extractJobMessages(text), llm.CallOptions{Timeout: extractJobTimeout})
	if err != nil {
		return job, err
	}
	res := schemas.Validate[schemas.JobData](schemas.ShapeJobData, raw)
	if !res.OK() {
		return job, res.Err(apperr.SourceAI)
	}
	return res.Value, nil
}

// CoverLetterInput is the context for drafting a cover letter.
type CoverLetterInput struct {
	Template       templates.Template
	JobTitle       string
	CompanyName    string
	JobDescription string
	ResumeMarkdown string
	Header         schemas.CoverLetterHeader
	Date           string
}

// DraftCoverLetter generates the letter body and assembles it with the caller's header and date.
func (o *Orchestrator) DraftCoverLetter(ctx context.Context, in CoverLetterInput) (content schemas.CoverLetterContent, err error) {
	in.JobDescription, _ = util.Truncate(strings.TrimSpace(in.JobDescription), util.MaxTextChars)
	in.ResumeMarkdown, _ = util.Truncate(strings.TrimSpace(in.ResumeMarkdown), util.MaxTextChars)

	defer o.track(UseCaseCoverLetter)(&err)

	raw, err := o.LLM.GenerateJSON(ctx, coverLetterMessages(in), llm.CallOptions{Timeout: coverLetterTimeout})
	if err != nil {
		return content, err
	}
	body := schemas.Validate[schemas.CoverLetterBody](schemas.ShapeCoverLetterBody, raw)
	if !body.OK() {
		return content, body.Err(apperr.SourceAI)
	}
	content = schemas.CoverLetterContent{
		Header:         in.Header,
		Date:           in.Date,
		RecipientName:  body.Value.RecipientName,
		Opening:        body.Value.Opening,
		BodyParagraphs: body.Value.BodyParagraphs,
		Closing:        body.Value.Closing,
		Signature:      body.Value.Signature,
	}
	checked := schemas.Validate[schemas.CoverLetterContent](schemas.ShapeCoverLetterContent, content)
	if !checked.OK() {
		return schemas.CoverLetterContent{}, checked.Err(apperr.SourceClient)
	}
	return checked.Value, nil
}

// Cover letter sections that can be rewritten on their own.
const (
	SectionOpening = "opening"
	SectionBody    = "body"
	SectionClosing = "closing"
)

// SectionInput is the context for rewriting one cover letter section.
type SectionInput struct {
	Section        string
	Current        schemas.CoverLetterContent
	Template       templates.Template
	JobTitle       string
	CompanyName    string
	JobDescription string
	Feedback       string
}

// RewriteCoverLetterSection regenerates one section and returns the full merged content.
func (o *Orchestrator) RewriteCoverLetterSection(ctx context.Context, in SectionInput) (content schemas.CoverLetterContent, err error) {
	switch in.Section {
	case SectionOpening, SectionBody, SectionClosing:
	default:
		return content, apperr.Validation("section must be one of opening, body, closing")
	}
	in.JobDescription, _ = util.Truncate(strings.TrimSpace(in.JobDescription), util.MaxTextChars)

	defer o.track(UseCaseCoverLetterSection)(&err)

	raw, err := o.LLM.GenerateJSON(ctx, sectionMessages(in), llm.CallOptions{})
	if err != nil {
		return content, err
	}
	res := schemas.Validate[schemas.CoverLetterSection](schemas.ShapeCoverLetterSection, raw)
	if !res.OK() {
		return content, res.Err(apperr.SourceAI)
	}

	content = in.Current
	content.BodyParagraphs = append([]string(nil), in.Current.BodyParagraphs...)
	switch in.Section {
	case SectionOpening, SectionClosing:
		text := strings.TrimSpace(res.Value.Text)
		if text == "" {
			return schemas.CoverLetterContent{}, apperr.Schema(string(schemas.ShapeCoverLetterSection), "text is required for "+in.Section, apperr.SourceAI)
		}
		if in.Section == SectionOpening {
			content.Opening = text
		} else {
			content.Closing = text
		}
	case SectionBody:
		if len(res.Value.BodyParagraphs) == 0 {
			return schemas.CoverLetterContent{}, apperr.Schema(string(schemas.ShapeCoverLetterSection), "bodyParagraphs is required for body", apperr.SourceAI)
		}
		content.BodyParagraphs = res.Value.BodyParagraphs
	}

	checked := schemas.Validate[schemas.CoverLetterContent](schemas.ShapeCoverLetterContent, content)
	if !checked.OK() {
		return schemas.CoverLetterContent{}, checked.Err(apperr.SourceAI)
	}
	return checked.Value, nil
}

// OutreachInput is the context for an outreach message.
type OutreachInput struct {
	Channel        Channel
	Tone           Tone
	JobTitle       string
	CompanyName    string
	RecipientName  string
	JobDescription string
	ResumeMarkdown string
}

// OutreachRevision is an existing message plus the user's feedback.
type OutreachRevision struct {
	OutreachInput
	CurrentSubject string
	CurrentContent string
	Feedback       string
}

// OutreachDraft is a generated message. Subject is empty for non-email channels.
type OutreachDraft struct {
	Subject string
	Content string
}

// ValidateOutreachFeedback returns the trimmed feedback or a validation error.
func ValidateOutreachFeedback(feedback string) (string, error) {
	res := schemas.Validate[string](schemas.ShapeOutreachFeedback, feedback)
	if !res.OK() {
		return "", apperr.Validation("Feedback must be 10-500 characters")
	}
	return res.Value, nil
}

// DraftOutreach writes a new outreach message for the channel.
func (o *Orchestrator) DraftOutreach(ctx context.Context, in OutreachInput) (draft OutreachDraft, err error) {
	in.JobDescription, _ = util.Truncate(strings.TrimSpace(in.JobDescription), util.MaxTextChars)
	in.ResumeMarkdown, _ = util.Truncate(strings.TrimSpace(in.ResumeMarkdown), util.MaxTextChars)

	defer o.track(UseCaseOutreach)(&err)
	return o.writeOutreach(ctx, in.Channel, outreachMessages(in))
}

// RegenerateOutreach revises a message according to feedback.
func (o *Orchestrator) RegenerateOutreach(ctx context.Context, in OutreachRevision) (draft OutreachDraft, err error) {
	feedback, err := ValidateOutreachFeedback(in.Feedback)
	if err != nil {
		return draft, err
	}
	in.Feedback = feedback
	in.JobDescription, _ = util.Truncate(strings.TrimSpace(in.JobDescription), util.MaxTextChars)
	in.ResumeMarkdown, _ = util.Truncate(strings.TrimSpace(in.ResumeMarkdown), util.MaxTextChars)

	defer o.track(UseCaseOutreachRevision)(&err)
	return o.writeOutreach(ctx, in.Channel, outreachRevisionMessages(in))
}

func (o *Orchestrator) writeOutreach(ctx context.Context, channel Channel, messages []llm.Message) (OutreachDraft, error) {
	if channel.IsEmailLike() {
		raw, err := o.LLM.GenerateJSON(ctx, messages, llm.CallOptions{})
		if err != nil {
			return OutreachDraft{}, err
		}
		res := schemas.Validate[schemas.OutreachEmail](schemas.ShapeOutreachEmail, raw)
		if !res.OK() {
			return OutreachDraft{}, res.Err(apperr.SourceAI)
		}
		return OutreachDraft{Subject: res.Value.Subject, Content: res.Value.Body}, nil
	}

	text, err := o.LLM.GenerateText(ctx, messages, llm.CallOptions{})
	if err != nil {
		return OutreachDraft{}, err
	}
	text = cleanMessage(text)
	if n := utf8.RuneCountInString(text); n < minOutreachChars || n > maxOutreachChars {
		return OutreachDraft{}, apperr.Schema("outreach_message",
			fmt.Sprintf("message must be %d-%d characters, got %d", minOutreachChars, maxOutreachChars, n), apperr.SourceAI)
	}
	return OutreachDraft{Content: text}, nil
}

// cleanMessage strips fences and a pair of wrapping quotes models sometimes add.
func cleanMessage(s string) string {
	s = llm.StripCodeFence(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// LatexInput is a LaTeX document and the improvements to apply to it.
type LatexInput struct {
	Latex        string
	Improvements []schemas.LineImprovement
}

// ImproveLatex applies line improvements to a LaTeX résumé.
func (o *Orchestrator) ImproveLatex(ctx context.Context, in LatexInput) (out schemas.LatexImprovement, err error) {
	latex := strings.TrimSpace(in.Latex)
	if latex == "" {
		return out, apperr.Validation("latex is required")
	}
	if util.CharCount(latex) > MaxLatexChars {
		return out, apperr.New(apperr.KindContentTooLong, "The LaTeX document is too large to improve.")
	}
	groups := GroupImprovements(in.Improvements)
	if len(groups) == 0 {
		return out, apperr.Validation("No line improvements to apply")
	}

	defer o.track(UseCaseLatex)(&err)

	raw, err := o.LLM.GenerateJSON(ctx, latexMessages(latex, groups), llm.CallOptions{
		Timeout: latexTimeout,
		Effort:  llm.EffortMedium,
	})
	if err != nil {
		return out, err
	}
	res := schemas.Validate[schemas.LatexImprovement](schemas.ShapeLatexImprovement, raw)
	if !res.OK() {
		return out, res.Err(apperr.SourceAI)
	}
	return res.Value, nil
}

// track records the start of a use case and returns a func that records its outcome.
func (o *Orchestrator) track(useCase string) func(*error) {
	start := time.Now()
	metrics.IncGenerationStarted(useCase)
	return func(errp *error) {
		elapsed := time.Since(start)
		metrics.ObserveGenerationDuration(elapsed)
		fields := map[string]any{
			"use_case":    useCase,
			"duration_ms": elapsed.Milliseconds(),
			"outcome":     "ok",
		}
		if errp != nil && *errp != nil {
			kind := apperr.KindOf(*errp)
			metrics.IncGenerationFailed(useCase, string(kind))
			fields["outcome"] = string(kind)
			fields["error"] = (*errp).Error()
			telemetry.Warn("generation.complete", fields)
			return
		}
		telemetry.Info("generation.complete", fields)
	}
}
