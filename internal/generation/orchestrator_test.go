package generation

import (
	"context"
	"strings"
	"testing"

	"resume-coach/internal/llm"
	"resume-coach/internal/schemas"
	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/templates"
)

type fakeGenerator struct {
	json     any
	text     string
	err      error
	calls    int
	messages []llm.Message
	opts     llm.CallOptions
}

func (f *fakeGenerator) GenerateText(_ context.Context, msgs []llm.Message, opts llm.CallOptions) (string, error) {
	f.calls++
	f.messages, f.opts = msgs, opts
	return f.text, f.err
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, msgs []llm.Message, opts llm.CallOptions) (any, error) {
	f.calls++
	f.messages, f.opts = msgs, opts
	return f.json, f.err
}

func scored(explained bool) map[string]any {
	tip := map[string]any{"type": "good", "tip": "Clear layout"}
	if explained {
		tip["explanation"] = "Sections are easy to scan."
	}
	return map[string]any{"score": 80, "tips": []any{tip}}
}

func validFeedback() map[string]any {
	return map[string]any{
		"overallScore": 78,
		"ATS":          scored(false),
		"toneAndStyle": scored(true),
		"content":      scored(true),
		"structure":    scored(true),
		"skills":       scored(true),
		"lineImprovements": []any{map[string]any{
			"section":      "Work Experience",
			"sectionTitle": "Experience",
			"original":     "Worked on APIs",
			"suggested":    "Built 12 REST APIs serving 2M requests/day",
			"reason":       "Quantifies impact",
			"priority":     "high",
			"category":     "quantify",
		}},
	}
}

func TestCritiqueRejectsOversizedResumeWithoutCall(t *testing.T) {
	gen := &fakeGenerator{}
	o := NewOrchestrator(gen)

	_, err := o.CritiqueResume(context.Background(), CritiqueInput{
		ResumeMarkdown: strings.Repeat("a", 20000),
		JobTitle:       "Engineer",
		JobDescription: "Build things",
	})
	if !apperr.Is(err, apperr.KindContentTooLong) {
		t.Fatalf("expected content too long, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("expected no model call, got %d", gen.calls)
	}
}

func TestCritiqueRejectsShortResume(t *testing.T) {
	gen := &fakeGenerator{}
	_, err := NewOrchestrator(gen).CritiqueResume(context.Background(), CritiqueInput{ResumeMarkdown: "  tiny  "})
	if !apperr.Is(err, apperr.KindContentTooShort) {
		t.Fatalf("expected content too short, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("expected no model call")
	}
}

func TestCritiqueReturnsNormalizedFeedback(t *testing.T) {
	gen := &fakeGenerator{json: validFeedback()}
	fb, err := NewOrchestrator(gen).CritiqueResume(context.Background(), CritiqueInput{
		ResumeMarkdown: strings.Repeat("Experienced backend engineer. ", 5),
		JobTitle:       "Backend Engineer",
		JobDescription: "Go services",
		Effort:         llm.EffortHigh,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.OverallScore != 78 {
		t.Fatalf("unexpected score: %v", fb.OverallScore)
	}
	if got := fb.LineImprovements[0].Section; got != schemas.SectionExperience {
		t.Fatalf("expected section normalized to experience, got %q", got)
	}
	if gen.opts.Effort != llm.EffortHigh || gen.opts.Timeout != critiqueTimeout {
		t.Fatalf("unexpected call options: %+v", gen.opts)
	}
}

func TestCritiqueSchemaFailureIsServerError(t *testing.T) {
	bad := validFeedback()
	delete(bad, "ATS")
	gen := &fakeGenerator{json: bad}
	_, err := NewOrchestrator(gen).CritiqueResume(context.Background(), CritiqueInput{
		ResumeMarkdown: strings.Repeat("Experienced backend engineer. ", 5),
	})
	if !apperr.Is(err, apperr.KindSchemaValidation) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if apperr.Status(err) != 500 {
		t.Fatalf("expected 500 for AI schema failure, got %d", apperr.Status(err))
	}
}

func TestCritiquePassesGuardErrorsThrough(t *testing.T) {
	gen := &fakeGenerator{err: apperr.New(apperr.KindTimeout, "slow")}
	_, err := NewOrchestrator(gen).CritiqueResume(context.Background(), CritiqueInput{
		ResumeMarkdown: strings.Repeat("Experienced backend engineer. ", 5),
	})
	if !apperr.Is(err, apperr.KindTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestExtractJob(t *testing.T) {
	gen := &fakeGenerator{json: map[string]any{
		"companyName":    " Acme ",
		"jobTitle":       "Platform Engineer",
		"jobDescription": strings.Repeat("Operate Kubernetes clusters. ", 4),
	}}
	job, err := NewOrchestrator(gen).ExtractJob(context.Background(), strings.Repeat("posting text ", 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.CompanyName != "Acme" {
		t.Fatalf("expected trimmed company, got %q", job.CompanyName)
	}
	if gen.opts.Timeout != extractJobTimeout {
		t.Fatalf("expected extract timeout, got %v", gen.opts.Timeout)
	}
}

func TestExtractJobRejectsShortSource(t *testing.T) {
	gen := &fakeGenerator{}
	_, err := NewOrchestrator(gen).ExtractJob(context.Background(), "Engineer")
	if !apperr.Is(err, apperr.KindContentTooShort) || gen.calls != 0 {
		t.Fatalf("expected short rejection without call, got %v (%d calls)", err, gen.calls)
	}
}

func letterBody() map[string]any {
	return map[string]any{
		"recipientName":  "Hiring Manager",
		"opening":        "I am excited to apply.",
		"bodyParagraphs": []any{"First paragraph.", "Second paragraph."},
		"closing":        "Thank you for your time.",
		"signature":      "Ada Lovelace",
	}
}

func TestDraftCoverLetterKeepsCallerHeader(t *testing.T) {
	gen := &fakeGenerator{json: letterBody()}
	tmpl, _ := templates.Lookup("modern")
	content, err := NewOrchestrator(gen).DraftCoverLetter(context.Background(), CoverLetterInput{
		Template: tmpl,
		JobTitle: "Engineer",
		Header:   schemas.CoverLetterHeader{FullName: "Ada Lovelace", Email: "ada@example.com"},
		Date:     "March 1, 2026",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Header.Email != "ada@example.com" || content.Date != "March 1, 2026" {
		t.Fatalf("caller header or date lost: %+v", content)
	}
	if len(content.BodyParagraphs) != 2 {
		t.Fatalf("unexpected body: %v", content.BodyParagraphs)
	}
	if !strings.Contains(gen.messages[1].Content, tmpl.Tone) {
		t.Fatalf("expected template tone in prompt")
	}
}

func TestDraftCoverLetterMissingSignatureIsServerError(t *testing.T) {
	body := letterBody()
	delete(body, "signature")
	gen := &fakeGenerator{json: body}
	tmpl, _ := templates.Lookup("modern")
	_, err := NewOrchestrator(gen).DraftCoverLetter(context.Background(), CoverLetterInput{
		Template: tmpl,
		JobTitle: "Engineer",
		Header:   schemas.CoverLetterHeader{FullName: "Ada Lovelace"},
	})
	if !apperr.Is(err, apperr.KindSchemaValidation) || apperr.Status(err) != 500 {
		t.Fatalf("expected AI schema failure, got %v", err)
	}
}

func TestRewriteSectionReplacesOnlyThatSection(t *testing.T) {
	current := schemas.CoverLetterContent{
		Header:         schemas.CoverLetterHeader{FullName: "Ada"},
		Date:           "today",
		Opening:        "Old opening",
		BodyParagraphs: []string{"Body one"},
		Closing:        "Old closing",
		Signature:      "Ada",
	}
	gen := &fakeGenerator{json: map[string]any{"text": "New opening"}}
	out, err := NewOrchestrator(gen).RewriteCoverLetterSection(context.Background(), SectionInput{
		Section: SectionOpening,
		Current: current,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Opening != "New opening" || out.Closing != "Old closing" || out.BodyParagraphs[0] != "Body one" {
		t.Fatalf("unexpected merge: %+v", out)
	}
	if current.Opening != "Old opening" {
		t.Fatalf("input content mutated")
	}
}

func TestRewriteSectionRequiresMatchingField(t *testing.T) {
	gen := &fakeGenerator{json: map[string]any{"text": "Not paragraphs"}}
	_, err := NewOrchestrator(gen).RewriteCoverLetterSection(context.Background(), SectionInput{
		Section: SectionBody,
		Current: schemas.CoverLetterContent{Header: schemas.CoverLetterHeader{FullName: "Ada"}},
	})
	if !apperr.Is(err, apperr.KindSchemaValidation) {
		t.Fatalf("expected schema failure, got %v", err)
	}
}

func TestRewriteSectionRejectsUnknownSection(t *testing.T) {
	gen := &fakeGenerator{}
	_, err := NewOrchestrator(gen).RewriteCoverLetterSection(context.Background(), SectionInput{Section: "signature"})
	if !apperr.Is(err, apperr.KindValidation) || gen.calls != 0 {
		t.Fatalf("expected validation error without call, got %v", err)
	}
}

func TestDraftOutreachEmail(t *testing.T) {
	gen := &fakeGenerator{json: map[string]any{
		"subject": "Platform Engineer role",
		"body":    "Hi Sam, I noticed your team is hiring and wanted to reach out.",
	}}
	draft, err := NewOrchestrator(gen).DraftOutreach(context.Background(), OutreachInput{
		Channel: ChannelColdEmail,
		Tone:    ToneFriendly,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.Subject == "" || !strings.HasPrefix(draft.Content, "Hi Sam") {
		t.Fatalf("unexpected draft: %+v", draft)
	}
}

func TestDraftOutreachTextChannel(t *testing.T) {
	gen := &fakeGenerator{text: "\"Hi Sam, loved your talk on distributed tracing. Open to a quick chat?\""}
	draft, err := NewOrchestrator(gen).DraftOutreach(context.Background(), OutreachInput{
		Channel: ChannelLinkedInDM,
		Tone:    ToneConcise,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.Subject != "" || strings.HasPrefix(draft.Content, "\"") {
		t.Fatalf("unexpected draft: %+v", draft)
	}
}

func TestDraftOutreachTextTooShortIsAIFailure(t *testing.T) {
	gen := &fakeGenerator{text: "Hi!"}
	_, err := NewOrchestrator(gen).DraftOutreach(context.Background(), OutreachInput{Channel: ChannelTwitterDM, Tone: ToneConcise})
	if !apperr.Is(err, apperr.KindSchemaValidation) || apperr.Status(err) != 500 {
		t.Fatalf("expected AI schema failure, got %v", err)
	}
}

func TestRegenerateOutreachValidatesFeedbackFirst(t *testing.T) {
	gen := &fakeGenerator{}
	_, err := NewOrchestrator(gen).RegenerateOutreach(context.Background(), OutreachRevision{
		OutreachInput: OutreachInput{Channel: ChannelLinkedInDM, Tone: ToneConcise},
		Feedback:      "short",
	})
	if apperr.Message(err, "") != "Feedback must be 10-500 characters" {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("expected no model call")
	}
}

func TestImproveLatex(t *testing.T) {
	gen := &fakeGenerator{json: map[string]any{
		"improvedLatex":  `\section{Experience} Built 12 APIs`,
		"changesApplied": 1,
	}}
	out, err := NewOrchestrator(gen).ImproveLatex(context.Background(), LatexInput{
		Latex: `\section{Experience} Worked on APIs`,
		Improvements: []schemas.LineImprovement{
			{Section: "experience", Original: "Worked on APIs", Suggested: "Built 12 APIs", Priority: "high", Category: "quantify"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ChangesApplied != 1 || out.SectionsModified == nil {
		t.Fatalf("unexpected result: %+v", out)
	}
	if gen.opts.Effort != llm.EffortMedium {
		t.Fatalf("expected medium effort, got %q", gen.opts.Effort)
	}
}

func TestImproveLatexRequiresImprovements(t *testing.T) {
	gen := &fakeGenerator{}
	_, err := NewOrchestrator(gen).ImproveLatex(context.Background(), LatexInput{Latex: `\documentclass{article}`})
	if !apperr.Is(err, apperr.KindValidation) || gen.calls != 0 {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGroupImprovementsOrdersSections(t *testing.T) {
	groups := GroupImprovements([]schemas.LineImprovement{
		{Section: "skills"},
		{Section: "Professional Summary"},
		{Section: "hobbies"},
		{Section: "experience"},
	})
	var got []string
	for _, g := range groups {
		got = append(got, g.Section)
	}
	want := "summary,experience,skills,other"
	if strings.Join(got, ",") != want {
		t.Fatalf("got %v, want %s", got, want)
	}
}

func TestParseChannelAndTone(t *testing.T) {
	if c, ok := ParseChannel(" LinkedIn-DM "); !ok || c != ChannelLinkedInDM || c.IsEmailLike() {
		t.Fatalf("unexpected channel parse: %q %v", c, ok)
	}
	if _, ok := ParseChannel("fax"); ok {
		t.Fatalf("expected unknown channel")
	}
	if !ChannelReferralRequest.IsEmailLike() {
		t.Fatalf("expected referral request to be email-like")
	}
	if _, ok := ParseTone("sarcastic"); ok {
		t.Fatalf("expected unknown tone")
	}
}
