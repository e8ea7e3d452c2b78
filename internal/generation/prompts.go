package generation

import (
	"fmt"
	"strings"

	"resume-coach/internal/llm"
	"resume-coach/internal/schemas"
)

const critiqueSystem = `You are an expert technical recruiter and resume coach. You review resumes against a target job and return strict JSON only.

Return an object with exactly these keys:
- "overallScore": integer 0-100
- "ATS", "toneAndStyle", "content", "structure", "skills": each {"score": integer 0-100, "tips": [...]} with at least one tip
- ATS tips are {"type": "good"|"improve", "tip": string}
- all other tips are {"type": "good"|"improve", "tip": string, "explanation": string}
- "lineImprovements": array of {"section", "sectionTitle", "original", "suggested", "reason", "priority": "high"|"medium"|"low", "category": "quantify"|"action-verb"|"keyword"|"clarity"|"ats"}
  where "section" is one of summary, experience, education, skills, other and "original" is copied verbatim from the resume
- "coldOutreachMessage": optional short message the candidate could send to the hiring manager

Be specific and honest. Do not invent experience the candidate does not have. No markdown, no code fences.`

func critiqueMessages(in CritiqueInput, resume, jobDescription string) []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Target job title: %s\n", in.JobTitle)
	if in.CompanyName != "" {
		fmt.Fprintf(&b, "Company: %s\n", in.CompanyName)
	}
	fmt.Fprintf(&b, "\nJob description:\n%s\n\nResume (markdown):\n%s\n", jobDescription, resume)
	b.WriteString("\nProvide 5-15 lineImprovements, prioritizing changes that most increase fit for this job.")
	return []llm.Message{llm.System(critiqueSystem), llm.User(b.String())}
}

const extractJobSystem = `You extract structured job posting data from noisy text (web pages, PDFs, pasted content).

Work step by step internally:
1. Find the hiring company's name. Ignore job boards and recruiting agencies unless no employer is named.
2. Find the exact job title as written in the posting.
3. Collect the full job description: responsibilities, requirements, qualifications, benefits. Drop navigation, cookie banners, and unrelated listings.

Return strict JSON only: {"companyName": string, "jobTitle": string, "jobDescription": string}.
The jobDescription must be at least 50 characters and preserve the original wording. No markdown fences.`

func extractJobMessages(source string) []llm.Message {
	return []llm.Message{
		llm.System(extractJobSystem),
		llm.User("Extract the job posting from the following content:\n\n" + source),
	}
}

const coverLetterSystem = `You write tailored cover letters. Return strict JSON only:
{"recipientName": string, "opening": string, "bodyParagraphs": [string, ...], "closing": string, "signature": string}

Rules:
- 2-4 body paragraphs, each grounded in concrete achievements.
- Never invent employers, degrees, or metrics that are not in the provided resume.
- "recipientName" is the addressee if known, otherwise "Hiring Manager".
- "signature" is the candidate's full name only.
- Do not include the candidate's contact details or a date; those are added separately.`

func coverLetterMessages(in CoverLetterInput) []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Writing style: %s\n\n", in.Template.Tone)
	fmt.Fprintf(&b, "Candidate name: %s\n", in.Header.FullName)
	fmt.Fprintf(&b, "Job title: %s\n", in.JobTitle)
	if in.CompanyName != "" {
		fmt.Fprintf(&b, "Company: %s\n", in.CompanyName)
	}
	if in.JobDescription != "" {
		fmt.Fprintf(&b, "\nJob description:\n%s\n", in.JobDescription)
	}
	if in.ResumeMarkdown != "" {
		fmt.Fprintf(&b, "\nCandidate resume (markdown):\n%s\n", in.ResumeMarkdown)
	}
	return []llm.Message{llm.System(coverLetterSystem), llm.User(b.String())}
}

const sectionSystem = `You rewrite one section of an existing cover letter. Keep the rest of the letter's facts consistent.
Return strict JSON only.
For the "opening" or "closing" section return {"text": string}.
For the "body" section return {"bodyParagraphs": [string, ...]} with 2-4 paragraphs.
Never invent facts that are not in the existing letter or the job context.`

func sectionMessages(in SectionInput) []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Section to rewrite: %s\n", in.Section)
	fmt.Fprintf(&b, "Writing style: %s\n", in.Template.Tone)
	fmt.Fprintf(&b, "Job title: %s\n", in.JobTitle)
	if in.CompanyName != "" {
		fmt.Fprintf(&b, "Company: %s\n", in.CompanyName)
	}
	if in.JobDescription != "" {
		fmt.Fprintf(&b, "\nJob description:\n%s\n", in.JobDescription)
	}
	fmt.Fprintf(&b, "\nCurrent letter:\nOpening: %s\n\nBody:\n%s\n\nClosing: %s\n",
		in.Current.Opening, strings.Join(in.Current.BodyParagraphs, "\n\n"), in.Current.Closing)
	if in.Feedback != "" {
		fmt.Fprintf(&b, "\nUser feedback for this rewrite: %s\n", in.Feedback)
	}
	return []llm.Message{llm.System(sectionSystem), llm.User(b.String())}
}

func outreachSystem(channel Channel, tone Tone) string {
	var b strings.Builder
	b.WriteString("You write short job-search outreach messages that get replies.\n")
	fmt.Fprintf(&b, "Channel: %s\nTone: %s\n", channelGuidance[channel], toneGuidance[tone])
	if channel.IsEmailLike() {
		b.WriteString(`Return strict JSON only: {"subject": string, "body": string}. The subject is under 80 characters.`)
	} else {
		b.WriteString("Return only the message text, between 20 and 2000 characters. No subject line, no quotes, no commentary.")
	}
	b.WriteString("\nNever invent facts about the candidate that are not in the provided resume.")
	return b.String()
}

func outreachContext(in OutreachInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job title: %s\n", in.JobTitle)
	if in.CompanyName != "" {
		fmt.Fprintf(&b, "Company: %s\n", in.CompanyName)
	}
	if in.RecipientName != "" {
		fmt.Fprintf(&b, "Recipient: %s\n", in.RecipientName)
	}
	if in.JobDescription != "" {
		fmt.Fprintf(&b, "\nJob description:\n%s\n", in.JobDescription)
	}
	if in.ResumeMarkdown != "" {
		fmt.Fprintf(&b, "\nCandidate resume (markdown):\n%s\n", in.ResumeMarkdown)
	}
	return b.String()
}

func outreachMessages(in OutreachInput) []llm.Message {
	return []llm.Message{
		llm.System(outreachSystem(in.Channel, in.Tone)),
		llm.User(outreachContext(in) + "\nWrite the message."),
	}
}

func outreachRevisionMessages(in OutreachRevision) []llm.Message {
	var b strings.Builder
	b.WriteString(outreachContext(in.OutreachInput))
	b.WriteString("\nCurrent message:\n")
	if in.CurrentSubject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", in.CurrentSubject)
	}
	fmt.Fprintf(&b, "%s\n\nRevise the message according to this feedback: %s\n", in.CurrentContent, in.Feedback)
	return []llm.Message{llm.System(outreachSystem(in.Channel, in.Tone)), llm.User(b.String())}
}

const latexSystem = `You edit LaTeX resumes. Apply the suggested line improvements to the document's text content only.

Rules:
- Preserve every LaTeX command, environment, package, macro definition and brace structure exactly.
- Only replace human-readable text inside existing commands; do not add or remove sections.
- Escape LaTeX special characters (%, &, $, #, _) in any new text.
- If a suggestion's original line cannot be found, skip it.

Return strict JSON only: {"improvedLatex": string, "changesApplied": integer, "sectionsModified": [string, ...]}.`

func latexMessages(latex string, groups []ImprovementGroup) []llm.Message {
	var b strings.Builder
	b.WriteString("Suggested improvements grouped by resume section:\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "\n## %s\n", g.Section)
		for i, item := range g.Items {
			fmt.Fprintf(&b, "%d. [%s/%s] Original: %q\n   Suggested: %q\n   Reason: %s\n",
				i+1, item.Priority, item.Category, item.Original, item.Suggested, item.Reason)
		}
	}
	b.WriteString("\nLaTeX document:\n")
	b.WriteString(latex)
	return []llm.Message{llm.System(latexSystem), llm.User(b.String())}
}

// ImprovementGroup is the line improvements of one résumé section.
type ImprovementGroup struct {
	Section string
	Items   []schemas.LineImprovement
}

var sectionOrder = []string{
	schemas.SectionSummary,
	schemas.SectionExperience,
	schemas.SectionEducation,
	schemas.SectionSkills,
	schemas.SectionOther,
}

// GroupImprovements buckets items by section in résumé order, dropping empty buckets.
func GroupImprovements(items []schemas.LineImprovement) []ImprovementGroup {
	buckets := make(map[string][]schemas.LineImprovement)
	for _, item := range items {
		section := schemas.NormalizeSection(item.Section)
		buckets[section] = append(buckets[section], item)
	}
	var out []ImprovementGroup
	for _, section := range sectionOrder {
		if len(buckets[section]) > 0 {
			out = append(out, ImprovementGroup{Section: section, Items: buckets[section]})
		}
	}
	return out
}
