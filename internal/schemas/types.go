package schemas

// JobData is the structured result of job-posting extraction.
type JobData struct {
	CompanyName    string `json:"companyName"`
	JobTitle       string `json:"jobTitle"`
	JobDescription string `json:"jobDescription"`
}

// Tip is one feedback item. Explanation is empty for ATS tips.
type Tip struct {
	Type        string `json:"type"`
	Tip         string `json:"tip"`
	Explanation string `json:"explanation,omitempty"`
}

// ScoredSection is one scored area of résumé feedback.
type ScoredSection struct {
	Score int   `json:"score"`
	Tips  []Tip `json:"tips"`
}

// LineImprovement is a suggested rewrite of a single résumé line.
type LineImprovement struct {
	Section      string `json:"section"`
	SectionTitle string `json:"sectionTitle"`
	Original     string `json:"original"`
	Suggested    string `json:"suggested"`
	Reason       string `json:"reason"`
	Priority     string `json:"priority"`
	Category     string `json:"category"`
}

// Feedback is the validated résumé critique.
type Feedback struct {
	OverallScore        float64           `json:"overallScore"`
	ATS                 ScoredSection     `json:"ATS"`
	ToneAndStyle        ScoredSection     `json:"toneAndStyle"`
	Content             ScoredSection     `json:"content"`
	Structure           ScoredSection     `json:"structure"`
	Skills              ScoredSection     `json:"skills"`
	LineImprovements    []LineImprovement `json:"lineImprovements,omitempty"`
	ColdOutreachMessage string            `json:"coldOutreachMessage,omitempty"`
}

func (f *Feedback) normalize() {
	if len(f.LineImprovements) == 0 {
		f.LineImprovements = nil
	}
}

// CoverLetterHeader is the sender block. It is always supplied by the caller.
type CoverLetterHeader struct {
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// CoverLetterBody is what the generator produces for a cover letter.
type CoverLetterBody struct {
	RecipientName  string   `json:"recipientName,omitempty"`
	Opening        string   `json:"opening"`
	BodyParagraphs []string `json:"bodyParagraphs"`
	Closing        string   `json:"closing"`
	Signature      string   `json:"signature"`
}

// CoverLetterContent is the stored cover letter: generated body plus caller-owned header and date.
type CoverLetterContent struct {
	Header         CoverLetterHeader `json:"header"`
	Date           string            `json:"date"`
	RecipientName  string            `json:"recipientName,omitempty"`
	Opening        string            `json:"opening"`
	BodyParagraphs []string          `json:"bodyParagraphs"`
	Closing        string            `json:"closing"`
	Signature      string            `json:"signature"`
}

// CoverLetterHeaderPatch carries only the header fields a client changed.
type CoverLetterHeaderPatch struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Location *string `json:"location,omitempty"`
	LinkedIn *string `json:"linkedin,omitempty"`
	Website  *string `json:"website,omitempty"`
}

// CoverLetterPatch is a partial content update. Absent fields are left untouched.
type CoverLetterPatch struct {
	Header         *CoverLetterHeaderPatch `json:"header,omitempty"`
	Date           *string                 `json:"date,omitempty"`
	RecipientName  *string                 `json:"recipientName,omitempty"`
	Opening        *string                 `json:"opening,omitempty"`
	BodyParagraphs []string                `json:"bodyParagraphs,omitempty"`
	Closing        *string                 `json:"closing,omitempty"`
	Signature      *string                 `json:"signature,omitempty"`
}

// CoverLetterSection is a rewritten opening or closing (Text) or body (BodyParagraphs).
type CoverLetterSection struct {
	Text           string   `json:"text,omitempty"`
	BodyParagraphs []string `json:"bodyParagraphs,omitempty"`
}

// OutreachEmail is the generated message for email-like channels.
type OutreachEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// LatexImprovement is the result of applying line improvements to a LaTeX résumé.
type LatexImprovement struct {
	ImprovedLatex    string   `json:"improvedLatex"`
	ChangesApplied   int      `json:"changesApplied"`
	SectionsModified []string `json:"sectionsModified"`
}

func (l *LatexImprovement) normalize() {
	if l.SectionsModified == nil {
		l.SectionsModified = []string{}
	}
}
