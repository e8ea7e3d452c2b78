package analyses

import (
	"time"

	"resume-coach/internal/schemas"
)

// Analysis is one uploaded résumé critiqued against a target job.
type Analysis struct {
	ID             string           `json:"id"`
	OwnerID        string           `json:"-"`
	JobTitle       string           `json:"jobTitle"`
	JobDescription string           `json:"jobDescription"`
	CompanyName    string           `json:"companyName,omitempty"`
	ResumeMarkdown string           `json:"resumeMarkdown"`
	Feedback       schemas.Feedback `json:"feedback"`
	PreviewImage   string           `json:"previewImage,omitempty"`
	LatexContent   string           `json:"latexContent,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Summary is the list view of an analysis.
type Summary struct {
	ID           string    `json:"id"`
	JobTitle     string    `json:"jobTitle"`
	CompanyName  string    `json:"companyName,omitempty"`
	OverallScore float64   `json:"overallScore"`
	HasLatex     bool      `json:"hasLatex"`
	CreatedAt    time.Time `json:"createdAt"`
}
