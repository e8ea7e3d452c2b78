package coverletters

import (
	"time"

	"resume-coach/internal/schemas"
)

// CoverLetter is a generated letter owned by one user.
type CoverLetter struct {
	ID             string                     `json:"id"`
	OwnerID        string                     `json:"-"`
	TemplateID     string                     `json:"templateId"`
	JobTitle       string                     `json:"jobTitle"`
	CompanyName    string                     `json:"companyName,omitempty"`
	JobDescription string                     `json:"jobDescription,omitempty"`
	Content        schemas.CoverLetterContent `json:"content"`
	ResumeID       string                     `json:"resumeId,omitempty"`
	CreatedAt      time.Time                  `json:"createdAt"`
	UpdatedAt      time.Time                  `json:"updatedAt"`
}
