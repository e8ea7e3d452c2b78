package outreach

import "time"

// Context is the snapshot of generation inputs. It is written once and reused by regeneration.
type Context struct {
	JobDescription string `json:"jobDescription,omitempty"`
	ResumeMarkdown string `json:"resumeMarkdown,omitempty"`
}

// Message is a generated outreach message for one channel.
type Message struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"-"`
	Channel       string    `json:"channel"`
	Tone          string    `json:"tone"`
	JobTitle      string    `json:"jobTitle"`
	CompanyName   string    `json:"companyName,omitempty"`
	RecipientName string    `json:"recipientName,omitempty"`
	Subject       string    `json:"subject,omitempty"`
	Content       string    `json:"content"`
	Context       Context   `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
