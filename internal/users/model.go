package users

import "time"

// User is a signed-in account. Its ID is the session subject that owns every stored entity.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName"`
	GivenName   string     `json:"givenName,omitempty"`
	FamilyName  string     `json:"familyName,omitempty"`
	PictureURL  string     `json:"pictureUrl,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
