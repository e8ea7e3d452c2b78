package users

import (
	"context"
	"strings"
	"time"

	"resume-coach/internal/shared/apperr"
)

// Service records sign-ins and serves the caller's profile.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth stores the identity returned by the OAuth provider and stamps the sign-in.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	user.ID = strings.TrimSpace(user.ID)
	user.Email = strings.TrimSpace(user.Email)
	if user.ID == "" || user.Email == "" {
		return apperr.Validation("user id and email are required")
	}
	return s.Repo.Upsert(ctx, user, s.now())
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, apperr.New(apperr.KindUnauthorized, "Unauthorized")
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC().Truncate(time.Microsecond)
	}
	return time.Now().UTC().Truncate(time.Microsecond)
}
