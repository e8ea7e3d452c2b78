package users

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// Repo stores profiles keyed by session subject. Upsert records a sign-in at the given time.
type Repo interface {
	Upsert(ctx context.Context, user User, at time.Time) error
	GetByID(ctx context.Context, userID string) (User, error)
}
