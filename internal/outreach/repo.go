package outreach

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("outreach message not found")

// Repo defines persistence operations for outreach messages, scoped to the owner.
type Repo interface {
	Create(ctx context.Context, m Message) error
	GetForOwner(ctx context.Context, id, ownerID string) (Message, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Message, error)
	UpdateGenerated(ctx context.Context, id, ownerID, content, subject string, at time.Time) error
	Delete(ctx context.Context, id, ownerID string) error
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
