package analyses

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("analysis not found")

// Repo defines persistence operations for analyses. Every read and write is scoped to the owner.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetForOwner(ctx context.Context, id, ownerID string) (Analysis, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Summary, error)
	UpdateLatex(ctx context.Context, id, ownerID, latex string, at time.Time) error
	Delete(ctx context.Context, id, ownerID string) error
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
