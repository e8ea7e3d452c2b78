package coverletters

import (
	"context"
	"errors"
	"time"

	"resume-coach/internal/schemas"
)

var (
	ErrNotFound = errors.New("cover letter not found")
	// ErrConflict means the stored updatedAt no longer matches the caller's.
	ErrConflict = errors.New("cover letter was modified concurrently")
)

// Repo defines persistence operations for cover letters. Every read and write is scoped to the owner.
type Repo interface {
	Create(ctx context.Context, letter CoverLetter) error
	GetForOwner(ctx context.Context, id, ownerID string) (CoverLetter, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]CoverLetter, error)
	// UpdateContent writes only if the stored updatedAt equals expected.
	UpdateContent(ctx context.Context, id, ownerID string, content schemas.CoverLetterContent, expected, at time.Time) error
	// ReplaceContent writes unconditionally.
	ReplaceContent(ctx context.Context, id, ownerID string, content schemas.CoverLetterContent, at time.Time) error
	Delete(ctx context.Context, id, ownerID string) error
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
