package coverletters

import (
	"context"
	"sort"
	"sync"
	"time"

	"resume-coach/internal/schemas"
)

// MemoryRepo stores cover letters in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.Mutex
	byID map[string]CoverLetter
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]CoverLetter)}
}

func (r *MemoryRepo) Create(ctx context.Context, l CoverLetter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[l.ID] = clone(l)
	return nil
}

func (r *MemoryRepo) GetForOwner(ctx context.Context, id, ownerID string) (CoverLetter, error) {
	if err := ctx.Err(); err != nil {
		return CoverLetter{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok || l.OwnerID != ownerID {
		return CoverLetter{}, ErrNotFound
	}
	return clone(l), nil
}

func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]CoverLetter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	owned := make([]CoverLetter, 0)
	for _, l := range r.byID {
		if l.OwnerID == ownerID {
			owned = append(owned, clone(l))
		}
	}
	r.mu.Unlock()

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	if offset >= len(owned) {
		return []CoverLetter{}, nil
	}
	owned = owned[offset:]
	if limit > 0 && limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (r *MemoryRepo) UpdateContent(ctx context.Context, id, ownerID string, content schemas.CoverLetterContent, expected, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok || l.OwnerID != ownerID {
		return ErrNotFound
	}
	if !l.UpdatedAt.Equal(expected) {
		return ErrConflict
	}
	l.Content = content
	l.UpdatedAt = at
	r.byID[id] = clone(l)
	return nil
}

func (r *MemoryRepo) ReplaceContent(ctx context.Context, id, ownerID string, content schemas.CoverLetterContent, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok || l.OwnerID != ownerID {
		return ErrNotFound
	}
	l.Content = content
	l.UpdatedAt = at
	r.byID[id] = clone(l)
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok || l.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepo) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, l := range r.byID {
		if l.OwnerID == ownerID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

// clone copies the paragraph slice so callers cannot mutate stored state.
func clone(l CoverLetter) CoverLetter {
	l.Content.BodyParagraphs = append([]string(nil), l.Content.BodyParagraphs...)
	return l
}
