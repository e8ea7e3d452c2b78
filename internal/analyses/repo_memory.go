package analyses

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Analysis)}
}

// Create stores the analysis.
func (r *MemoryRepo) Create(ctx context.Context, a Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = a
	return nil
}

// GetForOwner returns the analysis only when it belongs to ownerID.
func (r *MemoryRepo) GetForOwner(ctx context.Context, id, ownerID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok || a.OwnerID != ownerID {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

// ListByOwner returns summaries newest first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	owned := make([]Analysis, 0)
	for _, a := range r.byID {
		if a.OwnerID == ownerID {
			owned = append(owned, a)
		}
	}
	r.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	if offset >= len(owned) {
		return []Summary{}, nil
	}
	owned = owned[offset:]
	if limit > 0 && limit < len(owned) {
		owned = owned[:limit]
	}
	out := make([]Summary, 0, len(owned))
	for _, a := range owned {
		out = append(out, Summary{
			ID:           a.ID,
			JobTitle:     a.JobTitle,
			CompanyName:  a.CompanyName,
			OverallScore: a.Feedback.OverallScore,
			HasLatex:     a.LatexContent != "",
			CreatedAt:    a.CreatedAt,
		})
	}
	return out, nil
}

// UpdateLatex stores editor LaTeX on the analysis.
func (r *MemoryRepo) UpdateLatex(ctx context.Context, id, ownerID, latex string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok || a.OwnerID != ownerID {
		return ErrNotFound
	}
	a.LatexContent = latex
	a.UpdatedAt = at
	r.byID[id] = a
	return nil
}

// Delete removes the analysis when it belongs to ownerID.
func (r *MemoryRepo) Delete(ctx context.Context, id, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok || a.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// DeleteByOwner removes every analysis of ownerID.
func (r *MemoryRepo) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, a := range r.byID {
		if a.OwnerID == ownerID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
