package outreach

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores outreach messages in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Message
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Message)}
}

func (r *MemoryRepo) Create(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[m.ID] = m
	return nil
}

func (r *MemoryRepo) GetForOwner(ctx context.Context, id, ownerID string) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok || m.OwnerID != ownerID {
		return Message{}, ErrNotFound
	}
	return m, nil
}

func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	owned := make([]Message, 0)
	for _, m := range r.byID {
		if m.OwnerID == ownerID {
			owned = append(owned, m)
		}
	}
	r.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	if offset >= len(owned) {
		return []Message{}, nil
	}
	owned = owned[offset:]
	if limit > 0 && limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (r *MemoryRepo) UpdateGenerated(ctx context.Context, id, ownerID, content, subject string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok || m.OwnerID != ownerID {
		return ErrNotFound
	}
	m.Content = content
	m.Subject = subject
	m.UpdatedAt = at
	r.byID[id] = m
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok || m.OwnerID != ownerID {
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
	for id, m := range r.byID {
		if m.OwnerID == ownerID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
