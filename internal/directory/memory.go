package directory

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/tertulia-im/tertulia/internal/models"
)

// MemoryRepository is a map-backed repository used in unit tests and as the
// last-resort storage fallback. The mutex provides the single-record
// atomicity the interface demands.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]models.Participant
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]models.Participant)}
}

func (r *MemoryRepository) Insert(ctx context.Context, p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[p.Name]; ok {
		return ErrAlreadyJoined
	}
	r.store[p.Name] = *p
	return nil
}

func (r *MemoryRepository) Touch(ctx context.Context, name string, when time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.store[name]
	if !ok {
		return ErrNotFound
	}
	p.LastSeen = when
	r.store[name] = p
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.MapToSlice(r.store, func(_ string, p models.Participant) *models.Participant {
		return &p
	}), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[name]; !ok {
		return ErrNotFound
	}
	delete(r.store, name)
	return nil
}

func (r *MemoryRepository) StaleBefore(ctx context.Context, cutoff time.Time) ([]*models.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Participant{}
	for _, p := range r.store {
		if p.LastSeen.Before(cutoff) {
			c := p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Exists(ctx context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.store[name]
	return ok, nil
}

func (r *MemoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.store)), nil
}
