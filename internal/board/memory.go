package board

import (
	"context"
	"sync"

	"github.com/tertulia-im/tertulia/internal/models"
)

// MemoryRepository keeps messages in an insertion-ordered slice. Used in unit
// tests and as the last-resort storage fallback.
type MemoryRepository struct {
	mu       sync.RWMutex
	messages []models.Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Insert(ctx context.Context, m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *m)
	return nil
}

func (r *MemoryRepository) VisibleTo(ctx context.Context, viewer string, limit int) ([]*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Message{}
	for i := range r.messages {
		if limit > 0 && len(out) == limit {
			break
		}
		if r.messages[i].VisibleTo(viewer) {
			c := r.messages[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.messages {
		if r.messages[i].ID == id {
			c := r.messages[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) UpdateText(ctx context.Context, id, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].ID == id {
			r.messages[i].Text = text
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].ID == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.messages)), nil
}
