package directory

import (
	"context"
	"errors"
	"time"

	"github.com/tertulia-im/tertulia/internal/models"
)

// ErrReservedName rejects joins under the broadcast name.
var ErrReservedName = errors.New("name is reserved")

// Service encapsulates directory business logic.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Join registers a name with lastSeen = now. Duplicate detection belongs to
// the backend: the insert either lands or reports ErrAlreadyJoined, so two
// concurrent joins for one name cannot both succeed.
func (s *Service) Join(ctx context.Context, name string) (*models.Participant, error) {
	if name == models.Broadcast {
		return nil, ErrReservedName
	}
	now := time.Now().UTC()
	p := &models.Participant{Name: name, JoinedAt: now, LastSeen: now}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Heartbeat refreshes lastSeen for an existing participant.
func (s *Service) Heartbeat(ctx context.Context, name string) error {
	return s.repo.Touch(ctx, name, time.Now().UTC())
}

// ListActive returns a snapshot of the directory. No ordering guarantee.
func (s *Service) ListActive(ctx context.Context) ([]*models.Participant, error) {
	return s.repo.List(ctx)
}

// Remove deletes a participant record. Callers other than the sweeper have
// no business here.
func (s *Service) Remove(ctx context.Context, name string) error {
	return s.repo.Delete(ctx, name)
}

// StaleBefore returns participants whose lastSeen is older than cutoff.
func (s *Service) StaleBefore(ctx context.Context, cutoff time.Time) ([]*models.Participant, error) {
	return s.repo.StaleBefore(ctx, cutoff)
}

// IsActive reports whether name is currently in the room.
func (s *Service) IsActive(ctx context.Context, name string) (bool, error) {
	return s.repo.Exists(ctx, name)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
