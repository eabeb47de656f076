package board

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/tertulia-im/tertulia/internal/models"
)

var (
	ErrSenderUnknown = errors.New("sender not in the room")
	ErrBadKind       = errors.New("unknown message kind")
	ErrBadRecipient  = errors.New("direct message needs two named endpoints")
	ErrNotOwner      = errors.New("actor does not own this message")
)

// Roster is the directory view the board needs: just enough to check that a
// sender is currently in the room.
type Roster interface {
	IsActive(ctx context.Context, name string) (bool, error)
}

// Service encapsulates message board business logic.
type Service struct {
	repo   Repository
	roster Roster
}

func NewService(r Repository, roster Roster) *Service {
	return &Service{repo: r, roster: roster}
}

// Post validates and stores a client message. Clients may send message or
// private_message; status is reserved for the server. The sender must be in
// the room at write time.
func (s *Service) Post(ctx context.Context, from, to, text, kind string) (*models.Message, error) {
	switch kind {
	case models.KindMessage:
	case models.KindPrivate:
		if to == models.Broadcast || from == models.Broadcast {
			return nil, ErrBadRecipient
		}
	default:
		return nil, ErrBadKind
	}
	active, err := s.roster.IsActive(ctx, from)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrSenderUnknown
	}
	return s.append(ctx, from, to, text, kind)
}

// PostStatus stores a system notice (join/leave). No roster check: the
// sweeper posts on behalf of participants it has just removed.
func (s *Service) PostStatus(ctx context.Context, from, text string) (*models.Message, error) {
	return s.append(ctx, from, models.Broadcast, text, models.KindStatus)
}

func (s *Service) append(ctx context.Context, from, to, text, kind string) (*models.Message, error) {
	now := time.Now().UTC()
	m := &models.Message{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Text:      text,
		Kind:      kind,
		Time:      now.Format("15:04:05"),
		CreatedAt: now,
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Visible returns up to limit messages the viewer may read, oldest first.
func (s *Service) Visible(ctx context.Context, viewer string, limit int) ([]*models.Message, error) {
	return s.repo.VisibleTo(ctx, viewer, limit)
}

// Search returns up to limit visible messages whose text contains q,
// case-insensitively, oldest first.
func (s *Service) Search(ctx context.Context, viewer, q string, limit int) ([]*models.Message, error) {
	all, err := s.repo.VisibleTo(ctx, viewer, 0)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(q)
	hits := lo.Filter(all, func(m *models.Message, _ int) bool {
		return strings.Contains(strings.ToLower(m.Text), needle)
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Edit replaces the text of a message owned by actor.
func (s *Service) Edit(ctx context.Context, id, actor, text string) (*models.Message, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.From != actor {
		return nil, ErrNotOwner
	}
	if err := s.repo.UpdateText(ctx, id, text); err != nil {
		return nil, err
	}
	m.Text = text
	return m, nil
}

// Delete removes a message owned by actor.
func (s *Service) Delete(ctx context.Context, id, actor string) error {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.From != actor {
		return ErrNotOwner
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
