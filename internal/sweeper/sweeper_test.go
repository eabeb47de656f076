package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tertulia-im/tertulia/internal/board"
	"github.com/tertulia-im/tertulia/internal/directory"
	"github.com/tertulia-im/tertulia/internal/models"
)

func newRoom(t *testing.T) (*directory.Service, *board.Service, *directory.MemoryRepository) {
	t.Helper()
	dirRepo := directory.NewMemoryRepository()
	dirSvc := directory.NewService(dirRepo)
	boardSvc := board.NewService(board.NewMemoryRepository(), dirSvc)
	return dirSvc, boardSvc, dirRepo
}

func TestSweepOnceEvictsExactlyStale(t *testing.T) {
	ctx := context.Background()
	dirSvc, boardSvc, dirRepo := newRoom(t)

	now := time.Now().UTC()
	require.NoError(t, dirRepo.Insert(ctx, &models.Participant{Name: "dave", JoinedAt: now.Add(-time.Minute), LastSeen: now.Add(-time.Minute)}))
	require.NoError(t, dirRepo.Insert(ctx, &models.Participant{Name: "erin", JoinedAt: now, LastSeen: now}))

	s := New(dirSvc, boardSvc, 15*time.Second, 10*time.Second)
	removed := s.SweepOnce(ctx)
	require.Equal(t, 1, removed)

	// dave is out, erin stays
	active, err := dirSvc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "erin", active[0].Name)

	// exactly one leave notice, visible to everyone
	msgs, err := boardSvc.Visible(ctx, "erin", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "dave", msgs[0].From)
	require.Equal(t, models.Broadcast, msgs[0].To)
	require.Equal(t, models.KindStatus, msgs[0].Kind)
	require.Equal(t, LeaveNotice, msgs[0].Text)

	// a second pass finds nothing
	require.Equal(t, 0, s.SweepOnce(ctx))
}

func TestSweepOnceKeepsHeartbeatingParticipant(t *testing.T) {
	ctx := context.Background()
	dirSvc, boardSvc, _ := newRoom(t)

	_, err := dirSvc.Join(ctx, "ana")
	require.NoError(t, err)
	require.NoError(t, dirSvc.Heartbeat(ctx, "ana"))

	s := New(dirSvc, boardSvc, 15*time.Second, 10*time.Second)
	require.Equal(t, 0, s.SweepOnce(ctx))

	active, err := dirSvc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
}

// failingDirectory refuses to remove one participant.
type failingDirectory struct {
	inner    Directory
	failName string
}

func (f *failingDirectory) StaleBefore(ctx context.Context, cutoff time.Time) ([]*models.Participant, error) {
	return f.inner.StaleBefore(ctx, cutoff)
}

func (f *failingDirectory) Remove(ctx context.Context, name string) error {
	if name == f.failName {
		return errors.New("boom")
	}
	return f.inner.Remove(ctx, name)
}

func TestSweepContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	dirSvc, boardSvc, dirRepo := newRoom(t)

	old := time.Now().UTC().Add(-time.Hour)
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, dirRepo.Insert(ctx, &models.Participant{Name: name, JoinedAt: old, LastSeen: old}))
	}

	s := New(&failingDirectory{inner: dirSvc, failName: "b"}, boardSvc, 15*time.Second, 10*time.Second)
	removed := s.SweepOnce(ctx)
	require.Equal(t, 2, removed)

	// b survived the failed removal and got no leave notice
	active, err := dirSvc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "b", active[0].Name)

	msgs, err := boardSvc.Visible(ctx, "b", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		require.NotEqual(t, "b", m.From)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	ctx := context.Background()
	dirSvc, boardSvc, dirRepo := newRoom(t)

	old := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, dirRepo.Insert(ctx, &models.Participant{Name: "ghost", JoinedAt: old, LastSeen: old}))

	s := New(dirSvc, boardSvc, 10*time.Millisecond, 10*time.Second)
	s.Start()
	s.Start() // second Start is a no-op

	deadline := time.After(2 * time.Second)
	for {
		active, err := dirSvc.ListActive(ctx)
		require.NoError(t, err)
		if len(active) == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("sweeper did not evict within deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}

	s.Stop()
	s.Stop() // second Stop is a no-op
}
