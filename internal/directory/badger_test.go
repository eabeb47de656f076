package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tertulia-im/tertulia/internal/database"
	"github.com/tertulia-im/tertulia/internal/models"
)

func newBadgerRepo(t *testing.T) *BadgerRepository {
	t.Helper()
	db, err := database.OpenBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerRepository(db)
}

func TestBadgerRepository(t *testing.T) {
	ctx := context.Background()
	r := newBadgerRepo(t)
	now := time.Now().UTC()

	require.NoError(t, r.Insert(ctx, &models.Participant{Name: "ana", JoinedAt: now, LastSeen: now}))
	require.ErrorIs(t, r.Insert(ctx, &models.Participant{Name: "ana", JoinedAt: now, LastSeen: now}), ErrAlreadyJoined)

	ok, err := r.Exists(ctx, "ana")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.Touch(ctx, "ana", now.Add(time.Minute)))
	require.ErrorIs(t, r.Touch(ctx, "bruno", now), ErrNotFound)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "ana", list[0].Name)
	require.True(t, list[0].LastSeen.Equal(now.Add(time.Minute)))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, r.Delete(ctx, "ana"))
	require.ErrorIs(t, r.Delete(ctx, "ana"), ErrNotFound)
}

func TestBadgerRepositoryStaleBefore(t *testing.T) {
	ctx := context.Background()
	r := newBadgerRepo(t)
	now := time.Now().UTC()

	require.NoError(t, r.Insert(ctx, &models.Participant{Name: "old", LastSeen: now.Add(-time.Hour)}))
	require.NoError(t, r.Insert(ctx, &models.Participant{Name: "fresh", LastSeen: now}))

	stale, err := r.StaleBefore(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	require.Equal(t, "old", stale[0].Name)
}
