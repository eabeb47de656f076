package board

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tertulia-im/tertulia/internal/models"
)

func seed(t *testing.T, r Repository, n int) []*models.Message {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC()
	out := make([]*models.Message, 0, n)
	for i := 0; i < n; i++ {
		m := &models.Message{
			ID:        fmt.Sprintf("id-%02d", i),
			From:      "alice",
			To:        models.Broadcast,
			Text:      fmt.Sprintf("msg %02d", i),
			Kind:      models.KindMessage,
			Time:      base.Format("15:04:05"),
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
		}
		require.NoError(t, r.Insert(ctx, m))
		out = append(out, m)
	}
	return out
}

func TestMemoryRepositoryOrderAndLimit(t *testing.T) {
	r := NewMemoryRepository()
	seed(t, r, 5)

	got, err := r.VisibleTo(context.Background(), "bob", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// oldest first
	require.Equal(t, "msg 00", got[0].Text)
	require.Equal(t, "msg 02", got[2].Text)

	all, err := r.VisibleTo(context.Background(), "bob", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
}

func TestMemoryRepositoryIDOps(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	msgs := seed(t, r, 2)

	got, err := r.Get(ctx, msgs[1].ID)
	require.NoError(t, err)
	require.Equal(t, "msg 01", got.Text)

	require.NoError(t, r.UpdateText(ctx, msgs[1].ID, "edited"))
	got, err = r.Get(ctx, msgs[1].ID)
	require.NoError(t, err)
	require.Equal(t, "edited", got.Text)

	require.NoError(t, r.Delete(ctx, msgs[1].ID))
	_, err = r.Get(ctx, msgs[1].ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, r.UpdateText(ctx, msgs[1].ID, "x"), ErrNotFound)
	require.ErrorIs(t, r.Delete(ctx, msgs[1].ID), ErrNotFound)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestMemoryRepositoryVisibility(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Insert(ctx, &models.Message{ID: "pub", From: "alice", To: models.Broadcast, Kind: models.KindMessage, CreatedAt: time.Now()}))
	require.NoError(t, r.Insert(ctx, &models.Message{ID: "dm", From: "alice", To: "bob", Kind: models.KindPrivate, CreatedAt: time.Now()}))

	got, err := r.VisibleTo(ctx, "carol", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "pub", got[0].ID)

	got, err = r.VisibleTo(ctx, "bob", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
}
