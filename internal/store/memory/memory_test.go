package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"coursekeeper/internal/store"
)

func TestStore_SubscribeDeliversCurrentState(t *testing.T) {
	ctx := context.Background()
	s := New(slog.Default())
	require.NoError(t, s.Write(ctx, "courses", "b", map[string]any{"courseName": "B"}))
	require.NoError(t, s.Write(ctx, "courses", "a", map[string]any{"courseName": "A"}))

	sub, err := s.Subscribe(ctx, "courses")
	require.NoError(t, err)

	ev := <-sub.Events()
	require.NoError(t, ev.Err)
	require.Equal(t, 2, ev.Snapshot.Len())
	assert.Equal(t, "a", ev.Snapshot.Children[0].Key)
	assert.Equal(t, "b", ev.Snapshot.Children[1].Key)
}

func TestStore_WriteReadRemove(t *testing.T) {
	ctx := context.Background()
	s := New(slog.Default())

	_, ok, err := s.ReadOnce(ctx, "courses", "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "courses", "k1", map[string]any{"creditHours": 3}))
	child, ok, err := s.ReadOnce(ctx, "courses", "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"creditHours":3}`, string(child.Value))

	require.NoError(t, s.Remove(ctx, "courses", "k1"))
	_, ok, err = s.ReadOnce(ctx, "courses", "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PushAfterUnsubscribeIsNotDelivered(t *testing.T) {
	ctx := context.Background()
	s := New(slog.Default())

	sub, err := s.Subscribe(ctx, "courses")
	require.NoError(t, err)
	<-sub.Events()

	require.NoError(t, s.Unsubscribe("courses", sub.Token()))
	require.NoError(t, s.Unsubscribe("courses", sub.Token()))
	require.NoError(t, s.Write(ctx, "courses", "k1", map[string]any{}))

	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Subscribers("courses"))
}

func TestStore_Revoke(t *testing.T) {
	ctx := context.Background()
	s := New(slog.Default())

	sub, err := s.Subscribe(ctx, "courses")
	require.NoError(t, err)

	assert.Equal(t, 1, s.Revoke("courses", errors.New("permission denied")))

	ev := <-sub.Events()
	assert.ErrorIs(t, ev.Err, store.ErrCancelled)
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := New(slog.Default())
	require.NoError(t, s.Close())

	_, err := s.Subscribe(ctx, "courses")
	assert.ErrorIs(t, err, store.ErrClosed)
	assert.ErrorIs(t, s.Write(ctx, "courses", "k", map[string]any{}), store.ErrClosed)
	assert.NoError(t, s.Close())
}

func TestStore_RejectsNestedPaths(t *testing.T) {
	s := New(slog.Default())
	err := s.WriteRaw(context.Background(), "courses/x", "k", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, store.ErrInvalidPath)
}
