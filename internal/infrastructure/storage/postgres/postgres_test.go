package postgres

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"coursekeeper/internal/app/server/config"
)

// Интеграционные тесты: нужен живой PostgreSQL в TEST_DATABASE_URI.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	uri := os.Getenv("TEST_DATABASE_URI")
	if uri == "" {
		t.Skip("TEST_DATABASE_URI is not set")
	}

	cfg := &config.Config{DB: config.DBConfig{DatabaseURI: uri, Migrations: "../../../../migrations"}}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := New(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	_, err = s.Pool().Exec(ctx, `DELETE FROM nodes WHERE path = 'courses_test'`)
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_WriteNotifiesSubscribers(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	sub, err := s.Subscribe(ctx, "courses_test")
	require.NoError(t, err)

	ev := <-sub.Events()
	require.NoError(t, ev.Err)
	assert.Equal(t, 0, ev.Snapshot.Len())

	require.NoError(t, s.Write(ctx, "courses_test", "k1", map[string]any{"courseName": "Algebra"}))

	select {
	case ev := <-sub.Events():
		require.NoError(t, ev.Err)
		require.Equal(t, 1, ev.Snapshot.Len())
		assert.Equal(t, "k1", ev.Snapshot.Children[0].Key)
	case <-time.After(5 * time.Second):
		t.Fatal("no notification")
	}

	child, ok, err := s.ReadOnce(ctx, "courses_test", "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"courseName":"Algebra"}`, string(child.Value))

	require.NoError(t, s.Remove(ctx, "courses_test", "k1"))
	_, ok, err = s.ReadOnce(ctx, "courses_test", "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheck(t *testing.T) {
	assert.Error(t, check("", "k"))
	assert.Error(t, check("courses", "a.b"))
	assert.NoError(t, check("courses", "01hx"))
}
