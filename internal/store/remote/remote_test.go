package remote

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"coursekeeper/internal/app/server/api"
	"coursekeeper/internal/domain/course"
	"coursekeeper/internal/store"
	"coursekeeper/internal/store/memory"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T) (*Client, *memory.Store) {
	t.Helper()
	backend := memory.New(discard())
	srv := httptest.NewServer(api.New(backend, discard()))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, backend
}

func next(t *testing.T, sub *store.Subscription) store.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no event")
		return store.Event{}
	}
}

func TestClient_PointCalls(t *testing.T) {
	ctx := context.Background()
	c, backend := newTestClient(t)

	_, ok, err := c.ReadOnce(ctx, "courses", "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Write(ctx, "courses", "k1", map[string]any{"courseName": "Algebra", "creditHours": 3}))

	child, ok, err := c.ReadOnce(ctx, "courses", "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "k1", child.Key)
	assert.JSONEq(t, `{"courseName":"Algebra","creditHours":3}`, string(child.Value))

	// сервер видит то же самое
	_, ok, err = backend.ReadOnce(ctx, "courses", "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Remove(ctx, "courses", "k1"))
	_, ok, err = c.ReadOnce(ctx, "courses", "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_RejectsBadAddressesLocally(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	assert.ErrorIs(t, c.Write(ctx, "courses", "a.b", 1), store.ErrInvalidKey)
	assert.ErrorIs(t, c.Remove(ctx, "a/b", "k"), store.ErrInvalidPath)
	_, err := c.Subscribe(ctx, "")
	assert.ErrorIs(t, err, store.ErrInvalidPath)
}

func TestClient_SubscribeFollowsChanges(t *testing.T) {
	ctx := context.Background()
	c, backend := newTestClient(t)

	require.NoError(t, backend.Write(ctx, "courses", "a", map[string]any{"courseName": "A"}))

	sub, err := c.Subscribe(ctx, "courses")
	require.NoError(t, err)

	ev := next(t, sub)
	require.NoError(t, ev.Err)
	assert.Equal(t, 1, ev.Snapshot.Len())

	require.NoError(t, c.Write(ctx, "courses", "b", map[string]any{"courseName": "B"}))

	// снимки могут склеиваться, ждем нужное состояние
	require.Eventually(t, func() bool {
		select {
		case ev := <-sub.Events():
			return ev.Err == nil && ev.Snapshot.Len() == 2
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Unsubscribe("courses", sub.Token()))
	require.NoError(t, c.Unsubscribe("courses", sub.Token()))

	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestClient_ServerCancellation(t *testing.T) {
	ctx := context.Background()
	c, backend := newTestClient(t)

	sub, err := c.Subscribe(ctx, "courses")
	require.NoError(t, err)
	next(t, sub)

	require.Eventually(t, func() bool {
		return backend.Subscribers("courses") == 1
	}, 5*time.Second, 10*time.Millisecond)

	backend.Revoke("courses", errors.New("permission denied"))

	ev := next(t, sub)
	assert.ErrorIs(t, ev.Err, store.ErrCancelled)
	assert.Contains(t, ev.Err.Error(), "permission denied")
}

func TestClient_Close(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	sub, err := c.Subscribe(ctx, "courses")
	require.NoError(t, err)
	next(t, sub)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	ev := next(t, sub)
	assert.ErrorIs(t, ev.Err, store.ErrClosed)

	assert.ErrorIs(t, c.Write(ctx, "courses", "k1", 1), store.ErrClosed)
	_, err = c.Subscribe(ctx, "courses")
	assert.ErrorIs(t, err, store.ErrClosed)
}

func TestClient_DrivesRepository(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	repo := course.NewRepository(c, discard())

	updates := make(chan []course.Course, 16)
	sub, err := repo.SubscribeAll(ctx, func(cs []course.Course) { updates <- cs }, func(error) {})
	require.NoError(t, err)
	defer repo.Unsubscribe(sub)

	id, err := repo.Create(ctx, course.Course{Name: "Operating Systems", Code: "CS330", CreditHours: 4, Type: course.TypeLab})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case cs := <-updates:
			return len(cs) == 1 && cs[0].ID == id
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, got.Found)
	assert.Equal(t, "CS330", got.Course.Code)

	err = repo.Update(ctx, course.Course{ID: "missing", Name: "X", Code: "Y", CreditHours: 1, Type: course.TypeTheory})
	assert.ErrorIs(t, err, course.ErrNotFound)
}

func TestURLs(t *testing.T) {
	c, err := New("https://example.com/base/", discard())
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/base/api/v1/db/courses/k1", c.childURL("courses", "k1"))
	assert.Equal(t, "wss://example.com/base/api/v1/db/courses/stream", c.streamURL("courses"))

	c, err = New("localhost:8080", discard())
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/api/v1/db/courses/stream", c.streamURL("courses"))
}
