package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(path string, keys ...string) Snapshot {
	snap := Snapshot{Path: path}
	for _, k := range keys {
		snap.Children = append(snap.Children, Child{Key: k, Value: json.RawMessage(`{}`)})
	}
	return snap
}

func TestHub_PublishReachesOnlyMatchingPath(t *testing.T) {
	h := NewHub()
	courses := h.Add("courses")
	other := h.Add("rooms")

	n := h.Publish(snapshotOf("courses", "a"))
	assert.Equal(t, 1, n)

	ev := <-courses.Events()
	require.NoError(t, ev.Err)
	assert.Equal(t, 1, ev.Snapshot.Len())

	select {
	case ev := <-other.Events():
		t.Fatalf("unexpected event on other path: %+v", ev)
	default:
	}
}

func TestHub_PendingSnapshotIsReplaced(t *testing.T) {
	h := NewHub()
	sub := h.Add("courses")

	h.Publish(snapshotOf("courses", "a"))
	h.Publish(snapshotOf("courses", "a", "b"))

	ev := <-sub.Events()
	assert.Equal(t, 2, ev.Snapshot.Len())

	select {
	case ev := <-sub.Events():
		t.Fatalf("stale snapshot delivered: %+v", ev)
	default:
	}
}

func TestHub_RemoveIsIdempotent(t *testing.T) {
	h := NewHub()
	sub := h.Add("courses")
	h.Publish(snapshotOf("courses", "a"))

	assert.True(t, h.Remove("courses", sub.Token()))
	assert.False(t, h.Remove("courses", sub.Token()))
	assert.Equal(t, 0, h.Len("courses"))

	_, ok := <-sub.Events()
	assert.False(t, ok, "pending event must be dropped on detach")

	assert.Equal(t, 0, h.Publish(snapshotOf("courses", "b")))
}

func TestHub_CancelDeliversTerminalError(t *testing.T) {
	h := NewHub()
	sub := h.Add("courses")
	h.Publish(snapshotOf("courses", "a"))

	cause := errors.New("permission denied")
	assert.Equal(t, 1, h.Cancel("courses", cause))

	ev, ok := <-sub.Events()
	require.True(t, ok)
	assert.ErrorIs(t, ev.Err, cause)

	_, ok = <-sub.Events()
	assert.False(t, ok)
	assert.False(t, h.Remove("courses", sub.Token()))
}

func TestHub_TerminateSingle(t *testing.T) {
	h := NewHub()
	first := h.Add("courses")
	second := h.Add("courses")
	lost := errors.New("stream lost")

	assert.True(t, h.Terminate("courses", first.Token(), lost))
	assert.False(t, h.Terminate("courses", first.Token(), lost))

	ev := <-first.Events()
	assert.ErrorIs(t, ev.Err, lost)
	_, ok := <-first.Events()
	assert.False(t, ok)

	assert.Equal(t, 1, h.Len("courses"))
	assert.Equal(t, 1, h.Publish(snapshotOf("courses", "a")))
	ev = <-second.Events()
	assert.NoError(t, ev.Err)
}

func TestHub_CancelAll(t *testing.T) {
	h := NewHub()
	h.Add("courses")
	h.Add("courses")
	h.Add("rooms")

	assert.Equal(t, []string{"courses", "rooms"}, h.Paths())
	assert.Equal(t, 3, h.CancelAll(ErrClosed))
	assert.Empty(t, h.Paths())
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "flat", path: "courses"},
		{name: "empty", path: "", wantErr: true},
		{name: "blank", path: "  ", wantErr: true},
		{name: "nested", path: "courses/lab", wantErr: true},
		{name: "dot", path: "courses.v2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			assert.NoError(t, err)
		})
	}
}
