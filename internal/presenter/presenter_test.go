package presenter

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"coursekeeper/internal/domain/course"
)

type recordingRenderer struct {
	mu      sync.Mutex
	batches [][]Op
	screen  []course.Course
	errs    []error
}

func (r *recordingRenderer) Render(ops []Op, _ []course.Course) {
	r.mu.Lock()
	defer r.mu.Unlock()

	applied, err := Apply(r.screen, ops)
	if err != nil {
		panic(err)
	}
	r.screen = applied
	r.batches = append(r.batches, ops)
}

func (r *recordingRenderer) RenderError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func newTestPresenter() (*Presenter, *recordingRenderer) {
	r := &recordingRenderer{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(r, log), r
}

func TestPresenter_FirstSnapshotAlwaysRenders(t *testing.T) {
	p, r := newTestPresenter()
	assert.False(t, p.Loaded())

	ops := p.OnCoursesUpdated(nil)

	assert.Empty(t, ops)
	assert.True(t, p.Loaded())
	require.Len(t, r.batches, 1)
	assert.Empty(t, r.batches[0])
}

func TestPresenter_RedeliverySkipsRender(t *testing.T) {
	p, r := newTestPresenter()

	p.OnCoursesUpdated(rows("a", "b"))
	ops := p.OnCoursesUpdated(rows("a", "b"))

	assert.Empty(t, ops)
	assert.Len(t, r.batches, 1)
}

func TestPresenter_ScreenFollowsSnapshots(t *testing.T) {
	p, r := newTestPresenter()

	snapshots := [][]course.Course{
		rows("a"),
		rows("b", "a"),
		{row("b", "Course b"), row("a", "renamed")},
		rows("c", "a"),
		nil,
	}

	for _, snap := range snapshots {
		p.OnCoursesUpdated(snap)
		if len(snap) == 0 {
			assert.Empty(t, r.screen)
		} else {
			assert.Equal(t, snap, r.screen)
		}
		assert.Equal(t, len(snap), len(p.Rows()))
	}
}

func TestPresenter_OwnsItsSnapshot(t *testing.T) {
	p, _ := newTestPresenter()

	snap := rows("a", "b")
	p.OnCoursesUpdated(snap)
	snap[0].Name = "mutated by caller"

	assert.Equal(t, "Course a", p.Rows()[0].Name)
}

func TestPresenter_OnErrorKeepsRows(t *testing.T) {
	p, r := newTestPresenter()
	p.OnCoursesUpdated(rows("a"))

	boom := errors.New("boom")
	p.OnError(boom)

	require.Len(t, r.errs, 1)
	assert.ErrorIs(t, r.errs[0], boom)
	assert.Len(t, p.Rows(), 1)
}

func TestPresenter_Reset(t *testing.T) {
	p, r := newTestPresenter()
	p.OnCoursesUpdated(rows("a"))

	p.Reset()

	assert.False(t, p.Loaded())
	assert.Empty(t, p.Rows())

	ops := p.OnCoursesUpdated(rows("a"))
	assert.Len(t, ops, 1)
	assert.Len(t, r.batches, 2)
}
