package presenter

import (
	"sync"

	"golang.org/x/exp/slog"

	"coursekeeper/internal/domain/course"
)

// Renderer draws the list. rows is the full list after ops were applied.
type Renderer interface {
	Render(ops []Op, rows []course.Course)
	RenderError(err error)
}

// Presenter keeps the last rendered snapshot and forwards only the changes
// of each new one to its Renderer.
type Presenter struct {
	mu       sync.Mutex
	rendered []course.Course
	loaded   bool

	renderer Renderer
	log      *slog.Logger
}

func New(renderer Renderer, log *slog.Logger) *Presenter {
	return &Presenter{
		renderer: renderer,
		log:      log.With("component", "course_presenter"),
	}
}

// OnCoursesUpdated diffs next against the rendered snapshot, replaces the
// snapshot and renders. The first snapshot is always rendered, even when
// empty; later snapshots that change nothing are not.
func (p *Presenter) OnCoursesUpdated(next []course.Course) []Op {
	p.mu.Lock()
	defer p.mu.Unlock()

	ops := Diff(p.rendered, next)
	first := !p.loaded

	p.rendered = append([]course.Course(nil), next...)
	p.loaded = true

	if len(ops) == 0 && !first {
		p.log.Debug("snapshot unchanged", "count", len(next))
		return nil
	}

	p.log.Debug("rendering snapshot", "count", len(next), "ops", len(ops))
	p.renderer.Render(ops, append([]course.Course(nil), p.rendered...))
	return ops
}

// OnError forwards a subscription failure to the renderer. The rendered
// snapshot is kept so a later subscription diffs against what is on screen.
func (p *Presenter) OnError(err error) {
	p.log.Error("course subscription failed", "error", err)
	p.renderer.RenderError(err)
}

// Rows returns a copy of the rendered snapshot.
func (p *Presenter) Rows() []course.Course {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]course.Course(nil), p.rendered...)
}

// Loaded reports whether at least one snapshot was rendered.
func (p *Presenter) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Reset forgets the rendered snapshot.
func (p *Presenter) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rendered = nil
	p.loaded = false
}
