package course

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"coursekeeper/internal/store"
)

// Subscription is the handle returned by SubscribeAll.
type Subscription struct {
	repo  *Repository
	inner *store.Subscription

	detached atomic.Bool
	once     sync.Once
	done     chan struct{}

	deliveries atomic.Int64
	skipped    atomic.Int64
}

func newSubscription(repo *Repository, inner *store.Subscription) *Subscription {
	return &Subscription{
		repo:  repo,
		inner: inner,
		done:  make(chan struct{}),
	}
}

// Done is closed once no further callback will run.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Deliveries counts onUpdate calls made so far.
func (s *Subscription) Deliveries() int64 {
	return s.deliveries.Load()
}

// Skipped counts children dropped because they failed to decode, summed over
// every delivery.
func (s *Subscription) Skipped() int64 {
	return s.skipped.Load()
}

func (s *Subscription) release(unregister func()) {
	s.once.Do(func() {
		s.detached.Store(true)
		unregister()
	})
}

func (s *Subscription) run(ctx context.Context, onUpdate func([]Course), onError func(error)) {
	defer close(s.done)

	for {
		select {
		case ev, ok := <-s.inner.Events():
			if !ok {
				return
			}
			if s.detached.Load() {
				continue
			}
			if ev.Err != nil {
				s.release(func() {})
				s.repo.log.Error("course listener cancelled", "token", s.inner.Token(), "error", ev.Err)
				onError(fmt.Errorf("%w: %w", ErrCancelled, ev.Err))
				return
			}

			courses, skipped := s.repo.decode(ev.Snapshot)
			s.skipped.Add(int64(skipped))
			s.deliveries.Add(1)
			s.repo.log.Debug("delivering courses", "count", len(courses), "skipped", skipped)
			onUpdate(courses)

		case <-ctx.Done():
			s.repo.Unsubscribe(s)
			return
		}
	}
}
