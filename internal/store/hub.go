package store

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Subscription is the receiving end of a path registration.
//
// The channel holds at most one pending event. A newer snapshot replaces a
// pending one that was not consumed yet, so a slow consumer always sees the
// latest state and never blocks the writer.
type Subscription struct {
	token  Token
	path   string
	events chan Event

	mu     sync.Mutex
	closed bool
}

func newSubscription(path string) *Subscription {
	return &Subscription{
		token:  Token(uuid.NewString()),
		path:   path,
		events: make(chan Event, 1),
	}
}

func (s *Subscription) Token() Token {
	return s.token
}

func (s *Subscription) Path() string {
	return s.path
}

// Events is closed once the subscription ends, either by Unsubscribe or by a
// terminal error event.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) deliver(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	select {
	case <-s.events:
	default:
	}
	s.events <- ev
	return true
}

// terminate pushes err as the last event and closes the channel.
func (s *Subscription) terminate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case <-s.events:
	default:
	}
	s.events <- Event{Err: err}
	s.closed = true
	close(s.events)
}

// detach drops any pending event and closes the channel silently.
func (s *Subscription) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case <-s.events:
	default:
	}
	s.closed = true
	close(s.events)
}

// Hub keeps the subscriptions of every path and fans snapshots out to them.
// Store implementations embed one and publish after each committed change.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[Token]*Subscription
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[Token]*Subscription),
	}
}

// Add registers a new subscription for path.
func (h *Hub) Add(path string) *Subscription {
	sub := newSubscription(path)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[path] == nil {
		h.subs[path] = make(map[Token]*Subscription)
	}
	h.subs[path][sub.token] = sub
	return sub
}

// Remove detaches the subscription. It reports false when the token is
// unknown, which includes a second call for the same token.
func (h *Hub) Remove(path string, token Token) bool {
	h.mu.Lock()
	sub, ok := h.subs[path][token]
	if ok {
		delete(h.subs[path], token)
		if len(h.subs[path]) == 0 {
			delete(h.subs, path)
		}
	}
	h.mu.Unlock()

	if ok {
		sub.detach()
	}
	return ok
}

// Deliver sends snap to a single subscription, typically the initial state
// right after Add.
func (h *Hub) Deliver(sub *Subscription, snap Snapshot) bool {
	return sub.deliver(Event{Snapshot: snap})
}

// Publish sends snap to every subscription of snap.Path.
func (h *Hub) Publish(snap Snapshot) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, sub := range h.subs[snap.Path] {
		if sub.deliver(Event{Snapshot: snap}) {
			n++
		}
	}
	return n
}

// Terminate ends a single subscription with err. It reports false when the
// token is unknown.
func (h *Hub) Terminate(path string, token Token, err error) bool {
	h.mu.Lock()
	sub, ok := h.subs[path][token]
	if ok {
		delete(h.subs[path], token)
		if len(h.subs[path]) == 0 {
			delete(h.subs, path)
		}
	}
	h.mu.Unlock()

	if ok {
		sub.terminate(err)
	}
	return ok
}

// Cancel terminates every subscription of path with err.
func (h *Hub) Cancel(path string, err error) int {
	h.mu.Lock()
	subs := h.subs[path]
	delete(h.subs, path)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.terminate(err)
	}
	return len(subs)
}

// CancelAll terminates every subscription of every path with err.
func (h *Hub) CancelAll(err error) int {
	n := 0
	for _, path := range h.Paths() {
		n += h.Cancel(path, err)
	}
	return n
}

// Paths lists the paths that currently have subscribers, sorted.
func (h *Hub) Paths() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	paths := make([]string, 0, len(h.subs))
	for p := range h.subs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of live subscriptions on path.
func (h *Hub) Len(path string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[path])
}
