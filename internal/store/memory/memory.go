// Package memory is an in-process store.Client. It backs tests and the
// "memory" backend of the store host.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/exp/slog"

	"coursekeeper/internal/store"
)

type Store struct {
	mu     sync.RWMutex
	data   map[string]map[string]json.RawMessage
	closed bool

	hub  *store.Hub
	keys *store.KeyGenerator
	log  *slog.Logger
}

var _ store.Client = (*Store)(nil)

func New(log *slog.Logger) *Store {
	return &Store{
		data: make(map[string]map[string]json.RawMessage),
		hub:  store.NewHub(),
		keys: store.NewKeyGenerator(),
		log:  log.With("component", "memory_store"),
	}
}

func (s *Store) Subscribe(ctx context.Context, path string) (*store.Subscription, error) {
	if err := store.ValidatePath(path); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrClosed
	}

	sub := s.hub.Add(path)
	s.hub.Deliver(sub, s.snapshot(path))
	s.log.Debug("subscription added", "path", path, "token", sub.Token())
	return sub, nil
}

func (s *Store) Unsubscribe(path string, token store.Token) error {
	if s.hub.Remove(path, token) {
		s.log.Debug("subscription removed", "path", path, "token", token)
	}
	return nil
}

func (s *Store) Write(ctx context.Context, path, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return s.WriteRaw(ctx, path, key, raw)
}

// WriteRaw stores raw as is, without checking that it is valid JSON.
func (s *Store) WriteRaw(ctx context.Context, path, key string, raw json.RawMessage) error {
	if err := s.check(ctx, path, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	if s.data[path] == nil {
		s.data[path] = make(map[string]json.RawMessage)
	}
	s.data[path][key] = append(json.RawMessage(nil), raw...)
	s.hub.Publish(s.snapshot(path))
	return nil
}

func (s *Store) Remove(ctx context.Context, path, key string) error {
	if err := s.check(ctx, path, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	delete(s.data[path], key)
	s.hub.Publish(s.snapshot(path))
	return nil
}

func (s *Store) ReadOnce(ctx context.Context, path, key string) (store.Child, bool, error) {
	if err := s.check(ctx, path, key); err != nil {
		return store.Child{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return store.Child{}, false, store.ErrClosed
	}
	raw, ok := s.data[path][key]
	if !ok {
		return store.Child{}, false, nil
	}
	return store.Child{Key: key, Value: raw}, true, nil
}

func (s *Store) GenerateKey(path string) (string, error) {
	if err := store.ValidatePath(path); err != nil {
		return "", err
	}
	return s.keys.Next()
}

// Revoke cancels every subscription of path with err, the way a realtime
// database drops listeners whose read permission was withdrawn.
func (s *Store) Revoke(path string, err error) int {
	return s.hub.Cancel(path, fmt.Errorf("%w: %v", store.ErrCancelled, err))
}

// Subscribers returns the number of live subscriptions on path.
func (s *Store) Subscribers(path string) int {
	return s.hub.Len(path)
}

func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.ErrClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.hub.CancelAll(store.ErrClosed)
	return nil
}

func (s *Store) check(ctx context.Context, path, key string) error {
	if err := store.ValidatePath(path); err != nil {
		return err
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	return ctx.Err()
}

// snapshot must be called with s.mu held.
func (s *Store) snapshot(path string) store.Snapshot {
	children := make([]store.Child, 0, len(s.data[path]))
	for k, v := range s.data[path] {
		children = append(children, store.Child{Key: k, Value: v})
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].Key < children[j].Key
	})
	return store.Snapshot{Path: path, Children: children}
}
