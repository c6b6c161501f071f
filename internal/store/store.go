// Package store describes the realtime collection the course layer talks to.
//
// A Client holds flat collections addressed by path. Values are JSON documents
// stored under store-generated keys. Interested parties subscribe to a path and
// receive the full collection every time it changes.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrClosed      = errors.New("store client closed")
	ErrCancelled   = errors.New("subscription cancelled by store")
	ErrInvalidPath = errors.New("invalid collection path")
	ErrInvalidKey  = errors.New("invalid key")
)

// Token identifies one subscription within a path.
type Token string

// Child is one key of a collection together with its stored value.
type Child struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Snapshot is a point in time view of every child of a collection,
// ordered by key.
type Snapshot struct {
	Path     string  `json:"path"`
	Children []Child `json:"children"`
}

// Len returns the number of children.
func (s Snapshot) Len() int {
	return len(s.Children)
}

// Event is one delivery on a subscription. A non-nil Err is terminal: the
// subscription is closed right after it.
type Event struct {
	Snapshot Snapshot
	Err      error
}

// Client is the capability the course repository consumes.
//
// Implementations must not block writers on slow subscribers and may deliver
// the same logical state more than once.
type Client interface {
	Subscribe(ctx context.Context, path string) (*Subscription, error)
	Unsubscribe(path string, token Token) error
	Write(ctx context.Context, path, key string, value any) error
	Remove(ctx context.Context, path, key string) error
	ReadOnce(ctx context.Context, path, key string) (Child, bool, error)
	GenerateKey(path string) (string, error)
	Close() error
}

// ValidatePath accepts only flat collection names.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" || strings.ContainsAny(path, "/.#$[]") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return nil
}

// ValidateKey rejects keys that cannot address a child.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, "/.#$[]") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
