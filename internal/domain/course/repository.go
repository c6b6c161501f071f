package course

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/exp/slog"

	"coursekeeper/internal/store"
)

// DefaultCollection is the path courses are stored under.
const DefaultCollection = "courses"

// Servicer is what the presentation layer needs from the repository.
type Servicer interface {
	SubscribeAll(ctx context.Context, onUpdate func([]Course), onError func(error)) (*Subscription, error)
	Unsubscribe(sub *Subscription)
	Create(ctx context.Context, c Course) (string, error)
	Update(ctx context.Context, c Course) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Lookup, error)
}

// Repository mediates between the store and the UI. It keeps no state of its
// own: the store is the single source of truth.
type Repository struct {
	client store.Client
	path   string
	now    func() time.Time
	log    *slog.Logger
}

var _ Servicer = (*Repository)(nil)

type Option func(*Repository)

// WithCollection overrides DefaultCollection.
func WithCollection(path string) Option {
	return func(r *Repository) {
		r.path = path
	}
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

func NewRepository(client store.Client, log *slog.Logger, opts ...Option) *Repository {
	r := &Repository{
		client: client,
		path:   DefaultCollection,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = log.With("component", "course_repository", "path", r.path)
	return r
}

// SubscribeAll delivers the whole collection, newest first, every time it
// changes. onUpdate and onError are never called concurrently for one
// subscription. onError is called at most once and ends the subscription.
// Cancelling ctx has the same effect as Unsubscribe.
func (r *Repository) SubscribeAll(ctx context.Context, onUpdate func([]Course), onError func(error)) (*Subscription, error) {
	inner, err := r.client.Subscribe(ctx, r.path)
	if err != nil {
		r.log.Error("failed to subscribe", "error", err)
		return nil, r.storeErr("subscribe", err)
	}

	sub := newSubscription(r, inner)
	go sub.run(ctx, onUpdate, onError)

	r.log.Debug("subscribed to courses", "token", inner.Token())
	return sub, nil
}

// Unsubscribe releases sub. Calling it again, or after the store cancelled
// the subscription, does nothing.
func (r *Repository) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	sub.release(func() {
		if err := r.client.Unsubscribe(r.path, sub.inner.Token()); err != nil {
			r.log.Warn("failed to remove listener", "token", sub.inner.Token(), "error", err)
			return
		}
		r.log.Debug("unsubscribed from courses", "token", sub.inner.Token())
	})
}

// Create stores a new course and returns its key.
func (r *Repository) Create(ctx context.Context, c Course) (string, error) {
	if err := Validate(c); err != nil {
		r.log.Warn("create rejected", "name", c.Name, "error", err)
		return "", err
	}

	key, err := r.client.GenerateKey(r.path)
	if err != nil {
		r.log.Error("failed to generate key", "error", err)
		return "", r.storeErr("generate key", err)
	}
	if key == "" {
		r.log.Error("generated key is empty")
		return "", fmt.Errorf("%w: generate key: empty key", ErrTransport)
	}

	c.ID = key
	c.Timestamp = r.now().UnixMilli()

	if err := r.client.Write(ctx, r.path, key, c); err != nil {
		r.log.Error("failed to create course", "id", key, "name", c.Name, "error", err)
		return "", r.storeErr("create course", err)
	}

	r.log.Info("course created", "id", key, "name", c.Name)
	return key, nil
}

// Update replaces the stored value of an existing course. A zero Timestamp
// keeps the stored one.
func (r *Repository) Update(ctx context.Context, c Course) error {
	if err := ValidateForUpdate(c); err != nil {
		r.log.Warn("update rejected", "id", c.ID, "error", err)
		return err
	}

	child, ok, err := r.client.ReadOnce(ctx, r.path, c.ID)
	if err != nil {
		r.log.Error("failed to verify course existence", "id", c.ID, "error", err)
		return r.storeErr("verify course existence", err)
	}
	if !ok {
		r.log.Warn("course to update does not exist", "id", c.ID)
		return fmt.Errorf("%w: %s", ErrNotFound, c.ID)
	}

	if c.Timestamp == 0 {
		stored, err := Decode(child.Key, child.Value)
		if err != nil {
			r.log.Warn("stored course is unreadable, stamping current time", "id", c.ID, "error", err)
			c.Timestamp = r.now().UnixMilli()
		} else {
			c.Timestamp = stored.Timestamp
		}
	}

	if err := r.client.Write(ctx, r.path, c.ID, c); err != nil {
		r.log.Error("failed to update course", "id", c.ID, "error", err)
		return r.storeErr("update course", err)
	}

	r.log.Info("course updated", "id", c.ID, "name", c.Name)
	return nil
}

// Delete removes an existing course.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		r.log.Warn("delete rejected", "id", id, "error", err)
		return err
	}

	_, ok, err := r.client.ReadOnce(ctx, r.path, id)
	if err != nil {
		r.log.Error("failed to verify course existence", "id", id, "error", err)
		return r.storeErr("verify course existence", err)
	}
	if !ok {
		r.log.Warn("course to delete does not exist", "id", id)
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := r.client.Remove(ctx, r.path, id); err != nil {
		r.log.Error("failed to delete course", "id", id, "error", err)
		return r.storeErr("delete course", err)
	}

	r.log.Info("course deleted", "id", id)
	return nil
}

// GetByID reads a single course. A missing key is a successful Absent result.
func (r *Repository) GetByID(ctx context.Context, id string) (Lookup, error) {
	if err := validateID(id); err != nil {
		return Lookup{}, err
	}

	child, ok, err := r.client.ReadOnce(ctx, r.path, id)
	if err != nil {
		r.log.Error("failed to get course", "id", id, "error", err)
		return Lookup{}, r.storeErr("get course", err)
	}
	if !ok {
		r.log.Debug("course does not exist", "id", id)
		return Absent(), nil
	}

	c, err := Decode(child.Key, child.Value)
	if err != nil {
		r.log.Error("failed to parse course", "id", id, "error", err)
		return Lookup{}, err
	}
	return Found(c), nil
}

// decode turns a raw snapshot into the ordered list handed to subscribers.
// Children that fail to decode are skipped; the returned count says how many.
func (r *Repository) decode(snap store.Snapshot) ([]Course, int) {
	courses := make([]Course, 0, snap.Len())
	skipped := 0
	for _, child := range snap.Children {
		c, err := Decode(child.Key, child.Value)
		if err != nil {
			r.log.Warn("skipping unreadable course", "key", child.Key, "error", err)
			skipped++
			continue
		}
		courses = append(courses, c)
	}

	SortNewestFirst(courses)
	return courses, skipped
}

func (r *Repository) storeErr(op string, err error) error {
	if errors.Is(err, store.ErrInvalidKey) || errors.Is(err, store.ErrInvalidPath) {
		return fmt.Errorf("%w: %s: %w", ErrValidation, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}

// SortNewestFirst orders by Timestamp descending; equal timestamps fall back
// to ID ascending so the order never depends on store iteration.
func SortNewestFirst(courses []Course) {
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].Timestamp != courses[j].Timestamp {
			return courses[i].Timestamp > courses[j].Timestamp
		}
		return courses[i].ID < courses[j].ID
	})
}
