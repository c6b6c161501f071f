// Package sqlite keeps collections in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"coursekeeper/internal/store"
)

type Storage struct {
	db *sql.DB

	// mu orders commit+publish pairs so subscribers see changes in commit order.
	mu     sync.Mutex
	closed bool

	hub  *store.Hub
	keys *store.KeyGenerator
	log  *slog.Logger
	now  func() time.Time
}

var _ store.Client = (*Storage)(nil)

func New(path string, log *slog.Logger) (*Storage, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Storage{
		db:   db,
		hub:  store.NewHub(),
		keys: store.NewKeyGenerator(),
		log:  log.With("component", "sqlite_store", "file", path),
		now:  time.Now,
	}

	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return s, nil
}

func (s *Storage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS nodes (
			path TEXT NOT NULL,
			node_key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (path, node_key)
		);
	`)
	return err
}

func (s *Storage) Subscribe(ctx context.Context, path string) (*store.Subscription, error) {
	if err := store.ValidatePath(path); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, store.ErrClosed
	}

	snap, err := s.snapshot(ctx, path)
	if err != nil {
		return nil, err
	}

	sub := s.hub.Add(path)
	s.hub.Deliver(sub, snap)
	s.log.Debug("subscription added", "path", path, "token", sub.Token())
	return sub, nil
}

func (s *Storage) Unsubscribe(path string, token store.Token) error {
	if s.hub.Remove(path, token) {
		s.log.Debug("subscription removed", "path", path, "token", token)
	}
	return nil
}

func (s *Storage) Write(ctx context.Context, path, key string, value any) error {
	if err := check(path, key); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	return s.mutate(ctx, path, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO nodes (path, node_key, value, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (path, node_key) DO UPDATE
			SET value = excluded.value, updated_at = excluded.updated_at
		`, path, key, string(raw), s.now().UnixMilli())
		return err
	})
}

func (s *Storage) Remove(ctx context.Context, path, key string) error {
	if err := check(path, key); err != nil {
		return err
	}

	return s.mutate(ctx, path, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE path = ? AND node_key = ?`, path, key)
		return err
	})
}

func (s *Storage) ReadOnce(ctx context.Context, path, key string) (store.Child, bool, error) {
	if err := check(path, key); err != nil {
		return store.Child{}, false, err
	}

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM nodes WHERE path = ? AND node_key = ?`, path, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Child{}, false, nil
	}
	if err != nil {
		return store.Child{}, false, fmt.Errorf("read %s/%s: %w", path, key, err)
	}
	return store.Child{Key: key, Value: json.RawMessage(value)}, true, nil
}

func (s *Storage) GenerateKey(path string) (string, error) {
	if err := store.ValidatePath(path); err != nil {
		return "", err
	}
	return s.keys.Next()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.hub.CancelAll(store.ErrClosed)
	return s.db.Close()
}

// mutate runs fn and publishes the new state of path to its subscribers.
func (s *Storage) mutate(ctx context.Context, path string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	if err := fn(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if s.hub.Len(path) == 0 {
		return nil
	}
	snap, err := s.snapshot(ctx, path)
	if err != nil {
		// the change is committed; listeners that cannot be refreshed are dropped
		s.log.Error("failed to refresh subscribers", "path", path, "error", err)
		s.hub.Cancel(path, fmt.Errorf("%w: %v", store.ErrCancelled, err))
		return nil
	}
	s.hub.Publish(snap)
	return nil
}

func (s *Storage) snapshot(ctx context.Context, path string) (store.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT node_key, value FROM nodes WHERE path = ? ORDER BY node_key`, path)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("snapshot %s: %w", path, err)
	}
	defer rows.Close()

	snap := store.Snapshot{Path: path, Children: []store.Child{}}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return store.Snapshot{}, fmt.Errorf("snapshot %s: %w", path, err)
		}
		snap.Children = append(snap.Children, store.Child{Key: key, Value: json.RawMessage(value)})
	}
	if err := rows.Err(); err != nil {
		return store.Snapshot{}, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return snap, nil
}

func check(path, key string) error {
	if err := store.ValidatePath(path); err != nil {
		return err
	}
	return store.ValidateKey(key)
}
