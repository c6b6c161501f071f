// Package postgres keeps collections in PostgreSQL and pushes changes to
// subscribers through LISTEN/NOTIFY, so several store hosts can share one
// database.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"coursekeeper/internal/app/server/config"
	"coursekeeper/internal/infrastructure/migration"
	"coursekeeper/internal/store"
)

const (
	notifyChannel = "coursekeeper_nodes"
	retryDelay    = 2 * time.Second
)

type Storage struct {
	pool *pgxpool.Pool

	// mu orders snapshot reads with hub registration and publishing.
	mu     sync.Mutex
	closed bool

	hub  *store.Hub
	keys *store.KeyGenerator
	log  *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

var _ store.Client = (*Storage)(nil)

// New подключается к БД, накатывает миграции и запускает слушателя уведомлений.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Storage, error) {
	pool, err := pgxpool.New(ctx, cfg.DB.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	mg := migration.NewMigration(cfg, migration.DefaultEngine)
	if err := mg.Up(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	s := NewWithPool(pool, log)
	s.log.Info("connected", "schema_version", mg.Version())
	return s, nil
}

// NewWithPool wraps an existing pool whose schema is already migrated.
func NewWithPool(pool *pgxpool.Pool, log *slog.Logger) *Storage {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Storage{
		pool:   pool,
		hub:    store.NewHub(),
		keys:   store.NewKeyGenerator(),
		log:    log.With("component", "postgres_store"),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.listen(ctx)
	return s
}

func (s *Storage) Pool() *pgxpool.Pool {
	return s.pool
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

	sub := s.hub.Add(path)
	snap, err := s.snapshot(ctx, path)
	if err != nil {
		s.hub.Remove(path, sub.Token())
		return nil, err
	}
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

	return s.mutate(ctx, path, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO nodes (path, node_key, value, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (path, node_key) DO UPDATE
			SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
			path, key, string(raw), time.Now().UnixMilli())
		return err
	})
}

func (s *Storage) Remove(ctx context.Context, path, key string) error {
	if err := check(path, key); err != nil {
		return err
	}

	return s.mutate(ctx, path, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM nodes WHERE path = $1 AND node_key = $2`, path, key)
		return err
	})
}

func (s *Storage) ReadOnce(ctx context.Context, path, key string) (store.Child, bool, error) {
	if err := check(path, key); err != nil {
		return store.Child{}, false, err
	}

	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM nodes WHERE path = $1 AND node_key = $2`, path, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
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
	return s.pool.Ping(ctx)
}

func (s *Storage) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	<-s.done
	s.hub.CancelAll(store.ErrClosed)
	s.pool.Close()
	return nil
}

// mutate commits fn together with a notification for path. Subscribers are
// refreshed by the listener, including those of other hosts.
func (s *Storage) mutate(ctx context.Context, path string, fn func(tx pgx.Tx) error) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return store.ErrClosed
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, path)
		return err
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s *Storage) listen(ctx context.Context) {
	defer close(s.done)

	for {
		err := s.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}

		// notifications may have been lost, listeners cannot trust their state
		s.log.Error("notification listener failed", "error", err)
		s.hub.CancelAll(fmt.Errorf("%w: %v", store.ErrCancelled, err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}

func (s *Storage) listenOnce(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{notifyChannel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.log.Debug("listening for changes", "channel", notifyChannel)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		s.refresh(ctx, n.Payload)
	}
}

func (s *Storage) refresh(ctx context.Context, path string) {
	if s.hub.Len(path) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.snapshot(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Error("failed to refresh subscribers", "path", path, "error", err)
		s.hub.Cancel(path, fmt.Errorf("%w: %v", store.ErrCancelled, err))
		return
	}
	s.hub.Publish(snap)
}

func (s *Storage) snapshot(ctx context.Context, path string) (store.Snapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT node_key, value FROM nodes WHERE path = $1 ORDER BY node_key`, path)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("snapshot %s: %w", path, err)
	}

	children, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Child, error) {
		var key, value string
		if err := row.Scan(&key, &value); err != nil {
			return store.Child{}, err
		}
		return store.Child{Key: key, Value: json.RawMessage(value)}, nil
	})
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("snapshot %s: %w", path, err)
	}
	if children == nil {
		children = []store.Child{}
	}
	return store.Snapshot{Path: path, Children: children}, nil
}

func check(path, key string) error {
	if err := store.ValidatePath(path); err != nil {
		return err
	}
	return store.ValidateKey(key)
}
