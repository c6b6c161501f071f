// Package storage opens the store backend the server is configured with.
package storage

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"coursekeeper/internal/app/server/config"
	"coursekeeper/internal/infrastructure/storage/postgres"
	"coursekeeper/internal/infrastructure/storage/sqlite"
	"coursekeeper/internal/store"
	"coursekeeper/internal/store/memory"
)

// Open returns the store.Client selected by STORE_BACKEND.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Client, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.New(log), nil
	case config.BackendSQLite:
		s, err := sqlite.New(cfg.Store.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return s, nil
	case config.BackendPostgres:
		s, err := postgres.New(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
