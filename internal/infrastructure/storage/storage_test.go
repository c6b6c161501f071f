package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"coursekeeper/internal/app/server/config"
	"coursekeeper/internal/infrastructure/storage/sqlite"
	"coursekeeper/internal/store/memory"
)

func TestOpen(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := &config.Config{Store: config.StoreConfig{Backend: config.BackendMemory}}
		c, err := Open(ctx, cfg, log)
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &memory.Store{}, c)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Config{Store: config.StoreConfig{
			Backend:    config.BackendSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "c.db"),
		}}
		c, err := Open(ctx, cfg, log)
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &sqlite.Storage{}, c)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := &config.Config{Store: config.StoreConfig{Backend: "etcd"}}
		_, err := Open(ctx, cfg, log)
		assert.Error(t, err)
	})
}
