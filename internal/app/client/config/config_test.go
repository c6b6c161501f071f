package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	chdir(t, t.TempDir())
	for _, k := range []string{"APP_ENV", "SERVER_ADDRESS", "LOG_LEVEL", "CONFIG_DIR", "STORE_BACKEND", "SQLITE_PATH", "COLLECTION_PATH"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendRemote, cfg.Backend)
	assert.Equal(t, defaultServerAddress, cfg.ServerAddress)
	assert.Equal(t, "courses", cfg.Collection)
	assert.Equal(t, filepath.Join(dir, defaultSQLiteFile), cfg.SQLitePath)
	assert.True(t, cfg.IsLocal())
	assert.False(t, cfg.IsProd())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "SQLITE")
	t.Setenv("SQLITE_PATH", "/var/lib/courses.db")
	t.Setenv("COLLECTION_PATH", "semester1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "/var/lib/courses.db", cfg.SQLitePath)
	assert.Equal(t, "semester1", cfg.Collection)
}

func TestLoad_UnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "firebase")

	_, err := Load()
	assert.Error(t, err)
}
