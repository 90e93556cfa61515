package core_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timada-org/todo/internal/core"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		cfg, err := core.NewConfig("")
		require.NoError(t, err)

		assert.Equal(t, core.EnvDev, cfg.Env)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, core.StorageJSON, cfg.Storage.Driver)
		assert.Equal(t, "data/todos.json", cfg.Storage.Path)
		assert.False(t, cfg.Broker.Enabled())
		assert.Equal(t, 5*time.Second, cfg.GracePeriod())
	})

	t.Run("yaml values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		writeFile(t, path, `
env: prod
addr: "127.0.0.1:9000"
shutdown_timeout: 2s
storage:
  driver: SQLite
  path: /var/lib/todo/todos.db
broker:
  url: pulsar://localhost:6650
`)

		cfg, err := core.NewConfig(path)
		require.NoError(t, err)

		assert.Equal(t, core.EnvProd, cfg.Env)
		assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
		assert.Equal(t, core.StorageSQLite, cfg.Storage.Driver)
		assert.Equal(t, "/var/lib/todo/todos.db", cfg.Storage.Path)
		assert.True(t, cfg.Broker.Enabled())
		assert.Equal(t, "todos", cfg.Broker.Topic)
		assert.Equal(t, 2*time.Second, cfg.GracePeriod())
	})

	t.Run("local file overrides main file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yml")
		writeFile(t, path, "addr: \":9000\"\n")
		writeFile(t, filepath.Join(dir, "config.local.yml"), "addr: \":9001\"\n")

		cfg, err := core.NewConfig(path)
		require.NoError(t, err)
		assert.Equal(t, ":9001", cfg.Addr)
	})

	t.Run("environment placeholders", func(t *testing.T) {
		t.Setenv("TODO_TEST_ADDR", ":7000")

		path := filepath.Join(t.TempDir(), "config.yml")
		writeFile(t, path, "addr: ${TODO_TEST_ADDR|:8080}\n")

		cfg, err := core.NewConfig(path)
		require.NoError(t, err)
		assert.Equal(t, ":7000", cfg.Addr)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := core.NewConfig(filepath.Join(t.TempDir(), "nope.yml"))
		require.Error(t, err)
	})

	t.Run("unknown storage driver", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		writeFile(t, path, "storage:\n  driver: redis\n")

		_, err := core.NewConfig(path)
		require.ErrorContains(t, err, "unknown storage driver")
	})

	t.Run("unknown env", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		writeFile(t, path, "env: staging\n")

		_, err := core.NewConfig(path)
		require.ErrorContains(t, err, "unknown env")
	})

	t.Run("invalid shutdown timeout", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		writeFile(t, path, "shutdown_timeout: soon\n")

		_, err := core.NewConfig(path)
		require.ErrorContains(t, err, "shutdown_timeout")
	})
}
