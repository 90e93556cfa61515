package todo_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timada-org/todo/internal/app/todo"
	"github.com/timada-org/todo/internal/core"
)

var fixtures = []todo.Todo{
	{ID: 2, Task: "walk dog", Category: "Home", Priority: todo.PriorityLow},
	{ID: 5, Task: "pay rent", Done: true, Category: "General", DueDate: "2024-05-01", Priority: todo.PriorityHigh},
	{ID: 9, Task: "buy milk", Category: "Shopping", Priority: todo.PriorityMedium},
}

func TestJSONFile(t *testing.T) {
	t.Run("missing file loads empty", func(t *testing.T) {
		f := todo.NewJSONFile(filepath.Join(t.TempDir(), "todos.json"))

		todos, err := f.Load()
		require.NoError(t, err)
		assert.Empty(t, todos)
	})

	t.Run("round trip keeps order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "todos.json")
		f := todo.NewJSONFile(path)

		require.NoError(t, f.Save(fixtures))

		todos, err := f.Load()
		require.NoError(t, err)
		assert.Equal(t, fixtures, todos)

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("flat objects", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "todos.json")
		require.NoError(t, todo.NewJSONFile(path).Save(fixtures[1:2]))

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var raw []map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, []map[string]any{{
			"id":       float64(5),
			"task":     "pay rent",
			"done":     true,
			"category": "General",
			"due_date": "2024-05-01",
			"priority": "High",
		}}, raw)
	})

	t.Run("empty collection", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "todos.json")
		require.NoError(t, todo.NewJSONFile(path).Save(nil))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(data))
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "todos.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := todo.NewJSONFile(path).Load()
		require.Error(t, err)

		_, err = todo.NewStore(todo.NewJSONFile(path), zerolog.Nop())
		require.Error(t, err)
	})
}

func TestSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.db")

	f, err := todo.OpenSQLiteFile(path)
	require.NoError(t, err)

	todos, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, todos)

	require.NoError(t, f.Save(fixtures))

	todos, err = f.Load()
	require.NoError(t, err)
	assert.Equal(t, fixtures, todos)

	t.Run("save replaces rows", func(t *testing.T) {
		require.NoError(t, f.Save(fixtures[:1]))

		todos, err := f.Load()
		require.NoError(t, err)
		assert.Equal(t, fixtures[:1], todos)

		require.NoError(t, f.Save(nil))

		todos, err = f.Load()
		require.NoError(t, err)
		assert.Empty(t, todos)
	})

	t.Run("reopen", func(t *testing.T) {
		require.NoError(t, f.Save(fixtures))
		require.NoError(t, f.Close())

		reopened, err := todo.OpenSQLiteFile(path)
		require.NoError(t, err)
		defer reopened.Close()

		todos, err := reopened.Load()
		require.NoError(t, err)
		assert.Equal(t, fixtures, todos)
	})
}

func TestOpenPersistence(t *testing.T) {
	dir := t.TempDir()

	p, err := todo.OpenPersistence(core.Storage{Driver: core.StorageJSON, Path: filepath.Join(dir, "todos.json")})
	require.NoError(t, err)
	assert.IsType(t, &todo.JSONFile{}, p)

	p, err = todo.OpenPersistence(core.Storage{Driver: core.StorageSQLite, Path: filepath.Join(dir, "todos.db")})
	require.NoError(t, err)
	assert.IsType(t, &todo.SQLiteFile{}, p)
	require.NoError(t, p.Close())

	_, err = todo.OpenPersistence(core.Storage{Driver: "redis", Path: "x"})
	require.ErrorIs(t, err, todo.ErrUnknownDriver)
}
