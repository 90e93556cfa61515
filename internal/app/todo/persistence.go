package todo

import (
	"fmt"

	"github.com/timada-org/todo/internal/core"
)

// Persistence loads and saves the whole todo collection at once.
type Persistence interface {
	Load() ([]Todo, error)
	Save(todos []Todo) error
	Close() error
}

func OpenPersistence(storage core.Storage) (Persistence, error) {
	switch storage.Driver {
	case "", core.StorageJSON:
		return NewJSONFile(storage.Path), nil
	case core.StorageSQLite:
		return OpenSQLiteFile(storage.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, storage.Driver)
	}
}
