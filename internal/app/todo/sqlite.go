package todo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteFile stores todos in a single-file SQLite database.
type SQLiteFile struct {
	db *gorm.DB
}

func OpenSQLiteFile(path string) (*SQLiteFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := db.AutoMigrate(&Todo{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	return &SQLiteFile{db: db}, nil
}

func (f *SQLiteFile) Load() ([]Todo, error) {
	todos := []Todo{}
	if err := f.db.Order("id").Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("load todos: %w", err)
	}

	return todos, nil
}

// Save replaces every row in one transaction.
func (f *SQLiteFile) Save(todos []Todo) error {
	return f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Todo{}).Error; err != nil {
			return fmt.Errorf("clear todos: %w", err)
		}

		if len(todos) == 0 {
			return nil
		}

		if err := tx.Create(&todos).Error; err != nil {
			return fmt.Errorf("insert todos: %w", err)
		}

		return nil
	})
}

func (f *SQLiteFile) Close() error {
	db, err := f.db.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
