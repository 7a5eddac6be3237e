package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewMemoryStore opens a migrated in-memory SQLite database. Each name gets
// its own database, so tests can run side by side.
func NewMemoryStore(name string) (*GORMStore, error) {
	name = strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(name)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// keep the database alive for the lifetime of the store
	sqlDB.SetMaxOpenConns(1)

	store := &GORMStore{db: db}
	if err := store.Init(); err != nil {
		return nil, err
	}
	return store, nil
}
