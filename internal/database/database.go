package database

import (
	"fmt"

	"crypto-tracker-go/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase opens the local state database and performs auto-migration.
// User state lives here, so existing tables are never dropped.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&store.StateRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return db, nil
}
