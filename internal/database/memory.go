// internal/database/memory.go
package database

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/fashion-storefront/internal/config"
)

// NewInMemory opens a private, migrated in-memory SQLite database with
// foreign keys enforced. Each call returns an independent database.
func NewInMemory() (*gorm.DB, error) {
	name := uuid.NewString()
	db, err := Initialize(config.DatabaseConfig{
		Driver:   "sqlite",
		URL:      fmt.Sprintf("file:%s?mode=memory&_pragma=foreign_keys(1)", name),
		LogLevel: "silent",
	})
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(db); err != nil {
		Close(db)
		return nil, err
	}
	return db, nil
}
