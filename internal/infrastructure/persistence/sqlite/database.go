// Package sqlite provides SQLite database setup for the local store
package sqlite

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormModels "github.com/alchemorsel/companion/internal/infrastructure/persistence/gorm"
)

// SetupDatabase opens the embedded database and declares all collections.
// Migration is idempotent and additive: re-running it, or running a newer
// schema version, never destroys data in existing collections.
func SetupDatabase(dbPath string, logLevel logger.LogLevel) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&gormModels.RecipeModel{},
		&gormModels.FavoriteModel{},
		&gormModels.ShoppingListModel{},
		&gormModels.ChatMessageModel{},
		&gormModels.ChatSessionModel{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
