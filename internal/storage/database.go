package storage

import (
	"os"
	"path/filepath"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/encounter"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenAndMigrate opens the sqlite database at the given path, creating
// parent directories as needed, and keeps the schema updated via
// AutoMigrate.
func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	if dir := filepath.Dir(dataSourceName); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(
		&encounter.Encounter{},
		&encounter.CombatState{},
		&encounter.Participant{},
		&encounter.Effect{},
		&encounter.Trigger{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}
