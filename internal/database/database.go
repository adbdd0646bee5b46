package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open bootstraps the SQLite registry database. Foreign key enforcement is
// opt-in on SQLite and the comunero -> usuario reference relies on it; WAL
// mode and a busy timeout keep the API and OCR processes from tripping over
// each other on the same file.
func Open(dbPath string) (*gorm.DB, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return db, nil
}
