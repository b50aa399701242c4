package database

import (
	"os"
	"path/filepath"

	"fleetbuddy/internal/history"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB opens (creating when needed) the SQLite database at path and
// migrates the schema. ":memory:" gives a private in-memory database.
func InitDB(path string) (*gorm.DB, error) {
	var err error

	if path != ":memory:" {
		// Ensure the parent directory exists
		dbDir := filepath.Dir(path)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})

	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&history.Record{})

	if err != nil {
		return nil, err
	}

	return db, nil
}

func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()

	if err != nil {
		return err
	}

	return sqlDB.Close()
}
