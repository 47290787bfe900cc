package storage

import (
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	platformerrors "hypernasality-server-go/internal/platform/errors"
)

// OpenDatabase opens (creating if needed) the SQLite database holding the
// recordings table and runs schema migration.
func OpenDatabase(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindStorage,
				"storage open", "create data directory", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage,
			"storage open", "open sqlite database", err)
	}

	if err := db.AutoMigrate(&Recording{}); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage,
			"storage open", "migrate recordings table", err)
	}

	return db, nil
}
