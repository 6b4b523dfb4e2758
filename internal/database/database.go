package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/fable-exporter/internal/entities"
)

type Database struct {
	DB   *gorm.DB
	Path string
}

// NewDatabase opens (creating if needed) the SQLite file at dbPath and migrates
// the snapshot and run-history tables.
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.StoredBook{},
		&entities.ExportRun{},
		&entities.ExportRunList{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db, Path: dbPath}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetStats returns the number of stored books and recorded runs.
func (d *Database) GetStats() (totalBooks int64, totalRuns int64, err error) {
	err = d.DB.Model(&entities.StoredBook{}).Count(&totalBooks).Error
	if err != nil {
		return
	}
	err = d.DB.Model(&entities.ExportRun{}).Count(&totalRuns).Error
	return
}
