package db

import (
	"fmt"
	"time"
	"weight_tracker/internal/domain" // Importing domain models

	"github.com/glebarez/sqlite" // Pure Go SQLite driver for GORM
	"github.com/sirupsen/logrus" // Logrus for GORM's logger
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger interface
)

// MemoryDSN opens a private in-memory database that disappears with the process
const MemoryDSN = "file::memory:"

// Open connects to SQLite and migrates the schema. GORM logs go through logrus.
func Open(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	gormLogger := logger.New(log, logger.Config{
		SlowThreshold:             200 * time.Millisecond, // Warn on slow queries
		LogLevel:                  gormLogLevel(log.GetLevel()),
		IgnoreRecordNotFoundError: true, // Not found is a normal outcome for lookups
	})
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger}) // Open a connection to the database
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	// Each connection to file::memory: is its own database, so keep exactly one
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing constraints, columns and indexes
	if err := db.AutoMigrate(&domain.User{}, &domain.Client{}, &domain.WeightEntry{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.Debug("Migration completed.") // Log successful migration
	return nil
}

// gormLogLevel maps the application log level onto GORM's coarser levels
func gormLogLevel(level logrus.Level) logger.LogLevel {
	switch {
	case level >= logrus.DebugLevel:
		return logger.Info // Log every statement
	case level >= logrus.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}
