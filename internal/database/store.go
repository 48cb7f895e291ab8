package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"studentdash/internal/config"
	"studentdash/internal/model"
)

// Store persists the whole student table. Save replaces everything Load returns.
type Store interface {
	Load(ctx context.Context) ([]model.Student, error)
	Save(ctx context.Context, students []model.Student) error
}

// Open returns the store selected by cfg.StorageDriver.
func Open(cfg *config.Config, log logrus.FieldLogger) (Store, error) {
	switch cfg.StorageDriver {
	case config.DriverCSV:
		log.WithField("path", cfg.DataPath).Info("Using CSV store")
		return NewCSVStore(cfg.DataPath), nil
	case config.DriverSQLite:
		log.WithField("path", cfg.SQLitePath).Info("Using SQLite store")
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		return openGorm(sqlite.Open(cfg.SQLitePath))
	case config.DriverPostgres:
		log.WithField("host", cfg.DBHost).Info("Using Postgres store")
		return openGorm(postgres.Open(cfg.PostgresDSN()))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func openGorm(dialector gorm.Dialector) (Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	return NewGormStore(db)
}
