package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookscanner/internal/config"
	"github.com/mrlokans/bookscanner/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the configured driver and migrates the schema.
func NewDatabase(cfg config.Database) (*Database, error) {
	dialector, target, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&entities.Book{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully (%s: %s)", cfg.Driver, target)

	return &Database{DB: db}, nil
}

// NewSQLiteDatabase is a shorthand for a local SQLite file with quiet logging.
func NewSQLiteDatabase(path string) (*Database, error) {
	return NewDatabase(config.Database{
		Driver:   config.DatabaseDriverSQLite,
		Path:     path,
		LogLevel: "silent",
	})
}

func dialectorFor(cfg config.Database) (gorm.Dialector, string, error) {
	switch cfg.Driver {
	case config.DatabaseDriverSQLite, "":
		if cfg.Path == "" {
			return nil, "", fmt.Errorf("sqlite database path is not set")
		}
		return sqlite.Open(cfg.Path), cfg.Path, nil
	case config.DatabaseDriverPostgres:
		if cfg.DSN == "" {
			return nil, "", fmt.Errorf("postgres DSN is not set")
		}
		// Avoid logging credentials
		return postgres.Open(cfg.DSN), "dsn", nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Ping checks connectivity of the underlying connection pool.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
