package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vocab-trainer/internal/config"
	"github.com/vocab-trainer/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // pure-Go driver registered as "sqlite"
)

// Open connects to the configured database and tunes the connection pool.
func Open(cfg config.DatabaseConfig, mode string) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Info)
	if mode == "release" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}
	gormCfg := &gorm.Config{Logger: gormLogger, TranslateError: true}

	switch cfg.Driver {
	case "postgres":
		db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return db, nil
	case "sqlite":
		if dir := filepath.Dir(cfg.DSN); !strings.Contains(cfg.DSN, ":memory:") && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dir, err)
			}
		}
		return OpenSQLite(cfg.DSN, gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// OpenSQLite opens a SQLite database through the pure-Go driver.
// SQLite allows one writer, so the pool is limited to a single connection;
// callers must run everything inside a transaction on the tx handle.
func OpenSQLite(dsn string, gormCfg *gorm.Config) (*gorm.DB, error) {
	if gormCfg == nil {
		gormCfg = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true}
	}
	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: dsn}, gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates or updates the four application tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Card{},
		&models.Highscore{},
		&models.ChatMessage{},
	)
}

// Transactor runs read-modify-write sequences atomically
type Transactor struct {
	db *gorm.DB
}

// NewTransactor creates a new Transactor
func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// InTx runs fn inside a single database transaction. Repositories used by
// fn must be rebound with WithTx(tx).
func (t *Transactor) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}
