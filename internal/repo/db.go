// Package repo implements the local record store, backed by GORM over a
// pure-Go SQLite driver. It serves development setups and tests; production
// deployments point the monitor at a PostgREST endpoint instead.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-job-monitor/internal/domain"
)

// Jobs, the batcher and the background retries all write concurrently, so
// the file runs in WAL mode and writers wait for the lock instead of failing.
var sqlitePragmas = []string{
	"journal_mode=WAL",
	"synchronous=NORMAL",
	"foreign_keys=ON",
	"busy_timeout=5000",
}

const (
	sqliteMaxConns    = 10
	sqliteConnIdle    = 5 * time.Minute
	sqliteConnMaxLife = 30 * time.Minute
)

// OpenSQLite opens or creates the store file at path. The parent directory
// must exist. Queries are traced but not logged; failures surface as errors
// to the caller, which logs them with request context.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("sqlite directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	for _, p := range sqlitePragmas {
		if err := db.Exec("PRAGMA " + p).Error; err != nil {
			return nil, fmt.Errorf("sqlite pragma %s: %w", p, err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(sqliteMaxConns)
	sqlDB.SetMaxIdleConns(sqliteMaxConns)
	sqlDB.SetConnMaxIdleTime(sqliteConnIdle)
	sqlDB.SetConnMaxLifetime(sqliteConnMaxLife)
	return db, nil
}

// AutoMigrate creates the three monitor tables. The error table name is
// configurable (ERROR_TABLE); the run and audit tables use fixed names.
func AutoMigrate(db *gorm.DB, errorTable string) error {
	if errorTable == "" {
		errorTable = domain.DefaultErrorTable
	}
	if err := db.Table(errorTable).AutoMigrate(&domain.ErrorRecord{}); err != nil {
		return fmt.Errorf("migrate %s: %w", errorTable, err)
	}
	if err := db.AutoMigrate(&domain.RunRecord{}, &domain.AuditConfig{}); err != nil {
		return fmt.Errorf("migrate run/audit tables: %w", err)
	}
	return nil
}
