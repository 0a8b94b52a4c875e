package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-job-monitor/internal/domain"
)

// newRepoDB opens a throwaway SQLite file with the monitor schema migrated.
func newRepoDB(t *testing.T, errorTable string) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := AutoMigrate(db, errorTable); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestOpenSQLite_MissingDirectory(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "does-not-exist", "monitor.db")

	db, err := OpenSQLite(bad)
	if err == nil || db != nil {
		t.Fatalf("OpenSQLite(%q) = %v, %v; want error", bad, db, err)
	}
	if !errors.Is(err, fs.ErrNotExist) || !strings.HasPrefix(err.Error(), "sqlite directory:") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOpenSQLite_Tuning(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "monitor.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	pragmas := map[string]string{
		"journal_mode": "wal",
		"busy_timeout": "5000",
	}
	for name, want := range pragmas {
		var got string
		if err := db.Raw("PRAGMA " + name).Row().Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", name, err)
		}
		if strings.ToLower(got) != want {
			t.Errorf("PRAGMA %s = %q, want %q", name, got, want)
		}
	}
	if n := sqlDB.Stats().MaxOpenConnections; n != sqliteMaxConns {
		t.Fatalf("MaxOpenConnections = %d, want %d", n, sqliteMaxConns)
	}
}

func TestAutoMigrate_ErrorTableName(t *testing.T) {
	tests := []struct {
		name, table, want string
	}{
		{"default", "", domain.DefaultErrorTable},
		{"renamed", "job_errors", "job_errors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newRepoDB(t, tt.table).Migrator()
			if !m.HasTable(tt.want) {
				t.Fatalf("error table %q missing", tt.want)
			}
			if tt.want != domain.DefaultErrorTable && m.HasTable(domain.DefaultErrorTable) {
				t.Fatal("default error table created alongside the renamed one")
			}
			for _, model := range []any{&domain.RunRecord{}, &domain.AuditConfig{}} {
				if !m.HasTable(model) {
					t.Fatalf("table for %T missing", model)
				}
			}
		})
	}
}

func TestAutoMigrate_Idempotent(t *testing.T) {
	db := newRepoDB(t, "")
	if err := AutoMigrate(db, ""); err != nil {
		t.Fatalf("second AutoMigrate: %v", err)
	}
}

func TestErrorTable_RejectsUnknownStatus(t *testing.T) {
	db := newRepoDB(t, "")
	rec := &domain.ErrorRecord{
		FunctionName: "sync-orders",
		ErrorMessage: "boom",
		BusinessDay:  "2024-03-01",
		OccurredAt:   time.Now().UTC(),
		Status:       domain.ErrorStatus("resolved"),
	}
	if err := CreateError(db, domain.DefaultErrorTable, rec); err == nil {
		t.Fatal("deletion is resolution; a stored \"resolved\" status must be rejected")
	}
}
