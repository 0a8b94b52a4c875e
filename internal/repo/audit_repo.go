// Package repo implements the local record store, backed by GORM. This file
// covers run markers, audit configuration and the per-day row counts the
// audit report is built from.
package repo

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-job-monitor/internal/businessday"
	"github.com/tbourn/go-job-monitor/internal/domain"
)

// CreateRun appends a successful run marker.
func CreateRun(db *gorm.DB, rec *domain.RunRecord) error {
	return db.Create(rec).Error
}

// ListActiveAuditConfigs returns active audit rows ordered (sort_order ASC, id ASC).
func ListActiveAuditConfigs(db *gorm.DB) ([]domain.AuditConfig, error) {
	var out []domain.AuditConfig
	err := db.Where("is_active = ?", true).Order("sort_order ASC, id ASC").Find(&out).Error
	return out, err
}

// CreateAuditConfig inserts an audit row after checking its identifiers.
func CreateAuditConfig(db *gorm.DB, cfg *domain.AuditConfig) error {
	if !domain.ValidIdentifier(cfg.TargetTable) || !domain.ValidIdentifier(cfg.DateColumn) {
		return fmt.Errorf("repo: invalid identifier %q.%q", cfg.TargetTable, cfg.DateColumn)
	}
	if cfg.DateColumnType == "" {
		cfg.DateColumnType = domain.DateColumnDate
	}
	return db.Create(cfg).Error
}

// CountRowsOnDay counts rows of q.Table whose q.DateColumn falls on q.Day.
// Date columns match exactly; timestamp columns match the half-open range
// [day, day+1) in UTC.
func CountRowsOnDay(db *gorm.DB, q domain.CountQuery) (int64, error) {
	if !domain.ValidIdentifier(q.Table) || !domain.ValidIdentifier(q.DateColumn) {
		return 0, fmt.Errorf("repo: invalid identifier %q.%q", q.Table, q.DateColumn)
	}

	var total int64
	switch q.DateColumnType {
	case domain.DateColumnTimestamp:
		from, err := time.Parse(businessday.Layout, q.Day)
		if err != nil {
			return 0, fmt.Errorf("repo: invalid day %q: %w", q.Day, err)
		}
		stmt := fmt.Sprintf("SELECT COUNT(*) FROM %q WHERE %q >= ? AND %q < ?", q.Table, q.DateColumn, q.DateColumn)
		err = db.Raw(stmt, from.UTC(), from.UTC().AddDate(0, 0, 1)).Scan(&total).Error
		return total, err
	default:
		stmt := fmt.Sprintf("SELECT COUNT(*) FROM %q WHERE %q = ?", q.Table, q.DateColumn)
		err := db.Raw(stmt, q.Day).Scan(&total).Error
		return total, err
	}
}
