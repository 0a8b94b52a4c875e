// Package repo implements the local record store, backed by GORM. This file
// provides repository functions for error records. The table name is passed
// explicitly because deployments may rename it.
package repo

import (
	"gorm.io/gorm"

	"github.com/tbourn/go-job-monitor/internal/domain"
)

// CreateError inserts rec into table and fills in rec.ID.
func CreateError(db *gorm.DB, table string, rec *domain.ErrorRecord) error {
	rec.ID = 0
	return db.Table(table).Create(rec).Error
}

// ListErrors returns records matching f, ordered (business_day ASC, occurred_at ASC, id ASC).
func ListErrors(db *gorm.DB, table string, f domain.ErrorFilter) ([]domain.ErrorRecord, error) {
	var out []domain.ErrorRecord
	q := db.Table(table)
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.BusinessDay != "" {
		q = q.Where("business_day = ?", f.BusinessDay)
	}
	q = q.Order("business_day ASC, occurred_at ASC, id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// UpdateErrorStatus overwrites the status of every record in ids. RetriedAt
// is written only when set. Missing ids are ignored.
func UpdateErrorStatus(db *gorm.DB, table string, ids []int64, upd domain.StatusUpdate) error {
	if len(ids) == 0 {
		return nil
	}
	cols := map[string]any{"status": upd.Status}
	if upd.RetriedAt != nil {
		cols["retried_at"] = upd.RetriedAt.UTC()
	}
	return db.Table(table).Where("id IN ?", ids).Updates(cols).Error
}

// DeleteErrors removes the records in ids.
func DeleteErrors(db *gorm.DB, table string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Table(table).Where("id IN ?", ids).Delete(&domain.ErrorRecord{}).Error
}

// DeleteErrorsByDay removes records for day whose status is in statuses and
// returns the number of rows deleted.
func DeleteErrorsByDay(db *gorm.DB, table, day string, statuses []domain.ErrorStatus) (int64, error) {
	q := db.Table(table).Where("business_day = ?", day)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	res := q.Delete(&domain.ErrorRecord{})
	return res.RowsAffected, res.Error
}
