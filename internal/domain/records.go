// Package domain defines the records exchanged with the record store: filed
// job failures, successful run markers, and the audit configuration rows that
// drive the daily audit report. The types carry both JSON tags (PostgREST wire
// format) and GORM tags (local SQLite store) so a single model serves both
// store backends.
package domain

import "time"

// ErrorStatus is the lifecycle state of a filed job failure.
//
// A record is created as StatusPending, announced (StatusNotified), picked up
// by a retry (StatusRetrying) and then either deleted (resolved) or reset to
// StatusPending. There is no stored "resolved" value: deletion is resolution.
type ErrorStatus string

const (
	StatusPending  ErrorStatus = "pending"
	StatusNotified ErrorStatus = "notified"
	StatusRetrying ErrorStatus = "retrying"
)

// Unresolved lists the statuses an operator can still act on from chat.
var Unresolved = []ErrorStatus{StatusPending, StatusNotified}

// Valid reports whether s is one of the known lifecycle states.
func (s ErrorStatus) Valid() bool {
	switch s {
	case StatusPending, StatusNotified, StatusRetrying:
		return true
	}
	return false
}

// ErrorRecord is a single captured job failure.
//
// Fields:
//   - ID: assigned by the store on insert.
//   - FunctionName: the job that failed; used to re-invoke it on retry.
//   - BusinessDay: the date (YYYY-MM-DD) the job was processing, which is not
//     necessarily the date it ran.
//   - Status: see ErrorStatus.
//   - RetriedAt: stamped on every status flip performed by a retry.
type ErrorRecord struct {
	ID           int64       `json:"id,omitempty"          gorm:"primaryKey;autoIncrement"`
	ProjectName  string      `json:"project_name"          gorm:"type:varchar(255);not null;default:''"`
	FunctionName string      `json:"function_name"         gorm:"type:varchar(255);not null;index"`
	ErrorMessage string      `json:"error_message"         gorm:"type:text;not null"`
	ErrorStack   *string     `json:"error_stack"           gorm:"type:text"`
	BusinessDay  string      `json:"business_day"          gorm:"type:char(10);not null;index:idx_errors_day_status,priority:1"`
	OccurredAt   time.Time   `json:"occurred_at"           gorm:"not null"`
	Status       ErrorStatus `json:"status"                gorm:"type:varchar(16);not null;index:idx_errors_day_status,priority:2;check:status IN ('pending','notified','retrying')"`
	RetriedAt    *time.Time  `json:"retried_at,omitempty"`
}

// RunRecord marks a successful job execution. Append-only.
type RunRecord struct {
	ID           int64     `json:"-"             gorm:"primaryKey;autoIncrement"`
	ProjectName  string    `json:"project_name"  gorm:"type:varchar(255);not null;default:''"`
	FunctionName string    `json:"function_name" gorm:"type:varchar(255);not null;index"`
	BusinessDay  string    `json:"business_day"  gorm:"type:char(10);not null;index"`
	RecordCount  int       `json:"record_count"  gorm:"not null"`
	RanAt        time.Time `json:"ran_at"        gorm:"not null"`
}

// DateColumnType tells the audit how to filter a tracked table by day.
type DateColumnType string

const (
	// DateColumnDate matches rows with an exact calendar date.
	DateColumnDate DateColumnType = "date"
	// DateColumnTimestamp matches rows in the half-open range [day, day+1).
	DateColumnTimestamp DateColumnType = "timestamp"
)

// AuditConfig is one tracked table in the daily audit. FunctionName, when set,
// links the table to the job that loads it so failures can be correlated.
type AuditConfig struct {
	ID             int64          `json:"id,omitempty"     gorm:"primaryKey;autoIncrement"`
	DisplayName    string         `json:"display_name"     gorm:"type:varchar(255);not null"`
	FunctionName   *string        `json:"function_name"    gorm:"type:varchar(255)"`
	TargetTable    string         `json:"target_table"     gorm:"type:varchar(255);not null"`
	DateColumn     string         `json:"date_column"      gorm:"type:varchar(255);not null"`
	DateColumnType DateColumnType `json:"date_column_type" gorm:"type:varchar(16);not null;default:'date'"`
	SortOrder      int            `json:"sort_order"       gorm:"not null;default:0;index"`
	IsActive       bool           `json:"is_active"        gorm:"not null;index"`
}

// LinkedFunction returns the linked job name, or "" when the row is unlinked.
func (c AuditConfig) LinkedFunction() string {
	if c.FunctionName == nil {
		return ""
	}
	return *c.FunctionName
}
