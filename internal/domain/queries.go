package domain

import (
	"regexp"
	"time"
)

// Default table names. The error table can be overridden per deployment.
const (
	DefaultErrorTable = "function_errors"
	DefaultRunTable   = "function_runs"
	DefaultAuditTable = "audit_config"
)

// TableName implements the GORM tabler interface.
func (ErrorRecord) TableName() string { return DefaultErrorTable }

// TableName implements the GORM tabler interface.
func (RunRecord) TableName() string { return DefaultRunTable }

// TableName implements the GORM tabler interface.
func (AuditConfig) TableName() string { return DefaultAuditTable }

// ErrorFilter selects error records. Zero values mean "no constraint"; a
// Limit <= 0 means unbounded. Results are always ordered by business day and
// then occurrence time, oldest first.
type ErrorFilter struct {
	Statuses    []ErrorStatus
	BusinessDay string
	Limit       int
}

// CountQuery asks for the number of rows in Table whose DateColumn falls on Day.
type CountQuery struct {
	Table          string
	DateColumn     string
	DateColumnType DateColumnType
	Day            string
}

// StatusUpdate is the patch applied to a set of error records. RetriedAt is
// written only when non-nil.
type StatusUpdate struct {
	Status    ErrorStatus
	RetriedAt *time.Time
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s is safe to use as a table or column name.
// Audit configuration is operator-supplied and ends up in query paths, so
// anything beyond a plain SQL identifier is rejected.
func ValidIdentifier(s string) bool { return identRe.MatchString(s) }
