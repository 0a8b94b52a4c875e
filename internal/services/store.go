package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-job-monitor/internal/discord"
	"github.com/tbourn/go-job-monitor/internal/domain"
	"github.com/tbourn/go-job-monitor/internal/tasks"
)

// RecordStore is the persistence contract shared by the PostgREST client
// (internal/postgrest) and the local GORM store (internal/repo).
type RecordStore interface {
	InsertError(ctx context.Context, rec *domain.ErrorRecord) (int64, error)
	InsertRun(ctx context.Context, rec *domain.RunRecord) error
	ListErrors(ctx context.Context, f domain.ErrorFilter) ([]domain.ErrorRecord, error)
	SetErrorStatus(ctx context.Context, ids []int64, upd domain.StatusUpdate) error
	DeleteErrors(ctx context.Context, ids []int64) error
	DeleteErrorsByDay(ctx context.Context, day string, statuses []domain.ErrorStatus) (int64, error)
	ListAuditConfigs(ctx context.Context) ([]domain.AuditConfig, error)
	CountRows(ctx context.Context, q domain.CountQuery) (int64, error)
}

// AuditConfigWriter is implemented by stores that accept audit rows.
type AuditConfigWriter interface {
	InsertAuditConfig(ctx context.Context, cfg *domain.AuditConfig) error
}

// Messenger delivers chat messages.
type Messenger interface {
	SendMessage(ctx context.Context, channelID string, msg discord.Message) error
	EditOriginal(ctx context.Context, token string, msg discord.Message) error
}

// JobInvoker re-runs a monitored job for a business day.
type JobInvoker interface {
	Invoke(ctx context.Context, name, businessDay string) error
}

// Submitter schedules detached background work.
type Submitter interface {
	Submit(name string, fn tasks.Func) error
}

// loggerFrom returns the logger carried by ctx, or the global logger.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	return tasks.Logger(ctx)
}
