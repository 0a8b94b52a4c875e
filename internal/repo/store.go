package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-job-monitor/internal/domain"
)

// Store adapts the repository functions to the record-store contract used by
// the services, binding a database handle and the error table name.
type Store struct {
	DB         *gorm.DB
	ErrorTable string
}

// NewStore returns a Store; an empty errorTable selects the default name.
func NewStore(db *gorm.DB, errorTable string) *Store {
	if errorTable == "" {
		errorTable = domain.DefaultErrorTable
	}
	return &Store{DB: db, ErrorTable: errorTable}
}

func (s *Store) InsertError(ctx context.Context, rec *domain.ErrorRecord) (int64, error) {
	if err := CreateError(s.DB.WithContext(ctx), s.ErrorTable, rec); err != nil {
		return 0, err
	}
	return rec.ID, nil
}

func (s *Store) InsertRun(ctx context.Context, rec *domain.RunRecord) error {
	return CreateRun(s.DB.WithContext(ctx), rec)
}

func (s *Store) ListErrors(ctx context.Context, f domain.ErrorFilter) ([]domain.ErrorRecord, error) {
	return ListErrors(s.DB.WithContext(ctx), s.ErrorTable, f)
}

func (s *Store) SetErrorStatus(ctx context.Context, ids []int64, upd domain.StatusUpdate) error {
	return UpdateErrorStatus(s.DB.WithContext(ctx), s.ErrorTable, ids, upd)
}

func (s *Store) DeleteErrors(ctx context.Context, ids []int64) error {
	return DeleteErrors(s.DB.WithContext(ctx), s.ErrorTable, ids)
}

func (s *Store) DeleteErrorsByDay(ctx context.Context, day string, statuses []domain.ErrorStatus) (int64, error) {
	return DeleteErrorsByDay(s.DB.WithContext(ctx), s.ErrorTable, day, statuses)
}

func (s *Store) ListAuditConfigs(ctx context.Context) ([]domain.AuditConfig, error) {
	return ListActiveAuditConfigs(s.DB.WithContext(ctx))
}

func (s *Store) InsertAuditConfig(ctx context.Context, cfg *domain.AuditConfig) error {
	return CreateAuditConfig(s.DB.WithContext(ctx), cfg)
}

func (s *Store) CountRows(ctx context.Context, q domain.CountQuery) (int64, error) {
	return CountRowsOnDay(s.DB.WithContext(ctx), q)
}
