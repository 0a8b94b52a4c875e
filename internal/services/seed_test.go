package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/go-job-monitor/internal/domain"
)

func TestParseAuditSeed_Defaults(t *testing.T) {
	src := `
tables:
  - display_name: Sales
    function_name: sync-sales
    target_table: sales
    date_column: sale_date
    sort_order: 2
  - display_name: " Events "
    target_table: events
    date_column: created_at
    date_column_type: TIMESTAMP
    is_active: false
  - display_name: Blank link
    function_name: "  "
    target_table: t
    date_column: d
`
	got, err := ParseAuditSeed(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 rows, got %d", len(got))
	}

	sales := got[0]
	if sales.LinkedFunction() != "sync-sales" || sales.DateColumnType != domain.DateColumnDate || !sales.IsActive || sales.SortOrder != 2 {
		t.Fatalf("sales: %+v", sales)
	}
	events := got[1]
	if events.DisplayName != "Events" || events.DateColumnType != domain.DateColumnTimestamp || events.IsActive {
		t.Fatalf("events: %+v", events)
	}
	if got[2].FunctionName != nil {
		t.Fatalf("blank function_name must be unlinked")
	}
}

func TestParseAuditSeed_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":        ``,
		"not yaml":     `tables: [`,
		"unknown key":  "tables:\n  - display_name: a\n    target_table: t\n    date_column: d\n    colour: red\n",
		"no table":     "tables:\n  - display_name: a\n    date_column: d\n",
		"no name":      "tables:\n  - target_table: t\n    date_column: d\n",
		"no column":    "tables:\n  - display_name: a\n    target_table: t\n",
		"bad col type": "tables:\n  - display_name: a\n    target_table: t\n    date_column: d\n    date_column_type: week\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAuditSeed(strings.NewReader(src))
			if !errors.Is(err, ErrInvalidSeed) {
				t.Fatalf("want ErrInvalidSeed, got %v", err)
			}
		})
	}
}

type recordingWriter struct {
	got    []string
	failAt int
}

func (w *recordingWriter) InsertAuditConfig(_ context.Context, cfg *domain.AuditConfig) error {
	if len(w.got) == w.failAt {
		return errors.New("insert failed")
	}
	w.got = append(w.got, cfg.DisplayName)
	return nil
}

func TestSeedAuditConfigs(t *testing.T) {
	cfgs := []domain.AuditConfig{{DisplayName: "a"}, {DisplayName: "b"}, {DisplayName: "c"}}

	w := &recordingWriter{failAt: -1}
	n, err := SeedAuditConfigs(context.Background(), w, cfgs)
	if err != nil || n != 3 || strings.Join(w.got, ",") != "a,b,c" {
		t.Fatalf("n=%d err=%v got=%v", n, err, w.got)
	}

	w = &recordingWriter{failAt: 1}
	n, err = SeedAuditConfigs(context.Background(), w, cfgs)
	if err == nil || n != 1 || !strings.Contains(err.Error(), `"b"`) {
		t.Fatalf("n=%d err=%v", n, err)
	}
}
