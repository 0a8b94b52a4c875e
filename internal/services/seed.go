// Package services – audit configuration seeding
//
// Audit rows are normally managed in the store directly. For local and dev
// setups they can be loaded from a YAML file:
//
//	tables:
//	  - display_name: Sales
//	    function_name: sync-sales
//	    target_table: sales
//	    date_column: sale_date
//	    date_column_type: date
//	    sort_order: 1
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tbourn/go-job-monitor/internal/domain"
)

// ErrInvalidSeed is returned for seed files with missing or malformed rows.
var ErrInvalidSeed = errors.New("invalid audit seed")

type seedFile struct {
	Tables []seedRow `yaml:"tables"`
}

type seedRow struct {
	DisplayName    string  `yaml:"display_name"`
	FunctionName   *string `yaml:"function_name"`
	TargetTable    string  `yaml:"target_table"`
	DateColumn     string  `yaml:"date_column"`
	DateColumnType string  `yaml:"date_column_type"`
	SortOrder      int     `yaml:"sort_order"`
	IsActive       *bool   `yaml:"is_active"`
}

// ParseAuditSeed decodes a YAML seed. date_column_type defaults to "date"
// and is_active to true.
func ParseAuditSeed(r io.Reader) ([]domain.AuditConfig, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrInvalidSeed)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	out := make([]domain.AuditConfig, 0, len(f.Tables))
	for i, row := range f.Tables {
		cfg, err := row.toConfig()
		if err != nil {
			return nil, fmt.Errorf("%w: tables[%d]: %v", ErrInvalidSeed, i, err)
		}
		out = append(out, cfg)
	}
	return out, nil
}

func (r seedRow) toConfig() (domain.AuditConfig, error) {
	cfg := domain.AuditConfig{
		DisplayName: strings.TrimSpace(r.DisplayName),
		TargetTable: strings.TrimSpace(r.TargetTable),
		DateColumn:  strings.TrimSpace(r.DateColumn),
		SortOrder:   r.SortOrder,
		IsActive:    r.IsActive == nil || *r.IsActive,
	}
	switch {
	case cfg.DisplayName == "":
		return cfg, errors.New("display_name is required")
	case cfg.TargetTable == "":
		return cfg, errors.New("target_table is required")
	case cfg.DateColumn == "":
		return cfg, errors.New("date_column is required")
	}

	switch t := domain.DateColumnType(strings.ToLower(strings.TrimSpace(r.DateColumnType))); t {
	case "", domain.DateColumnDate:
		cfg.DateColumnType = domain.DateColumnDate
	case domain.DateColumnTimestamp:
		cfg.DateColumnType = t
	default:
		return cfg, fmt.Errorf("date_column_type %q must be date or timestamp", r.DateColumnType)
	}

	if r.FunctionName != nil {
		if fn := strings.TrimSpace(*r.FunctionName); fn != "" {
			cfg.FunctionName = &fn
		}
	}
	return cfg, nil
}

// SeedAuditConfigs inserts cfgs in order and returns how many were written.
// It stops at the first failure.
func SeedAuditConfigs(ctx context.Context, w AuditConfigWriter, cfgs []domain.AuditConfig) (int, error) {
	for i := range cfgs {
		if err := w.InsertAuditConfig(ctx, &cfgs[i]); err != nil {
			return i, fmt.Errorf("insert %q: %w", cfgs[i].DisplayName, err)
		}
	}
	return len(cfgs), nil
}
