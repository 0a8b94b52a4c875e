// Package services – Auditor (audit aggregator)
//
// Auditor builds the daily audit report for the `audit` command: for every
// active audit configuration it counts the tracked table's rows dated
// yesterday (UTC) and correlates them with the unresolved error records of
// the same day. Counts run concurrently on a bounded errgroup; a failed count
// becomes an "unknown" line instead of failing the report.
package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-job-monitor/internal/businessday"
	"github.com/tbourn/go-job-monitor/internal/discord"
	"github.com/tbourn/go-job-monitor/internal/domain"
)

// AuditLineKind classifies one report line.
type AuditLineKind int

const (
	AuditLineOK AuditLineKind = iota
	AuditLineWithErrors
	AuditLineUnknown
	AuditLineOrphan
)

// AuditLine is one row of the audit report. Count is meaningful for OK and
// WithErrors lines; Errors for WithErrors and Orphan lines.
type AuditLine struct {
	Kind   AuditLineKind
	Name   string
	Count  int64
	Errors int
}

// AuditReport is the structured audit result rendered by AuditMessage.
type AuditReport struct {
	Day          string
	Lines        []AuditLine
	TotalRecords int64
	OKRows       int
	ErrorRows    int
}

// Color is green with no error rows, red with no OK rows, orange otherwise.
func (r AuditReport) Color() int {
	switch {
	case r.ErrorRows == 0:
		return discord.ColorGreen
	case r.OKRows == 0:
		return discord.ColorRed
	default:
		return discord.ColorOrange
	}
}

// Auditor aggregates per-table counts with filed errors.
type Auditor struct {
	Store RecordStore
	Now   func() time.Time
	// Concurrency caps simultaneous count queries; <= 0 means 8.
	Concurrency int
}

func (a *Auditor) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}

// Day is the business day the audit covers.
func (a *Auditor) Day() string { return businessday.Yesterday(a.now()) }

// Report builds and renders the audit for yesterday.
func (a *Auditor) Report(ctx context.Context) discord.Message {
	day := a.Day()
	r, err := a.Build(ctx, day)
	if err != nil {
		loggerFrom(ctx).Error().Err(err).Str("business_day", day).Msg("audit failed")
		return AuditFailedMessage(day)
	}
	return AuditMessage(r)
}

// Build computes the audit for day. Only failing to load the configuration
// or the day's errors is an error.
func (a *Auditor) Build(ctx context.Context, day string) (AuditReport, error) {
	tr := otel.Tracer("services/Auditor")
	ctx, span := tr.Start(ctx, "Build")
	defer span.End()
	span.SetAttributes(attribute.String("business_day", day))

	var (
		configs []domain.AuditConfig
		errs    []domain.ErrorRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		configs, err = a.Store.ListAuditConfigs(gctx)
		if err != nil {
			return fmt.Errorf("list audit configs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		errs, err = a.Store.ListErrors(gctx, domain.ErrorFilter{Statuses: domain.Unresolved, BusinessDay: day})
		if err != nil {
			return fmt.Errorf("list errors: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return AuditReport{}, err
	}

	counts := a.countAll(ctx, configs, day)
	span.SetAttributes(attribute.Int("audit.configs", len(configs)), attribute.Int("audit.errors", len(errs)))
	return aggregate(day, configs, counts, errs), nil
}

// countAll returns one count per config, nil where the query failed.
func (a *Auditor) countAll(ctx context.Context, configs []domain.AuditConfig, day string) []*int64 {
	limit := a.Concurrency
	if limit <= 0 {
		limit = 8
	}
	lg := loggerFrom(ctx)
	counts := make([]*int64, len(configs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, c := range configs {
		g.Go(func() error {
			n, err := a.Store.CountRows(ctx, domain.CountQuery{
				Table:          c.TargetTable,
				DateColumn:     c.DateColumn,
				DateColumnType: c.DateColumnType,
				Day:            day,
			})
			if err != nil {
				lg.Warn().Err(err).Str("table", c.TargetTable).Msg("audit count failed")
				return nil
			}
			counts[i] = &n
			return nil
		})
	}
	_ = g.Wait()
	return counts
}

// aggregate correlates counts with errors. Errors linked to a config are
// consumed by it; the rest become orphan lines in first-seen order.
func aggregate(day string, configs []domain.AuditConfig, counts []*int64, errs []domain.ErrorRecord) AuditReport {
	errIndex := make(map[string]int)
	var errOrder []string
	for _, e := range errs {
		if _, ok := errIndex[e.FunctionName]; !ok {
			errOrder = append(errOrder, e.FunctionName)
		}
		errIndex[e.FunctionName]++
	}

	r := AuditReport{Day: day}
	for i, c := range configs {
		linked := 0
		if fn := c.LinkedFunction(); fn != "" {
			linked = errIndex[fn]
			delete(errIndex, fn)
		}

		line := AuditLine{Name: c.DisplayName, Errors: linked}
		switch {
		case counts[i] == nil:
			line.Kind = AuditLineUnknown
			r.ErrorRows++
		case linked > 0:
			line.Kind = AuditLineWithErrors
			line.Count = *counts[i]
			r.TotalRecords += line.Count
			r.ErrorRows++
		default:
			line.Kind = AuditLineOK
			line.Count = *counts[i]
			r.TotalRecords += line.Count
			r.OKRows++
		}
		r.Lines = append(r.Lines, line)
	}

	for _, fn := range errOrder {
		n, ok := errIndex[fn]
		if !ok {
			continue
		}
		r.Lines = append(r.Lines, AuditLine{Kind: AuditLineOrphan, Name: fn, Errors: n})
		r.ErrorRows++
	}
	return r
}
