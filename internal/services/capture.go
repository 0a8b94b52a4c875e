// Package services – Monitor (error capture gateway)
//
// Monitor wraps job execution. A job that returns an error or panics is
// normalized into a message and optional stack and filed as one pending
// ErrorRecord; a job that succeeds appends a RunRecord. Store failures while
// filing are logged and swallowed so a broken store never changes what the
// job's caller sees.
package services

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-job-monitor/internal/businessday"
	"github.com/tbourn/go-job-monitor/internal/domain"
	"github.com/tbourn/go-job-monitor/internal/observability"
)

// DefaultProjectName labels records when no project name is configured.
const DefaultProjectName = "Unknown Project"

// JobFunc is a monitored job. It returns the number of records it processed.
type JobFunc func(ctx context.Context, businessDay string) (int, error)

// Monitor files job outcomes in the record store.
type Monitor struct {
	Store       RecordStore
	ProjectName string
	Now         func() time.Time
}

func (m *Monitor) now() time.Time {
	if m.Now != nil {
		return m.Now().UTC()
	}
	return time.Now().UTC()
}

func (m *Monitor) project() string {
	if m.ProjectName == "" {
		return DefaultProjectName
	}
	return m.ProjectName
}

// CaptureOn runs fn for businessDay (empty means yesterday). On success it
// records a run and returns the processed count. On error or panic it files
// a pending ErrorRecord and returns an error wrapping ErrJobFailed.
func (m *Monitor) CaptureOn(ctx context.Context, jobName, businessDay string, fn JobFunc) (count int, err error) {
	tr := otel.Tracer("services/Monitor")
	ctx, span := tr.Start(ctx, "CaptureOn", trace.WithAttributes(
		attribute.String("job.name", jobName),
	))
	defer span.End()

	if businessDay == "" {
		businessDay = businessday.Yesterday(m.now())
	}
	span.SetAttributes(attribute.String("job.business_day", businessDay))

	count, stack, jobErr := runGuarded(ctx, businessDay, fn)
	if jobErr != nil {
		span.RecordError(jobErr)
		span.SetStatus(codes.Error, "job failed")
		m.file(ctx, jobName, jobErr.Error(), stack, businessDay)
		return 0, fmt.Errorf("%s: %w", jobName, ErrJobFailed)
	}

	m.ReportSuccess(ctx, jobName, count, businessDay)
	return count, nil
}

// runGuarded calls fn and converts a panic into an error plus stack trace.
func runGuarded(ctx context.Context, day string, fn JobFunc) (count int, stack *string, err error) {
	defer func() {
		if r := recover(); r != nil {
			s := string(debug.Stack())
			stack = &s
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
			count = 0
		}
	}()
	count, err = fn(ctx, day)
	if err != nil && err.Error() == "" {
		err = errors.New("job failed without a message")
	}
	return count, nil, err
}

// ReportSuccess appends a RunRecord. An empty businessDay means yesterday.
func (m *Monitor) ReportSuccess(ctx context.Context, jobName string, recordCount int, businessDay string) {
	if businessDay == "" {
		businessDay = businessday.Yesterday(m.now())
	}
	run := &domain.RunRecord{
		ProjectName:  m.project(),
		FunctionName: jobName,
		BusinessDay:  businessDay,
		RecordCount:  recordCount,
		RanAt:        m.now(),
	}
	if err := m.Store.InsertRun(ctx, run); err != nil {
		loggerFrom(ctx).Error().Err(err).Str("function", jobName).Msg("record run failed")
		return
	}
	observability.JobRuns.WithLabelValues(jobName).Inc()
}

// NotifyError files err against jobName without running anything. An empty
// businessDay means yesterday.
func (m *Monitor) NotifyError(ctx context.Context, jobName string, err error, businessDay string) {
	if businessDay == "" {
		businessDay = businessday.Yesterday(m.now())
	}
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	m.file(ctx, jobName, msg, nil, businessDay)
}

func (m *Monitor) file(ctx context.Context, jobName, msg string, stack *string, day string) {
	rec := &domain.ErrorRecord{
		ProjectName:  m.project(),
		FunctionName: jobName,
		ErrorMessage: msg,
		ErrorStack:   stack,
		BusinessDay:  day,
		OccurredAt:   m.now(),
		Status:       domain.StatusPending,
	}
	lg := loggerFrom(ctx)
	id, err := m.Store.InsertError(ctx, rec)
	if err != nil {
		lg.Error().Err(err).Str("function", jobName).Str("business_day", day).Msg("file error record failed")
		return
	}
	observability.ErrorsCaptured.WithLabelValues(jobName).Inc()
	lg.Warn().Int64("error_id", id).Str("function", jobName).Str("business_day", day).Msg("job failure filed")
}
