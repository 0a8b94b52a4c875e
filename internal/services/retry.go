// Package services – Retrier (retry coordinator)
//
// Retrier drives retry_all:<date>. Prepare loads the unresolved records for
// the date; Run marks them retrying, re-invokes the job of every record in
// order, deletes the records of jobs that succeeded at least once and resets
// the rest to pending so the next batch announces them again. No record is
// left retrying once Run returns, unless the store itself rejects the reset.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-job-monitor/internal/domain"
	"github.com/tbourn/go-job-monitor/internal/observability"
)

// RetryClass classifies a retry outcome.
type RetryClass int

const (
	RetryFullSuccess RetryClass = iota
	RetryFullFailure
	RetryPartial
)

// RetryOutcome lists the jobs that succeeded and failed for Day, one entry
// per invocation, in invocation order.
type RetryOutcome struct {
	Day       string
	Succeeded []string
	Failed    []string
}

// Classification reports full success, full failure or partial.
func (o RetryOutcome) Classification() RetryClass {
	switch {
	case len(o.Failed) == 0:
		return RetryFullSuccess
	case len(o.Succeeded) == 0:
		return RetryFullFailure
	default:
		return RetryPartial
	}
}

// Retrier re-invokes failed jobs and reconciles their records.
//
// Prepare only reads. The flip to retrying happens at the start of Run, which
// the orchestrator executes as a background task, so a second retry_all for
// the same day that arrives in between sees the same records and re-invokes
// their jobs. Prepare is not a lock.
type Retrier struct {
	Store   RecordStore
	Invoker JobInvoker
	Now     func() time.Time
}

func (r *Retrier) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// Prepare returns the pending and notified records for day.
func (r *Retrier) Prepare(ctx context.Context, day string) ([]domain.ErrorRecord, error) {
	return r.Store.ListErrors(ctx, domain.ErrorFilter{
		Statuses:    domain.Unresolved,
		BusinessDay: day,
	})
}

// Run retries recs (as returned by Prepare) for day.
func (r *Retrier) Run(ctx context.Context, day string, recs []domain.ErrorRecord) RetryOutcome {
	tr := otel.Tracer("services/Retrier")
	ctx, span := tr.Start(ctx, "Run", trace.WithAttributes(
		attribute.String("business_day", day),
		attribute.Int("errors.count", len(recs)),
	))
	defer span.End()

	lg := loggerFrom(ctx)
	out := RetryOutcome{Day: day}
	if len(recs) == 0 {
		return out
	}

	allIDs := make([]int64, 0, len(recs))
	for _, rec := range recs {
		allIDs = append(allIDs, rec.ID)
	}

	stamp := r.now()
	if err := r.Store.SetErrorStatus(ctx, allIDs, domain.StatusUpdate{Status: domain.StatusRetrying, RetriedAt: &stamp}); err != nil {
		lg.Error().Err(err).Str("business_day", day).Msg("mark retrying failed; continuing")
	}

	succeeded := make(map[string]bool)
	for _, rec := range recs {
		fn := rec.FunctionName
		if err := r.Invoker.Invoke(ctx, fn, day); err != nil {
			lg.Warn().Err(err).Str("function", fn).Int64("error_id", rec.ID).Str("business_day", day).Msg("retry failed")
			out.Failed = append(out.Failed, fn)
			observability.RetryOutcomes.WithLabelValues("failed").Inc()
			continue
		}
		lg.Info().Str("function", fn).Int64("error_id", rec.ID).Str("business_day", day).Msg("retry succeeded")
		out.Succeeded = append(out.Succeeded, fn)
		succeeded[fn] = true
		observability.RetryOutcomes.WithLabelValues("succeeded").Inc()
	}

	// A job that succeeded once resolves all of its records for the day.
	var okIDs, failIDs []int64
	for _, rec := range recs {
		if succeeded[rec.FunctionName] {
			okIDs = append(okIDs, rec.ID)
		} else {
			failIDs = append(failIDs, rec.ID)
		}
	}

	// Reconcile on a context that survives the task deadline so records are
	// not stranded in retrying.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := r.Store.DeleteErrors(rctx, okIDs); err != nil {
		lg.Error().Err(err).Str("business_day", day).Msg("delete resolved errors failed")
	}
	stamp = r.now()
	if err := r.Store.SetErrorStatus(rctx, failIDs, domain.StatusUpdate{Status: domain.StatusPending, RetriedAt: &stamp}); err != nil {
		lg.Error().Err(err).Str("business_day", day).Msg("reset failed errors to pending failed")
	}

	span.SetAttributes(
		attribute.Int("retry.succeeded", len(out.Succeeded)),
		attribute.Int("retry.failed", len(out.Failed)),
	)
	return out
}
