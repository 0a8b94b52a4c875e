// Package services – Notifier (notification batcher)
//
// Notifier announces pending failures once per run: it lists every pending
// record, groups them by business day in first-seen order, posts one
// announcement per group and then marks the group notified.
//
// Groups are independent. A failed send leaves its group pending for the next
// run; a failed status update after a successful send means the group will be
// announced again. Duplicate alerts are preferred over silent loss.
package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-job-monitor/internal/domain"
	"github.com/tbourn/go-job-monitor/internal/observability"
)

// DayCount is the number of records announced (or not) for a business day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// BatchReport summarizes one Notifier run.
type BatchReport struct {
	Reported []DayCount `json:"reported"`
	Failed   []DayCount `json:"failed,omitempty"`
}

// Empty reports whether there was nothing to announce.
func (r BatchReport) Empty() bool { return len(r.Reported) == 0 && len(r.Failed) == 0 }

// Notifier posts pending failures to a chat channel.
type Notifier struct {
	Store       RecordStore
	Messenger   Messenger
	ChannelID   string
	ProjectName string
}

type dayGroup struct {
	day       string
	ids       []int64
	functions []string
}

// groupByDay partitions records by business day, keeping first-seen order of
// days and of distinct function names within a day.
func groupByDay(recs []domain.ErrorRecord) []*dayGroup {
	var order []*dayGroup
	byDay := make(map[string]*dayGroup)
	seenFn := make(map[string]map[string]bool)

	for _, r := range recs {
		day := r.BusinessDay
		if day == "" {
			day = UndatedGroup
		}
		g, ok := byDay[day]
		if !ok {
			g = &dayGroup{day: day}
			byDay[day] = g
			seenFn[day] = make(map[string]bool)
			order = append(order, g)
		}
		g.ids = append(g.ids, r.ID)
		if !seenFn[day][r.FunctionName] {
			seenFn[day][r.FunctionName] = true
			g.functions = append(g.functions, r.FunctionName)
		}
	}
	return order
}

// Run performs one batch. Only a failure to read pending records is returned
// as an error; per-group failures are logged and reported in Failed.
func (n *Notifier) Run(ctx context.Context) (BatchReport, error) {
	tr := otel.Tracer("services/Notifier")
	ctx, span := tr.Start(ctx, "Run")
	defer span.End()

	lg := loggerFrom(ctx)
	pending, err := n.Store.ListErrors(ctx, domain.ErrorFilter{
		Statuses: []domain.ErrorStatus{domain.StatusPending},
	})
	if err != nil {
		span.RecordError(err)
		return BatchReport{}, fmt.Errorf("list pending errors: %w", err)
	}
	span.SetAttributes(attribute.Int("errors.pending", len(pending)))

	report := BatchReport{Reported: []DayCount{}}
	for _, g := range groupByDay(pending) {
		dc := DayCount{Date: g.day, Count: len(g.ids)}

		msg := AnnouncementMessage(n.ProjectName, g.day, len(g.ids), g.functions)
		if err := n.Messenger.SendMessage(ctx, n.ChannelID, msg); err != nil {
			lg.Error().Err(err).Str("business_day", g.day).Int("count", dc.Count).Msg("announcement failed; group left pending")
			observability.Announcements.WithLabelValues("failed").Inc()
			report.Failed = append(report.Failed, dc)
			continue
		}
		observability.Announcements.WithLabelValues("sent").Inc()

		if err := n.Store.SetErrorStatus(ctx, g.ids, domain.StatusUpdate{Status: domain.StatusNotified}); err != nil {
			lg.Error().Err(err).Str("business_day", g.day).Msg("mark notified failed; group may be announced again")
		}
		lg.Info().Str("business_day", g.day).Int("count", dc.Count).Msg("announcement sent")
		report.Reported = append(report.Reported, dc)
	}
	return report, nil
}
