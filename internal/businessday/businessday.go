// Package businessday resolves the calendar date a job run logically belongs
// to. By convention every monitored job processes the previous UTC day, so a
// run at 2024-03-02T10:00Z works on 2024-03-01 unless the caller overrides it.
//
// Retries pass the original day explicitly (header or query parameter) so a
// job re-run days later recomputes the same date it originally failed on.
package businessday

import (
	"net/http"
	"strings"
	"time"
)

const (
	// Layout is the wire format of a business day.
	Layout = "2006-01-02"

	// Header carries an explicit business day on job invocations.
	Header = "X-Business-Day"
	// QueryParam is the query-string alternative to Header.
	QueryParam = "business_day"
)

// Resolve returns the business day for r. Priority: Header, then QueryParam,
// then Yesterday(now). Overrides that are not valid dates are ignored.
func Resolve(r *http.Request, now time.Time) string {
	if r != nil {
		if v := strings.TrimSpace(r.Header.Get(Header)); Valid(v) {
			return v
		}
		if r.URL != nil {
			if v := strings.TrimSpace(r.URL.Query().Get(QueryParam)); Valid(v) {
				return v
			}
		}
	}
	return Yesterday(now)
}

// Yesterday returns the UTC calendar day before now.
func Yesterday(now time.Time) string {
	return Format(now.UTC().AddDate(0, 0, -1))
}

// NextDay returns the day after day, or "" when day is not a valid date.
func NextDay(day string) string {
	t, err := time.Parse(Layout, day)
	if err != nil {
		return ""
	}
	return Format(t.AddDate(0, 0, 1))
}

// Valid reports whether s is a well-formed YYYY-MM-DD calendar date.
func Valid(s string) bool {
	if len(s) != len(Layout) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Format renders t's UTC date.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}
