// Package postgrest is the production record store: a thin client over a
// PostgREST (Supabase) REST endpoint exposing the error, run and audit
// configuration tables.
//
// Every call authenticates with the service key both as `apikey` and as a
// bearer token. Non-2xx replies surface as *Error carrying the status and a
// truncated body; callers log them and never forward the body to chat.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-job-monitor/internal/businessday"
	"github.com/tbourn/go-job-monitor/internal/domain"
)

// ErrNotConfigured is returned when the base URL or service key is empty.
var ErrNotConfigured = errors.New("postgrest: store not configured")

// Error is a non-2xx reply from the REST endpoint.
type Error struct {
	Method string
	Table  string
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("postgrest: %s %s: status %d: %s", e.Method, e.Table, e.Status, e.Body)
}

// Config describes the endpoint and table names.
type Config struct {
	BaseURL    string
	ServiceKey string
	ErrorTable string
	RunTable   string
	AuditTable string
	Timeout    time.Duration
}

// Client implements the record store over HTTP.
type Client struct {
	base       string
	key        string
	errorTable string
	runTable   string
	auditTable string
	httpClient *http.Client
}

// New builds a Client; empty table names fall back to the domain defaults.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base:       strings.TrimRight(cfg.BaseURL, "/"),
		key:        cfg.ServiceKey,
		errorTable: firstNonEmpty(cfg.ErrorTable, domain.DefaultErrorTable),
		runTable:   firstNonEmpty(cfg.RunTable, domain.DefaultRunTable),
		auditTable: firstNonEmpty(cfg.AuditTable, domain.DefaultAuditTable),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// InsertError files rec and returns the store-assigned id.
func (c *Client) InsertError(ctx context.Context, rec *domain.ErrorRecord) (int64, error) {
	body := *rec
	body.ID = 0
	var rows []struct {
		ID int64 `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, c.errorTable, nil, body, "return=representation", &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("postgrest: insert into %s returned no rows", c.errorTable)
	}
	rec.ID = rows[0].ID
	return rows[0].ID, nil
}

// InsertRun appends a successful run marker.
func (c *Client) InsertRun(ctx context.Context, rec *domain.RunRecord) error {
	return c.call(ctx, http.MethodPost, c.runTable, nil, rec, "return=minimal", nil)
}

// ListErrors returns error records matching f, oldest business day first.
func (c *Client) ListErrors(ctx context.Context, f domain.ErrorFilter) ([]domain.ErrorRecord, error) {
	q := url.Values{}
	q.Set("select", "*")
	if sf := statusFilter(f.Statuses); sf != "" {
		q.Set("status", sf)
	}
	if f.BusinessDay != "" {
		q.Set("business_day", "eq."+f.BusinessDay)
	}
	q.Set("order", "business_day.asc,occurred_at.asc")
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	var out []domain.ErrorRecord
	if err := c.call(ctx, http.MethodGet, c.errorTable, q, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetErrorStatus patches every record in ids with upd.
func (c *Client) SetErrorStatus(ctx context.Context, ids []int64, upd domain.StatusUpdate) error {
	if len(ids) == 0 {
		return nil
	}
	patch := map[string]any{"status": upd.Status}
	if upd.RetriedAt != nil {
		patch["retried_at"] = upd.RetriedAt.UTC()
	}
	q := url.Values{}
	q.Set("id", idFilter(ids))
	return c.call(ctx, http.MethodPatch, c.errorTable, q, patch, "return=minimal", nil)
}

// DeleteErrors removes the records in ids.
func (c *Client) DeleteErrors(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	q := url.Values{}
	q.Set("id", idFilter(ids))
	return c.call(ctx, http.MethodDelete, c.errorTable, q, nil, "return=minimal", nil)
}

// DeleteErrorsByDay removes every record for day whose status is in
// statuses and reports how many were deleted.
func (c *Client) DeleteErrorsByDay(ctx context.Context, day string, statuses []domain.ErrorStatus) (int64, error) {
	q := url.Values{}
	q.Set("business_day", "eq."+day)
	if sf := statusFilter(statuses); sf != "" {
		q.Set("status", sf)
	}
	q.Set("select", "id")

	var rows []struct {
		ID int64 `json:"id"`
	}
	if err := c.call(ctx, http.MethodDelete, c.errorTable, q, nil, "return=representation", &rows); err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// ListAuditConfigs returns active audit rows ordered by sort order.
func (c *Client) ListAuditConfigs(ctx context.Context) ([]domain.AuditConfig, error) {
	q := url.Values{}
	q.Set("is_active", "eq.true")
	q.Set("order", "sort_order.asc")

	var out []domain.AuditConfig
	if err := c.call(ctx, http.MethodGet, c.auditTable, q, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertAuditConfig adds an audit row.
func (c *Client) InsertAuditConfig(ctx context.Context, cfg *domain.AuditConfig) error {
	body := *cfg
	body.ID = 0
	var rows []struct {
		ID int64 `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, c.auditTable, nil, body, "return=representation", &rows); err != nil {
		return err
	}
	if len(rows) > 0 {
		cfg.ID = rows[0].ID
	}
	return nil
}

var contentRangeTotal = regexp.MustCompile(`/(\d+)$`)

// CountRows returns the exact number of rows in q.Table dated q.Day.
func (c *Client) CountRows(ctx context.Context, cq domain.CountQuery) (int64, error) {
	if !domain.ValidIdentifier(cq.Table) || !domain.ValidIdentifier(cq.DateColumn) {
		return 0, fmt.Errorf("postgrest: invalid identifier %q.%q", cq.Table, cq.DateColumn)
	}
	q := url.Values{}
	switch cq.DateColumnType {
	case domain.DateColumnTimestamp:
		next := businessday.NextDay(cq.Day)
		if next == "" {
			return 0, fmt.Errorf("postgrest: invalid day %q", cq.Day)
		}
		q.Add(cq.DateColumn, "gte."+cq.Day+"T00:00:00Z")
		q.Add(cq.DateColumn, "lt."+next+"T00:00:00Z")
	default:
		q.Set(cq.DateColumn, "eq."+cq.Day)
	}

	resp, err := c.send(ctx, http.MethodHead, cq.Table, q, nil, "count=exact")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	m := contentRangeTotal.FindStringSubmatch(resp.Header.Get("Content-Range"))
	if m == nil {
		return 0, fmt.Errorf("postgrest: %s: missing exact count in Content-Range", cq.Table)
	}
	return strconv.ParseInt(m[1], 10, 64)
}

// call performs a request and decodes a JSON reply into out when non-nil.
func (c *Client) call(ctx context.Context, method, table string, q url.Values, payload any, prefer string, out any) error {
	resp, err := c.send(ctx, method, table, q, payload, prefer)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("postgrest: decode %s %s: %w", method, table, err)
	}
	return nil
}

// send issues the request and converts non-2xx replies into *Error. The
// caller owns the returned body.
func (c *Client) send(ctx context.Context, method, table string, q url.Values, payload any, prefer string) (*http.Response, error) {
	if c.base == "" || c.key == "" {
		return nil, ErrNotConfigured
	}

	u := c.base + "/rest/v1/" + table
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("postgrest: encode %s: %w", table, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("postgrest: %s %s: %w", method, table, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &Error{Method: method, Table: table, Status: resp.StatusCode, Body: string(b)}
	}
	return resp, nil
}

func statusFilter(statuses []domain.ErrorStatus) string {
	switch len(statuses) {
	case 0:
		return ""
	case 1:
		return "eq." + string(statuses[0])
	}
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return "in.(" + strings.Join(parts, ",") + ")"
}

func idFilter(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "in.(" + strings.Join(parts, ",") + ")"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
