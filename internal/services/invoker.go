package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tbourn/go-job-monitor/internal/businessday"
)

// HTTPInvoker re-runs jobs by POSTing to {BaseURL}/{name} with the business
// day in the X-Business-Day header. Any transport error or non-2xx reply is
// a failed invocation.
type HTTPInvoker struct {
	BaseURL string
	Key     string
	Client  *http.Client
}

// NewHTTPInvoker returns an invoker with a per-call timeout.
func NewHTTPInvoker(baseURL, key string, timeout time.Duration) *HTTPInvoker {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &HTTPInvoker{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Key:     key,
		Client:  &http.Client{Timeout: timeout},
	}
}

// Invoke runs job name for businessDay.
func (i *HTTPInvoker) Invoke(ctx context.Context, name, businessDay string) error {
	if i.BaseURL == "" {
		return fmt.Errorf("invoke %s: %w", name, ErrMissingConfig)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		i.BaseURL+"/"+url.PathEscape(name), bytes.NewReader([]byte("{}")))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(businessday.Header, businessDay)
	if i.Key != "" {
		req.Header.Set("Authorization", "Bearer "+i.Key)
		req.Header.Set("apikey", i.Key)
	}

	client := i.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", name, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("invoke %s: status %d", name, resp.StatusCode)
	}
	return nil
}
