package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultAPIBase is the Discord REST API root.
const DefaultAPIBase = "https://discord.com/api/v10"

// ErrMissingCredentials is returned when a call needs a token or id that the
// client was not configured with.
var ErrMissingCredentials = errors.New("discord: missing credentials")

// APIError is a non-2xx reply from the Discord API.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	APIBase       string
	BotToken      string
	ApplicationID string
	// RatePerSecond paces outbound calls; <= 0 disables pacing.
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

// Client talks to the Discord REST API.
type Client struct {
	base          string
	botToken      string
	applicationID string
	httpClient    *http.Client
	limiter       *rate.Limiter
}

// NewClient builds a Client from cfg, applying defaults for empty fields.
func NewClient(cfg ClientConfig) *Client {
	base := strings.TrimRight(cfg.APIBase, "/")
	if base == "" {
		base = DefaultAPIBase
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var lim *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return &Client{
		base:          base,
		botToken:      cfg.BotToken,
		applicationID: cfg.ApplicationID,
		httpClient:    &http.Client{Timeout: timeout},
		limiter:       lim,
	}
}

// SendMessage posts msg to a channel as the bot.
func (c *Client) SendMessage(ctx context.Context, channelID string, msg Message) error {
	if c.botToken == "" || channelID == "" {
		return ErrMissingCredentials
	}
	return c.do(ctx, http.MethodPost, "/channels/"+channelID+"/messages", msg, true)
}

// EditOriginal replaces the original response of the interaction identified
// by token. Interaction tokens are valid for 15 minutes.
func (c *Client) EditOriginal(ctx context.Context, token string, msg Message) error {
	if c.applicationID == "" || token == "" {
		return ErrMissingCredentials
	}
	path := "/webhooks/" + c.applicationID + "/" + token + "/messages/@original"
	return c.do(ctx, http.MethodPatch, path, msg, false)
}

// RegisterCommands bulk-overwrites the application's global commands.
func (c *Client) RegisterCommands(ctx context.Context, cmds []Command) error {
	if c.botToken == "" || c.applicationID == "" {
		return ErrMissingCredentials
	}
	if cmds == nil {
		cmds = []Command{}
	}
	return c.do(ctx, http.MethodPut, "/applications/"+c.applicationID+"/commands", cmds, true)
}

func (c *Client) do(ctx context.Context, method, path string, payload any, botAuth bool) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	// Webhook paths carry the interaction token; errors only see safePath.
	safePath := redactToken(path)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("discord: encode %s: %w", safePath, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: %s %s: %w", method, safePath, stripURL(err))
	}
	req.Header.Set("Content-Type", "application/json")
	if botAuth {
		req.Header.Set("Authorization", "Bot "+c.botToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord: %s %s: %w", method, safePath, stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{Method: method, Path: safePath, Status: resp.StatusCode, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// stripURL drops the *url.Error wrapper, whose message repeats the full
// request URL, and keeps the underlying cause.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}

// redactToken hides the interaction token segment of a webhook path.
func redactToken(path string) string {
	if !strings.HasPrefix(path, "/webhooks/") {
		return path
	}
	parts := strings.Split(path, "/")
	if len(parts) > 3 {
		parts[3] = "***"
	}
	return strings.Join(parts, "/")
}
