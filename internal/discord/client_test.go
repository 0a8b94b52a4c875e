package discord

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type captured struct {
	method string
	path   string
	auth   string
	body   []byte
}

func newFakeDiscord(t *testing.T, status int) (*httptest.Server, *[]captured) {
	t.Helper()
	var calls []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, captured{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization"), body: b})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"x"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestSendMessage_PostsToChannelWithBotAuth(t *testing.T) {
	srv, calls := newFakeDiscord(t, http.StatusOK)
	c := NewClient(ClientConfig{APIBase: srv.URL, BotToken: "bot-tok", ApplicationID: "app"})

	msg := Message{Embeds: []Embed{{Title: "t", Color: ColorAlert}}}
	if err := c.SendMessage(context.Background(), "chan-1", msg); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("calls=%d", len(*calls))
	}
	got := (*calls)[0]
	if got.method != http.MethodPost || got.path != "/channels/chan-1/messages" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
	if got.auth != "Bot bot-tok" {
		t.Fatalf("auth=%q", got.auth)
	}
	var decoded Message
	if err := json.Unmarshal(got.body, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(decoded.Embeds) != 1 || decoded.Embeds[0].Color != ColorAlert {
		t.Fatalf("body=%s", got.body)
	}
}

func TestEditOriginal_PatchesWebhookWithoutBotAuth(t *testing.T) {
	srv, calls := newFakeDiscord(t, http.StatusOK)
	c := NewClient(ClientConfig{APIBase: srv.URL, BotToken: "bot-tok", ApplicationID: "app-9"})

	if err := c.EditOriginal(context.Background(), "itok", Message{Content: "done"}); err != nil {
		t.Fatalf("EditOriginal: %v", err)
	}
	got := (*calls)[0]
	if got.method != http.MethodPatch || got.path != "/webhooks/app-9/itok/messages/@original" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
	if got.auth != "" {
		t.Fatalf("webhook edit should not carry bot auth, got %q", got.auth)
	}
}

func TestRegisterCommands_PutsCommandList(t *testing.T) {
	srv, calls := newFakeDiscord(t, http.StatusOK)
	c := NewClient(ClientConfig{APIBase: srv.URL, BotToken: "bot-tok", ApplicationID: "app"})

	cmds := []Command{{Name: "audit", Description: "Run the daily audit", Type: 1}}
	if err := c.RegisterCommands(context.Background(), cmds); err != nil {
		t.Fatalf("RegisterCommands: %v", err)
	}
	got := (*calls)[0]
	if got.method != http.MethodPut || got.path != "/applications/app/commands" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
	if !strings.Contains(string(got.body), `"name":"audit"`) {
		t.Fatalf("body=%s", got.body)
	}
}

func TestClient_NonSuccessIsAPIErrorWithRedactedToken(t *testing.T) {
	srv, _ := newFakeDiscord(t, http.StatusNotFound)
	c := NewClient(ClientConfig{APIBase: srv.URL, BotToken: "b", ApplicationID: "app"})

	err := c.EditOriginal(context.Background(), "secret-token", Message{Content: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Fatalf("status=%d", apiErr.Status)
	}
	if strings.Contains(apiErr.Error(), "secret-token") {
		t.Fatalf("token leaked into error: %s", apiErr.Error())
	}
}

func TestClient_TransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := NewClient(ClientConfig{APIBase: base, BotToken: "b", ApplicationID: "app"})
	err := c.EditOriginal(context.Background(), "secret-token", Message{Content: "x"})
	if err == nil {
		t.Fatal("expected a transport error from a closed server")
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Fatalf("token leaked into error: %s", err)
	}
	if !strings.Contains(err.Error(), "/webhooks/app/***/messages/@original") {
		t.Fatalf("error should name the redacted path: %s", err)
	}
}

func TestRedactToken(t *testing.T) {
	cases := map[string]string{
		"/webhooks/app/tok/messages/@original": "/webhooks/app/***/messages/@original",
		"/channels/123/messages":               "/channels/123/messages",
		"/webhooks/app":                        "/webhooks/app",
	}
	for in, want := range cases {
		if got := redactToken(in); got != want {
			t.Errorf("redactToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClient_MissingCredentials(t *testing.T) {
	c := NewClient(ClientConfig{})
	ctx := context.Background()

	if err := c.SendMessage(ctx, "chan", Message{}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("SendMessage err=%v", err)
	}
	if err := c.EditOriginal(ctx, "tok", Message{}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("EditOriginal err=%v", err)
	}
	if err := c.RegisterCommands(ctx, nil); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("RegisterCommands err=%v", err)
	}
}

func TestClient_LimiterHonorsCanceledContext(t *testing.T) {
	srv, calls := newFakeDiscord(t, http.StatusOK)
	c := NewClient(ClientConfig{APIBase: srv.URL, BotToken: "b", RatePerSecond: 0.001, Burst: 1})

	if err := c.SendMessage(context.Background(), "c", Message{Content: "first"}); err != nil {
		t.Fatalf("first send: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.SendMessage(ctx, "c", Message{Content: "second"}); err == nil {
		t.Fatalf("expected limiter wait to fail on canceled context")
	}
	if len(*calls) != 1 {
		t.Fatalf("calls=%d, want 1", len(*calls))
	}
}
