package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPInvoker_Invoke(t *testing.T) {
	var gotPath, gotDay, gotAuth, gotKey, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotDay = r.Header.Get("X-Business-Day")
		gotAuth, gotKey = r.Header.Get("Authorization"), r.Header.Get("apikey")
		if r.URL.Path == "/fn/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	inv := NewHTTPInvoker(srv.URL+"/fn/", "secret", time.Second)
	if err := inv.Invoke(context.Background(), "sync-sales", "2024-03-01"); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/fn/sync-sales" || gotDay != "2024-03-01" {
		t.Fatalf("method=%s path=%s day=%s", gotMethod, gotPath, gotDay)
	}
	if gotAuth != "Bearer secret" || gotKey != "secret" {
		t.Fatalf("auth=%q apikey=%q", gotAuth, gotKey)
	}

	if err := inv.Invoke(context.Background(), "broken", "2024-03-01"); err == nil {
		t.Fatal("non-2xx should fail")
	}
}

func TestHTTPInvoker_MissingBaseURL(t *testing.T) {
	err := NewHTTPInvoker("", "", 0).Invoke(context.Background(), "x", "2024-03-01")
	if !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("err=%v", err)
	}
}

func TestHTTPInvoker_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()
	if err := NewHTTPInvoker(url, "", time.Second).Invoke(context.Background(), "x", "2024-03-01"); err == nil {
		t.Fatal("closed server should fail")
	}
}
