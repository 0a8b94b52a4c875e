package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedactingLogger_MasksCredentialsAndScrubsQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-resp")
		c.Next()
	})
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Custom-Secret"}}))
	r.GET("/functions/v1/:name", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	q := "business_day=2024-03-01&token=abc123&owner=a.b@example.com&id=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodGet, "/functions/v1/sync?"+q, nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("apikey", "service-key")
	req.Header.Set("X-Signature-Ed25519", "deadbeef")
	req.Header.Set("X-Custom-Secret", "shhh")
	req.Header.Set("X-Note", "ping a@b.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	for _, want := range []string{
		`"level":"info"`,
		`"path":"/functions/v1/:name"`,
		`"request_id":"rid-resp"`,
		`business_day=2024-03-01`,
		`token=[REDACTED]`,
		`[REDACTED:email]`,
		`[REDACTED:id]`,
		`"Authorization":"[REDACTED]"`,
		`"Apikey":"[REDACTED]"`,
		`"X-Signature-Ed25519":"[REDACTED]"`,
		`"X-Custom-Secret":"[REDACTED]"`,
		`"X-Note":"ping [REDACTED:email]"`,
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("missing %s in: %s", want, logs)
		}
	}
	for _, leak := range []string{"abc123", "service-key", "deadbeef", "shhh", "Bearer secret"} {
		if strings.Contains(logs, leak) {
			t.Fatalf("leaked %q in: %s", leak, logs)
		}
	}
}

func TestRedactingLogger_WarnAndErrorLevels_RequestIDFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/gin-error", func(c *gin.Context) {
		_ = c.Error(errSentinel{})
		c.Status(http.StatusBadRequest)
	})

	for path, rid := range map[string]string{"/warn": "rid-warn", "/error": "rid-err", "/gin-error": "rid-gin"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Request-ID", rid)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"request_id":"rid-warn"`) {
		t.Fatalf("warn log not found or missing request_id fallback: %s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"request_id":"rid-err"`) {
		t.Fatalf("error log not found or missing request_id fallback: %s", logs)
	}
	if !strings.Contains(logs, `"errors":"Error #01: boom`) {
		t.Fatalf("gin errors should be logged: %s", logs)
	}
}

type errSentinel struct{}

func (e errSentinel) Error() string { return "boom" }
