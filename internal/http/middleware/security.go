package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultHSTSMaxAge applies when HSTS is on but no lifetime is configured.
const defaultHSTSMaxAge = 180 * 24 * time.Hour

// SecurityOptions selects which optional header groups SecurityHeaders adds.
//
// The monitor only speaks JSON (the Swagger UI aside), so the always-on set is
// small. NoStore is meant for the ops API, whose error records carry stack
// traces. LockdownCSP is meant for routes that never render HTML; it must not
// be used where the Swagger UI is served.
type SecurityOptions struct {
	EnableHSTS   bool
	HSTSMaxAge   time.Duration
	NoStore      bool
	EnablePolicy bool
	LockdownCSP  bool
}

type header struct{ name, value string }

// headerSet resolves the options into the fixed headers written on every
// response. Only HSTS depends on the request and is handled separately.
func (o SecurityOptions) headerSet() []header {
	set := []header{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "no-referrer"},
	}
	if o.EnablePolicy {
		set = append(set,
			header{"Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()"},
			header{"X-Permitted-Cross-Domain-Policies", "none"},
		)
	}
	if o.NoStore {
		set = append(set,
			header{"Cache-Control", "no-store"},
			header{"Pragma", "no-cache"},
			header{"Expires", "0"},
		)
	}
	if o.LockdownCSP {
		set = append(set, header{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"})
	}
	return set
}

func (o SecurityOptions) hstsValue() string {
	age := o.HSTSMaxAge
	if age <= 0 {
		age = defaultHSTSMaxAge
	}
	return "max-age=" + strconv.Itoa(int(age.Seconds())) + "; includeSubDomains; preload"
}

// SecurityHeaders hardens every response with the headers selected by opt.
//
// Strict-Transport-Security is sent only when EnableHSTS is set and the
// request arrived over TLS, directly or through a proxy reporting
// X-Forwarded-Proto: https. When a request ID has already been written, it is
// added to Access-Control-Expose-Headers so browser tooling on the ops API can
// quote it in bug reports.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	static := opt.headerSet()
	hsts := opt.hstsValue()

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range static {
			h.Set(kv.name, kv.value)
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get(requestIDHeader) != "" {
			exposeHeader(h, requestIDHeader)
		}
		c.Next()
	}
}

// exposeHeader appends name to Access-Control-Expose-Headers once.
func exposeHeader(h http.Header, name string) {
	const key = "Access-Control-Expose-Headers"
	cur := h.Get(key)
	switch {
	case cur == "":
		h.Set(key, name)
	case strings.Contains(cur, name):
	default:
		h.Set(key, cur+", "+name)
	}
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
