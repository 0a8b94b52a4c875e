// Package handlers provides the monitor's HTTP endpoints: the chat
// interaction webhook, the scheduled batch trigger, the in-process monitored
// jobs and the read-only ops API.
//
// Every error leaves through fail(), so callers always receive the same
// envelope:
//
//	HTTP/1.1 401 Unauthorized
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "invalid_signature",
//	  "message": "invalid request signature"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-job-monitor/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	// Correlation ID; matches the request_id field in server logs.
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable machine-readable code, see errors.go.
	Code string `json:"code" example:"invalid_signature"`
	// Safe to show to the caller. Never carries a job's internal error text.
	Message string `json:"message" example:"invalid request signature"`
}

// failLevel picks how loudly a failed response is logged. Server faults are
// errors; rejected credentials are warnings since a run of them usually means
// a rotated key or a probe. Other client errors are left to the access log.
func failLevel(status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status == http.StatusUnauthorized:
		return zerolog.WarnLevel
	default:
		return zerolog.NoLevel
	}
}

// fail aborts the request with an ErrorResponse.
func fail(c *gin.Context, status int, code, msg string) {
	rid := c.Writer.Header().Get("X-Request-ID")
	if rid == "" {
		rid = middleware.RequestIDFrom(c)
	}

	if lvl := failLevel(status); lvl != zerolog.NoLevel {
		middleware.LoggerFrom(c).WithLevel(lvl).
			Int("status", status).
			Str("code", code).
			Str("path", c.FullPath()).
			Msg(msg)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{RequestID: rid, Code: code, Message: msg})
}

// Fail lets the router reuse the envelope for NoRoute and NoMethod.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }
