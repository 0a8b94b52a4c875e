// Package sysutil holds process-level helpers shared by the command-line
// entry points: logger setup and small string utilities.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogOptions configures the process logger.
type LogOptions struct {
	Level   string    // LOG_LEVEL
	Pretty  bool      // console output for local runs
	Project string    // PROJECT_NAME; added to every line when set
	Out     io.Writer // defaults to os.Stderr
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level. Matching ignores case
// and surrounding space, "warning" is accepted for warn, and anything blank
// or unknown means info.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// SetLogLevel sets the global zerolog level from a LOG_LEVEL value.
func SetLogLevel(s string) { zerolog.SetGlobalLevel(ParseLevel(s)) }

// SetupLogger replaces the global logger. Lines are JSON with RFC3339 UTC
// timestamps unless Pretty is set.
func SetupLogger(opt LogOptions) {
	out := opt.Out
	if out == nil {
		out = os.Stderr
	}
	if opt.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	SetLogLevel(opt.Level)

	lc := zerolog.New(out).With().Timestamp().Str("service", "job-monitor")
	if opt.Project != "" {
		lc = lc.Str("project", opt.Project)
	}
	log.Logger = lc.Logger()
}

// IsTruthy reports whether a query or flag value means yes: 1, true, yes, y
// or on, in any case.
func IsTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// FirstNonEmpty returns the first value that is not blank, unmodified.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
