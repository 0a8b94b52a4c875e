// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes the monitor's
// settings: HTTP server timeouts, logging, the record store, the chat
// platform credentials, job invocation, background tasks and observability.
//
// An optional .env file in the working directory is loaded first; variables
// already present in the environment win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreREST   = "rest"
	StoreSQLite = "sqlite"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-job-monitor")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Driver     string // rest|sqlite
	URL        string // PostgREST base URL (rest)
	ServiceKey string // service-role key (rest)
	SQLitePath string // database file (sqlite)
	ErrorTable string
	RunTable   string
	AuditTable string
	Timeout    time.Duration
}

// DiscordConfig holds the chat platform credentials.
type DiscordConfig struct {
	APIBase       string
	BotToken      string
	ChannelID     string
	ApplicationID string
	PublicKey     string  // hex Ed25519 key used to verify interactions
	SendRate      float64 // outbound requests per second (0 = unlimited)
	SendBurst     int
	Timeout       time.Duration
}

// JobsConfig configures how jobs are re-invoked on retry.
type JobsConfig struct {
	BaseURL   string // e.g. https://<project>.supabase.co/functions/v1
	InvokeKey string // bearer for BaseURL; also accepted by in-process jobs
	Timeout   time.Duration
}

// TasksConfig sizes the background executor.
type TasksConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route

	// App
	ProjectName     string        // stamped on every filed record
	MonitorInterval time.Duration // in-process batch ticker; 0 = external scheduler only
	OpsToken        string        // bearer for /ops; empty disables the ops API

	// Rate limiting (ops API)
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	Store   StoreConfig
	Discord DiscordConfig
	Jobs    JobsConfig
	Tasks   TasksConfig

	// Observability
	OTEL OTELConfig
}

// DiscordReady reports whether interaction handling and announcements can
// run: the verification key, bot token and channel are all set.
func (c Config) DiscordReady() bool {
	return c.Discord.PublicKey != "" && c.Discord.BotToken != "" && c.Discord.ChannelID != ""
}

// StoreReady reports whether the configured record store is usable.
func (c Config) StoreReady() bool {
	switch c.Store.Driver {
	case StoreREST:
		return c.Store.URL != "" && c.Store.ServiceKey != ""
	case StoreSQLite:
		return c.Store.SQLitePath != ""
	}
	return false
}

// Load reads configuration from environment variables (after an optional
// .env file), applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	_ = godotenv.Load(getenv("ENV_FILE", ".env"))

	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),

		// App
		ProjectName:     getenv("PROJECT_NAME", "Unknown Project"),
		MonitorInterval: getdur("MONITOR_INTERVAL", 0),
		OpsToken:        getenv("OPS_TOKEN", ""),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		Store: StoreConfig{
			Driver:     strings.ToLower(getenv("STORE_DRIVER", StoreREST)),
			URL:        strings.TrimRight(getenv("SUPABASE_URL", ""), "/"),
			ServiceKey: getenv("SUPABASE_SERVICE_ROLE_KEY", ""),
			SQLitePath: getenv("DB_PATH", "monitor.db"),
			ErrorTable: getenv("ERROR_TABLE", "function_errors"),
			RunTable:   getenv("RUN_TABLE", "function_runs"),
			AuditTable: getenv("AUDIT_TABLE", "audit_config"),
			Timeout:    getdur("STORE_TIMEOUT", 10*time.Second),
		},
		Discord: DiscordConfig{
			APIBase:       strings.TrimRight(getenv("DISCORD_API_BASE", "https://discord.com/api/v10"), "/"),
			BotToken:      getenv("DISCORD_BOT_TOKEN", ""),
			ChannelID:     getenv("DISCORD_CHANNEL_ID", ""),
			ApplicationID: getenv("DISCORD_APPLICATION_ID", ""),
			PublicKey:     getenv("DISCORD_PUBLIC_KEY", ""),
			SendRate:      getfloat("DISCORD_SEND_RATE", 5.0),
			SendBurst:     getint("DISCORD_SEND_BURST", 5),
			Timeout:       getdur("DISCORD_TIMEOUT", 10*time.Second),
		},
		Jobs: JobsConfig{
			BaseURL:   strings.TrimRight(getenv("JOBS_BASE_URL", ""), "/"),
			InvokeKey: getenv("JOBS_INVOKE_KEY", ""),
			Timeout:   getdur("JOBS_TIMEOUT", 2*time.Minute),
		},
		Tasks: TasksConfig{
			Workers:   getint("TASK_WORKERS", 4),
			QueueSize: getint("TASK_QUEUE_SIZE", 64),
			Timeout:   getdur("TASK_TIMEOUT", 14*time.Minute),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-job-monitor"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	cfg.normalize()
	return cfg, cfg.validate()
}

// normalize folds accepted aliases into their canonical values.
func (c *Config) normalize() {
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		c.GinMode = "release"
	}
	switch c.Store.Driver {
	case "postgrest", "supabase":
		c.Store.Driver = StoreREST
	}
}

// ErrInvalid wraps every validation failure returned by Load.
var ErrInvalid = errors.New("invalid configuration")

// validate reports every problem at once so a broken deployment can be fixed
// in one pass.
func (c Config) validate() error {
	var problems []error
	check := func(bad bool, msg string) {
		if bad {
			problems = append(problems, errors.New(msg))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		check(true, "LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	check(strings.TrimSpace(c.Port) == "", "PORT must not be empty")
	check(c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0,
		"timeouts must be positive durations")
	check(c.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0")

	switch c.Store.Driver {
	case StoreREST, StoreSQLite:
	default:
		check(true, "STORE_DRIVER must be one of: rest, sqlite")
	}
	for name, v := range map[string]string{
		"ERROR_TABLE": c.Store.ErrorTable,
		"RUN_TABLE":   c.Store.RunTable,
		"AUDIT_TABLE": c.Store.AuditTable,
	} {
		check(strings.TrimSpace(v) == "", name+" must not be empty")
	}

	check(c.MonitorInterval < 0, "MONITOR_INTERVAL must be >= 0")
	check(c.RateRPS < 0, "RATE_RPS must be >= 0")
	check(c.RateBurst < 1, "RATE_BURST must be >= 1")
	check(c.Discord.SendRate < 0, "DISCORD_SEND_RATE must be >= 0")
	check(c.Discord.SendBurst < 1, "DISCORD_SEND_BURST must be >= 1")
	check(c.Tasks.Workers < 1, "TASK_WORKERS must be >= 1")
	check(c.Tasks.QueueSize < 1, "TASK_QUEUE_SIZE must be >= 1")
	check(c.Tasks.Timeout <= 0, "TASK_TIMEOUT must be > 0")
	// Interaction tokens expire after 15 minutes.
	check(c.Tasks.Timeout > 15*time.Minute, "TASK_TIMEOUT must be <= 15m")
	check(c.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0")
	check(c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
