package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- defaults and error reporting ---

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Store.ErrorTable != "function_errors" || cfg.ProjectName != "Unknown Project" ||
		cfg.Tasks.Timeout != 14*time.Minute || cfg.Store.Driver != StoreREST {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	t.Setenv("RATE_BURST", "0")
	t.Setenv("AUDIT_TABLE", " ")

	_, err := Load()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	for _, want := range []string{"LOG_LEVEL", "RATE_BURST", "AUDIT_TABLE"} {
		if !containsErr(err, want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")

	// App
	t.Setenv("PROJECT_NAME", "acme")
	t.Setenv("MONITOR_INTERVAL", "5m")
	t.Setenv("OPS_TOKEN", "ops")

	// Rate limiting (invalid values fall back to defaults)
	t.Setenv("RATE_RPS", "x")
	t.Setenv("RATE_BURST", "nope")

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// Store
	t.Setenv("STORE_DRIVER", "Supabase") // alias of rest
	t.Setenv("SUPABASE_URL", "https://x.supabase.co/")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "key")
	t.Setenv("ERROR_TABLE", "job_errors")

	// Discord
	t.Setenv("DISCORD_BOT_TOKEN", "bot")
	t.Setenv("DISCORD_CHANNEL_ID", "chan")
	t.Setenv("DISCORD_PUBLIC_KEY", "abcd")
	t.Setenv("DISCORD_SEND_RATE", "2")

	// Jobs / tasks
	t.Setenv("JOBS_BASE_URL", "https://x.supabase.co/functions/v1/")
	t.Setenv("TASK_WORKERS", "2")
	t.Setenv("TASK_TIMEOUT", "10m")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}
	if cfg.ProjectName != "acme" || cfg.MonitorInterval != 5*time.Minute || cfg.OpsToken != "ops" {
		t.Fatalf("app fields unexpected: %+v", cfg)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}
	if cfg.Store.Driver != StoreREST || cfg.Store.URL != "https://x.supabase.co" || cfg.Store.ErrorTable != "job_errors" || cfg.Store.RunTable != "function_runs" {
		t.Fatalf("store unexpected: %+v", cfg.Store)
	}
	if cfg.Discord.SendRate != 2 || cfg.Discord.APIBase != "https://discord.com/api/v10" {
		t.Fatalf("discord unexpected: %+v", cfg.Discord)
	}
	if cfg.Jobs.BaseURL != "https://x.supabase.co/functions/v1" || cfg.Tasks.Workers != 2 || cfg.Tasks.Timeout != 10*time.Minute {
		t.Fatalf("jobs/tasks unexpected: %+v %+v", cfg.Jobs, cfg.Tasks)
	}
	if !cfg.DiscordReady() || !cfg.StoreReady() {
		t.Fatalf("expected discord and store to be ready")
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_ReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	body := "DISCORD_APPLICATION_ID=from-file\nPROJECT_NAME=from-file\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("PROJECT_NAME", "from-env")
	t.Cleanup(func() { os.Unsetenv("DISCORD_APPLICATION_ID") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Discord.ApplicationID != "from-file" {
		t.Fatalf("application id=%q want from-file", cfg.Discord.ApplicationID)
	}
	if cfg.ProjectName != "from-env" {
		t.Fatalf("project=%q; the environment should win over .env", cfg.ProjectName)
	}
}

func TestConfig_Readiness(t *testing.T) {
	cases := []struct {
		name  string
		cfg   Config
		store bool
	}{
		{"rest complete", Config{Store: StoreConfig{Driver: StoreREST, URL: "u", ServiceKey: "k"}}, true},
		{"rest missing key", Config{Store: StoreConfig{Driver: StoreREST, URL: "u"}}, false},
		{"sqlite", Config{Store: StoreConfig{Driver: StoreSQLite, SQLitePath: "x.db"}}, true},
		{"unknown driver", Config{Store: StoreConfig{Driver: "mongo"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.StoreReady(); got != tc.store {
				t.Fatalf("StoreReady=%v want %v", got, tc.store)
			}
		})
	}

	if (Config{Discord: DiscordConfig{BotToken: "b", ChannelID: "c"}}).DiscordReady() {
		t.Fatalf("DiscordReady without a public key should be false")
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name, key, val, want string
	}{
		{"invalid LOG_LEVEL", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"empty PORT via spaces", "PORT", "   ", "PORT must not be empty"},
		{"non-positive timeouts", "READ_TIMEOUT", "0s", "timeouts must be positive"},
		{"max header bytes <= 0", "MAX_HEADER_BYTES", "0", "MAX_HEADER_BYTES"},
		{"unknown store driver", "STORE_DRIVER", "mongo", "STORE_DRIVER"},
		{"empty table name", "RUN_TABLE", "   ", "RUN_TABLE"},
		{"negative monitor interval", "MONITOR_INTERVAL", "-1s", "MONITOR_INTERVAL"},
		{"rate rps negative", "RATE_RPS", "-1", "RATE_RPS"},
		{"rate burst < 1", "RATE_BURST", "0", "RATE_BURST"},
		{"discord burst < 1", "DISCORD_SEND_BURST", "0", "DISCORD_SEND_BURST"},
		{"no workers", "TASK_WORKERS", "0", "TASK_WORKERS"},
		{"task timeout beyond token lifetime", "TASK_TIMEOUT", "20m", "TASK_TIMEOUT must be <= 15m"},
		{"hsts max age negative", "HSTS_MAX_AGE", "-1s", "HSTS_MAX_AGE"},
		{"otel sample ratio out of range", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil || !containsErr(err, tc.want) {
				t.Fatalf("expected %s validation error, got: %v", tc.want, err)
			}
		})
	}
}

// --- env helpers ---

func TestEnvHelpers(t *testing.T) {
	t.Setenv("H_BLANK", "")
	t.Setenv("H_WORD", "val")
	t.Setenv("H_FLOAT", "0.25")
	t.Setenv("H_INT", "42")
	t.Setenv("H_DUR", "150ms")

	if got := getenv("H_BLANK", "d"); got != "d" {
		t.Errorf("getenv blank = %q, want default", got)
	}
	if got := getenv("H_WORD", "d"); got != "val" {
		t.Errorf("getenv set = %q", got)
	}
	if got := getfloat("H_FLOAT", 1); got != 0.25 {
		t.Errorf("getfloat = %v", got)
	}
	if got := getfloat("H_WORD", 1.5); got != 1.5 {
		t.Errorf("getfloat unparsable = %v, want default", got)
	}
	if got := getint("H_INT", 0); got != 42 {
		t.Errorf("getint = %d", got)
	}
	if got := getint("H_FLOAT", 7); got != 7 {
		t.Errorf("getint unparsable = %d, want default", got)
	}
	if got := getdur("H_DUR", time.Second); got != 150*time.Millisecond {
		t.Errorf("getdur = %v", got)
	}
	if got := getdur("H_INT", time.Minute); got != time.Minute {
		t.Errorf("getdur without unit = %v, want default", got)
	}
}

func TestGetbool(t *testing.T) {
	cases := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"1", false, true},
		{" Yes ", false, true},
		{"ON", false, true},
		{"y", false, true},
		{"0", true, false},
		{"False", true, false},
		{" n", true, false},
		{"off", true, false},
		{"", true, true},
		{"maybe", false, false},
		{"maybe", true, true},
	}
	for _, tc := range cases {
		t.Setenv("H_BOOL", tc.raw)
		if got := getbool("H_BOOL", tc.def); got != tc.want {
			t.Errorf("getbool(%q, %v) = %v", tc.raw, tc.def, got)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	cases := map[string][]string{
		"":                  nil,
		" , ,":              {},
		"https://a.example": {"https://a.example"},
		" a, ,b ,  c  ,":    {"a", "b", "c"},
	}
	for in, want := range cases {
		if got := splitCSV(in); !reflect.DeepEqual(got, want) {
			t.Errorf("splitCSV(%q) = %#v, want %#v", in, got, want)
		}
	}
}

// Keep a developer's .env and exported credentials out of the tests.
func TestMain(m *testing.M) {
	os.Setenv("ENV_FILE", filepath.Join(os.TempDir(), "go-job-monitor-no-such.env"))
	for _, k := range []string{"PORT", "STORE_DRIVER", "SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY", "DISCORD_BOT_TOKEN", "DISCORD_CHANNEL_ID", "DISCORD_PUBLIC_KEY", "DISCORD_APPLICATION_ID", "PROJECT_NAME"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}
