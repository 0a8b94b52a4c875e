// Package httpapi wires the HTTP transport (Gin) to the monitor's handlers and
// middleware. It centralizes cross-cutting concerns such as tracing,
// correlation IDs, logging/redaction, panic recovery, metrics, bearer auth,
// rate limiting, CORS and security headers.
//
// Route map:
//
//	GET       /health
//	GET       /metrics
//	GET       /swagger/*any          (when SWAGGER_ENABLED)
//	POST      /interactions          (signature-verified chat webhook)
//	GET|POST  /monitor               (scheduler; bearer when JOBS_INVOKE_KEY set)
//	GET|POST  /functions/v1/:name    (monitored jobs; same bearer)
//	GET       /ops/errors, /ops/jobs (only when OPS_TOKEN set)
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/tbourn/go-job-monitor/docs"
	"github.com/tbourn/go-job-monitor/internal/config"
	"github.com/tbourn/go-job-monitor/internal/http/handlers"
	"github.com/tbourn/go-job-monitor/internal/http/middleware"
)

// maxBodyBytes caps every request body (1 MiB).
const maxBodyBytes = 1 << 20

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with secret scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Security headers
//
// Authentication and rate limiting are applied per group: the interaction
// webhook authenticates by signature and is never throttled, because the
// chat platform retries and eventually disables endpoints that reject it.
func RegisterRoutes(r *gin.Engine, deps handlers.Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit
	r.Use(limitBody(maxBodyBytes))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	h := handlers.New(deps)

	r.GET("/health", h.Health)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Chat webhook: signature-authenticated inside the handler.
	r.POST("/interactions", h.HandleInteraction)

	// Scheduler-facing routes share the job invocation key.
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByPrincipalOrIP())
	sched := r.Group("", middleware.BearerAuth("scheduler", cfg.Jobs.InvokeKey), rl.Handler())
	{
		sched.POST("/monitor", h.RunMonitor)
		sched.GET("/monitor", h.RunMonitor)
		sched.POST("/functions/v1/:name", h.RunJob)
		sched.GET("/functions/v1/:name", h.RunJob)
	}

	// Read-only ops API; mounted only when a token is configured.
	if cfg.OpsToken != "" {
		ops := r.Group("/ops",
			corsMiddleware(cfg.CORS),
			middleware.BearerAuth("ops", cfg.OpsToken),
			rl.Handler(),
			gzip.Gzip(gzip.DefaultCompression),
			middleware.SecurityHeaders(middleware.SecurityOptions{NoStore: true, LockdownCSP: true}),
		)
		ops.GET("/errors", h.ListErrors)
		ops.GET("/jobs", h.ListJobs)
		// Preflights are answered by the CORS middleware before this runs.
		ops.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}
}

// corsMiddleware allows any origin when none are configured, otherwise only
// the allowlisted ones. Credentials are never allowed; the ops API uses
// bearer tokens.
func corsMiddleware(c config.CORSConfig) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(c.AllowedOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowedOrigins
	}
	return cors.New(cc)
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
