// Monitor HTTP handlers: service contracts and wiring.
//
// Handlers are transport-thin: they authenticate or validate the request,
// call the service layer, and translate results into HTTP responses.
package handlers

import (
	"context"
	"time"

	"github.com/tbourn/go-job-monitor/internal/discord"
	"github.com/tbourn/go-job-monitor/internal/domain"
	"github.com/tbourn/go-job-monitor/internal/jobs"
	"github.com/tbourn/go-job-monitor/internal/services"
)

//
// Service contracts (context-aware)
//

// InteractionService answers verified chat interactions.
type InteractionService interface {
	// Handle returns the immediate reply for in. Long-running work is
	// scheduled in the background and reported by editing the reply.
	Handle(ctx context.Context, in discord.Interaction) (discord.InteractionResponse, error)
}

// BatchService announces pending failures.
type BatchService interface {
	// Run posts one announcement per business day with pending failures.
	Run(ctx context.Context) (services.BatchReport, error)
}

// JobRunner executes a monitored job and files its outcome.
type JobRunner interface {
	// CaptureOn runs fn for businessDay and returns its record count.
	CaptureOn(ctx context.Context, jobName, businessDay string, fn services.JobFunc) (int, error)
}

// ErrorLister reads filed failures for the ops API.
type ErrorLister interface {
	ListErrors(ctx context.Context, f domain.ErrorFilter) ([]domain.ErrorRecord, error)
}

//
// Handler wiring
//

// Deps carries everything the handlers need. Interactions and Batch may be
// nil when the chat integration is not configured; the affected endpoints
// then answer with a generic 500.
type Deps struct {
	Interactions InteractionService
	Batch        BatchService
	Runner       JobRunner
	Errors       ErrorLister
	Jobs         *jobs.Registry

	// PublicKey is the hex Ed25519 key interaction signatures are checked against.
	PublicKey string
	// ChatReady and StoreReady report whether the integrations are configured.
	ChatReady  bool
	StoreReady bool

	Now func() time.Time
}

// Handlers groups the monitor's HTTP endpoints.
type Handlers struct {
	d Deps
}

// New constructs a Handlers bound to d.
func New(d Deps) *Handlers {
	if d.Jobs == nil {
		d.Jobs = jobs.NewRegistry()
	}
	return &Handlers{d: d}
}

func (h *Handlers) now() time.Time {
	if h.d.Now != nil {
		return h.d.Now()
	}
	return time.Now()
}

//
// DTOs
//

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" example:"no pending errors"`
}

// HealthResponse reports liveness and integration readiness.
type HealthResponse struct {
	Status     string `json:"status" example:"ok"`
	ChatReady  bool   `json:"chat_ready"`
	StoreReady bool   `json:"store_ready"`
}

// JobResponse is returned when a monitored job succeeds.
type JobResponse struct {
	Message      string `json:"message" example:"job completed"`
	FunctionName string `json:"function_name" example:"sync-sales"`
	BusinessDay  string `json:"business_day" example:"2024-03-01"`
	RecordCount  int    `json:"record_count" example:"1234"`
}

// JobFailureResponse is the fixed body returned when a monitored job fails.
// It never carries the failure cause.
type JobFailureResponse struct {
	Error        string `json:"error" example:"Internal Server Error"`
	FunctionName string `json:"function_name" example:"sync-sales"`
}

// ListErrorsResponse wraps filed failures for the ops API.
type ListErrorsResponse struct {
	Errors []domain.ErrorRecord `json:"errors"`
	Count  int                  `json:"count"`
}

// ListJobsResponse lists the monitored jobs this process can run.
type ListJobsResponse struct {
	Jobs []string `json:"jobs"`
}
