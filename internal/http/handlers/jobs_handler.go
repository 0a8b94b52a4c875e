// Monitored job endpoints.
//
//   - POST /functions/v1/{name}   (run a job; GET accepted for cron callers)
//   - GET  /ops/jobs              (list runnable jobs)
//
// A job run resolves its business day from the X-Business-Day header or the
// business_day query parameter (default: yesterday, UTC), executes under the
// failure-capture gateway, and answers with a fixed 500 body on failure.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-job-monitor/internal/businessday"
	"github.com/tbourn/go-job-monitor/internal/http/middleware"
	"github.com/tbourn/go-job-monitor/internal/jobs"
	"github.com/tbourn/go-job-monitor/internal/services"
)

// RunJob godoc
// @ID          runJob
// @Summary     Run a monitored job
// @Description Runs the named job for the resolved business day. Failures are filed as pending errors and answered with a fixed body that never includes the cause.
// @Tags        Jobs
// @Produce     json
//
// @Param       name            path    string  true   "Job name"  example(sync-sales)
// @Param       X-Business-Day  header  string  false  "Business day override (YYYY-MM-DD)"
// @Param       business_day    query   string  false  "Business day override (YYYY-MM-DD)"
//
// @Success     200  {object}  handlers.JobResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid bearer token"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown job"
// @Failure     500  {object}  handlers.JobFailureResponse  "Job failed"
// @Security    BearerAuth
// @Router      /functions/v1/{name} [post]
func (h *Handlers) RunJob(c *gin.Context) {
	name := c.Param("name")
	job, found := h.d.Jobs.Lookup(name)
	if !found {
		fail(c, http.StatusNotFound, ErrCodeUnknownJob, services.ErrUnknownJob.Error())
		return
	}
	if h.d.Runner == nil {
		fail(c, http.StatusInternalServerError, ErrCodeMisconfigured, "server is not configured")
		return
	}

	day := businessday.Resolve(c.Request, h.now())
	params := c.Request.URL.Query()

	lg := middleware.LoggerFrom(c).With().
		Str("function", name).
		Str("business_day", day).
		Logger()
	ctx := lg.WithContext(c.Request.Context())

	n, err := h.d.Runner.CaptureOn(ctx, name, day, func(ctx context.Context, d string) (int, error) {
		return job(ctx, jobs.Input{BusinessDay: d, Params: params})
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, JobFailureResponse{
			Error:        http.StatusText(http.StatusInternalServerError),
			FunctionName: name,
		})
		return
	}

	ok(c, http.StatusOK, JobResponse{
		Message:      "job completed",
		FunctionName: name,
		BusinessDay:  day,
		RecordCount:  n,
	})
}

// ListJobs godoc
// @ID          listJobs
// @Summary     List monitored jobs
// @Tags        Ops
// @Produce     json
// @Success     200  {object}  handlers.ListJobsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid bearer token"
// @Security    BearerAuth
// @Router      /ops/jobs [get]
func (h *Handlers) ListJobs(c *gin.Context) {
	ok(c, http.StatusOK, ListJobsResponse{Jobs: h.d.Jobs.Names()})
}
