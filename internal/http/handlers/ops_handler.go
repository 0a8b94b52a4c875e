// Read-only ops API and health.
//
//   - GET /ops/errors   (filed failures, filterable)
//   - GET /health
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-job-monitor/internal/businessday"
	"github.com/tbourn/go-job-monitor/internal/domain"
	"github.com/tbourn/go-job-monitor/internal/sysutil"
	"github.com/tbourn/go-job-monitor/internal/utils"
)

const (
	defaultErrorLimit = 100
	maxErrorLimit     = 500
)

// parseStatuses splits a comma-separated status filter. valid is false when any
// element is not a known lifecycle state.
func parseStatuses(raw string) (out []domain.ErrorStatus, valid bool) {
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		s := domain.ErrorStatus(strings.ToLower(p))
		if !s.Valid() {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// ListErrors godoc
// @ID          listErrors
// @Summary     List filed job failures
// @Description Returns filed failures, optionally filtered by status and business day.
// @Description Stack traces are omitted unless include_stack is set.
// @Tags        Ops
// @Produce     json
//
// @Param       status        query  string  false  "Comma-separated statuses (pending, notified, retrying)"
// @Param       business_day  query  string  false  "Business day (YYYY-MM-DD)"
// @Param       limit         query  int     false  "Maximum records"  minimum(1) maximum(500) default(100)
// @Param       include_stack query  bool    false  "Include stack traces"  default(false)
//
// @Success     200  {object}  handlers.ListErrorsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid bearer token"
// @Failure     502  {object}  handlers.ErrorResponse  "Record store unavailable"
// @Security    BearerAuth
// @Router      /ops/errors [get]
func (h *Handlers) ListErrors(c *gin.Context) {
	if h.d.Errors == nil || !h.d.StoreReady {
		fail(c, http.StatusInternalServerError, ErrCodeMisconfigured, "server is not configured")
		return
	}

	statuses, valid := parseStatuses(c.Query("status"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown status")
		return
	}
	day := strings.TrimSpace(c.Query(businessday.QueryParam))
	if day != "" && !businessday.Valid(day) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "business_day must be YYYY-MM-DD")
		return
	}
	limit := utils.ParseLimit(c.Query("limit"), defaultErrorLimit, maxErrorLimit)

	recs, err := h.d.Errors.ListErrors(c.Request.Context(), domain.ErrorFilter{
		Statuses:    statuses,
		BusinessDay: day,
		Limit:       limit,
	})
	if err != nil {
		fail(c, http.StatusBadGateway, ErrCodeStoreUnavailable, "could not list errors")
		return
	}
	if recs == nil {
		recs = []domain.ErrorRecord{}
	}
	if !sysutil.IsTruthy(c.Query("include_stack")) {
		for i := range recs {
			recs[i].ErrorStack = nil
		}
	}
	ok(c, http.StatusOK, ListErrorsResponse{Errors: recs, Count: len(recs)})
}

// Health godoc
// @ID          health
// @Summary     Liveness and readiness
// @Tags        Health
// @Produce     json
// @Success     200  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	ok(c, http.StatusOK, HealthResponse{
		Status:     "ok",
		ChatReady:  h.d.ChatReady,
		StoreReady: h.d.StoreReady,
	})
}
