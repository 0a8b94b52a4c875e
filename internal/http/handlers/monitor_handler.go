// Scheduled batch trigger.
//
//   - POST /monitor (GET is accepted for schedulers that cannot POST)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MonitorResponse reports which business days were announced.
type MonitorResponse struct {
	Reported []DayCountDTO `json:"reported"`
	Failed   []DayCountDTO `json:"failed,omitempty"`
}

// DayCountDTO is the number of records for one business day.
type DayCountDTO struct {
	Date  string `json:"date" example:"2024-03-01"`
	Count int    `json:"count" example:"3"`
}

// RunMonitor godoc
// @ID          runMonitor
// @Summary     Announce pending failures
// @Description Posts one announcement per business day with pending failures and marks them notified. Days whose announcement could not be posted are listed under failed and stay pending. When nothing is pending the body is {"message":"no pending errors"}.
// @Tags        Monitor
// @Produce     json
//
// @Success     200  {object}  handlers.MonitorResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Server not configured"
// @Failure     502  {object}  handlers.ErrorResponse  "Record store unavailable"
// @Router      /monitor [post]
func (h *Handlers) RunMonitor(c *gin.Context) {
	if !h.d.ChatReady || !h.d.StoreReady || h.d.Batch == nil {
		fail(c, http.StatusInternalServerError, ErrCodeMisconfigured, "server is not configured")
		return
	}

	rep, err := h.d.Batch.Run(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, ErrCodeStoreUnavailable, "could not read pending errors")
		return
	}
	if rep.Empty() {
		ok(c, http.StatusOK, MessageResponse{Message: "no pending errors"})
		return
	}

	resp := MonitorResponse{Reported: make([]DayCountDTO, 0, len(rep.Reported))}
	for _, d := range rep.Reported {
		resp.Reported = append(resp.Reported, DayCountDTO{Date: d.Date, Count: d.Count})
	}
	for _, d := range rep.Failed {
		resp.Failed = append(resp.Failed, DayCountDTO{Date: d.Date, Count: d.Count})
	}
	ok(c, http.StatusOK, resp)
}
