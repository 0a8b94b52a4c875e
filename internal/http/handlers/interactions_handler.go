// Chat interaction webhook.
//
//   - POST /interactions
//
// Every request is authenticated by its Ed25519 signature over the exact
// bytes received, before the body is decoded.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-job-monitor/internal/discord"
	"github.com/tbourn/go-job-monitor/internal/http/middleware"
	"github.com/tbourn/go-job-monitor/internal/services"
)

// maxInteractionBody bounds the raw webhook payload read for verification.
const maxInteractionBody = 1 << 20

// HandleInteraction godoc
// @ID          handleInteraction
// @Summary     Chat interaction webhook
// @Description Verifies the request signature and answers pings, slash commands and button clicks. Button work runs in the background and edits the original message when done.
// @Tags        Interactions
// @Accept      json
// @Produce     json
//
// @Param       X-Signature-Ed25519    header  string  true  "Hex Ed25519 signature of timestamp+body"
// @Param       X-Signature-Timestamp  header  string  true  "Signature timestamp"
// @Param       body                   body    discord.Interaction  true  "Interaction payload"
//
// @Success     200  {object}  discord.InteractionResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed or unsupported interaction"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid signature"
// @Failure     500  {object}  handlers.ErrorResponse  "Server not configured"
// @Router      /interactions [post]
func (h *Handlers) HandleInteraction(c *gin.Context) {
	if h.d.PublicKey == "" || !h.d.ChatReady || !h.d.StoreReady || h.d.Interactions == nil {
		fail(c, http.StatusInternalServerError, ErrCodeMisconfigured, "server is not configured")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxInteractionBody))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read body")
		return
	}
	sig := c.GetHeader(discord.HeaderSignature)
	ts := c.GetHeader(discord.HeaderTimestamp)
	if !discord.Verify(h.d.PublicKey, sig, ts, body) {
		fail(c, http.StatusUnauthorized, ErrCodeInvalidSignature, "invalid request signature")
		return
	}

	var in discord.Interaction
	if err := json.Unmarshal(body, &in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	lg := middleware.LoggerFrom(c)
	lg.Debug().Int("interaction_type", int(in.Type)).Msg("interaction received")

	resp, err := h.d.Interactions.Handle(c.Request.Context(), in)
	switch {
	case errors.Is(err, services.ErrUnsupportedInteraction):
		fail(c, http.StatusBadRequest, ErrCodeUnsupported, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
		return
	}
	ok(c, http.StatusOK, resp)
}
