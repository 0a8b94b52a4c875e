// Package services – Orchestrator (interaction state machine)
//
// Orchestrator answers verified Discord interactions. Work that fits in the
// platform's few-second acknowledgment window (ping, reject_all, malformed
// input) is answered inline. Longer work (retry_all, the audit command) is
// acknowledged with a deferred response and continues as a background task
// that edits the original message when done. Follow-up edits are
// best-effort: a failed edit is logged and already-applied changes stay.
package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-job-monitor/internal/businessday"
	"github.com/tbourn/go-job-monitor/internal/discord"
	"github.com/tbourn/go-job-monitor/internal/domain"
	"github.com/tbourn/go-job-monitor/internal/observability"
)

// CommandAudit is the slash command that triggers the audit report.
const CommandAudit = "audit"

// Commands lists the application commands the orchestrator understands.
func Commands() []discord.Command {
	return []discord.Command{{
		Name:        CommandAudit,
		Description: "Audit yesterday's loaded records against filed job errors",
		Type:        1,
	}}
}

// Orchestrator dispatches interactions.
type Orchestrator struct {
	Store     RecordStore
	Retrier   *Retrier
	Auditor   *Auditor
	Messenger Messenger
	Tasks     Submitter
}

// Handle returns the synchronous response for in. It returns
// ErrUnsupportedInteraction for interaction types it does not know.
func (o *Orchestrator) Handle(ctx context.Context, in discord.Interaction) (discord.InteractionResponse, error) {
	tr := otel.Tracer("services/Orchestrator")
	ctx, span := tr.Start(ctx, "Handle", trace.WithAttributes(
		attribute.Int("interaction.type", int(in.Type)),
	))
	defer span.End()

	switch in.Type {
	case discord.InteractionPing:
		observability.Interactions.WithLabelValues("ping").Inc()
		return discord.Pong(), nil
	case discord.InteractionCommand:
		observability.Interactions.WithLabelValues("command").Inc()
		return o.handleCommand(ctx, in), nil
	case discord.InteractionMessageComponent:
		observability.Interactions.WithLabelValues("component").Inc()
		return o.handleComponent(ctx, in), nil
	default:
		observability.Interactions.WithLabelValues("unsupported").Inc()
		return discord.InteractionResponse{}, fmt.Errorf("type %d: %w", in.Type, ErrUnsupportedInteraction)
	}
}

func (o *Orchestrator) handleCommand(ctx context.Context, in discord.Interaction) discord.InteractionResponse {
	name := in.CommandName()
	if name != CommandAudit {
		msg := WarningMessage(fmt.Sprintf("Unknown command `%s`.", name))
		msg.Flags = discord.FlagEphemeral
		return discord.Reply(discord.ResponseChannelMessage, msg)
	}

	token := in.Token
	err := o.Tasks.Submit("audit", func(tctx context.Context) error {
		report := o.Auditor.Report(tctx)
		return o.editOriginal(tctx, token, report)
	})
	if err != nil {
		loggerFrom(ctx).Error().Err(err).Msg("audit task rejected")
		msg := WarningMessage("The monitor is busy. Try the audit again in a moment.")
		msg.Flags = discord.FlagEphemeral
		return discord.Reply(discord.ResponseChannelMessage, msg)
	}
	return discord.Deferred(discord.ResponseDeferredChannelMessage)
}

// parseCustomID splits "<action>:<param>" on the first colon.
func parseCustomID(id string) (action, param string) {
	action, param, _ = strings.Cut(id, ":")
	return action, param
}

func (o *Orchestrator) handleComponent(ctx context.Context, in discord.Interaction) discord.InteractionResponse {
	action, param := parseCustomID(in.CustomID())
	if action == "" || param == "" {
		return discord.Reply(discord.ResponseUpdateMessage, WarningMessage("Invalid button format."))
	}

	switch action {
	case ActionRetryAll:
		if !businessday.Valid(param) {
			return discord.Reply(discord.ResponseUpdateMessage, WarningMessage(fmt.Sprintf("Invalid business day `%s`.", param)))
		}
		return o.retryAll(ctx, param, in.Token)
	case ActionRejectAll:
		return o.rejectAll(ctx, param)
	default:
		return discord.Reply(discord.ResponseUpdateMessage, WarningMessage("Unknown action."))
	}
}

func (o *Orchestrator) retryAll(ctx context.Context, day, token string) discord.InteractionResponse {
	lg := loggerFrom(ctx)
	recs, err := o.Retrier.Prepare(ctx, day)
	if err != nil {
		lg.Error().Err(err).Str("business_day", day).Msg("load errors for retry failed")
		return discord.Reply(discord.ResponseUpdateMessage,
			StoreErrorMessage(fmt.Sprintf("Could not load the errors for `%s`. Try again later.", day)))
	}
	if len(recs) == 0 {
		return discord.Reply(discord.ResponseUpdateMessage, NothingPendingMessage(day))
	}

	// Records stay pending or notified until the task marks them retrying.
	err = o.Tasks.Submit("retry_all", func(tctx context.Context) error {
		outcome := o.Retrier.Run(tctx, day, recs)
		return o.editOriginal(tctx, token, RetryMessage(outcome))
	})
	if err != nil {
		lg.Error().Err(err).Str("business_day", day).Msg("retry task rejected")
		return discord.Reply(discord.ResponseUpdateMessage,
			WarningMessage("The monitor is busy. Nothing was changed; try again in a moment."))
	}
	lg.Info().Str("business_day", day).Int("count", len(recs)).Msg("retry scheduled")
	return discord.Deferred(discord.ResponseDeferredUpdateMessage)
}

func (o *Orchestrator) rejectAll(ctx context.Context, day string) discord.InteractionResponse {
	lg := loggerFrom(ctx)
	n, err := o.Store.DeleteErrorsByDay(ctx, day, domain.Unresolved)
	if err != nil {
		lg.Error().Err(err).Str("business_day", day).Msg("reject_all failed")
		return discord.Reply(discord.ResponseUpdateMessage,
			StoreErrorMessage(fmt.Sprintf("Could not dismiss the errors for `%s`. Try again later.", day)))
	}
	lg.Info().Str("business_day", day).Int64("deleted", n).Msg("errors dismissed")
	return discord.Reply(discord.ResponseUpdateMessage, RejectedMessage(day, n))
}

// editOriginal is best-effort: failures are logged and never returned, since
// the task's changes are already applied.
func (o *Orchestrator) editOriginal(ctx context.Context, token string, msg discord.Message) error {
	if err := o.Messenger.EditOriginal(ctx, token, msg); err != nil {
		loggerFrom(ctx).Error().Err(err).Msg("edit original message failed")
	}
	return nil
}
