// Package services – chat message builders
//
// This file renders every message the monitor posts or edits: the per-day
// failure announcement with its remediation buttons, the retry summary, the
// audit report, and the short notices used for warnings and confirmations.
// Numbers are formatted with golang.org/x/text/message so counts carry
// thousands separators.
package services

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tbourn/go-job-monitor/internal/discord"
)

// Custom-id actions carried by announcement buttons.
const (
	ActionRetryAll  = "retry_all"
	ActionRejectAll = "reject_all"
)

// UndatedGroup labels pending errors filed without a business day.
const UndatedGroup = "undated"

var numbers = message.NewPrinter(language.English)

func formatCount(n int64) string { return numbers.Sprintf("%d", n) }

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func bulletList(names []string) string {
	var b strings.Builder
	for i, n := range names {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "• `%s`", n)
	}
	return b.String()
}

// notice is a single-embed message. A nil components slice leaves existing
// buttons in place when used as an update.
func notice(text string, color int, components []discord.Component) discord.Message {
	return discord.Message{
		Embeds:     []discord.Embed{{Description: text, Color: color}},
		Components: components,
	}
}

// AnnouncementMessage builds the per-day failure announcement. Records with
// no business day get no buttons since the actions are addressed by date.
func AnnouncementMessage(project, day string, errorCount int, functions []string) discord.Message {
	title := "🚨 Unprocessed errors for " + day
	if project != "" {
		title += " · " + project
	}
	desc := fmt.Sprintf("**%d %s across %d %s** for business day `%s`:\n\n%s",
		errorCount, plural(errorCount, "error", "errors"),
		len(functions), plural(len(functions), "function", "functions"),
		day, bulletList(functions))

	embed := discord.Embed{Title: title, Description: desc, Color: discord.ColorAlert}
	msg := discord.Message{Embeds: []discord.Embed{embed}}

	if day == UndatedGroup {
		msg.Embeds[0].Footer = &discord.EmbedFooter{Text: "These errors have no business day and cannot be retried from chat."}
		return msg
	}
	msg.Embeds[0].Footer = &discord.EmbedFooter{Text: "Use the buttons to retry or dismiss every error for this date."}
	msg.Components = []discord.Component{discord.ActionRow(
		discord.Button(discord.ButtonSuccess, "✅ Retry all "+day, ActionRetryAll+":"+day),
		discord.Button(discord.ButtonDanger, "❌ Dismiss all", ActionRejectAll+":"+day),
	)}
	return msg
}

// RetryMessage renders a retry outcome and removes the buttons.
func RetryMessage(o RetryOutcome) discord.Message {
	var text string
	var color int
	switch o.Classification() {
	case RetryFullSuccess:
		text = fmt.Sprintf("✅ **Backfill complete for `%s`**\nAll %d %s ran successfully.",
			o.Day, len(o.Succeeded), plural(len(o.Succeeded), "function", "functions"))
		color = discord.ColorGreen
	case RetryFullFailure:
		text = fmt.Sprintf("❌ **Backfill failed for `%s`**\nNo function could be run:\n%s",
			o.Day, bulletList(o.Failed))
		color = discord.ColorRed
	default:
		text = fmt.Sprintf("⚠️ **Partial backfill for `%s`**\n\n✅ Succeeded (%d):\n%s\n\n❌ Failed (%d):\n%s",
			o.Day, len(o.Succeeded), bulletList(o.Succeeded), len(o.Failed), bulletList(o.Failed))
		color = discord.ColorOrange
	}
	return notice(text, color, discord.NoComponents())
}

// AuditMessage renders an audit report.
func AuditMessage(r AuditReport) discord.Message {
	header := fmt.Sprintf("📊 **Audit for `%s`**", r.Day)
	if len(r.Lines) == 0 {
		return notice(header+"\n\nℹ️ No active audit configuration.", discord.ColorGray, nil)
	}

	lines := make([]string, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, auditLine(l))
	}

	footer := []string{fmt.Sprintf("📈 **%s** total records", formatCount(r.TotalRecords))}
	if r.OKRows > 0 {
		footer = append(footer, fmt.Sprintf("✅ %d OK", r.OKRows))
	}
	if r.ErrorRows > 0 {
		footer = append(footer, fmt.Sprintf("❌ %d with errors", r.ErrorRows))
	}

	text := header + "\n\n" + strings.Join(lines, "\n") +
		"\n\n" + strings.Repeat("─", 25) + "\n" + strings.Join(footer, " · ")
	return notice(text, r.Color(), nil)
}

func auditLine(l AuditLine) string {
	switch l.Kind {
	case AuditLineUnknown:
		return fmt.Sprintf("⚠️ `%s`: query failed", l.Name)
	case AuditLineWithErrors:
		return fmt.Sprintf("⚠️ `%s`: %s records (%d %s)", l.Name, formatCount(l.Count), l.Errors, plural(l.Errors, "error", "errors"))
	case AuditLineOrphan:
		return fmt.Sprintf("❌ `%s`: failed (%d %s)", l.Name, l.Errors, plural(l.Errors, "error", "errors"))
	default:
		return fmt.Sprintf("✅ `%s`: %s records", l.Name, formatCount(l.Count))
	}
}

// AuditFailedMessage is shown when the audit could not load its inputs.
func AuditFailedMessage(day string) discord.Message {
	return notice(fmt.Sprintf("📊 **Audit for `%s`**\n\n❌ The audit configuration could not be loaded. Try again later.", day), discord.ColorRed, nil)
}

// NothingPendingMessage answers retry_all when no record is left to retry.
func NothingPendingMessage(day string) discord.Message {
	return notice(fmt.Sprintf("ℹ️ No pending errors for `%s` (they may have been processed already).", day),
		discord.ColorGray, discord.NoComponents())
}

// RejectedMessage confirms a reject_all.
func RejectedMessage(day string, deleted int64) discord.Message {
	return notice(fmt.Sprintf("🗑️ **Errors dismissed for `%s`**\n%s %s for that date deleted.",
		day, formatCount(deleted), plural(int(deleted), "record", "records")),
		discord.ColorGray, discord.NoComponents())
}

// WarningMessage is a user-visible warning that keeps existing buttons.
func WarningMessage(text string) discord.Message {
	return notice("⚠️ "+text, discord.ColorWarn, nil)
}

// StoreErrorMessage reports a failed store call and keeps existing buttons
// so the operator can try again.
func StoreErrorMessage(text string) discord.Message {
	return notice("❌ "+text, discord.ColorRed, nil)
}
