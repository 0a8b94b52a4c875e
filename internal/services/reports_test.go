package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tbourn/go-job-monitor/internal/discord"
)

func TestAnnouncementMessage_Buttons(t *testing.T) {
	msg := AnnouncementMessage("acme", "2024-03-01", 3, []string{"jobA", "jobB"})
	e := msg.Embeds[0]
	if e.Color != discord.ColorAlert || !strings.Contains(e.Title, "2024-03-01") || !strings.Contains(e.Title, "acme") {
		t.Fatalf("embed=%+v", e)
	}
	if !strings.Contains(e.Description, "3 errors across 2 functions") || !strings.Contains(e.Description, "• `jobB`") {
		t.Fatalf("description=%q", e.Description)
	}
	if len(msg.Components) != 1 || len(msg.Components[0].Components) != 2 {
		t.Fatalf("components=%+v", msg.Components)
	}
	retry, reject := msg.Components[0].Components[0], msg.Components[0].Components[1]
	if retry.CustomID != "retry_all:2024-03-01" || retry.Style != discord.ButtonSuccess {
		t.Fatalf("retry=%+v", retry)
	}
	if reject.CustomID != "reject_all:2024-03-01" || reject.Style != discord.ButtonDanger {
		t.Fatalf("reject=%+v", reject)
	}
}

func TestAnnouncementMessage_Singular(t *testing.T) {
	msg := AnnouncementMessage("", "2024-03-01", 1, []string{"jobA"})
	if !strings.Contains(msg.Embeds[0].Description, "1 error across 1 function") {
		t.Fatalf("description=%q", msg.Embeds[0].Description)
	}
}

func TestNoticeMessages_ComponentsOnTheWire(t *testing.T) {
	cases := []struct {
		name   string
		msg    discord.Message
		clears bool
	}{
		{"nothing pending", NothingPendingMessage("2024-03-01"), true},
		{"rejected", RejectedMessage("2024-03-01", 1234), true},
		{"warning", WarningMessage("careful"), false},
		{"store error", StoreErrorMessage("down"), false},
		{"audit failed", AuditFailedMessage("2024-03-01"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := json.Marshal(tc.msg)
			if err != nil {
				t.Fatal(err)
			}
			got := strings.Contains(string(raw), `"components":[]`)
			if got != tc.clears {
				t.Fatalf("clears=%v want %v: %s", got, tc.clears, raw)
			}
		})
	}
}

func TestRejectedMessage_FormatsCount(t *testing.T) {
	d := RejectedMessage("2024-03-01", 1234).Embeds[0].Description
	if !strings.Contains(d, "1,234 records") {
		t.Fatalf("description=%q", d)
	}
}
