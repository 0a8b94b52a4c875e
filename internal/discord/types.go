// Package discord implements the slice of the Discord HTTP API the monitor
// needs: verifying signed interaction webhooks, the interaction and message
// envelopes, and a small REST client for sending channel messages, editing
// deferred interaction replies and registering slash commands.
package discord

import "encoding/json"

// InteractionType identifies the kind of inbound interaction.
type InteractionType int

const (
	InteractionPing             InteractionType = 1
	InteractionCommand          InteractionType = 2
	InteractionMessageComponent InteractionType = 3
)

// ResponseType identifies how Discord should treat an interaction response.
type ResponseType int

const (
	ResponsePong                   ResponseType = 1
	ResponseChannelMessage         ResponseType = 4
	ResponseDeferredChannelMessage ResponseType = 5
	ResponseDeferredUpdateMessage  ResponseType = 6
	ResponseUpdateMessage          ResponseType = 7
)

// Component types and button styles used by the monitor.
const (
	ComponentActionRow = 1
	ComponentButton    = 2

	ButtonSuccess = 3
	ButtonDanger  = 4
)

// FlagEphemeral makes a channel message visible only to the invoking user.
const FlagEphemeral = 64

// Embed colors.
const (
	ColorGreen  = 0x2ECC71
	ColorRed    = 0xE74C3C
	ColorOrange = 0xF39C12
	ColorGray   = 0x95A5A6
	ColorAlert  = 15158332
	ColorWarn   = 0xFFA500
)

// Interaction is an inbound webhook payload. Only the fields the monitor
// reads are decoded.
type Interaction struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"application_id,omitempty"`
	Type          InteractionType  `json:"type"`
	Token         string           `json:"token"`
	Data          *InteractionData `json:"data,omitempty"`
}

// InteractionData carries the command name (type 2) or the clicked
// component's custom id (type 3).
type InteractionData struct {
	Name          string `json:"name,omitempty"`
	CustomID      string `json:"custom_id,omitempty"`
	ComponentType int    `json:"component_type,omitempty"`
}

// CommandName returns the slash command name, or "" when absent.
func (i Interaction) CommandName() string {
	if i.Data == nil {
		return ""
	}
	return i.Data.Name
}

// CustomID returns the component custom id, or "" when absent.
func (i Interaction) CustomID() string {
	if i.Data == nil {
		return ""
	}
	return i.Data.CustomID
}

// InteractionResponse is the synchronous reply to an interaction webhook.
type InteractionResponse struct {
	Type ResponseType `json:"type"`
	Data *Message     `json:"data,omitempty"`
}

// Message is a channel message body, also used as interaction response data
// and as the payload of an original-message edit.
//
// A nil Components leaves existing buttons untouched on update; a non-nil
// empty slice removes them.
type Message struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []Component `json:"components,omitempty"`
	Flags      int         `json:"flags,omitempty"`
}

// MarshalJSON emits "components": [] for a non-nil empty slice.
func (m Message) MarshalJSON() ([]byte, error) {
	type alias Message
	out := struct {
		alias
		Components *[]Component `json:"components,omitempty"`
	}{alias: alias(m)}
	if m.Components != nil {
		out.Components = &m.Components
	}
	return json.Marshal(out)
}

// NoComponents is the explicit "remove all buttons" value.
func NoComponents() []Component { return []Component{} }

// Embed is a rich message block.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

// Component is a message component: an action row or a button.
type Component struct {
	Type       int         `json:"type"`
	Style      int         `json:"style,omitempty"`
	Label      string      `json:"label,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// Button builds a button component.
func Button(style int, label, customID string) Component {
	return Component{Type: ComponentButton, Style: style, Label: label, CustomID: customID}
}

// ActionRow wraps buttons in a single row.
func ActionRow(buttons ...Component) Component {
	return Component{Type: ComponentActionRow, Components: buttons}
}

// Command is an application command definition for bulk registration.
type Command struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        int    `json:"type"`
}

// Pong is the reply to a ping.
func Pong() InteractionResponse { return InteractionResponse{Type: ResponsePong} }

// Reply builds an immediate response carrying msg.
func Reply(t ResponseType, msg Message) InteractionResponse {
	return InteractionResponse{Type: t, Data: &msg}
}

// Deferred builds a data-less deferred response (type 5 or 6).
func Deferred(t ResponseType) InteractionResponse { return InteractionResponse{Type: t} }
