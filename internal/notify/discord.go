package notify

import (
	"encoding/json"

	"github.com/nvoss/ontime/internal/model"
)

// DiscordFormatter formats fired alarms for Discord webhooks.
type DiscordFormatter struct{}

// discordPayload represents a Discord webhook payload.
type discordPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

// discordEmbed represents a Discord embed.
type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      *discordEmbedFooter `json:"footer,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

// discordEmbedField represents a field in a Discord embed.
type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// discordEmbedFooter represents a footer in a Discord embed.
type discordEmbedFooter struct {
	Text string `json:"text"`
}

// Format converts a fired alarm to Discord webhook format.
func (f *DiscordFormatter) Format(alert *model.ScheduledAlert) ([]byte, error) {
	embed := discordEmbed{
		Title:       alert.Title,
		Description: alert.Body,
		Color:       ColorForUrgency(alert.Urgency),
		Timestamp:   alert.FireTime.UTC().Format("2006-01-02T15:04:05Z"),
		Footer: &discordEmbedFooter{
			Text: "Ontime",
		},
		Fields: []discordEmbedField{
			{Name: "Urgency", Value: alert.Urgency.String(), Inline: true},
			{Name: "Fires at", Value: alert.FireTime.Format("15:04"), Inline: true},
		},
	}

	payload := discordPayload{
		Embeds: []discordEmbed{embed},
	}

	return json.Marshal(payload)
}

// ContentType returns the content type for Discord webhooks.
func (f *DiscordFormatter) ContentType() string {
	return "application/json"
}
