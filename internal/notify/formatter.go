// Package notify delivers fired alarms to configured webhooks.
package notify

import (
	"github.com/nvoss/ontime/internal/model"
)

// Formatter formats a fired alarm for a specific webhook type.
type Formatter interface {
	// Format converts a fired alarm into the webhook-specific payload.
	Format(alert *model.ScheduledAlert) ([]byte, error)

	// ContentType returns the HTTP Content-Type for the payload.
	ContentType() string
}

// GetFormatter returns the appropriate formatter for a webhook type.
func GetFormatter(webhookType string) Formatter {
	switch webhookType {
	case model.WebhookTypeDiscord:
		return &DiscordFormatter{}
	default:
		return &GenericFormatter{}
	}
}

// ColorForUrgency maps an urgency level to an embed color.
func ColorForUrgency(u model.Urgency) int {
	switch u {
	case model.UrgencyHigh:
		return 0xE74C3C // red
	case model.UrgencyMedium:
		return 0xF39C12 // orange
	default:
		return 0x3498DB // blue
	}
}
