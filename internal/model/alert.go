package model

import (
	"fmt"
	"time"
)

// PrefixAlert is the database key prefix for scheduled alerts.
const PrefixAlert = "alert"

// Tier is the category of an alert, determining its message tone and
// escalation level.
type Tier string

// Alert tiers.
const (
	TierPreWake  Tier = "prewake"
	TierMainWake Tier = "wake"
	TierPostWake Tier = "postwake"
	TierLeave    Tier = "leave"
)

// Urgency is the escalation level carried to the delivery substrate.
type Urgency int

// Urgency levels, monotonically increasing.
const (
	UrgencyLow Urgency = iota
	UrgencyMedium
	UrgencyHigh
)

// String returns a human-readable urgency label.
func (u Urgency) String() string {
	switch u {
	case UrgencyMedium:
		return "medium"
	case UrgencyHigh:
		return "high"
	default:
		return "low"
	}
}

// AlertDescriptor is an ephemeral, fully specified alert produced by
// the barrage generator and consumed by the alarm dispatcher.
type AlertDescriptor struct {
	ID       string        `json:"id"`
	TripKey  string        `json:"trip_key"`
	FireTime time.Time     `json:"fire_time"`
	Title    string        `json:"title"`
	Body     string        `json:"body"`
	Tier     Tier          `json:"tier"`
	Ordinal  int           `json:"ordinal"`
	Urgency  Urgency       `json:"urgency"`
	Sound    string        `json:"sound,omitempty"`
	Offset   time.Duration `json:"-"` // distance from the wake-up time, for display
}

// AlertID builds the deterministic identifier for an alert. Main-wake
// and leave alerts use a fixed ordinal of 0. The determinism is what
// lets the dispatcher cancel a prior set by regenerating the
// identifier list instead of tracking it.
func AlertID(tripID string, tier Tier, ordinal int) string {
	return fmt.Sprintf("%s-%s-%d", tripID, tier, ordinal)
}

// ScheduledAlert is a persisted alert awaiting delivery by the local
// substrate.
type ScheduledAlert struct {
	Key      string    `json:"key"`
	ID       string    `json:"id"`
	TripKey  string    `json:"trip_key"`
	FireTime time.Time `json:"fire_time"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Tier     Tier      `json:"tier"`
	Urgency  Urgency   `json:"urgency"`
	Sound    string    `json:"sound,omitempty"`
	Fired    bool      `json:"fired"`
	FiredAt  time.Time `json:"fired_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// SetKey sets the database key for this alert.
func (a *ScheduledAlert) SetKey(key string) {
	a.Key = key
}

// GetKey returns the database key for this alert.
func (a *ScheduledAlert) GetKey() string {
	return a.Key
}

// IsDue returns true if the alert should fire at or before now.
func (a *ScheduledAlert) IsDue(now time.Time) bool {
	return !a.Fired && !a.FireTime.After(now)
}

// GenerateAlertKey generates a database key for a scheduled alert.
func GenerateAlertKey(id string) string {
	return fmt.Sprintf("%s:%s", PrefixAlert, id)
}
