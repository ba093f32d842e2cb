package model

import (
	"fmt"
	"time"
)

// PrefixTrip is the database key prefix for trips.
const PrefixTrip = "trip"

// Default durations applied when a trip is created.
const (
	DefaultPrepDuration    = 30 * time.Minute
	DefaultStaticTravel    = 20 * time.Minute
	DefaultBarrageInterval = 5 * time.Minute
)

// Upper bounds for barrage alarm counts. The dispatcher also uses them
// to reconstruct identifier sets for trips that predate exact-set
// tracking.
const (
	MaxPreWakeAlarms  = 10
	MaxPostWakeAlarms = 30
)

// Trip is a saved departure: the user wants to arrive somewhere by a
// fixed time, and the engine derives when they must wake and leave.
type Trip struct {
	Key         string `json:"key"`
	Label       string `json:"label" validate:"required,max=80"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	Mode        string `json:"mode,omitempty"` // "driving", "cycling", "walking"

	// Hard constraints.
	ArrivalTime      time.Time     `json:"arrival_time" validate:"required"`
	PrepDuration     time.Duration `json:"prep_duration"`
	StaticTravelTime time.Duration `json:"static_travel_time"`

	// Live data, refreshed opportunistically. Zero means no live
	// measurement is available and the static baseline applies.
	LiveTravelTime time.Duration `json:"live_travel_time,omitempty"`
	LiveMeasuredAt time.Time     `json:"live_measured_at,omitempty"`

	// Alarm configuration.
	PreWakeAlarm    bool          `json:"pre_wake_alarm"`
	LeaveAlarm      bool          `json:"leave_alarm"`
	BarrageEnabled  bool          `json:"barrage_enabled"`
	PreWakeCount    int           `json:"pre_wake_count"`
	PostWakeCount   int           `json:"post_wake_count"`
	BarrageInterval time.Duration `json:"barrage_interval"`

	// Optional per-tier sound identifiers.
	PreWakeSound string `json:"pre_wake_sound,omitempty"`
	WakeSound    string `json:"wake_sound,omitempty"`
	LeaveSound   string `json:"leave_sound,omitempty"`

	// Master switch. A disabled trip has zero outstanding alerts.
	Enabled bool `json:"enabled"`

	// Exact identifiers scheduled by the last successful dispatch, so
	// cancellation can target precisely that set.
	LastScheduledIDs []string `json:"last_scheduled_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetKey sets the database key for this trip.
func (t *Trip) SetKey(key string) {
	t.Key = key
}

// GetKey returns the database key for this trip.
func (t *Trip) GetKey() string {
	return t.Key
}

// ID returns the identifier part of the key (without the prefix).
// All alert identifiers are derived from it.
func (t *Trip) ID() string {
	if len(t.Key) > len(PrefixTrip)+1 {
		return t.Key[len(PrefixTrip)+1:]
	}
	return t.Key
}

// ShortID returns the first 6 characters of the UUID for display.
func (t *Trip) ShortID() string {
	id := t.ID()
	if len(id) > 6 {
		return id[:6]
	}
	return id
}

// EffectiveTravelTime returns the travel duration used for scheduling:
// the live measurement when present, else the static baseline.
func (t *Trip) EffectiveTravelTime() time.Duration {
	if t.LiveTravelTime > 0 {
		return t.LiveTravelTime
	}
	return t.StaticTravelTime
}

// HasLiveTravelTime returns true if a live measurement is recorded.
func (t *Trip) HasLiveTravelTime() bool {
	return t.LiveTravelTime > 0
}

// HasRoute returns true if the trip carries enough routing input for a
// live travel-time measurement.
func (t *Trip) HasRoute() bool {
	return t.Origin != "" && t.Destination != ""
}

// GenerateTripKey generates a database key for a trip using UUID.
func GenerateTripKey(uuid string) string {
	return fmt.Sprintf("%s:%s", PrefixTrip, uuid)
}

// NewTrip creates a new trip with default preparation and travel
// durations. The barrage starts disabled; the main wake alarm always
// exists for an enabled trip.
func NewTrip(label string, arrival time.Time) *Trip {
	return &Trip{
		Label:            label,
		ArrivalTime:      arrival,
		PrepDuration:     DefaultPrepDuration,
		StaticTravelTime: DefaultStaticTravel,
		BarrageInterval:  DefaultBarrageInterval,
		Mode:             "driving",
		LeaveAlarm:       true,
		Enabled:          true,
		CreatedAt:        time.Now(),
	}
}

// ValidModes returns the supported travel modes.
func ValidModes() []string {
	return []string{"driving", "cycling", "walking"}
}

// IsValidMode checks if a travel mode is supported.
func IsValidMode(mode string) bool {
	for _, valid := range ValidModes() {
		if mode == valid {
			return true
		}
	}
	return false
}
