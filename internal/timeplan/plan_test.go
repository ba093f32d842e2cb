package timeplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nvoss/ontime/internal/model"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 9, 1, hour, min, 0, 0, time.Local)
}

func TestDeriveScenario(t *testing.T) {
	// Arrival 09:00, prep 30m, travel 20m.
	plan := Derive(at(9, 0), 30*time.Minute, 20*time.Minute)

	assert.Equal(t, at(8, 40), plan.Departure)
	assert.Equal(t, at(8, 10), plan.WakeUp)
	assert.Equal(t, at(9, 0), plan.Arrival)
	assert.True(t, plan.PreWake.IsZero())
}

func TestDeriveOrdering(t *testing.T) {
	tests := []struct {
		name   string
		prep   time.Duration
		travel time.Duration
	}{
		{"both positive", 30 * time.Minute, 20 * time.Minute},
		{"zero prep", 0, 20 * time.Minute},
		{"zero travel", 30 * time.Minute, 0},
		{"both zero", 0, 0},
		{"long haul", 10 * time.Hour, 16 * time.Hour},
	}

	arrival := at(9, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Derive(arrival, tt.prep, tt.travel)

			assert.False(t, plan.WakeUp.After(plan.Departure))
			assert.False(t, plan.Departure.After(plan.Arrival))

			if tt.prep == 0 {
				assert.Equal(t, plan.Departure, plan.WakeUp)
			} else {
				assert.True(t, plan.WakeUp.Before(plan.Departure))
			}
			if tt.travel == 0 {
				assert.Equal(t, plan.Arrival, plan.Departure)
			} else {
				assert.True(t, plan.Departure.Before(plan.Arrival))
			}
		})
	}
}

func TestDeriveCrossesMidnight(t *testing.T) {
	// Wake time legitimately falls on the previous day.
	arrival := time.Date(2026, 9, 1, 0, 30, 0, 0, time.Local)
	plan := Derive(arrival, time.Hour, time.Hour)

	assert.Equal(t, 31, plan.WakeUp.Day())
	assert.Equal(t, time.Month(8), plan.WakeUp.Month())
}

func TestForTripUsesEffectiveTravel(t *testing.T) {
	trip := model.NewTrip("office", at(9, 0))
	trip.PrepDuration = 30 * time.Minute
	trip.StaticTravelTime = 20 * time.Minute

	plan := ForTrip(trip)
	assert.Equal(t, at(8, 40), plan.Departure)

	// Live measurement supersedes the baseline: departure shifts 10
	// minutes earlier.
	trip.LiveTravelTime = 30 * time.Minute
	plan = ForTrip(trip)
	assert.Equal(t, at(8, 30), plan.Departure)
	assert.Equal(t, at(8, 0), plan.WakeUp)
}

func TestForTripPreWake(t *testing.T) {
	trip := model.NewTrip("office", at(9, 0))
	trip.PrepDuration = 30 * time.Minute
	trip.StaticTravelTime = 20 * time.Minute

	plan := ForTrip(trip)
	assert.True(t, plan.PreWake.IsZero())

	trip.PreWakeAlarm = true
	plan = ForTrip(trip)
	assert.Equal(t, plan.WakeUp.Add(-PreWakeOffset), plan.PreWake)
}
