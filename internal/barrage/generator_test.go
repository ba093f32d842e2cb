package barrage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvoss/ontime/internal/model"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 9, 1, hour, min, 0, 0, time.Local)
}

// newScenarioTrip builds the canonical trip: arrival 09:00, prep 30m,
// travel 20m, leave alarm on, barrage off.
func newScenarioTrip() *model.Trip {
	trip := model.NewTrip("office", at(9, 0))
	trip.Key = "trip:abc123"
	trip.PrepDuration = 30 * time.Minute
	trip.StaticTravelTime = 20 * time.Minute
	return trip
}

func TestGenerateMinimalPair(t *testing.T) {
	trip := newScenarioTrip()

	alerts := Generate(trip)
	require.Len(t, alerts, 2)

	assert.Equal(t, model.TierMainWake, alerts[0].Tier)
	assert.Equal(t, at(8, 10), alerts[0].FireTime)
	assert.Equal(t, model.AlertID(trip.ID(), model.TierMainWake, 0), alerts[0].ID)

	assert.Equal(t, model.TierLeave, alerts[1].Tier)
	assert.Equal(t, at(8, 40), alerts[1].FireTime)
	assert.Equal(t, model.AlertID(trip.ID(), model.TierLeave, 0), alerts[1].ID)
}

func TestGenerateWithoutLeaveAlarm(t *testing.T) {
	trip := newScenarioTrip()
	trip.LeaveAlarm = false

	alerts := Generate(trip)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.TierMainWake, alerts[0].Tier)
}

func TestGenerateBarrage(t *testing.T) {
	trip := newScenarioTrip()
	trip.BarrageEnabled = true
	trip.PreWakeCount = 2
	trip.PostWakeCount = 3
	trip.BarrageInterval = 2 * time.Minute

	alerts := Generate(trip)
	require.Len(t, alerts, 7) // 2 pre + 1 main + 3 post + 1 leave

	want := []struct {
		fireTime time.Time
		tier     model.Tier
		ordinal  int
	}{
		{at(8, 6), model.TierPreWake, 2},
		{at(8, 8), model.TierPreWake, 1},
		{at(8, 10), model.TierMainWake, 0},
		{at(8, 12), model.TierPostWake, 1},
		{at(8, 14), model.TierPostWake, 2},
		{at(8, 16), model.TierPostWake, 3},
		{at(8, 40), model.TierLeave, 0},
	}

	for i, w := range want {
		assert.Equal(t, w.fireTime, alerts[i].FireTime, "alert %d fire time", i)
		assert.Equal(t, w.tier, alerts[i].Tier, "alert %d tier", i)
		assert.Equal(t, w.ordinal, alerts[i].Ordinal, "alert %d ordinal", i)
	}

	// Strictly increasing fire times.
	for i := 1; i < len(alerts); i++ {
		assert.True(t, alerts[i-1].FireTime.Before(alerts[i].FireTime))
	}
}

func TestGenerateIdempotent(t *testing.T) {
	trip := newScenarioTrip()
	trip.BarrageEnabled = true
	trip.PreWakeCount = 3
	trip.PostWakeCount = 5

	first := Generate(trip)
	second := Generate(trip)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].FireTime, second[i].FireTime)
	}
}

func TestGenerateCount(t *testing.T) {
	tests := []struct {
		name     string
		pre      int
		post     int
		leave    bool
		expected int
	}{
		{"no extras", 0, 0, false, 1},
		{"leave only", 0, 0, true, 2},
		{"pre only", 4, 0, true, 6},
		{"post only", 0, 7, false, 8},
		{"full", 10, 30, true, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := newScenarioTrip()
			trip.BarrageEnabled = true
			trip.PreWakeCount = tt.pre
			trip.PostWakeCount = tt.post
			trip.LeaveAlarm = tt.leave

			assert.Len(t, Generate(trip), tt.expected)
		})
	}
}

func TestGeneratePostWakeUrgencyEscalates(t *testing.T) {
	trip := newScenarioTrip()
	trip.BarrageEnabled = true
	trip.PostWakeCount = 6
	trip.LeaveAlarm = false

	alerts := Generate(trip)

	var urgencies []model.Urgency
	for _, a := range alerts {
		if a.Tier == model.TierPostWake {
			urgencies = append(urgencies, a.Urgency)
		}
	}
	require.Len(t, urgencies, 6)

	// Even three-band partition over 6 ordinals.
	assert.Equal(t, []model.Urgency{
		model.UrgencyLow, model.UrgencyLow,
		model.UrgencyMedium, model.UrgencyMedium,
		model.UrgencyHigh, model.UrgencyHigh,
	}, urgencies)

	for i := 1; i < len(urgencies); i++ {
		assert.LessOrEqual(t, urgencies[i-1], urgencies[i])
	}
}

func TestGeneratePreWakeReminder(t *testing.T) {
	trip := newScenarioTrip()
	trip.PreWakeAlarm = true

	alerts := Generate(trip)
	require.Len(t, alerts, 3)

	assert.Equal(t, model.TierPreWake, alerts[0].Tier)
	assert.Equal(t, 0, alerts[0].Ordinal)
	assert.Equal(t, at(8, 5), alerts[0].FireTime)
	assert.Equal(t, model.AlertID(trip.ID(), model.TierPreWake, 0), alerts[0].ID)
}

func TestGenerateLiveTravelShiftsTimes(t *testing.T) {
	trip := newScenarioTrip()
	trip.LiveTravelTime = 30 * time.Minute
	trip.LiveMeasuredAt = time.Now()

	alerts := Generate(trip)
	require.Len(t, alerts, 2)
	assert.Equal(t, at(8, 0), alerts[0].FireTime)  // wake shifts 10m earlier
	assert.Equal(t, at(8, 30), alerts[1].FireTime) // departure too
}

func TestGenerateSoundsCarried(t *testing.T) {
	trip := newScenarioTrip()
	trip.BarrageEnabled = true
	trip.PreWakeCount = 1
	trip.PostWakeCount = 1
	trip.PreWakeSound = "chime"
	trip.WakeSound = "klaxon"
	trip.LeaveSound = "bell"

	alerts := Generate(trip)
	byTier := map[model.Tier]string{}
	for _, a := range alerts {
		byTier[a.Tier] = a.Sound
	}

	assert.Equal(t, "chime", byTier[model.TierPreWake])
	assert.Equal(t, "klaxon", byTier[model.TierMainWake])
	assert.Equal(t, "klaxon", byTier[model.TierPostWake])
	assert.Equal(t, "bell", byTier[model.TierLeave])
}
