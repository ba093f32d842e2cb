package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvoss/ontime/internal/errors"
	"github.com/nvoss/ontime/internal/model"
)

func TestTripLabel(t *testing.T) {
	assert.NoError(t, TripLabel("morning commute"))
	assert.Error(t, TripLabel(""))
	assert.Error(t, TripLabel("   "))
	assert.Error(t, TripLabel(strings.Repeat("x", MaxLabelLength+1)))
}

func TestDurations(t *testing.T) {
	assert.NoError(t, PrepDuration(0))
	assert.NoError(t, PrepDuration(30*time.Minute))
	assert.Error(t, PrepDuration(-time.Minute))

	assert.NoError(t, TravelTime(0))
	assert.Error(t, TravelTime(-time.Second))

	assert.NoError(t, BarrageInterval(2*time.Minute))
	assert.Error(t, BarrageInterval(0))
	assert.Error(t, BarrageInterval(-5*time.Minute))
}

func TestAlarmCounts(t *testing.T) {
	assert.NoError(t, AlarmCounts(0, 0))
	assert.NoError(t, AlarmCounts(model.MaxPreWakeAlarms, model.MaxPostWakeAlarms))
	assert.Error(t, AlarmCounts(-1, 0))
	assert.Error(t, AlarmCounts(0, -1))
	assert.Error(t, AlarmCounts(model.MaxPreWakeAlarms+1, 0))
	assert.Error(t, AlarmCounts(0, model.MaxPostWakeAlarms+1))
}

func TestMode(t *testing.T) {
	assert.NoError(t, Mode(""))
	assert.NoError(t, Mode("driving"))
	assert.NoError(t, Mode("cycling"))
	assert.Error(t, Mode("teleport"))
}

func TestTripAggregate(t *testing.T) {
	trip := model.NewTrip("office", time.Now().Add(12*time.Hour))
	require.NoError(t, Trip(trip))

	trip.BarrageInterval = 0
	err := Trip(trip)
	require.Error(t, err)
	assert.True(t, errors.IsUserError(err))

	trip.BarrageInterval = time.Minute
	trip.PrepDuration = -time.Minute
	assert.Error(t, Trip(trip))
}

func TestURL(t *testing.T) {
	assert.NoError(t, URL("https://example.com/hook"))
	assert.NoError(t, URL("http://localhost:8080/hook"))
	assert.Error(t, URL(""))
	assert.Error(t, URL("ftp://example.com"))
	assert.Error(t, URL("http://example.com/hook"))
	assert.Error(t, URL("https://"))
}
