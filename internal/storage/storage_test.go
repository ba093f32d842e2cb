package storage

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvoss/ontime/internal/model"
)

func setupTestDB(t *testing.T) *DB {
	db, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCorruptionErrorClassification(t *testing.T) {
	assert.True(t, isCorruptionError(stderrors.New("manifest has unsupported version: 9")))
	assert.True(t, isCorruptionError(stderrors.New("checksum mismatch at offset 512")))
	assert.True(t, isCorruptionError(stderrors.New("value log truncate required")))
	assert.False(t, isCorruptionError(stderrors.New("cannot acquire directory lock")))
	assert.False(t, isCorruptionError(stderrors.New("permission denied")))
}

func TestTripRepoCRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepo(db)

	trip := model.NewTrip("office", time.Now().Add(12*time.Hour))
	require.NoError(t, repo.Create(trip))
	require.NotEmpty(t, trip.Key)
	assert.NotEmpty(t, trip.ID())

	loaded, err := repo.Get(trip.Key)
	require.NoError(t, err)
	assert.Equal(t, "office", loaded.Label)
	assert.Equal(t, model.DefaultPrepDuration, loaded.PrepDuration)
	assert.Equal(t, model.DefaultStaticTravel, loaded.StaticTravelTime)
	assert.True(t, loaded.Enabled)

	loaded.PrepDuration = 45 * time.Minute
	require.NoError(t, repo.Update(loaded))

	reloaded, err := repo.Get(trip.Key)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, reloaded.PrepDuration)

	require.NoError(t, repo.Delete(trip.Key))
	_, err = repo.Get(trip.Key)
	assert.True(t, IsErrKeyNotFound(err))
}

func TestTripRepoGetByShortID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepo(db)

	trip := model.NewTrip("gym", time.Now().Add(6*time.Hour))
	require.NoError(t, repo.Create(trip))

	found, err := repo.GetByShortID(trip.ShortID())
	require.NoError(t, err)
	assert.Equal(t, trip.Key, found.Key)

	_, err = repo.GetByShortID("zzzzzz")
	assert.True(t, IsErrKeyNotFound(err))
}

func TestTripRepoListEnabled(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepo(db)

	enabled := model.NewTrip("enabled", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(enabled))

	disabled := model.NewTrip("disabled", time.Now().Add(time.Hour))
	disabled.Enabled = false
	require.NoError(t, repo.Create(disabled))

	trips, err := repo.ListEnabled()
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "enabled", trips[0].Label)
}

func TestTripRepoSetLiveTravelTime(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepo(db)

	trip := model.NewTrip("office", time.Now().Add(12*time.Hour))
	require.NoError(t, repo.Create(trip))

	measuredAt := time.Now()
	updated, err := repo.SetLiveTravelTime(trip.Key, 30*time.Minute, measuredAt)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, updated.LiveTravelTime)
	assert.Equal(t, 30*time.Minute, updated.EffectiveTravelTime())

	reloaded, err := repo.Get(trip.Key)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, reloaded.LiveTravelTime)
}

func TestTripRepoSetLastScheduledIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepo(db)

	trip := model.NewTrip("office", time.Now().Add(12*time.Hour))
	require.NoError(t, repo.Create(trip))

	ids := []string{
		model.AlertID(trip.ID(), model.TierMainWake, 0),
		model.AlertID(trip.ID(), model.TierLeave, 0),
	}
	require.NoError(t, repo.SetLastScheduledIDs(trip.Key, ids))

	reloaded, err := repo.Get(trip.Key)
	require.NoError(t, err)
	assert.Equal(t, ids, reloaded.LastScheduledIDs)
}

func TestAlertRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertRepo(db)

	now := time.Now()
	due := &model.ScheduledAlert{
		ID:       "trip1-wake-0",
		TripKey:  "trip:trip1",
		FireTime: now.Add(-time.Minute),
		Title:    "Time to wake up",
	}
	future := &model.ScheduledAlert{
		ID:       "trip1-leave-0",
		TripKey:  "trip:trip1",
		FireTime: now.Add(time.Hour),
		Title:    "Time to leave",
	}
	require.NoError(t, repo.Put(due))
	require.NoError(t, repo.Put(future))

	pending, err := repo.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	dueAlerts, err := repo.ListDue(now)
	require.NoError(t, err)
	require.Len(t, dueAlerts, 1)
	assert.Equal(t, "trip1-wake-0", dueAlerts[0].ID)

	require.NoError(t, repo.MarkFired("trip1-wake-0"))
	pending, err = repo.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	byTrip, err := repo.ListByTrip("trip:trip1")
	require.NoError(t, err)
	assert.Len(t, byTrip, 2)

	require.NoError(t, repo.Delete("trip1-leave-0"))
	require.NoError(t, repo.Delete("trip1-leave-0")) // no-op on missing
}

func TestWebhookRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWebhookRepo(db)

	wh := &model.Webhook{
		Name:    "alerts",
		Type:    model.WebhookTypeGeneric,
		URL:     "https://example.com/hook",
		Enabled: true,
	}
	require.NoError(t, repo.Create(wh))

	loaded, err := repo.Get("alerts")
	require.NoError(t, err)
	assert.Equal(t, model.WebhookTypeGeneric, loaded.Type)

	enabled, err := repo.ListEnabled()
	require.NoError(t, err)
	assert.Len(t, enabled, 1)

	require.NoError(t, repo.UpdateLastUsed("alerts", nil))
	loaded, err = repo.Get("alerts")
	require.NoError(t, err)
	assert.False(t, loaded.LastUsed.IsZero())
	assert.Empty(t, loaded.LastError)
}
