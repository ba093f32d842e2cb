package substrate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/storage"
)

func TestLocalScheduleAndCancel(t *testing.T) {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := storage.NewAlertRepo(db)
	local := NewLocal(repo)
	ctx := context.Background()

	alert := model.AlertDescriptor{
		ID:       "abc-wake-0",
		TripKey:  "trip:abc",
		FireTime: time.Now().Add(time.Hour),
		Title:    "Time to wake up",
		Urgency:  model.UrgencyMedium,
	}
	require.NoError(t, local.Schedule(ctx, alert))

	stored, err := repo.Get("abc-wake-0")
	require.NoError(t, err)
	assert.Equal(t, "Time to wake up", stored.Title)
	assert.Equal(t, model.UrgencyMedium, stored.Urgency)

	// Same identifier overwrites.
	alert.Title = "updated"
	require.NoError(t, local.Schedule(ctx, alert))
	stored, err = repo.Get("abc-wake-0")
	require.NoError(t, err)
	assert.Equal(t, "updated", stored.Title)

	// Cancellation of unknown ids is a no-op.
	local.Cancel(ctx, []string{"abc-wake-0", "never-scheduled"})
	_, err = repo.Get("abc-wake-0")
	assert.True(t, storage.IsErrKeyNotFound(err))
}
