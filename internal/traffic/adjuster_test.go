package traffic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvoss/ontime/internal/errors"
	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/storage"
)

type fakeProvider struct {
	duration time.Duration
	err      error
	calls    int
}

func (f *fakeProvider) Measure(_ context.Context, _, _, _ string) (time.Duration, error) {
	f.calls++
	return f.duration, f.err
}

func TestClassify(t *testing.T) {
	baseline := 20 * time.Minute
	tests := []struct {
		name      string
		effective time.Duration
		want      Tier
	}{
		{"well under baseline", 15 * time.Minute, TierClear},
		{"equal to baseline", 20 * time.Minute, TierClear},
		{"just under 1.10", 21*time.Minute + 59*time.Second, TierClear},
		{"exactly 1.10", 22 * time.Minute, TierModerate},
		{"between bounds", 24 * time.Minute, TierModerate},
		{"just under 1.30", 25*time.Minute + 59*time.Second, TierModerate},
		{"exactly 1.30", 26 * time.Minute, TierHeavy},
		{"far above", time.Hour, TierHeavy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.effective, baseline))
		})
	}
}

func TestClassifyInvalidInput(t *testing.T) {
	assert.Equal(t, TierUnknown, Classify(20*time.Minute, 0))
	assert.Equal(t, TierUnknown, Classify(0, 20*time.Minute))
	assert.Equal(t, TierUnknown, Classify(-time.Minute, 20*time.Minute))
}

func newTestTrip(t *testing.T, repo *storage.TripRepo) *model.Trip {
	t.Helper()
	trip := model.NewTrip("office", time.Now().Add(12*time.Hour))
	trip.Origin = "13.388860,52.517037"
	trip.Destination = "13.397634,52.529407"
	trip.StaticTravelTime = 20 * time.Minute
	require.NoError(t, repo.Create(trip))
	return trip
}

func TestRefreshWritesBack(t *testing.T) {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := storage.NewTripRepo(db)
	trip := newTestTrip(t, repo)

	provider := &fakeProvider{duration: 27 * time.Minute}
	adjuster := NewAdjuster(provider, repo)

	result, err := adjuster.Refresh(context.Background(), trip)
	require.NoError(t, err)
	assert.Equal(t, TierHeavy, result.Tier)
	assert.Equal(t, 27*time.Minute, result.Measured)
	assert.True(t, result.Changed)

	reloaded, err := repo.Get(trip.Key)
	require.NoError(t, err)
	assert.Equal(t, 27*time.Minute, reloaded.LiveTravelTime)
	assert.Equal(t, 27*time.Minute, reloaded.EffectiveTravelTime())
}

func TestRefreshFailureLeavesRecordUntouched(t *testing.T) {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := storage.NewTripRepo(db)
	trip := newTestTrip(t, repo)

	_, err = repo.SetLiveTravelTime(trip.Key, 25*time.Minute, time.Now())
	require.NoError(t, err)

	provider := &fakeProvider{err: errors.ErrTimeout}
	adjuster := NewAdjuster(provider, repo)

	trip, err = repo.Get(trip.Key)
	require.NoError(t, err)

	result, err := adjuster.Refresh(context.Background(), trip)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMeasurementFailed))
	assert.Equal(t, TierUnknown, result.Tier)

	reloaded, err := repo.Get(trip.Key)
	require.NoError(t, err)
	assert.Equal(t, 25*time.Minute, reloaded.LiveTravelTime)
}

func TestRefreshRequiresRoute(t *testing.T) {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := storage.NewTripRepo(db)
	trip := model.NewTrip("no-route", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(trip))

	adjuster := NewAdjuster(&fakeProvider{duration: time.Minute}, repo)
	_, err = adjuster.Refresh(context.Background(), trip)
	assert.True(t, errors.Is(err, errors.ErrRouteRequired))
}

func TestRefreshCachesMeasurements(t *testing.T) {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := storage.NewTripRepo(db)
	trip := newTestTrip(t, repo)

	provider := &fakeProvider{duration: 21 * time.Minute}
	adjuster := NewAdjuster(provider, repo)

	_, err = adjuster.Refresh(context.Background(), trip)
	require.NoError(t, err)
	_, err = adjuster.Refresh(context.Background(), trip)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
}

func TestCurrentTier(t *testing.T) {
	trip := model.NewTrip("office", time.Now().Add(time.Hour))
	trip.StaticTravelTime = 20 * time.Minute

	assert.Equal(t, TierUnknown, CurrentTier(trip))

	trip.LiveTravelTime = 22 * time.Minute
	trip.LiveMeasuredAt = time.Now()
	assert.Equal(t, TierModerate, CurrentTier(trip))
}
