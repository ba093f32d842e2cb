package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvoss/ontime/internal/errors"
	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/storage"
)

// fakeSubstrate records scheduled alerts in memory and honors
// cancellation by identifier.
type fakeSubstrate struct {
	mu        sync.Mutex
	active    map[string]model.AlertDescriptor
	cancelled []string
	failIDs   map[string]bool
	failAll   bool

	// onSchedule, when set, runs after each successful schedule so a
	// test can interleave with an in-flight dispatch.
	onSchedule func(id string)
}

func newFakeSubstrate() *fakeSubstrate {
	return &fakeSubstrate{
		active:  make(map[string]model.AlertDescriptor),
		failIDs: make(map[string]bool),
	}
}

func (f *fakeSubstrate) Schedule(_ context.Context, alert model.AlertDescriptor) error {
	f.mu.Lock()
	if f.failAll || f.failIDs[alert.ID] {
		f.mu.Unlock()
		return errors.ErrSubstrateUnavailable
	}
	f.active[alert.ID] = alert
	f.mu.Unlock()

	if f.onSchedule != nil {
		f.onSchedule(alert.ID)
	}
	return nil
}

func (f *fakeSubstrate) Cancel(_ context.Context, ids []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.active, id) // no-op for unknown ids
		f.cancelled = append(f.cancelled, id)
	}
}

func (f *fakeSubstrate) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.active)
}

func setup(t *testing.T) (*Dispatcher, *fakeSubstrate, *storage.TripRepo) {
	t.Helper()
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := storage.NewTripRepo(db)
	substrate := newFakeSubstrate()
	return NewDispatcher(substrate, repo), substrate, repo
}

func futureTrip(t *testing.T, repo *storage.TripRepo) *model.Trip {
	t.Helper()
	trip := model.NewTrip("office", time.Now().Add(12*time.Hour))
	require.NoError(t, repo.Create(trip))
	return trip
}

func TestRescheduleMinimalPair(t *testing.T) {
	d, substrate, repo := setup(t)
	trip := futureTrip(t, repo)

	result, err := d.Reschedule(context.Background(), trip)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scheduled) // main wake + leave
	assert.Equal(t, 2, substrate.activeCount())

	reloaded, err := repo.Get(trip.Key)
	require.NoError(t, err)
	assert.Len(t, reloaded.LastScheduledIDs, 2)
}

func TestRescheduleReplacesPriorSet(t *testing.T) {
	d, substrate, repo := setup(t)
	trip := futureTrip(t, repo)

	_, err := d.Reschedule(context.Background(), trip)
	require.NoError(t, err)

	trip, err = repo.Get(trip.Key)
	require.NoError(t, err)
	trip.BarrageEnabled = true
	trip.PreWakeCount = 2
	trip.PostWakeCount = 3
	require.NoError(t, repo.Update(trip))

	result, err := d.Reschedule(context.Background(), trip)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Scheduled)
	assert.Equal(t, 7, substrate.activeCount()) // old pair replaced, no duplicates
}

func TestRescheduleDisabledLeavesNothing(t *testing.T) {
	d, substrate, repo := setup(t)
	trip := futureTrip(t, repo)

	_, err := d.Reschedule(context.Background(), trip)
	require.NoError(t, err)
	require.Equal(t, 2, substrate.activeCount())

	trip, err = repo.Get(trip.Key)
	require.NoError(t, err)
	trip.Enabled = false
	require.NoError(t, repo.Update(trip))

	result, err := d.Reschedule(context.Background(), trip)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Scheduled)
	assert.Equal(t, 0, substrate.activeCount())

	reloaded, err := repo.Get(trip.Key)
	require.NoError(t, err)
	assert.Empty(t, reloaded.LastScheduledIDs)
}

func TestRescheduleFiltersPastTimes(t *testing.T) {
	d, substrate, repo := setup(t)

	// Arrival one minute out: wake and departure are already past,
	// only nothing remains schedulable.
	trip := model.NewTrip("late", time.Now().Add(time.Minute))
	require.NoError(t, repo.Create(trip))

	result, err := d.Reschedule(context.Background(), trip)
	assert.True(t, errors.Is(err, errors.ErrNothingScheduled))
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 0, substrate.activeCount())
}

func TestRescheduleFixedClock(t *testing.T) {
	d, substrate, repo := setup(t)

	arrival := time.Date(2026, 9, 1, 9, 0, 0, 0, time.Local)
	trip := model.NewTrip("office", arrival)
	require.NoError(t, repo.Create(trip))

	// Clock sits between wake (08:10) and departure (08:40): the wake
	// alert is past-due and dropped, the leave alert still schedules.
	d.now = func() time.Time {
		return time.Date(2026, 9, 1, 8, 20, 0, 0, time.Local)
	}

	result, err := d.Reschedule(context.Background(), trip)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scheduled)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, substrate.activeCount())
}

func TestReschedulePartialFailure(t *testing.T) {
	d, substrate, repo := setup(t)
	trip := futureTrip(t, repo)

	substrate.failIDs[model.AlertID(trip.ID(), model.TierMainWake, 0)] = true

	result, err := d.Reschedule(context.Background(), trip)
	require.NoError(t, err) // partial success is acceptable
	assert.Equal(t, 1, result.Scheduled)
	assert.Equal(t, 1, result.Failed)

	reloaded, err := repo.Get(trip.Key)
	require.NoError(t, err)
	require.Len(t, reloaded.LastScheduledIDs, 1)
	assert.Equal(t, model.AlertID(trip.ID(), model.TierLeave, 0), reloaded.LastScheduledIDs[0])
}

func TestRescheduleTotalFailure(t *testing.T) {
	d, substrate, repo := setup(t)
	trip := futureTrip(t, repo)

	substrate.failAll = true

	result, err := d.Reschedule(context.Background(), trip)
	assert.True(t, errors.Is(err, errors.ErrNothingScheduled))
	assert.Equal(t, 0, result.Scheduled)
	assert.Equal(t, 2, result.Failed)
}

func TestCancelUsesExactSetWhenKnown(t *testing.T) {
	d, substrate, repo := setup(t)
	trip := futureTrip(t, repo)

	_, err := d.Reschedule(context.Background(), trip)
	require.NoError(t, err)

	trip, err = repo.Get(trip.Key)
	require.NoError(t, err)

	substrate.mu.Lock()
	substrate.cancelled = nil
	substrate.mu.Unlock()

	cancelled := d.CancelAll(context.Background(), trip)
	assert.Equal(t, 2, cancelled)
	assert.Equal(t, 0, substrate.activeCount())
}

func TestCancelReconstructsWhenUntracked(t *testing.T) {
	d, substrate, repo := setup(t)
	trip := futureTrip(t, repo)

	// No prior dispatch: fall back to the maximal plausible set.
	cancelled := d.CancelAll(context.Background(), trip)

	// pre-wake 0..10, main, post-wake 1..30, leave.
	assert.Equal(t, model.MaxPreWakeAlarms+model.MaxPostWakeAlarms+3, cancelled)
	assert.Len(t, substrate.cancelled, cancelled)
}

func TestStaleDispatchRollsBackItsAlerts(t *testing.T) {
	d, substrate, repo := setup(t)
	trip := futureTrip(t, repo)

	// First dispatch persists the minimal pair as the exact set.
	_, err := d.Reschedule(context.Background(), trip)
	require.NoError(t, err)

	trip, err = repo.Get(trip.Key)
	require.NoError(t, err)
	trip.BarrageEnabled = true
	trip.PreWakeCount = 2
	trip.PostWakeCount = 3
	require.NoError(t, repo.Update(trip))

	// A newer generation arrives while the barrage dispatch is still
	// scheduling, so it is stale by commit time.
	var once sync.Once
	substrate.onSchedule = func(string) {
		once.Do(func() { d.nextGen(trip.Key) })
	}

	result, err := d.Reschedule(context.Background(), trip)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Scheduled)
	substrate.onSchedule = nil

	// The stale dispatch took its own alerts back out; the persisted
	// set still points at the pair it cancelled up front.
	assert.Equal(t, 0, substrate.activeCount())

	// The succeeding dispatch for the newer configuration ends with
	// exactly its own set, nothing left over from the stale one.
	trip, err = repo.Get(trip.Key)
	require.NoError(t, err)
	trip.BarrageEnabled = false
	require.NoError(t, repo.Update(trip))

	result, err = d.Reschedule(context.Background(), trip)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scheduled)
	assert.Equal(t, 2, substrate.activeCount())
}

func TestConcurrentRescheduleNoDuplicates(t *testing.T) {
	d, substrate, repo := setup(t)
	trip := futureTrip(t, repo)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Reschedule(context.Background(), trip)
		}()
	}
	wg.Wait()

	// Stale generations discard themselves; at most one winning set.
	assert.LessOrEqual(t, substrate.activeCount(), 2)
}
