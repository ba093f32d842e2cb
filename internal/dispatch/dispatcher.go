// Package dispatch orchestrates the alert-delivery substrate. It owns
// the only side effects in the scheduling core: cancelling the prior
// alert set for a trip and scheduling the freshly generated one.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/nvoss/ontime/internal/barrage"
	"github.com/nvoss/ontime/internal/errors"
	"github.com/nvoss/ontime/internal/logging"
	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/storage"
)

// Substrate is the black-box alert-delivery mechanism: schedule an
// alert at a wall-clock time under an identifier, or cancel by
// identifier. Cancellation is best-effort and never fails; cancelling
// an identifier that is not scheduled is a no-op.
type Substrate interface {
	Schedule(ctx context.Context, alert model.AlertDescriptor) error
	Cancel(ctx context.Context, ids []string)
}

// Result summarizes one reschedule pass.
type Result struct {
	Cancelled int
	Scheduled int
	Skipped   int // past-due descriptors dropped
	Failed    int // substrate rejections, logged and skipped
}

// Dispatcher serializes cancel-then-schedule cycles per trip. Two
// trips are independent and may dispatch concurrently.
type Dispatcher struct {
	substrate Substrate
	trips     *storage.TripRepo

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	gens  map[string]uint64

	// now is swappable for tests.
	now func() time.Time
}

// NewDispatcher creates a dispatcher bound to a delivery substrate and
// the trip store it persists scheduled-identifier sets to.
func NewDispatcher(substrate Substrate, trips *storage.TripRepo) *Dispatcher {
	return &Dispatcher{
		substrate: substrate,
		trips:     trips,
		locks:     make(map[string]*sync.Mutex),
		gens:      make(map[string]uint64),
		now:       time.Now,
	}
}

// tripLock returns the mutex serializing dispatches for one trip key.
func (d *Dispatcher) tripLock(key string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[key] = lock
	}
	return lock
}

// nextGen bumps and returns the generation counter for a trip. A
// dispatch whose generation is stale by commit time discards itself,
// so the dispatch for the latest configuration always wins over an
// in-flight older one.
func (d *Dispatcher) nextGen(key string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gens[key]++
	return d.gens[key]
}

func (d *Dispatcher) isStale(key string, gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gens[key] != gen
}

// Reschedule replaces the trip's outstanding alert set with the set
// its current configuration calls for. Cancellation always completes
// before new scheduling begins. A disabled trip ends with zero
// outstanding alerts.
//
// Returns ErrNothingScheduled when the trip is enabled but every
// descriptor was dropped or rejected, leaving it with no active
// alerts. Individual substrate rejections are logged and skipped;
// partial success is acceptable.
func (d *Dispatcher) Reschedule(ctx context.Context, trip *model.Trip) (Result, error) {
	gen := d.nextGen(trip.Key)

	lock := d.tripLock(trip.Key)
	lock.Lock()
	defer lock.Unlock()

	if d.isStale(trip.Key, gen) {
		logging.Debug("discarding stale dispatch",
			logging.KeyTrip, trip.ShortID(), "generation", gen)
		return Result{}, nil
	}

	var result Result
	result.Cancelled = d.cancelLocked(ctx, trip)

	if !trip.Enabled {
		if err := d.trips.SetLastScheduledIDs(trip.Key, nil); err != nil {
			return result, err
		}
		logging.Debug("trip disabled, all alerts cancelled",
			logging.KeyTrip, trip.ShortID())
		return result, nil
	}

	alerts := barrage.Generate(trip)
	now := d.now()

	var scheduledIDs []string
	for _, alert := range alerts {
		if !alert.FireTime.After(now) {
			result.Skipped++
			continue
		}
		if err := d.substrate.Schedule(ctx, alert); err != nil {
			result.Failed++
			logging.Warn("alert scheduling failed",
				logging.KeyTrip, trip.ShortID(),
				logging.KeyAlert, alert.ID,
				logging.KeyFireTime, alert.FireTime,
				logging.KeyError, err)
			continue
		}
		scheduledIDs = append(scheduledIDs, alert.ID)
		result.Scheduled++
	}

	if d.isStale(trip.Key, gen) {
		// A newer dispatch superseded this one while it was scheduling.
		// The newer dispatch only cancels the persisted identifier set,
		// so this one must take its own alerts back out of the
		// substrate before it returns, or they would survive as stale
		// alerts and fire.
		d.substrate.Cancel(ctx, scheduledIDs)
		result.Scheduled = 0
		logging.Debug("stale dispatch rolled back",
			logging.KeyTrip, trip.ShortID(), "generation", gen)
		return result, nil
	}

	if err := d.trips.SetLastScheduledIDs(trip.Key, scheduledIDs); err != nil {
		return result, err
	}

	logging.Info("trip rescheduled",
		logging.KeyTrip, trip.ShortID(),
		logging.KeyCount, result.Scheduled,
		"skipped", result.Skipped,
		"failed", result.Failed)

	if len(alerts) > 0 && result.Scheduled == 0 {
		return result, errors.ErrNothingScheduled
	}
	return result, nil
}

// CancelAll removes every outstanding alert for a trip. Used on
// delete; Reschedule covers the disable case.
func (d *Dispatcher) CancelAll(ctx context.Context, trip *model.Trip) int {
	d.nextGen(trip.Key)

	lock := d.tripLock(trip.Key)
	lock.Lock()
	defer lock.Unlock()

	return d.cancelLocked(ctx, trip)
}

// cancelLocked issues best-effort cancellation for the trip's prior
// alert set. Prefers the exact identifier set persisted by the last
// dispatch; for trips that predate exact tracking it reconstructs the
// maximal plausible set from the deterministic identifier scheme.
func (d *Dispatcher) cancelLocked(ctx context.Context, trip *model.Trip) int {
	ids := trip.LastScheduledIDs
	if len(ids) == 0 {
		ids = reconstructIDs(trip.ID())
	}
	d.substrate.Cancel(ctx, ids)
	return len(ids)
}

// reconstructIDs builds the maximal plausible identifier set for a
// trip: main wake, leave, pre-wake ordinals 0..MaxPreWakeAlarms, and
// post-wake ordinals 1..MaxPostWakeAlarms. Cancelling an identifier
// that was never scheduled is a no-op at the substrate.
func reconstructIDs(tripID string) []string {
	ids := make([]string, 0, model.MaxPreWakeAlarms+model.MaxPostWakeAlarms+3)
	for k := 0; k <= model.MaxPreWakeAlarms; k++ {
		ids = append(ids, model.AlertID(tripID, model.TierPreWake, k))
	}
	ids = append(ids, model.AlertID(tripID, model.TierMainWake, 0))
	for k := 1; k <= model.MaxPostWakeAlarms; k++ {
		ids = append(ids, model.AlertID(tripID, model.TierPostWake, k))
	}
	ids = append(ids, model.AlertID(tripID, model.TierLeave, 0))
	return ids
}
