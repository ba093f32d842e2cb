// Package traffic measures live travel times and classifies congestion
// against a trip's static baseline.
package traffic

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nvoss/ontime/internal/config"
	"github.com/nvoss/ontime/internal/errors"
	"github.com/nvoss/ontime/internal/logging"
	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/storage"
)

// Tier is the traffic severity classification.
type Tier string

// Traffic tiers.
const (
	TierClear    Tier = "clear"
	TierModerate Tier = "moderate"
	TierHeavy    Tier = "heavy"
	TierUnknown  Tier = "unknown"
)

// cacheCleanup is the sweep interval for expired measurements.
const cacheCleanup = 5 * time.Minute

// Classify maps the ratio of effective to baseline travel time onto a
// severity tier. Lower bounds are closed: a ratio of exactly 1.10 is
// moderate, exactly 1.30 is heavy. Integer comparison keeps the
// boundaries exact.
func Classify(effective, baseline time.Duration) Tier {
	if baseline <= 0 || effective <= 0 {
		return TierUnknown
	}
	switch {
	case effective*100 < baseline*110:
		return TierClear
	case effective*100 < baseline*130:
		return TierModerate
	default:
		return TierHeavy
	}
}

// Result holds the outcome of a traffic refresh.
type Result struct {
	Tier     Tier
	Measured time.Duration
	Changed  bool // true if the stored live travel time changed
	Trip     *model.Trip
}

// Adjuster refreshes live travel times and writes them back onto trip
// records. A failed measurement never touches the stored value.
type Adjuster struct {
	provider Provider
	trips    *storage.TripRepo
	cache    *gocache.Cache
}

// NewAdjuster creates a new traffic adjuster.
func NewAdjuster(provider Provider, trips *storage.TripRepo) *Adjuster {
	return &Adjuster{
		provider: provider,
		trips:    trips,
		cache:    gocache.New(config.Global.Traffic.CacheTTL, cacheCleanup),
	}
}

// Refresh measures the live travel time for a trip and, on success,
// writes it back to the record. On measurement failure the record is
// left untouched and the tier is unknown; the static baseline keeps
// driving derivation.
func (a *Adjuster) Refresh(ctx context.Context, trip *model.Trip) (Result, error) {
	if !trip.HasRoute() {
		return Result{Tier: TierUnknown, Trip: trip}, errors.ErrRouteRequired
	}

	measured, err := a.measure(ctx, trip)
	if err != nil {
		logging.Warn("travel time measurement failed",
			logging.KeyTrip, trip.ShortID(),
			logging.KeyError, err)
		return Result{Tier: TierUnknown, Trip: trip}, errors.Wrap(errors.ErrMeasurementFailed, trip.Label)
	}

	tier := Classify(measured, trip.StaticTravelTime)
	changed := measured != trip.LiveTravelTime

	updated := trip
	if changed {
		updated, err = a.trips.SetLiveTravelTime(trip.Key, measured, time.Now())
		if err != nil {
			return Result{Tier: tier, Measured: measured, Trip: trip}, err
		}
	}

	logging.Debug("traffic refreshed",
		logging.KeyTrip, trip.ShortID(),
		logging.KeyTraffic, string(tier),
		"measured", measured.String(),
		"baseline", trip.StaticTravelTime.String())

	return Result{Tier: tier, Measured: measured, Changed: changed, Trip: updated}, nil
}

// measure returns a cached measurement when one is fresh, otherwise
// asks the provider.
func (a *Adjuster) measure(ctx context.Context, trip *model.Trip) (time.Duration, error) {
	if cached, ok := a.cache.Get(trip.Key); ok {
		return cached.(time.Duration), nil
	}

	measured, err := a.provider.Measure(ctx, trip.Origin, trip.Destination, trip.Mode)
	if err != nil {
		return 0, err
	}
	if measured <= 0 {
		return 0, errors.ErrMeasurementFailed
	}

	a.cache.Set(trip.Key, measured, gocache.DefaultExpiration)
	return measured, nil
}

// CurrentTier classifies a trip's stored state without a new
// measurement.
func CurrentTier(trip *model.Trip) Tier {
	if !trip.HasLiveTravelTime() {
		return TierUnknown
	}
	return Classify(trip.LiveTravelTime, trip.StaticTravelTime)
}
