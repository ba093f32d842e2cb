package scheduler

import (
	"context"
	"time"

	"github.com/nvoss/ontime/internal/config"
	"github.com/nvoss/ontime/internal/dispatch"
	"github.com/nvoss/ontime/internal/logging"
	"github.com/nvoss/ontime/internal/storage"
	"github.com/nvoss/ontime/internal/traffic"
)

// TrafficChecker refreshes live travel times for enabled trips with a
// route and reschedules any trip whose measurement changed.
type TrafficChecker struct {
	tripRepo   *storage.TripRepo
	adjuster   *traffic.Adjuster
	dispatcher *dispatch.Dispatcher

	now func() time.Time
}

// NewTrafficChecker creates a new traffic checker.
func NewTrafficChecker(tripRepo *storage.TripRepo, adjuster *traffic.Adjuster, dispatcher *dispatch.Dispatcher) *TrafficChecker {
	return &TrafficChecker{
		tripRepo:   tripRepo,
		adjuster:   adjuster,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Check refreshes traffic for every enabled trip within the refresh
// horizon. A changed measurement triggers a full reschedule so the
// alarm set tracks the new departure time.
func (c *TrafficChecker) Check() {
	trips, err := c.tripRepo.ListEnabled()
	if err != nil {
		logging.Warn("failed to list trips for traffic refresh", logging.KeyError, err)
		return
	}

	ctx := context.Background()
	now := c.now()

	for _, trip := range trips {
		if !trip.HasRoute() {
			continue
		}
		// Measuring a trip that leaves tomorrow evening every five
		// minutes is wasted network traffic.
		if trip.ArrivalTime.Before(now) || trip.ArrivalTime.Sub(now) > config.Global.Traffic.RefreshHorizon {
			continue
		}

		result, err := c.adjuster.Refresh(ctx, trip)
		if err != nil {
			// Measurement failure degrades silently to the static
			// baseline; nothing to reschedule.
			continue
		}

		if !result.Changed {
			continue
		}

		logging.Info("travel time changed, rescheduling",
			logging.KeyTrip, trip.ShortID(),
			logging.KeyTraffic, string(result.Tier),
			logging.KeyDuration, result.Measured.String())

		if _, err := c.dispatcher.Reschedule(ctx, result.Trip); err != nil {
			logging.Warn("reschedule after traffic change failed",
				logging.KeyTrip, trip.ShortID(),
				logging.KeyError, err)
		}
	}
}
