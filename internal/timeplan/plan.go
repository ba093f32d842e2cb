// Package timeplan derives wake-up and departure instants from a
// trip's time constraints. It is pure arithmetic over instants: no
// clock reads, no clamping to now. Derived times may legitimately fall
// in the past; filtering them is the dispatcher's job.
package timeplan

import (
	"time"

	"github.com/nvoss/ontime/internal/model"
)

// PreWakeOffset is the fixed lead time of the pre-wake reminder before
// the wake-up time.
const PreWakeOffset = 5 * time.Minute

// Plan holds the derived instants for a trip.
type Plan struct {
	WakeUp    time.Time
	Departure time.Time
	Arrival   time.Time

	// PreWake is zero unless the trip has its pre-wake reminder
	// enabled.
	PreWake time.Time
}

// Derive computes departure and wake-up instants from the target
// arrival, preparation duration, and effective travel duration. Total
// function: any input yields a plan. If travel plus prep exceeds 24
// hours the wake time falls on the previous calendar day, which is
// intended (these are instants, not wall-clock components).
func Derive(arrival time.Time, prep, travel time.Duration) Plan {
	departure := arrival.Add(-travel)
	wake := departure.Add(-prep)

	return Plan{
		WakeUp:    wake,
		Departure: departure,
		Arrival:   arrival,
	}
}

// ForTrip derives the plan for a trip using its effective travel time
// (live measurement when present, else the static baseline), and fills
// in the pre-wake reminder instant when the trip has one.
func ForTrip(t *model.Trip) Plan {
	plan := Derive(t.ArrivalTime, t.PrepDuration, t.EffectiveTravelTime())
	if t.PreWakeAlarm {
		plan.PreWake = plan.WakeUp.Add(-PreWakeOffset)
	}
	return plan
}
