// Package barrage turns a trip's derived times and alarm configuration
// into an ordered set of alert descriptors. Generation is pure and
// idempotent: the same trip state always yields the same identifiers
// and fire times, which is what makes cancel-by-regeneration possible.
package barrage

import (
	"fmt"
	"sort"
	"time"

	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/timeplan"
)

// Generate produces the full alert set for a trip. Past-due entries
// are not filtered here; delivery policy belongs to the dispatcher.
func Generate(t *model.Trip) []model.AlertDescriptor {
	plan := timeplan.ForTrip(t)
	tripID := t.ID()

	var alerts []model.AlertDescriptor

	if t.BarrageEnabled {
		// Pre-wake ramp, earliest first.
		for k := t.PreWakeCount; k >= 1; k-- {
			fireTime := plan.WakeUp.Add(-time.Duration(k) * t.BarrageInterval)
			alerts = append(alerts, model.AlertDescriptor{
				ID:       model.AlertID(tripID, model.TierPreWake, k),
				TripKey:  t.Key,
				FireTime: fireTime,
				Title:    "Wake-up approaching",
				Body:     fmt.Sprintf("Your %s alarm rings in %s.", t.Label, formatLead(plan.WakeUp.Sub(fireTime))),
				Tier:     model.TierPreWake,
				Ordinal:  k,
				Urgency:  model.UrgencyLow,
				Sound:    t.PreWakeSound,
				Offset:   fireTime.Sub(plan.WakeUp),
			})
		}
	}

	// The pre-wake reminder is its own fixed-offset alert, present
	// whenever the trip asks for one, barrage or not.
	if t.PreWakeAlarm {
		alerts = append(alerts, model.AlertDescriptor{
			ID:       model.AlertID(tripID, model.TierPreWake, 0),
			TripKey:  t.Key,
			FireTime: plan.PreWake,
			Title:    "Almost time to wake up",
			Body:     fmt.Sprintf("Your %s alarm rings in %s.", t.Label, formatLead(timeplan.PreWakeOffset)),
			Tier:     model.TierPreWake,
			Ordinal:  0,
			Urgency:  model.UrgencyLow,
			Sound:    t.PreWakeSound,
			Offset:   -timeplan.PreWakeOffset,
		})
	}

	// Exactly one main wake alert, always.
	alerts = append(alerts, model.AlertDescriptor{
		ID:       model.AlertID(tripID, model.TierMainWake, 0),
		TripKey:  t.Key,
		FireTime: plan.WakeUp,
		Title:    "Time to wake up",
		Body:     fmt.Sprintf("Get up now to leave for %s at %s.", t.Label, plan.Departure.Format("15:04")),
		Tier:     model.TierMainWake,
		Ordinal:  0,
		Urgency:  model.UrgencyMedium,
		Sound:    t.WakeSound,
		Offset:   0,
	})

	if t.BarrageEnabled {
		// Post-wake escalation, urgency partitioned evenly into three
		// bands across the configured count.
		for k := 1; k <= t.PostWakeCount; k++ {
			fireTime := plan.WakeUp.Add(time.Duration(k) * t.BarrageInterval)
			urgency := postWakeUrgency(k, t.PostWakeCount)
			alerts = append(alerts, model.AlertDescriptor{
				ID:       model.AlertID(tripID, model.TierPostWake, k),
				TripKey:  t.Key,
				FireTime: fireTime,
				Title:    postWakeTitle(urgency),
				Body:     fmt.Sprintf("You planned to be up %s ago for %s.", formatLead(fireTime.Sub(plan.WakeUp)), t.Label),
				Tier:     model.TierPostWake,
				Ordinal:  k,
				Urgency:  urgency,
				Sound:    t.WakeSound,
				Offset:   fireTime.Sub(plan.WakeUp),
			})
		}
	}

	if t.LeaveAlarm {
		alerts = append(alerts, model.AlertDescriptor{
			ID:       model.AlertID(tripID, model.TierLeave, 0),
			TripKey:  t.Key,
			FireTime: plan.Departure,
			Title:    "Time to leave",
			Body:     fmt.Sprintf("Leave now for %s to arrive by %s.", t.Label, plan.Arrival.Format("15:04")),
			Tier:     model.TierLeave,
			Ordinal:  0,
			Urgency:  model.UrgencyHigh,
			Sound:    t.LeaveSound,
			Offset:   plan.Departure.Sub(plan.WakeUp),
		})
	}

	// The pre-wake reminder may land between barrage entries; keep the
	// set in fire-time order for callers that display it.
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].FireTime.Before(alerts[j].FireTime)
	})

	return alerts
}

// postWakeUrgency partitions ordinals 1..count evenly into the three
// urgency bands. With count=3 the bands are exactly one alert each.
func postWakeUrgency(k, count int) model.Urgency {
	if count <= 0 {
		return model.UrgencyLow
	}
	switch band := (k - 1) * 3 / count; band {
	case 0:
		return model.UrgencyLow
	case 1:
		return model.UrgencyMedium
	default:
		return model.UrgencyHigh
	}
}

func postWakeTitle(u model.Urgency) string {
	switch u {
	case model.UrgencyHigh:
		return "Get up now!"
	case model.UrgencyMedium:
		return "You're running behind"
	default:
		return "Still in bed?"
	}
}

// formatLead renders a short duration for alert bodies.
func formatLead(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	mins := int(d.Minutes())
	if mins < 1 {
		return "less than a minute"
	}
	if mins == 1 {
		return "1 minute"
	}
	if mins < 60 {
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := mins / 60
	rem := mins % 60
	if rem == 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%dh%02dm", hours, rem)
}
