// Package substrate implements the local alert-delivery substrate:
// scheduled alerts are persisted in the database and fired by the
// daemon's minute checker. It is the default substrate on systems
// without a platform notification scheduler.
package substrate

import (
	"context"

	"github.com/nvoss/ontime/internal/logging"
	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/storage"
)

// Local persists scheduled alerts for the daemon to fire. Scheduling
// the same identifier twice overwrites; cancelling an unknown
// identifier is a no-op.
type Local struct {
	alerts *storage.AlertRepo
}

// NewLocal creates a local substrate backed by the alert repository.
func NewLocal(alerts *storage.AlertRepo) *Local {
	return &Local{alerts: alerts}
}

// Schedule records the alert for delivery at its fire time.
func (s *Local) Schedule(_ context.Context, alert model.AlertDescriptor) error {
	return s.alerts.Put(&model.ScheduledAlert{
		ID:       alert.ID,
		TripKey:  alert.TripKey,
		FireTime: alert.FireTime,
		Title:    alert.Title,
		Body:     alert.Body,
		Tier:     alert.Tier,
		Urgency:  alert.Urgency,
		Sound:    alert.Sound,
	})
}

// Cancel removes the given alert identifiers. Best-effort: failures
// are logged, never surfaced.
func (s *Local) Cancel(_ context.Context, ids []string) {
	for _, id := range ids {
		if err := s.alerts.Delete(id); err != nil {
			logging.Warn("alert cancellation failed",
				logging.KeyAlert, id,
				logging.KeyError, err)
		}
	}
}
