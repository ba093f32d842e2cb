package storage

import (
	"time"

	"github.com/nvoss/ontime/internal/model"
)

// AlertRepo provides operations for scheduled alerts persisted by the
// local delivery substrate.
type AlertRepo struct {
	db *DB
}

// NewAlertRepo creates a new alert repository.
func NewAlertRepo(db *DB) *AlertRepo {
	return &AlertRepo{db: db}
}

// Put stores a scheduled alert, overwriting any alert with the same id.
func (r *AlertRepo) Put(alert *model.ScheduledAlert) error {
	if alert.Key == "" {
		alert.Key = model.GenerateAlertKey(alert.ID)
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	return r.db.Set(alert)
}

// Get retrieves a scheduled alert by its alert identifier.
func (r *AlertRepo) Get(id string) (*model.ScheduledAlert, error) {
	alert := &model.ScheduledAlert{}
	if err := r.db.Get(model.GenerateAlertKey(id), alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// Delete removes a scheduled alert by its alert identifier. Deleting a
// missing alert is a no-op.
func (r *AlertRepo) Delete(id string) error {
	return r.db.Delete(model.GenerateAlertKey(id))
}

// List retrieves all scheduled alerts.
func (r *AlertRepo) List() ([]*model.ScheduledAlert, error) {
	return GetAllByPrefix(r.db, model.PrefixAlert+":", func() *model.ScheduledAlert {
		return &model.ScheduledAlert{}
	})
}

// ListPending retrieves alerts that have not fired yet.
func (r *AlertRepo) ListPending() ([]*model.ScheduledAlert, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}

	var pending []*model.ScheduledAlert
	for _, a := range all {
		if !a.Fired {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

// ListDue retrieves unfired alerts whose fire time is at or before now.
func (r *AlertRepo) ListDue(now time.Time) ([]*model.ScheduledAlert, error) {
	pending, err := r.ListPending()
	if err != nil {
		return nil, err
	}

	var due []*model.ScheduledAlert
	for _, a := range pending {
		if a.IsDue(now) {
			due = append(due, a)
		}
	}
	return due, nil
}

// ListByTrip retrieves all scheduled alerts for a trip.
func (r *AlertRepo) ListByTrip(tripKey string) ([]*model.ScheduledAlert, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}

	var result []*model.ScheduledAlert
	for _, a := range all {
		if a.TripKey == tripKey {
			result = append(result, a)
		}
	}
	return result, nil
}

// MarkFired marks an alert as fired.
func (r *AlertRepo) MarkFired(id string) error {
	alert, err := r.Get(id)
	if err != nil {
		return err
	}

	alert.Fired = true
	alert.FiredAt = time.Now()

	return r.db.Set(alert)
}

// Exists checks if a scheduled alert exists.
func (r *AlertRepo) Exists(id string) (bool, error) {
	return r.db.Exists(model.GenerateAlertKey(id))
}
