package storage

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nvoss/ontime/internal/model"
)

// TripRepo provides operations for Trip entities.
type TripRepo struct {
	db *DB
}

// NewTripRepo creates a new trip repository.
func NewTripRepo(db *DB) *TripRepo {
	return &TripRepo{db: db}
}

// Create creates a new trip with a generated key.
func (r *TripRepo) Create(trip *model.Trip) error {
	if trip.Key == "" {
		trip.Key = model.GenerateTripKey(uuid.New().String())
	}
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now()
	}
	trip.UpdatedAt = time.Now()
	return r.db.Set(trip)
}

// Get retrieves a trip by key.
func (r *TripRepo) Get(key string) (*model.Trip, error) {
	trip := &model.Trip{}
	if err := r.db.Get(key, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// GetByShortID retrieves a trip by ID prefix match.
func (r *TripRepo) GetByShortID(shortID string) (*model.Trip, error) {
	trips, err := r.List()
	if err != nil {
		return nil, err
	}

	var matches []*model.Trip
	for _, t := range trips {
		if strings.HasPrefix(t.ID(), shortID) {
			matches = append(matches, t)
		}
	}

	if len(matches) == 0 {
		return nil, ErrKeyNotFound
	}
	if len(matches) > 1 {
		return nil, &AmbiguousMatchError{Matches: len(matches)}
	}
	return matches[0], nil
}

// AmbiguousMatchError is returned when multiple trips match a short ID.
type AmbiguousMatchError struct {
	Matches int
}

func (e *AmbiguousMatchError) Error() string {
	return "multiple trips match the given ID"
}

// GetByLabel retrieves a trip by exact label match.
func (r *TripRepo) GetByLabel(label string) (*model.Trip, error) {
	trips, err := r.List()
	if err != nil {
		return nil, err
	}

	for _, t := range trips {
		if t.Label == label {
			return t, nil
		}
	}
	return nil, ErrKeyNotFound
}

// List retrieves all trips.
func (r *TripRepo) List() ([]*model.Trip, error) {
	return GetAllByPrefix(r.db, model.PrefixTrip+":", func() *model.Trip {
		return &model.Trip{}
	})
}

// ListEnabled retrieves all enabled trips.
func (r *TripRepo) ListEnabled() ([]*model.Trip, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}

	var enabled []*model.Trip
	for _, t := range all {
		if t.Enabled {
			enabled = append(enabled, t)
		}
	}
	return enabled, nil
}

// Update updates an existing trip.
func (r *TripRepo) Update(trip *model.Trip) error {
	trip.UpdatedAt = time.Now()
	return r.db.Set(trip)
}

// Delete removes a trip by key.
func (r *TripRepo) Delete(key string) error {
	return r.db.Delete(key)
}

// SetLiveTravelTime records a fresh live travel measurement on a trip.
// It reloads the record first so a concurrent edit is not clobbered.
func (r *TripRepo) SetLiveTravelTime(key string, d time.Duration, measuredAt time.Time) (*model.Trip, error) {
	trip, err := r.Get(key)
	if err != nil {
		return nil, err
	}

	trip.LiveTravelTime = d
	trip.LiveMeasuredAt = measuredAt

	if err := r.Update(trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// SetLastScheduledIDs records the exact alert identifier set the
// dispatcher scheduled, so the next cancellation can target it
// precisely.
func (r *TripRepo) SetLastScheduledIDs(key string, ids []string) error {
	trip, err := r.Get(key)
	if err != nil {
		return err
	}

	trip.LastScheduledIDs = ids
	return r.Update(trip)
}

// Exists checks if a trip exists.
func (r *TripRepo) Exists(key string) (bool, error) {
	return r.db.Exists(key)
}
