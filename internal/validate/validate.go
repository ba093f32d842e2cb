// Package validate provides input validation for the Ontime CLI.
// Invariant violations are rejected here, at the record-mutation
// boundary, so they never reach the scheduling engine.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nvoss/ontime/internal/errors"
	"github.com/nvoss/ontime/internal/model"
)

const (
	// MaxLabelLength is the maximum length for a trip label.
	MaxLabelLength = 80
	// MaxPlaceLength is the maximum length for an origin or destination.
	MaxPlaceLength = 256
	// MaxURLLength is the maximum length for a webhook URL.
	MaxURLLength = 2048
)

// TripLabel validates a trip label.
func TripLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return errors.NewUserError("Trip label cannot be empty", "Provide a label like 'morning commute'")
	}
	if utf8.RuneCountInString(label) > MaxLabelLength {
		return errors.NewUserErrorWithField("label", label,
			"Trip label too long",
			fmt.Sprintf("Labels must be %d characters or fewer", MaxLabelLength))
	}
	return nil
}

// Arrival validates a target arrival time.
func Arrival(t time.Time) error {
	if t.IsZero() {
		return errors.NewUserError("Arrival time is required",
			"Provide a time like 'tomorrow 9am' or '2026-09-01 08:30'")
	}
	return nil
}

// PrepDuration validates a preparation duration.
func PrepDuration(d time.Duration) error {
	if d < 0 {
		return errors.NewUserErrorWithField("prep", d.String(),
			"Preparation duration cannot be negative",
			"Use a duration like '30m' or '1h'")
	}
	return nil
}

// TravelTime validates a baseline travel duration.
func TravelTime(d time.Duration) error {
	if d < 0 {
		return errors.NewUserErrorWithField("travel", d.String(),
			"Travel time cannot be negative",
			"Use a duration like '20m' or '1h15m'")
	}
	return nil
}

// BarrageInterval validates the spacing between barrage alarms.
func BarrageInterval(d time.Duration) error {
	if d <= 0 {
		return errors.NewUserErrorWithField("interval", d.String(),
			"Barrage interval must be positive",
			"Use a duration like '2m' or '5m'")
	}
	return nil
}

// AlarmCounts validates the pre- and post-wake alarm counts.
func AlarmCounts(pre, post int) error {
	if pre < 0 || pre > model.MaxPreWakeAlarms {
		return errors.NewUserErrorWithField("pre", fmt.Sprintf("%d", pre),
			"Pre-wake alarm count out of range",
			fmt.Sprintf("Must be between 0 and %d", model.MaxPreWakeAlarms))
	}
	if post < 0 || post > model.MaxPostWakeAlarms {
		return errors.NewUserErrorWithField("post", fmt.Sprintf("%d", post),
			"Post-wake alarm count out of range",
			fmt.Sprintf("Must be between 0 and %d", model.MaxPostWakeAlarms))
	}
	return nil
}

// Mode validates a travel mode.
func Mode(mode string) error {
	if mode == "" {
		return nil
	}
	if !model.IsValidMode(mode) {
		return errors.NewUserErrorWithField("mode", mode,
			"Unsupported travel mode",
			"Use one of: "+strings.Join(model.ValidModes(), ", "))
	}
	return nil
}

// Place validates an origin or destination string.
func Place(field, value string) error {
	if utf8.RuneCountInString(value) > MaxPlaceLength {
		return errors.NewUserErrorWithField(field, value,
			"Place name too long",
			fmt.Sprintf("Must be %d characters or fewer", MaxPlaceLength))
	}
	return nil
}

// Trip validates a full trip record at the mutation boundary.
func Trip(t *model.Trip) error {
	if err := TripLabel(t.Label); err != nil {
		return err
	}
	if err := Arrival(t.ArrivalTime); err != nil {
		return err
	}
	if err := PrepDuration(t.PrepDuration); err != nil {
		return err
	}
	if err := TravelTime(t.StaticTravelTime); err != nil {
		return err
	}
	if err := BarrageInterval(t.BarrageInterval); err != nil {
		return err
	}
	if err := AlarmCounts(t.PreWakeCount, t.PostWakeCount); err != nil {
		return err
	}
	if err := Mode(t.Mode); err != nil {
		return err
	}
	if err := Place("origin", t.Origin); err != nil {
		return err
	}
	return Place("destination", t.Destination)
}

// URL validates a webhook endpoint URL.
func URL(rawURL string) error {
	if rawURL == "" {
		return errors.NewUserError("URL cannot be empty", "Provide a valid URL")
	}
	if len(rawURL) > MaxURLLength {
		return errors.NewUserError("URL too long",
			fmt.Sprintf("URLs must be %d characters or fewer", MaxURLLength))
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL format",
			"Provide a valid URL starting with https://")
	}

	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL scheme",
			"URLs must use https:// (or http:// for localhost)")
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL: missing hostname",
			"Provide a valid URL like https://example.com/webhook")
	}

	isLocalhost := hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"
	if parsed.Scheme == "http" && !isLocalhost {
		return errors.NewUserErrorWithField("url", rawURL,
			"HTTP not allowed for external URLs",
			"Use https:// for security. HTTP is only allowed for localhost.")
	}

	return nil
}
