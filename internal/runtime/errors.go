package runtime

import (
	stderrors "errors"
	"strings"
	"syscall"

	"github.com/nvoss/ontime/internal/errors"
)

// Suggestions provides helpful suggestions for common errors.
var Suggestions = map[error]string{
	errors.ErrTripNotFound:         "Use 'ontime trip list' to see saved trips.",
	errors.ErrAlertNotFound:        "Use 'ontime alarms' to see scheduled alarms.",
	errors.ErrWebhookNotFound:      "Use 'ontime webhook list' to see configured webhooks.",
	errors.ErrInvalidDuration:      "Try formats like '30m', '1h15m', or a bare number of minutes.",
	errors.ErrInvalidInterval:      "The barrage interval must be a positive duration like '5m'.",
	errors.ErrInvalidArrival:       "Try formats like 'tomorrow 9am', '8:30', or '+45m'.",
	errors.ErrInvalidURL:           "Webhook URLs must be https (or http for localhost).",
	errors.ErrMeasurementFailed:    "Live traffic is unavailable; the static travel time still applies.",
	errors.ErrNothingScheduled:     "The trip is enabled but has no alarms - check that its times are in the future.",
	errors.ErrRouteRequired:        "Set an origin and destination with 'ontime trip set' to enable live traffic.",
	errors.ErrSubstrateUnavailable: "Check that the ontime daemon is running ('ontime daemon start').",
	errors.ErrDiskFull:             "Free up disk space and try again.",
	errors.ErrDatabaseCorrupted:    "The database is unreadable. Move the data directory aside to start fresh.",
}

// GetSuggestion returns a suggestion for an error, if available.
func GetSuggestion(err error) string {
	if ue, ok := errors.AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}
	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}
	return ""
}

// FormatError formats an error with optional suggestion.
func FormatError(err error) string {
	msg := err.Error()
	if suggestion := GetSuggestion(err); suggestion != "" {
		msg += "\n" + suggestion
	}
	return msg
}

// IsDiskFullError checks if an error indicates a disk full condition.
// It checks for ENOSPC and common disk full error patterns.
func IsDiskFullError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, errors.ErrDiskFull) {
		return true
	}

	var errno syscall.Errno
	if stderrors.As(err, &errno) && errno == syscall.ENOSPC {
		return true
	}

	errStr := strings.ToLower(err.Error())
	diskFullPatterns := []string{
		"no space left on device",
		"disk full",
		"enospc",
		"not enough space",
		"insufficient disk space",
		"out of disk space",
	}

	for _, pattern := range diskFullPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
