package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// ArrivalResult holds the parsed arrival time and any error.
type ArrivalResult struct {
	Time  time.Time
	Error error
}

// relativeRegex matches relative time expressions like "+45m", "+2h".
var relativeRegex = regexp.MustCompile(`^\+(\d+)([smhdw])$`)

// ParseArrival parses a natural language arrival-time expression.
// Supports formats like:
//   - "+45m", "+2h" (relative)
//   - "tomorrow 9am", "friday 08:30" (natural language)
//   - "2026-09-01 08:30" (ISO format)
func ParseArrival(input string) ArrivalResult {
	input = strings.TrimSpace(input)
	if input == "" {
		return ArrivalResult{Error: fmt.Errorf("arrival time is required")}
	}

	if match := relativeRegex.FindStringSubmatch(input); match != nil {
		return parseRelativeArrival(match[1], match[2])
	}

	cfg := &dateparser.Configuration{
		CurrentTime: time.Now(),
	}

	result, err := dateparser.Parse(cfg, input)
	if err != nil {
		return ArrivalResult{Error: fmt.Errorf("could not parse arrival time %q", input)}
	}

	// An arrival in the past cannot be scheduled against. A past time
	// of day today is read as tomorrow.
	if result.Time.Before(time.Now()) {
		if isSameDay(result.Time, time.Now()) {
			result.Time = result.Time.AddDate(0, 0, 1)
		} else {
			return ArrivalResult{Error: fmt.Errorf("arrival time must be in the future")}
		}
	}

	return ArrivalResult{Time: result.Time}
}

// ParseArrivalArgs parses an arrival time from command arguments,
// joining multiple args for natural language parsing.
func ParseArrivalArgs(args []string) ArrivalResult {
	if len(args) == 0 {
		return ArrivalResult{Error: fmt.Errorf("arrival time is required")}
	}
	return ParseArrival(strings.Join(args, " "))
}

// parseRelativeArrival parses relative time expressions.
func parseRelativeArrival(numStr, unit string) ArrivalResult {
	num, _ := strconv.Atoi(numStr)
	if num <= 0 {
		return ArrivalResult{Error: fmt.Errorf("invalid offset: must be positive")}
	}

	var d time.Duration
	switch unit {
	case "s":
		d = time.Duration(num) * time.Second
	case "m":
		d = time.Duration(num) * time.Minute
	case "h":
		d = time.Duration(num) * time.Hour
	case "d":
		d = time.Duration(num) * 24 * time.Hour
	case "w":
		d = time.Duration(num) * 7 * 24 * time.Hour
	default:
		return ArrivalResult{Error: fmt.Errorf("invalid time unit: %s", unit)}
	}

	return ArrivalResult{Time: time.Now().Add(d)}
}

// isSameDay checks if two times are on the same day.
func isSameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// FormatArrival formats an arrival time for display.
func FormatArrival(t time.Time) string {
	now := time.Now()
	diff := time.Until(t)

	var datePart string
	if isSameDay(t, now) {
		datePart = "Today"
	} else if isSameDay(t, now.AddDate(0, 0, 1)) {
		datePart = "Tomorrow"
	} else if diff < 7*24*time.Hour && diff > 0 {
		datePart = t.Format("Monday")
	} else {
		datePart = t.Format("Mon, Jan 2")
	}

	return fmt.Sprintf("%s at %s", datePart, t.Format("3:04 PM"))
}

// FormatTimeUntil formats the duration until an instant.
func FormatTimeUntil(t time.Time) string {
	diff := time.Until(t)
	if diff < 0 {
		return "in the past"
	}

	if diff < time.Minute {
		return "less than a minute"
	}
	if diff < time.Hour {
		mins := int(diff.Minutes())
		if mins == 1 {
			return "in 1 minute"
		}
		return fmt.Sprintf("in %d minutes", mins)
	}
	if diff < 24*time.Hour {
		hours := int(diff.Hours())
		mins := int(diff.Minutes()) % 60
		if hours == 1 {
			if mins > 0 {
				return fmt.Sprintf("in 1 hour %d minutes", mins)
			}
			return "in 1 hour"
		}
		if mins > 0 {
			return fmt.Sprintf("in %d hours %d minutes", hours, mins)
		}
		return fmt.Sprintf("in %d hours", hours)
	}

	days := int(diff.Hours() / 24)
	if days == 1 {
		return "in 1 day"
	}
	return fmt.Sprintf("in %d days", days)
}
