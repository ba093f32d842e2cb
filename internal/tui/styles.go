// Package tui provides the terminal dashboard for Ontime.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette for the TUI dashboard.
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorWarning = lipgloss.Color("#F59E0B") // Yellow
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorActive  = lipgloss.Color("#3B82F6") // Blue
	ColorBorder  = lipgloss.Color("#4B5563") // Dark gray
)

// Base styles for the TUI.
var (
	// StyleTitle is used for section titles.
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// StyleSubtitle is used for subtitles and secondary information.
	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleTrip is used for trip labels.
	StyleTrip = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// StyleCountdown is used for the time-remaining readout.
	StyleCountdown = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorActive)

	// StyleDisabled is used for disabled trips.
	StyleDisabled = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleWarning is used for warning messages.
	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// StyleError is used for error messages.
	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	// StyleHelp is used for help text at the bottom.
	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)

	// StyleHelpKey is used for keyboard shortcut keys.
	StyleHelpKey = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)
)

// Box styles for the dashboard sections.
var (
	// StyleTripBox frames the next-departure section.
	StyleTripBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2).
			MarginBottom(1)

	// StyleImminentBox frames the next departure when it is close.
	StyleImminentBox = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorWarning).
				Padding(1, 2).
				MarginBottom(1)

	// StyleAlarmsBox frames the upcoming-alarms section.
	StyleAlarmsBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2).
			MarginBottom(1)
)

// TrafficStyle returns the style for a traffic tier label.
func TrafficStyle(tier string) lipgloss.Style {
	switch tier {
	case "clear":
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	case "moderate":
		return lipgloss.NewStyle().Foreground(ColorWarning)
	case "heavy":
		return lipgloss.NewStyle().Foreground(ColorError)
	default:
		return lipgloss.NewStyle().Foreground(ColorMuted)
	}
}

// HelpBar renders the keyboard shortcut bar.
func HelpBar() string {
	keys := []struct{ key, desc string }{
		{"r", "refresh"},
		{"t", "toggle trip"},
		{"q", "quit"},
	}

	var out string
	for i, k := range keys {
		if i > 0 {
			out += StyleHelp.Render("  •  ")
		}
		out += StyleHelpKey.Render(k.key) + StyleHelp.Render(" "+k.desc)
	}
	return StyleHelp.Render(out)
}
