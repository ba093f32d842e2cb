package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/timeplan"
	"github.com/nvoss/ontime/internal/traffic"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarning = lipgloss.Color("#F59E0B") // Yellow
	colorError   = lipgloss.Color("#EF4444") // Red
	colorSuccess = lipgloss.Color("#10B981") // Green

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleTripLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleDuration = lipgloss.NewStyle().
			Bold(true)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	if c.IsColorEnabled() {
		c.Println(styleTitle.Render(text))
	} else {
		c.Println(text)
	}
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	if c.IsColorEnabled() {
		c.Println(styleSuccess.Render("✓ " + text))
	} else {
		c.Println("✓ " + text)
	}
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	if c.IsColorEnabled() {
		c.Println(styleWarning.Render("⚠ " + text))
	} else {
		c.Println("⚠ " + text)
	}
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	if c.IsColorEnabled() {
		c.Println(styleError.Render("✗ " + text))
	} else {
		c.Println("✗ " + text)
	}
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	if c.IsColorEnabled() {
		c.Println(styleMuted.Render(text))
	} else {
		c.Println(text)
	}
}

// TripLabel formats a trip label.
func (c *CLIFormatter) TripLabel(label string) string {
	if c.IsColorEnabled() {
		return styleTripLabel.Render(label)
	}
	return label
}

// Duration formats a duration string.
func (c *CLIFormatter) Duration(text string) string {
	if c.IsColorEnabled() {
		return styleDuration.Render(text)
	}
	return text
}

// TrafficBadge renders a traffic tier indicator.
func (c *CLIFormatter) TrafficBadge(tier traffic.Tier) string {
	label := string(tier)
	if !c.IsColorEnabled() {
		return label
	}
	switch tier {
	case traffic.TierClear:
		return styleSuccess.Render(label)
	case traffic.TierModerate:
		return styleWarning.Render(label)
	case traffic.TierHeavy:
		return styleError.Render(label)
	default:
		return styleMuted.Render(label)
	}
}

// PrintTripPlan prints the derived times for a trip.
func (c *CLIFormatter) PrintTripPlan(trip *model.Trip, plan timeplan.Plan) {
	c.Printf("%s  (%s)\n", c.TripLabel(trip.Label), trip.ShortID())
	if trip.PreWakeAlarm {
		c.Printf("  Pre-wake:  %s\n", FormatTimeShort(plan.PreWake))
	}
	c.Printf("  Wake up:   %s\n", c.Duration(FormatTimeShort(plan.WakeUp)))
	c.Printf("  Leave:     %s\n", c.Duration(FormatTimeShort(plan.Departure)))
	c.Printf("  Arrive by: %s\n", FormatTimeShort(plan.Arrival))

	travel := trip.EffectiveTravelTime()
	if trip.HasLiveTravelTime() {
		c.Printf("  Travel:    %s (live, %s traffic)\n",
			FormatDuration(travel), c.TrafficBadge(traffic.CurrentTier(trip)))
	} else {
		c.Printf("  Travel:    %s (static)\n", FormatDuration(travel))
	}
	c.Printf("  Prep:      %s\n", FormatDuration(trip.PrepDuration))

	if !trip.Enabled {
		c.Muted("  Disabled - no alarms scheduled.")
	}
}

// PrintAlerts prints a list of alert descriptors.
func (c *CLIFormatter) PrintAlerts(alerts []model.AlertDescriptor) {
	if len(alerts) == 0 {
		c.Muted("No alarms.")
		return
	}

	rows := make([]TableRow, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, TableRow{Columns: []string{
			FormatTimeShort(a.FireTime),
			string(a.Tier),
			a.Urgency.String(),
			a.Title,
		}})
	}
	c.PrintTable([]string{"TIME", "TIER", "URGENCY", "TITLE"}, rows)
}

// TableRow is one row of a simple table.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && len(col) > widths[i] {
				widths[i] = len(col)
			}
		}
	}

	// Print headers
	var headerLine strings.Builder
	for i, h := range headers {
		headerLine.WriteString(fmt.Sprintf("%-*s  ", widths[i], h))
	}
	if c.IsColorEnabled() {
		c.Println(styleBold.Render(headerLine.String()))
	} else {
		c.Println(headerLine.String())
	}

	// Print separator
	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(sep.String())

	// Print rows
	for _, row := range rows {
		var rowLine strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				rowLine.WriteString(fmt.Sprintf("%-*s  ", widths[i], col))
			}
		}
		c.Println(rowLine.String())
	}
}
