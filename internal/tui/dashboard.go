package tui

import (
	"context"
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nvoss/ontime/internal/dispatch"
	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/output"
	"github.com/nvoss/ontime/internal/storage"
	"github.com/nvoss/ontime/internal/timeplan"
	"github.com/nvoss/ontime/internal/traffic"
)

// tickMsg is sent when the timer ticks.
type tickMsg time.Time

// refreshMsg is sent when data needs to be refreshed.
type refreshMsg struct{}

// errMsg is sent when an error occurs.
type errMsg struct {
	err error
}

// DashboardModel is the main bubbletea model for the dashboard.
type DashboardModel struct {
	// Data
	trips    []*model.Trip
	upcoming []*model.ScheduledAlert

	// Collaborators
	tripRepo   *storage.TripRepo
	alertRepo  *storage.AlertRepo
	dispatcher *dispatch.Dispatcher

	// UI state
	width      int
	height     int
	err        error
	message    string
	messageExp time.Time

	// Configuration
	refreshInterval time.Duration
	maxAlarms       int
}

// DashboardConfig holds configuration for the dashboard.
type DashboardConfig struct {
	TripRepo        *storage.TripRepo
	AlertRepo       *storage.AlertRepo
	Dispatcher      *dispatch.Dispatcher
	RefreshInterval time.Duration
	MaxAlarms       int
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(config DashboardConfig) *DashboardModel {
	if config.RefreshInterval == 0 {
		config.RefreshInterval = time.Second
	}
	if config.MaxAlarms == 0 {
		config.MaxAlarms = 8
	}

	return &DashboardModel{
		tripRepo:        config.TripRepo,
		alertRepo:       config.AlertRepo,
		dispatcher:      config.Dispatcher,
		refreshInterval: config.RefreshInterval,
		maxAlarms:       config.MaxAlarms,
	}
}

// Init initializes the model.
func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		m.refreshCmd(),
	)
}

// Update handles messages and updates the model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// Clear expired messages
		if !m.messageExp.IsZero() && time.Now().After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		return m, m.tickCmd()

	case refreshMsg:
		m.loadData()
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		m.loadData()
		m.setMessage("Refreshed", time.Second)
		return m, nil

	case "t":
		// Toggle the next departure on or off.
		if next := m.nextTrip(); next != nil {
			if err := m.toggleTrip(next); err != nil {
				m.err = err
			} else if next.Enabled {
				m.setMessage(fmt.Sprintf("Enabled %s", next.Label), 2*time.Second)
			} else {
				m.setMessage(fmt.Sprintf("Disabled %s", next.Label), 2*time.Second)
			}
			m.loadData()
		} else {
			m.setMessage("No trips to toggle", 2*time.Second)
		}
		return m, nil
	}

	return m, nil
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())

	if m.err != nil {
		sections = append(sections, StyleError.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	sections = append(sections, m.renderNextDeparture())
	sections = append(sections, m.renderUpcomingAlarms())
	sections = append(sections, HelpBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the dashboard header.
func (m *DashboardModel) renderHeader() string {
	title := StyleTitle.Render("Ontime Dashboard")
	now := time.Now().Format("Mon Jan 2, 15:04:05")
	timeStr := StyleSubtitle.Render(now)

	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", timeStr) + "\n"
}

// renderNextDeparture renders the closest enabled trip with its
// derived times and a live countdown.
func (m *DashboardModel) renderNextDeparture() string {
	trip := m.nextTrip()
	if trip == nil {
		return StyleTripBox.Render(StyleSubtitle.Render("No upcoming trips.\nUse 'ontime trip add' to create one."))
	}

	plan := timeplan.ForTrip(trip)
	now := time.Now()

	lines := []string{
		StyleTrip.Render(trip.Label) + StyleSubtitle.Render("  arrive by "+output.FormatTimeShort(plan.Arrival)),
		"",
		fmt.Sprintf("Wake up   %s  %s", output.FormatTimeOnly(plan.WakeUp),
			StyleCountdown.Render(output.FormatCountdown(plan.WakeUp, now))),
		fmt.Sprintf("Leave     %s  %s", output.FormatTimeOnly(plan.Departure),
			StyleCountdown.Render(output.FormatCountdown(plan.Departure, now))),
	}

	tier := traffic.CurrentTier(trip)
	travelLine := fmt.Sprintf("Travel    %s", output.FormatDurationShort(trip.EffectiveTravelTime()))
	if trip.HasLiveTravelTime() {
		travelLine += "  " + TrafficStyle(string(tier)).Render(string(tier))
	}
	lines = append(lines, travelLine)

	if !trip.Enabled {
		lines = append(lines, StyleDisabled.Render("disabled - no alarms"))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if time.Until(plan.Departure) < 30*time.Minute && trip.Enabled {
		return StyleImminentBox.Render(body)
	}
	return StyleTripBox.Render(body)
}

// renderUpcomingAlarms renders the pending alert list.
func (m *DashboardModel) renderUpcomingAlarms() string {
	if len(m.upcoming) == 0 {
		return StyleAlarmsBox.Render(StyleSubtitle.Render("No alarms scheduled."))
	}

	lines := []string{StyleSubtitle.Render("UPCOMING ALARMS")}
	count := len(m.upcoming)
	if count > m.maxAlarms {
		count = m.maxAlarms
	}
	for _, alert := range m.upcoming[:count] {
		lines = append(lines, fmt.Sprintf("%s  %-8s %s",
			output.FormatTimeOnly(alert.FireTime),
			alert.Urgency.String(),
			alert.Title))
	}
	if len(m.upcoming) > count {
		lines = append(lines, StyleSubtitle.Render(fmt.Sprintf("… and %d more", len(m.upcoming)-count)))
	}

	return StyleAlarmsBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// loadData loads trips and pending alarms from the repositories.
func (m *DashboardModel) loadData() {
	trips, err := m.tripRepo.List()
	if err != nil {
		m.err = err
		return
	}
	sort.Slice(trips, func(i, j int) bool {
		return trips[i].ArrivalTime.Before(trips[j].ArrivalTime)
	})
	m.trips = trips

	pending, err := m.alertRepo.ListPending()
	if err != nil {
		m.err = err
		return
	}
	now := time.Now()
	var upcoming []*model.ScheduledAlert
	for _, a := range pending {
		if a.FireTime.After(now) {
			upcoming = append(upcoming, a)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].FireTime.Before(upcoming[j].FireTime)
	})
	m.upcoming = upcoming

	m.err = nil
}

// nextTrip returns the enabled trip with the earliest future arrival,
// falling back to the earliest trip of any state.
func (m *DashboardModel) nextTrip() *model.Trip {
	now := time.Now()
	for _, t := range m.trips {
		if t.Enabled && t.ArrivalTime.After(now) {
			return t
		}
	}
	if len(m.trips) > 0 {
		return m.trips[0]
	}
	return nil
}

// toggleTrip flips a trip's enabled state and reschedules it.
func (m *DashboardModel) toggleTrip(trip *model.Trip) error {
	trip.Enabled = !trip.Enabled
	if err := m.tripRepo.Update(trip); err != nil {
		return err
	}
	_, err := m.dispatcher.Reschedule(context.Background(), trip)
	return err
}

// setMessage sets a temporary message.
func (m *DashboardModel) setMessage(msg string, duration time.Duration) {
	m.message = msg
	m.messageExp = time.Now().Add(duration)
}

// tickCmd returns a command that sends a tick message.
func (m *DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshCmd returns a command that sends a refresh message.
func (m *DashboardModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshMsg{}
	}
}

// Run starts the dashboard TUI.
func Run(config DashboardConfig) error {
	model := NewDashboardModel(config)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
