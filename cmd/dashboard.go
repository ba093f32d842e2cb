package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nvoss/ontime/internal/tui"
)

// dashboardCmd represents the dashboard command.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "tui"},
	Short:   "Open the interactive TUI dashboard",
	Long: `Open an interactive terminal dashboard showing the next departure
with live countdowns and the upcoming alarm schedule.

Keyboard Controls:
  r - Refresh data
  t - Toggle the next trip on/off
  q - Quit dashboard

Examples:
  ontime dashboard
  ontime dash`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	return tui.Run(tui.DashboardConfig{
		TripRepo:   ctx.TripRepo,
		AlertRepo:  ctx.AlertRepo,
		Dispatcher: ctx.Dispatcher,
	})
}
