package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/nvoss/ontime/internal/barrage"
	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/output"
)

// Alarms command flags.
var (
	alarmsFlagAll  bool
	alarmsFlagTrip string
)

// alarmsCmd represents the alarms command.
var alarmsCmd = &cobra.Command{
	Use:     "alarms",
	Aliases: []string{"a", "alarm"},
	Short:   "List scheduled alarms",
	Long: `List the alarms currently scheduled on the local substrate.

By default only pending alarms are shown; --all includes alarms that
have already fired.

Examples:
  ontime alarms
  ontime alarms --trip a1b2c3
  ontime alarms --all
  ontime alarms preview a1b2c3`,
	RunE: runAlarmsList,
}

// alarmsPreviewCmd previews the alarms a trip would generate.
var alarmsPreviewCmd = &cobra.Command{
	Use:   "preview TRIP",
	Short: "Preview the alarms a trip generates",
	Long: `Show the full alarm set a trip's configuration produces, without
touching what is scheduled. Useful for tuning barrage settings.`,
	Args: cobra.ExactArgs(1),
	RunE: runAlarmsPreview,
}

func init() {
	alarmsCmd.Flags().BoolVarP(&alarmsFlagAll, "all", "a", false,
		"Include alarms that already fired")
	alarmsCmd.Flags().StringVarP(&alarmsFlagTrip, "trip", "t", "",
		"Only alarms for this trip")

	alarmsPreviewCmd.ValidArgsFunction = completeTripArgs

	alarmsCmd.AddCommand(alarmsPreviewCmd)
	rootCmd.AddCommand(alarmsCmd)
}

// runAlarmsList handles the alarms command.
func runAlarmsList(cmd *cobra.Command, args []string) error {
	var alerts []*model.ScheduledAlert
	var err error

	if alarmsFlagTrip != "" {
		trip, resolveErr := resolveTrip(alarmsFlagTrip)
		if resolveErr != nil {
			return resolveErr
		}
		alerts, err = ctx.AlertRepo.ListByTrip(trip.Key)
	} else if alarmsFlagAll {
		alerts, err = ctx.AlertRepo.List()
	} else {
		alerts, err = ctx.AlertRepo.ListPending()
	}
	if err != nil {
		return err
	}

	if !alarmsFlagAll {
		pending := alerts[:0]
		for _, a := range alerts {
			if !a.Fired {
				pending = append(pending, a)
			}
		}
		alerts = pending
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].FireTime.Before(alerts[j].FireTime)
	})

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"alarms": alerts,
			"count":  len(alerts),
		})
	}

	cli := ctx.CLIFormatter()
	if len(alerts) == 0 {
		cli.Muted("No alarms scheduled.")
		return nil
	}

	rows := make([]output.TableRow, 0, len(alerts))
	for _, a := range alerts {
		status := "pending"
		if a.Fired {
			status = "fired"
		}
		rows = append(rows, output.TableRow{Columns: []string{
			output.FormatTimeShort(a.FireTime),
			string(a.Tier),
			a.Urgency.String(),
			a.Title,
			status,
		}})
	}
	cli.PrintTable([]string{"TIME", "TIER", "URGENCY", "TITLE", "STATUS"}, rows)
	cli.Println("")
	cli.Printf("%d alarms\n", len(alerts))

	return nil
}

// runAlarmsPreview handles the alarms preview command.
func runAlarmsPreview(cmd *cobra.Command, args []string) error {
	trip, err := resolveTrip(args[0])
	if err != nil {
		return err
	}

	alerts := barrage.Generate(trip)

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"trip":   trip.ShortID(),
			"alarms": alerts,
			"count":  len(alerts),
		})
	}

	cli := ctx.CLIFormatter()
	cli.Title("Alarm preview: " + trip.Label)
	cli.PrintAlerts(alerts)
	if !trip.Enabled {
		cli.Muted("Trip is disabled - none of these are scheduled.")
	}

	return nil
}
