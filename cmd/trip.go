package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvoss/ontime/internal/errors"
	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/output"
	"github.com/nvoss/ontime/internal/parser"
	"github.com/nvoss/ontime/internal/runtime"
	"github.com/nvoss/ontime/internal/storage"
	"github.com/nvoss/ontime/internal/timeplan"
	"github.com/nvoss/ontime/internal/traffic"
	"github.com/nvoss/ontime/internal/validate"
)

// Trip command flags.
var (
	tripFlagPrep     string
	tripFlagTravel   string
	tripFlagInterval string
	tripFlagFrom     string
	tripFlagTo       string
	tripFlagMode     string
	tripFlagPre      int
	tripFlagPost     int
	tripFlagBarrage  bool
	tripFlagPreWake  bool
	tripFlagNoLeave  bool
	tripFlagDisabled bool

	tripSetFlagArrival string
	tripSetFlagLabel   string

	tripRemoveFlagForce bool
)

// tripCmd represents the trip command.
var tripCmd = &cobra.Command{
	Use:     "trip [command]",
	Aliases: []string{"t", "trips"},
	Short:   "Manage saved trips",
	Long: `Manage trips. A trip is a target arrival somewhere; Ontime derives
the departure and wake-up times from it and schedules alarms to match.

Examples:
  ontime trip add "morning standup" tomorrow 9am --travel 20m --prep 30m
  ontime trip add "flight" friday 06:15 --barrage --pre 2 --post 3 --interval 2m
  ontime trip list
  ontime trip show a1b2c3
  ontime trip set a1b2c3 --travel 35m
  ontime trip disable a1b2c3
  ontime trip remove a1b2c3`,
	RunE: runTripList,
}

// tripAddCmd adds a new trip.
var tripAddCmd = &cobra.Command{
	Use:   "add LABEL ARRIVAL...",
	Short: "Add a new trip",
	Long: `Add a trip with a target arrival time.

The arrival time accepts natural language ("tomorrow 9am", "friday
08:30"), relative offsets ("+45m"), or ISO timestamps. Alarms are
scheduled immediately unless --disabled is given.

Examples:
  ontime trip add "morning standup" tomorrow 9am
  ontime trip add "dentist" +2h --prep 15m --travel 25m
  ontime trip add "flight" friday 06:15 --barrage --pre 2 --post 3 --interval 2m
  ontime trip add "office" tomorrow 9am --from "Home" --to "Office" --mode driving`,
	Args: cobra.MinimumNArgs(2),
	RunE: runTripAdd,
}

// tripListCmd lists all trips.
var tripListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all trips",
	RunE:    runTripList,
}

// tripShowCmd shows a trip's derived times.
var tripShowCmd = &cobra.Command{
	Use:   "show TRIP",
	Short: "Show a trip's derived wake-up and departure times",
	Args:  cobra.ExactArgs(1),
	RunE:  runTripShow,
}

// tripSetCmd updates trip fields.
var tripSetCmd = &cobra.Command{
	Use:   "set TRIP",
	Short: "Update a trip's settings",
	Long: `Update one or more settings on a trip. Alarms are rescheduled so
the outstanding set always matches the stored record.

Examples:
  ontime trip set a1b2c3 --travel 35m
  ontime trip set a1b2c3 --arrival "tomorrow 8:30"
  ontime trip set a1b2c3 --barrage --pre 3 --post 5 --interval 2m
  ontime trip set a1b2c3 --from "Home" --to "Airport" --mode driving`,
	Args: cobra.ExactArgs(1),
	RunE: runTripSet,
}

// tripEnableCmd enables a trip.
var tripEnableCmd = &cobra.Command{
	Use:   "enable TRIP",
	Short: "Enable a trip and schedule its alarms",
	Args:  cobra.ExactArgs(1),
	RunE:  runTripEnable,
}

// tripDisableCmd disables a trip.
var tripDisableCmd = &cobra.Command{
	Use:   "disable TRIP",
	Short: "Disable a trip and cancel its alarms",
	Args:  cobra.ExactArgs(1),
	RunE:  runTripDisable,
}

// tripRemoveCmd removes a trip.
var tripRemoveCmd = &cobra.Command{
	Use:     "remove TRIP",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a trip and cancel its alarms",
	Args:    cobra.ExactArgs(1),
	RunE:    runTripRemove,
}

func init() {
	addTripConfigFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&tripFlagPrep, "prep", "", "Preparation time (e.g. 30m)")
		cmd.Flags().StringVar(&tripFlagTravel, "travel", "", "Static travel time (e.g. 20m)")
		cmd.Flags().StringVar(&tripFlagInterval, "interval", "", "Barrage alarm spacing (e.g. 2m)")
		cmd.Flags().StringVar(&tripFlagFrom, "from", "", "Origin for live traffic")
		cmd.Flags().StringVar(&tripFlagTo, "to", "", "Destination for live traffic")
		cmd.Flags().StringVar(&tripFlagMode, "mode", "", "Travel mode: driving, cycling, walking")
		cmd.Flags().IntVar(&tripFlagPre, "pre", -1, "Pre-wake barrage alarm count")
		cmd.Flags().IntVar(&tripFlagPost, "post", -1, "Post-wake barrage alarm count")
		cmd.Flags().BoolVar(&tripFlagBarrage, "barrage", false, "Enable the alarm barrage")
		cmd.Flags().BoolVar(&tripFlagPreWake, "pre-wake", false, "Enable the pre-wake reminder")
		cmd.Flags().BoolVar(&tripFlagNoLeave, "no-leave", false, "Disable the leave alarm")
	}

	addTripConfigFlags(tripAddCmd)
	tripAddCmd.Flags().BoolVar(&tripFlagDisabled, "disabled", false,
		"Create the trip without scheduling alarms")

	addTripConfigFlags(tripSetCmd)
	tripSetCmd.Flags().StringVar(&tripSetFlagArrival, "arrival", "", "New target arrival time")
	tripSetCmd.Flags().StringVar(&tripSetFlagLabel, "label", "", "New label")

	tripRemoveCmd.Flags().BoolVar(&tripRemoveFlagForce, "force", false, "Skip confirmation")

	// Dynamic completion for trip IDs
	tripShowCmd.ValidArgsFunction = completeTripArgs
	tripSetCmd.ValidArgsFunction = completeTripArgs
	tripEnableCmd.ValidArgsFunction = completeTripArgs
	tripDisableCmd.ValidArgsFunction = completeTripArgs
	tripRemoveCmd.ValidArgsFunction = completeTripArgs

	// Add subcommands
	tripCmd.AddCommand(tripAddCmd)
	tripCmd.AddCommand(tripListCmd)
	tripCmd.AddCommand(tripShowCmd)
	tripCmd.AddCommand(tripSetCmd)
	tripCmd.AddCommand(tripEnableCmd)
	tripCmd.AddCommand(tripDisableCmd)
	tripCmd.AddCommand(tripRemoveCmd)

	rootCmd.AddCommand(tripCmd)
}

// completeTripArgs provides completion for trip short IDs.
func completeTripArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	// Initialize context for completion
	if ctx == nil {
		opts := runtime.DefaultOptions()
		var err error
		ctx, err = runtime.New(opts)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		defer ctx.Close()
	}

	trips, err := ctx.TripRepo.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var completions []string
	for _, t := range trips {
		if strings.HasPrefix(t.ID(), toComplete) {
			completions = append(completions, t.ShortID()+"\t"+t.Label)
		}
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}

// resolveTrip finds a trip by short ID prefix or exact label.
func resolveTrip(ref string) (*model.Trip, error) {
	trip, err := ctx.TripRepo.GetByShortID(ref)
	if err == nil {
		return trip, nil
	}

	var ambiguous *storage.AmbiguousMatchError
	if stderrors.As(err, &ambiguous) {
		return nil, errors.NewUserErrorWithField("trip", ref,
			"Multiple trips match this ID",
			"Use more characters of the ID, from 'ontime trip list'.")
	}

	if trip, labelErr := ctx.TripRepo.GetByLabel(ref); labelErr == nil {
		return trip, nil
	}

	return nil, errors.NewUserErrorWithField("trip", ref,
		"Trip not found",
		"Use 'ontime trip list' to see saved trips.")
}

// runTripAdd handles the trip add command.
func runTripAdd(cmd *cobra.Command, args []string) error {
	label := args[0]

	arrival := parser.ParseArrivalArgs(args[1:])
	if arrival.Error != nil {
		return errors.NewUserError(arrival.Error.Error(),
			"Try formats like 'tomorrow 9am', '8:30', or '+45m'.")
	}

	trip := model.NewTrip(label, arrival.Time)
	trip.Enabled = !tripFlagDisabled
	if err := applyTripFlags(cmd, trip); err != nil {
		return err
	}

	if err := validate.Trip(trip); err != nil {
		return err
	}

	if err := ctx.TripRepo.Create(trip); err != nil {
		return err
	}

	result, err := ctx.Dispatcher.Reschedule(context.Background(), trip)
	if err != nil && !errors.Is(err, errors.ErrNothingScheduled) {
		return err
	}

	plan := timeplan.ForTrip(trip)
	if ctx.IsJSON() {
		payload := tripPlanJSON(trip, plan)
		payload["scheduled"] = result.Scheduled
		return ctx.Formatter.JSON(payload)
	}

	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Added trip %q (%s)", trip.Label, trip.ShortID()))
	cli.PrintTripPlan(trip, plan)
	if errors.Is(err, errors.ErrNothingScheduled) {
		cli.Warning("All alarm times are already in the past - nothing was scheduled.")
	} else if trip.Enabled {
		cli.Muted(fmt.Sprintf("  %d alarms scheduled.", result.Scheduled))
	}

	return nil
}

// applyTripFlags copies set flags onto a trip record.
func applyTripFlags(cmd *cobra.Command, trip *model.Trip) error {
	if tripFlagPrep != "" {
		d := parser.ParseDuration(tripFlagPrep)
		if !d.Valid {
			return errors.NewUserErrorWithField("prep", tripFlagPrep,
				"Invalid preparation time", "Try formats like '30m' or '1h'.")
		}
		trip.PrepDuration = d.Duration
	}
	if tripFlagTravel != "" {
		d := parser.ParseDuration(tripFlagTravel)
		if !d.Valid {
			return errors.NewUserErrorWithField("travel", tripFlagTravel,
				"Invalid travel time", "Try formats like '20m' or '1h15m'.")
		}
		trip.StaticTravelTime = d.Duration
	}
	if tripFlagInterval != "" {
		d := parser.ParseDuration(tripFlagInterval)
		if !d.Valid {
			return errors.NewUserErrorWithField("interval", tripFlagInterval,
				"Invalid barrage interval", "Try formats like '2m' or '5m'.")
		}
		trip.BarrageInterval = d.Duration
	}
	if tripFlagFrom != "" {
		trip.Origin = tripFlagFrom
	}
	if tripFlagTo != "" {
		trip.Destination = tripFlagTo
	}
	if tripFlagMode != "" {
		trip.Mode = tripFlagMode
	}
	if tripFlagPre >= 0 {
		trip.PreWakeCount = tripFlagPre
	}
	if tripFlagPost >= 0 {
		trip.PostWakeCount = tripFlagPost
	}
	if cmd.Flags().Changed("barrage") {
		trip.BarrageEnabled = tripFlagBarrage
	}
	if cmd.Flags().Changed("pre-wake") {
		trip.PreWakeAlarm = tripFlagPreWake
	}
	if cmd.Flags().Changed("no-leave") {
		trip.LeaveAlarm = !tripFlagNoLeave
	}
	return nil
}

// runTripList handles the trip list command.
func runTripList(cmd *cobra.Command, args []string) error {
	trips, err := ctx.TripRepo.List()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"trips": trips,
			"count": len(trips),
		})
	}

	cli := ctx.CLIFormatter()
	if len(trips) == 0 {
		cli.Println("No trips saved.")
		cli.Println("")
		cli.Println("Add one with: ontime trip add \"label\" tomorrow 9am")
		return nil
	}

	rows := make([]output.TableRow, 0, len(trips))
	for _, t := range trips {
		plan := timeplan.ForTrip(t)
		status := "enabled"
		if !t.Enabled {
			status = "disabled"
		}
		rows = append(rows, output.TableRow{Columns: []string{
			t.ShortID(),
			t.Label,
			output.FormatTimeShort(plan.WakeUp),
			output.FormatTimeShort(plan.Departure),
			output.FormatTimeShort(plan.Arrival),
			status,
		}})
	}
	cli.PrintTable([]string{"ID", "LABEL", "WAKE", "LEAVE", "ARRIVE", "STATUS"}, rows)
	cli.Println("")
	cli.Printf("%d trips\n", len(trips))

	return nil
}

// runTripShow handles the trip show command.
func runTripShow(cmd *cobra.Command, args []string) error {
	trip, err := resolveTrip(args[0])
	if err != nil {
		return err
	}

	plan := timeplan.ForTrip(trip)
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(tripPlanJSON(trip, plan))
	}

	ctx.CLIFormatter().PrintTripPlan(trip, plan)
	return nil
}

// runTripSet handles the trip set command.
func runTripSet(cmd *cobra.Command, args []string) error {
	trip, err := resolveTrip(args[0])
	if err != nil {
		return err
	}

	if tripSetFlagArrival != "" {
		arrival := parser.ParseArrival(tripSetFlagArrival)
		if arrival.Error != nil {
			return errors.NewUserError(arrival.Error.Error(),
				"Try formats like 'tomorrow 9am', '8:30', or '+45m'.")
		}
		trip.ArrivalTime = arrival.Time
		// The old live measurement belongs to the old departure window.
		trip.LiveTravelTime = 0
		trip.LiveMeasuredAt = time.Time{}
	}
	if tripSetFlagLabel != "" {
		trip.Label = tripSetFlagLabel
	}
	if err := applyTripFlags(cmd, trip); err != nil {
		return err
	}

	if err := validate.Trip(trip); err != nil {
		return err
	}

	if err := ctx.TripRepo.Update(trip); err != nil {
		return err
	}

	result, err := ctx.Dispatcher.Reschedule(context.Background(), trip)
	if err != nil && !errors.Is(err, errors.ErrNothingScheduled) {
		return err
	}

	plan := timeplan.ForTrip(trip)
	if ctx.IsJSON() {
		payload := tripPlanJSON(trip, plan)
		payload["scheduled"] = result.Scheduled
		return ctx.Formatter.JSON(payload)
	}

	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Updated trip %q", trip.Label))
	cli.PrintTripPlan(trip, plan)
	if errors.Is(err, errors.ErrNothingScheduled) {
		cli.Warning("All alarm times are already in the past - nothing was scheduled.")
	}

	return nil
}

// runTripEnable handles the trip enable command.
func runTripEnable(cmd *cobra.Command, args []string) error {
	trip, err := resolveTrip(args[0])
	if err != nil {
		return err
	}

	trip.Enabled = true
	if err := ctx.TripRepo.Update(trip); err != nil {
		return err
	}

	result, err := ctx.Dispatcher.Reschedule(context.Background(), trip)
	if err != nil && !errors.Is(err, errors.ErrNothingScheduled) {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"status":    "enabled",
			"trip":      trip.ShortID(),
			"scheduled": result.Scheduled,
		})
	}

	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Enabled %q - %d alarms scheduled", trip.Label, result.Scheduled))
	if errors.Is(err, errors.ErrNothingScheduled) {
		cli.Warning("All alarm times are already in the past - nothing was scheduled.")
	}
	return nil
}

// runTripDisable handles the trip disable command.
func runTripDisable(cmd *cobra.Command, args []string) error {
	trip, err := resolveTrip(args[0])
	if err != nil {
		return err
	}

	trip.Enabled = false
	if err := ctx.TripRepo.Update(trip); err != nil {
		return err
	}

	if _, err := ctx.Dispatcher.Reschedule(context.Background(), trip); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"status": "disabled",
			"trip":   trip.ShortID(),
		})
	}

	ctx.CLIFormatter().Success(fmt.Sprintf("Disabled %q - all alarms cancelled", trip.Label))
	return nil
}

// runTripRemove handles the trip remove command.
func runTripRemove(cmd *cobra.Command, args []string) error {
	trip, err := resolveTrip(args[0])
	if err != nil {
		return err
	}

	// Confirmation (skip if --force)
	if !tripRemoveFlagForce && !ctx.IsJSON() {
		ctx.Formatter.Printf("Remove trip %q? [y/N] ", trip.Label)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			ctx.Formatter.Println("Cancelled.")
			return nil
		}
	}

	// Cancel outstanding alarms before the record disappears.
	ctx.Dispatcher.CancelAll(context.Background(), trip)

	if err := ctx.TripRepo.Delete(trip.Key); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"status": "removed",
			"trip":   trip.ShortID(),
		})
	}

	ctx.CLIFormatter().Success(fmt.Sprintf("Removed trip %q", trip.Label))
	return nil
}

// tripPlanJSON builds the JSON payload for a trip and its derived plan.
func tripPlanJSON(trip *model.Trip, plan timeplan.Plan) map[string]interface{} {
	payload := map[string]interface{}{
		"id":      trip.ShortID(),
		"label":   trip.Label,
		"enabled": trip.Enabled,
		"wake_up": plan.WakeUp,
		"leave":   plan.Departure,
		"arrive":  plan.Arrival,
		"prep":    trip.PrepDuration.String(),
		"travel":  trip.EffectiveTravelTime().String(),
	}
	if trip.PreWakeAlarm {
		payload["pre_wake"] = plan.PreWake
	}
	if trip.HasLiveTravelTime() {
		payload["travel_live"] = true
		payload["traffic"] = string(traffic.CurrentTier(trip))
	}
	return payload
}
