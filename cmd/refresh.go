package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvoss/ontime/internal/errors"
	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/output"
	"github.com/nvoss/ontime/internal/traffic"
)

// refreshCmd represents the refresh command.
var refreshCmd = &cobra.Command{
	Use:   "refresh [TRIP]",
	Short: "Refresh live travel times",
	Long: `Measure live travel times and reschedule alarms where the measurement
moved the departure window.

Without arguments every enabled trip with a route is refreshed; with a
trip argument only that trip is.

Examples:
  ontime refresh
  ontime refresh a1b2c3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRefresh,
}

func init() {
	refreshCmd.ValidArgsFunction = completeTripArgs
	rootCmd.AddCommand(refreshCmd)
}

// refreshOutcome is the per-trip result of a refresh run.
type refreshOutcome struct {
	Trip        string        `json:"trip"`
	Label       string        `json:"label"`
	Tier        string        `json:"traffic"`
	Travel      time.Duration `json:"travel,omitempty"`
	Changed     bool          `json:"changed"`
	Rescheduled bool          `json:"rescheduled"`
	Error       string        `json:"error,omitempty"`
}

// runRefresh handles the refresh command.
func runRefresh(cmd *cobra.Command, args []string) error {
	var trips []*model.Trip

	if len(args) == 1 {
		trip, err := resolveTrip(args[0])
		if err != nil {
			return err
		}
		if !trip.HasRoute() {
			return errors.NewUserError("Trip has no origin and destination",
				"Set them with: ontime trip set "+trip.ShortID()+" --from \"Home\" --to \"Office\"")
		}
		trips = []*model.Trip{trip}
	} else {
		enabled, err := ctx.TripRepo.ListEnabled()
		if err != nil {
			return err
		}
		now := time.Now()
		for _, t := range enabled {
			if t.HasRoute() && t.ArrivalTime.After(now) {
				trips = append(trips, t)
			}
		}
		if len(trips) == 0 {
			if ctx.IsJSON() {
				return ctx.Formatter.JSON(map[string]interface{}{
					"results": []refreshOutcome{},
				})
			}
			ctx.CLIFormatter().Muted("No enabled trips with a route to refresh.")
			return nil
		}
	}

	c := context.Background()
	outcomes := make([]refreshOutcome, 0, len(trips))
	for _, trip := range trips {
		outcomes = append(outcomes, refreshTrip(c, trip))
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"results": outcomes,
		})
	}

	cli := ctx.CLIFormatter()
	for _, o := range outcomes {
		switch {
		case o.Error != "":
			cli.Warning(fmt.Sprintf("%s: %s (static travel time still applies)", o.Label, o.Error))
		case o.Changed && o.Rescheduled:
			cli.Success(fmt.Sprintf("%s: %s travel, %s traffic - alarms rescheduled",
				o.Label, output.FormatDuration(o.Travel), cli.TrafficBadge(traffic.Tier(o.Tier))))
		case o.Changed:
			cli.Success(fmt.Sprintf("%s: %s travel, %s traffic",
				o.Label, output.FormatDuration(o.Travel), cli.TrafficBadge(traffic.Tier(o.Tier))))
		default:
			cli.Muted(fmt.Sprintf("%s: unchanged (%s traffic)", o.Label, o.Tier))
		}
	}

	return nil
}

// refreshTrip measures one trip and reschedules its alarms if the
// measurement moved the stored travel time.
func refreshTrip(c context.Context, trip *model.Trip) refreshOutcome {
	outcome := refreshOutcome{
		Trip:  trip.ShortID(),
		Label: trip.Label,
	}

	result, err := ctx.Adjuster.Refresh(c, trip)
	outcome.Tier = string(result.Tier)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Travel = result.Measured
	outcome.Changed = result.Changed

	if result.Changed && result.Trip != nil && result.Trip.Enabled {
		if _, err := ctx.Dispatcher.Reschedule(c, result.Trip); err == nil {
			outcome.Rescheduled = true
		} else if !errors.Is(err, errors.ErrNothingScheduled) {
			outcome.Error = err.Error()
		}
	}

	return outcome
}
