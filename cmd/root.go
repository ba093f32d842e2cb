// Package cmd provides the CLI commands for Ontime.
package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/output"
	"github.com/nvoss/ontime/internal/runtime"
	"github.com/nvoss/ontime/internal/timeplan"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ontime",
	Short: "Arrival-driven alarm scheduling",
	Long: `Ontime works backwards from when you need to arrive somewhere:
it derives when you must leave and when you must wake up, keeps those
times honest against live traffic, and fires the alarms to match.

Examples:
  ontime trip add "morning standup" tomorrow 9am --travel 20m --prep 30m
  ontime trip list
  ontime alarms
  ontime daemon start
  ontime dashboard`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for completion and help commands (but allow __complete for dynamic completions)
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		// Parse format flag
		var format output.Format
		switch flagFormat {
		case "json":
			format = output.FormatJSON
		case "plain":
			format = output.FormatPlain
		default:
			format = output.FormatCLI
		}

		// Parse color flag
		var colorMode output.ColorMode
		switch flagColor {
		case "always":
			colorMode = output.ColorAlways
		case "never":
			colorMode = output.ColorNever
		default:
			colorMode = output.ColorAuto
		}

		// Create runtime context
		opts := runtime.DefaultOptions()
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug

		var err error
		ctx, err = runtime.New(opts)
		if err != nil {
			return err
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx != nil {
			return ctx.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show the next departure
		return runNext(cmd, args)
	},
}

// runNext shows the next upcoming departure.
func runNext(cmd *cobra.Command, args []string) error {
	trips, err := ctx.TripRepo.ListEnabled()
	if err != nil {
		return err
	}

	now := time.Now()
	var next *model.Trip
	for _, t := range trips {
		if !t.ArrivalTime.After(now) {
			continue
		}
		if next == nil || t.ArrivalTime.Before(next.ArrivalTime) {
			next = t
		}
	}

	if next == nil {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]interface{}{
				"next": nil,
			})
		}
		ctx.Formatter.Println("No upcoming trips.")
		ctx.Formatter.Println("")
		ctx.Formatter.Println("Add one with: ontime trip add \"label\" tomorrow 9am")
		return nil
	}

	plan := timeplan.ForTrip(next)
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(tripPlanJSON(next, plan))
	}

	ctx.CLIFormatter().PrintTripPlan(next, plan)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ontime %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
	},
}

// Die prints an error and exits.
func Die(err error) {
	if ctx != nil && ctx.IsJSON() {
		_ = ctx.Formatter.JSON(map[string]interface{}{
			"error":      err.Error(),
			"suggestion": runtime.GetSuggestion(err),
		})
	} else {
		os.Stderr.WriteString("Error: " + runtime.FormatError(err) + "\n")
	}
	os.Exit(1)
}
