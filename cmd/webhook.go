package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvoss/ontime/internal/config"
	"github.com/nvoss/ontime/internal/errors"
	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/notify"
	"github.com/nvoss/ontime/internal/output"
	"github.com/nvoss/ontime/internal/runtime"
	"github.com/nvoss/ontime/internal/validate"
)

// Webhook command flags.
var (
	webhookAddFlagType     string
	webhookAddFlagTemplate string
	webhookRemoveFlagForce bool
	webhookTestFlagAll     bool
)

// webhookCmd represents the webhook command.
var webhookCmd = &cobra.Command{
	Use:     "webhook [command]",
	Aliases: []string{"w", "wh", "hook"},
	Short:   "Configure notification webhooks",
	Long: `Configure the webhooks that fired alarms are delivered to.

The daemon posts every fired alarm to each enabled webhook. Discord
webhooks get a rich embed; anything else gets a JSON payload, optionally
shaped by a custom template.

Examples:
  ontime webhook add discord https://discord.com/api/webhooks/...
  ontime webhook add ntfy https://ntfy.sh/my-alarms
  ontime webhook list
  ontime webhook test discord
  ontime webhook disable ntfy
  ontime webhook remove discord`,
	RunE: runWebhookList,
}

// webhookAddCmd adds a new webhook.
var webhookAddCmd = &cobra.Command{
	Use:   "add NAME URL",
	Short: "Add a new webhook",
	Long: `Add a webhook for receiving fired alarms.

The webhook type is auto-detected from the URL:
  - Discord: discord.com/api/webhooks/...
  - Generic: Any other URL (JSON payload)

Examples:
  ontime webhook add discord https://discord.com/api/webhooks/123/abc
  ontime webhook add my-hook https://example.com/hook --type generic`,
	Args: cobra.ExactArgs(2),
	RunE: runWebhookAdd,
}

// webhookListCmd lists all webhooks.
var webhookListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all webhooks",
	RunE:    runWebhookList,
}

// webhookTestCmd tests a webhook.
var webhookTestCmd = &cobra.Command{
	Use:   "test [NAME]",
	Short: "Test a webhook by sending a test alert",
	Long: `Send a test alert to verify webhook configuration.

Examples:
  ontime webhook test discord
  ontime webhook test --all`,
	RunE: runWebhookTest,
}

// webhookRemoveCmd removes a webhook.
var webhookRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a webhook",
	Args:    cobra.ExactArgs(1),
	RunE:    runWebhookRemove,
}

// webhookEnableCmd enables a webhook.
var webhookEnableCmd = &cobra.Command{
	Use:   "enable NAME",
	Short: "Enable a webhook",
	Args:  cobra.ExactArgs(1),
	RunE:  runWebhookEnable,
}

// webhookDisableCmd disables a webhook.
var webhookDisableCmd = &cobra.Command{
	Use:   "disable NAME",
	Short: "Disable a webhook",
	Args:  cobra.ExactArgs(1),
	RunE:  runWebhookDisable,
}

func init() {
	// Add flags
	webhookAddCmd.Flags().StringVarP(&webhookAddFlagType, "type", "t", "",
		"Webhook type: discord, generic (auto-detected from URL if not specified)")
	webhookAddCmd.Flags().StringVar(&webhookAddFlagTemplate, "template", "",
		"Custom payload template for generic webhooks")

	webhookRemoveCmd.Flags().BoolVar(&webhookRemoveFlagForce, "force", false,
		"Skip confirmation")

	webhookTestCmd.Flags().BoolVarP(&webhookTestFlagAll, "all", "a", false,
		"Test all enabled webhooks")

	// Dynamic completion for webhook names
	webhookTestCmd.ValidArgsFunction = completeWebhookArgs
	webhookRemoveCmd.ValidArgsFunction = completeWebhookArgs
	webhookEnableCmd.ValidArgsFunction = completeWebhookArgs
	webhookDisableCmd.ValidArgsFunction = completeWebhookArgs

	// Add subcommands
	webhookCmd.AddCommand(webhookAddCmd)
	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookTestCmd)
	webhookCmd.AddCommand(webhookRemoveCmd)
	webhookCmd.AddCommand(webhookEnableCmd)
	webhookCmd.AddCommand(webhookDisableCmd)

	rootCmd.AddCommand(webhookCmd)
}

// completeWebhookArgs provides completion for webhook names.
func completeWebhookArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
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

	webhooks, err := ctx.WebhookRepo.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, wh := range webhooks {
		if strings.HasPrefix(wh.Name, toComplete) {
			names = append(names, wh.Name)
		}
	}

	return names, cobra.ShellCompDirectiveNoFileComp
}

// runWebhookAdd handles the webhook add command.
func runWebhookAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	webhookURL := args[1]

	if !model.IsValidWebhookName(name) {
		return errors.NewUserErrorWithField("name", name,
			"Invalid webhook name",
			"Names must be alphanumeric with dash/underscore, max 50 chars.")
	}

	if err := validate.URL(webhookURL); err != nil {
		return err
	}

	// Check if webhook already exists
	exists, err := ctx.WebhookRepo.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		return errors.NewUserErrorWithField("name", name,
			"Webhook already exists",
			"Remove it first with: ontime webhook remove "+name)
	}

	// Determine type
	webhookType := webhookAddFlagType
	if webhookType == "" {
		webhookType = model.DetectWebhookType(webhookURL)
	}
	if !model.IsValidWebhookType(webhookType) {
		return errors.NewUserErrorWithField("type", webhookType,
			"Invalid webhook type",
			"Use 'discord' or 'generic'.")
	}

	webhook := model.NewWebhook(name, webhookType, webhookURL)
	if webhookAddFlagTemplate != "" {
		webhook.Template = webhookAddFlagTemplate
	}

	if err := ctx.WebhookRepo.Create(webhook); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"name":       webhook.Name,
			"type":       webhook.Type,
			"url":        webhook.MaskedURL(),
			"enabled":    webhook.Enabled,
			"created_at": webhook.CreatedAt,
		})
	}

	ctx.Formatter.Println("Added webhook:", name)
	ctx.Formatter.Printf("  Type: %s\n", webhook.Type)
	ctx.Formatter.Printf("  URL: %s\n", webhook.MaskedURL())
	ctx.Formatter.Printf("  Status: enabled\n")
	ctx.Formatter.Println("")
	ctx.Formatter.Printf("Test with: ontime webhook test %s\n", name)

	return nil
}

// runWebhookList handles the webhook list command.
func runWebhookList(cmd *cobra.Command, args []string) error {
	webhooks, err := ctx.WebhookRepo.List()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"webhooks": webhooks,
			"count":    len(webhooks),
		})
	}

	cli := ctx.CLIFormatter()
	if len(webhooks) == 0 {
		cli.Println("No webhooks configured.")
		cli.Println("")
		cli.Println("Add one with: ontime webhook add discord <url>")
		return nil
	}

	rows := make([]output.TableRow, 0, len(webhooks))
	for _, wh := range webhooks {
		status := "enabled"
		if !wh.Enabled {
			status = "disabled"
		}
		lastUsed := "never"
		if !wh.LastUsed.IsZero() {
			lastUsed = formatTimeAgo(wh.LastUsed)
		}
		rows = append(rows, output.TableRow{Columns: []string{
			wh.Name, wh.Type, status, lastUsed,
		}})
	}
	cli.PrintTable([]string{"NAME", "TYPE", "STATUS", "LAST USED"}, rows)
	cli.Println("")
	cli.Printf("%d webhooks\n", len(webhooks))

	return nil
}

// runWebhookTest handles the webhook test command.
func runWebhookTest(cmd *cobra.Command, args []string) error {
	dispatcher := notify.NewDispatcher(ctx.WebhookRepo)
	c, cancel := context.WithTimeout(context.Background(), config.Global.HTTP.Timeout)
	defer cancel()

	if webhookTestFlagAll {
		// Test all enabled webhooks
		webhooks, err := ctx.WebhookRepo.ListEnabled()
		if err != nil {
			return err
		}

		if len(webhooks) == 0 {
			return errors.NewUserError("No enabled webhooks to test",
				"Add one with: ontime webhook add discord <url>")
		}

		var results []notify.DispatchResult
		for _, wh := range webhooks {
			results = append(results, dispatcher.TestWebhook(c, wh.Name))
		}

		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]interface{}{
				"results": results,
			})
		}

		cli := ctx.CLIFormatter()
		for _, result := range results {
			if result.Success {
				cli.Success(fmt.Sprintf("%s: delivered in %dms", result.WebhookName, result.Duration.Milliseconds()))
			} else {
				cli.Error(fmt.Sprintf("%s: %s", result.WebhookName, result.Error))
			}
		}

		return nil
	}

	// Test single webhook
	if len(args) == 0 {
		return errors.NewUserError("Webhook name required",
			"Name a webhook, or use --all to test every enabled one.")
	}

	name := args[0]

	ctx.Formatter.Printf("Testing webhook: %s\n", name)
	result := dispatcher.TestWebhook(c, name)

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"webhook":     name,
			"success":     result.Success,
			"status_code": result.StatusCode,
			"duration_ms": result.Duration.Milliseconds(),
			"error":       errorString(result.Error),
		})
	}

	cli := ctx.CLIFormatter()
	if result.Success {
		cli.Success(fmt.Sprintf("Delivered in %dms - check your notification channel.", result.Duration.Milliseconds()))
	} else {
		cli.Error(fmt.Sprintf("Failed: %s", result.Error))
		cli.Muted("The webhook URL may be invalid or the service may be unavailable.")
	}

	return nil
}

// runWebhookRemove handles the webhook remove command.
func runWebhookRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	exists, err := ctx.WebhookRepo.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Wrap(errors.ErrWebhookNotFound, name)
	}

	// Confirmation (skip if --force)
	if !webhookRemoveFlagForce && !ctx.IsJSON() {
		ctx.Formatter.Printf("Remove webhook %q? [y/N] ", name)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			ctx.Formatter.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.WebhookRepo.Delete(name); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"status":  "removed",
			"webhook": name,
		})
	}

	ctx.Formatter.Printf("Removed webhook: %s\n", name)
	return nil
}

// runWebhookEnable handles the webhook enable command.
func runWebhookEnable(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := ctx.WebhookRepo.Enable(name); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"status":  "enabled",
			"webhook": name,
		})
	}

	ctx.Formatter.Printf("Enabled webhook: %s\n", name)
	return nil
}

// runWebhookDisable handles the webhook disable command.
func runWebhookDisable(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := ctx.WebhookRepo.Disable(name); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"status":  "disabled",
			"webhook": name,
		})
	}

	ctx.Formatter.Printf("Disabled webhook: %s\n", name)
	return nil
}

// formatTimeAgo formats a time as a human-readable relative time.
func formatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 48*time.Hour:
		return "yesterday"
	default:
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%d days ago", days)
	}
}

// errorString returns the error message or empty string if nil.
func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
