package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/core/services"
)

// NotifyProvidersCmd creates the notifyProviders command
func NotifyProvidersCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifyProviders <week_start>",
		Short: "Email providers their confirmed shifts for a week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			app.Logger.Debug("notifyProviders command", zap.String("week_start", args[0]), zap.Bool("dry_run", dryRun))

			var sender services.EmailSender
			if !dryRun {
				gmailClient, err := app.GmailClient()
				if err != nil {
					return err
				}
				sender = gmailClient
			}

			result, err := services.NotifyProviders(app.Ctx, app.Database, sender, app.Cfg, app.Logger, args[0], dryRun)
			if err != nil {
				return err
			}

			fmt.Printf("\n📧 Notifications for the week of %s\n\n", result.WeekStart.Format("Mon Jan 02 2006"))
			failed := 0
			for _, n := range result.Notifications {
				switch {
				case dryRun:
					fmt.Printf("  • %s (%s): %d shifts (not sent)\n", n.Name, n.Email, n.Shifts)
				case n.Sent:
					fmt.Printf("  ✓ %s (%s): %d shifts\n", n.Name, n.Email, n.Shifts)
				default:
					failed++
					fmt.Printf("  ✗ %s (%s): %s\n", n.Name, n.Email, n.Error)
				}
			}
			if len(result.Notifications) == 0 {
				fmt.Println("No confirmed shifts to notify for this week.")
			}
			fmt.Println()

			if len(result.NoEmail) > 0 {
				fmt.Printf("⚠️  No email address for %d provider(s):\n", len(result.NoEmail))
				for _, name := range result.NoEmail {
					fmt.Printf("  • %s\n", name)
				}
				fmt.Println()
			}

			if failed > 0 {
				return fmt.Errorf("failed to notify %d provider(s)", failed)
			}
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "List notifications without sending them")

	return cmd
}
