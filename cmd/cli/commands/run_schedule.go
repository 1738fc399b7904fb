package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/care-scheduler/pkg/core/services"
	"github.com/jakechorley/care-scheduler/pkg/db"
)

// RunScheduleCmd creates the runSchedule command
func RunScheduleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runSchedule",
		Short: "Assign providers to every unassigned shift",
		Long:  "Run one scheduling pass: continuity of care first, then the nearest eligible provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			app.Logger.Debug("runSchedule command", zap.Bool("dry_run", dryRun))

			result, err := services.RunSchedule(app.Ctx, app.Database, app.Distance, app.Cfg, app.Logger, dryRun)
			if errors.Is(err, db.ErrRunInProgress) {
				return fmt.Errorf("another scheduling run is in progress, try again shortly")
			}
			if result != nil {
				printRunResult(result)
			}
			if err != nil {
				return fmt.Errorf("scheduling failed: %w", err)
			}

			if dryRun {
				fmt.Println("💡 This was a dry run. Use without --dry-run to save assignments.")
			} else {
				fmt.Println("✅ Assignments have been saved to the database.")
			}
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Compute assignments without saving them")

	return cmd
}

func printRunResult(result *services.RunScheduleResult) {
	fmt.Printf("\n🎯 Scheduling Results\n\n")
	fmt.Printf("Considered: %d shifts\n", result.ConsideredCount)
	fmt.Printf("Assigned:   %d\n", result.AssignedCount)
	if result.DryRun {
		fmt.Printf("Mode:       🧪 DRY RUN (not saved)\n")
	}
	fmt.Println()

	if len(result.Skipped) > 0 {
		fmt.Printf("⚠️  Skipped Records (%d):\n", len(result.Skipped))
		for _, s := range result.Skipped {
			fmt.Printf("  • %s %s: %s\n", s.Kind, s.ID, s.Reason)
		}
		fmt.Println()
	}

	if len(result.Decisions) > 0 {
		fmt.Printf("📅 Decisions:\n\n")
		fmt.Printf("%-36s  %-36s  %-10s  %s\n", "Shift", "Provider", "Reason", "Distance")
		fmt.Printf("%s  %s  %s  %s\n",
			strings.Repeat("-", 36), strings.Repeat("-", 36), strings.Repeat("-", 10), strings.Repeat("-", 16))
		for _, d := range result.Decisions {
			fmt.Printf("%-36s  %-36s  %-10s  %s\n",
				d.ShiftID, orDash(d.ProviderID), d.Reason, scheduler.FormatMiles(d.Miles))
		}
		fmt.Println()
	}

	if len(result.ValidationErrors) > 0 {
		fmt.Printf("⚠️  Validation Errors (%d):\n", len(result.ValidationErrors))
		for _, v := range result.ValidationErrors {
			fmt.Printf("  • Shift %s (%s) - %s: %s\n",
				v.ShiftID, v.ShiftStart.Format("Mon Jan 02 15:04"), v.CriterionName, v.Description)
		}
		fmt.Println()
	}
}
