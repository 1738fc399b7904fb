package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/care-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/care-scheduler/pkg/core/services"
)

// AddAvailabilityCmd creates the addAvailability command
func AddAvailabilityCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "addAvailability <provider_id> <weekday|rrule> <start> <end>",
		Short: "Add a recurring weekly availability window",
		Long: `Add a weekly availability window for a provider. The day is 0-6 (Monday=0), a day name,
or an RRULE such as "FREQ=WEEKLY;BYDAY=MO,WE,FR" which adds one window per listed day.
Times are HH:MM in the scheduling timezone.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			windows, err := services.AddAvailability(app.Ctx, app.Database, app.Logger, args[0], services.NewAvailability{
				Day:   args[1],
				Start: args[2],
				End:   args[3],
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✅ Added %d availability window(s)\n\n", len(windows))
			for _, w := range windows {
				fmt.Printf("  %s  %-9s %s-%s\n", w.ID, scheduler.Weekday(w.Weekday), w.Start, w.End)
			}
			fmt.Println()
			return nil
		},
	}
}

// ListAvailabilityCmd creates the listAvailability command
func ListAvailabilityCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listAvailability <provider_id>",
		Short: "List a provider's availability windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := app.Database.GetProvider(app.Ctx, args[0])
			if err != nil {
				return err
			}
			windows, err := app.Database.ListProviderAvailability(app.Ctx, provider.ID)
			if err != nil {
				return fmt.Errorf("failed to list availability: %w", err)
			}

			fmt.Printf("\n%s has %d availability windows:\n\n", provider.Name, len(windows))
			for _, w := range windows {
				fmt.Printf("  %s  %-9s %s-%s\n", w.ID, scheduler.Weekday(w.Weekday), w.Start, w.End)
			}
			fmt.Println()
			return nil
		},
	}
}

// DeleteAvailabilityCmd creates the deleteAvailability command
func DeleteAvailabilityCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteAvailability <availability_id>",
		Short: "Delete an availability window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Database.DeleteAvailability(app.Ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("\n✅ Availability window %s deleted\n\n", args[0])
			return nil
		},
	}
}
