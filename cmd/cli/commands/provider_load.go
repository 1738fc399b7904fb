package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/care-scheduler/pkg/core/services"
)

// ProviderLoadCmd creates the providerLoad command
func ProviderLoadCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providerLoad",
		Short: "Show each provider's booked hours against capacity",
		Long:  "Show requested and confirmed hours per provider for shifts starting in [from, to). Defaults to the current week.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromArg, _ := cmd.Flags().GetString("from")
			toArg, _ := cmd.Flags().GetString("to")

			loc, err := app.Cfg.Scheduling.Location()
			if err != nil {
				return err
			}
			from, to, err := services.ParseLoadPeriod(fromArg, toArg, loc, time.Now())
			if err != nil {
				return err
			}

			report, err := services.BuildProviderLoad(app.Ctx, app.Database, app.Logger, from, to)
			if err != nil {
				return err
			}

			fmt.Printf("\n📊 Provider Load %s to %s\n\n", from.Format(time.DateOnly), to.Format(time.DateOnly))
			fmt.Printf("%-24s  %6s  %8s  %8s  %6s\n", "Provider", "Shifts", "Hours", "Capacity", "Load")
			fmt.Println(strings.Repeat("-", 24) + "  ------  --------  --------  ------")
			for _, p := range report.Providers {
				name := p.Name
				if !p.Active {
					name += " (inactive)"
				}
				fmt.Printf("%-24s  %6d  %8s  %8s  %5s%%\n",
					truncate(name, 24), p.Shifts, p.Hours.StringFixed(2), p.Capacity.StringFixed(2), p.Utilization.StringFixed(1))
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().String("from", "", "First day, YYYY-MM-DD (default: Monday of this week)")
	cmd.Flags().String("to", "", "Day after the last, YYYY-MM-DD (default: from + 7 days)")

	return cmd
}
