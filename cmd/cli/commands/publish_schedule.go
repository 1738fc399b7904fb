package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/core/services"
)

// PublishScheduleCmd creates the publishSchedule command
func PublishScheduleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publishSchedule <week_start>",
		Short: "Publish a week's schedule to Google Sheets",
		Long:  "Publish every shift starting in the week beginning week_start (YYYY-MM-DD) to a tab of the schedule sheet.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("publishSchedule command", zap.String("week_start", args[0]))

			sheetsClient, err := app.SheetsClient()
			if err != nil {
				return err
			}

			schedule, err := services.PublishSchedule(app.Ctx, app.Database, sheetsClient, app.Cfg, app.Logger, args[0])
			if err != nil {
				return err
			}

			unfilled := 0
			for _, row := range schedule.Rows {
				if row.Provider == "" {
					unfilled++
				}
			}

			fmt.Printf("\n✅ Schedule Published Successfully\n\n")
			fmt.Printf("Tab:      %s\n", schedule.TabTitle())
			fmt.Printf("Rows:     %d\n", len(schedule.Rows))
			fmt.Printf("Unfilled: %d\n", unfilled)
			fmt.Printf("Sheet ID: %s\n\n", app.Cfg.Google.ScheduleSheetID)
			return nil
		},
	}
}
