package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/care-scheduler/pkg/core/services"
)

// AddShiftCmd creates the addShift command
func AddShiftCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addShift <family_id> <starts> <ends> <zip> <required_skills>",
		Short: "Add a shift, or a recurring series with --repeat",
		Long: `Add a shift for a family. Times are YYYY-MM-DDTHH:MM in the scheduling timezone or RFC3339.
Pass "-" as the zip to use the family's zip. --repeat takes an RRULE, e.g. "FREQ=WEEKLY;COUNT=6".`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			repeat, _ := cmd.Flags().GetString("repeat")

			loc, err := app.Cfg.Scheduling.Location()
			if err != nil {
				return err
			}
			starts, err := parseTimeArg(args[1], loc)
			if err != nil {
				return err
			}
			ends, err := parseTimeArg(args[2], loc)
			if err != nil {
				return err
			}
			zip := args[3]
			if zip == "-" {
				zip = ""
			}

			shifts, err := services.AddShifts(app.Ctx, app.Database, app.Logger, services.NewShift{
				FamilyID:       args[0],
				Starts:         starts,
				Ends:           ends,
				Zip:            zip,
				RequiredSkills: args[4],
				Repeat:         repeat,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✅ Created %d shift(s)\n\n", len(shifts))
			for _, s := range shifts {
				fmt.Printf("  %s  %s - %s  %s\n",
					s.ID, s.Starts.In(loc).Format("Mon Jan 02 2006 15:04"), s.Ends.In(loc).Format("15:04"), s.Zip)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().String("repeat", "", "RRULE for a recurring series")

	return cmd
}

// ListShiftsCmd creates the listShifts command
func ListShiftsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listShifts",
		Short: "List all shifts by start time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := app.Cfg.Scheduling.Location()
			if err != nil {
				return err
			}
			shifts, err := app.Database.ListShifts(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list shifts: %w", err)
			}

			fmt.Printf("\nFound %d shifts:\n\n", len(shifts))
			fmt.Printf("%-36s  %-22s  %-5s  %-36s  %-7s  %s\n", "ID", "Starts", "Ends", "Family", "Zip", "Skill")
			for _, s := range shifts {
				fmt.Printf("%-36s  %-22s  %-5s  %-36s  %-7s  %s\n",
					s.ID,
					s.Starts.In(loc).Format("Mon Jan 02 2006 15:04"),
					s.Ends.In(loc).Format("15:04"),
					s.FamilyID,
					s.Zip,
					s.RequiredSkills)
			}
			fmt.Println()
			return nil
		},
	}
}

// DeleteShiftCmd creates the deleteShift command
func DeleteShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteShift <shift_id>",
		Short: "Delete a shift and its assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Database.DeleteShift(app.Ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("\n✅ Shift %s deleted\n\n", args[0])
			return nil
		},
	}
}
