package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/core/services"
)

// ListAssignmentsCmd creates the listAssignments command
func ListAssignmentsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listAssignments",
		Short: "List all assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments, err := app.Database.ListAssignments(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list assignments: %w", err)
			}

			fmt.Printf("\nFound %d assignments:\n\n", len(assignments))
			fmt.Printf("%-36s  %-36s  %-36s  %-9s  %s\n", "ID", "Shift", "Provider", "Status", "Message")
			for _, a := range assignments {
				fmt.Printf("%-36s  %-36s  %-36s  %-9s  %s\n",
					a.ID, a.ShiftID, a.ProviderID, a.Status, truncate(a.Message, 60))
			}
			fmt.Println()
			return nil
		},
	}
}

// AssignCmd creates the assign command
func AssignCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <shift_id> <provider_id>",
		Short: "Manually assign a provider to a shift",
		Long:  "Manually assign a provider to a shift. Eligibility is not checked; later runs treat the assignment as fixed.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			message, _ := cmd.Flags().GetString("message")

			app.Logger.Debug("assign command",
				zap.String("shift_id", args[0]),
				zap.String("provider_id", args[1]),
				zap.String("status", status))

			assignment, err := services.Assign(app.Ctx, app.Database, app.Logger, services.NewAssignment{
				ShiftID:    args[0],
				ProviderID: args[1],
				Status:     status,
				Message:    message,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✅ Assignment created\n\n")
			fmt.Printf("ID:      %s\n", assignment.ID)
			fmt.Printf("Status:  %s\n", assignment.Status)
			fmt.Printf("Message: %s\n\n", assignment.Message)
			return nil
		},
	}

	cmd.Flags().String("status", "", "requested (default), confirmed or declined")
	cmd.Flags().String("message", "", "Note stored with the assignment")

	return cmd
}

// SetAssignmentStatusCmd creates the setAssignmentStatus command
func SetAssignmentStatusCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setAssignmentStatus <assignment_id> <status>",
		Short: "Set an assignment to requested, confirmed or declined",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.SetAssignmentStatus(app.Ctx, app.Database, app.Logger, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("\n✅ Assignment %s is now %s\n\n", args[0], args[1])
			return nil
		},
	}
}

// DeleteAssignmentCmd creates the deleteAssignment command
func DeleteAssignmentCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteAssignment <assignment_id>",
		Short: "Delete an assignment so the shift can be rescheduled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Database.DeleteAssignment(app.Ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("\n✅ Assignment %s deleted\n\n", args[0])
			return nil
		},
	}
}
