package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/care-scheduler/pkg/core/services"
)

// AddFamilyCmd creates the addFamily command
func AddFamilyCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "addFamily <name> <zip> [continuity_preference]",
		Short: "Add a family",
		Long:  "Add a family. A continuity preference such as \"consistent\" asks for providers who have served the family before.",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := services.NewFamily{Name: args[0], Zip: args[1]}
			if len(args) > 2 {
				input.ContinuityPreference = args[2]
			}

			family, err := services.AddFamily(app.Ctx, app.Database, app.Logger, input)
			if err != nil {
				return err
			}

			fmt.Printf("\n✅ Family created\n\n")
			fmt.Printf("ID:         %s\n", family.ID)
			fmt.Printf("Name:       %s\n", family.Name)
			fmt.Printf("Zip:        %s\n", family.Zip)
			fmt.Printf("Continuity: %s\n\n", orDash(family.ContinuityPreference))
			return nil
		},
	}
}

// ListFamiliesCmd creates the listFamilies command
func ListFamiliesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listFamilies",
		Short: "List all families",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			families, err := app.Database.ListFamilies(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list families: %w", err)
			}

			fmt.Printf("\nFound %d families:\n\n", len(families))
			for _, f := range families {
				fmt.Printf("- %s (%s) - %s - continuity: %s\n", f.Name, f.ID, f.Zip, orDash(f.ContinuityPreference))
			}
			fmt.Println()
			return nil
		},
	}
}
