package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/core/services"
)

// AddProviderCmd creates the addProvider command
func AddProviderCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addProvider <name> <home_zip> <skills>",
		Short: "Add a care provider",
		Long:  "Add an active care provider. Skills are comma-separated, e.g. \"doula,lactation consultant\".",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			input := services.NewProvider{
				Name:    args[0],
				HomeZip: args[1],
				Skills:  args[2],
				Email:   email,
			}
			if cmd.Flags().Changed("max-hours") {
				maxHours, _ := cmd.Flags().GetInt("max-hours")
				input.MaxHours = &maxHours
			}

			provider, err := services.AddProvider(app.Ctx, app.Database, app.Logger, input)
			if err != nil {
				return err
			}

			fmt.Printf("\n✅ Provider created\n\n")
			fmt.Printf("ID:        %s\n", provider.ID)
			fmt.Printf("Name:      %s\n", provider.Name)
			fmt.Printf("Home zip:  %s\n", provider.HomeZip)
			fmt.Printf("Skills:    %s\n", provider.Skills)
			fmt.Printf("Max hours: %d\n\n", provider.MaxHours)
			return nil
		},
	}

	cmd.Flags().String("email", "", "Email address for shift notifications")
	cmd.Flags().Int("max-hours", 0, "Weekly hour capacity (default 40)")

	return cmd
}

// ListProvidersCmd creates the listProviders command
func ListProvidersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listProviders",
		Short: "List all care providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			providers, err := app.Database.ListProviders(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list providers: %w", err)
			}

			app.Logger.Debug("Providers fetched", zap.Int("count", len(providers)))

			fmt.Printf("\nFound %d providers:\n\n", len(providers))
			for _, p := range providers {
				status := "active"
				if !p.Active {
					status = "inactive"
				}
				fmt.Printf("- %s (%s) - %s - %s - %dh/wk - %s\n",
					p.Name, p.ID, p.HomeZip, p.Skills, p.MaxHours, status)
			}
			fmt.Println()
			return nil
		},
	}
}

// SetProviderActiveCmd creates the setProviderActive command
func SetProviderActiveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setProviderActive <provider_id> <true|false>",
		Short: "Include or exclude a provider from scheduling",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("active must be true or false: %w", err)
			}

			if err := services.SetProviderActive(app.Ctx, app.Database, app.Logger, args[0], active); err != nil {
				return err
			}

			fmt.Printf("\n✅ Provider %s active=%t\n\n", args[0], active)
			return nil
		},
	}
}
