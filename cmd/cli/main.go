package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/cmd/cli/commands"
	"github.com/jakechorley/care-scheduler/internal/config"
	"github.com/jakechorley/care-scheduler/pkg/utils/logging"
)

var env string

func main() {
	app := &commands.AppContext{}

	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Care Scheduler CLI - Assign care providers to family shifts",
		Long: `A CLI tool for managing care providers, families and shifts, and for assigning
providers to shifts by continuity of care and travel distance.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(app)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.RunScheduleCmd(app))
	rootCmd.AddCommand(commands.AddProviderCmd(app))
	rootCmd.AddCommand(commands.ListProvidersCmd(app))
	rootCmd.AddCommand(commands.SetProviderActiveCmd(app))
	rootCmd.AddCommand(commands.AddAvailabilityCmd(app))
	rootCmd.AddCommand(commands.ListAvailabilityCmd(app))
	rootCmd.AddCommand(commands.DeleteAvailabilityCmd(app))
	rootCmd.AddCommand(commands.AddFamilyCmd(app))
	rootCmd.AddCommand(commands.ListFamiliesCmd(app))
	rootCmd.AddCommand(commands.AddShiftCmd(app))
	rootCmd.AddCommand(commands.ListShiftsCmd(app))
	rootCmd.AddCommand(commands.DeleteShiftCmd(app))
	rootCmd.AddCommand(commands.ListAssignmentsCmd(app))
	rootCmd.AddCommand(commands.AssignCmd(app))
	rootCmd.AddCommand(commands.SetAssignmentStatusCmd(app))
	rootCmd.AddCommand(commands.DeleteAssignmentCmd(app))
	rootCmd.AddCommand(commands.ProviderLoadCmd(app))
	rootCmd.AddCommand(commands.PublishScheduleCmd(app))
	rootCmd.AddCommand(commands.NotifyProvidersCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database and distance source
func initApp(app *commands.AppContext) error {
	logger, err := logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Starting application", zap.String("environment", env))

	logger.Info("Loading configuration")
	cfg, err := config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Debug("Configuration loaded successfully")

	if err := app.Init(context.Background(), env, cfg, logger); err != nil {
		return err
	}

	logger.Info("Application initialized successfully")
	return nil
}
