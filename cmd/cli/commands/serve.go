package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/api"
	"github.com/jakechorley/care-scheduler/pkg/core/services"
	"github.com/jakechorley/care-scheduler/pkg/db"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until interrupted. When scheduling.autoRunRRule is configured,
a scheduling pass also runs at each occurrence of the rule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Cfg.HTTP.Addr
			}

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if app.Cfg.Scheduling.AutoRunRRule != "" {
				rule, err := autoRunRule(app.Cfg.Scheduling.AutoRunRRule, time.Now())
				if err != nil {
					return err
				}
				go runOnSchedule(ctx, rule, app.Logger, func(ctx context.Context) {
					autoRun(ctx, app)
				})
			}

			handler := api.NewHandler(app.Database, app.Distance, app.Cfg, app.Logger)
			router := api.NewRouter(handler, app.Cfg.HTTP.AllowedOrigins)

			fmt.Printf("\n🚀 Serving on %s\n", addr)
			if err := api.Serve(ctx, addr, router, app.Logger); err != nil {
				return err
			}
			fmt.Println("👋 Server stopped")
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from config http.addr)")

	return cmd
}

// autoRunRule parses the configured rule with occurrences counted from now
func autoRunRule(value string, now time.Time) (*rrule.RRule, error) {
	rule, err := rrule.StrToRRule(strings.TrimPrefix(strings.TrimSpace(value), "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("invalid scheduling.autoRunRRule: %w", err)
	}
	rule.DTStart(now.Truncate(time.Minute))
	return rule, nil
}

// runOnSchedule calls run at every occurrence of rule after now until ctx ends or the rule is exhausted
func runOnSchedule(ctx context.Context, rule *rrule.RRule, logger *zap.Logger, run func(ctx context.Context)) {
	for {
		next := rule.After(time.Now(), false)
		if next.IsZero() {
			logger.Info("Automatic scheduling rule has no further occurrences")
			return
		}
		logger.Debug("Next automatic scheduling run", zap.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			run(ctx)
		}
	}
}

func autoRun(ctx context.Context, app *AppContext) {
	result, err := services.RunSchedule(ctx, app.Database, app.Distance, app.Cfg, app.Logger, false)
	switch {
	case errors.Is(err, db.ErrRunInProgress):
		app.Logger.Info("Skipping automatic run, another run is in progress")
	case err != nil:
		app.Logger.Error("Automatic scheduling run failed", zap.Error(err))
	default:
		app.Logger.Info("Automatic scheduling run complete",
			zap.Int("assigned", result.AssignedCount),
			zap.Int("considered", result.ConsideredCount))
	}
}
