package main

import (
	"context"
	"workforce/internal/config"
	"workforce/internal/engine"
	"workforce/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sweepCommand constructs the 'sweep' subcommand that refreshes forecasts for
// every stored metric and queues scenario evaluations for the new run.
func sweepCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Refreshes forecasts and queues scenario evaluations",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			eng := engine.New(strg, engine.NewOptions(cfg))

			report, err := eng.Sweep(ctx)
			if err != nil {
				logger.Fatal(ctx, "could not sweep metrics", zap.Error(err))
			}

			logger.Info(ctx, "sweep finished",
				zap.String("runID", report.RunID.String()),
				zap.Int("forecastMetrics", report.ForecastMetrics),
				zap.Int("skippedMetrics", report.SkippedMetrics),
				zap.Int("queuedScenarios", report.QueuedScenarios),
				zap.Int("flags", report.Flags))
		},
	}

	return cmd
}
