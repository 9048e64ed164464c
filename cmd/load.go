package main

import (
	"context"
	"os"
	"workforce/internal/config"
	"workforce/internal/ingest"
	"workforce/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loadCommand constructs the 'load' subcommand that imports historical
// observations from a CSV file into storage.
func loadCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <csv-file>",
		Short: "Imports historical observations from a CSV file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			file, err := os.Open(args[0])
			if err != nil {
				logger.Fatal(ctx, "could not open CSV file", zap.Error(err))
			}
			defer func() {
				_ = file.Close()
			}()

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			loader := ingest.New(strg, ingest.NewOptions(cfg))

			report, err := loader.Load(ctx, file)
			if err != nil {
				logger.Fatal(ctx, "could not load observations", zap.Error(err))
			}

			logger.Info(ctx, "load finished",
				zap.Int("metrics", report.Metrics),
				zap.Int("rows", report.Rows),
				zap.Int("derived", report.Derived))
		},
	}

	return cmd
}
