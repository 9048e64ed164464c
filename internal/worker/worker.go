// Package worker runs the background job processing for the service. It hosts
// the River client and the workers that execute scenario evaluation jobs
// enqueued by a sweep.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"workforce/internal/engine"
	"workforce/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"
)

func Start(ctx context.Context, dbPool *pgxpool.Pool, eng engine.Engine) (*river.Client[pgx.Tx], error) {
	evaluator, err := NewEvaluatorWorker(eng)
	if err != nil {
		return nil, fmt.Errorf("could not create evaluator worker: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, evaluator)

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 100}, // TODO: make configurable
		},
		Workers: workers,
		Logger:  slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
