package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workforce/internal/engine"
	"workforce/pkg/logger"
	"workforce/pkg/metrics"
	"workforce/pkg/serrors"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EvaluatorWorker is a River worker that recomputes one scenario's retention
// and recruitment gap partitions. Jobs carry the scenario ID and the run that
// requested the evaluation; a malformed run ID or a deleted scenario cancels
// the job instead of burning retries.
type EvaluatorWorker struct {
	river.WorkerDefaults[engine.EvaluateScenarioArgs]

	// engine performs the actual evaluation against the stored forecasts.
	engine engine.Engine

	// evaluations counts processed jobs partitioned by outcome.
	evaluations metric.Int64Counter
	// duration tracks evaluation latency in seconds.
	duration metric.Float64Histogram
}

// NewEvaluatorWorker constructs an EvaluatorWorker using the provided engine.
func NewEvaluatorWorker(eng engine.Engine) (*EvaluatorWorker, error) {
	meter := otel.Meter("workforce/worker")

	evaluations, err := meter.Int64Counter("scenario_evaluations_total",
		metric.WithDescription("Number of scenario evaluation jobs processed."))
	if err != nil {
		return nil, fmt.Errorf("could not create evaluations counter: %w", err)
	}
	duration, err := meter.Float64Histogram("scenario_evaluation_duration_seconds",
		metric.WithDescription("Latency of scenario evaluation jobs."),
		metric.WithExplicitBucketBoundaries(metrics.DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create duration histogram: %w", err)
	}

	return &EvaluatorWorker{
		engine:      eng,
		evaluations: evaluations,
		duration:    duration,
	}, nil
}

// Work executes a single evaluation job and maps errors to the appropriate
// River actions.
func (w *EvaluatorWorker) Work(ctx context.Context, job *river.Job[engine.EvaluateScenarioArgs]) error {
	ctx = logger.WithFields(ctx,
		zap.Int64("jobID", job.ID),
		zap.Int64("scenarioID", job.Args.ScenarioID),
		zap.String("runID", job.Args.RunID))

	runID, err := uuid.Parse(job.Args.RunID)
	if err != nil {
		logger.Error(ctx, "malformed run ID", zap.Error(err))

		return river.JobCancel(fmt.Errorf("could not parse run ID: %w", err))
	}

	start := time.Now()
	err = w.engine.EvaluateScenario(ctx, job.Args.ScenarioID, runID)
	outcome := attribute.Bool("success", err == nil)
	w.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(outcome))
	w.evaluations.Add(ctx, 1, metric.WithAttributes(outcome))

	if err != nil {
		// the scenario vanished between enqueue and execution, retrying cannot help
		if errors.Is(err, serrors.ErrNotFound) {
			return river.JobCancel(err) //nolint: wrapcheck
		}

		logger.Error(ctx, "scenario evaluation failed", zap.Error(err))

		return fmt.Errorf("could not evaluate scenario: %w", err)
	}

	logger.Info(ctx, "scenario evaluated")

	return nil
}
