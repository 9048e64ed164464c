// Package engine coordinates the forecasting pipeline: it fits baseline
// forecasts over the stored histories, maintains the scenario catalog, fans
// scenario evaluations out to the job queue and serves the derived results.
package engine

import (
	"context"
	"errors"
	"fmt"

	"workforce/internal/config"
	"workforce/pkg/domain"
	"workforce/pkg/forecast"
	"workforce/pkg/gap"
	"workforce/pkg/retention"
	"workforce/pkg/serrors"
	"workforce/pkg/storage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Options configure the engine: the recruitment targets, the metric names the
// analysis keys on and the scenario catalog parameters. These settings are
// typically derived from application configuration.
type Options struct {
	// AnnualTarget is the recruitment goal in net new full-time workers per year.
	AnnualTarget float64
	// HorizonYears is the number of years projected beyond the cutoff year.
	HorizonYears int
	// CutoffYear is the last year treated as observed history.
	CutoffYear domain.Year

	// WorkerMetric names the metric whose forecast drives the scenario analysis.
	WorkerMetric string
	// ImmigrationMetric and EmigrationMetric name the migration series used by
	// the recruitment plan.
	ImmigrationMetric string
	EmigrationMetric  string

	// Constants are the retention rates shared by every scenario.
	Constants retention.Constants
	// ScenarioRates are the partner employment rates to evaluate, one scenario each.
	ScenarioRates []float64
	// DefaultScenarioRate marks which scenario is presented by default.
	DefaultScenarioRate float64
	// ObservedPartnerEmploymentRate is the rate already embedded in the
	// historical data the baseline forecasts extrapolate.
	ObservedPartnerEmploymentRate float64
	// SegmentShares splits the projected worker population by household situation.
	SegmentShares domain.SegmentShares

	// JobMaxAttempts caps the retries of one scenario evaluation job.
	JobMaxAttempts int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		AnnualTarget:      cfg.Engine.AnnualTarget,
		HorizonYears:      cfg.Engine.HorizonYears,
		CutoffYear:        domain.Year(cfg.Engine.CutoffYear),
		WorkerMetric:      cfg.Engine.WorkerMetric,
		ImmigrationMetric: cfg.Engine.ImmigrationMetric,
		EmigrationMetric:  cfg.Engine.EmigrationMetric,
		Constants: retention.Constants{
			EmployedPartner:   cfg.Engine.RetentionEmployedPartner,
			UnemployedPartner: cfg.Engine.RetentionUnemployedPartner,
			SingleWorker:      cfg.Engine.SingleWorkerRetention,
		},
		ScenarioRates:                 cfg.Engine.ScenarioRates,
		DefaultScenarioRate:           cfg.Engine.DefaultScenarioRate,
		ObservedPartnerEmploymentRate: cfg.Engine.ObservedPartnerEmploymentRate,
		SegmentShares: domain.SegmentShares{
			domain.SegmentSingle:              cfg.Engine.SegmentShares.Single,
			domain.SegmentAccompanyingPartner: cfg.Engine.SegmentShares.AccompanyingPartner,
			domain.SegmentDanishPartner:       cfg.Engine.SegmentShares.DanishPartner,
		},
		JobMaxAttempts: cfg.Engine.JobMaxAttempts,
	}
}

// SweepReport summarizes one sweep run: how many metrics were forecast or
// skipped, how many scenario evaluations were queued and how many data-quality
// flags were raised.
type SweepReport struct {
	RunID           domain.RunID `json:"runId"`
	ForecastMetrics int          `json:"forecastMetrics"`
	SkippedMetrics  int          `json:"skippedMetrics"`
	QueuedScenarios int          `json:"queuedScenarios"`
	Flags           int          `json:"flags"`
}

// engine is the concrete implementation of the Engine interface. It
// coordinates the pure computation packages with the storage layer and the
// job queue.
type engine struct {
	// options holds the targets and catalog parameters of the deployment.
	options Options
	// storage is the persistence layer used for histories, results and jobs.
	storage storage.Storage

	// forecaster caches fitted trends across sweeps of unchanged histories.
	forecaster *forecast.Forecaster
	// model applies scenarios to segmented populations.
	model *retention.Model
	// calc derives the recruitment numbers from retention outcomes.
	calc gap.Calculator

	// flagsRaised counts data-quality flags partitioned by code.
	flagsRaised metric.Int64Counter
}

// recordFlags persists counter samples for the given flags.
func (e *engine) recordFlags(ctx context.Context, flags []domain.Flag) {
	for _, f := range flags {
		e.flagsRaised.Add(ctx, 1, metric.WithAttributes(attribute.String("code", f.Code)))
	}
}

// New creates a new Engine instance backed by the provided storage and
// configured with the given options.
func New(storage storage.Storage, options Options) Engine {
	// the instrument name is static, so creation cannot fail
	flagsRaised, _ := otel.Meter("workforce/engine").Int64Counter("run_flags_total",
		metric.WithDescription("Number of data-quality flags raised by engine runs."))

	return &engine{
		flagsRaised: flagsRaised,
		options:     options,
		storage:     storage,
		forecaster:  forecast.New(),
		model:       retention.NewModel(retention.Curves{}),
		calc: gap.Calculator{
			AnnualTarget:                  options.AnnualTarget,
			HorizonYears:                  options.HorizonYears,
			ObservedPartnerEmploymentRate: options.ObservedPartnerEmploymentRate,
		},
	}
}

// Sweep recomputes the forecast partition of every stored metric and enqueues
// one evaluation job per scenario, all within a single transaction so readers
// never observe a half-swept state. Metrics with too little history are
// skipped and flagged rather than failing the run.
func (e *engine) Sweep(ctx context.Context) (*SweepReport, error) {
	runID := uuid.New()

	scenarios, err := retention.EnumerateScenarios(
		e.options.ScenarioRates, e.options.DefaultScenarioRate, e.options.Constants)
	if err != nil {
		return nil, fmt.Errorf("could not build scenario catalog: %w", err)
	}

	var flags []domain.Flag
	if _, err := retention.NormalizeShares(e.options.SegmentShares); err != nil {
		if !errors.Is(err, serrors.ErrInconsistentShares) {
			return nil, fmt.Errorf("could not validate segment shares: %w", err)
		}
		flags = append(flags, domain.Flag{
			RunID:   runID,
			Code:    domain.FlagInconsistentShares,
			Subject: "segment shares",
			Detail:  err.Error(),
		})
	}

	report := &SweepReport{RunID: runID}
	horizon := domain.ForecastYears(e.options.CutoffYear, e.options.HorizonYears)

	if err := e.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		stored, err := tx.UpsertScenarios(ctx, scenarios...)
		if err != nil {
			return fmt.Errorf("could not store scenario catalog: %w", err)
		}

		metrics, err := tx.Metrics(ctx)
		if err != nil {
			return fmt.Errorf("could not list metrics: %w", err)
		}

		for _, metric := range metrics {
			series, err := tx.HistoricalSeries(ctx, metric.Name, e.options.CutoffYear)
			if err != nil {
				return fmt.Errorf("could not load history of %q: %w", metric.Name, err)
			}

			proj, err := e.forecaster.Forecast(series, horizon)
			if err != nil {
				if errors.Is(err, serrors.ErrInsufficientData) {
					flags = append(flags, domain.Flag{
						RunID:   runID,
						Code:    domain.FlagInsufficientData,
						Subject: metric.Name,
						Detail:  err.Error(),
					})
					report.SkippedMetrics++

					continue
				}

				return fmt.Errorf("could not forecast %q: %w", metric.Name, err)
			}
			if proj.Constant {
				flags = append(flags, domain.Flag{
					RunID:   runID,
					Code:    domain.FlagConstantSeries,
					Subject: metric.Name,
					Detail:  "historical series has zero variance, forecast band has zero width",
				})
			}

			if err := tx.ReplaceForecasts(ctx, metric.ID, proj.Observations...); err != nil {
				return fmt.Errorf("could not store forecasts of %q: %w", metric.Name, err)
			}
			report.ForecastMetrics++
		}

		for _, scenario := range stored {
			added, err := tx.AddJob(ctx, EvaluateScenarioArgs{
				ScenarioID:  scenario.ID,
				RunID:       runID.String(),
				maxAttempts: e.options.JobMaxAttempts,
			}, nil)
			if err != nil {
				return fmt.Errorf("could not enqueue evaluation of scenario %d: %w", scenario.ID, err)
			}
			if added {
				report.QueuedScenarios++
			}
		}

		if len(flags) > 0 {
			if err := tx.StoreFlags(ctx, flags...); err != nil {
				return fmt.Errorf("could not store flags: %w", err)
			}
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not sweep: %w", err)
	}

	e.recordFlags(ctx, flags)
	report.Flags = len(flags)

	return report, nil
}

// Metrics returns the metric catalog.
func (e *engine) Metrics(ctx context.Context) ([]domain.Metric, error) {
	metrics, err := e.storage.Metrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get metrics: %w", err)
	}

	return metrics, nil
}

// MetricValues returns stored value rows matching the filter.
func (e *engine) MetricValues(ctx context.Context,
	filter storage.MetricValueFilter) ([]domain.MetricObservation, error) {
	values, err := e.storage.MetricValues(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("could not get metric values: %w", err)
	}

	return values, nil
}

// Scenarios returns the stored scenario catalog.
func (e *engine) Scenarios(ctx context.Context) ([]domain.ScenarioDefinition, error) {
	scenarios, err := e.storage.Scenarios(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get scenarios: %w", err)
	}

	return scenarios, nil
}

// RetentionResults returns stored retention rows matching the filter.
func (e *engine) RetentionResults(ctx context.Context,
	filter storage.AnalysisFilter) ([]domain.RetentionResult, error) {
	rows, err := e.storage.RetentionResults(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("could not get retention results: %w", err)
	}

	return rows, nil
}

// GapResults returns stored recruitment gap rows matching the filter.
func (e *engine) GapResults(ctx context.Context,
	filter storage.AnalysisFilter) ([]domain.RecruitmentGapResult, error) {
	rows, err := e.storage.GapResults(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("could not get gap results: %w", err)
	}

	return rows, nil
}

// Strategy compares single-focused and household-focused recruitment for one
// scenario. It returns a not-found error when the scenario does not exist.
func (e *engine) Strategy(ctx context.Context, scenarioID int64) (*gap.StrategyComparison, error) {
	scenario, err := e.storage.ScenarioByID(ctx, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("could not get scenario: %w", err)
	}
	if scenario == nil {
		return nil, serrors.With(serrors.ErrNotFound, "scenario not found")
	}

	comparison, err := e.calc.CompareStrategies(*scenario)
	if err != nil {
		return nil, fmt.Errorf("could not compare strategies: %w", err)
	}

	return &comparison, nil
}

// RecruitmentPlan derives the per-year recruitment plan for the forecast
// horizon from the historical migration and worker series.
func (e *engine) RecruitmentPlan(ctx context.Context) (*gap.Plan, error) {
	immigration, err := e.storage.HistoricalSeries(ctx, e.options.ImmigrationMetric, e.options.CutoffYear)
	if err != nil {
		return nil, fmt.Errorf("could not load immigration history: %w", err)
	}
	emigration, err := e.storage.HistoricalSeries(ctx, e.options.EmigrationMetric, e.options.CutoffYear)
	if err != nil {
		return nil, fmt.Errorf("could not load emigration history: %w", err)
	}
	workers, err := e.storage.HistoricalSeries(ctx, e.options.WorkerMetric, e.options.CutoffYear)
	if err != nil {
		return nil, fmt.Errorf("could not load worker history: %w", err)
	}

	plan, err := e.calc.RecruitmentPlan(immigration, emigration, workers,
		domain.ForecastYears(e.options.CutoffYear, e.options.HorizonYears))
	if err != nil {
		return nil, fmt.Errorf("could not derive recruitment plan: %w", err)
	}

	return &plan, nil
}

// Flags returns the flags of the given run, or of the most recently flagged
// run when runID is nil. A deployment with no flagged runs yields an empty
// list.
func (e *engine) Flags(ctx context.Context, runID *domain.RunID) ([]domain.Flag, error) {
	if runID == nil {
		latest, err := e.storage.LatestRunID(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not get latest run: %w", err)
		}
		if latest == nil {
			return []domain.Flag{}, nil
		}
		runID = latest
	}

	flags, err := e.storage.Flags(ctx, *runID)
	if err != nil {
		return nil, fmt.Errorf("could not get flags: %w", err)
	}

	return flags, nil
}
