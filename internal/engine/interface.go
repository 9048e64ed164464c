package engine

import (
	"context"

	"workforce/pkg/domain"
	"workforce/pkg/gap"
	"workforce/pkg/storage"
)

// Engine is the application service behind the API and the background
// workers. Sweep recomputes the baseline forecasts and queues one evaluation
// job per scenario; EvaluateScenario is the unit of work those jobs execute.
// The remaining methods are read paths for the HTTP handlers.
type Engine interface {
	Sweep(ctx context.Context) (*SweepReport, error)
	EvaluateScenario(ctx context.Context, scenarioID int64, runID domain.RunID) error

	Metrics(ctx context.Context) ([]domain.Metric, error)
	MetricValues(ctx context.Context, filter storage.MetricValueFilter) ([]domain.MetricObservation, error)
	Scenarios(ctx context.Context) ([]domain.ScenarioDefinition, error)
	RetentionResults(ctx context.Context, filter storage.AnalysisFilter) ([]domain.RetentionResult, error)
	GapResults(ctx context.Context, filter storage.AnalysisFilter) ([]domain.RecruitmentGapResult, error)
	Strategy(ctx context.Context, scenarioID int64) (*gap.StrategyComparison, error)
	RecruitmentPlan(ctx context.Context) (*gap.Plan, error)
	Flags(ctx context.Context, runID *domain.RunID) ([]domain.Flag, error)
}
