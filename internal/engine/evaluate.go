package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"workforce/pkg/domain"
	"workforce/pkg/retention"
	"workforce/pkg/serrors"
	"workforce/pkg/storage"
)

// EvaluateScenario recomputes the retention and recruitment gap partitions of
// one scenario against the stored baseline forecasts. It is the unit of work
// executed by the background jobs a sweep enqueues; runID groups any flags it
// raises with the sweep that requested it.
//
// The scenario's partitions are replaced in one transaction, so concurrent
// evaluations of different scenarios never contend and readers see each
// scenario atomically.
func (e *engine) EvaluateScenario(ctx context.Context, scenarioID int64, runID domain.RunID) error {
	scenario, err := e.storage.ScenarioByID(ctx, scenarioID)
	if err != nil {
		return fmt.Errorf("could not get scenario: %w", err)
	}
	if scenario == nil {
		return serrors.With(serrors.ErrNotFound, "scenario %d not found", scenarioID)
	}

	// The share discrepancy, if any, is flagged once per run during the sweep.
	shares, err := retention.NormalizeShares(e.options.SegmentShares)
	if err != nil && !errors.Is(err, serrors.ErrInconsistentShares) {
		return fmt.Errorf("could not validate segment shares: %w", err)
	}

	baselines, err := e.storage.MetricValues(ctx, storage.MetricValueFilter{
		MetricName: e.options.WorkerMetric,
		Kinds:      []domain.ValueKind{domain.KindForecast},
	})
	if err != nil {
		return fmt.Errorf("could not load worker forecasts: %w", err)
	}
	if len(baselines) == 0 {
		return serrors.With(serrors.ErrInsufficientData,
			"no forecasts stored for %q, sweep before evaluating", e.options.WorkerMetric)
	}
	sort.Slice(baselines, func(i, j int) bool { return baselines[i].Year < baselines[j].Year })

	var (
		retentionRows []domain.RetentionResult
		gapRows       []domain.RecruitmentGapResult
		flags         []domain.Flag
		cumulativeGap float64
	)
	for i, baseline := range baselines {
		horizonYear := i + 1
		population := retention.SplitPopulation(baseline.Value, shares)
		segments := e.model.Apply(*scenario, population, baseline.Year, horizonYear)
		retentionRows = append(retentionRows, segments...)

		row := e.calc.Compute(baseline.Year, *scenario, baseline.Value, segments, horizonYear, cumulativeGap)
		cumulativeGap = row.CumulativeGap
		if row.NewHouseholdsNeeded == nil {
			flags = append(flags, domain.Flag{
				RunID:   runID,
				Code:    domain.FlagUndefinedRatio,
				Subject: fmt.Sprintf("scenario %d, year %d", scenarioID, baseline.Year),
				Detail:  "households-needed ratio divides by zero, reported as unresolved",
			})
		}
		gapRows = append(gapRows, row)
	}

	if err := e.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		if err := tx.ReplaceRetentionResults(ctx, scenarioID, retentionRows...); err != nil {
			return fmt.Errorf("could not store retention results: %w", err)
		}
		if err := tx.ReplaceGapResults(ctx, scenarioID, gapRows...); err != nil {
			return fmt.Errorf("could not store gap results: %w", err)
		}
		if len(flags) > 0 {
			if err := tx.StoreFlags(ctx, flags...); err != nil {
				return fmt.Errorf("could not store flags: %w", err)
			}
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not evaluate scenario %d: %w", scenarioID, err)
	}

	e.recordFlags(ctx, flags)

	return nil
}
