package storage

import (
	"context"

	"workforce/pkg/domain"
)

// AnalysisFilter narrows a query over derived analysis rows. Zero-valued
// fields are ignored.
type AnalysisFilter struct {
	// ScenarioID restricts results to one scenario.
	ScenarioID int64
	// Year restricts results to one forecast year.
	Year domain.Year
}

// AnalysisStorage defines persistence for the derived analysis tables: the
// per-segment retention outcomes and the per-year recruitment gap rows.
//
// Both tables are partitioned by scenario. A scenario evaluation replaces its
// own partition in one transaction, so concurrent evaluations of different
// scenarios never contend and readers see each scenario atomically.
type AnalysisStorage interface {
	// ReplaceRetentionResults deletes the scenario's retention rows and inserts
	// the provided set in their place.
	ReplaceRetentionResults(ctx context.Context, scenarioID int64, rows ...domain.RetentionResult) error
	// RetentionResults returns retention rows matching the filter, ordered by
	// scenario, year and segment kind.
	RetentionResults(ctx context.Context, filter AnalysisFilter) ([]domain.RetentionResult, error)
	// ReplaceGapResults deletes the scenario's recruitment gap rows and inserts
	// the provided set in their place.
	ReplaceGapResults(ctx context.Context, scenarioID int64, rows ...domain.RecruitmentGapResult) error
	// GapResults returns recruitment gap rows matching the filter, ordered by
	// scenario and year.
	GapResults(ctx context.Context, filter AnalysisFilter) ([]domain.RecruitmentGapResult, error)
}
