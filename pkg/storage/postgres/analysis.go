package postgres

import (
	"context"
	"fmt"

	"workforce/pkg/domain"
	"workforce/pkg/storage"

	"github.com/doug-martin/goqu/v9"
)

const (
	retentionTable = "spouse_employment_analysis"
	gapTable       = "recruitment_gap"
)

// ReplaceRetentionResults swaps the scenario's retention partition. Run inside
// a transaction when the gap rows of the same scenario must stay consistent.
func (p *PgSQL) ReplaceRetentionResults(ctx context.Context, scenarioID int64, results ...domain.RetentionResult) error {
	_, err := p.Builder.Delete(retentionTable).
		Where(goqu.I("scenario_id").Eq(scenarioID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not delete stale retention rows from pg: %w", err)
	}

	if len(results) == 0 {
		return nil
	}

	rows := make([]PgRetentionRow, len(results))
	for i := range rows {
		rows[i].FromDomain(results[i])
		rows[i].ScenarioID = scenarioID
	}

	if _, err := p.Builder.Insert(retentionTable).
		Rows(rows).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not store retention rows into pg: %w", err)
	}

	return nil
}

func (p *PgSQL) RetentionResults(ctx context.Context, filter storage.AnalysisFilter) ([]domain.RetentionResult, error) {
	var rows []PgRetentionRow
	if err := p.Builder.From(retentionTable).
		Where(analysisWhere(filter)...).
		Order(goqu.I("scenario_id").Asc(), goqu.I("year").Asc(), goqu.I("id").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch retention rows from pg: %w", err)
	}

	out := make([]domain.RetentionResult, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out, nil
}

// ReplaceGapResults swaps the scenario's recruitment gap partition.
func (p *PgSQL) ReplaceGapResults(ctx context.Context, scenarioID int64, results ...domain.RecruitmentGapResult) error {
	_, err := p.Builder.Delete(gapTable).
		Where(goqu.I("scenario_id").Eq(scenarioID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not delete stale gap rows from pg: %w", err)
	}

	if len(results) == 0 {
		return nil
	}

	rows := make([]PgGapRow, len(results))
	for i := range rows {
		rows[i].FromDomain(results[i])
		rows[i].ScenarioID = scenarioID
	}

	if _, err := p.Builder.Insert(gapTable).
		Rows(rows).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not store gap rows into pg: %w", err)
	}

	return nil
}

func (p *PgSQL) GapResults(ctx context.Context, filter storage.AnalysisFilter) ([]domain.RecruitmentGapResult, error) {
	var rows []PgGapRow
	if err := p.Builder.From(gapTable).
		Where(analysisWhere(filter)...).
		Order(goqu.I("scenario_id").Asc(), goqu.I("year").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch gap rows from pg: %w", err)
	}

	out := make([]domain.RecruitmentGapResult, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out, nil
}

func analysisWhere(filter storage.AnalysisFilter) []goqu.Expression {
	var w []goqu.Expression
	if filter.ScenarioID != 0 {
		w = append(w, goqu.I("scenario_id").Eq(filter.ScenarioID))
	}
	if filter.Year != 0 {
		w = append(w, goqu.I("year").Eq(int(filter.Year)))
	}

	return w
}
