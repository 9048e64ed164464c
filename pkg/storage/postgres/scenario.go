package postgres

import (
	"context"
	"fmt"

	"workforce/pkg/domain"

	"github.com/doug-martin/goqu/v9"
)

const scenariosTable = "scenarios"

func (p *PgSQL) UpsertScenarios(ctx context.Context, scenarios ...domain.ScenarioDefinition) ([]domain.ScenarioDefinition, error) {
	if len(scenarios) == 0 {
		return nil, nil
	}

	rows := make([]PgScenario, len(scenarios))
	for i := range rows {
		rows[i].FromDomain(scenarios[i])
	}

	var result []PgScenario
	if err := p.Builder.Insert(scenariosTable).
		Rows(rows).
		OnConflict(goqu.DoUpdate("partner_employment_rate", goqu.Record{
			"retention_employed_partner":   goqu.L("EXCLUDED.retention_employed_partner"),
			"retention_unemployed_partner": goqu.L("EXCLUDED.retention_unemployed_partner"),
			"single_worker_retention":      goqu.L("EXCLUDED.single_worker_retention"),
			"is_default":                   goqu.L("EXCLUDED.is_default"),
			"updated_at":                   goqu.L("CURRENT_TIMESTAMP"),
		})).
		Returning(&PgScenario{}).
		Executor().ScanStructsContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not upsert scenarios into pg: %w", err)
	}

	out := make([]domain.ScenarioDefinition, 0, len(result))
	for i := range result {
		out = append(out, result[i].ToDomain())
	}

	return out, nil
}

func (p *PgSQL) Scenarios(ctx context.Context) ([]domain.ScenarioDefinition, error) {
	var rows []PgScenario
	if err := p.Builder.From(scenariosTable).
		Order(goqu.I("partner_employment_rate").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch scenarios from pg: %w", err)
	}

	out := make([]domain.ScenarioDefinition, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out, nil
}

// ScenarioByID returns one scenario, or nil when it does not exist.
func (p *PgSQL) ScenarioByID(ctx context.Context, id int64) (*domain.ScenarioDefinition, error) {
	var row PgScenario
	found, err := p.Builder.From(scenariosTable).
		Where(goqu.I("id").Eq(id)).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch scenario by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	scenario := row.ToDomain()

	return &scenario, nil
}
