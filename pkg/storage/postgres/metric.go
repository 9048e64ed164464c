package postgres

import (
	"context"
	"fmt"

	"workforce/pkg/domain"
	"workforce/pkg/serrors"
	"workforce/pkg/storage"

	"github.com/doug-martin/goqu/v9"
)

const (
	metricsTable      = "metrics"
	metricValuesTable = "metric_values"
)

func (p *PgSQL) UpsertMetrics(ctx context.Context, metrics ...domain.Metric) ([]domain.Metric, error) {
	if len(metrics) == 0 {
		return nil, nil
	}

	rows := make([]PgMetric, len(metrics))
	for i := range rows {
		rows[i].FromDomain(metrics[i])
	}

	var result []PgMetric
	if err := p.Builder.Insert(metricsTable).
		Rows(rows).
		OnConflict(goqu.DoUpdate("name", goqu.Record{
			"category": goqu.L("EXCLUDED.category"),
			"unit":     goqu.L("EXCLUDED.unit"),
		})).
		Returning(&PgMetric{}).
		Executor().ScanStructsContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not upsert metrics into pg: %w", err)
	}

	out := make([]domain.Metric, 0, len(result))
	for i := range result {
		out = append(out, result[i].ToDomain())
	}

	return out, nil
}

func (p *PgSQL) Metrics(ctx context.Context) ([]domain.Metric, error) {
	var rows []PgMetric
	if err := p.Builder.From(metricsTable).
		Order(goqu.I("category").Asc(), goqu.I("name").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch metrics from pg: %w", err)
	}

	out := make([]domain.Metric, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out, nil
}

// StoreActuals upserts observed rows keyed by (metric, year, kind) so that
// reloading a corrected source file overwrites instead of conflicting.
func (p *PgSQL) StoreActuals(ctx context.Context, values ...domain.MetricObservation) error {
	if len(values) == 0 {
		return nil
	}

	rows := make([]PgMetricValue, len(values))
	for i := range rows {
		rows[i].FromDomain(values[i])
	}

	_, err := p.Builder.Insert(metricValuesTable).
		Rows(rows).
		OnConflict(goqu.DoUpdate("metric_id, year, kind", goqu.Record{
			"value":      goqu.L("EXCLUDED.value"),
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		})).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not store actual values into pg: %w", err)
	}

	return nil
}

// ReplaceForecasts swaps the derived rows of one metric for the provided set.
// Actual rows are never touched; callers run this inside a transaction when
// atomicity across metrics matters.
func (p *PgSQL) ReplaceForecasts(ctx context.Context, metricID int64, values ...domain.MetricObservation) error {
	_, err := p.Builder.Delete(metricValuesTable).
		Where(
			goqu.I("metric_id").Eq(metricID),
			goqu.I("kind").Neq(string(domain.KindActual)),
		).Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not delete stale forecasts from pg: %w", err)
	}

	if len(values) == 0 {
		return nil
	}

	rows := make([]PgMetricValue, len(values))
	for i := range rows {
		rows[i].FromDomain(values[i])
		rows[i].MetricID = metricID
	}

	if _, err := p.Builder.Insert(metricValuesTable).
		Rows(rows).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not store forecasts into pg: %w", err)
	}

	return nil
}

func (p *PgSQL) MetricValues(ctx context.Context, filter storage.MetricValueFilter) ([]domain.MetricObservation, error) {
	metricsByID, err := p.metricIndex(ctx)
	if err != nil {
		return nil, err
	}

	w := []goqu.Expression{}
	if filter.MetricName != "" || filter.Category != "" {
		ids := make([]int64, 0, len(metricsByID))
		for id, m := range metricsByID {
			if filter.MetricName != "" && m.Name != filter.MetricName {
				continue
			}
			if filter.Category != "" && m.Category != filter.Category {
				continue
			}
			ids = append(ids, id)
		}
		w = append(w, goqu.I("metric_id").In(ids))
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, 0, len(filter.Kinds))
		for _, k := range filter.Kinds {
			kinds = append(kinds, string(k))
		}
		w = append(w, goqu.I("kind").In(kinds))
	}
	if filter.FromYear != 0 {
		w = append(w, goqu.I("year").Gte(int(filter.FromYear)))
	}
	if filter.ToYear != 0 {
		w = append(w, goqu.I("year").Lte(int(filter.ToYear)))
	}

	var rows []PgMetricValue
	if err := p.Builder.From(metricValuesTable).
		Where(w...).
		Order(goqu.I("metric_id").Asc(), goqu.I("year").Asc(), goqu.I("kind").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch metric values from pg: %w", err)
	}

	out := make([]domain.MetricObservation, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain(metricsByID[rows[i].MetricID]))
	}

	return out, nil
}

func (p *PgSQL) HistoricalSeries(ctx context.Context, metricName string, cutoff domain.Year) (domain.Series, error) {
	var metricRow PgMetric
	found, err := p.Builder.From(metricsTable).
		Where(goqu.I("name").Eq(metricName)).
		Executor().ScanStructContext(ctx, &metricRow)
	if err != nil {
		return domain.Series{}, fmt.Errorf("could not fetch metric by name: %w", err)
	}
	if !found {
		return domain.Series{}, serrors.With(serrors.ErrNotFound, "metric %q does not exist", metricName)
	}

	var rows []PgMetricValue
	if err := p.Builder.From(metricValuesTable).
		Where(
			goqu.I("metric_id").Eq(metricRow.ID),
			goqu.I("kind").Eq(string(domain.KindActual)),
			goqu.I("year").Lte(int(cutoff)),
		).
		Order(goqu.I("year").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return domain.Series{}, fmt.Errorf("could not fetch historical values from pg: %w", err)
	}

	series := domain.Series{Metric: metricRow.ToDomain()}
	for i := range rows {
		series.Points = append(series.Points, domain.Point{
			Year:  domain.Year(rows[i].Year),
			Value: rows[i].Value,
		})
	}

	return series, nil
}

// metricIndex loads the metric reference table keyed by ID. The table is a
// handful of rows, so joining in Go keeps the value queries simple.
func (p *PgSQL) metricIndex(ctx context.Context) (map[int64]domain.Metric, error) {
	metrics, err := p.Metrics(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[int64]domain.Metric, len(metrics))
	for _, m := range metrics {
		index[m.ID] = m
	}

	return index, nil
}
