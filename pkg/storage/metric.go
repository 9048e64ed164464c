package storage

import (
	"context"

	"workforce/pkg/domain"
)

// MetricValueFilter narrows a metric values query. Zero-valued fields are
// ignored, so the zero filter returns every stored row.
type MetricValueFilter struct {
	// MetricName restricts results to the metric with this exact name.
	MetricName string
	// Category restricts results to metrics of this category.
	Category string
	// Kinds restricts results to the given value kinds (e.g. only forecasts).
	Kinds []domain.ValueKind
	// FromYear and ToYear bound the year range, both inclusive.
	FromYear domain.Year
	ToYear   domain.Year
}

// MetricStorage defines persistence for metric reference data and the
// per-year value rows (observed history and forecast output).
//
// Forecast rows are derived data: recomputation replaces a metric's whole
// forecast partition rather than mutating individual rows, so readers never
// see a mix of old and new projections for one metric.
type MetricStorage interface {
	// UpsertMetrics inserts metrics or, when a metric with the same name
	// already exists, updates its category and unit. The returned rows carry
	// the storage-assigned IDs.
	UpsertMetrics(ctx context.Context, metrics ...domain.Metric) ([]domain.Metric, error)
	// Metrics returns all metrics ordered by category and name.
	Metrics(ctx context.Context) ([]domain.Metric, error)
	// StoreActuals upserts observed historical rows. An existing row with the
	// same (metric, year) is overwritten, so reloading a corrected source file
	// converges instead of conflicting.
	StoreActuals(ctx context.Context, values ...domain.MetricObservation) error
	// ReplaceForecasts atomically swaps the forecast, lower bound and upper
	// bound rows of one metric for the provided set. Actual rows are untouched.
	ReplaceForecasts(ctx context.Context, metricID int64, values ...domain.MetricObservation) error
	// MetricValues returns value rows matching the filter, ordered by metric
	// name, year and kind.
	MetricValues(ctx context.Context, filter MetricValueFilter) ([]domain.MetricObservation, error)
	// HistoricalSeries returns the actual rows of one metric up to and
	// including the cutoff year as an ordered series. The metric must exist.
	HistoricalSeries(ctx context.Context, metricName string, cutoff domain.Year) (domain.Series, error)
}
