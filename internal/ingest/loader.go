// Package ingest loads the historical metric table from CSV source files and
// derives the composite metrics the analysis keys on. The expected columns
// are metric_name, category, year, value and unit; every row becomes one
// actual observation.
package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"workforce/internal/config"
	"workforce/pkg/domain"
	"workforce/pkg/serrors"
	"workforce/pkg/storage"

	"github.com/go-faster/errors"
)

// Component metric names summed or differenced into the derived metrics.
const (
	thirdCountryWorkersMetric = "Third-country nationals full-time"
	euWorkersMetric           = "EU nationals full-time"
	netMigrationMetric        = "Net migration"
)

// Options configure which metric names the derived series are published
// under.
type Options struct {
	// WorkerMetric is the name of the derived worker total.
	WorkerMetric string
	// ImmigrationMetric and EmigrationMetric name the series net migration is
	// derived from.
	ImmigrationMetric string
	EmigrationMetric  string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		WorkerMetric:      cfg.Engine.WorkerMetric,
		ImmigrationMetric: cfg.Engine.ImmigrationMetric,
		EmigrationMetric:  cfg.Engine.EmigrationMetric,
	}
}

// Report summarizes one load: distinct metrics touched, observation rows
// stored and how many of those were derived rather than read.
type Report struct {
	Metrics int
	Rows    int
	Derived int
}

// Loader parses CSV source files and persists their observations.
type Loader struct {
	options Options
	storage storage.Storage
}

// New creates a Loader backed by the provided storage.
func New(storage storage.Storage, options Options) *Loader {
	return &Loader{options: options, storage: storage}
}

// series accumulates the observations of one metric while parsing.
type series struct {
	metric domain.Metric
	points map[domain.Year]float64
}

// Load reads the CSV table, derives the composite metrics where their
// components are present, and stores everything as actual rows in one
// transaction. Reloading a corrected file overwrites previous values instead
// of conflicting.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*Report, error) {
	parsed, err := l.parse(r)
	if err != nil {
		return nil, err
	}

	derived := l.derive(parsed)

	report := &Report{Metrics: len(parsed), Derived: derived}
	if err := l.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		for _, name := range sortedNames(parsed) {
			s := parsed[name]
			metrics, err := tx.UpsertMetrics(ctx, s.metric)
			if err != nil {
				return errors.Wrap(err, "could not store metric")
			}

			obs := make([]domain.MetricObservation, 0, len(s.points))
			for year, value := range s.points {
				obs = append(obs, domain.MetricObservation{
					Metric: metrics[0],
					Year:   year,
					Value:  value,
					Kind:   domain.KindActual,
				})
			}
			if err := tx.StoreActuals(ctx, obs...); err != nil {
				return errors.Wrapf(err, "could not store observations of %q", name)
			}
			report.Rows += len(obs)
		}

		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "could not load metrics")
	}

	return report, nil
}

// parse reads and validates the CSV table into per-metric series.
func (l *Loader) parse(r io.Reader) (map[string]*series, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "could not read CSV header")
	}
	want := []string{"metric_name", "category", "year", "value", "unit"}
	if len(header) != len(want) {
		return nil, serrors.With(serrors.ErrBadRequest, "expected columns %v, got %v", want, header)
	}
	for i, col := range want {
		if header[i] != col {
			return nil, serrors.With(serrors.ErrBadRequest, "expected column %d to be %q, got %q", i, col, header[i])
		}
	}

	parsed := make(map[string]*series)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, serrors.Wrap(serrors.ErrBadRequest, err, "could not read CSV record")
		}

		name := record[0]
		if name == "" {
			return nil, serrors.With(serrors.ErrBadRequest, "line %d: empty metric name", line)
		}
		year, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, serrors.Wrap(serrors.ErrBadRequest, err, "line %d: invalid year %q", line, record[2])
		}
		value, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, serrors.Wrap(serrors.ErrBadRequest, err, "line %d: invalid value %q", line, record[3])
		}
		unit := domain.Unit(record[4])
		if unit != domain.UnitCount && unit != domain.UnitPercentage {
			return nil, serrors.With(serrors.ErrBadRequest, "line %d: unknown unit %q", line, record[4])
		}

		s, ok := parsed[name]
		if !ok {
			s = &series{
				metric: domain.Metric{Name: name, Category: record[1], Unit: unit},
				points: make(map[domain.Year]float64),
			}
			parsed[name] = s
		}
		s.points[domain.Year(year)] = value
	}

	return parsed, nil
}

// derive adds the composite metrics for the years whose components are all
// present. Years already covered by an explicit row are left untouched.
func (l *Loader) derive(parsed map[string]*series) int {
	derived := 0
	derived += deriveInto(parsed, l.options.WorkerMetric,
		func(a, b float64) float64 { return a + b },
		thirdCountryWorkersMetric, euWorkersMetric)
	derived += deriveInto(parsed, netMigrationMetric,
		func(a, b float64) float64 { return a - b },
		l.options.ImmigrationMetric, l.options.EmigrationMetric)

	return derived
}

// deriveInto combines two component series year by year into the target
// metric, inheriting the first component's category and unit.
func deriveInto(parsed map[string]*series,
	target string, combine func(a, b float64) float64, firstName, secondName string) int {
	first, ok := parsed[firstName]
	if !ok {
		return 0
	}
	second, ok := parsed[secondName]
	if !ok {
		return 0
	}

	out, ok := parsed[target]
	if !ok {
		out = &series{
			metric: domain.Metric{
				Name:     target,
				Category: first.metric.Category,
				Unit:     first.metric.Unit,
			},
			points: make(map[domain.Year]float64),
		}
		parsed[target] = out
	}

	derived := 0
	for year, a := range first.points {
		b, ok := second.points[year]
		if !ok {
			continue
		}
		if _, exists := out.points[year]; exists {
			continue
		}
		out.points[year] = combine(a, b)
		derived++
	}

	return derived
}

func sortedNames(parsed map[string]*series) []string {
	names := make([]string, 0, len(parsed))
	for name := range parsed {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
