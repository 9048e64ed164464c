package engine_test

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"workforce/internal/engine"
	"workforce/pkg/domain"
	"workforce/pkg/retention"
	"workforce/pkg/serrors"
	"workforce/pkg/storage"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorage is an in-memory implementation of storage.Storage. WithTx runs
// the callback against the fake itself; transactional boundaries are covered
// by the postgres integration tests.
type fakeStorage struct {
	metrics   []domain.Metric
	values    []domain.MetricObservation
	scenarios []domain.ScenarioDefinition
	retention map[int64][]domain.RetentionResult
	gaps      map[int64][]domain.RecruitmentGapResult
	flags     []domain.Flag
	jobs      []river.JobArgs
	jobKeys   map[string]bool
	nextID    int64
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		retention: make(map[int64][]domain.RetentionResult),
		gaps:      make(map[int64][]domain.RecruitmentGapResult),
		jobKeys:   make(map[string]bool),
	}
}

func (f *fakeStorage) Close() error { return nil }

func (f *fakeStorage) Begin(context.Context) (storage.TxStorage, error) {
	return nil, fmt.Errorf("not supported by fake storage")
}

func (f *fakeStorage) WithTx(ctx context.Context, cb func(storage.AllStorage) error) error {
	return cb(f)
}

func (f *fakeStorage) UpsertMetrics(_ context.Context, metrics ...domain.Metric) ([]domain.Metric, error) {
	out := make([]domain.Metric, 0, len(metrics))
	for _, m := range metrics {
		updated := false
		for i := range f.metrics {
			if f.metrics[i].Name == m.Name {
				m.ID = f.metrics[i].ID
				f.metrics[i] = m
				updated = true

				break
			}
		}
		if !updated {
			f.nextID++
			m.ID = f.nextID
			f.metrics = append(f.metrics, m)
		}
		out = append(out, m)
	}

	return out, nil
}

func (f *fakeStorage) Metrics(context.Context) ([]domain.Metric, error) {
	return append([]domain.Metric(nil), f.metrics...), nil
}

func (f *fakeStorage) StoreActuals(_ context.Context, values ...domain.MetricObservation) error {
	f.values = append(f.values, values...)

	return nil
}

func (f *fakeStorage) ReplaceForecasts(_ context.Context,
	metricID int64, values ...domain.MetricObservation) error {
	kept := f.values[:0]
	for _, v := range f.values {
		if v.Metric.ID == metricID && v.Kind != domain.KindActual {
			continue
		}
		kept = append(kept, v)
	}
	f.values = append(kept, values...)

	return nil
}

func (f *fakeStorage) MetricValues(_ context.Context,
	filter storage.MetricValueFilter) ([]domain.MetricObservation, error) {
	var out []domain.MetricObservation
	for _, v := range f.values {
		if filter.MetricName != "" && v.Metric.Name != filter.MetricName {
			continue
		}
		if filter.Category != "" && v.Metric.Category != filter.Category {
			continue
		}
		if len(filter.Kinds) > 0 {
			match := false
			for _, k := range filter.Kinds {
				if v.Kind == k {
					match = true

					break
				}
			}
			if !match {
				continue
			}
		}
		if filter.FromYear != 0 && v.Year < filter.FromYear {
			continue
		}
		if filter.ToYear != 0 && v.Year > filter.ToYear {
			continue
		}
		out = append(out, v)
	}

	return out, nil
}

func (f *fakeStorage) HistoricalSeries(_ context.Context,
	metricName string, cutoff domain.Year) (domain.Series, error) {
	var metric *domain.Metric
	for i := range f.metrics {
		if f.metrics[i].Name == metricName {
			metric = &f.metrics[i]

			break
		}
	}
	if metric == nil {
		return domain.Series{}, serrors.With(serrors.ErrNotFound, "metric %q not found", metricName)
	}

	series := domain.Series{Metric: *metric}
	for _, v := range f.values {
		if v.Metric.Name == metricName && v.Kind == domain.KindActual && v.Year <= cutoff {
			series.Points = append(series.Points, domain.Point{Year: v.Year, Value: v.Value})
		}
	}
	sort.Slice(series.Points, func(i, j int) bool { return series.Points[i].Year < series.Points[j].Year })

	return series, nil
}

func (f *fakeStorage) UpsertScenarios(_ context.Context,
	scenarios ...domain.ScenarioDefinition) ([]domain.ScenarioDefinition, error) {
	out := make([]domain.ScenarioDefinition, 0, len(scenarios))
	for _, s := range scenarios {
		updated := false
		for i := range f.scenarios {
			if f.scenarios[i].PartnerEmploymentRate == s.PartnerEmploymentRate {
				s.ID = f.scenarios[i].ID
				f.scenarios[i] = s
				updated = true

				break
			}
		}
		if !updated {
			f.nextID++
			s.ID = f.nextID
			f.scenarios = append(f.scenarios, s)
		}
		out = append(out, s)
	}

	return out, nil
}

func (f *fakeStorage) Scenarios(context.Context) ([]domain.ScenarioDefinition, error) {
	out := append([]domain.ScenarioDefinition(nil), f.scenarios...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].PartnerEmploymentRate < out[j].PartnerEmploymentRate
	})

	return out, nil
}

func (f *fakeStorage) ScenarioByID(_ context.Context, id int64) (*domain.ScenarioDefinition, error) {
	for i := range f.scenarios {
		if f.scenarios[i].ID == id {
			s := f.scenarios[i]

			return &s, nil
		}
	}

	return nil, nil
}

func (f *fakeStorage) ReplaceRetentionResults(_ context.Context,
	scenarioID int64, rows ...domain.RetentionResult) error {
	f.retention[scenarioID] = append([]domain.RetentionResult(nil), rows...)

	return nil
}

func (f *fakeStorage) RetentionResults(_ context.Context,
	filter storage.AnalysisFilter) ([]domain.RetentionResult, error) {
	var out []domain.RetentionResult
	for scenarioID, rows := range f.retention {
		if filter.ScenarioID != 0 && scenarioID != filter.ScenarioID {
			continue
		}
		for _, row := range rows {
			if filter.Year != 0 && row.Year != filter.Year {
				continue
			}
			out = append(out, row)
		}
	}

	return out, nil
}

func (f *fakeStorage) ReplaceGapResults(_ context.Context,
	scenarioID int64, rows ...domain.RecruitmentGapResult) error {
	f.gaps[scenarioID] = append([]domain.RecruitmentGapResult(nil), rows...)

	return nil
}

func (f *fakeStorage) GapResults(_ context.Context,
	filter storage.AnalysisFilter) ([]domain.RecruitmentGapResult, error) {
	var out []domain.RecruitmentGapResult
	for scenarioID, rows := range f.gaps {
		if filter.ScenarioID != 0 && scenarioID != filter.ScenarioID {
			continue
		}
		for _, row := range rows {
			if filter.Year != 0 && row.Year != filter.Year {
				continue
			}
			out = append(out, row)
		}
	}

	return out, nil
}

func (f *fakeStorage) StoreFlags(_ context.Context, flags ...domain.Flag) error {
	f.flags = append(f.flags, flags...)

	return nil
}

func (f *fakeStorage) Flags(_ context.Context, runID domain.RunID) ([]domain.Flag, error) {
	var out []domain.Flag
	for _, fl := range f.flags {
		if fl.RunID == runID {
			out = append(out, fl)
		}
	}

	return out, nil
}

func (f *fakeStorage) LatestRunID(context.Context) (*domain.RunID, error) {
	if len(f.flags) == 0 {
		return nil, nil
	}
	runID := f.flags[len(f.flags)-1].RunID

	return &runID, nil
}

func (f *fakeStorage) AddJob(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
	key := fmt.Sprintf("%s|%+v", args.Kind(), args)
	if f.jobKeys[key] {
		return false, nil
	}
	f.jobKeys[key] = true
	f.jobs = append(f.jobs, args)

	return true, nil
}

func (f *fakeStorage) flagCodes() []string {
	codes := make([]string, 0, len(f.flags))
	for _, fl := range f.flags {
		codes = append(codes, fl.Code)
	}

	return codes
}

func testOptions() engine.Options {
	return engine.Options{
		AnnualTarget:      1500,
		HorizonYears:      5,
		CutoffYear:        2025,
		WorkerMetric:      "Total workers",
		ImmigrationMetric: "Immigration",
		EmigrationMetric:  "Emigration",
		Constants: retention.Constants{
			EmployedPartner:   0.61,
			UnemployedPartner: 0.49,
			SingleWorker:      0.41,
		},
		ScenarioRates:                 []float64{0.2, 0.3, 0.4},
		DefaultScenarioRate:           0.3,
		ObservedPartnerEmploymentRate: 0.3,
		SegmentShares: domain.SegmentShares{
			domain.SegmentSingle:              0.55,
			domain.SegmentAccompanyingPartner: 0.30,
			domain.SegmentDanishPartner:       0.15,
		},
		JobMaxAttempts: 3,
	}
}

// seedHistory stores a metric with one actual observation per given value
// starting at 2021.
func seedHistory(t *testing.T, st *fakeStorage, name string, values ...float64) domain.Metric {
	t.Helper()

	metrics, err := st.UpsertMetrics(context.Background(), domain.Metric{
		Name:     name,
		Category: "Foreign Workers",
		Unit:     domain.UnitCount,
	})
	require.NoError(t, err)

	obs := make([]domain.MetricObservation, 0, len(values))
	for i, v := range values {
		obs = append(obs, domain.MetricObservation{
			Metric: metrics[0],
			Year:   2021 + domain.Year(i),
			Value:  v,
			Kind:   domain.KindActual,
		})
	}
	require.NoError(t, st.StoreActuals(context.Background(), obs...))

	return metrics[0]
}

func TestEngine_Sweep(t *testing.T) {
	st := newFakeStorage()
	seedHistory(t, st, "Total workers", 10000, 10500, 11000, 11500, 12000)
	seedHistory(t, st, "Vacant positions", 400, 400, 400, 400, 400)
	seedHistory(t, st, "New metric", 100, 110)

	e := engine.New(st, testOptions())
	report, err := e.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.ForecastMetrics)
	assert.Equal(t, 1, report.SkippedMetrics)
	assert.Equal(t, 3, report.QueuedScenarios)
	assert.Equal(t, 2, report.Flags)
	assert.ElementsMatch(t, []string{domain.FlagConstantSeries, domain.FlagInsufficientData}, st.flagCodes())

	scenarios, err := e.Scenarios(context.Background())
	require.NoError(t, err)
	require.Len(t, scenarios, 3)
	assert.False(t, scenarios[0].IsDefault)
	assert.True(t, scenarios[1].IsDefault)
	assert.InDelta(t, 0.3, scenarios[1].PartnerEmploymentRate, 1e-9)

	// a perfectly linear history extrapolates exactly
	forecasts, err := e.MetricValues(context.Background(), storage.MetricValueFilter{
		MetricName: "Total workers",
		Kinds:      []domain.ValueKind{domain.KindForecast},
	})
	require.NoError(t, err)
	require.Len(t, forecasts, 5)
	sort.Slice(forecasts, func(i, j int) bool { return forecasts[i].Year < forecasts[j].Year })
	assert.Equal(t, domain.Year(2026), forecasts[0].Year)
	assert.InDelta(t, 12500, forecasts[0].Value, 1e-6)
	assert.Equal(t, domain.Year(2030), forecasts[4].Year)
	assert.InDelta(t, 14500, forecasts[4].Value, 1e-6)

	require.Len(t, st.jobs, 3)
	args, ok := st.jobs[0].(engine.EvaluateScenarioArgs)
	require.True(t, ok)
	assert.Equal(t, report.RunID.String(), args.RunID)
}

func TestEngine_Sweep_ReplacesForecasts(t *testing.T) {
	st := newFakeStorage()
	seedHistory(t, st, "Total workers", 10000, 10500, 11000, 11500, 12000)

	e := engine.New(st, testOptions())
	first, err := e.Sweep(context.Background())
	require.NoError(t, err)
	second, err := e.Sweep(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)

	// the forecast partition is swapped wholesale, never appended to
	forecasts, err := e.MetricValues(context.Background(), storage.MetricValueFilter{
		MetricName: "Total workers",
	})
	require.NoError(t, err)
	byKind := map[domain.ValueKind]int{}
	for _, f := range forecasts {
		byKind[f.Kind]++
	}
	assert.Equal(t, 5, byKind[domain.KindActual])
	assert.Equal(t, 5, byKind[domain.KindForecast])
	assert.Equal(t, 5, byKind[domain.KindLowerBound])
	assert.Equal(t, 5, byKind[domain.KindUpperBound])

	// the second run queued a fresh set of jobs under its own run ID
	assert.Equal(t, 3, second.QueuedScenarios)
	assert.Len(t, st.jobs, 6)
}

func TestEngine_Sweep_InconsistentShares(t *testing.T) {
	st := newFakeStorage()
	seedHistory(t, st, "Total workers", 10000, 10500, 11000, 11500, 12000)

	opts := testOptions()
	opts.SegmentShares = domain.SegmentShares{
		domain.SegmentSingle:              0.6,
		domain.SegmentAccompanyingPartner: 0.3,
		domain.SegmentDanishPartner:       0.2,
	}
	e := engine.New(st, opts)
	report, err := e.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Flags)
	assert.Equal(t, []string{domain.FlagInconsistentShares}, st.flagCodes())
}

func TestEngine_EvaluateScenario(t *testing.T) {
	st := newFakeStorage()
	seedHistory(t, st, "Total workers", 10000, 10500, 11000, 11500, 12000)

	e := engine.New(st, testOptions())
	report, err := e.Sweep(context.Background())
	require.NoError(t, err)

	scenarios, err := e.Scenarios(context.Background())
	require.NoError(t, err)
	var scenario domain.ScenarioDefinition
	for _, s := range scenarios {
		if s.IsDefault {
			scenario = s
		}
	}
	require.NotZero(t, scenario.ID)

	require.NoError(t, e.EvaluateScenario(context.Background(), scenario.ID, report.RunID))

	retentionRows, err := e.RetentionResults(context.Background(),
		storage.AnalysisFilter{ScenarioID: scenario.ID})
	require.NoError(t, err)
	assert.Len(t, retentionRows, 15) // 5 years, 3 segments each

	gapRows, err := e.GapResults(context.Background(), storage.AnalysisFilter{ScenarioID: scenario.ID})
	require.NoError(t, err)
	require.Len(t, gapRows, 5)
	sort.Slice(gapRows, func(i, j int) bool { return gapRows[i].Year < gapRows[j].Year })

	first := gapRows[0]
	assert.Equal(t, domain.Year(2026), first.Year)
	assert.InDelta(t, 12500, first.BaselineForecast, 1e-6)
	// scenario at the observed rate adds nothing beyond the baseline
	assert.InDelta(t, 0, first.SpouseEmploymentContribution, 1e-6)
	assert.InDelta(t, first.BaselineForecast, first.TotalProjectedWorkers, 1e-6)
	assert.InDelta(t, 1500, first.AnnualTarget, 1e-9)
	assert.False(t, first.BaselineOverlap)
	require.NotNil(t, first.NewHouseholdsNeeded)

	// cumulative gaps chain year over year
	cum := 0.0
	for _, row := range gapRows {
		cum += row.AnnualGap
		assert.InDelta(t, cum, row.CumulativeGap, 1e-6)
	}
}

func TestEngine_EvaluateScenario_AboveObservedRate(t *testing.T) {
	st := newFakeStorage()
	seedHistory(t, st, "Total workers", 10000, 10500, 11000, 11500, 12000)

	opts := testOptions()
	opts.ScenarioRates = []float64{0.3, 0.5}
	e := engine.New(st, opts)
	report, err := e.Sweep(context.Background())
	require.NoError(t, err)

	scenarios, err := e.Scenarios(context.Background())
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	scenario := scenarios[1] // rate 0.5

	require.NoError(t, e.EvaluateScenario(context.Background(), scenario.ID, report.RunID))

	gapRows, err := e.GapResults(context.Background(),
		storage.AnalysisFilter{ScenarioID: scenario.ID, Year: 2026})
	require.NoError(t, err)
	require.Len(t, gapRows, 1)

	// 30% of 12500 workers are accompanied, each contributing the 0.2 rate
	// delta over the observed baseline
	partners := 12500 * 0.30
	assert.InDelta(t, partners*0.2, gapRows[0].SpouseEmploymentContribution, 1e-6)
	assert.True(t, gapRows[0].BaselineOverlap)
	assert.InDelta(t, partners*0.7, gapRows[0].UntappedWorkforce, 1e-6)
}

func TestEngine_EvaluateScenario_NotFound(t *testing.T) {
	st := newFakeStorage()
	e := engine.New(st, testOptions())

	err := e.EvaluateScenario(context.Background(), 42, uuid.New())
	assert.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestEngine_EvaluateScenario_NoForecasts(t *testing.T) {
	st := newFakeStorage()
	scenarios, err := st.UpsertScenarios(context.Background(), domain.ScenarioDefinition{
		PartnerEmploymentRate:      0.3,
		RetentionEmployedPartner:   0.61,
		RetentionUnemployedPartner: 0.49,
		SingleWorkerRetention:      0.41,
		IsDefault:                  true,
	})
	require.NoError(t, err)

	e := engine.New(st, testOptions())
	err = e.EvaluateScenario(context.Background(), scenarios[0].ID, uuid.New())
	assert.ErrorIs(t, err, serrors.ErrInsufficientData)
}

func TestEngine_EvaluateScenario_UndefinedRatioFlag(t *testing.T) {
	st := newFakeStorage()
	seedHistory(t, st, "Total workers", 10000, 10500, 11000, 11500, 12000)

	// all-zero retention rates make the household yield zero
	opts := testOptions()
	opts.Constants = retention.Constants{}
	opts.ScenarioRates = []float64{0}
	opts.DefaultScenarioRate = 0
	e := engine.New(st, opts)
	report, err := e.Sweep(context.Background())
	require.NoError(t, err)

	scenarios, err := e.Scenarios(context.Background())
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	require.NoError(t, e.EvaluateScenario(context.Background(), scenarios[0].ID, report.RunID))

	flags, err := e.Flags(context.Background(), &report.RunID)
	require.NoError(t, err)
	require.Len(t, flags, 5)
	for _, fl := range flags {
		assert.Equal(t, domain.FlagUndefinedRatio, fl.Code)
	}

	gapRows, err := e.GapResults(context.Background(), storage.AnalysisFilter{ScenarioID: scenarios[0].ID})
	require.NoError(t, err)
	for _, row := range gapRows {
		assert.Nil(t, row.NewHouseholdsNeeded)
	}
}

func TestEngine_Strategy(t *testing.T) {
	st := newFakeStorage()
	scenarios, err := st.UpsertScenarios(context.Background(), domain.ScenarioDefinition{
		PartnerEmploymentRate:      0.3,
		RetentionEmployedPartner:   0.61,
		RetentionUnemployedPartner: 0.49,
		SingleWorkerRetention:      0.41,
		IsDefault:                  true,
	})
	require.NoError(t, err)

	e := engine.New(st, testOptions())
	comparison, err := e.Strategy(context.Background(), scenarios[0].ID)
	require.NoError(t, err)
	assert.InDelta(t, 7500, comparison.CumulativeTarget, 1e-9)
	assert.Greater(t, comparison.SingleFocusedRecruits, comparison.HouseholdFocusedRecruits)

	_, err = e.Strategy(context.Background(), 42)
	assert.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestEngine_RecruitmentPlan(t *testing.T) {
	st := newFakeStorage()
	seedHistory(t, st, "Total workers", 9000, 9500, 10000, 10500, 11000)
	seedHistory(t, st, "Immigration", 1000, 1000, 1000, 1000, 1000)
	seedHistory(t, st, "Emigration", 600, 600, 600, 600, 600)

	e := engine.New(st, testOptions())
	plan, err := e.RecruitmentPlan(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 0.6, plan.EmigrationRatio, 1e-9)
	assert.InDelta(t, 0.5, plan.ConversionRatio, 1e-9)
	require.Len(t, plan.Years, 5)
	// the plan nets the target exactly under the historical ratios
	assert.InDelta(t, 1500, plan.Years[0].ExpectedNewWorkers, 1e-6)
	assert.InDelta(t, 7500, plan.TotalNewWorkers, 1e-6)

	_, err = engine.New(newFakeStorage(), testOptions()).RecruitmentPlan(context.Background())
	assert.ErrorIs(t, err, serrors.ErrNotFound)
}
