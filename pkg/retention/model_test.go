package retention_test

import (
	"testing"

	"workforce/pkg/domain"
	"workforce/pkg/retention"
	"workforce/pkg/serrors"

	"github.com/stretchr/testify/require"
)

func scenarioWithRate(p float64) domain.ScenarioDefinition {
	return domain.ScenarioDefinition{
		PartnerEmploymentRate:      p,
		RetentionEmployedPartner:   0.61,
		RetentionUnemployedPartner: 0.49,
		SingleWorkerRetention:      0.41,
	}
}

func segmentResult(t *testing.T, results []domain.RetentionResult, kind domain.WorkerSegmentKind) domain.RetentionResult {
	t.Helper()
	for _, r := range results {
		if r.Kind == kind {
			return r
		}
	}
	t.Fatalf("no result for segment %s", kind)

	return domain.RetentionResult{}
}

func TestApplyAccompanyingPartnerLiteral(t *testing.T) {
	// 1000 partners at a 30% employment rate:
	// 300 employed, 700 unemployed, 300×0.61 + 700×0.49 = 526 retained workers
	model := retention.NewModel(retention.Curves{})
	population := map[domain.WorkerSegmentKind]float64{
		domain.SegmentAccompanyingPartner: 1000,
	}

	results := model.Apply(scenarioWithRate(0.3), population, 2026, 1)
	ap := segmentResult(t, results, domain.SegmentAccompanyingPartner)

	require.InDelta(t, 1000, ap.EstimatedPartners, 1e-9, "1:1 partner assumption")
	require.InDelta(t, 300, ap.EmployedPartners, 1e-9)
	require.InDelta(t, 700, ap.UnemployedPartners, 1e-9)
	require.InDelta(t, 526, ap.RetainedWorkers, 1e-9)
	require.InDelta(t, 300, ap.RetainedPartners, 1e-9)
	require.InDelta(t, 826, ap.TotalContributingWorkers, 1e-9)
}

func TestApplyPartnerPartitionIdentity(t *testing.T) {
	model := retention.NewModel(retention.Curves{})
	for _, p := range []float64{0, 0.15, 0.3, 0.55, 0.7, 1} {
		population := map[domain.WorkerSegmentKind]float64{
			domain.SegmentAccompanyingPartner: 1234.5,
		}
		results := model.Apply(scenarioWithRate(p), population, 2027, 2)
		ap := segmentResult(t, results, domain.SegmentAccompanyingPartner)

		require.InDelta(t, ap.EstimatedPartners, ap.EmployedPartners+ap.UnemployedPartners, 1e-9,
			"employed + unemployed must equal estimated partners at p=%v", p)
	}
}

func TestApplyMonotonicInEmploymentRate(t *testing.T) {
	model := retention.NewModel(retention.Curves{})
	population := map[domain.WorkerSegmentKind]float64{
		domain.SegmentAccompanyingPartner: 1000,
	}

	var prev float64 = -1
	for _, p := range []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7} {
		results := model.Apply(scenarioWithRate(p), population, 2026, 1)
		ap := segmentResult(t, results, domain.SegmentAccompanyingPartner)
		require.Greater(t, ap.TotalContributingWorkers, prev,
			"total contributing workers must strictly increase with p")
		prev = ap.TotalContributingWorkers
	}
}

func TestApplyBoundaryRates(t *testing.T) {
	model := retention.NewModel(retention.Curves{})
	population := map[domain.WorkerSegmentKind]float64{
		domain.SegmentAccompanyingPartner: 1000,
	}

	// p = 0: everyone unemployed, only the 0.49 rate applies
	results := model.Apply(scenarioWithRate(0), population, 2026, 1)
	ap := segmentResult(t, results, domain.SegmentAccompanyingPartner)
	require.Zero(t, ap.EmployedPartners)
	require.InDelta(t, 1000*0.49, ap.RetainedWorkers, 1e-9)
	require.Zero(t, ap.RetainedPartners)

	// p = 1: everyone employed, only the 0.61 rate applies
	results = model.Apply(scenarioWithRate(1), population, 2026, 1)
	ap = segmentResult(t, results, domain.SegmentAccompanyingPartner)
	require.Zero(t, ap.UnemployedPartners)
	require.InDelta(t, 1000*0.61, ap.RetainedWorkers, 1e-9)
	require.InDelta(t, 1000, ap.RetainedPartners, 1e-9)
}

func TestApplySingleAndDanishSegments(t *testing.T) {
	model := retention.NewModel(retention.Curves{})
	population := map[domain.WorkerSegmentKind]float64{
		domain.SegmentSingle:        500,
		domain.SegmentDanishPartner: 200,
	}

	results := model.Apply(scenarioWithRate(0.3), population, 2026, 1)

	single := segmentResult(t, results, domain.SegmentSingle)
	require.InDelta(t, 500*0.41, single.RetainedWorkers, 1e-9)
	require.Zero(t, single.EstimatedPartners, "single workers bring no partners")

	danish := segmentResult(t, results, domain.SegmentDanishPartner)
	require.InDelta(t, 200*0.61, danish.RetainedWorkers, 1e-9,
		"Danish partners count as employed-equivalent")
	require.Zero(t, danish.RetainedPartners)
}

func TestNormalizeShares(t *testing.T) {
	ok := domain.SegmentShares{
		domain.SegmentSingle:              0.55,
		domain.SegmentAccompanyingPartner: 0.30,
		domain.SegmentDanishPartner:       0.15,
	}
	shares, err := retention.NormalizeShares(ok)
	require.NoError(t, err)
	require.Equal(t, ok, shares)

	skewed := domain.SegmentShares{
		domain.SegmentSingle:              0.6,
		domain.SegmentAccompanyingPartner: 0.3,
		domain.SegmentDanishPartner:       0.2,
	}
	shares, err = retention.NormalizeShares(skewed)
	require.ErrorIs(t, err, serrors.ErrInconsistentShares, "mismatch surfaces as a warning")
	require.InDelta(t, 1.0, shares.Sum(), retention.ShareTolerance, "but normalized shares are usable")

	_, err = retention.NormalizeShares(domain.SegmentShares{})
	require.ErrorIs(t, err, serrors.ErrInvalidParameter)
}

func TestSplitPopulation(t *testing.T) {
	shares := domain.SegmentShares{
		domain.SegmentSingle:              0.55,
		domain.SegmentAccompanyingPartner: 0.30,
		domain.SegmentDanishPartner:       0.15,
	}

	population := retention.SplitPopulation(10000, shares)
	require.InDelta(t, 5500, population[domain.SegmentSingle], 1e-9)
	require.InDelta(t, 3000, population[domain.SegmentAccompanyingPartner], 1e-9)
	require.InDelta(t, 1500, population[domain.SegmentDanishPartner], 1e-9)
}

func TestCurveNearestCheckpoint(t *testing.T) {
	curve := retention.Curve{1: 0.85, 3: 0.61, 5: 0.41}

	cases := []struct {
		year int
		want float64
	}{
		{year: 1, want: 0.85},
		{year: 2, want: 0.85}, // tie between 1 and 3 resolves to the earlier checkpoint
		{year: 3, want: 0.61},
		{year: 4, want: 0.61}, // tie between 3 and 5 resolves to the earlier checkpoint
		{year: 5, want: 0.41},
		{year: 8, want: 0.41},
	}
	for _, tc := range cases {
		require.InDelta(t, tc.want, curve.Rate(tc.year), 1e-9, "horizon year %d", tc.year)
	}
}

func TestModelUsesCheckpointCurves(t *testing.T) {
	model := retention.NewModel(retention.Curves{
		SingleWorker: retention.Curve{1: 0.9, 5: 0.41},
	})
	population := map[domain.WorkerSegmentKind]float64{domain.SegmentSingle: 100}

	early := segmentResult(t, model.Apply(scenarioWithRate(0.3), population, 2026, 1), domain.SegmentSingle)
	require.InDelta(t, 90, early.RetainedWorkers, 1e-9, "year 1 reads the year-1 checkpoint")

	late := segmentResult(t, model.Apply(scenarioWithRate(0.3), population, 2030, 5), domain.SegmentSingle)
	require.InDelta(t, 41, late.RetainedWorkers, 1e-9, "year 5 reads the year-5 checkpoint")
}
