package retention

import (
	"math"
	"sort"

	"workforce/pkg/domain"
	"workforce/pkg/serrors"
)

// ShareTolerance is the floating tolerance within which segment shares must
// sum to one.
const ShareTolerance = 1e-6

// Curve holds published retention checkpoints keyed by horizon year
// (years since arrival → retention rate). Intermediate years read the nearest
// checkpoint; this is an explicit simplification, not a statistical fit.
type Curve map[int]float64

// Rate returns the checkpoint rate nearest to the given horizon year.
// Ties resolve to the earlier checkpoint. An empty curve returns 0.
func (c Curve) Rate(horizonYear int) float64 {
	bestYear := 0
	bestDist := math.MaxInt
	found := false

	years := make([]int, 0, len(c))
	for y := range c {
		years = append(years, y)
	}
	sort.Ints(years)

	for _, y := range years {
		dist := y - horizonYear
		if dist < 0 {
			dist = -dist
		}
		if !found || dist < bestDist {
			found = true
			bestDist = dist
			bestYear = y
		}
	}
	if !found {
		return 0
	}

	return c[bestYear]
}

// Curves optionally overrides the flat 5-year retention constants with
// per-horizon-year checkpoints, one curve per retention class. A nil curve
// falls back to the scenario's constant rate.
type Curves struct {
	EmployedPartner   Curve
	UnemployedPartner Curve
	SingleWorker      Curve
}

// NormalizeShares validates that the shares sum to one within ShareTolerance.
// When they do not, it returns a normalized copy together with an
// ErrInconsistentShares error; the caller is expected to flag the discrepancy
// and proceed with the normalized shares. A zero sum cannot be normalized and
// is returned as ErrInvalidParameter.
func NormalizeShares(shares domain.SegmentShares) (domain.SegmentShares, error) {
	sum := shares.Sum()
	if sum == 0 {
		return nil, serrors.With(serrors.ErrInvalidParameter, "segment shares sum to zero")
	}
	if math.Abs(sum-1) <= ShareTolerance {
		return shares, nil
	}

	normalized := make(domain.SegmentShares, len(shares))
	for kind, share := range shares {
		normalized[kind] = share / sum
	}

	return normalized, serrors.With(serrors.ErrInconsistentShares,
		"segment shares sum to %v, normalized before use", sum)
}

// SplitPopulation distributes a projected worker total across segment kinds
// according to their shares.
func SplitPopulation(total float64, shares domain.SegmentShares) map[domain.WorkerSegmentKind]float64 {
	population := make(map[domain.WorkerSegmentKind]float64, len(shares))
	for kind, share := range shares {
		population[kind] = total * share
	}

	return population
}

// Model applies a scenario to a segmented worker population. Retention rates
// are 5-year-horizon constants unless per-year curves are supplied.
type Model struct {
	curves Curves
}

// NewModel returns a Model using the given optional checkpoint curves.
func NewModel(curves Curves) *Model {
	return &Model{curves: curves}
}

// rate resolves the retention rate for a class: checkpoint curve when
// supplied, the scenario constant otherwise.
func rate(curve Curve, constant float64, horizonYear int) float64 {
	if len(curve) == 0 {
		return constant
	}

	return curve.Rate(horizonYear)
}

// Apply computes the retention outcome of one scenario for one year's
// population. horizonYear counts years since the first forecast year,
// starting at 1. Results come back in the stable segment order.
//
// Holding the employed-partner retention above the unemployed-partner
// retention, a higher partner employment rate strictly increases the total
// contributing workers of the accompanying partner segment.
func (m *Model) Apply(
	scenario domain.ScenarioDefinition,
	population map[domain.WorkerSegmentKind]float64,
	year domain.Year,
	horizonYear int,
) []domain.RetentionResult {
	employed := rate(m.curves.EmployedPartner, scenario.RetentionEmployedPartner, horizonYear)
	unemployed := rate(m.curves.UnemployedPartner, scenario.RetentionUnemployedPartner, horizonYear)
	single := rate(m.curves.SingleWorker, scenario.SingleWorkerRetention, horizonYear)

	results := make([]domain.RetentionResult, 0, len(domain.WorkerSegmentKinds))
	for _, kind := range domain.WorkerSegmentKinds {
		workers := population[kind]
		res := domain.RetentionResult{
			Year:             year,
			ScenarioID:       scenario.ID,
			Kind:             kind,
			EstimatedWorkers: workers,
		}

		switch kind {
		case domain.SegmentSingle:
			res.RetainedWorkers = workers * single

		case domain.SegmentDanishPartner:
			// Danish partners are assumed to hold local employment ties
			res.RetainedWorkers = workers * employed

		case domain.SegmentAccompanyingPartner:
			// 1:1 partner assumption
			res.EstimatedPartners = workers
			res.EmployedPartners = res.EstimatedPartners * scenario.PartnerEmploymentRate
			res.UnemployedPartners = res.EstimatedPartners - res.EmployedPartners
			res.RetainedWorkers = res.EmployedPartners*employed + res.UnemployedPartners*unemployed
			res.RetainedPartners = res.EmployedPartners
		}

		res.TotalContributingWorkers = res.RetainedWorkers + res.RetainedPartners
		results = append(results, res)
	}

	return results
}
