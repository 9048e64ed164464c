package gap

import (
	"sort"

	"workforce/pkg/domain"
	"workforce/pkg/serrors"
)

// StrategyComparison contrasts two recruitment strategies for reaching the
// cumulative target: recruiting single workers only versus recruiting
// partnered households under a scenario's employment rate.
type StrategyComparison struct {
	ScenarioID       int64   `json:"scenarioId"`
	CumulativeTarget float64 `json:"cumulativeTarget"`
	// SingleFocusedRecruits is the number of single workers to recruit so that
	// their retained remainder meets the cumulative target over the horizon.
	SingleFocusedRecruits float64 `json:"singleFocusedRecruits"`
	// HouseholdFocusedRecruits is the equivalent count when recruiting
	// partnered workers retained at the scenario's blended rate.
	HouseholdFocusedRecruits float64 `json:"householdFocusedRecruits"`
	// ReductionPct is how much smaller the household-focused intake is,
	// as a percentage of the single-focused intake.
	ReductionPct float64 `json:"reductionPct"`
}

// CompareStrategies sizes both recruitment strategies for one scenario.
// A zero retention rate on either side makes the intake undefined.
func (c Calculator) CompareStrategies(scenario domain.ScenarioDefinition) (StrategyComparison, error) {
	if c.HorizonYears <= 0 {
		return StrategyComparison{}, serrors.With(serrors.ErrInvalidParameter,
			"horizon of %d years", c.HorizonYears)
	}

	blend := BlendedWorkerRetention(scenario)
	if scenario.SingleWorkerRetention == 0 || blend == 0 {
		return StrategyComparison{}, serrors.With(serrors.ErrUndefinedRatio,
			"retention rates %v (single) and %v (blended) must be non-zero",
			scenario.SingleWorkerRetention, blend)
	}

	horizon := float64(c.HorizonYears)
	cumulative := c.AnnualTarget * horizon
	single := cumulative / (scenario.SingleWorkerRetention * horizon)
	household := cumulative / (blend * horizon)

	return StrategyComparison{
		ScenarioID:               scenario.ID,
		CumulativeTarget:         cumulative,
		SingleFocusedRecruits:    single,
		HouseholdFocusedRecruits: household,
		ReductionPct:             (single - household) / single * 100,
	}, nil
}

// PlanYear is one year of the recruitment plan.
type PlanYear struct {
	Year                  domain.Year `json:"year"`
	TargetNewWorkers      float64     `json:"targetNewWorkers"`
	RequiredRecruitment   float64     `json:"requiredRecruitment"`
	AnticipatedEmigration float64     `json:"anticipatedEmigration"`
	ExpectedNewWorkers    float64     `json:"expectedNewWorkers"`
}

// Plan is the recruitment plan derived from historical migration patterns:
// how many people must be recruited each year so that, after emigration and
// the migrant-to-worker conversion, the annual target is netted.
type Plan struct {
	// EmigrationRatio is the historical average of emigration over immigration.
	EmigrationRatio float64 `json:"emigrationRatio"`
	// ConversionRatio is the historical average of net new workers over
	// immigration.
	ConversionRatio float64 `json:"conversionRatio"`

	Years []PlanYear `json:"years"`

	TotalRecruitment float64 `json:"totalRecruitment"`
	TotalEmigration  float64 `json:"totalEmigration"`
	TotalNewWorkers  float64 `json:"totalNewWorkers"`
}

// RecruitmentPlan derives the plan for the given forecast years from the
// immigration, emigration and total worker histories. Both historical ratios
// need at least one sample; years missing from any input series are skipped.
func (c Calculator) RecruitmentPlan(
	immigration, emigration, totalWorkers domain.Series,
	years []domain.Year,
) (Plan, error) {
	immigrationByYear := indexByYear(immigration)
	emigrationByYear := indexByYear(emigration)
	workersByYear := indexByYear(totalWorkers)

	var emigrationRatios []float64
	for year, out := range emigrationByYear {
		in, ok := immigrationByYear[year]
		if !ok {
			continue
		}
		if in == 0 {
			return Plan{}, serrors.With(serrors.ErrUndefinedRatio,
				"immigration is zero in %d", year)
		}
		emigrationRatios = append(emigrationRatios, out/in)
	}

	var conversionRatios []float64
	workerYears := sortedYears(workersByYear)
	for i := 1; i < len(workerYears); i++ {
		year := workerYears[i]
		if workerYears[i-1] != year-1 {
			continue
		}
		in, ok := immigrationByYear[year]
		if !ok || in == 0 {
			continue
		}
		newWorkers := workersByYear[year] - workersByYear[year-1]
		conversionRatios = append(conversionRatios, newWorkers/in)
	}

	if len(emigrationRatios) == 0 || len(conversionRatios) == 0 {
		return Plan{}, serrors.With(serrors.ErrInsufficientData,
			"%d emigration and %d conversion samples in migration history",
			len(emigrationRatios), len(conversionRatios))
	}

	plan := Plan{
		EmigrationRatio: mean(emigrationRatios),
		ConversionRatio: mean(conversionRatios),
	}

	denominator := plan.ConversionRatio * (1 - plan.EmigrationRatio)
	if denominator <= 0 {
		return Plan{}, serrors.With(serrors.ErrUndefinedRatio,
			"conversion %v with emigration ratio %v yields no net workers",
			plan.ConversionRatio, plan.EmigrationRatio)
	}

	required := c.AnnualTarget / denominator
	for _, year := range years {
		plan.Years = append(plan.Years, PlanYear{
			Year:                  year,
			TargetNewWorkers:      c.AnnualTarget,
			RequiredRecruitment:   required,
			AnticipatedEmigration: required * plan.EmigrationRatio,
			ExpectedNewWorkers:    required * denominator,
		})
		plan.TotalRecruitment += required
		plan.TotalEmigration += required * plan.EmigrationRatio
		plan.TotalNewWorkers += required * denominator
	}

	return plan, nil
}

func indexByYear(s domain.Series) map[domain.Year]float64 {
	values := make(map[domain.Year]float64, len(s.Points))
	for _, p := range s.Points {
		values[p.Year] = p.Value
	}

	return values
}

func sortedYears(values map[domain.Year]float64) []domain.Year {
	years := make([]domain.Year, 0, len(values))
	for y := range values {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })

	return years
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
