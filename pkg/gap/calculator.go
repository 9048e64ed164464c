// Package gap turns retention outcomes into recruitment numbers: how far each
// scenario falls short of the annual hiring target, how many households would
// close the gap, and how many people must be recruited to net the target given
// historical emigration and worker conversion patterns.
package gap

import (
	"workforce/pkg/domain"
)

// Calculator holds the policy targets and the observed baseline rate shared by
// every gap computation of a sweep.
type Calculator struct {
	// AnnualTarget is the number of net new full-time workers wanted per year.
	AnnualTarget float64
	// HorizonYears is the length of the forecast window.
	HorizonYears int
	// ObservedPartnerEmploymentRate is the partner employment rate already
	// embedded in the historical data the baseline forecast extrapolates.
	// Scenario contributions are deltas against this rate, never absolutes.
	ObservedPartnerEmploymentRate float64
}

// Compute derives the recruitment gap row for one (year, scenario) pair.
// yearIndex counts forecast years starting at 1; prevCumulativeGap is the
// cumulative gap of the previous year's row for the same scenario (0 for the
// first year).
//
// NewHouseholdsNeeded stays nil when the household yield or the projected
// worker total is zero; callers record a flag for such rows instead of
// reporting a zero.
func (c Calculator) Compute(
	year domain.Year,
	scenario domain.ScenarioDefinition,
	baselineForecast float64,
	retention []domain.RetentionResult,
	yearIndex int,
	prevCumulativeGap float64,
) domain.RecruitmentGapResult {
	var partners float64
	for _, row := range retention {
		if row.Kind == domain.SegmentAccompanyingPartner {
			partners = row.EstimatedPartners

			break
		}
	}

	p := scenario.PartnerEmploymentRate
	p0 := c.ObservedPartnerEmploymentRate

	// Employed partners the baseline does not already count.
	contribution := partners * (p - p0)
	totalProjected := baselineForecast + contribution
	annualGap := c.AnnualTarget - totalProjected

	res := domain.RecruitmentGapResult{
		Year:                         year,
		ScenarioID:                   scenario.ID,
		AnnualTarget:                 c.AnnualTarget,
		CumulativeTarget:             c.AnnualTarget * float64(yearIndex),
		BaselineForecast:             baselineForecast,
		SpouseEmploymentContribution: contribution,
		TotalProjectedWorkers:        totalProjected,
		AnnualGap:                    annualGap,
		CumulativeGap:                prevCumulativeGap + annualGap,
		UntappedWorkforce:            partners * (1 - p0),
		BaselineOverlap:              p0 > 0 && contribution != 0,
	}

	yield := HouseholdYield(scenario)
	if totalProjected != 0 && yield != 0 {
		households := annualGap / yield
		res.NewHouseholdsNeeded = &households
	}

	return res
}

// HouseholdYield is the expected contributing-worker count of one recruited
// partnered household under a scenario: the blended retention of the primary
// worker plus the employed partner.
func HouseholdYield(scenario domain.ScenarioDefinition) float64 {
	return BlendedWorkerRetention(scenario) + scenario.PartnerEmploymentRate
}

// BlendedWorkerRetention is the retention rate of a partnered primary worker
// averaged over the partner employment split of a scenario.
func BlendedWorkerRetention(scenario domain.ScenarioDefinition) float64 {
	p := scenario.PartnerEmploymentRate

	return p*scenario.RetentionEmployedPartner + (1-p)*scenario.RetentionUnemployedPartner
}
