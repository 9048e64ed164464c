// Package retention models how partner employment policy affects the share of
// international workers a municipality keeps. It provides the scenario catalog
// (one immutable parameter set per policy rate) and the retention model that
// splits a projected worker population into retained and lost segments.
package retention

import (
	"math"
	"sort"

	"workforce/pkg/domain"
	"workforce/pkg/serrors"
)

// Constants are the retention rates shared by every scenario of a catalog.
// They are 5-year-horizon rates published by the statistics source.
type Constants struct {
	// EmployedPartner is the retention rate of workers whose partner holds a job.
	EmployedPartner float64
	// UnemployedPartner is the retention rate of workers whose partner does not.
	UnemployedPartner float64
	// SingleWorker is the retention rate of workers without a partner.
	SingleWorker float64
}

// validate checks that all rates lie in [0, 1].
func (c Constants) validate() error {
	for _, r := range []float64{c.EmployedPartner, c.UnemployedPartner, c.SingleWorker} {
		if r < 0 || r > 1 {
			return serrors.With(serrors.ErrInvalidParameter, "retention rate %v outside [0, 1]", r)
		}
	}

	return nil
}

// EnumerateScenarios builds one ScenarioDefinition per partner employment
// rate, each inheriting the shared retention constants. Rates outside [0, 1]
// are rejected; the scenario matching defaultRate is marked as the default,
// and exactly one such scenario must exist.
func EnumerateScenarios(rates []float64, defaultRate float64, c Constants) ([]domain.ScenarioDefinition, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, serrors.With(serrors.ErrInvalidParameter, "scenario rate set is empty")
	}

	sorted := make([]float64, len(rates))
	copy(sorted, rates)
	sort.Float64s(sorted)

	scenarios := make([]domain.ScenarioDefinition, 0, len(sorted))
	defaults := 0
	for _, rate := range sorted {
		if rate < 0 || rate > 1 {
			return nil, serrors.With(serrors.ErrInvalidParameter,
				"partner employment rate %v outside [0, 1]", rate)
		}

		isDefault := sameRate(rate, defaultRate)
		if isDefault {
			defaults++
		}

		scenarios = append(scenarios, domain.ScenarioDefinition{
			PartnerEmploymentRate:      rate,
			RetentionEmployedPartner:   c.EmployedPartner,
			RetentionUnemployedPartner: c.UnemployedPartner,
			SingleWorkerRetention:      c.SingleWorker,
			IsDefault:                  isDefault,
		})
	}

	if defaults != 1 {
		return nil, serrors.With(serrors.ErrInvalidParameter,
			"default rate %v matches %d scenarios, want exactly 1", defaultRate, defaults)
	}

	return scenarios, nil
}

// sameRate compares rates with a tolerance that absorbs decimal literal noise.
func sameRate(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
