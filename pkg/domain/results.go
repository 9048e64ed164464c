package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunID identifies one engine run (a sweep or an evaluation). Flags raised
// while computing are grouped under the run that produced them.
type RunID = uuid.UUID

// RetentionResult is one row of the spouse employment analysis table: the
// retention outcome for a (year, scenario, segment kind) triple. Results are
// derived values; recomputation replaces the whole partition rather than
// mutating rows in place.
type RetentionResult struct {
	Year       Year              `json:"year"`
	ScenarioID int64             `json:"scenarioId"`
	Kind       WorkerSegmentKind `json:"workerType"`

	// EstimatedWorkers is the projected worker count of this segment.
	EstimatedWorkers float64 `json:"estimatedWorkers"`
	// EstimatedPartners is the projected accompanying partner count (1:1 with
	// workers for the accompanying partner segment, zero otherwise).
	EstimatedPartners float64 `json:"estimatedPartners"`
	// EmployedPartners is the share of partners holding a job under the scenario.
	EmployedPartners float64 `json:"employedPartners"`
	// UnemployedPartners is the remainder of the partners.
	UnemployedPartners float64 `json:"unemployedPartners"`
	// RetainedWorkers is the number of primary workers retained over the horizon.
	RetainedWorkers float64 `json:"retainedWorkers"`
	// RetainedPartners is the number of partners who themselves count as
	// retained workers (the employed partners).
	RetainedPartners float64 `json:"retainedPartners"`
	// TotalContributingWorkers is RetainedWorkers + RetainedPartners.
	TotalContributingWorkers float64 `json:"totalContributingWorkers"`
}

// RecruitmentGapResult is one row of the recruitment gap table for a
// (year, scenario) pair. It is purely functional output derived from the
// baseline forecast and the retention results.
type RecruitmentGapResult struct {
	Year       Year  `json:"year"`
	ScenarioID int64 `json:"scenarioId"`

	AnnualTarget     float64 `json:"annualTarget"`
	CumulativeTarget float64 `json:"cumulativeTarget"`
	// BaselineForecast is the projected worker inflow assuming no policy change.
	BaselineForecast float64 `json:"baselineForecast"`
	// SpouseEmploymentContribution is the additional workers gained from
	// partner employment beyond what the baseline already embeds.
	SpouseEmploymentContribution float64 `json:"spouseEmploymentContribution"`
	TotalProjectedWorkers        float64 `json:"totalProjectedWorkers"`
	// AnnualGap is AnnualTarget - TotalProjectedWorkers; negative means surplus.
	AnnualGap     float64 `json:"annualGap"`
	CumulativeGap float64 `json:"cumulativeGap"`
	// NewHouseholdsNeeded is the gap divided by the retention-weighted yield of
	// one recruited household. Nil when the ratio is undefined (flagged, not
	// reported as zero).
	NewHouseholdsNeeded *float64 `json:"newHouseholdsNeeded"`
	// UntappedWorkforce is the count of accompanying partners currently without
	// a job, evaluated at the observed employment rate rather than the
	// scenario's rate.
	UntappedWorkforce float64 `json:"untappedWorkforce"`
	// BaselineOverlap marks rows where the baseline already embeds partner
	// employment, i.e. the contribution is a delta against a non-zero observed
	// rate.
	BaselineOverlap bool `json:"baselineOverlap"`
}

// Flag codes attached to runs. A run with flags still produces partial output;
// flags tell the consumer which metrics or years were degraded and why.
const (
	// FlagInsufficientData marks a metric skipped for having too few points.
	FlagInsufficientData = "INSUFFICIENT_DATA"
	// FlagConstantSeries marks a metric whose history has zero variance; its
	// forecast band has zero width and R² is reported by convention.
	FlagConstantSeries = "CONSTANT_SERIES"
	// FlagInconsistentShares marks a year whose segment shares did not sum to
	// one and were normalized before use.
	FlagInconsistentShares = "INCONSISTENT_SHARES"
	// FlagUndefinedRatio marks a (year, scenario) whose households-needed ratio
	// divides by zero and is reported as unresolved.
	FlagUndefinedRatio = "UNDEFINED_RATIO"
)

// Flag is a data-quality note produced alongside partial output.
type Flag struct {
	RunID RunID `json:"runId"`
	// Code is one of the Flag* constants.
	Code string `json:"code"`
	// Subject names the metric, year or scenario the flag refers to.
	Subject string `json:"subject"`
	// Detail is a human-readable explanation.
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"createdAt"`
}
