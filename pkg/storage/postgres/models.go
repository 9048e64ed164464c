package postgres

import (
	"database/sql"
	"time"

	"workforce/pkg/domain"

	"github.com/google/uuid"
)

type PgMetric struct {
	ID       int64  `db:"id" goqu:"skipinsert"`
	Name     string `db:"name"`
	Category string `db:"category"`
	Unit     string `db:"unit"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func (p *PgMetric) ToDomain() domain.Metric {
	return domain.Metric{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Unit:     domain.Unit(p.Unit),
	}
}

func (p *PgMetric) FromDomain(m domain.Metric) {
	*p = PgMetric{
		ID:       m.ID,
		Name:     m.Name,
		Category: m.Category,
		Unit:     string(m.Unit),
	}
}

type PgMetricValue struct {
	ID       int64   `db:"id" goqu:"skipinsert"`
	MetricID int64   `db:"metric_id"`
	Year     int     `db:"year"`
	Kind     string  `db:"kind"`
	Value    float64 `db:"value"`

	Uncertainty    float64        `db:"uncertainty"`
	UncertaintyPct float64        `db:"uncertainty_pct"`
	RSquared       float64        `db:"r_squared"`
	MAPE           float64        `db:"mape"`
	CV             float64        `db:"cv"`
	Reliability    sql.NullString `db:"reliability"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgMetricValue) ToDomain(metric domain.Metric) domain.MetricObservation {
	return domain.MetricObservation{
		Metric:         metric,
		Year:           domain.Year(p.Year),
		Value:          p.Value,
		Kind:           domain.ValueKind(p.Kind),
		Uncertainty:    p.Uncertainty,
		UncertaintyPct: p.UncertaintyPct,
		RSquared:       p.RSquared,
		MAPE:           p.MAPE,
		CV:             p.CV,
		Reliability:    domain.Reliability(p.Reliability.String),
	}
}

func (p *PgMetricValue) FromDomain(v domain.MetricObservation) {
	*p = PgMetricValue{
		MetricID:       v.Metric.ID,
		Year:           int(v.Year),
		Kind:           string(v.Kind),
		Value:          v.Value,
		Uncertainty:    v.Uncertainty,
		UncertaintyPct: v.UncertaintyPct,
		RSquared:       v.RSquared,
		MAPE:           v.MAPE,
		CV:             v.CV,
		Reliability: sql.NullString{
			String: string(v.Reliability),
			Valid:  v.Reliability != "",
		},
	}
}

type PgScenario struct {
	ID                         int64   `db:"id" goqu:"skipinsert"`
	PartnerEmploymentRate      float64 `db:"partner_employment_rate"`
	RetentionEmployedPartner   float64 `db:"retention_employed_partner"`
	RetentionUnemployedPartner float64 `db:"retention_unemployed_partner"`
	SingleWorkerRetention      float64 `db:"single_worker_retention"`
	IsDefault                  bool    `db:"is_default"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgScenario) ToDomain() domain.ScenarioDefinition {
	return domain.ScenarioDefinition{
		ID:                         p.ID,
		PartnerEmploymentRate:      p.PartnerEmploymentRate,
		RetentionEmployedPartner:   p.RetentionEmployedPartner,
		RetentionUnemployedPartner: p.RetentionUnemployedPartner,
		SingleWorkerRetention:      p.SingleWorkerRetention,
		IsDefault:                  p.IsDefault,
	}
}

func (p *PgScenario) FromDomain(s domain.ScenarioDefinition) {
	*p = PgScenario{
		ID:                         s.ID,
		PartnerEmploymentRate:      s.PartnerEmploymentRate,
		RetentionEmployedPartner:   s.RetentionEmployedPartner,
		RetentionUnemployedPartner: s.RetentionUnemployedPartner,
		SingleWorkerRetention:      s.SingleWorkerRetention,
		IsDefault:                  s.IsDefault,
	}
}

type PgRetentionRow struct {
	ID         int64  `db:"id" goqu:"skipinsert"`
	ScenarioID int64  `db:"scenario_id"`
	Year       int    `db:"year"`
	WorkerType string `db:"worker_type"`

	EstimatedWorkers         float64 `db:"estimated_workers"`
	EstimatedPartners        float64 `db:"estimated_partners"`
	EmployedPartners         float64 `db:"employed_partners"`
	UnemployedPartners       float64 `db:"unemployed_partners"`
	RetainedWorkers          float64 `db:"retained_workers"`
	RetainedPartners         float64 `db:"retained_partners"`
	TotalContributingWorkers float64 `db:"total_contributing_workers"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func (p *PgRetentionRow) ToDomain() domain.RetentionResult {
	return domain.RetentionResult{
		Year:                     domain.Year(p.Year),
		ScenarioID:               p.ScenarioID,
		Kind:                     domain.WorkerSegmentKind(p.WorkerType),
		EstimatedWorkers:         p.EstimatedWorkers,
		EstimatedPartners:        p.EstimatedPartners,
		EmployedPartners:         p.EmployedPartners,
		UnemployedPartners:       p.UnemployedPartners,
		RetainedWorkers:          p.RetainedWorkers,
		RetainedPartners:         p.RetainedPartners,
		TotalContributingWorkers: p.TotalContributingWorkers,
	}
}

func (p *PgRetentionRow) FromDomain(r domain.RetentionResult) {
	*p = PgRetentionRow{
		ScenarioID:               r.ScenarioID,
		Year:                     int(r.Year),
		WorkerType:               string(r.Kind),
		EstimatedWorkers:         r.EstimatedWorkers,
		EstimatedPartners:        r.EstimatedPartners,
		EmployedPartners:         r.EmployedPartners,
		UnemployedPartners:       r.UnemployedPartners,
		RetainedWorkers:          r.RetainedWorkers,
		RetainedPartners:         r.RetainedPartners,
		TotalContributingWorkers: r.TotalContributingWorkers,
	}
}

type PgGapRow struct {
	ID         int64 `db:"id" goqu:"skipinsert"`
	ScenarioID int64 `db:"scenario_id"`
	Year       int   `db:"year"`

	AnnualTarget                 float64         `db:"annual_target"`
	CumulativeTarget             float64         `db:"cumulative_target"`
	BaselineForecast             float64         `db:"baseline_forecast"`
	SpouseEmploymentContribution float64         `db:"spouse_employment_contribution"`
	TotalProjectedWorkers        float64         `db:"total_projected_workers"`
	AnnualGap                    float64         `db:"annual_gap"`
	CumulativeGap                float64         `db:"cumulative_gap"`
	NewHouseholdsNeeded          sql.NullFloat64 `db:"new_households_needed"`
	UntappedWorkforce            float64         `db:"untapped_workforce"`
	BaselineOverlap              bool            `db:"baseline_overlap"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func (p *PgGapRow) ToDomain() domain.RecruitmentGapResult {
	res := domain.RecruitmentGapResult{
		Year:                         domain.Year(p.Year),
		ScenarioID:                   p.ScenarioID,
		AnnualTarget:                 p.AnnualTarget,
		CumulativeTarget:             p.CumulativeTarget,
		BaselineForecast:             p.BaselineForecast,
		SpouseEmploymentContribution: p.SpouseEmploymentContribution,
		TotalProjectedWorkers:        p.TotalProjectedWorkers,
		AnnualGap:                    p.AnnualGap,
		CumulativeGap:                p.CumulativeGap,
		UntappedWorkforce:            p.UntappedWorkforce,
		BaselineOverlap:              p.BaselineOverlap,
	}
	if p.NewHouseholdsNeeded.Valid {
		households := p.NewHouseholdsNeeded.Float64
		res.NewHouseholdsNeeded = &households
	}

	return res
}

func (p *PgGapRow) FromDomain(r domain.RecruitmentGapResult) {
	*p = PgGapRow{
		ScenarioID:                   r.ScenarioID,
		Year:                         int(r.Year),
		AnnualTarget:                 r.AnnualTarget,
		CumulativeTarget:             r.CumulativeTarget,
		BaselineForecast:             r.BaselineForecast,
		SpouseEmploymentContribution: r.SpouseEmploymentContribution,
		TotalProjectedWorkers:        r.TotalProjectedWorkers,
		AnnualGap:                    r.AnnualGap,
		CumulativeGap:                r.CumulativeGap,
		UntappedWorkforce:            r.UntappedWorkforce,
		BaselineOverlap:              r.BaselineOverlap,
	}
	if r.NewHouseholdsNeeded != nil {
		p.NewHouseholdsNeeded = sql.NullFloat64{Float64: *r.NewHouseholdsNeeded, Valid: true}
	}
}

type PgFlag struct {
	ID      int64     `db:"id" goqu:"skipinsert"`
	RunID   uuid.UUID `db:"run_id"`
	Code    string    `db:"code"`
	Subject string    `db:"subject"`
	Detail  string    `db:"detail"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func (p *PgFlag) ToDomain() domain.Flag {
	return domain.Flag{
		RunID:     p.RunID,
		Code:      p.Code,
		Subject:   p.Subject,
		Detail:    p.Detail,
		CreatedAt: p.CreatedAt,
	}
}

func (p *PgFlag) FromDomain(f domain.Flag) {
	*p = PgFlag{
		RunID:   f.RunID,
		Code:    f.Code,
		Subject: f.Subject,
		Detail:  f.Detail,
	}
}
