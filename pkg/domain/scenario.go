package domain

// WorkerSegmentKind partitions the international worker population by
// household situation, which determines the retention rate that applies.
type WorkerSegmentKind string

const (
	// SegmentSingle covers workers who relocated without a partner.
	SegmentSingle WorkerSegmentKind = "Single"
	// SegmentAccompanyingPartner covers workers whose partner relocated with
	// them and does not hold a Danish work history of their own.
	SegmentAccompanyingPartner WorkerSegmentKind = "AccompanyingPartner"
	// SegmentDanishPartner covers workers partnered with a Danish resident;
	// these households are treated as always-employed-equivalent.
	SegmentDanishPartner WorkerSegmentKind = "DanishPartner"
)

// WorkerSegmentKinds lists all segment kinds in stable presentation order.
var WorkerSegmentKinds = []WorkerSegmentKind{ //nolint: gochecknoglobals
	SegmentSingle,
	SegmentAccompanyingPartner,
	SegmentDanishPartner,
}

// SegmentShares maps each segment kind to its share of the worker population
// for a year. Shares are expected to sum to 1 within floating tolerance.
type SegmentShares map[WorkerSegmentKind]float64

// Sum returns the total of all shares.
func (s SegmentShares) Sum() float64 {
	var total float64
	for _, v := range s {
		total += v
	}

	return total
}

// ScenarioDefinition is the immutable parameter set of one policy scenario.
// The partner employment rate is the policy lever; the retention rates are
// fixed constants shared by all scenarios of a sweep.
type ScenarioDefinition struct {
	// ID is the storage identifier of the scenario; zero before persistence.
	ID int64 `json:"id"`
	// PartnerEmploymentRate is the share of accompanying partners holding a
	// job under this scenario, in [0, 1].
	PartnerEmploymentRate float64 `json:"partnerEmploymentRate"`
	// RetentionEmployedPartner is the 5-year retention rate of workers whose
	// partner is employed.
	RetentionEmployedPartner float64 `json:"retentionEmployedPartner"`
	// RetentionUnemployedPartner is the 5-year retention rate of workers whose
	// partner is not employed.
	RetentionUnemployedPartner float64 `json:"retentionUnemployedPartner"`
	// SingleWorkerRetention is the 5-year retention rate of single workers.
	SingleWorkerRetention float64 `json:"singleWorkerRetention"`
	// IsDefault marks the scenario presented by default; exactly one scenario
	// of a catalog carries it.
	IsDefault bool `json:"isDefault"`
}
