package domain

// Unit describes how a metric value should be interpreted.
type Unit string

const (
	// UnitCount indicates the metric value is an absolute headcount.
	UnitCount Unit = "count"
	// UnitPercentage indicates the metric value is a percentage.
	UnitPercentage Unit = "percentage"
)

// ValueKind distinguishes the rows stored per (metric, year).
// Historical years carry exactly one actual observation; forecast years carry
// a forecast plus a matching lower and upper bound.
type ValueKind string

const (
	// KindActual marks an observed historical value.
	KindActual ValueKind = "actual"
	// KindForecast marks a projected value for a future year.
	KindForecast ValueKind = "forecast"
	// KindLowerBound marks the lower edge of the forecast uncertainty band.
	KindLowerBound ValueKind = "lower_bound"
	// KindUpperBound marks the upper edge of the forecast uncertainty band.
	KindUpperBound ValueKind = "upper_bound"
)

// Reliability is the qualitative confidence label derived from the fit
// statistics of a forecast (uncertainty percentage and R²).
type Reliability string

const (
	ReliabilityHigh     Reliability = "High"
	ReliabilityGood     Reliability = "Good"
	ReliabilityModerate Reliability = "Moderate"
	ReliabilityLow      Reliability = "Low"
	ReliabilityVeryLow  Reliability = "Very Low"
)

// Metric identifies a forecastable workforce quantity. It is immutable
// reference data; ID is assigned by the storage layer.
type Metric struct {
	// ID is the storage identifier of the metric; zero before first persistence.
	ID int64 `json:"id"`
	// Name uniquely identifies the metric, e.g. "Total workers".
	Name string `json:"name"`
	// Category groups related metrics, e.g. "Foreign Workers" or "Migration".
	Category string `json:"category"`
	// Unit describes how Value should be read.
	Unit Unit `json:"unit"`
}

// Point is a single (year, value) pair of a historical series.
type Point struct {
	Year  Year    `json:"year"`
	Value float64 `json:"value"`
}

// Series is the ordered historical record of one metric. Points are sorted by
// ascending year and contain at most one value per year.
type Series struct {
	Metric Metric  `json:"metric"`
	Points []Point `json:"points"`
}

// Last returns the final point of the series. It must not be called on an
// empty series.
func (s Series) Last() Point { return s.Points[len(s.Points)-1] }

// MetricObservation is one row of the metric values table: either an observed
// historical value or a forecast row with its fit statistics. For actual rows
// the statistics fields are zero.
type MetricObservation struct {
	Metric Metric    `json:"metric"`
	Year   Year      `json:"year"`
	Value  float64   `json:"value"`
	Kind   ValueKind `json:"kind"`

	// Uncertainty is the symmetric absolute half-width of the forecast band.
	Uncertainty float64 `json:"uncertainty"`
	// UncertaintyPct is Uncertainty as a percentage of the forecast value.
	UncertaintyPct float64 `json:"uncertaintyPct"`
	// RSquared is the coefficient of determination of the fitted trend.
	RSquared float64 `json:"rSquared"`
	// MAPE is the mean absolute percentage error of the fit over history.
	MAPE float64 `json:"mape"`
	// CV is the coefficient of variation of the historical values, in percent.
	CV float64 `json:"cv"`
	// Reliability is the qualitative confidence band of the forecast.
	Reliability Reliability `json:"reliability,omitempty"`
}
