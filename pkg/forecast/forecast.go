// Package forecast fits trend models over historical metric series and
// projects them into future years with symmetric uncertainty bands and a
// qualitative reliability classification.
//
// The fit is scenario-independent: it depends only on the historical series,
// so fitted trends are cached per series and reused across all scenarios and
// target years of a sweep.
package forecast

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"workforce/pkg/domain"
	"workforce/pkg/serrors"
)

// MinHistoricalPoints is the minimum series length a trend fit requires.
const MinHistoricalPoints = 3

const (
	// maxUncertaintyShare caps the band half-width at this share of the
	// forecast value.
	maxUncertaintyShare = 0.5
	// minUncertainty is the absolute floor applied to the band half-width for
	// small forecast values.
	minUncertainty = 50.0
	// smallValueThreshold bounds the values the minUncertainty floor applies to.
	smallValueThreshold = 1000.0
)

// Projection is the forecast output for one metric: three observations per
// horizon year (forecast, lower bound, upper bound) plus fit diagnostics.
type Projection struct {
	// Observations holds forecast, lower_bound and upper_bound rows per
	// horizon year, in ascending year order.
	Observations []domain.MetricObservation
	// Model names the selected trend family ("linear" or "exponential").
	Model string
	// Constant marks a zero-variance historical series. The band has zero
	// width and reliability is High by convention; callers should flag it.
	Constant bool
}

// Forecaster produces projections from historical series. It memoizes fitted
// trends keyed by the series content, so repeated forecasts of the same
// history (across scenarios or target years) reuse one fit. It is safe for
// concurrent use.
type Forecaster struct {
	mu   sync.Mutex
	fits map[string]fit
}

// New returns an empty Forecaster.
func New() *Forecaster {
	return &Forecaster{fits: make(map[string]fit)}
}

// Forecast projects the series over the given horizon years. It requires at
// least MinHistoricalPoints points, and every horizon year must lie after the
// last historical year. The returned observations satisfy
// lower_bound ≤ forecast ≤ upper_bound for every year, and the band widens
// monotonically with distance from the last historical year (MAE × √steps,
// capped at half the forecast value, floored for small values).
func (f *Forecaster) Forecast(series domain.Series, horizon []domain.Year) (*Projection, error) {
	if len(series.Points) < MinHistoricalPoints {
		return nil, serrors.With(serrors.ErrInsufficientData,
			"metric %q has %d historical points, need at least %d",
			series.Metric.Name, len(series.Points), MinHistoricalPoints)
	}

	lastYear := series.Last().Year
	years := make([]domain.Year, len(horizon))
	copy(years, horizon)
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })
	if len(years) > 0 && years[0] <= lastYear {
		return nil, serrors.With(serrors.ErrInvalidParameter,
			"horizon year %d is not after the last historical year %d", years[0], lastYear)
	}

	ft := f.fitFor(series)

	obs := make([]domain.MetricObservation, 0, len(years)*3)
	for _, year := range years {
		steps := float64(year - lastYear)
		value := ft.predict(year)

		uncertainty := ft.mae * math.Sqrt(steps)
		if limit := math.Abs(value) * maxUncertaintyShare; uncertainty > limit {
			uncertainty = limit
		}
		if math.Abs(value) < smallValueThreshold && uncertainty < minUncertainty {
			uncertainty = minUncertainty
		}
		if ft.constant {
			uncertainty = 0
		}

		pct := uncertaintyPct(uncertainty, value)
		rel := classify(pct, ft.r2)

		row := domain.MetricObservation{
			Metric:         series.Metric,
			Year:           year,
			Value:          value,
			Kind:           domain.KindForecast,
			Uncertainty:    uncertainty,
			UncertaintyPct: pct,
			RSquared:       ft.r2,
			MAPE:           ft.mape,
			CV:             ft.cv,
			Reliability:    rel,
		}
		lower, upper := row, row
		lower.Kind, lower.Value = domain.KindLowerBound, value-uncertainty
		upper.Kind, upper.Value = domain.KindUpperBound, value+uncertainty

		obs = append(obs, row, lower, upper)
	}

	return &Projection{
		Observations: obs,
		Model:        string(ft.kind),
		Constant:     ft.constant,
	}, nil
}

// fitFor returns the cached fit for the series, computing it on first use.
func (f *Forecaster) fitFor(series domain.Series) fit {
	key := fingerprint(series)

	f.mu.Lock()
	defer f.mu.Unlock()

	if cached, ok := f.fits[key]; ok {
		return cached
	}

	ft := bestFit(series.Points)
	f.fits[key] = ft

	return ft
}

// fingerprint derives the cache key from the series content, so a changed
// historical input invalidates the cached fit naturally.
func fingerprint(series domain.Series) string {
	var b strings.Builder
	b.WriteString(series.Metric.Name)
	for _, p := range series.Points {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(int(p.Year)))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(p.Value, 'g', -1, 64))
	}

	return b.String()
}

// uncertaintyPct expresses the band half-width as a percentage of the
// forecast value. A zero forecast with a non-zero band is reported as 100%.
func uncertaintyPct(uncertainty, value float64) float64 {
	if value == 0 {
		if uncertainty == 0 {
			return 0
		}

		return 100
	}

	return uncertainty / math.Abs(value) * 100
}

// classify maps uncertainty percentage and R² onto the reliability bands.
func classify(uncertaintyPct, r2 float64) domain.Reliability {
	switch {
	case uncertaintyPct <= 10 && r2 >= 0.9:
		return domain.ReliabilityHigh
	case uncertaintyPct <= 25 && r2 >= 0.7:
		return domain.ReliabilityGood
	case uncertaintyPct <= 40 && r2 >= 0.5:
		return domain.ReliabilityModerate
	case uncertaintyPct <= 60:
		return domain.ReliabilityLow
	default:
		return domain.ReliabilityVeryLow
	}
}
