package forecast

import (
	"math"

	"workforce/pkg/domain"
)

// modelKind identifies the trend family fitted over a historical series.
type modelKind string

const (
	modelLinear      modelKind = "linear"
	modelExponential modelKind = "exponential"
)

// fit is a fitted trend plus the residual statistics computed over the
// historical series. All statistics are on the original value scale, even for
// the exponential model (which is fitted in log space).
type fit struct {
	kind modelKind
	// slope and intercept describe the fitted line; for the exponential model
	// they live in log space.
	slope     float64
	intercept float64

	// r2 is the coefficient of determination on the original scale.
	r2 float64
	// mae is the mean absolute error of the fit over history.
	mae float64
	// cv is the coefficient of variation of the historical values, in percent.
	cv float64
	// mape is the mean absolute percentage error, in percent, over the
	// non-zero historical values.
	mape float64
	// constant marks a zero-variance series: R² is undefined and reported as 1
	// by convention, and the forecast band has zero width.
	constant bool
}

// predict evaluates the fitted trend at the given year.
func (f fit) predict(year domain.Year) float64 {
	v := f.intercept + f.slope*float64(year)
	if f.kind == modelExponential {
		return math.Exp(v)
	}

	return v
}

// leastSquares fits y = intercept + slope*x by ordinary least squares.
// A degenerate x spread yields a flat line through the mean.
func leastSquares(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	den := n*sumXX - sumX*sumX
	if den == 0 {
		return 0, sumY / n
	}

	slope = (n*sumXY - sumX*sumY) / den
	intercept = (sumY - slope*sumX) / n

	return slope, intercept
}

// newFit fits the given model family over the points and computes its residual
// statistics. ok is false when the family is not applicable (the exponential
// model requires strictly positive values).
func newFit(kind modelKind, points []domain.Point) (fit, bool) {
	xs := make([]float64, len(points))
	target := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.Year)
		ys[i] = p.Value
		if kind == modelExponential {
			if p.Value <= 0 {
				return fit{}, false
			}
			target[i] = math.Log(p.Value)
		} else {
			target[i] = p.Value
		}
	}

	f := fit{kind: kind}
	f.slope, f.intercept = leastSquares(xs, target)

	var mean float64
	for _, y := range ys {
		mean += y
	}
	mean /= float64(len(ys))

	var ssRes, ssTot, sqDev, absErrSum, mapeSum float64
	var mapeN int
	for i, p := range points {
		pred := f.predict(p.Year)
		resid := ys[i] - pred
		dev := ys[i] - mean

		ssRes += resid * resid
		ssTot += dev * dev
		sqDev += dev * dev
		absErrSum += math.Abs(resid)
		if ys[i] != 0 {
			mapeSum += math.Abs(resid / ys[i])
			mapeN++
		}
	}

	f.mae = absErrSum / float64(len(points))
	if ssTot == 0 {
		// zero-variance history: R² undefined, reported as a perfect fit
		f.constant = true
		f.r2 = 1
		f.mae = 0
	} else {
		f.r2 = 1 - ssRes/ssTot
	}

	// population standard deviation; CV undefined for zero-mean series and
	// reported as 0 in that case
	if mean != 0 {
		std := math.Sqrt(sqDev / float64(len(ys)))
		f.cv = std / mean * 100
	}
	if mapeN > 0 {
		f.mape = mapeSum / float64(mapeN) * 100
	}

	return f, true
}

// bestFit fits the linear model and, where applicable, the exponential model,
// and keeps whichever explains more variance on the original scale. Ties go
// to the linear model.
func bestFit(points []domain.Point) fit {
	linear, _ := newFit(modelLinear, points)
	if exp, ok := newFit(modelExponential, points); ok && exp.r2 > linear.r2 {
		return exp
	}

	return linear
}
