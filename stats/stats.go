// Package stats characterizes the avalanche size distribution: a
// log-binned histogram and a power-law exponent estimated by linear
// regression on the log-log data. Everything here is a pure function
// over a snapshot of the series, independent of the simulation.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the histogram bin count used when the caller passes 0.
const DefaultBins = 50

// Status reports how much of the pipeline could run for a given series.
type Status int

const (
	// StatusOK means the histogram was built and the fit succeeded.
	StatusOK Status = iota
	// StatusNoData means the series was empty; nothing was computed.
	StatusNoData
	// StatusInsufficientData means fewer than 2 non-empty bins remained,
	// so no line could be fitted. Points are still populated for display.
	StatusInsufficientData
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoData:
		return "no data"
	case StatusInsufficientData:
		return "insufficient data for fit"
	default:
		return "unknown"
	}
}

// Point is one non-empty histogram bin: the geometric-mean centre of
// its edges and the number of avalanches that fell into it.
type Point struct {
	Center float64
	Count  int
}

// Result is the outcome of one statistics request. It is recomputed
// from scratch on every call and never persisted.
type Result struct {
	Status Status

	// Fit parameters for log10(count) = Slope*log10(size) + Intercept.
	// Valid only when Status is StatusOK.
	Slope     float64
	Intercept float64
	R2        float64

	// Tau is the exponent of P(s) ∝ s^-τ, derived as 1 - Slope: the
	// histogram counts frequency N(s), and P(s) ∝ N(s)/s shifts the
	// log-log slope by exactly one.
	Tau float64

	Points     []Point
	Avalanches int
	Drops      uint64
}

// LogEdges returns n+1 logarithmically spaced bin edges spanning
// [lo, hi]. The endpoints are pinned to lo and hi exactly:
// floats.LogSpan computes them as exp(log(x)), and the rounding drift
// can push edges[0] above lo, leaving the smallest sample outside the
// histogram dividers.
func LogEdges(lo, hi float64, n int) []float64 {
	edges := make([]float64, n+1)
	floats.LogSpan(edges, lo, hi)
	edges[0] = lo
	edges[n] = hi
	return edges
}

// FitPowerLaw bins the avalanche size series into bins log-spaced bins
// (0 selects DefaultBins) and fits a straight line through the
// non-empty (log size, log count) points by ordinary least squares.
func FitPowerLaw(sizes []int, drops uint64, bins int) Result {
	res := Result{Avalanches: len(sizes), Drops: drops}
	if len(sizes) == 0 {
		res.Status = StatusNoData
		return res
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	samples := make([]float64, len(sizes))
	for i, s := range sizes {
		samples[i] = float64(s)
	}
	sort.Float64s(samples)

	lo := math.Max(1, samples[0])
	hi := samples[len(samples)-1] + 1
	edges := LogEdges(lo, hi, bins)

	counts := make([]float64, bins)
	stat.Histogram(counts, edges, samples, nil)

	// Keep only populated bins; centres are geometric means, the
	// appropriate representative for log-spaced edges.
	for i, c := range counts {
		if c > 0 {
			res.Points = append(res.Points, Point{
				Center: math.Sqrt(edges[i] * edges[i+1]),
				Count:  int(c),
			})
		}
	}

	if len(res.Points) < 2 {
		res.Status = StatusInsufficientData
		return res
	}

	logX := make([]float64, len(res.Points))
	logY := make([]float64, len(res.Points))
	for i, p := range res.Points {
		logX[i] = math.Log10(p.Center)
		logY[i] = math.Log10(float64(p.Count))
	}

	alpha, beta := stat.LinearRegression(logX, logY, nil, false)
	r2 := stat.RSquared(logX, logY, nil, alpha, beta)

	res.Status = StatusOK
	res.Slope = beta
	res.Intercept = alpha
	res.R2 = r2
	res.Tau = 1 - beta
	return res
}
