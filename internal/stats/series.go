package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// corrEpsilon guards correlation denominators for constant series.
const corrEpsilon = 1e-12

// #region histogram
// maxHistogramBins bounds the allocation of a single histogram.
const maxHistogramBins = 1 << 24

// BinCount returns how many fixed-width bins Histogram would use for the
// range [t0, t1]. It is NaN when the range or width is unusable and may exceed
// any int for very wide ranges.
func BinCount(t0, t1, width float64) float64 {
	if !(width > 0) || math.IsNaN(t0) || math.IsNaN(t1) || math.IsInf(t0, 0) || math.IsInf(t1, 0) {
		return math.NaN()
	}
	return math.Ceil((t1+width-t0)/width) - 1
}

// Histogram counts values into fixed-width bins with edges t0, t0+w, ... as
// far as the first edge not below t1+w would reach (numpy arange semantics).
// Bins are half-open except the last, which includes its right edge. It
// returns nil when the range needs no bins or more than 2^24 of them.
func Histogram(values []float64, t0, t1, width float64) []int {
	nb := BinCount(t0, t1, width)
	if math.IsNaN(nb) || nb < 1 || nb > maxHistogramBins {
		return nil
	}
	nBins := int(nb)
	nEdges := nBins + 1
	edges := make([]float64, nEdges)
	for i := range edges {
		edges[i] = t0 + float64(i)*width
	}
	last := edges[nEdges-1]
	counts := make([]int, nBins)
	for _, v := range values {
		if math.IsNaN(v) || v < edges[0] || v > last {
			continue
		}
		idx := sort.Search(nEdges, func(i int) bool { return edges[i] > v }) - 1
		if v == last {
			idx = nBins - 1
		}
		if idx >= 0 && idx < nBins {
			counts[idx]++
		}
	}
	return counts
}

// ToFloats converts counts to float64.
func ToFloats(counts []int) []float64 {
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = float64(c)
	}
	return out
}

// #endregion histogram

// #region moments
// MeanVariance returns the mean and the unbiased sample variance. The variance
// is 0 for fewer than two values.
func MeanVariance(x []float64) (mean, variance float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}
	mean = stat.Mean(x, nil)
	if len(x) < 2 {
		return mean, 0
	}
	return mean, stat.Variance(x, nil)
}

// Center subtracts the mean.
func Center(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	m := stat.Mean(x, nil)
	for i, v := range x {
		out[i] = v - m
	}
	return out
}

// #endregion moments

// #region autocorrelation
// LaggedAutocorrelation returns ac[0..m-1] for lags 1..m. Each lag correlates
// x[:-k] with x[k:], both re-centred on their own means.
func LaggedAutocorrelation(x []float64, m int) []float64 {
	ac := make([]float64, m)
	for k := 1; k <= m; k++ {
		if k >= len(x) {
			ac[k-1] = math.NaN()
			continue
		}
		x1, x2 := x[:len(x)-k], x[k:]
		m1, m2 := stat.Mean(x1, nil), stat.Mean(x2, nil)
		var num, s1, s2 float64
		for i := range x1 {
			d1, d2 := x1[i]-m1, x2[i]-m2
			num += d1 * d2
			s1 += d1 * d1
			s2 += d2 * d2
		}
		ac[k-1] = num / (math.Sqrt(s1*s2) + corrEpsilon)
	}
	return ac
}

// PortmanteauWeighting selects the per-lag divisor of the portmanteau sum.
type PortmanteauWeighting string

const (
	// WeightByLag divides each squared coefficient by its lag k.
	WeightByLag PortmanteauWeighting = "lag"
	// WeightLjungBox divides by n-k, the textbook Ljung-Box form.
	WeightLjungBox PortmanteauWeighting = "ljung-box"
)

// Portmanteau returns Q = n(n+2) Σ ac[k]² / d_k for the given weighting.
func Portmanteau(ac []float64, n int, weighting PortmanteauWeighting) float64 {
	var sum float64
	for i, a := range ac {
		k := i + 1
		d := float64(k)
		if weighting == WeightLjungBox {
			d = float64(n - k)
		}
		sum += a * a / d
	}
	return float64(n) * float64(n+2) * sum
}

// #endregion autocorrelation

// #region runs-test
// RunsResult is the Wald–Wolfowitz runs test on a 0/1 sequence.
type RunsResult struct {
	Runs     int
	N1, N0   int
	Expected float64
	Variance float64
	Z        float64
	P        float64 // two-sided; NaN when the variance is undefined
}

// RunsTest counts maximal same-value blocks and compares them with the
// random-permutation null given the counts of ones and zeros.
func RunsTest(seq []int) RunsResult {
	r := RunsResult{Runs: 1, Expected: math.NaN(), Variance: math.NaN(), Z: math.NaN(), P: math.NaN()}
	if len(seq) == 0 {
		r.Runs = 0
		return r
	}
	for i, v := range seq {
		if v == 1 {
			r.N1++
		} else {
			r.N0++
		}
		if i > 0 && v != seq[i-1] {
			r.Runs++
		}
	}
	n1, n0 := float64(r.N1), float64(r.N0)
	n := n1 + n0
	r.Expected = 1 + 2*n1*n0/n
	if n > 1 {
		r.Variance = (2 * n1 * n0 * (2*n1*n0 - n1 - n0)) / (n * n * (n - 1))
	}
	if !math.IsNaN(r.Variance) && r.Variance > 0 {
		r.Z = (float64(r.Runs) - r.Expected) / math.Sqrt(r.Variance)
		r.P = math.Min(1, 2*NormalSF(math.Abs(r.Z)))
	}
	return r
}

// #endregion runs-test
