// Package stats holds the numeric kernels shared by the triad metrics:
// survival functions, p-value fusion, weighted regression, binning and
// serial-correlation helpers. Everything here is deterministic.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// #region survival
// ChiSquaredSF is the chi-squared survival function with k degrees of freedom.
// NaN in, NaN out.
func ChiSquaredSF(x float64, k int) float64 {
	if math.IsNaN(x) || k <= 0 {
		return math.NaN()
	}
	if x <= 0 {
		return 1
	}
	return clampUnit(distuv.ChiSquared{K: float64(k)}.Survival(x))
}

// NormalSF is the standard normal survival function.
func NormalSF(z float64) float64 {
	if math.IsNaN(z) {
		return math.NaN()
	}
	return clampUnit(distuv.UnitNormal.Survival(z))
}

// #endregion survival

// #region fisher
// FisherCombine fuses p-values with Fisher's method: stat = -2 Σ ln p,
// distributed chi²(2k). Only finite, strictly positive p-values are used; k is
// how many were. With none usable the result is (NaN, NaN, 0).
func FisherCombine(ps ...float64) (stat, p float64, k int) {
	for _, v := range ps {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		stat += math.Log(v)
		k++
	}
	if k == 0 {
		return math.NaN(), math.NaN(), 0
	}
	stat *= -2
	return stat, ChiSquaredSF(stat, 2*k), k
}

// #endregion fisher

func clampUnit(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
