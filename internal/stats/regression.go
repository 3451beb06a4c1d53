package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// #region wls
// WLSFit is the result of a weighted least-squares fit.
type WLSFit struct {
	Beta   []float64
	Fitted []float64
	RSS    float64 // weighted residual sum of squares
}

// WeightedLeastSquares solves min Σ w_i (y_i - X_i·β)² by QR on the
// sqrt-weight-scaled system. design holds one row per observation.
func WeightedLeastSquares(design [][]float64, y, w []float64) (WLSFit, error) {
	n := len(y)
	if n == 0 || len(design) != n || len(w) != n {
		return WLSFit{}, fmt.Errorf("wls: mismatched lengths (rows=%d y=%d w=%d)", len(design), n, len(w))
	}
	p := len(design[0])
	if n < p {
		return WLSFit{}, fmt.Errorf("wls: %d observations for %d parameters", n, p)
	}

	a := mat.NewDense(n, p, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		sw := math.Sqrt(w[i])
		for j := 0; j < p; j++ {
			a.Set(i, j, design[i][j]*sw)
		}
		b.SetVec(i, y[i]*sw)
	}

	var beta mat.VecDense
	if err := beta.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return WLSFit{}, fmt.Errorf("wls: %w", err)
		}
		// ill-conditioned but solved; keep the least-squares answer
	}
	if beta.Len() != p {
		return WLSFit{}, fmt.Errorf("wls: rank-deficient design")
	}

	fit := WLSFit{Beta: make([]float64, p), Fitted: make([]float64, n)}
	for j := 0; j < p; j++ {
		fit.Beta[j] = beta.AtVec(j)
	}
	for i := 0; i < n; i++ {
		fit.Fitted[i] = floats.Dot(design[i], fit.Beta)
		r := y[i] - fit.Fitted[i]
		fit.RSS += w[i] * r * r
	}
	return fit, nil
}

// #endregion wls

// #region ols-slope
// Slope returns the ordinary least-squares slope of y on x.
func Slope(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return math.NaN()
	}
	_, beta := stat.LinearRegression(x, y, nil, false)
	return beta
}

// #endregion ols-slope

// #region grid
// LogSpace returns n points spaced evenly in log10 between 10^lo and 10^hi,
// matching numpy.logspace.
func LogSpace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	exps := make([]float64, n)
	if n == 1 {
		exps[0] = lo
	} else {
		floats.Span(exps, lo, hi)
	}
	for i, e := range exps {
		exps[i] = math.Pow(10, e)
	}
	return exps
}

// #endregion grid
