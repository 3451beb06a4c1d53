package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChiSquaredSF(t *testing.T) {
	assert.InDelta(t, 0.05, ChiSquaredSF(3.841459, 1), 1e-7)
	assert.Equal(t, 1.0, ChiSquaredSF(0, 4))
	assert.Equal(t, 1.0, ChiSquaredSF(-3, 4))
	assert.True(t, math.IsNaN(ChiSquaredSF(math.NaN(), 4)))
	assert.True(t, math.IsNaN(ChiSquaredSF(1, 0)))

	p := ChiSquaredSF(1e6, 10)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.Less(t, p, 1e-100)
}

func TestNormalSF(t *testing.T) {
	assert.InDelta(t, 0.5, NormalSF(0), 1e-15)
	assert.InDelta(t, 0.025, NormalSF(1.959964), 1e-8)
	assert.True(t, math.IsNaN(NormalSF(math.NaN())))
}

func TestFisherCombine(t *testing.T) {
	stat, p, k := FisherCombine(0.05, 0.05)
	assert.Equal(t, 2, k)
	assert.InDelta(t, 11.982929094215963, stat, 1e-9)
	assert.InDelta(t, 0.017478661367769956, p, 1e-9)

	stat, p, k = FisherCombine(0.5, math.NaN())
	assert.Equal(t, 1, k)
	assert.InDelta(t, 1.3862943611198906, stat, 1e-12)
	assert.InDelta(t, 0.5, p, 1e-12)

	stat, p, k = FisherCombine(math.NaN(), 0, math.Inf(1))
	assert.Equal(t, 0, k)
	assert.True(t, math.IsNaN(stat))
	assert.True(t, math.IsNaN(p))
}

func TestWeightedLeastSquaresExactLine(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	design := make([][]float64, len(xs))
	y := make([]float64, len(xs))
	w := make([]float64, len(xs))
	for i, x := range xs {
		design[i] = []float64{1, x}
		y[i] = 2 + 3*x
		w[i] = float64(i + 1)
	}
	fit, err := WeightedLeastSquares(design, y, w)
	require.NoError(t, err)
	assert.InDelta(t, 2, fit.Beta[0], 1e-10)
	assert.InDelta(t, 3, fit.Beta[1], 1e-10)
	assert.InDelta(t, 0, fit.RSS, 1e-12)
	assert.InDelta(t, 14, fit.Fitted[4], 1e-10)
}

func TestWeightedLeastSquaresWeightsMatter(t *testing.T) {
	// Two conflicting observations of a constant; the heavier one wins.
	design := [][]float64{{1}, {1}}
	fit, err := WeightedLeastSquares(design, []float64{0, 10}, []float64{1, 9})
	require.NoError(t, err)
	assert.InDelta(t, 9, fit.Beta[0], 1e-10)
	assert.InDelta(t, 1*81+9*1, fit.RSS, 1e-9)
}

func TestWeightedLeastSquaresBadShape(t *testing.T) {
	_, err := WeightedLeastSquares([][]float64{{1, 2}}, []float64{1, 2}, []float64{1, 1})
	assert.Error(t, err)
	_, err = WeightedLeastSquares([][]float64{{1, 2}}, []float64{1}, []float64{1})
	assert.Error(t, err, "fewer observations than parameters")
	_, err = WeightedLeastSquares(nil, nil, nil)
	assert.Error(t, err)
}

func TestSlope(t *testing.T) {
	assert.InDelta(t, 2, Slope([]float64{0, 1, 2, 3}, []float64{1, 3, 5, 7}), 1e-12)
	assert.True(t, math.IsNaN(Slope([]float64{1}, []float64{1})))
}

func TestLogSpace(t *testing.T) {
	got := LogSpace(5, 7, 3)
	require.Len(t, got, 3)
	assert.InEpsilon(t, 1e5, got[0], 1e-12)
	assert.InEpsilon(t, 1e6, got[1], 1e-12)
	assert.InEpsilon(t, 1e7, got[2], 1e-12)
	assert.Len(t, LogSpace(-6, 6, 241), 241)
	assert.Nil(t, LogSpace(0, 1, 0))
}

func TestHistogram(t *testing.T) {
	got := Histogram([]float64{0, 1, 4.9, 5, 10, 11, -1, math.NaN()}, 0, 10, 5)
	assert.Equal(t, []int{3, 2}, got, "last bin includes its right edge")

	assert.Nil(t, Histogram([]float64{1}, 0, 10, 0))
	assert.Nil(t, Histogram([]float64{1}, math.NaN(), 10, 1))
}

func TestHistogramPartialLastBin(t *testing.T) {
	// edges 0,5,10,15: the range t1=12 reaches into a third bin
	got := Histogram([]float64{0, 6, 12}, 0, 12, 5)
	assert.Equal(t, []int{1, 1, 1}, got)
}

func TestBinCount(t *testing.T) {
	assert.Equal(t, 2.0, BinCount(0, 10, 5))
	assert.Equal(t, 3.0, BinCount(0, 12, 5))
	assert.Greater(t, BinCount(0, 1e16, 5), 1e15)
	assert.True(t, math.IsNaN(BinCount(0, 10, 0)))
	assert.True(t, math.IsNaN(BinCount(math.Inf(-1), 10, 5)))
}

func TestHistogramTooWide(t *testing.T) {
	assert.Nil(t, Histogram([]float64{0, 1, 1e16}, 0, 1e16, 5))
	assert.Nil(t, Histogram([]float64{0, 1e300}, 0, 1e300, 5))
}

func TestMeanVariance(t *testing.T) {
	m, v := MeanVariance([]float64{1, 2, 3, 4})
	assert.InDelta(t, 2.5, m, 1e-15)
	assert.InDelta(t, 5.0/3, v, 1e-15)

	m, v = MeanVariance([]float64{7})
	assert.Equal(t, 7.0, m)
	assert.Equal(t, 0.0, v)

	m, _ = MeanVariance(nil)
	assert.True(t, math.IsNaN(m))
}

func TestCenter(t *testing.T) {
	assert.Equal(t, []float64{-1, 0, 1}, Center([]float64{1, 2, 3}))
	assert.Empty(t, Center(nil))
}

func TestLaggedAutocorrelation(t *testing.T) {
	x := make([]float64, 40)
	for i := range x {
		x[i] = float64(1 - 2*(i%2))
	}
	ac := LaggedAutocorrelation(x, 3)
	assert.InDelta(t, -1, ac[0], 1e-9)
	assert.InDelta(t, 1, ac[1], 1e-9)
	assert.InDelta(t, -1, ac[2], 1e-9)

	flat := LaggedAutocorrelation(make([]float64, 20), 2)
	assert.Equal(t, []float64{0, 0}, flat)

	short := LaggedAutocorrelation([]float64{1, 2}, 3)
	assert.True(t, math.IsNaN(short[2]))
}

func TestPortmanteau(t *testing.T) {
	assert.InDelta(t, 30, Portmanteau([]float64{0.5}, 10, WeightByLag), 1e-12)
	assert.InDelta(t, 30.0/9, Portmanteau([]float64{0.5}, 10, WeightLjungBox), 1e-12)
	// lag 2 contributes a²/2 under lag weighting
	assert.InDelta(t, 10*12*(0.25+0.25/2), Portmanteau([]float64{0.5, 0.5}, 10, WeightByLag), 1e-12)
}

func TestRunsTest(t *testing.T) {
	alt := make([]int, 40)
	block := make([]int, 40)
	for i := range alt {
		alt[i] = i % 2
		if i < 20 {
			block[i] = 1
		}
	}

	ra := RunsTest(alt)
	assert.Equal(t, 40, ra.Runs)
	assert.Equal(t, 20, ra.N1)
	assert.InDelta(t, 21, ra.Expected, 1e-12)
	assert.Greater(t, ra.Z, 6.0)
	assert.InDelta(t, 1.15e-9, ra.P, 0.05e-9)

	rb := RunsTest(block)
	assert.Equal(t, 2, rb.Runs)
	assert.Less(t, rb.Z, -6.0)
	assert.InDelta(t, ra.P, rb.P, 1e-20)

	ones := RunsTest([]int{1, 1, 1})
	assert.Equal(t, 1, ones.Runs)
	assert.True(t, math.IsNaN(ones.P))

	assert.Equal(t, 0, RunsTest(nil).Runs)
}
