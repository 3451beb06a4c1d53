package metric

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/flyby-triad/internal/dataset"
	"github.com/danielpatrickdp/flyby-triad/internal/stats"
)

// dispersionEpsilon keeps the dispersion z finite when λ is tiny.
const dispersionEpsilon = 1e-12

// #region digital
// DigitalEvaluator looks for clustering in binary trial outcomes: Poisson
// over-dispersion of windowed success counts plus a runs test, fused with
// Fisher's method.
type DigitalEvaluator struct {
	config DigitalConfig
}

// NewDigital creates the D evaluator.
func NewDigital(config DigitalConfig) *DigitalEvaluator {
	return &DigitalEvaluator{config: config}
}

func (e *DigitalEvaluator) Channel() Channel { return Digital }

// Evaluate returns the Fisher statistic over the usable component p-values.
func (e *DigitalEvaluator) Evaluate(run dataset.Run) Measurement {
	trials := make([]dataset.TrialOutcome, 0, len(run.Trials))
	for _, t := range run.Trials {
		if finite(t.TRelS) && !math.IsNaN(t.Outcome) {
			trials = append(trials, t)
		}
	}
	if len(trials) < e.config.MinRows {
		return undetermined(Digital, len(trials), fmt.Sprintf("insufficient data: %d trials, need %d", len(trials), e.config.MinRows))
	}

	pDisp, fano := e.dispersion(trials)

	sort.SliceStable(trials, func(i, j int) bool { return trials[i].TRelS < trials[j].TRelS })
	seq := make([]int, len(trials))
	for i, t := range trials {
		if t.Outcome == 1 {
			seq[i] = 1
		}
	}
	runs := stats.RunsTest(seq)

	stat, p, k := stats.FisherCombine(pDisp, runs.P)
	if k == 0 {
		m := undetermined(Digital, len(trials), "degenerate input: neither dispersion nor runs test defined")
		m.Diagnostic = fano
		return m
	}
	return Measurement{
		Channel:    Digital,
		Stat:       stat,
		P:          p,
		N:          len(trials),
		Diagnostic: fano,
	}
}

// dispersion compares the variance of windowed success counts with the
// Poisson expectation. The one-sided p-value tests over-dispersion only and is
// NaN when λ = 0, there are too few windows, or the time span needs more than
// MaxWindows of them.
func (e *DigitalEvaluator) dispersion(trials []dataset.TrialOutcome) (p, fano float64) {
	t0, t1 := math.Inf(1), math.Inf(-1)
	var hits []float64
	for _, t := range trials {
		t0 = math.Min(t0, t.TRelS)
		t1 = math.Max(t1, t.TRelS)
		if t.Outcome == 1 {
			hits = append(hits, t.TRelS)
		}
	}
	p, fano = math.NaN(), math.NaN()
	limit := e.config.MaxWindows
	if limit <= 0 {
		limit = DefaultMaxBins
	}
	if nb := stats.BinCount(t0, t1, e.config.WindowS); !(nb <= float64(limit)) {
		return p, fano
	}
	counts := stats.ToFloats(stats.Histogram(hits, t0, t1, e.config.WindowS))
	if len(counts) == 0 {
		return p, fano
	}
	lambda, variance := stats.MeanVariance(counts)
	if lambda > 0 {
		fano = variance / lambda
	}
	if lambda > 0 && len(counts) > e.config.MinWindows {
		sd := math.Sqrt(2*lambda*lambda/math.Max(float64(len(counts)-1), 1)) + dispersionEpsilon
		p = stats.NormalSF((variance - lambda) / sd)
	}
	return p, fano
}

// #endregion digital
