package metric

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/flyby-triad/internal/dataset"
	"github.com/danielpatrickdp/flyby-triad/internal/stats"
)

// #region memory
// MemoryEvaluator detects residual serial correlation in binned event counts.
type MemoryEvaluator struct {
	config MemoryConfig
}

// NewMemory creates the M evaluator.
func NewMemory(config MemoryConfig) *MemoryEvaluator {
	if config.Weighting == "" {
		config.Weighting = stats.WeightByLag
	}
	return &MemoryEvaluator{config: config}
}

func (e *MemoryEvaluator) Channel() Channel { return Memory }

// Evaluate bins the events, mean-centres the counts and refers the
// portmanteau statistic over lags 1..m to chi²(m).
func (e *MemoryEvaluator) Evaluate(run dataset.Run) Measurement {
	ts := make([]float64, 0, len(run.Events))
	for _, ev := range run.Events {
		if finite(ev.TS) {
			ts = append(ts, ev.TS)
		}
	}
	if len(ts) < e.config.MinEvents {
		return undetermined(Memory, len(ts), fmt.Sprintf("insufficient data: %d events, need %d", len(ts), e.config.MinEvents))
	}
	sort.Float64s(ts)
	shortLag := e.shortLagFraction(ts)

	t0, t1 := ts[0], ts[len(ts)-1]
	if nb := stats.BinCount(t0, t1, e.config.BinS); !(nb <= float64(e.maxBins())) {
		m := undetermined(Memory, len(ts), fmt.Sprintf("degenerate input: time span %.6g s needs %.6g bins, limit %d", t1-t0, nb, e.maxBins()))
		m.Diagnostic = shortLag
		return m
	}
	counts := stats.ToFloats(stats.Histogram(ts, t0, t1, e.config.BinS))
	n := len(counts)
	if n <= e.config.Lags {
		m := undetermined(Memory, len(ts), fmt.Sprintf("insufficient data: %d bins, need more than %d lags", n, e.config.Lags))
		m.Diagnostic = shortLag
		return m
	}

	ac := stats.LaggedAutocorrelation(stats.Center(counts), e.config.Lags)
	q := stats.Portmanteau(ac, n, e.config.Weighting)
	return Measurement{
		Channel:    Memory,
		Stat:       q,
		P:          stats.ChiSquaredSF(q, e.config.Lags),
		N:          len(ts),
		Diagnostic: shortLag,
	}
}

func (e *MemoryEvaluator) maxBins() int {
	if e.config.MaxBins > 0 {
		return e.config.MaxBins
	}
	return DefaultMaxBins
}

// shortLagFraction is the share of consecutive inter-event gaps shorter than
// ShortLagS. ts must be sorted.
func (e *MemoryEvaluator) shortLagFraction(ts []float64) float64 {
	if len(ts) < 2 {
		return math.NaN()
	}
	short := 0
	for i := 1; i < len(ts); i++ {
		if ts[i]-ts[i-1] < e.config.ShortLagS {
			short++
		}
	}
	return float64(short) / float64(len(ts)-1)
}

// #endregion memory
