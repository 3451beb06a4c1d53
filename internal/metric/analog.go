package metric

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/flyby-triad/internal/dataset"
	"github.com/danielpatrickdp/flyby-triad/internal/stats"
)

// #region analog
// AnalogEvaluator tests heating rate versus mode frequency for a constant,
// non-negative offset on top of a power-law background.
type AnalogEvaluator struct {
	config AnalogConfig
	kappas []float64
}

// NewAnalog creates the A evaluator. The κ grid is built once.
func NewAnalog(config AnalogConfig) *AnalogEvaluator {
	return &AnalogEvaluator{
		config: config,
		kappas: stats.LogSpace(config.KappaLoExp, config.KappaHiExp, config.KappaSteps),
	}
}

func (e *AnalogEvaluator) Channel() Channel { return Analog }

// Evaluate fits ln(rate) = β0 − β1·ln(f) by weighted least squares, then
// grid-searches the offset κ on the linear scale. The statistic is
// max(0, RSS_bg − RSS_mix), referred to chi²(1).
func (e *AnalogEvaluator) Evaluate(run dataset.Run) Measurement {
	var x, y, w []float64
	for _, h := range run.Heating {
		if !finite(h.FrequencyHz) || !finite(h.Rate) || !finite(h.RateErr) || h.Rate <= 0 {
			continue
		}
		rel := math.Max(h.RateErr/h.Rate, e.config.MinRelErr)
		x = append(x, math.Log(h.FrequencyHz))
		y = append(y, math.Log(h.Rate))
		w = append(w, 1/(rel*rel))
	}

	if len(x) == 0 {
		if m, ok := e.seriesSlope(run); ok {
			return m
		}
	}
	if len(x) < e.config.MinRows {
		return undetermined(Analog, len(x), fmt.Sprintf("insufficient data: %d valid heating rows, need %d", len(x), e.config.MinRows))
	}

	if !spread(x) {
		return undetermined(Analog, len(x), "degenerate input: a single frequency")
	}

	design := make([][]float64, len(x))
	for i, xi := range x {
		design[i] = []float64{1, -xi}
	}
	fit, err := stats.WeightedLeastSquares(design, y, w)
	if err != nil || !finite(fit.RSS) || !finite(fit.Beta[1]) {
		return undetermined(Analog, len(x), "degenerate input: background fit failed")
	}

	g := make([]float64, len(y))
	gBg := make([]float64, len(y))
	for i := range y {
		g[i] = math.Exp(y[i])
		gBg[i] = math.Exp(fit.Fitted[i])
	}

	rssMix := math.Inf(1)
	for _, k := range e.kappas {
		if r := offsetRSS(g, gBg, math.Max(k, 0)); r < rssMix {
			rssMix = r
		}
	}

	stat := math.Max(0, fit.RSS-rssMix)
	return Measurement{
		Channel:    Analog,
		Stat:       stat,
		P:          stats.ChiSquaredSF(stat, 1),
		N:          len(x),
		Diagnostic: fit.Beta[1],
	}
}

// seriesSlope handles the energy-versus-time heating form: no offset test is
// possible, but the heating rate dE/dt is reported for audit.
func (e *AnalogEvaluator) seriesSlope(run dataset.Run) (Measurement, bool) {
	var t, q []float64
	for _, h := range run.Heating {
		if finite(h.TimeS) && finite(h.EnergyQuanta) {
			t = append(t, h.TimeS)
			q = append(q, h.EnergyQuanta)
		}
	}
	if len(t) == 0 {
		return Measurement{}, false
	}
	m := undetermined(Analog, 0, "series-form heating table: no frequency axis")
	if len(t) >= e.config.MinSeriesLen {
		m.Diagnostic = stats.Slope(t, q)
	}
	return m, true
}

func offsetRSS(g, gBg []float64, kappa float64) float64 {
	var s float64
	for i := range g {
		d := g[i] - (gBg[i] + kappa)
		s += d * d
	}
	return s
}

// #endregion analog

func spread(x []float64) bool {
	for _, v := range x {
		if v != x[0] {
			return true
		}
	}
	return false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
