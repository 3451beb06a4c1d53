package gate

import (
	"fmt"
	"math"
	"strings"

	"github.com/danielpatrickdp/flyby-triad/internal/metric"
)

// #region gate
// Gate maps the three triad measurements of a run to a verdict.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Config returns the gate configuration.
func (g *Gate) Config() GateConfig {
	return g.config
}

// Evaluate classifies each measurement against its thresholds and aggregates
// to the worst determined level. Detection flags are computed independently
// from the p-values.
func (g *Gate) Evaluate(a, d, m metric.Measurement) Decision {
	var dec Decision
	var reasons []string

	for i, ms := range []metric.Measurement{a, d, m} {
		warn, fail := g.config.Thresholds.For(ms.Channel)
		md := MetricDecision{
			Channel:  ms.Channel,
			Level:    Classify(ms.Stat, warn, fail),
			Detected: Detected(ms.P, g.config.Alpha),
		}
		dec.Metrics[i] = md

		switch md.Level {
		case LevelWarn:
			reasons = append(reasons, fmt.Sprintf("%s stat %.4g >= warn %.4g", ms.Channel, ms.Stat, warn))
		case LevelFail:
			reasons = append(reasons, fmt.Sprintf("%s stat %.4g >= fail %.4g", ms.Channel, ms.Stat, fail))
		case LevelUndetermined:
			if ms.Note != "" {
				reasons = append(reasons, fmt.Sprintf("%s undetermined (%s)", ms.Channel, ms.Note))
			} else {
				reasons = append(reasons, fmt.Sprintf("%s undetermined", ms.Channel))
			}
		}
	}

	dec.Level = Worst(dec.Metrics[0].Level, dec.Metrics[1].Level, dec.Metrics[2].Level)
	if len(reasons) == 0 {
		dec.Reason = "all metrics below warn"
	} else {
		dec.Reason = strings.Join(reasons, "; ")
	}
	return dec
}

// #endregion gate

// #region helpers
// Classify places v against ascending (warn, fail) cutoffs: below warn is OK,
// from warn up to fail is WARN, at or above fail is FAIL. NaN is UNDETERMINED.
func Classify(v, warn, fail float64) Level {
	switch {
	case math.IsNaN(v):
		return LevelUndetermined
	case v >= fail:
		return LevelFail
	case v >= warn:
		return LevelWarn
	}
	return LevelOK
}

// Detected reports a finite p-value below alpha. NaN is not detected.
func Detected(p, alpha float64) bool {
	return !math.IsNaN(p) && p < alpha
}

// #endregion helpers
