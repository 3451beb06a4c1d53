package gate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/flyby-triad/internal/metric"
)

// #region level
// Level is the classification of one metric or of a whole run.
type Level string

const (
	LevelOK           Level = "OK"
	LevelWarn         Level = "WARN"
	LevelFail         Level = "FAIL"
	LevelUndetermined Level = "UNDETERMINED"
)

// severity orders determined levels; undetermined sorts below OK so that any
// determined metric outranks it.
func (l Level) severity() int {
	switch l {
	case LevelOK:
		return 1
	case LevelWarn:
		return 2
	case LevelFail:
		return 3
	}
	return 0
}

// Worst returns the most severe level; UNDETERMINED only when every input is.
func Worst(levels ...Level) Level {
	out := LevelUndetermined
	for _, l := range levels {
		if l.severity() > out.severity() {
			out = l
		}
	}
	return out
}

// #endregion level

// #region thresholds
// Thresholds are the warn/fail cutoffs applied to each metric's statistic.
// Fail must not be below warn.
type Thresholds struct {
	AWarn float64 `yaml:"a_warn" json:"a_warn" validate:"gte=0"`
	AFail float64 `yaml:"a_fail" json:"a_fail" validate:"gtefield=AWarn"`
	DWarn float64 `yaml:"d_warn" json:"d_warn" validate:"gte=0"`
	DFail float64 `yaml:"d_fail" json:"d_fail" validate:"gtefield=DWarn"`
	MWarn float64 `yaml:"m_warn" json:"m_warn" validate:"gte=0"`
	MFail float64 `yaml:"m_fail" json:"m_fail" validate:"gtefield=MWarn"`
}

// DefaultThresholds are chi² quantiles at the nominal degrees of freedom of
// each statistic (A: 1, D: 4, M: 10) for p = 0.05 (warn) and p = 0.005 (fail).
func DefaultThresholds() Thresholds {
	return Thresholds{
		AWarn: 3.841459, AFail: 7.879439,
		DWarn: 9.487729, DFail: 14.860259,
		MWarn: 18.307038, MFail: 25.188180,
	}
}

// StrictThresholds tighten the cutoffs to p = 0.10 (warn) and p = 0.01 (fail).
func StrictThresholds() Thresholds {
	return Thresholds{
		AWarn: 2.705543, AFail: 6.634897,
		DWarn: 7.779440, DFail: 13.276704,
		MWarn: 15.987179, MFail: 23.209251,
	}
}

var presets = map[string]func() Thresholds{
	"default": DefaultThresholds,
	"strict":  StrictThresholds,
}

// Preset returns a named threshold bundle.
func Preset(name string) (Thresholds, error) {
	p, ok := presets[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(presets))
		for n := range presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return Thresholds{}, fmt.Errorf("unknown threshold preset %q (have %s)", name, strings.Join(names, ", "))
	}
	return p(), nil
}

// For returns the (warn, fail) pair of a channel.
func (t Thresholds) For(ch metric.Channel) (warn, fail float64) {
	switch ch {
	case metric.Analog:
		return t.AWarn, t.AFail
	case metric.Digital:
		return t.DWarn, t.DFail
	case metric.Memory:
		return t.MWarn, t.MFail
	}
	return 0, 0
}

// #endregion thresholds

// #region gate-config
// GateConfig holds the thresholds and the significance level of the
// detection flag.
type GateConfig struct {
	Thresholds Thresholds
	Alpha      float64 // a metric is "detected" when p < Alpha
}

// DefaultGateConfig returns default thresholds with alpha = 0.005.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		Thresholds: DefaultThresholds(),
		Alpha:      5e-3,
	}
}

// #endregion gate-config

// #region gate-decision
// MetricDecision is the classification of one measurement.
type MetricDecision struct {
	Channel  metric.Channel
	Level    Level
	Detected bool
}

// Decision is the output of the gate for one run.
type Decision struct {
	Level   Level
	Metrics [3]MetricDecision // A, D, M
	Reason  string
}

// #endregion gate-decision
