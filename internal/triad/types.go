package triad

import (
	"github.com/danielpatrickdp/flyby-triad/internal/dataset"
	"github.com/danielpatrickdp/flyby-triad/internal/gate"
	"github.com/danielpatrickdp/flyby-triad/internal/metric"
)

// #region result
// Result is the screening record of one run. It is built once by the engine
// and passed by value afterwards.
type Result struct {
	TrapID string
	RunID  string

	AStat  float64
	AP     float64
	AFlag  bool
	ALevel gate.Level
	ASlope float64 // fitted power-law exponent, or dE/dt for series-form tables

	DStat  float64
	DP     float64
	DFlag  bool
	DLevel gate.Level
	DFano  float64

	MStat     float64
	MP        float64
	MFlag     bool
	MLevel    gate.Level
	MShortLag float64

	Decision gate.Level
	Reason   string
	Error    string // set when the run was not evaluated
}

// Key returns the run key of the result.
func (r Result) Key() dataset.RunKey {
	return dataset.RunKey{TrapID: r.TrapID, RunID: r.RunID}
}

// FlagCount returns how many of the three detection flags are set.
func (r Result) FlagCount() int {
	n := 0
	for _, f := range []bool{r.AFlag, r.DFlag, r.MFlag} {
		if f {
			n++
		}
	}
	return n
}

// #endregion result

// #region config
// Config bundles the metric and gate configuration of one analysis.
type Config struct {
	Analog  metric.AnalogConfig
	Digital metric.DigitalConfig
	Memory  metric.MemoryConfig
	Gate    gate.GateConfig
	Workers int
}

// DefaultConfig returns the default metric configs, default thresholds and
// four workers.
func DefaultConfig() Config {
	return Config{
		Analog:  metric.DefaultAnalogConfig(),
		Digital: metric.DefaultDigitalConfig(),
		Memory:  metric.DefaultMemoryConfig(),
		Gate:    gate.DefaultGateConfig(),
		Workers: 4,
	}
}

// #endregion config

// #region recorder
// Recorder observes finished results, e.g. to export counters.
type Recorder interface {
	Observe(r Result)
}

// #endregion recorder
