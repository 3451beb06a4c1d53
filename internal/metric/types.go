package metric

import (
	"math"

	"github.com/danielpatrickdp/flyby-triad/internal/dataset"
	"github.com/danielpatrickdp/flyby-triad/internal/stats"
)

// #region channel
// Channel names one leg of the triad.
type Channel string

const (
	Analog  Channel = "A"
	Digital Channel = "D"
	Memory  Channel = "M"
)

// #endregion channel

// #region measurement
// Measurement is one metric's outcome for one run. Stat and P are NaN when the
// metric is undetermined; Note then says why. Diagnostic is the physically
// scaled audit quantity of the channel (power-law exponent or heating slope,
// Fano factor, short-lag fraction) and is never used for the decision.
type Measurement struct {
	Channel    Channel
	Stat       float64
	P          float64
	N          int // rows that entered the statistic
	Diagnostic float64
	Note       string
}

// Undetermined reports whether no statistical judgment was possible.
func (m Measurement) Undetermined() bool {
	return math.IsNaN(m.Stat) || math.IsNaN(m.P)
}

func undetermined(ch Channel, n int, note string) Measurement {
	return Measurement{Channel: ch, Stat: math.NaN(), P: math.NaN(), N: n, Diagnostic: math.NaN(), Note: note}
}

// #endregion measurement

// #region evaluator
// Evaluator computes one channel's measurement from a run. Implementations
// read only their own channel and hold no mutable state, so one evaluator may
// serve many goroutines.
type Evaluator interface {
	Channel() Channel
	Evaluate(run dataset.Run) Measurement
}

// #endregion evaluator

// #region configs
// DefaultMaxBins caps the windows or bins a run's time span may need. A single
// far-off timestamp would otherwise size the histogram.
const DefaultMaxBins = 1_000_000

// AnalogConfig tunes the background-plus-offset test.
type AnalogConfig struct {
	MinRows      int     `yaml:"min_rows" json:"min_rows"`
	KappaLoExp   float64 `yaml:"kappa_lo_exp" json:"kappa_lo_exp"`
	KappaHiExp   float64 `yaml:"kappa_hi_exp" json:"kappa_hi_exp"`
	KappaSteps   int     `yaml:"kappa_steps" json:"kappa_steps"`
	MinRelErr    float64 `yaml:"min_rel_err" json:"min_rel_err"`
	MinSeriesLen int     `yaml:"min_series_len" json:"min_series_len"`
}

// DefaultAnalogConfig returns the screening defaults.
func DefaultAnalogConfig() AnalogConfig {
	return AnalogConfig{
		MinRows:      4,
		KappaLoExp:   -6,
		KappaHiExp:   6,
		KappaSteps:   241,
		MinRelErr:    1e-6,
		MinSeriesLen: 2,
	}
}

// DigitalConfig tunes the dispersion and runs fusion test.
type DigitalConfig struct {
	MinRows    int     `yaml:"min_rows" json:"min_rows"`
	WindowS    float64 `yaml:"window_s" json:"window_s"`
	MinWindows int     `yaml:"min_windows" json:"min_windows"` // dispersion needs more windows than this
	MaxWindows int     `yaml:"max_windows" json:"max_windows"` // wider time spans drop the dispersion test
}

// DefaultDigitalConfig returns the screening defaults.
func DefaultDigitalConfig() DigitalConfig {
	return DigitalConfig{
		MinRows:    20,
		WindowS:    5.0,
		MinWindows: 5,
		MaxWindows: DefaultMaxBins,
	}
}

// MemoryConfig tunes the binned portmanteau test.
type MemoryConfig struct {
	MinEvents int                        `yaml:"min_events" json:"min_events"`
	BinS      float64                    `yaml:"bin_s" json:"bin_s"`
	Lags      int                        `yaml:"lags" json:"lags"`
	Weighting stats.PortmanteauWeighting `yaml:"weighting" json:"weighting"`
	ShortLagS float64                    `yaml:"short_lag_s" json:"short_lag_s"`
	MaxBins   int                        `yaml:"max_bins" json:"max_bins"`
}

// DefaultMemoryConfig returns the screening defaults.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		MinEvents: 10,
		BinS:      5.0,
		Lags:      10,
		Weighting: stats.WeightByLag,
		ShortLagS: 1.0,
		MaxBins:   DefaultMaxBins,
	}
}

// #endregion configs
