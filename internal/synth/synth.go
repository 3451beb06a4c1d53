// Package synth generates seeded synthetic flyby tables: a null background
// with optional injected anomalies. The same seed always yields the same runs.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/danielpatrickdp/flyby-triad/internal/dataset"
	"github.com/danielpatrickdp/flyby-triad/internal/stats"
)

// #region generator
// Generator draws all randomness from one seeded source.
type Generator struct {
	src rand.Source
}

// New returns a generator seeded with seed.
func New(seed uint64) *Generator {
	return &Generator{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

// #endregion generator

// #region heating
// HeatingConfig describes a power-law heating curve rate = Amplitude *
// (f/f_min)^-Exponent + Bump sampled at Points log-spaced frequencies.
type HeatingConfig struct {
	LogFMin   float64 `yaml:"log_f_min" json:"log_f_min"`
	LogFMax   float64 `yaml:"log_f_max" json:"log_f_max"`
	Points    int     `yaml:"points" json:"points"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	Exponent  float64 `yaml:"exponent" json:"exponent"`
	Bump      float64 `yaml:"bump" json:"bump"`
	RelErr    float64 `yaml:"rel_err" json:"rel_err"`
	Noise     bool    `yaml:"noise" json:"noise"` // add Gaussian noise of one sigma
}

// DefaultHeatingConfig samples 1/f heating from 100 kHz to 10 MHz.
func DefaultHeatingConfig() HeatingConfig {
	return HeatingConfig{
		LogFMin:   5,
		LogFMax:   7,
		Points:    7,
		Amplitude: 1,
		Exponent:  1,
		RelErr:    0.01,
		Noise:     true,
	}
}

// Heating samples a heating curve.
func (g *Generator) Heating(c HeatingConfig) []dataset.HeatingSample {
	freqs := stats.LogSpace(c.LogFMin, c.LogFMax, c.Points)
	fmin := math.Pow(10, c.LogFMin)
	normal := distuv.UnitNormal
	normal.Src = g.src

	out := make([]dataset.HeatingSample, len(freqs))
	for i, f := range freqs {
		rate := c.Amplitude*math.Pow(f/fmin, -c.Exponent) + c.Bump
		sigma := c.RelErr * math.Abs(rate)
		if c.Noise {
			rate += sigma * normal.Rand()
		}
		out[i] = dataset.HeatingSample{
			Mode:         "axial",
			FrequencyHz:  f,
			Rate:         rate,
			RateErr:      sigma,
			TimeS:        math.NaN(),
			EnergyQuanta: math.NaN(),
		}
	}
	return out
}

// #endregion heating

// #region trials
// BernoulliTrials draws n independent outcomes with success probability p,
// spaced dt seconds apart.
func (g *Generator) BernoulliTrials(n int, p, dt float64) []dataset.TrialOutcome {
	b := distuv.Bernoulli{P: p, Src: g.src}
	out := make([]dataset.TrialOutcome, n)
	for i := range out {
		out[i] = dataset.TrialOutcome{Sequence: i, Outcome: b.Rand(), TRelS: float64(i) * dt}
	}
	return out
}

// AlternatingTrials returns 0,1,0,1,... spaced dt seconds apart.
func AlternatingTrials(n int, dt float64) []dataset.TrialOutcome {
	out := make([]dataset.TrialOutcome, n)
	for i := range out {
		out[i] = dataset.TrialOutcome{Sequence: i, Outcome: float64(i % 2), TRelS: float64(i) * dt}
	}
	return out
}

// #endregion trials

// #region events
// PoissonEvents draws a homogeneous Poisson process of the given rate on
// [0, duration).
func (g *Generator) PoissonEvents(rate, duration float64) []dataset.Event {
	if rate <= 0 || duration <= 0 {
		return nil
	}
	exp := distuv.Exponential{Rate: rate, Src: g.src}
	var out []dataset.Event
	for t := exp.Rand(); t < duration; t += exp.Rand() {
		out = append(out, dataset.Event{TS: t})
	}
	return out
}

// RegularEvents returns n events spaced step seconds apart starting at 0.
func RegularEvents(n int, step float64) []dataset.Event {
	out := make([]dataset.Event, n)
	for i := range out {
		out[i] = dataset.Event{TS: float64(i) * step}
	}
	return out
}

// Clustered adds, for every period-th base event, extra events at the given
// offsets from it. The result is sorted by time.
func Clustered(base []dataset.Event, period int, offsets ...float64) []dataset.Event {
	if period < 1 {
		period = 1
	}
	out := make([]dataset.Event, 0, len(base)+len(base)/period*len(offsets))
	for i, e := range base {
		out = append(out, e)
		if i%period != 0 {
			continue
		}
		for _, off := range offsets {
			out = append(out, dataset.Event{TS: e.TS + off})
		}
	}
	sortEvents(out)
	return out
}

func sortEvents(ev []dataset.Event) {
	sort.SliceStable(ev, func(i, j int) bool { return ev[i].TS < ev[j].TS })
}

// #endregion events

// #region scenario
// Anomaly names an injected departure from the null background.
type Anomaly string

const (
	// AnomalyBump adds a constant offset to the heating curve.
	AnomalyBump Anomaly = "bump"
	// AnomalyAlternating replaces the trials with a strictly alternating sequence.
	AnomalyAlternating Anomaly = "alternating"
	// AnomalyClustered adds periodic event clusters.
	AnomalyClustered Anomaly = "clustered"
)

// Scenario describes a whole synthetic data root.
type Scenario struct {
	Traps         int           `yaml:"traps" json:"traps"`
	RunsPerTrap   int           `yaml:"runs_per_trap" json:"runs_per_trap"`
	Heating       HeatingConfig `yaml:"heating" json:"heating"`
	Trials        int           `yaml:"trials" json:"trials"`
	TrialP        float64       `yaml:"trial_p" json:"trial_p"`
	TrialDtS      float64       `yaml:"trial_dt_s" json:"trial_dt_s"`
	EventRate     float64       `yaml:"event_rate" json:"event_rate"`
	DurationS     float64       `yaml:"duration_s" json:"duration_s"`
	Bump          float64       `yaml:"bump" json:"bump"`
	AnomalousTrap int           `yaml:"anomalous_trap" json:"anomalous_trap"` // 0-based; -1 for none
	Anomalies     []Anomaly     `yaml:"anomalies" json:"anomalies"`
}

// DefaultScenario is two traps of three runs each with a clean background.
func DefaultScenario() Scenario {
	return Scenario{
		Traps:         2,
		RunsPerTrap:   3,
		Heating:       DefaultHeatingConfig(),
		Trials:        200,
		TrialP:        0.3,
		TrialDtS:      0.5,
		EventRate:     2,
		DurationS:     200,
		Bump:          0.05,
		AnomalousTrap: -1,
	}
}

// TrapID formats the i-th trap identifier.
func TrapID(i int) string { return fmt.Sprintf("T%02d", i+1) }

// RunID formats the j-th run identifier.
func RunID(j int) string { return fmt.Sprintf("R%03d", j+1) }

// Runs generates every run of the scenario in key order.
func (g *Generator) Runs(s Scenario) []dataset.Run {
	var out []dataset.Run
	for i := 0; i < s.Traps; i++ {
		inject := map[Anomaly]bool{}
		if i == s.AnomalousTrap {
			for _, a := range s.Anomalies {
				inject[a] = true
			}
		}
		for j := 0; j < s.RunsPerTrap; j++ {
			out = append(out, g.run(s, dataset.RunKey{TrapID: TrapID(i), RunID: RunID(j)}, inject))
		}
	}
	return out
}

func (g *Generator) run(s Scenario, key dataset.RunKey, inject map[Anomaly]bool) dataset.Run {
	hc := s.Heating
	if inject[AnomalyBump] {
		hc.Bump = s.Bump
	}
	run := dataset.Run{Key: key, Heating: g.Heating(hc)}

	if inject[AnomalyAlternating] {
		run.Trials = AlternatingTrials(s.Trials, s.TrialDtS)
	} else {
		run.Trials = g.BernoulliTrials(s.Trials, s.TrialP, s.TrialDtS)
	}

	run.Events = g.PoissonEvents(s.EventRate, s.DurationS)
	if inject[AnomalyClustered] {
		// a burst every tenth event
		run.Events = Clustered(run.Events, 10, 0.01, 0.02, 0.03, 0.04)
	}
	return run
}

// #endregion scenario
