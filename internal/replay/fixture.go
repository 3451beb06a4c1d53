package replay

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/danielpatrickdp/flyby-triad/internal/dataset"
	"github.com/danielpatrickdp/flyby-triad/internal/gate"
	"github.com/danielpatrickdp/flyby-triad/internal/triad"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Config          FixtureConfig           `json:"config"`
	Runs            []FixtureRun            `json:"runs"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureConfig selects the gate settings of a replay. Thresholds, when
// present, replace the preset.
type FixtureConfig struct {
	Preset     string           `json:"preset,omitempty"`
	Thresholds *gate.Thresholds `json:"thresholds,omitempty"`
	Alpha      float64          `json:"alpha,omitempty"`
}

// FixtureRun holds the three channels of one run as parallel columns.
// Without TRelS the trials sit TrialDtS apart (default 1 s).
type FixtureRun struct {
	TrapID      string    `json:"trap_id"`
	RunID       string    `json:"run_id"`
	FrequencyHz []float64 `json:"frequency_hz,omitempty"`
	Rate        []float64 `json:"heating_rate_quanta_per_s,omitempty"`
	RateErr     []float64 `json:"heating_rate_err,omitempty"`
	Outcomes    []float64 `json:"outcome,omitempty"`
	TRelS       []float64 `json:"t_rel_s,omitempty"`
	TrialDtS    float64   `json:"trial_dt_s,omitempty"`
	EventTS     []float64 `json:"t_s,omitempty"`
}

// FixtureExpectedResult captures the expected classification of one run.
// Empty per-metric levels are not checked.
type FixtureExpectedResult struct {
	TrapID   string `json:"trap_id"`
	RunID    string `json:"run_id"`
	Decision string `json:"decision"`
	ALevel   string `json:"a_level,omitempty"`
	DLevel   string `json:"d_level,omitempty"`
	MLevel   string `json:"m_level,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ToRun converts a FixtureRun to a domain Run.
func (fr *FixtureRun) ToRun() (dataset.Run, error) {
	run := dataset.Run{Key: dataset.RunKey{TrapID: fr.TrapID, RunID: fr.RunID}}

	n := len(fr.FrequencyHz)
	if len(fr.Rate) != n || len(fr.RateErr) != n {
		return dataset.Run{}, fmt.Errorf("run %s: heating columns differ in length (%d, %d, %d)",
			run.Key, n, len(fr.Rate), len(fr.RateErr))
	}
	for i := 0; i < n; i++ {
		run.Heating = append(run.Heating, dataset.HeatingSample{
			FrequencyHz:  fr.FrequencyHz[i],
			Rate:         fr.Rate[i],
			RateErr:      fr.RateErr[i],
			TimeS:        math.NaN(),
			EnergyQuanta: math.NaN(),
		})
	}

	if len(fr.TRelS) > 0 && len(fr.TRelS) != len(fr.Outcomes) {
		return dataset.Run{}, fmt.Errorf("run %s: %d outcomes but %d trial times",
			run.Key, len(fr.Outcomes), len(fr.TRelS))
	}
	dt := fr.TrialDtS
	if dt == 0 {
		dt = 1
	}
	for i, o := range fr.Outcomes {
		t := float64(i) * dt
		if len(fr.TRelS) > 0 {
			t = fr.TRelS[i]
		}
		run.Trials = append(run.Trials, dataset.TrialOutcome{Sequence: i, Outcome: o, TRelS: t})
	}

	for _, ts := range fr.EventTS {
		run.Events = append(run.Events, dataset.Event{TS: ts})
	}
	return run, nil
}

// FromRun is the inverse of ToRun for rich-form heating.
func FromRun(run dataset.Run) FixtureRun {
	fr := FixtureRun{TrapID: run.Key.TrapID, RunID: run.Key.RunID}
	for _, h := range run.Heating {
		fr.FrequencyHz = append(fr.FrequencyHz, h.FrequencyHz)
		fr.Rate = append(fr.Rate, h.Rate)
		fr.RateErr = append(fr.RateErr, h.RateErr)
	}
	for _, t := range run.Trials {
		fr.Outcomes = append(fr.Outcomes, t.Outcome)
		fr.TRelS = append(fr.TRelS, t.TRelS)
	}
	for _, e := range run.Events {
		fr.EventTS = append(fr.EventTS, e.TS)
	}
	return fr
}

// ToGateConfig resolves the fixture's gate settings.
func (fc *FixtureConfig) ToGateConfig() (gate.GateConfig, error) {
	gc := gate.DefaultGateConfig()
	if fc.Preset != "" {
		th, err := gate.Preset(fc.Preset)
		if err != nil {
			return gate.GateConfig{}, err
		}
		gc.Thresholds = th
	}
	if fc.Thresholds != nil {
		if err := fc.Thresholds.Validate(); err != nil {
			return gate.GateConfig{}, err
		}
		gc.Thresholds = *fc.Thresholds
	}
	if fc.Alpha != 0 {
		gc.Alpha = fc.Alpha
	}
	return gc, nil
}

// Record builds a fixture from runs and the results they produced, so that
// the current behaviour becomes a regression baseline.
func Record(description string, gc gate.GateConfig, runs []dataset.Run, results []triad.Result) *Fixture {
	th := gc.Thresholds
	f := &Fixture{
		Description: description,
		Config:      FixtureConfig{Thresholds: &th, Alpha: gc.Alpha},
	}
	for _, r := range runs {
		f.Runs = append(f.Runs, FromRun(r))
	}
	for _, r := range results {
		f.ExpectedResults = append(f.ExpectedResults, FixtureExpectedResult{
			TrapID:   r.TrapID,
			RunID:    r.RunID,
			Decision: string(r.Decision),
			ALevel:   string(r.ALevel),
			DLevel:   string(r.DLevel),
			MLevel:   string(r.MLevel),
		})
	}
	return f
}

// #endregion fixture-loader
