package dataset

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/danielpatrickdp/flyby-triad/internal/table"
)

// #region dataset
// Dataset holds the three validated channel tables of one data root.
type Dataset struct {
	Heating *table.Table
	Trials  *table.Table
	Events  *table.Table
}

// LoadDir reads heating.csv, sb_trials.csv and events.csv from dir. A missing
// file fails with table.ErrSourceNotFound. A table whose header lacks a
// required column loads as an empty table holding that violation, which then
// aborts every run. Row-level violations are kept on the tables and attributed
// to runs.
func LoadDir(dir string) (*Dataset, error) {
	heating, err := load(dir, HeatingFile, HeatingSchema, HeatingSeriesSchema)
	if err != nil {
		return nil, fmt.Errorf("load heating: %w", err)
	}
	trials, err := load(dir, TrialsFile, TrialSchema)
	if err != nil {
		return nil, fmt.Errorf("load trials: %w", err)
	}
	events, err := load(dir, EventsFile, EventSchema)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	return &Dataset{Heating: heating, Trials: trials, Events: events}, nil
}

func load(dir, name string, schemas ...table.Schema) (*table.Table, error) {
	t, err := table.ReadFile(filepath.Join(dir, name), schemas...)
	var sv *table.SchemaViolation
	if errors.As(err, &sv) && sv.Row < 0 {
		return table.Unusable(sv), nil
	}
	return t, err
}

// TableViolations returns the header-level violations of tables that could
// not be used at all.
func (d *Dataset) TableViolations() []*table.SchemaViolation {
	var out []*table.SchemaViolation
	for _, t := range []*table.Table{d.Heating, d.Trials, d.Events} {
		if t == nil {
			continue
		}
		for _, v := range t.Violations {
			if v.Row < 0 {
				out = append(out, v)
			}
		}
	}
	return out
}

// #endregion dataset

// #region runs
// Runs outer-joins the three tables on RunKey, sorted by trap then run. A run
// absent from a table gets an empty channel.
func (d *Dataset) Runs() []Run {
	byKey := map[RunKey]*Run{}
	get := func(k RunKey) *Run {
		r, ok := byKey[k]
		if !ok {
			r = &Run{Key: k}
			byKey[k] = r
		}
		return r
	}

	for i, k := range keys(d.Heating) {
		get(k).Heating = append(get(k).Heating, heatingRow(d.Heating, i))
	}
	for i, k := range keys(d.Trials) {
		get(k).Trials = append(get(k).Trials, trialRow(d.Trials, i))
	}
	for i, k := range keys(d.Events) {
		get(k).Events = append(get(k).Events, Event{TS: d.Events.Floats("t_s")[i]})
	}

	// Header violations and violations whose key cannot be read taint every
	// run.
	var orphans []*table.SchemaViolation
	for _, t := range []*table.Table{d.Heating, d.Trials, d.Events} {
		if t == nil {
			continue
		}
		for _, v := range t.Violations {
			if v.Row < 0 {
				orphans = append(orphans, v)
				continue
			}
			k, ok := violationKey(t, v)
			if !ok {
				orphans = append(orphans, v)
				continue
			}
			get(k).Violations = append(get(k).Violations, v)
		}
	}

	out := make([]Run, 0, len(byKey))
	for _, r := range byKey {
		r.Violations = append(r.Violations, orphans...)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

func keys(t *table.Table) []RunKey {
	if t == nil {
		return nil
	}
	out := make([]RunKey, t.Len())
	traps, runs := t.Texts("trap_id"), t.Texts("run_id")
	for i := range out {
		out[i] = UntaggedKey
		if traps != nil {
			out[i].TrapID = traps[i]
		}
		if runs != nil {
			out[i].RunID = runs[i]
		}
	}
	return out
}

func violationKey(t *table.Table, v *table.SchemaViolation) (RunKey, bool) {
	k := UntaggedKey
	if t.Has("trap_id") {
		if v.TrapID == "" {
			return RunKey{}, false
		}
		k.TrapID = v.TrapID
	}
	if t.Has("run_id") {
		if v.RunID == "" {
			return RunKey{}, false
		}
		k.RunID = v.RunID
	}
	return k, true
}

func heatingRow(t *table.Table, i int) HeatingSample {
	s := HeatingSample{
		FrequencyHz:  at(t.Floats("frequency_hz"), i),
		Rate:         at(t.Floats("heating_rate_quanta_per_s"), i),
		RateErr:      at(t.Floats("heating_rate_err"), i),
		TimeS:        at(t.Floats("time_s"), i),
		EnergyQuanta: at(t.Floats("energy_quanta"), i),
	}
	if modes := t.Texts("mode"); modes != nil {
		s.Mode = modes[i]
	}
	return s
}

func trialRow(t *table.Table, i int) TrialOutcome {
	o := TrialOutcome{
		Sequence: -1,
		Outcome:  at(t.Floats("outcome"), i),
		TRelS:    at(t.Floats("t_rel_s"), i),
	}
	if seq := t.Ints("sequence"); seq != nil {
		o.Sequence = seq[i]
	}
	return o
}

func at(col []float64, i int) float64 {
	if col == nil {
		return math.NaN()
	}
	return col[i]
}

// #endregion runs
