package replay

import (
	"fmt"

	"github.com/danielpatrickdp/flyby-triad/internal/dataset"
	"github.com/danielpatrickdp/flyby-triad/internal/gate"
	"github.com/danielpatrickdp/flyby-triad/internal/triad"
)

// #region types

// Mismatch is one difference between an expected and an actual result.
type Mismatch struct {
	TrapID string
	RunID  string
	Field  string
	Want   string
	Got    string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s/%s %s: want %s, got %s", m.TrapID, m.RunID, m.Field, m.Want, m.Got)
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalRuns    int
	OK           int
	Warn         int
	Fail         int
	Undetermined int
	Flags        int
	Mismatches   []Mismatch
}

// Passed reports whether every expectation held.
func (s ReplaySummary) Passed() bool {
	return len(s.Mismatches) == 0
}

// #endregion types

// #region replay

// Replay evaluates every fixture run in order with the fixture's gate
// settings and default metric configs. Operates entirely in-memory.
func Replay(f *Fixture) ([]triad.Result, error) {
	gc, err := f.Config.ToGateConfig()
	if err != nil {
		return nil, fmt.Errorf("fixture config: %w", err)
	}
	runs := make([]dataset.Run, len(f.Runs))
	for i := range f.Runs {
		run, err := f.Runs[i].ToRun()
		if err != nil {
			return nil, err
		}
		runs[i] = run
	}

	config := triad.DefaultConfig()
	config.Gate = gc
	engine := triad.NewEngine(config)

	results := make([]triad.Result, len(runs))
	for i, r := range runs {
		results[i] = engine.EvaluateRun(r)
	}
	return results, nil
}

// Compare checks results against the fixture's expectations, matching by
// (trap_id, run_id).
func Compare(expected []FixtureExpectedResult, results []triad.Result) []Mismatch {
	byKey := make(map[dataset.RunKey]triad.Result, len(results))
	for _, r := range results {
		byKey[r.Key()] = r
	}

	var out []Mismatch
	for _, e := range expected {
		key := dataset.RunKey{TrapID: e.TrapID, RunID: e.RunID}
		r, ok := byKey[key]
		if !ok {
			out = append(out, Mismatch{TrapID: e.TrapID, RunID: e.RunID, Field: "run", Want: "present", Got: "missing"})
			continue
		}
		checks := []struct {
			field string
			want  string
			got   gate.Level
		}{
			{"decision", e.Decision, r.Decision},
			{"a_level", e.ALevel, r.ALevel},
			{"d_level", e.DLevel, r.DLevel},
			{"m_level", e.MLevel, r.MLevel},
		}
		for _, c := range checks {
			if c.want != "" && c.want != string(c.got) {
				out = append(out, Mismatch{TrapID: e.TrapID, RunID: e.RunID, Field: c.field, Want: c.want, Got: string(c.got)})
			}
		}
	}
	return out
}

// Summarize computes aggregate stats from replay results and the mismatches
// against the fixture.
func Summarize(f *Fixture, results []triad.Result) ReplaySummary {
	s := ReplaySummary{TotalRuns: len(results)}
	for _, r := range results {
		switch r.Decision {
		case gate.LevelOK:
			s.OK++
		case gate.LevelWarn:
			s.Warn++
		case gate.LevelFail:
			s.Fail++
		default:
			s.Undetermined++
		}
		s.Flags += r.FlagCount()
	}
	s.Mismatches = Compare(f.ExpectedResults, results)
	return s
}

// #endregion replay
