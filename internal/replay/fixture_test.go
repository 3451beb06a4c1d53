package replay

import (
	"path/filepath"
	"testing"
)

// #region fixture-tests

// runFixture loads a fixture, replays it and reports every mismatch. These
// are the regression baselines: if a metric or the gate drifts, they catch it.
func runFixture(t *testing.T, name string) ReplaySummary {
	t.Helper()
	f, err := LoadFixture(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	results, err := Replay(f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(results) != len(f.Runs) {
		t.Fatalf("expected %d results, got %d", len(f.Runs), len(results))
	}
	s := Summarize(f, results)
	for _, m := range s.Mismatches {
		t.Errorf("%s", m)
	}
	return s
}

func TestFixture_Baseline(t *testing.T) {
	s := runFixture(t, "baseline.json")
	if s.OK != 2 || s.Undetermined != 1 {
		t.Errorf("expected 2 OK / 1 UNDETERMINED, got %+v", s)
	}
	if s.Flags != 0 {
		t.Errorf("expected no flags on the null background, got %d", s.Flags)
	}
}

func TestFixture_Anomalies(t *testing.T) {
	s := runFixture(t, "anomalies.json")
	if s.Fail != 3 {
		t.Errorf("expected 3 FAIL, got %+v", s)
	}
	if s.Flags != 3 {
		t.Errorf("expected one flag per anomalous run, got %d", s.Flags)
	}
}

func TestFixture_ThresholdsOverride(t *testing.T) {
	s := runFixture(t, "thresholds_override.json")
	if s.Warn != 1 {
		t.Errorf("expected 1 WARN, got %+v", s)
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := LoadFixture(filepath.Join("testdata", "nope.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

// #endregion fixture-tests
