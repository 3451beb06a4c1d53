package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/flyby-triad/internal/table"
)

func writeRoot(t *testing.T, heating, trials, events string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{HeatingFile: heating, TrialsFile: trials, EventsFile: events}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

const (
	heatingCSV = "trap_id,run_id,mode,frequency_hz,heating_rate_quanta_per_s,heating_rate_err\n" +
		"T1,R1,axial,1e5,1.0,0.01\n" +
		"T1,R1,axial,1e6,0.1,0.001\n" +
		"T2,R1,axial,1e5,2.0,0.02\n"
	trialsCSV = "trap_id,run_id,trial_id,outcome,t_rel_s\n" +
		"T1,R1,0,0,0.0\n" +
		"T1,R1,1,1,0.5\n" +
		"T1,R2,0,1,0.0\n"
	eventsCSV = "trap_id,run_id,t_s\n" +
		"T1,R2,0.1\n" +
		"T3,R9,4.2\n"
)

func TestLoadDirOuterJoin(t *testing.T) {
	ds, err := LoadDir(writeRoot(t, heatingCSV, trialsCSV, eventsCSV))
	require.NoError(t, err)

	runs := ds.Runs()
	var keys []string
	for _, r := range runs {
		keys = append(keys, r.Key.String())
	}
	assert.Equal(t, []string{"T1/R1", "T1/R2", "T2/R1", "T3/R9"}, keys)

	r := runs[0]
	require.Len(t, r.Heating, 2)
	assert.Equal(t, "axial", r.Heating[0].Mode)
	assert.Equal(t, 1e6, r.Heating[1].FrequencyHz)
	assert.True(t, math.IsNaN(r.Heating[0].TimeS))
	require.Len(t, r.Trials, 2)
	assert.Equal(t, 1, r.Trials[1].Sequence)
	assert.Equal(t, 0.5, r.Trials[1].TRelS)
	assert.Empty(t, r.Events)

	assert.Empty(t, runs[1].Heating)
	assert.Equal(t, []Event{{TS: 0.1}}, runs[1].Events)
	assert.Empty(t, runs[3].Trials)
}

func TestLoadDirSeriesHeating(t *testing.T) {
	ds, err := LoadDir(writeRoot(t, "time_s,energy_quanta\n0,1\n1,2\n", "outcome,t_rel_s\n", "t_s\n"))
	require.NoError(t, err)
	assert.Equal(t, "heating_series", ds.Heating.Schema.Name)

	runs := ds.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, UntaggedKey, runs[0].Key)
	require.Len(t, runs[0].Heating, 2)
	assert.Equal(t, 2.0, runs[0].Heating[1].EnergyQuanta)
	assert.True(t, math.IsNaN(runs[0].Heating[1].FrequencyHz))
}

func TestLoadDirMissingFile(t *testing.T) {
	dir := writeRoot(t, heatingCSV, trialsCSV, eventsCSV)
	require.NoError(t, os.Remove(filepath.Join(dir, EventsFile)))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, table.ErrSourceNotFound)
	assert.Contains(t, err.Error(), "load events")
}

func TestLoadDirMissingColumnAbortsEveryRun(t *testing.T) {
	heating := "trap_id,run_id,frequency_hz,heating_rate_quanta_per_s\nT1,R1,1e5,1.0\n"
	ds, err := LoadDir(writeRoot(t, heating, trialsCSV, eventsCSV))
	require.NoError(t, err)

	assert.Equal(t, 0, ds.Heating.Len())
	tv := ds.TableViolations()
	require.Len(t, tv, 1)
	assert.Equal(t, "heating_rate_err", tv[0].Column)
	assert.Equal(t, -1, tv[0].Row)

	runs := ds.Runs()
	require.Len(t, runs, 3, "runs still come from the other tables")
	for _, r := range runs {
		require.Len(t, r.Violations, 1, "run %s", r.Key)
		assert.Same(t, tv[0], r.Violations[0])
		assert.Empty(t, r.Heating)
	}
}

func TestLoadDirEmptyTableHasNoHeader(t *testing.T) {
	ds, err := LoadDir(writeRoot(t, heatingCSV, trialsCSV, ""))
	require.NoError(t, err)
	tv := ds.TableViolations()
	require.Len(t, tv, 1)
	assert.Contains(t, tv[0].Reason, "missing header")
	assert.Equal(t, EventsFile, tv[0].Source)
}

func TestRunsAttributeViolations(t *testing.T) {
	trials := trialsCSV + "T2,R1,0,7,0.0\n"
	ds, err := LoadDir(writeRoot(t, heatingCSV, trials, eventsCSV))
	require.NoError(t, err)

	for _, r := range ds.Runs() {
		if r.Key == (RunKey{TrapID: "T2", RunID: "R1"}) {
			require.Len(t, r.Violations, 1)
			assert.Equal(t, "outcome", r.Violations[0].Column)
			assert.Len(t, r.Heating, 1, "valid rows of the run are still attached")
			continue
		}
		assert.Empty(t, r.Violations, "run %s", r.Key)
	}
}

func TestRunsOrphanViolationTaintsAll(t *testing.T) {
	events := eventsCSV + ",R1,0.3\n"
	ds, err := LoadDir(writeRoot(t, heatingCSV, trialsCSV, events))
	require.NoError(t, err)

	for _, r := range ds.Runs() {
		require.Len(t, r.Violations, 1, "run %s", r.Key)
		assert.Equal(t, "trap_id", r.Violations[0].Column)
	}
}

func TestWriteDirRoundTrip(t *testing.T) {
	runs := []Run{
		{
			Key:     RunKey{TrapID: "T1", RunID: "R1"},
			Heating: []HeatingSample{{Mode: "axial", FrequencyHz: 1e5, Rate: 0.1234567890123, RateErr: 1e-3}},
			Trials:  []TrialOutcome{{Sequence: 0, Outcome: 1, TRelS: 0.25}},
			Events:  []Event{{TS: 1.0 / 3}},
		},
		{
			Key:    RunKey{TrapID: "T1", RunID: "R2"},
			Events: []Event{{TS: 2}},
		},
	}
	dir := t.TempDir()
	require.NoError(t, WriteDir(dir, runs))

	ds, err := LoadDir(dir)
	require.NoError(t, err)
	got := ds.Runs()
	require.Len(t, got, 2)
	assert.Equal(t, 0.1234567890123, got[0].Heating[0].Rate)
	assert.Equal(t, 1.0/3, got[0].Events[0].TS)
	assert.Equal(t, 0, got[0].Trials[0].Sequence)
	assert.Equal(t, RunKey{TrapID: "T1", RunID: "R2"}, got[1].Key)
}

func TestRunKeyLess(t *testing.T) {
	a := RunKey{TrapID: "T1", RunID: "R2"}
	b := RunKey{TrapID: "T2", RunID: "R1"}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, RunKey{TrapID: "T1", RunID: "R1"}.Less(a))
}
