package telemetry

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/flyby-triad/internal/gate"
	"github.com/danielpatrickdp/flyby-triad/internal/triad"
)

func failing() triad.Result {
	return triad.Result{
		TrapID: "T1", RunID: "R1",
		ALevel: gate.LevelOK,
		DLevel: gate.LevelFail, DFlag: true,
		MLevel: gate.LevelWarn,
		Decision: gate.LevelFail,
	}
}

func TestObserveCounts(t *testing.T) {
	r := NewRecorder()
	r.Observe(failing())
	r.Observe(triad.Result{
		ALevel: gate.LevelUndetermined, DLevel: gate.LevelUndetermined, MLevel: gate.LevelUndetermined,
		Decision: gate.LevelUndetermined, Error: "bad row",
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("FAIL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("UNDETERMINED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.detections.WithLabelValues("D")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.detections.WithLabelValues("A")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metricLevels.WithLabelValues("M", "WARN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runErrors))
}

func TestObserveConcurrent(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Observe(failing())
		}()
	}
	wg.Wait()
	assert.Equal(t, 50.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("FAIL")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.Observe(failing())
	assert.Equal(t, 0.0, testutil.ToFloat64(b.runsTotal.WithLabelValues("FAIL")))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Observe(failing())

	path := filepath.Join(t.TempDir(), "triad.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `triad_runs_total{decision="FAIL"} 1`)
	assert.Contains(t, string(data), `triad_detections_total{metric="D"} 1`)
}
