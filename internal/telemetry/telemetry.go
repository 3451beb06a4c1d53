// Package telemetry exports screening counters in the Prometheus format.
//
// The counters live in a private registry so that several screenings in one
// process (or in tests) never share state. A batch job has no scrape
// endpoint, so the registry is written to a node-exporter textfile.
package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielpatrickdp/flyby-triad/internal/metric"
	"github.com/danielpatrickdp/flyby-triad/internal/triad"
)

// Recorder counts results as the engine produces them. It is safe for
// concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	// runsTotal counts screened runs by decision
	runsTotal *prometheus.CounterVec

	// metricLevels counts per-metric classifications
	metricLevels *prometheus.CounterVec

	// detections counts p < alpha flags per metric
	detections *prometheus.CounterVec

	// runErrors counts runs rejected by schema validation
	runErrors prometheus.Counter
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "triad_runs_total",
			Help: "Screened runs by aggregate decision",
		}, []string{"decision"}),
		metricLevels: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "triad_metric_level_total",
			Help: "Per-metric classifications by metric and level",
		}, []string{"metric", "level"}),
		detections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "triad_detections_total",
			Help: "Metrics with p below alpha",
		}, []string{"metric"}),
		runErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "triad_run_errors_total",
			Help: "Runs not evaluated because of schema violations",
		}),
	}
}

// Observe implements triad.Recorder.
func (r *Recorder) Observe(res triad.Result) {
	r.runsTotal.WithLabelValues(string(res.Decision)).Inc()
	if res.Error != "" {
		r.runErrors.Inc()
	}

	levels := []struct {
		ch       metric.Channel
		level    string
		detected bool
	}{
		{metric.Analog, string(res.ALevel), res.AFlag},
		{metric.Digital, string(res.DLevel), res.DFlag},
		{metric.Memory, string(res.MLevel), res.MFlag},
	}
	for _, l := range levels {
		r.metricLevels.WithLabelValues(string(l.ch), l.level).Inc()
		if l.detected {
			r.detections.WithLabelValues(string(l.ch)).Inc()
		}
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the current counters to path in the text exposition
// format. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
