package triad

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/flyby-triad/internal/dataset"
	"github.com/danielpatrickdp/flyby-triad/internal/gate"
	"github.com/danielpatrickdp/flyby-triad/internal/metric"
)

// #region engine
// Engine evaluates runs through the A, D and M metrics and the gate.
type Engine struct {
	analog   metric.Evaluator
	digital  metric.Evaluator
	memory   metric.Evaluator
	gate     *gate.Gate
	workers  int
	logger   *slog.Logger
	recorder Recorder
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRecorder attaches a result observer.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// NewEngine builds an engine from config.
func NewEngine(config Config, opts ...Option) *Engine {
	e := &Engine{
		analog:  metric.NewAnalog(config.Analog),
		digital: metric.NewDigital(config.Digital),
		memory:  metric.NewMemory(config.Memory),
		gate:    gate.NewGate(config.Gate),
		workers: config.Workers,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if e.workers < 1 {
		e.workers = 1
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// #endregion engine

// #region evaluate
// Evaluate screens every run on a bounded worker pool. Results come back in
// input order. A run with schema violations yields an UNDETERMINED result with
// Error set and does not stop the batch. Cancelling ctx stops scheduling new
// runs and returns the context error.
func (e *Engine) Evaluate(ctx context.Context, runs []dataset.Run) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(runs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range runs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.EvaluateRun(runs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	counts := map[gate.Level]int{}
	for _, r := range results {
		counts[r.Decision]++
	}
	e.logger.Info("triad screening complete",
		"runs", len(results),
		"ok", counts[gate.LevelOK],
		"warn", counts[gate.LevelWarn],
		"fail", counts[gate.LevelFail],
		"undetermined", counts[gate.LevelUndetermined],
		"workers", e.workers,
		"elapsed", time.Since(start),
	)
	return results, nil
}

// EvaluateRun screens a single run.
func (e *Engine) EvaluateRun(run dataset.Run) Result {
	if len(run.Violations) > 0 {
		r := aborted(run)
		e.logger.Warn("run not evaluated", "run", run.Key.String(), "error", r.Error)
		e.observe(r)
		return r
	}

	a := e.analog.Evaluate(run)
	d := e.digital.Evaluate(run)
	m := e.memory.Evaluate(run)
	dec := e.gate.Evaluate(a, d, m)

	r := Result{
		TrapID: run.Key.TrapID,
		RunID:  run.Key.RunID,

		AStat:  a.Stat,
		AP:     a.P,
		AFlag:  dec.Metrics[0].Detected,
		ALevel: dec.Metrics[0].Level,
		ASlope: a.Diagnostic,

		DStat:  d.Stat,
		DP:     d.P,
		DFlag:  dec.Metrics[1].Detected,
		DLevel: dec.Metrics[1].Level,
		DFano:  d.Diagnostic,

		MStat:     m.Stat,
		MP:        m.P,
		MFlag:     dec.Metrics[2].Detected,
		MLevel:    dec.Metrics[2].Level,
		MShortLag: m.Diagnostic,

		Decision: dec.Level,
		Reason:   dec.Reason,
	}
	e.logger.Debug("run screened",
		"run", run.Key.String(),
		"decision", r.Decision,
		"a_stat", r.AStat, "d_stat", r.DStat, "m_stat", r.MStat,
		"flags", r.FlagCount(),
	)
	e.observe(r)
	return r
}

func (e *Engine) observe(r Result) {
	if e.recorder != nil {
		e.recorder.Observe(r)
	}
}

// aborted builds the record of a run whose rows failed schema validation.
func aborted(run dataset.Run) Result {
	nan := math.NaN()
	msg := run.Violations[0].Error()
	if n := len(run.Violations); n > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, n-1)
	}
	return Result{
		TrapID:    run.Key.TrapID,
		RunID:     run.Key.RunID,
		AStat:     nan,
		AP:        nan,
		ALevel:    gate.LevelUndetermined,
		ASlope:    nan,
		DStat:     nan,
		DP:        nan,
		DLevel:    gate.LevelUndetermined,
		DFano:     nan,
		MStat:     nan,
		MP:        nan,
		MLevel:    gate.LevelUndetermined,
		MShortLag: nan,
		Decision:  gate.LevelUndetermined,
		Reason:    "schema violation",
		Error:     msg,
	}
}

// #endregion evaluate

// #region pure
// Evaluate screens runs sequentially with default metric configs and the
// given thresholds. It is the plain (tables, thresholds) → results form of the
// engine.
func Evaluate(runs []dataset.Run, thresholds gate.Thresholds) []Result {
	config := DefaultConfig()
	config.Gate.Thresholds = thresholds
	e := NewEngine(config)
	out := make([]Result, len(runs))
	for i, r := range runs {
		out[i] = e.EvaluateRun(r)
	}
	return out
}

// #endregion pure
