package dataset

import (
	"github.com/danielpatrickdp/flyby-triad/internal/table"
)

// #region run-key
// RunKey identifies one experimental trial.
type RunKey struct {
	TrapID string `json:"trap_id"`
	RunID  string `json:"run_id"`
}

// UntaggedKey is assigned to rows of tables that carry no trap/run columns.
var UntaggedKey = RunKey{TrapID: "untagged", RunID: "untagged"}

func (k RunKey) String() string {
	return k.TrapID + "/" + k.RunID
}

// Less orders keys by trap, then run.
func (k RunKey) Less(o RunKey) bool {
	if k.TrapID != o.TrapID {
		return k.TrapID < o.TrapID
	}
	return k.RunID < o.RunID
}

// #endregion run-key

// #region rows
// HeatingSample is one heating measurement. Rich-form rows carry frequency,
// rate and error; series-form rows carry time and energy. Unused fields are NaN.
type HeatingSample struct {
	Mode         string  `json:"mode,omitempty"`
	FrequencyHz  float64 `json:"frequency_hz"`
	Rate         float64 `json:"heating_rate_quanta_per_s"`
	RateErr      float64 `json:"heating_rate_err"`
	TimeS        float64 `json:"time_s"`
	EnergyQuanta float64 `json:"energy_quanta"`
}

// TrialOutcome is one binary trial. Sequence is -1 when the table has none.
type TrialOutcome struct {
	Sequence int     `json:"sequence"`
	Outcome  float64 `json:"outcome"` // 0 or 1; NaN when blank
	TRelS    float64 `json:"t_rel_s"`
}

// Event is one detector event timestamp.
type Event struct {
	TS float64 `json:"t_s"`
}

// #endregion rows

// #region run
// Run groups the three channels of one (trap, run) pair. Violations holds the
// schema violations attributed to this run; a run with violations is not
// evaluated.
type Run struct {
	Key        RunKey
	Heating    []HeatingSample
	Trials     []TrialOutcome
	Events     []Event
	Violations []*table.SchemaViolation
}

// #endregion run
