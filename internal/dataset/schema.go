package dataset

import "github.com/danielpatrickdp/flyby-triad/internal/table"

// Source file names inside a data root.
const (
	HeatingFile = "heating.csv"
	TrialsFile  = "sb_trials.csv"
	EventsFile  = "events.csv"
)

var keyColumns = []table.Column{
	{Name: "trap_id", Kind: table.KindText, Relation: table.RelNonEmpty, Optional: true},
	{Name: "run_id", Kind: table.KindText, Relation: table.RelNonEmpty, Optional: true},
}

func withKeys(name string, cols ...table.Column) table.Schema {
	all := append([]table.Column{}, keyColumns...)
	return table.Schema{Name: name, Columns: append(all, cols...)}
}

// HeatingSchema is the rich heating form: rate versus mode frequency.
var HeatingSchema = withKeys("heating",
	table.Column{Name: "mode", Kind: table.KindText, Optional: true},
	table.Column{Name: "frequency_hz", Kind: table.KindFloat, Relation: table.RelPositive},
	table.Column{Name: "heating_rate_quanta_per_s", Kind: table.KindFloat, Relation: table.RelFinite},
	table.Column{Name: "heating_rate_err", Kind: table.KindFloat, Relation: table.RelNonNegative},
)

// HeatingSeriesSchema is the simple heating form: energy versus time.
var HeatingSeriesSchema = withKeys("heating_series",
	table.Column{Name: "time_s", Kind: table.KindFloat, Relation: table.RelFinite},
	table.Column{Name: "energy_quanta", Kind: table.KindFloat, Relation: table.RelFinite},
)

// TrialSchema describes binary trial outcomes.
var TrialSchema = withKeys("sb_trials",
	table.Column{Name: "sequence", Aliases: []string{"sequence_index", "trial_id"}, Kind: table.KindInt, Optional: true},
	table.Column{Name: "outcome", Kind: table.KindFloat, Relation: table.RelBinary},
	table.Column{Name: "t_rel_s", Kind: table.KindFloat, Relation: table.RelFinite},
)

// EventSchema describes event timestamps.
var EventSchema = withKeys("events",
	table.Column{Name: "t_s", Kind: table.KindFloat, Relation: table.RelFinite},
)
