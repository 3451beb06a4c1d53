package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/danielpatrickdp/flyby-triad/internal/gate"
	"github.com/danielpatrickdp/flyby-triad/internal/triad"
)

// #region table
var levelColors = map[gate.Level]*color.Color{
	gate.LevelOK:           color.New(color.FgGreen),
	gate.LevelWarn:         color.New(color.FgYellow),
	gate.LevelFail:         color.New(color.FgRed, color.Bold),
	gate.LevelUndetermined: color.New(color.FgHiBlack),
}

// PrintTable writes a fixed-width console table of results. Colour follows
// fatih/color's global NoColor switch.
func PrintTable(w io.Writer, results []triad.Result) {
	fmt.Fprintf(w, "%-10s %-10s %12s %10s %12s %10s %12s %10s  %s\n",
		"Trap", "Run", "A stat", "A p", "D stat", "D p", "M stat", "M p", "Decision")
	fmt.Fprintf(w, "%-10s+%-10s+%12s+%10s+%12s+%10s+%12s+%10s+-%s\n",
		"----------", "----------", "------------", "----------", "------------", "----------", "------------", "----------", "------------")
	for _, r := range results {
		fmt.Fprintf(w, "%-10s %-10s %12.4g %10.3g %12.4g %10.3g %12.4g %10.3g  %s\n",
			r.TrapID, r.RunID, r.AStat, r.AP, r.DStat, r.DP, r.MStat, r.MP, paint(r.Decision))
	}
}

// PrintSummary writes the per-trap rollup.
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\nSummary: %d runs, %d flags | %s %d  %s %d  %s %d  %s %d\n",
		s.NRuns, s.NFlags,
		paint(gate.LevelOK), s.Decisions[gate.LevelOK],
		paint(gate.LevelWarn), s.Decisions[gate.LevelWarn],
		paint(gate.LevelFail), s.Decisions[gate.LevelFail],
		paint(gate.LevelUndetermined), s.Decisions[gate.LevelUndetermined])
	for _, trap := range s.Traps() {
		t := s.ByTrap[trap]
		fmt.Fprintf(w, "  %-10s runs=%d b_A=%d b_D=%d b_M=%d fail=%d warn=%d\n",
			trap, t.Runs, t.BA, t.BD, t.BM, t.Fail, t.Warn)
	}
}

func paint(l gate.Level) string {
	c, ok := levelColors[l]
	if !ok {
		return string(l)
	}
	return c.Sprint(string(l))
}

// #endregion table
