// Package report turns triad results into the run table and the per-trap
// rollup.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/danielpatrickdp/flyby-triad/internal/gate"
	"github.com/danielpatrickdp/flyby-triad/internal/triad"
)

// Output file names.
const (
	SummaryFile = "triad_summary.csv"
	ReportFile  = "triad_report.json"
)

// #region summary
// TrapSummary counts flags and decisions of one trap.
type TrapSummary struct {
	BA           int `json:"b_A"`
	BD           int `json:"b_D"`
	BM           int `json:"b_M"`
	Runs         int `json:"runs"`
	OK           int `json:"ok"`
	Warn         int `json:"warn"`
	Fail         int `json:"fail"`
	Undetermined int `json:"undetermined"`
	Errors       int `json:"errors"`
}

// Summary is the aggregated report of one analysis.
type Summary struct {
	NRuns     int                    `json:"n_runs"`
	NFlags    int                    `json:"n_flags"`
	Decisions map[gate.Level]int     `json:"decisions"`
	ByTrap    map[string]TrapSummary `json:"by_trap"`
}

// Build rolls results up per trap. NaN p-values never raise a flag, so they
// count as not detected.
func Build(results []triad.Result) Summary {
	s := Summary{
		NRuns: len(results),
		Decisions: map[gate.Level]int{
			gate.LevelOK:           0,
			gate.LevelWarn:         0,
			gate.LevelFail:         0,
			gate.LevelUndetermined: 0,
		},
		ByTrap: map[string]TrapSummary{},
	}
	for _, r := range results {
		t := s.ByTrap[r.TrapID]
		t.Runs++
		if r.AFlag {
			t.BA++
		}
		if r.DFlag {
			t.BD++
		}
		if r.MFlag {
			t.BM++
		}
		switch r.Decision {
		case gate.LevelOK:
			t.OK++
		case gate.LevelWarn:
			t.Warn++
		case gate.LevelFail:
			t.Fail++
		default:
			t.Undetermined++
		}
		if r.Error != "" {
			t.Errors++
		}
		s.ByTrap[r.TrapID] = t
		s.NFlags += r.FlagCount()
		s.Decisions[r.Decision]++
	}
	return s
}

// Traps returns the trap IDs of the summary in sorted order.
func (s Summary) Traps() []string {
	out := make([]string, 0, len(s.ByTrap))
	for k := range s.ByTrap {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// #endregion summary

// #region csv
// Columns is the header of the run table.
var Columns = []string{
	"trap_id", "run_id",
	"A_stat", "A_p", "b_A", "A_level", "A_slope",
	"D_stat", "D_p", "b_D", "D_level", "D_fano",
	"M_stat", "M_p", "b_M", "M_level", "M_short_lag",
	"decision", "reason", "error",
}

// WriteCSV writes one row per result. Floats use the shortest form that
// round-trips, so no precision is lost; NaN is written as "NaN".
func WriteCSV(w io.Writer, results []triad.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.TrapID, r.RunID,
			FormatFloat(r.AStat), FormatFloat(r.AP), flag(r.AFlag), string(r.ALevel), FormatFloat(r.ASlope),
			FormatFloat(r.DStat), FormatFloat(r.DP), flag(r.DFlag), string(r.DLevel), FormatFloat(r.DFano),
			FormatFloat(r.MStat), FormatFloat(r.MP), flag(r.MFlag), string(r.MLevel), FormatFloat(r.MShortLag),
			string(r.Decision), r.Reason, r.Error,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s/%s: %w", r.TrapID, r.RunID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatFloat renders v losslessly.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// #endregion csv

// #region json
// WriteJSON writes the summary as indented JSON.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// #endregion json

// #region write-dir
// WriteDir writes triad_summary.csv and triad_report.json into dir and
// returns the summary.
func WriteDir(dir string, results []triad.Result) (Summary, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create %s: %w", dir, err)
	}
	s := Build(results)

	if err := writeFile(filepath.Join(dir, SummaryFile), func(w io.Writer) error {
		return WriteCSV(w, results)
	}); err != nil {
		return Summary{}, err
	}
	if err := writeFile(filepath.Join(dir, ReportFile), func(w io.Writer) error {
		return WriteJSON(w, s)
	}); err != nil {
		return Summary{}, err
	}
	return s, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// #endregion write-dir
