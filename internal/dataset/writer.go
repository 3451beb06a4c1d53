package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// #region write-dir
// WriteDir writes runs as heating.csv, sb_trials.csv and events.csv under dir.
// Heating rows are written in the rich form.
func WriteDir(dir string, runs []Run) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	heating := [][]string{{"trap_id", "run_id", "mode", "frequency_hz", "heating_rate_quanta_per_s", "heating_rate_err"}}
	trials := [][]string{{"trap_id", "run_id", "sequence", "outcome", "t_rel_s"}}
	events := [][]string{{"trap_id", "run_id", "t_s"}}

	for _, r := range runs {
		for _, h := range r.Heating {
			heating = append(heating, []string{r.Key.TrapID, r.Key.RunID, h.Mode,
				formatFloat(h.FrequencyHz), formatFloat(h.Rate), formatFloat(h.RateErr)})
		}
		for _, t := range r.Trials {
			trials = append(trials, []string{r.Key.TrapID, r.Key.RunID,
				strconv.Itoa(t.Sequence), formatFloat(t.Outcome), formatFloat(t.TRelS)})
		}
		for _, e := range r.Events {
			events = append(events, []string{r.Key.TrapID, r.Key.RunID, formatFloat(e.TS)})
		}
	}

	files := []struct {
		name string
		rows [][]string
	}{
		{HeatingFile, heating},
		{TrialsFile, trials},
		{EventsFile, events},
	}
	for _, f := range files {
		if err := writeCSV(filepath.Join(dir, f.name), f.rows); err != nil {
			return err
		}
	}
	return nil
}

// #endregion write-dir

// #region helpers
func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// formatFloat writes the shortest representation that round-trips; NaN
// becomes an empty cell so it reads back as NaN.
func formatFloat(v float64) string {
	if v != v {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// #endregion helpers
