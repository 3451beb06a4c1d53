package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/flyby-triad/internal/report"
	"github.com/danielpatrickdp/flyby-triad/internal/store"
)

var (
	inspectLast int
	inspectID   string
	inspectJSON bool
)

// #region inspect
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List persisted screenings or show one in detail",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&inspectLast, "last", 20, "show N most recent screenings")
	inspectCmd.Flags().StringVar(&inspectID, "id", "", "show the results of one analysis")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output as JSON instead of table")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	if cfg.DBPath == "" {
		return errors.New("inspect needs --db or TRIAD_DB_PATH")
	}
	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if inspectID != "" {
		return runDetailMode(st, inspectID)
	}
	return runListMode(st)
}

// #endregion inspect

// #region list-mode

type listRow struct {
	AnalysisID string  `json:"analysis_id"`
	CreatedAt  string  `json:"created_at"`
	DataRoot   string  `json:"data_root"`
	Preset     string  `json:"preset"`
	Alpha      float64 `json:"alpha"`
	NRuns      int     `json:"n_runs"`
	NFlags     int     `json:"n_flags"`
}

func runListMode(st *store.Store) error {
	screenings, err := st.ListScreenings(inspectLast)
	if err != nil {
		return err
	}
	if len(screenings) == 0 {
		fmt.Fprintln(os.Stderr, "no screenings found")
		return nil
	}

	rows := make([]listRow, len(screenings))
	for i, s := range screenings {
		rows[i] = listRow{
			AnalysisID: s.AnalysisID,
			CreatedAt:  s.CreatedAt.Format("2006-01-02T15:04:05Z"),
			DataRoot:   s.DataRoot,
			Preset:     s.Preset,
			Alpha:      s.Alpha,
			NRuns:      s.NRuns,
			NFlags:     s.NFlags,
		}
	}
	if inspectJSON {
		return printJSON(rows)
	}

	fmt.Printf("%-36s  %-20s  %-8s  %6s  %6s  %s\n", "Analysis", "Time", "Preset", "Runs", "Flags", "Data root")
	fmt.Printf("%-36s+-%-20s+-%-8s+-%6s+-%6s+-%s\n",
		"------------------------------------", "--------------------", "--------", "------", "------", "----------")
	for _, r := range rows {
		fmt.Printf("%-36s  %-20s  %-8s  %6d  %6d  %s\n", r.AnalysisID, r.CreatedAt, r.Preset, r.NRuns, r.NFlags, r.DataRoot)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(st *store.Store, id string) error {
	sc, err := st.GetScreening(id)
	if err != nil {
		return err
	}
	results, err := st.Results(id)
	if err != nil {
		return err
	}
	summary := report.Build(results)
	if inspectJSON {
		return printJSON(struct {
			AnalysisID string         `json:"analysis_id"`
			Summary    report.Summary `json:"summary"`
		}{sc.AnalysisID, summary})
	}

	fmt.Printf("Analysis %s (%s, preset %q, alpha %g)\n\n", sc.AnalysisID, sc.CreatedAt.Format("2006-01-02T15:04:05Z"), sc.Preset, sc.Alpha)
	report.PrintTable(os.Stdout, results)
	report.PrintSummary(os.Stdout, summary)
	return nil
}

// #endregion detail-mode

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
