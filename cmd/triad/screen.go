package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/flyby-triad/internal/dataset"
	"github.com/danielpatrickdp/flyby-triad/internal/gate"
	"github.com/danielpatrickdp/flyby-triad/internal/logging"
	"github.com/danielpatrickdp/flyby-triad/internal/report"
	"github.com/danielpatrickdp/flyby-triad/internal/store"
	"github.com/danielpatrickdp/flyby-triad/internal/telemetry"
	"github.com/danielpatrickdp/flyby-triad/internal/triad"
)

var (
	screenQuiet    bool
	screenExitCode bool
)

// #region screen
var screenCmd = &cobra.Command{
	Use:   "screen [data-root]",
	Short: "Screen every run of a data root",
	Long: `Load heating.csv, sb_trials.csv and events.csv, evaluate every
(trap_id, run_id) run and write triad_summary.csv and triad_report.json to the
output directory.

Examples:
  triad screen data/
  triad screen --preset strict --out out/strict data/
  triad screen --db triad.db --metrics-file /var/lib/node_exporter/triad.prom data/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScreen,
}

func init() {
	screenCmd.Flags().BoolVar(&screenQuiet, "quiet", false, "do not print the run table")
	screenCmd.Flags().BoolVar(&screenExitCode, "exit-code", false, "exit 1 when any run is FAIL")
	rootCmd.AddCommand(screenCmd)
}

func runScreen(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg.DataRoot = args[0]
	}
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}

	ds, err := dataset.LoadDir(cfg.DataRoot)
	if err != nil {
		return err
	}
	for _, v := range ds.TableViolations() {
		logger.Warn("table unusable, every run is aborted", "error", v.Error())
	}
	runs := ds.Runs()
	logger.Info("data loaded", "root", cfg.DataRoot, "runs", len(runs),
		"heating_rows", ds.Heating.Len(), "trial_rows", ds.Trials.Len(), "event_rows", ds.Events.Len())

	recorder := telemetry.NewRecorder()
	engine := triad.NewEngine(engineCfg, triad.WithLogger(logger), triad.WithRecorder(recorder))
	results, err := engine.Evaluate(cmd.Context(), runs)
	if err != nil {
		return err
	}

	summary, err := report.WriteDir(cfg.OutDir, results)
	if err != nil {
		return err
	}
	logger.Info("report written", "dir", cfg.OutDir, "n_flags", summary.NFlags)

	if cfg.DBPath != "" {
		if err := persist(engineCfg.Gate, results); err != nil {
			return err
		}
	}
	if cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
	}

	if !screenQuiet {
		report.PrintTable(os.Stdout, results)
		report.PrintSummary(os.Stdout, summary)
	}
	if screenExitCode && summary.Decisions[gate.LevelFail] > 0 {
		return fmt.Errorf("%d runs FAIL: %w", summary.Decisions[gate.LevelFail], errFlagged)
	}
	return nil
}

func persist(gc gate.GateConfig, results []triad.Result) error {
	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.SaveScreening(store.Screening{
		DataRoot:   cfg.DataRoot,
		Preset:     cfg.Preset,
		Thresholds: gc.Thresholds,
		Alpha:      gc.Alpha,
	}, results)
	if err != nil {
		return err
	}
	if err := logging.LogResults(st.DB(), rec.AnalysisID, results); err != nil {
		return err
	}
	logger.Info("screening saved", "db", cfg.DBPath, "analysis_id", rec.AnalysisID)
	return nil
}

// #endregion screen
