// Command triad screens flyby trap data for anomalies with the A/D/M triad.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/flyby-triad/internal/config"
	"github.com/danielpatrickdp/flyby-triad/internal/logging"
)

// errFlagged makes the process exit with status 1 instead of 2.
var errFlagged = errors.New("runs flagged")

var (
	cfg    *config.Config
	logger *slog.Logger

	flagDataRoot    string
	flagOutDir      string
	flagDBPath      string
	flagMetricsFile string
	flagWorkers     int
	flagLogLevel    string
	flagNoColor     bool
	flagPreset      string
	flagThresholds  string
	flagAlpha       float64
)

// #region root
var rootCmd = &cobra.Command{
	Use:   "triad",
	Short: "Screen flyby trap runs with the A/D/M anomaly triad",
	Long: `Screen flyby trap runs with three statistics:

  A  heating curve: power-law background vs background plus constant offset
  D  single-bit trials: window dispersion fused with a runs test
  M  detector events: portmanteau statistic of binned counts

Settings come from TRIAD_* environment variables (or a .env file) and are
overridden by flags.

Exit Codes:
  0 = success
  1 = screen --exit-code found FAIL runs, or replay expectations drifted
  2 = error`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDataRoot, "data-root", "", "directory with heating.csv, sb_trials.csv, events.csv")
	pf.StringVar(&flagOutDir, "out", "", "output directory")
	pf.StringVar(&flagDBPath, "db", "", "SQLite database for persisted screenings")
	pf.StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus counters to this textfile")
	pf.IntVar(&flagWorkers, "workers", 0, "parallel run evaluations")
	pf.StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable coloured output")
	pf.StringVar(&flagPreset, "preset", "", "threshold preset: default or strict")
	pf.StringVar(&flagThresholds, "thresholds", "", "YAML thresholds override file")
	pf.Float64Var(&flagAlpha, "alpha", 0, "significance level of the detection flags")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errFlagged) {
			stop()
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(2)
	}
}

// setup loads the environment configuration, applies flag overrides and
// builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig()
	if err != nil {
		return err
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("data-root") {
		cfg.DataRoot = flagDataRoot
	}
	if flags.Changed("out") {
		cfg.OutDir = flagOutDir
	}
	if flags.Changed("db") {
		cfg.DBPath = flagDBPath
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = flagMetricsFile
	}
	if flags.Changed("workers") {
		cfg.Workers = flagWorkers
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("no-color") {
		cfg.NoColor = flagNoColor
	}
	if flags.Changed("preset") {
		cfg.Preset = flagPreset
	}
	if flags.Changed("thresholds") {
		cfg.ThresholdsFile = flagThresholds
	}
	if flags.Changed("alpha") {
		cfg.Alpha = flagAlpha
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.NoColor {
		color.NoColor = true
	}
	logger = logging.NewLogger(os.Stderr, level, color.NoColor)
	return nil
}

// #endregion root
