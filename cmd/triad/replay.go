package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/flyby-triad/internal/replay"
)

// #region replay
var replayCmd = &cobra.Command{
	Use:   "replay fixture.json...",
	Short: "Replay regression fixtures and compare decisions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		f, err := replay.LoadFixture(path)
		if err != nil {
			return err
		}
		results, err := replay.Replay(f)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		s := replay.Summarize(f, results)

		status := "PASS"
		if !s.Passed() {
			status = "FAIL"
			failed++
		}
		fmt.Printf("%s  %s  runs=%d ok=%d warn=%d fail=%d undetermined=%d flags=%d\n",
			status, path, s.TotalRuns, s.OK, s.Warn, s.Fail, s.Undetermined, s.Flags)
		for _, m := range s.Mismatches {
			fmt.Printf("    %s\n", m)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d fixtures drifted: %w", failed, errFlagged)
	}
	return nil
}

// #endregion replay
