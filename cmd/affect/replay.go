package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/emotion-geometry/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay fixture.json [fixture.json...]",
	Short: "Replay recorded turns and compare decisions against expectations",
	Long: `Each fixture names a rule set, a sequence of turns and the expected
crisis level, classification, mental stability and mode per turn. The
command prints a comparison table and exits non-zero when any turn diverges.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReplay,
}

// #region replay
func runReplay(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	diverged := 0
	for i, path := range args {
		f, err := replay.LoadFixture(path)
		if err != nil {
			return fmt.Errorf("load fixture: %w", err)
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "== %s (rules %s)\n", path, f.Config.EngineConfig().Rules.Version)
		if f.Description != "" {
			fmt.Fprintf(out, "   %s\n", f.Description)
		}
		results, mismatches := f.Run()
		diverged += printComparison(out, results, mismatches)
	}
	if diverged > 0 {
		return fmt.Errorf("%d turn(s) diverge", diverged)
	}
	return nil
}
// #endregion replay

// #region output

// printComparison outputs one row per replayed turn followed by the field
// differences, and returns the number of diverging turns.
func printComparison(w io.Writer, results []replay.Result, mismatches []replay.Mismatch) int {
	byTurn := make(map[string][]replay.Mismatch)
	for _, m := range mismatches {
		byTurn[m.TurnID] = append(byTurn[m.TurnID], m)
	}

	fmt.Fprintf(w, "%-12s| %-10s| %-15s| %-10s| %s\n", "Turn", "Crisis", "Classification", "Mode", "Match")
	fmt.Fprintf(w, "%-12s+%-11s+%-16s+%-11s+%s\n",
		"------------", "-----------", "----------------", "-----------", "------")

	diverge, matches := 0, 0
	for _, r := range results {
		match := "OK"
		if len(byTurn[r.TurnID]) > 0 {
			match = "DIFF"
			diverge++
		} else {
			matches++
		}
		fmt.Fprintf(w, "%-12s| %-10s| %-15s| %-10s| %s\n", r.TurnID, r.CrisisLevel, r.Classification, r.Mode, match)
	}

	if len(mismatches) > 0 {
		fmt.Fprintln(w)
		for _, m := range mismatches {
			turn := m.TurnID
			if turn == "" {
				turn = "-"
			}
			fmt.Fprintf(w, "  %s: %s expected %q, got %q\n", turn, m.Field, m.Expected, m.Actual)
		}
		// A turn-count difference has no row of its own.
		if len(byTurn[""]) > 0 {
			diverge++
		}
	}

	s := replay.Summarize(results, mismatches)
	fmt.Fprintf(w, "\nSummary: %d total, %d match, %d diverge (critical %d, moderate %d, mode changes %d, final %s)\n",
		s.TotalTurns, matches, diverge, s.Critical, s.Moderate, s.ModeChanges, s.FinalMode)
	return diverge
}

// #endregion output
