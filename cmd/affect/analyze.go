package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/session"
)

var analyzeSessionID string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze one JSON request from a file or stdin",
	Long: `Without --session the input is a full stateless request (emotions,
biometrics, history, personalContext, messages, previousMode) and nothing is
stored. With --session the input is a single turn (emotions, biometrics,
message) applied to that stored session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSessionID, "session", "", "Apply the turn to a stored session")
}

// #region analyze
func runAnalyze(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	if analyzeSessionID == "" {
		var req engine.Request
		if err := decodeInput(data, &req); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), engine.New(cfg.EngineConfig()).Analyze(req))
	}

	var in session.TurnInput
	if err := decodeInput(data, &in); err != nil {
		return err
	}
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.sessions.Analyze(cmd.Context(), analyzeSessionID, in)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// decodeInput accepts an empty document as the zero value.
func decodeInput(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
// #endregion analyze
