package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/emotion-geometry/internal/logging"
	"github.com/danielpatrickdp/emotion-geometry/internal/store"
)

var (
	inspectLast int
	inspectJSON bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Show a stored session's history and assessment log",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&inspectLast, "last", 20, "Show N most recent assessments")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output as JSON instead of tables")
}

// #region inspect

type inspectOutput struct {
	Session     store.Session             `json:"session"`
	Assessments []logging.AssessmentEntry `json:"assessments"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	sess, err := rt.sessions.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	entries, err := rt.sessions.Assessments(sess.ID, inspectLast)
	if err != nil {
		return err
	}

	out := inspectOutput{Session: sess, Assessments: entries}
	if inspectJSON {
		return printJSON(cmd.OutOrStdout(), out)
	}
	printInspect(cmd.OutOrStdout(), out)
	return nil
}

func printInspect(w io.Writer, out inspectOutput) {
	s := out.Session
	fmt.Fprintf(w, "Session:    %s\n", s.ID)
	fmt.Fprintf(w, "Created:    %s\n", s.CreatedAt.Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(w, "Mode:       %s\n", s.Mode)
	fmt.Fprintf(w, "Settings:   %s / %s / %s\n", s.Settings.EmpathyLevel, s.Settings.ToneStyle, s.Settings.CopingMethod)
	if s.PersonalContext.Name != "" {
		fmt.Fprintf(w, "Name:       %s\n", s.PersonalContext.Name)
	}
	fmt.Fprintf(w, "Turns:      %d\n", s.Turns)
	fmt.Fprintf(w, "Messages:   %d (%d from user)\n", len(s.Messages), s.UserTurns())

	fmt.Fprintf(w, "\nHistory (%d entries):\n", len(s.History))
	if len(s.History) > 0 {
		fmt.Fprintf(w, "%-20s  %-9s  %9s  %4s %4s %4s %4s %4s %4s\n",
			"Time", "Dominant", "Stability", "joy", "sad", "ang", "fear", "sur", "dis")
		for _, e := range s.History {
			v := e.Emotions
			fmt.Fprintf(w, "%-20s  %-9s  %9.4f  %4.1f %4.1f %4.1f %4.1f %4.1f %4.1f\n",
				e.Timestamp.Format("2006-01-02T15:04:05Z"), e.DominantEmotion, e.StabilityIndex,
				v.Joy, v.Sadness, v.Anger, v.Fear, v.Surprise, v.Disgust)
		}
	}

	fmt.Fprintf(w, "\nAssessments (last %d):\n", len(out.Assessments))
	if len(out.Assessments) == 0 {
		fmt.Fprintln(w, "  none logged")
		return
	}
	fmt.Fprintf(w, "%-10s  %-8s  %-10s  %-9s  %-8s  %9s  %-8s  %s\n",
		"Turn", "Crisis", "Class", "Stability", "Mode", "Index", "Reply", "Time")
	for _, a := range out.Assessments {
		reply := a.ReplySource
		if reply == "" {
			reply = "-"
		}
		fmt.Fprintf(w, "%-10s  %-8s  %-10s  %-9s  %-8s  %9.4f  %-8s  %s\n",
			shortID(a.TurnID), a.CrisisLevel, a.Classification, a.MentalStability, a.Mode,
			a.StabilityIndex, reply, a.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
}

// #endregion inspect
