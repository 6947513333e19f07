package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/prompt"
	"github.com/danielpatrickdp/emotion-geometry/internal/session"
)

var (
	chatSessionID string
	chatEmotions  string
	chatEmpathy   string
	chatTone      string
	chatCoping    string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the supportive agent from the terminal",
	Long: `Starts (or resumes with --session) a stored conversation. Each line you
type is one turn. Lines starting with /emotions set the self-reported
intensities for the following turns, e.g. "/emotions joy=3,sadness=6".
Type "quit" or "exit" to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "Resume an existing session")
	chatCmd.Flags().StringVar(&chatEmotions, "emotions", "", "Initial intensities, e.g. joy=3,sadness=6")
	chatCmd.Flags().StringVar(&chatEmpathy, "empathy", "", "Empathy level for a new session (soft|balanced|clinical)")
	chatCmd.Flags().StringVar(&chatTone, "tone", "", "Tone for a new session (warm|professional|blunt)")
	chatCmd.Flags().StringVar(&chatCoping, "coping", "", "Coping method for a new session (cbt|dbt|existential|somatic)")
}

// #region chat
func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	emotions, err := parseEmotions(chatEmotions)
	if err != nil {
		return err
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	id := chatSessionID
	if id == "" {
		settings := prompt.TherapySettings{
			EmpathyLevel: prompt.EmpathyLevel(chatEmpathy),
			ToneStyle:    prompt.ToneStyle(chatTone),
			CopingMethod: prompt.CopingMethod(chatCoping),
		}.Normalize()
		sess, err := rt.sessions.Create(ctx, settings)
		if err != nil {
			return err
		}
		id = sess.ID
	} else if _, err := rt.sessions.Load(ctx, id); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Affect chat ready.")
	fmt.Fprintf(out, "  Session: %s | Rules: %s | Model replies: %v\n", id, rt.sessions.Engine().RuleSet(), rt.replies.Enabled())
	fmt.Fprintln(out, "Type a message, /emotions joy=3,sadness=6, or 'quit' to exit:")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if rest, ok := strings.CutPrefix(line, "/emotions"); ok {
			ev, err := parseEmotions(rest)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			emotions = ev
			fmt.Fprintln(out, "emotions updated")
			continue
		}

		in := session.TurnInput{Emotions: emotions, Message: line, Timestamp: time.Now().UTC()}

		turnCtx, cancel := context.WithTimeout(ctx, cfg.CompletionConfig().Timeout*time.Duration(cfg.Completion.MaxAttempts+1))
		fmt.Fprintln(out)
		res, err := rt.sessions.ChatStream(turnCtx, id, in, func(delta string) error {
			_, werr := fmt.Fprint(out, delta)
			return werr
		})
		cancel()
		fmt.Fprint(out, "\n\n")
		if err != nil {
			logger.Warn("turn failed", zap.String("session", id), zap.Error(err))
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		d := res.Response.Directive
		source := ""
		if res.Reply != nil {
			source = string(res.Reply.Source)
		}
		fmt.Fprintf(out, "[%s] crisis=%s class=%s mode=%s source=%s\n",
			shortID(res.TurnID), d.CrisisLevel, res.Response.Classification.Classification, d.Mode, source)
	}
	return scanner.Err()
}
// #endregion chat

// #region helpers

// parseEmotions reads "joy=3, sadness=6" into a vector. Unnamed dimensions
// are zero; an empty string means no emotion report.
func parseEmotions(s string) (*geometry.EmotionVector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var ev geometry.EmotionVector
	for _, part := range strings.Split(s, ",") {
		name, raw, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("emotion %q: expected name=value", strings.TrimSpace(part))
		}
		d, ok := geometry.ParseDimension(name)
		if !ok {
			return nil, fmt.Errorf("unknown emotion %q", strings.TrimSpace(name))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("emotion %s: %w", d, err)
		}
		if v < 0 || v > 10 {
			return nil, fmt.Errorf("emotion %s: %v outside [0,10]", d, v)
		}
		ev = ev.With(d, v)
	}
	return &ev, nil
}

// shortID trims a UUID to its first segment for table output.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// #endregion helpers
