package orchestrator

// #region imports
import (
	"context"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/emotion-geometry/internal/completion"
	"github.com/danielpatrickdp/emotion-geometry/internal/prompt"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
)

// #endregion

// #region orchestrator-struct

// Orchestrator turns an analyzed turn into a delivered reply: it builds the
// system prompt, asks the completer, evaluates the answer, escalates through
// strategies on failure, and falls back to canned replies when the model
// cannot produce an acceptable one.
type Orchestrator struct {
	completer completion.Completer // nil = fallback only
	logger    *zap.Logger
}

// #endregion

// #region constructor

// New creates an orchestrator. A nil completer always answers with the
// deterministic fallback; a nil logger is replaced by a no-op logger.
func New(completer completion.Completer, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{completer: completer, logger: logger}
}

// Enabled reports whether a completion service is configured.
func (o *Orchestrator) Enabled() bool {
	return o.completer != nil
}

// #endregion

// #region respond

// Respond produces the reply for one turn. It never returns an empty reply:
// every failure path ends in prompt.Fallback.
func (o *Orchestrator) Respond(ctx context.Context, turn Turn) Reply {
	in := prompt.NewInput(turn.Response, turn.Settings, turn.Number)
	strategy := SelectInitial(turn.Response.Directive)

	if o.completer == nil {
		return o.fallback(in, strategy.ID, nil)
	}

	system := prompt.BuildSystemPrompt(in)
	userText := lastUserText(turn.Messages)

	var attempts []Attempt
	for {
		text, err := o.completer.Complete(ctx, o.request(system, strategy, turn))
		if err != nil {
			o.logger.Warn("completion failed",
				zap.String("strategy", string(strategy.ID)),
				zap.Int("attempt", len(attempts)),
				zap.Error(err))
			attempts = append(attempts, Attempt{Strategy: strategy.ID, Err: err.Error()})
			return o.fallback(in, strategy.ID, attempts)
		}

		eval := EvaluateReply(userText, text)
		attempts = append(attempts, Attempt{Strategy: strategy.ID, Reply: text, Evaluation: eval})
		o.logger.Debug("reply evaluated",
			zap.String("strategy", string(strategy.ID)),
			zap.Float32("quality", eval.Quality),
			zap.String("failure", string(eval.FailureType)))

		if !eval.ShouldRetry {
			return Reply{Text: text, Source: SourceModel, Strategy: strategy.ID, Attempts: attempts}
		}

		retry, next := ShouldRetry(attempts)
		if !retry || next == nil {
			o.logger.Info("no acceptable reply, using fallback", zap.Int("attempts", len(attempts)))
			return o.fallback(in, strategy.ID, attempts)
		}
		strategy = *next
	}
}

// #endregion

// #region respond-stream

// RespondStream streams a single attempt through onDelta. Streamed text
// cannot be retracted, so there is no evaluation or retry; if the model fails
// before sending anything the fallback is delivered as one delta.
func (o *Orchestrator) RespondStream(ctx context.Context, turn Turn, onDelta func(string) error) (Reply, error) {
	in := prompt.NewInput(turn.Response, turn.Settings, turn.Number)
	strategy := SelectInitial(turn.Response.Directive)

	deliverFallback := func(attempts []Attempt) (Reply, error) {
		reply := o.fallback(in, strategy.ID, attempts)
		if err := onDelta(reply.Text); err != nil {
			return reply, err
		}
		return reply, nil
	}

	if o.completer == nil {
		return deliverFallback(nil)
	}

	system := prompt.BuildSystemPrompt(in)
	sent := false
	text, err := o.completer.Stream(ctx, o.request(system, strategy, turn), func(delta string) error {
		sent = true
		return onDelta(delta)
	})
	if err != nil {
		attempt := Attempt{Strategy: strategy.ID, Reply: text, Err: err.Error()}
		if !sent {
			o.logger.Warn("stream failed before first delta", zap.Error(err))
			return deliverFallback([]Attempt{attempt})
		}
		return Reply{Text: text, Source: SourceModel, Strategy: strategy.ID, Attempts: []Attempt{attempt}}, err
	}

	eval := EvaluateReply(lastUserText(turn.Messages), text)
	return Reply{
		Text:     text,
		Source:   SourceModel,
		Strategy: strategy.ID,
		Attempts: []Attempt{{Strategy: strategy.ID, Reply: text, Evaluation: eval}},
	}, nil
}

// #endregion

// #region helpers

func (o *Orchestrator) request(system string, strategy StrategyConfig, turn Turn) completion.Request {
	if strategy.PromptModifier != "" {
		system += "\n\n" + strategy.PromptModifier
	}
	maxTokens := strategy.MaxTokens
	if maxTokens <= 0 {
		maxTokens = prompt.MaxTokens
	}
	return completion.Request{
		System:      system,
		Messages:    prompt.Window(turn.Messages),
		Temperature: prompt.Temperature(turn.Settings),
		MaxTokens:   maxTokens,
	}
}

func (o *Orchestrator) fallback(in prompt.Input, strategy StrategyID, attempts []Attempt) Reply {
	if attempts == nil {
		attempts = []Attempt{}
	}
	return Reply{
		Text:     prompt.Fallback(in),
		Source:   SourceFallback,
		Strategy: strategy,
		Attempts: attempts,
	}
}

func lastUserText(messages []textsignal.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].FromUser() {
			return messages[i].Content
		}
	}
	return ""
}

// #endregion
