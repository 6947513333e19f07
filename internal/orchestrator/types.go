package orchestrator

// #region imports
import (
	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/prompt"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
)

// #endregion

// #region strategy-id

// StrategyID identifies a prompting strategy.
type StrategyID string

const (
	StrategyStandard  StrategyID = "standard"
	StrategyGrounding StrategyID = "grounding"
	StrategyGentle    StrategyID = "gentle"
	StrategyConcise   StrategyID = "concise"
	StrategyDirect    StrategyID = "direct"
)

// #endregion

// #region failure-type

// FailureType categorizes why a reply failed evaluation.
type FailureType string

const (
	FailureNone       FailureType = "none"
	FailureEmpty      FailureType = "empty"
	FailureRepetition FailureType = "repetition"
	FailureDisclaimer FailureType = "disclaimer"
	FailureDeflection FailureType = "deflection"
	FailureOverlong   FailureType = "overlong"
)

// #endregion

// #region source

// Source says where the delivered reply came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// #endregion

// #region strategy-config

// StrategyConfig modifies the system prompt and token budget for one attempt.
type StrategyConfig struct {
	ID             StrategyID
	MaxTokens      int
	PromptModifier string // appended to the system prompt, empty = none
}

// #endregion

// #region reply-evaluation

// ReplyEvaluation is the output of evaluating a generated reply.
type ReplyEvaluation struct {
	Quality     float32     `json:"quality"`
	FailureType FailureType `json:"failureType"`
	ShouldRetry bool        `json:"shouldRetry"`
}

// #endregion

// #region attempt

// Attempt records one generation attempt within a turn.
type Attempt struct {
	Strategy   StrategyID      `json:"strategy"`
	Reply      string          `json:"reply"`
	Evaluation ReplyEvaluation `json:"evaluation"`
	Err        string          `json:"error,omitempty"`
}

// #endregion

// #region turn

// Turn is one chat exchange awaiting a reply.
type Turn struct {
	Response engine.Response
	Messages []textsignal.Message
	Settings prompt.TherapySettings
	Number   int
}

// Reply is the delivered assistant message plus how it was produced.
type Reply struct {
	Text     string     `json:"text"`
	Source   Source     `json:"source"`
	Strategy StrategyID `json:"strategy"`
	Attempts []Attempt  `json:"attempts"`
}

// #endregion
