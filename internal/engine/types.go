package engine

import (
	"time"

	"github.com/danielpatrickdp/emotion-geometry/internal/classify"
	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/protocol"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
	"github.com/danielpatrickdp/emotion-geometry/internal/trend"
)

// #region config
// Config bundles the configuration of every stage.
type Config struct {
	Rules    classify.RuleSet
	Trend    trend.Config
	Selector protocol.SelectorConfig
}

// DefaultConfig returns the canonical rule set and default thresholds.
func DefaultConfig() Config {
	return Config{
		Rules:    classify.DefaultRuleSet(),
		Trend:    trend.DefaultConfig(),
		Selector: protocol.DefaultSelectorConfig(),
	}
}
// #endregion config

// #region request
// Request is one invocation. Every field is optional; a missing emotion
// vector is analysed as all-zero and not recorded in the history.
type Request struct {
	Emotions        *geometry.EmotionVector     `json:"emotions,omitempty"`
	Biometrics      classify.BiometricReading   `json:"biometrics,omitempty"`
	History         []trend.Entry               `json:"history,omitempty"`
	PersonalContext *textsignal.PersonalContext `json:"personalContext,omitempty"`
	Messages        []textsignal.Message        `json:"messages,omitempty"`
	PreviousMode    protocol.Mode               `json:"previousMode,omitempty"`
	Timestamp       time.Time                   `json:"timestamp,omitempty"`
}
// #endregion request

// #region response
// Response carries every derived value plus the updated carry-over state
// (history, personal context, mode) the caller should persist.
type Response struct {
	Emotions        geometry.EmotionVector      `json:"emotions"`
	Snapshot        geometry.Snapshot           `json:"snapshot"`
	Classification  classify.Result             `json:"classification"`
	Trend           trend.Analysis              `json:"trend"`
	PersonalContext textsignal.PersonalContext  `json:"personalContext"`
	ResponseType    textsignal.ResponseType     `json:"responseType"`
	Trauma          textsignal.TraumaIndicators `json:"trauma"`
	Directive       protocol.Directive          `json:"directive"`
	History         []trend.Entry               `json:"history"`
	Recorded        bool                        `json:"recorded"`
}
// #endregion response
