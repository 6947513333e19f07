package session

import (
	"time"

	"github.com/danielpatrickdp/emotion-geometry/internal/classify"
	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/orchestrator"
)

// #region turn-input
// TurnInput is what a client sends for one turn of a stored session.
// Emotions may be nil when the user only sent text.
type TurnInput struct {
	Emotions   *geometry.EmotionVector   `json:"emotions,omitempty"`
	Biometrics classify.BiometricReading `json:"biometrics,omitempty"`
	Message    string                    `json:"message,omitempty"`
	Timestamp  time.Time                 `json:"timestamp,omitempty"`
}
// #endregion turn-input

// #region result
// Result is the outcome of one turn. Reply is nil for analysis-only turns.
type Result struct {
	SessionID string              `json:"sessionId"`
	TurnID    string              `json:"turnId"`
	Response  engine.Response     `json:"response"`
	Reply     *orchestrator.Reply `json:"reply,omitempty"`
}
// #endregion result
