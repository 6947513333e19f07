package protocol

import (
	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
	"github.com/danielpatrickdp/emotion-geometry/internal/trend"
)

// #region crisis-level
// CrisisLevel is the escalation tier requested from the downstream agent.
type CrisisLevel string

const (
	CrisisNone     CrisisLevel = "none"
	CrisisModerate CrisisLevel = "moderate"
	CrisisCritical CrisisLevel = "critical"
)

// Rank orders levels from 0 (none) to 2 (critical).
func (l CrisisLevel) Rank() int {
	switch l {
	case CrisisCritical:
		return 2
	case CrisisModerate:
		return 1
	}
	return 0
}
// #endregion crisis-level

// #region mode
// Mode is the conversation's crisis lifecycle state. It persists only when
// the caller stores it and passes it back as the previous mode.
type Mode string

const (
	ModeNormal   Mode = "normal"
	ModeElevated Mode = "elevated"
	ModeCrisis   Mode = "crisis"
)

// ParseMode maps a stored string to a Mode; unknown values are normal.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeElevated:
		return ModeElevated
	case ModeCrisis:
		return ModeCrisis
	}
	return ModeNormal
}

// Transition records one step of the lifecycle.
type Transition struct {
	From    Mode `json:"from"`
	To      Mode `json:"to"`
	Changed bool `json:"changed"`
}
// #endregion mode

// #region selector-config
// SelectorConfig holds the crisis thresholds and lifecycle options.
type SelectorConfig struct {
	CriticalIntensity float64 // any negative at or above → critical
	ModerateIntensity float64 // any negative at or above → moderate
	// HoldCrisis keeps an active crisis through moderate readings; only a
	// reading with no crisis level returns the mode to normal.
	HoldCrisis bool
	// MaxInsights caps trend insights surfaced per turn. Zero means all.
	MaxInsights int
}

// DefaultSelectorConfig returns the standard thresholds without hysteresis.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		CriticalIntensity: 8,
		ModerateIntensity: 6,
	}
}
// #endregion selector-config

// #region input
// Input gathers everything the selector reads. Every field is optional.
type Input struct {
	Emotions     geometry.EmotionVector
	ResponseType textsignal.ResponseType
	Trauma       textsignal.TraumaIndicators
	Trend        trend.Analysis
	PreviousMode Mode
}
// #endregion input

// #region directive
// Directive is the structured instruction set handed to prompt construction.
type Directive struct {
	CrisisLevel             CrisisLevel                 `json:"crisisLevel"`
	CriticalEmotions        []string                    `json:"criticalEmotions"`
	ElevatedEmotions        []string                    `json:"elevatedEmotions"`
	TraumaProtocolNeeded    bool                        `json:"traumaProtocolNeeded"`
	TraumaIndicators        []string                    `json:"traumaIndicators,omitempty"`
	MinimalResponseCategory textsignal.ResponseCategory `json:"minimalResponseCategory"`
	MinimalResponseText     string                      `json:"minimalResponseText,omitempty"`
	TrendInsightsToSurface  []string                    `json:"trendInsightsToSurface"`
	Mode                    Mode                        `json:"mode"`
	Transition              Transition                  `json:"transition"`
	Reason                  string                      `json:"reason"`
}

// MinimalNone marks a directive with no minimal-response handling.
const MinimalNone textsignal.ResponseCategory = "none"
// #endregion directive
