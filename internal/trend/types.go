package trend

import (
	"time"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
)

// #region constants
const (
	// HistoryCap is the number of sessions retained.
	HistoryCap = 10
	// WindowSize is the number of recent sessions analysed.
	WindowSize = 5
)
// #endregion constants

// #region config
// Config holds the trend thresholds.
type Config struct {
	Window             int
	SlopeThreshold     float64 // |slope| at or above this reports a direction
	LowStability       float64 // mean stability below this is reported as low
	HighStability      float64 // mean stability above this is reported as high
	RecurringThreshold int     // dominant emotion seen this often in the window
}

// DefaultConfig returns the standard trend thresholds.
func DefaultConfig() Config {
	return Config{
		Window:             WindowSize,
		SlopeThreshold:     1.0,
		LowStability:       0.3,
		HighStability:      0.7,
		RecurringThreshold: 3,
	}
}
// #endregion config

// #region entry
// Entry is one recorded session.
type Entry struct {
	Timestamp       time.Time              `json:"timestamp"`
	Emotions        geometry.EmotionVector `json:"emotions"`
	DominantEmotion string                 `json:"dominantEmotion"`
	StabilityIndex  float64                `json:"stabilityIndex"`
}
// #endregion entry

// #region insight
// InsightKind groups insights for callers that filter them.
type InsightKind string

const (
	KindDirection InsightKind = "direction"
	KindStability InsightKind = "stability"
	KindRecurring InsightKind = "recurring"
)

// Insight is one observation about recent sessions.
type Insight struct {
	Kind      InsightKind `json:"kind"`
	Dimension string      `json:"dimension,omitempty"`
	Direction string      `json:"direction,omitempty"` // "increasing" | "decreasing" | "low" | "high"
	Text      string      `json:"text"`
}

// Analysis is the output of Analyze.
type Analysis struct {
	Insights      []Insight          `json:"insights"`
	Slopes        map[string]float64 `json:"slopes,omitempty"`
	MeanStability float64            `json:"meanStability"`
	WindowSize    int                `json:"windowSize"`
}

// Texts returns the insight sentences in order.
func (a Analysis) Texts() []string {
	out := make([]string, len(a.Insights))
	for i, in := range a.Insights {
		out[i] = in.Text
	}
	return out
}
// #endregion insight
