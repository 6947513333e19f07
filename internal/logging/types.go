package logging

import (
	"time"

	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/protocol"
)

// #region assessment-entry
// AssessmentEntry is a single row in the assessment_log table.
type AssessmentEntry struct {
	ID              int64     `json:"id,omitempty"`
	SessionID       string    `json:"sessionId"`
	TurnID          string    `json:"turnId"`
	CrisisLevel     string    `json:"crisisLevel"`
	Classification  string    `json:"classification"`
	MentalStability string    `json:"mentalStability"`
	Mode            string    `json:"mode"`
	StabilityIndex  float64   `json:"stabilityIndex"`
	RuleSet         string    `json:"ruleSet"`
	RecordJSON      string    `json:"record,omitempty"`
	ReplySource     string    `json:"replySource,omitempty"` // "model" | "fallback" | "" (analysis only)
	CreatedAt       time.Time `json:"createdAt"`
}
// #endregion assessment-entry

// #region assessment-record
// AssessmentRecord captures the complete inputs and outputs of one analysis.
// Serialized as JSON into assessment_log.record_json for replay and audit.
type AssessmentRecord struct {
	TurnID string `json:"turn_id"`

	Emotions       geometry.EmotionVector `json:"emotions"`
	BiometricFlags []string               `json:"biometric_flags"`
	StabilityIndex float64                `json:"stability_index"`
	Energy         float64                `json:"energy"`

	Classification    string `json:"classification"`
	ClassReason       string `json:"class_reason"`
	MentalStability   string `json:"mental_stability"`
	DominantEmotion   string `json:"dominant_emotion"`
	DominantCurvature string `json:"dominant_curvature"`

	CrisisLevel     string              `json:"crisis_level"`
	Transition      protocol.Transition `json:"transition"`
	TraumaFlags     []string            `json:"trauma_flags,omitempty"`
	MinimalCategory string              `json:"minimal_category"`
	Insights        []string            `json:"insights"`

	// Rule set active at decision time
	RuleSet string `json:"rule_set"`
}

// NewAssessmentRecord extracts the audit record from an engine response.
func NewAssessmentRecord(turnID string, resp engine.Response) AssessmentRecord {
	d := resp.Directive
	return AssessmentRecord{
		TurnID:            turnID,
		Emotions:          resp.Emotions,
		BiometricFlags:    resp.Classification.BiometricFlags,
		StabilityIndex:    resp.Snapshot.StabilityIndex,
		Energy:            resp.Snapshot.Energy,
		Classification:    string(resp.Classification.Classification),
		ClassReason:       resp.Classification.Reason,
		MentalStability:   string(resp.Classification.MentalStability),
		DominantEmotion:   resp.Classification.DominantEmotion,
		DominantCurvature: resp.Classification.DominantCurvature,
		CrisisLevel:       string(d.CrisisLevel),
		Transition:        d.Transition,
		TraumaFlags:       d.TraumaIndicators,
		MinimalCategory:   string(d.MinimalResponseCategory),
		Insights:          d.TrendInsightsToSurface,
		RuleSet:           resp.Classification.RuleSet,
	}
}
// #endregion assessment-record

// #region logger-config
// LoggerConfig selects the process logger.
type LoggerConfig struct {
	Level       string `yaml:"level"`       // debug | info | warn | error
	Development bool   `yaml:"development"` // console encoder, caller info
}
// #endregion logger-config
