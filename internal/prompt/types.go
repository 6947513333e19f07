package prompt

import (
	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/protocol"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
)

// #region constants

const (
	MaxTokens     = 300 // completion budget per reply
	ContextWindow = 5   // messages forwarded to the model

	clinicalTemperature = 0.3
	defaultTemperature  = 0.7
)

// #endregion

// #region settings

// EmpathyLevel controls how much warmth the reply carries.
type EmpathyLevel string

const (
	EmpathySoft     EmpathyLevel = "soft"
	EmpathyBalanced EmpathyLevel = "balanced"
	EmpathyClinical EmpathyLevel = "clinical"
)

// ToneStyle controls register.
type ToneStyle string

const (
	ToneWarm         ToneStyle = "warm"
	ToneProfessional ToneStyle = "professional"
	ToneBlunt        ToneStyle = "blunt"
)

// CopingMethod is the therapeutic approach the reply leans on.
type CopingMethod string

const (
	CopingCBT         CopingMethod = "cbt"
	CopingDBT         CopingMethod = "dbt"
	CopingExistential CopingMethod = "existential"
	CopingSomatic     CopingMethod = "somatic"
)

// TherapySettings are the per-user preferences that shape the system prompt.
type TherapySettings struct {
	EmpathyLevel EmpathyLevel `json:"empathyLevel" yaml:"empathy_level"`
	ToneStyle    ToneStyle    `json:"toneStyle" yaml:"tone_style"`
	CopingMethod CopingMethod `json:"copingMethod" yaml:"coping_method"`
}

// DefaultTherapySettings returns balanced / warm / cbt.
func DefaultTherapySettings() TherapySettings {
	return TherapySettings{
		EmpathyLevel: EmpathyBalanced,
		ToneStyle:    ToneWarm,
		CopingMethod: CopingCBT,
	}
}

// Normalize replaces unknown or empty values with the defaults.
func (s TherapySettings) Normalize() TherapySettings {
	def := DefaultTherapySettings()
	switch s.EmpathyLevel {
	case EmpathySoft, EmpathyBalanced, EmpathyClinical:
	default:
		s.EmpathyLevel = def.EmpathyLevel
	}
	switch s.ToneStyle {
	case ToneWarm, ToneProfessional, ToneBlunt:
	default:
		s.ToneStyle = def.ToneStyle
	}
	switch s.CopingMethod {
	case CopingCBT, CopingDBT, CopingExistential, CopingSomatic:
	default:
		s.CopingMethod = def.CopingMethod
	}
	return s
}

// #endregion

// #region input

// Input is everything the prompt builder and fallback need for one turn.
type Input struct {
	Emotions        geometry.EmotionVector
	HasEmotions     bool
	PersonalContext textsignal.PersonalContext
	Directive       protocol.Directive
	BiometricFlags  []string
	Settings        TherapySettings
	Turn            int // 0-based turn counter; picks the fallback variant
}

// NewInput assembles an Input from an engine response.
func NewInput(resp engine.Response, settings TherapySettings, turn int) Input {
	return Input{
		Emotions:        resp.Emotions,
		HasEmotions:     resp.Recorded,
		PersonalContext: resp.PersonalContext,
		Directive:       resp.Directive,
		BiometricFlags:  resp.Classification.BiometricFlags,
		Settings:        settings,
		Turn:            turn,
	}
}

// #endregion
