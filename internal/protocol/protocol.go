package protocol

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
)

// #region selector
// Selector turns classified signals into a Directive.
type Selector struct {
	config SelectorConfig
}

// NewSelector creates a selector; zero thresholds fall back to the defaults.
func NewSelector(config SelectorConfig) *Selector {
	def := DefaultSelectorConfig()
	if config.CriticalIntensity <= 0 {
		config.CriticalIntensity = def.CriticalIntensity
	}
	if config.ModerateIntensity <= 0 {
		config.ModerateIntensity = def.ModerateIntensity
	}
	return &Selector{config: config}
}

// Config returns the active configuration.
func (s *Selector) Config() SelectorConfig {
	return s.config
}

// Select evaluates crisis level first (critical beats moderate beats none),
// then sets trauma and minimal-response handling independently.
func (s *Selector) Select(in Input) Directive {
	ev := in.Emotions.Clamp()

	critical := namesAtLeast(ev, s.config.CriticalIntensity)
	elevated := namesAtLeast(ev, s.config.ModerateIntensity)

	d := Directive{
		CrisisLevel:             CrisisNone,
		CriticalEmotions:        critical,
		ElevatedEmotions:        elevated,
		MinimalResponseCategory: MinimalNone,
		TrendInsightsToSurface:  []string{},
	}

	// --- Crisis tier ---
	switch {
	case len(critical) > 0:
		d.CrisisLevel = CrisisCritical
		d.Reason = fmt.Sprintf("critical: %s", strings.Join(critical, ", "))
	case len(elevated) > 0:
		d.CrisisLevel = CrisisModerate
		d.Reason = fmt.Sprintf("moderate: %s", strings.Join(elevated, ", "))
	default:
		d.Reason = "no negative emotion above threshold"
	}

	// --- Independent flags ---
	if in.Trauma.Any() {
		d.TraumaProtocolNeeded = true
		d.TraumaIndicators = in.Trauma.Flags()
	}
	if in.ResponseType.IsMinimal {
		d.MinimalResponseCategory = in.ResponseType.Category
		d.MinimalResponseText = in.ResponseType.OriginalText
	}

	insights := in.Trend.Texts()
	if s.config.MaxInsights > 0 && len(insights) > s.config.MaxInsights {
		insights = insights[:s.config.MaxInsights]
	}
	d.TrendInsightsToSurface = append(d.TrendInsightsToSurface, insights...)

	d.Transition = NextMode(in.PreviousMode, d.CrisisLevel, s.config)
	d.Mode = d.Transition.To
	return d
}
// #endregion selector

// #region lifecycle
// NextMode advances the crisis lifecycle. Without HoldCrisis the mode is a
// direct mapping of the level: none → normal, moderate → elevated,
// critical → crisis. With HoldCrisis, crisis survives moderate readings.
func NextMode(prev Mode, level CrisisLevel, config SelectorConfig) Transition {
	prev = ParseMode(string(prev))

	var next Mode
	switch level {
	case CrisisCritical:
		next = ModeCrisis
	case CrisisModerate:
		next = ModeElevated
		if config.HoldCrisis && prev == ModeCrisis {
			next = ModeCrisis
		}
	default:
		next = ModeNormal
	}
	return Transition{From: prev, To: next, Changed: prev != next}
}
// #endregion lifecycle

// #region helpers
func namesAtLeast(ev geometry.EmotionVector, threshold float64) []string {
	out := []string{}
	for _, d := range geometry.NegativeDimensions {
		if ev.Get(d) >= threshold {
			out = append(out, d.String())
		}
	}
	return out
}
// #endregion helpers
