package protocol

import (
	"testing"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
	"github.com/danielpatrickdp/emotion-geometry/internal/trend"
)

// #region crisis-tests
func TestSelect_CrisisPriority(t *testing.T) {
	tests := []struct {
		name  string
		ev    geometry.EmotionVector
		level CrisisLevel
		mode  Mode
	}{
		{"critical example", geometry.EmotionVector{Sadness: 9, Anger: 2, Fear: 6, Disgust: 3}, CrisisCritical, ModeCrisis},
		{"moderate", geometry.EmotionVector{Fear: 6, Joy: 9}, CrisisModerate, ModeElevated},
		{"just below moderate", geometry.EmotionVector{Disgust: 5.9}, CrisisNone, ModeNormal},
		{"joy does not escalate", geometry.EmotionVector{Joy: 10, Surprise: 10}, CrisisNone, ModeNormal},
		{"empty", geometry.EmotionVector{}, CrisisNone, ModeNormal},
		{"clamped", geometry.EmotionVector{Anger: 50}, CrisisCritical, ModeCrisis},
	}
	sel := NewSelector(DefaultSelectorConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sel.Select(Input{Emotions: tt.ev})
			if d.CrisisLevel != tt.level {
				t.Errorf("expected level %s, got %s (%s)", tt.level, d.CrisisLevel, d.Reason)
			}
			if d.Mode != tt.mode {
				t.Errorf("expected mode %s, got %s", tt.mode, d.Mode)
			}
		})
	}
}

func TestSelect_CriticalEmotionsListed(t *testing.T) {
	d := NewSelector(DefaultSelectorConfig()).Select(Input{
		Emotions: geometry.EmotionVector{Sadness: 9, Fear: 8, Anger: 6},
	})
	if len(d.CriticalEmotions) != 2 || d.CriticalEmotions[0] != "sadness" || d.CriticalEmotions[1] != "fear" {
		t.Errorf("expected [sadness fear], got %v", d.CriticalEmotions)
	}
	if len(d.ElevatedEmotions) != 3 {
		t.Errorf("expected three elevated emotions, got %v", d.ElevatedEmotions)
	}
}
// #endregion crisis-tests

// #region flag-tests
func TestSelect_IndependentFlags(t *testing.T) {
	in := Input{
		Emotions:     geometry.EmotionVector{Joy: 3},
		ResponseType: textsignal.ResponseType{IsMinimal: true, Category: textsignal.CategoryDismissive, OriginalText: "ok"},
		Trauma:       textsignal.TraumaIndicators{Avoidance: true},
	}
	d := NewSelector(DefaultSelectorConfig()).Select(in)
	if d.CrisisLevel != CrisisNone {
		t.Errorf("expected no crisis, got %s", d.CrisisLevel)
	}
	if !d.TraumaProtocolNeeded {
		t.Error("expected trauma protocol")
	}
	if len(d.TraumaIndicators) != 1 || d.TraumaIndicators[0] != "avoidance" {
		t.Errorf("expected [avoidance], got %v", d.TraumaIndicators)
	}
	if d.MinimalResponseCategory != textsignal.CategoryDismissive {
		t.Errorf("expected dismissive, got %s", d.MinimalResponseCategory)
	}
}

func TestSelect_NotMinimalIsNone(t *testing.T) {
	d := NewSelector(DefaultSelectorConfig()).Select(Input{
		ResponseType: textsignal.ResponseType{Category: textsignal.CategoryNormal},
	})
	if d.MinimalResponseCategory != MinimalNone {
		t.Errorf("expected none, got %s", d.MinimalResponseCategory)
	}
	if d.TraumaProtocolNeeded {
		t.Error("expected no trauma protocol")
	}
}

func TestSelect_TrendInsights(t *testing.T) {
	analysis := trend.Analysis{Insights: []trend.Insight{{Text: "a"}, {Text: "b"}, {Text: "c"}}}

	d := NewSelector(DefaultSelectorConfig()).Select(Input{Trend: analysis})
	if len(d.TrendInsightsToSurface) != 3 {
		t.Errorf("expected all insights, got %v", d.TrendInsightsToSurface)
	}

	cfg := DefaultSelectorConfig()
	cfg.MaxInsights = 2
	d = NewSelector(cfg).Select(Input{Trend: analysis})
	if len(d.TrendInsightsToSurface) != 2 || d.TrendInsightsToSurface[1] != "b" {
		t.Errorf("expected first two insights, got %v", d.TrendInsightsToSurface)
	}

	d = NewSelector(DefaultSelectorConfig()).Select(Input{})
	if d.TrendInsightsToSurface == nil {
		t.Error("expected non-nil empty insights")
	}
}
// #endregion flag-tests

// #region lifecycle-tests
func TestNextMode_Stateless(t *testing.T) {
	cfg := DefaultSelectorConfig()
	tests := []struct {
		prev    Mode
		level   CrisisLevel
		want    Mode
		changed bool
	}{
		{ModeNormal, CrisisNone, ModeNormal, false},
		{ModeNormal, CrisisModerate, ModeElevated, true},
		{ModeElevated, CrisisCritical, ModeCrisis, true},
		{ModeCrisis, CrisisModerate, ModeElevated, true},
		{ModeCrisis, CrisisNone, ModeNormal, true},
		{"", CrisisCritical, ModeCrisis, true},
	}
	for _, tt := range tests {
		tr := NextMode(tt.prev, tt.level, cfg)
		if tr.To != tt.want || tr.Changed != tt.changed {
			t.Errorf("%s + %s: expected %s (changed=%v), got %s (changed=%v)",
				tt.prev, tt.level, tt.want, tt.changed, tr.To, tr.Changed)
		}
	}
}

func TestNextMode_HoldCrisis(t *testing.T) {
	cfg := DefaultSelectorConfig()
	cfg.HoldCrisis = true

	if tr := NextMode(ModeCrisis, CrisisModerate, cfg); tr.To != ModeCrisis || tr.Changed {
		t.Errorf("expected crisis held, got %+v", tr)
	}
	if tr := NextMode(ModeCrisis, CrisisNone, cfg); tr.To != ModeNormal {
		t.Errorf("expected release to normal, got %+v", tr)
	}
	if tr := NextMode(ModeElevated, CrisisModerate, cfg); tr.To != ModeElevated {
		t.Errorf("expected elevated, got %+v", tr)
	}
}

func TestSelect_UsesPreviousMode(t *testing.T) {
	cfg := DefaultSelectorConfig()
	cfg.HoldCrisis = true
	d := NewSelector(cfg).Select(Input{
		Emotions:     geometry.EmotionVector{Fear: 6},
		PreviousMode: ModeCrisis,
	})
	if d.Mode != ModeCrisis || d.CrisisLevel != CrisisModerate {
		t.Errorf("expected held crisis with moderate level, got mode=%s level=%s", d.Mode, d.CrisisLevel)
	}
	if d.Transition.From != ModeCrisis {
		t.Errorf("expected transition from crisis, got %s", d.Transition.From)
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("crisis") != ModeCrisis || ParseMode("elevated") != ModeElevated {
		t.Error("expected known modes to parse")
	}
	if ParseMode("panic") != ModeNormal || ParseMode("") != ModeNormal {
		t.Error("expected unknown modes to be normal")
	}
}
// #endregion lifecycle-tests
