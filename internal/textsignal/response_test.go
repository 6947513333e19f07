package textsignal

import (
	"testing"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
)

// #region response-type-tests
func TestClassifyResponseType(t *testing.T) {
	tests := []struct {
		text     string
		minimal  bool
		category ResponseCategory
	}{
		{"ok", true, CategoryDismissive},
		{"OK.", true, CategoryDismissive},
		{"whatever", true, CategoryDismissive},
		{"  Fine  ", true, CategoryDismissive},
		{"mhm", true, CategoryAcknowledgment},
		{"uh huh", true, CategoryAcknowledgment},
		{"yeah", true, CategoryAcknowledgment},
		{"I don't know", true, CategoryUncertain},
		{"i guess", true, CategoryUncertain},
		{"maybe", true, CategoryUncertain},
		{"yes", true, CategoryNormal},
		{"exactly", true, CategoryNormal},
		{"hey", true, CategoryNormal},
		{"I had a long day at work and I feel drained", false, CategoryNormal},
		{"okay but why", false, CategoryNormal},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res := ClassifyResponseType(userMsgs(tt.text))
			if res.IsMinimal != tt.minimal {
				t.Errorf("expected minimal=%v, got %v", tt.minimal, res.IsMinimal)
			}
			if res.Category != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, res.Category)
			}
		})
	}
}

func TestClassifyResponseType_NoMessages(t *testing.T) {
	res := ClassifyResponseType(nil)
	if res.IsMinimal || res.Category != CategoryNormal {
		t.Errorf("expected normal non-minimal, got %+v", res)
	}
}

func TestClassifyResponseType_EmptyContent(t *testing.T) {
	res := ClassifyResponseType([]Message{{Role: RoleUser}})
	if res.IsMinimal {
		t.Errorf("expected empty content to be non-minimal, got %+v", res)
	}
}

func TestClassifyResponseType_UsesLastUserMessage(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "k"},
		{Role: RoleAssistant, Content: "I'm here whenever you want to talk about it at length."},
	}
	res := ClassifyResponseType(msgs)
	if !res.IsMinimal || res.Category != CategoryDismissive || res.OriginalText != "k" {
		t.Errorf("expected dismissive 'k', got %+v", res)
	}
}
// #endregion response-type-tests

// #region trauma-tests
func TestAssessTraumaIndicators_EmotionRule(t *testing.T) {
	tests := []struct {
		name string
		ev   geometry.EmotionVector
		want bool
	}{
		{"both at threshold", geometry.EmotionVector{Fear: 7, Sadness: 6}, true},
		{"fear below", geometry.EmotionVector{Fear: 6.9, Sadness: 9}, false},
		{"sadness below", geometry.EmotionVector{Fear: 10, Sadness: 5}, false},
		{"clamped", geometry.EmotionVector{Fear: 20, Sadness: 12}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessTraumaIndicators(tt.ev, nil)
			if got.Dissociation != tt.want {
				t.Errorf("expected dissociation=%v, got %v", tt.want, got.Dissociation)
			}
			if got.Hypervigilance || got.Avoidance || got.Intrusion {
				t.Errorf("emotion rule must only set dissociation, got %+v", got)
			}
		})
	}
}

func TestAssessTraumaIndicators_Keywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want TraumaIndicators
	}{
		{"numb", "I just feel numb all the time", TraumaIndicators{Dissociation: true}},
		{"on edge", "i'm always on edge at night", TraumaIndicators{Hypervigilance: true}},
		{"avoidance", "I don't want to talk about it", TraumaIndicators{Avoidance: true}},
		{"flashbacks", "the flashbacks started again", TraumaIndicators{Intrusion: true}},
		{"triggered raises two", "that song triggered me", TraumaIndicators{Intrusion: true, Hypervigilance: true}},
		{"partial word ignored", "the numbers look fine", TraumaIndicators{}},
		{"not really is not 'not real'", "it's not really a problem", TraumaIndicators{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessTraumaIndicators(geometry.EmotionVector{}, userMsgs(tt.text))
			if got.Dissociation != tt.want.Dissociation || got.Hypervigilance != tt.want.Hypervigilance ||
				got.Avoidance != tt.want.Avoidance || got.Intrusion != tt.want.Intrusion {
				t.Errorf("expected %v, got %v (matched %v)", tt.want.Flags(), got.Flags(), got.MatchedKeywords)
			}
		})
	}
}

func TestAssessTraumaIndicators_OnlyLastThree(t *testing.T) {
	msgs := userMsgs("I keep having nightmares", "a", "b", "c")
	got := AssessTraumaIndicators(geometry.EmotionVector{}, msgs)
	if got.Any() {
		t.Errorf("expected older messages to be ignored, got %v", got.Flags())
	}
	if got.MatchedKeywords == nil {
		t.Error("expected non-nil matched keywords")
	}
}
// #endregion trauma-tests
