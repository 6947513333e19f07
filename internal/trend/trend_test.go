package trend

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
)

// #region helpers
var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func entry(i int, ev geometry.EmotionVector, dominant string, stability float64) Entry {
	return Entry{
		Timestamp:       t0.Add(time.Duration(i) * 24 * time.Hour),
		Emotions:        ev,
		DominantEmotion: dominant,
		StabilityIndex:  stability,
	}
}

func historyOf(entries ...Entry) History {
	var h History
	for _, e := range entries {
		h = h.Append(e)
	}
	return h
}
// #endregion helpers

// #region slope-tests
func TestSlope(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4}, 0},
		{"rising by one", []float64{1, 2, 3, 4, 5}, 1},
		{"falling by two", []float64{9, 7, 5, 3, 1}, -2},
		{"flat", []float64{3, 3, 3}, 0},
		{"two points", []float64{2, 5}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slope(tt.values)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}
// #endregion slope-tests

// #region analyze-tests
func TestAnalyze_ShortHistoryIsEmpty(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	for _, h := range []History{{}, historyOf(entry(0, geometry.EmotionVector{Sadness: 9}, "Sadness", 0.1))} {
		res := a.Analyze(h)
		if len(res.Insights) != 0 {
			t.Errorf("expected no insights for %d entries, got %v", h.Len(), res.Texts())
		}
		if res.Insights == nil {
			t.Error("expected non-nil empty insights")
		}
	}
}

func TestAnalyze_IncreasingSadness(t *testing.T) {
	// sadness 1,3,5,7,9 → slope 2; joy constant
	var entries []Entry
	for i := 0; i < 5; i++ {
		entries = append(entries, entry(i, geometry.EmotionVector{Joy: 4, Sadness: float64(1 + 2*i)}, "", 0.5))
	}
	res := NewAnalyzer(DefaultConfig()).Analyze(historyOf(entries...))

	want := "Your sadness levels have been increasing over recent sessions."
	found := false
	for _, in := range res.Insights {
		if in.Text == want {
			found = true
			if in.Kind != KindDirection || in.Direction != "increasing" || in.Dimension != "sadness" {
				t.Errorf("unexpected insight fields: %+v", in)
			}
		}
		if in.Dimension == "joy" {
			t.Errorf("flat joy should not be reported: %+v", in)
		}
	}
	if !found {
		t.Errorf("expected %q in %v", want, res.Texts())
	}
	if math.Abs(res.Slopes["sadness"]-2) > 1e-9 {
		t.Errorf("expected sadness slope 2, got %f", res.Slopes["sadness"])
	}
}

func TestAnalyze_UnitSlopeIsReported(t *testing.T) {
	var entries []Entry
	for i := 0; i < 5; i++ {
		entries = append(entries, entry(i, geometry.EmotionVector{Fear: float64(1 + i)}, "", 0.5))
	}
	res := NewAnalyzer(DefaultConfig()).Analyze(historyOf(entries...))
	want := "Your fear levels have been increasing over recent sessions."
	if len(res.Insights) != 1 || res.Insights[0].Text != want {
		t.Errorf("expected only %q, got %v", want, res.Texts())
	}
}

func TestAnalyze_GentleSlopeIsNotReported(t *testing.T) {
	// 2, 2.9, 3.8, 4.7 → slope 0.9
	var entries []Entry
	for i := 0; i < 4; i++ {
		entries = append(entries, entry(i, geometry.EmotionVector{Fear: 2 + 0.9*float64(i)}, "", 0.5))
	}
	res := NewAnalyzer(DefaultConfig()).Analyze(historyOf(entries...))
	for _, in := range res.Insights {
		if in.Kind == KindDirection {
			t.Errorf("slope below 1 must not be reported, got %q", in.Text)
		}
	}
}

func TestAnalyze_Decreasing(t *testing.T) {
	var entries []Entry
	for i := 0; i < 4; i++ {
		entries = append(entries, entry(i, geometry.EmotionVector{Anger: float64(9 - 3*i)}, "", 0.5))
	}
	res := NewAnalyzer(DefaultConfig()).Analyze(historyOf(entries...))
	if len(res.Insights) != 1 || !strings.Contains(res.Insights[0].Text, "anger levels have been decreasing") {
		t.Errorf("expected single decreasing anger insight, got %v", res.Texts())
	}
}

func TestAnalyze_Stability(t *testing.T) {
	tests := []struct {
		name      string
		stability float64
		direction string
	}{
		{"low", 0.2, "low"},
		{"middle", 0.5, ""},
		{"high", 2.0, "high"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := historyOf(
				entry(0, geometry.EmotionVector{}, "", tt.stability),
				entry(1, geometry.EmotionVector{}, "", tt.stability),
			)
			res := NewAnalyzer(DefaultConfig()).Analyze(h)
			got := ""
			for _, in := range res.Insights {
				if in.Kind == KindStability {
					got = in.Direction
				}
			}
			if got != tt.direction {
				t.Errorf("expected stability direction %q, got %q", tt.direction, got)
			}
		})
	}
}

func TestAnalyze_RecurringPattern(t *testing.T) {
	h := historyOf(
		entry(0, geometry.EmotionVector{Fear: 5}, "Fear", 0.5),
		entry(1, geometry.EmotionVector{Fear: 5}, "Fear", 0.5),
		entry(2, geometry.EmotionVector{Joy: 5}, "Joy", 0.5),
		entry(3, geometry.EmotionVector{Fear: 5}, "Fear", 0.5),
	)
	res := NewAnalyzer(DefaultConfig()).Analyze(h)
	var recurring []Insight
	for _, in := range res.Insights {
		if in.Kind == KindRecurring {
			recurring = append(recurring, in)
		}
	}
	if len(recurring) != 1 || recurring[0].Dimension != "Fear" {
		t.Errorf("expected one recurring Fear insight, got %+v", recurring)
	}
}

func TestAnalyze_OnlyLastFiveCount(t *testing.T) {
	// three old Fear sessions fall outside the window
	var entries []Entry
	for i := 0; i < 3; i++ {
		entries = append(entries, entry(i, geometry.EmotionVector{}, "Fear", 0.5))
	}
	for i := 3; i < 8; i++ {
		entries = append(entries, entry(i, geometry.EmotionVector{}, "Joy", 0.5))
	}
	res := NewAnalyzer(DefaultConfig()).Analyze(historyOf(entries...))
	for _, in := range res.Insights {
		if in.Dimension == "Fear" {
			t.Errorf("entries outside the window must be ignored: %q", in.Text)
		}
	}
	if res.WindowSize != WindowSize {
		t.Errorf("expected window size %d, got %d", WindowSize, res.WindowSize)
	}
}
// #endregion analyze-tests

// #region history-tests
func TestHistory_AppendCapsAndCopies(t *testing.T) {
	var h History
	for i := 0; i < HistoryCap+3; i++ {
		next := h.Append(entry(i, geometry.EmotionVector{Joy: float64(i % 10)}, "Joy", 1))
		if next.Len() < h.Len() {
			t.Fatalf("append shrank history %d → %d", h.Len(), next.Len())
		}
		h = next
	}
	if h.Len() != HistoryCap {
		t.Fatalf("expected %d entries, got %d", HistoryCap, h.Len())
	}
	first := h.Entries()[0]
	if !first.Timestamp.Equal(t0.Add(3 * 24 * time.Hour)) {
		t.Errorf("expected oldest entry to be session 3, got %v", first.Timestamp)
	}

	before := h
	_ = h.Append(entry(99, geometry.EmotionVector{}, "", 0))
	if before.Len() != HistoryCap {
		t.Error("Append must not mutate the receiver")
	}
	last, _ := before.Last()
	if last.Timestamp.Equal(t0.Add(99 * 24 * time.Hour)) {
		t.Error("Append leaked into the receiver")
	}
}

func TestHistory_Window(t *testing.T) {
	h := historyOf(entry(0, geometry.EmotionVector{}, "", 0), entry(1, geometry.EmotionVector{}, "", 0))
	if got := len(h.Window(5)); got != 2 {
		t.Errorf("expected window of 2, got %d", got)
	}
	if h.Window(0) != nil {
		t.Error("expected nil window for n=0")
	}
}

func TestHistory_JSON(t *testing.T) {
	var entries []Entry
	for i := 0; i < 12; i++ {
		entries = append(entries, entry(i, geometry.EmotionVector{Sadness: 2}, "Sadness", 1))
	}
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if h.Len() != HistoryCap {
		t.Errorf("expected decode to cap at %d, got %d", HistoryCap, h.Len())
	}
	out, err := json.Marshal(History{})
	if err != nil || string(out) != "[]" {
		t.Errorf("expected empty array, got %s (err %v)", out, err)
	}
}

func TestNewEntry_Clamps(t *testing.T) {
	ev := geometry.EmotionVector{Sadness: 14}
	e := NewEntry(t0, ev, geometry.Transform(ev), "Sadness")
	if e.Emotions.Sadness != 10 {
		t.Errorf("expected clamped sadness 10, got %f", e.Emotions.Sadness)
	}
}

func TestNewHistory_ClampsSuppliedEntries(t *testing.T) {
	h := NewHistory([]Entry{
		{Timestamp: t0, Emotions: geometry.EmotionVector{Sadness: 12, Joy: -3}, StabilityIndex: math.NaN()},
		{Timestamp: t0, Emotions: geometry.EmotionVector{Sadness: 11}, StabilityIndex: 0.5},
	})
	got := h.Entries()
	if got[0].Emotions.Sadness != 10 || got[0].Emotions.Joy != 0 || got[1].Emotions.Sadness != 10 {
		t.Errorf("expected clamped intensities, got %+v / %+v", got[0].Emotions, got[1].Emotions)
	}
	if got[0].StabilityIndex != 0 || got[1].StabilityIndex != 0.5 {
		t.Errorf("expected NaN stability guarded to 0, got %f / %f", got[0].StabilityIndex, got[1].StabilityIndex)
	}

	var decoded History
	if err := json.Unmarshal([]byte(`[{"emotions":{"fear":25}}]`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e, _ := decoded.Last(); e.Emotions.Fear != 10 {
		t.Errorf("expected decoded fear clamped to 10, got %f", e.Emotions.Fear)
	}
}
// #endregion history-tests
