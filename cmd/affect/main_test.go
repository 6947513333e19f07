package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/replay"
)

// #region parse-emotions-tests

func TestParseEmotions(t *testing.T) {
	ev, err := parseEmotions(" Joy=3, sadness = 6.5 ,fear=0")
	if err != nil {
		t.Fatalf("parseEmotions: %v", err)
	}
	want := geometry.EmotionVector{Joy: 3, Sadness: 6.5}
	if *ev != want {
		t.Errorf("expected %+v, got %+v", want, *ev)
	}
}

func TestParseEmotions_Empty(t *testing.T) {
	ev, err := parseEmotions("  ")
	if err != nil || ev != nil {
		t.Errorf("expected nil vector and no error, got %v, %v", ev, err)
	}
}

func TestParseEmotions_Errors(t *testing.T) {
	for _, in := range []string{"joy", "hope=3", "joy=abc", "anger=11", "fear=-1"} {
		if _, err := parseEmotions(in); err == nil {
			t.Errorf("%q: expected error, got nil", in)
		}
	}
}

// #endregion parse-emotions-tests

// #region output-tests

func TestPrintComparison_AllMatch(t *testing.T) {
	f, err := replay.LoadFixture("../../internal/replay/testdata/escalation.json")
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	results, mismatches := f.Run()

	var buf bytes.Buffer
	if n := printComparison(&buf, results, mismatches); n != 0 {
		t.Errorf("expected no diverging turns, got %d:\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "Summary: 5 total, 5 match, 0 diverge") {
		t.Errorf("unexpected summary:\n%s", buf.String())
	}
}

func TestPrintComparison_Diverge(t *testing.T) {
	results := []replay.Result{
		{TurnID: "a", CrisisLevel: "none", Classification: "Stable", Mode: "normal"},
		{TurnID: "b", CrisisLevel: "critical", Classification: "Volatile", Mode: "crisis"},
	}
	mismatches := []replay.Mismatch{
		{TurnID: "b", Field: "mode", Expected: "elevated", Actual: "crisis"},
		{Field: "turns", Expected: "3", Actual: "2"},
	}

	var buf bytes.Buffer
	if n := printComparison(&buf, results, mismatches); n != 2 {
		t.Errorf("expected 2 diverging entries, got %d", n)
	}
	out := buf.String()
	if !strings.Contains(out, "DIFF") {
		t.Errorf("expected a DIFF row:\n%s", out)
	}
	if !strings.Contains(out, `b: mode expected "elevated", got "crisis"`) {
		t.Errorf("expected mismatch detail:\n%s", out)
	}
	if !strings.Contains(out, "Summary: 2 total, 1 match, 2 diverge") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

// #endregion output-tests

func TestDecodeInput_EmptyIsZero(t *testing.T) {
	var v struct{ A int }
	if err := decodeInput(nil, &v); err != nil || v.A != 0 {
		t.Errorf("expected zero value, got %+v, %v", v, err)
	}
	if err := decodeInput([]byte("{"), &v); err == nil {
		t.Error("expected parse error, got nil")
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("3f2a9c1e-aaaa-bbbb"); got != "3f2a9c1e" {
		t.Errorf("expected 3f2a9c1e, got %s", got)
	}
	if got := shortID("t1"); got != "t1" {
		t.Errorf("expected t1, got %s", got)
	}
}
