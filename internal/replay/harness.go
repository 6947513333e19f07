package replay

import (
	"strconv"

	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/protocol"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
	"github.com/danielpatrickdp/emotion-geometry/internal/trend"
)

// #region types
// Turn is one recorded invocation. Request carries only what the user sent
// on this turn; Replay supplies history, personal context, the running
// conversation and the previous mode.
type Turn struct {
	TurnID  string
	Request engine.Request
}

// Result captures the decision fields of one replayed turn.
type Result struct {
	TurnID          string
	CrisisLevel     string
	Classification  string
	MentalStability string
	Mode            string
	MinimalCategory string
	Name            string
	Reason          string

	Response engine.Response
}

// Mismatch is one expected field that differed.
type Mismatch struct {
	TurnID   string
	Field    string
	Expected string
	Actual   string
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTurns  int
	Critical    int
	Moderate    int
	None        int
	ModeChanges int
	Mismatches  int
	FinalMode   protocol.Mode
}

// #endregion types

// #region replay
// Replay runs turns in order through e, threading the carry-over state a
// session store would persist between them. Operates entirely in-memory.
func Replay(e *engine.Engine, turns []Turn) []Result {
	results := make([]Result, 0, len(turns))

	var (
		history  []trend.Entry
		personal textsignal.PersonalContext
		messages []textsignal.Message
		mode     = protocol.ModeNormal
	)

	for _, turn := range turns {
		req := turn.Request
		messages = append(messages, req.Messages...)

		req.History = history
		pc := personal
		req.PersonalContext = &pc
		req.Messages = messages
		req.PreviousMode = mode

		resp := e.Analyze(req)

		history = resp.History
		personal = resp.PersonalContext
		mode = resp.Directive.Mode

		results = append(results, Result{
			TurnID:          turn.TurnID,
			CrisisLevel:     string(resp.Directive.CrisisLevel),
			Classification:  string(resp.Classification.Classification),
			MentalStability: string(resp.Classification.MentalStability),
			Mode:            string(resp.Directive.Mode),
			MinimalCategory: string(resp.Directive.MinimalResponseCategory),
			Name:            resp.PersonalContext.Name,
			Reason:          resp.Directive.Reason,
			Response:        resp,
		})
	}

	return results
}

// Compare checks results against expectations turn by turn. Empty expected
// fields are not checked. A length difference is reported as a "turns"
// mismatch.
func Compare(results []Result, expected []Expected) []Mismatch {
	var out []Mismatch
	if len(results) != len(expected) {
		out = append(out, Mismatch{Field: "turns", Expected: strconv.Itoa(len(expected)), Actual: strconv.Itoa(len(results))})
	}
	n := len(results)
	if len(expected) < n {
		n = len(expected)
	}
	for i := 0; i < n; i++ {
		r, x := results[i], expected[i]
		check := func(field, want, got string) {
			if want != "" && want != got {
				out = append(out, Mismatch{TurnID: r.TurnID, Field: field, Expected: want, Actual: got})
			}
		}
		check("turn_id", x.TurnID, r.TurnID)
		check("crisis_level", x.CrisisLevel, r.CrisisLevel)
		check("classification", x.Classification, r.Classification)
		check("mental_stability", x.MentalStability, r.MentalStability)
		check("mode", x.Mode, r.Mode)
		check("minimal_category", x.MinimalCategory, r.MinimalCategory)
		check("name", x.Name, r.Name)
	}
	return out
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result, mismatches []Mismatch) Summary {
	s := Summary{
		TotalTurns: len(results),
		Mismatches: len(mismatches),
		FinalMode:  protocol.ModeNormal,
	}
	for _, r := range results {
		switch protocol.CrisisLevel(r.CrisisLevel) {
		case protocol.CrisisCritical:
			s.Critical++
		case protocol.CrisisModerate:
			s.Moderate++
		default:
			s.None++
		}
		if r.Response.Directive.Transition.Changed {
			s.ModeChanges++
		}
		s.FinalMode = protocol.Mode(r.Mode)
	}
	return s
}

// #endregion replay
