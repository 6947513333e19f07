package orchestrator

// #region imports
import (
	"strings"
	"unicode"
)

// #endregion

// #region deflection-patterns

var deflectionPatterns = []string{
	"what can i do for you",
	"how can i help",
	"how can i assist",
	"is there anything else",
	"feel free to ask",
	"let me know if you have any other questions",
}

// #endregion

// #region disclaimer-patterns

var disclaimerPatterns = []string{
	"as an ai",
	"as a language model",
	"i'm just an ai",
	"i am just an ai",
	"i don't have feelings",
	"i do not have feelings",
	"i cannot provide",
	"i can't provide",
	"i'm unable to",
	"i am unable to",
	"my programming",
	"my training",
}

// #endregion

// #region limits

const (
	maxSentences   = 6 // prompt asks for 2-4
	minAcceptScore = 0.4
	failureCap     = 0.35
)

// #endregion

// #region evaluate

// EvaluateReply scores a reply via string analysis. No model call.
// userText is the latest user message, used to measure engagement.
func EvaluateReply(userText, reply string) ReplyEvaluation {
	trimmed := strings.TrimSpace(reply)
	lower := strings.ToLower(trimmed)

	failure := detectFailure(trimmed, lower)
	quality := scoreQuality(userText, trimmed, lower)

	// A detected failure caps quality so the retry fires
	if failure != FailureNone && quality > failureCap {
		quality = failureCap
	}

	return ReplyEvaluation{
		Quality:     quality,
		FailureType: failure,
		ShouldRetry: quality < minAcceptScore && failure != FailureNone,
	}
}

// #endregion

// #region detect-failure

func detectFailure(trimmed, lower string) FailureType {
	if len(strings.TrimFunc(trimmed, unicode.IsSpace)) == 0 {
		return FailureEmpty
	}

	if hasRepetition(lower) {
		return FailureRepetition
	}

	// Disclaimer cascade: 2+ distinct matches
	if countMatches(lower, disclaimerPatterns) >= 2 {
		return FailureDisclaimer
	}

	words := strings.Fields(trimmed)
	if countMatches(lower, deflectionPatterns) > 0 && len(words) < 30 {
		return FailureDeflection
	}

	if len(sentences(lower)) > maxSentences {
		return FailureOverlong
	}

	return FailureNone
}

// #endregion

// #region repetition-check

func hasRepetition(lower string) bool {
	parts := sentences(lower)
	if len(parts) < 3 {
		return false
	}
	counts := make(map[string]int)
	for _, s := range parts {
		if len(s) > 10 {
			counts[s]++
		}
	}
	for _, c := range counts {
		if c >= 3 {
			return true
		}
	}
	return false
}

func sentences(lower string) []string {
	raw := strings.FieldsFunc(lower, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := raw[:0]
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// #endregion

// #region quality-score

func scoreQuality(userText, trimmed, lower string) float32 {
	wordCount := len(strings.Fields(trimmed))

	// Length adequacy: under 8 words ramps up, 8-80 full, past 80 decays
	var lengthAdequacy float32
	switch {
	case wordCount < 8:
		lengthAdequacy = float32(wordCount) / 8.0
	case wordCount <= 80:
		lengthAdequacy = 1.0
	default:
		lengthAdequacy = 80.0 / float32(wordCount)
	}

	// Engagement: does the reply pick up the user's own words?
	userWords := strings.Fields(strings.ToLower(userText))
	replyWords := make(map[string]bool)
	for _, w := range strings.Fields(lower) {
		replyWords[strings.Trim(w, ".,!?;:'\"")] = true
	}
	shared, eligible := 0, 0
	for _, uw := range userWords {
		uw = strings.Trim(uw, ".,!?;:'\"")
		if len(uw) <= 3 {
			continue
		}
		eligible++
		if replyWords[uw] {
			shared++
		}
	}
	engagement := float32(0.5) // nothing to engage with
	if eligible > 0 {
		engagement = float32(shared) / float32(eligible)
	}

	// Invitation: a question keeps the conversation open
	var invitation float32
	if strings.Contains(trimmed, "?") {
		invitation = 1.0
	}

	disclaimerDensity := float32(countMatches(lower, disclaimerPatterns)) / float32(len(disclaimerPatterns))

	quality := 0.35*lengthAdequacy + 0.25*engagement + 0.2*invitation + 0.2*(1.0-disclaimerDensity)
	if quality > 1.0 {
		quality = 1.0
	}
	if quality < 0.0 {
		quality = 0.0
	}
	return quality
}

func countMatches(lower string, patterns []string) int {
	n := 0
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			n++
		}
	}
	return n
}

// #endregion
