package textsignal

import (
	"regexp"
	"sort"
	"strings"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
)

// TraumaWindow is the number of recent user messages scanned for trauma language.
const TraumaWindow = 3

// Emotion thresholds for the dissociation rule.
const (
	DissociationFear    = 7.0
	DissociationSadness = 6.0
)

// #region trauma-keywords
type traumaFlag int

const (
	flagDissociation traumaFlag = 1 << iota
	flagHypervigilance
	flagAvoidance
	flagIntrusion
)

type traumaKeyword struct {
	phrase string
	flags  traumaFlag
	re     *regexp.Regexp
}

// traumaKeywords maps a phrase to the indicators it raises. Phrases are
// matched as whole words against lower-cased text.
var traumaKeywords = compileTraumaKeywords([]traumaKeyword{
	{phrase: "numb", flags: flagDissociation},
	{phrase: "detached", flags: flagDissociation},
	{phrase: "not real", flags: flagDissociation},
	{phrase: "unreal", flags: flagDissociation},
	{phrase: "out of my body", flags: flagDissociation},
	{phrase: "outside my body", flags: flagDissociation},
	{phrase: "spaced out", flags: flagDissociation},
	{phrase: "zoned out", flags: flagDissociation},
	{phrase: "can't feel anything", flags: flagDissociation},
	{phrase: "on edge", flags: flagHypervigilance},
	{phrase: "can't relax", flags: flagHypervigilance},
	{phrase: "jumpy", flags: flagHypervigilance},
	{phrase: "startle", flags: flagHypervigilance},
	{phrase: "always watching", flags: flagHypervigilance},
	{phrase: "looking over my shoulder", flags: flagHypervigilance},
	{phrase: "not safe", flags: flagHypervigilance},
	{phrase: "avoid", flags: flagAvoidance},
	{phrase: "avoided", flags: flagAvoidance},
	{phrase: "avoiding", flags: flagAvoidance},
	{phrase: "don't want to talk about", flags: flagAvoidance},
	{phrase: "can't talk about", flags: flagAvoidance},
	{phrase: "stay away from", flags: flagAvoidance},
	{phrase: "can't go back", flags: flagAvoidance},
	{phrase: "flashback", flags: flagIntrusion},
	{phrase: "flashbacks", flags: flagIntrusion},
	{phrase: "nightmare", flags: flagIntrusion},
	{phrase: "nightmares", flags: flagIntrusion},
	{phrase: "keeps replaying", flags: flagIntrusion},
	{phrase: "can't stop thinking about", flags: flagIntrusion},
	{phrase: "intrusive", flags: flagIntrusion},
	{phrase: "triggered", flags: flagIntrusion | flagHypervigilance},
	{phrase: "ptsd", flags: flagIntrusion | flagHypervigilance},
	{phrase: "trauma", flags: flagIntrusion},
	{phrase: "traumatic", flags: flagIntrusion},
})

func compileTraumaKeywords(kws []traumaKeyword) []traumaKeyword {
	for i := range kws {
		kws[i].re = wholeWords([]string{kws[i].phrase})
	}
	return kws
}
// #endregion trauma-keywords

// #region assess
// AssessTraumaIndicators combines an emotion rule (high fear with high
// sadness implies dissociation) with a keyword scan of the last
// TraumaWindow user messages. Each indicator is independent.
func AssessTraumaIndicators(emotions geometry.EmotionVector, messages []Message) TraumaIndicators {
	ev := emotions.Clamp()
	var flags traumaFlag
	if ev.Fear >= DissociationFear && ev.Sadness >= DissociationSadness {
		flags |= flagDissociation
	}

	var matched []string
	text := recentUserText(lastUserMessages(messages, TraumaWindow), TraumaWindow)
	if text != "" {
		for _, m := range traumaKeywords {
			if m.re.MatchString(text) {
				flags |= m.flags
				matched = append(matched, m.phrase)
			}
		}
	}
	sort.Strings(matched)

	return TraumaIndicators{
		Dissociation:    flags&flagDissociation != 0,
		Hypervigilance:  flags&flagHypervigilance != 0,
		Avoidance:       flags&flagAvoidance != 0,
		Intrusion:       flags&flagIntrusion != 0,
		MatchedKeywords: append([]string{}, matched...),
	}
}

func lastUserMessages(messages []Message, n int) []Message {
	var out []Message
	for i := len(messages) - 1; i >= 0 && len(out) < n; i-- {
		if messages[i].FromUser() && strings.TrimSpace(messages[i].Content) != "" {
			out = append(out, messages[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
// #endregion assess
