package textsignal

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ContextWindow is the number of recent messages scanned for personal details.
const ContextWindow = 5

// #region patterns
// capturePattern pairs a regex with the words its capture group must not be.
type capturePattern struct {
	re      *regexp.Regexp
	exclude map[string]bool
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Captures after "i'm" / "i am" that describe a state rather than a name.
var notNames = wordSet(
	"a", "an", "the", "so", "not", "just", "really", "very", "too", "pretty", "kind", "sort",
	"feeling", "doing", "going", "having", "getting", "being", "trying", "thinking", "working",
	"struggling", "still", "always", "never", "also", "here", "there", "back", "done", "fine",
	"ok", "okay", "good", "great", "well", "alright", "tired", "sad", "happy", "sorry", "sure",
	"scared", "afraid", "angry", "mad", "anxious", "worried", "stressed", "lonely", "depressed",
	"overwhelmed", "exhausted", "upset", "glad", "lost", "confused", "hurt", "alone", "at", "in",
	"on", "from", "with", "about", "like", "and", "but", "no", "all", "currently", "literally",
	"honestly", "actually", "frustrated", "nervous", "bored", "busy", "sick",
)

// Captures that look like an occupation slot but are not one.
var notJobs = wordSet(
	"feeling", "doing", "going", "having", "bit", "little", "lot", "mess", "wreck", "failure",
	"person", "stressful", "hard", "tough", "boring", "demanding", "awful", "great", "fine",
	"ok", "okay", "good", "bad", "killing", "draining", "exhausting", "terrible",
)

var notInterests = wordSet(
	"it", "that", "this", "you", "when", "how", "what", "the", "a", "an", "my", "your", "being",
	"him", "her", "them", "me", "myself", "going", "feeling", "not", "to", "and", "but", "so",
	"there", "here", "having", "doing",
)

// Name and job chains are tried in order; the first acceptable capture wins.
var namePatterns = []capturePattern{
	{re: regexp.MustCompile(`\bmy name is (\w+)`)},
	{re: regexp.MustCompile(`\bcall me (\w+)`)},
	{re: regexp.MustCompile(`\bi'm (\w+)`), exclude: notNames},
	{re: regexp.MustCompile(`\bi am (\w+)`), exclude: notNames},
}

var jobPatterns = []capturePattern{
	{re: regexp.MustCompile(`\bi work as (?:a |an )?(\w+)`), exclude: notJobs},
	{re: regexp.MustCompile(`\bmy job is (?:a |an )?(\w+)`), exclude: notJobs},
	{re: regexp.MustCompile(`\bi'm (?:a|an) (\w+)`), exclude: notJobs},
	{re: regexp.MustCompile(`\bi am (?:a|an) (\w+)`), exclude: notJobs},
}

// Every match of every interest pattern is collected.
var interestPatterns = []capturePattern{
	{re: regexp.MustCompile(`\bi (?:really )?love (?:to )?(\w+)`), exclude: notInterests},
	{re: regexp.MustCompile(`\bi (?:really )?enjoy (\w+)`), exclude: notInterests},
	{re: regexp.MustCompile(`\bi (?:really )?like (?:to )?(\w+)`), exclude: notInterests},
	{re: regexp.MustCompile(`\bmy hobby is (\w+)`), exclude: notInterests},
	{re: regexp.MustCompile(`\bmy hobbies are (\w+)`), exclude: notInterests},
}

var relationshipKeywords = []string{
	"husband", "wife", "partner", "boyfriend", "girlfriend", "spouse", "kids", "children",
	"family", "parents", "mom", "dad", "sister", "brother",
}

var relationshipRe = wholeWords(relationshipKeywords)

// topicTable maps a topic name to the words that raise it.
var topicTable = []struct {
	topic string
	re    *regexp.Regexp
}{
	{"work", wholeWords([]string{"work", "job", "boss", "coworker", "coworkers", "office", "career", "deadline", "deadlines"})},
	{"family", wholeWords([]string{"family", "mom", "dad", "parents", "sister", "brother", "kids", "children"})},
	{"relationships", wholeWords([]string{"partner", "boyfriend", "girlfriend", "husband", "wife", "breakup", "divorce", "dating"})},
	{"sleep", wholeWords([]string{"sleep", "insomnia", "nightmare", "nightmares", "awake"})},
	{"health", wholeWords([]string{"sick", "illness", "pain", "doctor", "hospital", "health", "diagnosis"})},
	{"school", wholeWords([]string{"school", "exam", "exams", "class", "homework", "university", "college"})},
	{"money", wholeWords([]string{"money", "rent", "bills", "debt", "finances", "loan"})},
	{"loss", wholeWords([]string{"died", "death", "funeral", "grief", "grieving", "passed away"})},
	{"loneliness", wholeWords([]string{"lonely", "alone", "isolated"})},
}

func wholeWords(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
// #endregion patterns

// #region extract
// ExtractPersonalInfo merges details found in the last ContextWindow user
// messages into a copy of existing. Scalars already set are never replaced
// and list fields are unioned, so repeated calls are idempotent.
func ExtractPersonalInfo(messages []Message, existing PersonalContext) PersonalContext {
	pc := existing.Clone()
	text := recentUserText(messages, ContextWindow)

	if text != "" {
		if pc.Name == "" {
			if name, ok := firstCapture(text, namePatterns); ok {
				pc.Name = capitalise(name)
			}
		}
		if pc.Job == "" {
			if job, ok := firstCapture(text, jobPatterns); ok {
				pc.Job = job
			}
		}

		var rels []string
		found := relationshipRe.FindAllString(text, -1)
		for _, kw := range relationshipKeywords {
			if containsWord(found, kw) {
				rels = append(rels, kw)
			}
		}
		pc.Relationships = union(pc.Relationships, rels)
		pc.Interests = union(pc.Interests, allCaptures(text, interestPatterns))

		var topics []string
		for _, t := range topicTable {
			if t.re.MatchString(text) {
				topics = append(topics, t.topic)
			}
		}
		pc.PreviousTopics = union(pc.PreviousTopics, topics)
	}

	pc.HasPersonalInfo = existing.HasPersonalInfo || pc.populated()
	return pc
}
// #endregion extract

// #region helpers
// recentUserText lower-cases and joins the user content among the last n messages.
func recentUserText(messages []Message, n int) string {
	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if !m.FromUser() {
			continue
		}
		if c := normalise(m.Content); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

// normalise lower-cases, trims and folds typographic apostrophes.
func normalise(s string) string {
	s = strings.ReplaceAll(s, "’", "'")
	s = strings.ReplaceAll(s, "‘", "'")
	return strings.ToLower(strings.TrimSpace(s))
}

func firstCapture(text string, patterns []capturePattern) (string, bool) {
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			if len(m) > 1 && m[1] != "" && !p.exclude[m[1]] {
				return m[1], true
			}
		}
	}
	return "", false
}

func allCaptures(text string, patterns []capturePattern) []string {
	var out []string
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			if len(m) > 1 && m[1] != "" && !p.exclude[m[1]] {
				out = append(out, m[1])
			}
		}
	}
	return out
}

func containsWord(found []string, w string) bool {
	for _, f := range found {
		if f == w {
			return true
		}
	}
	return false
}

// union appends the items of add missing from base, preserving first-seen order.
func union(base, add []string) []string {
	seen := make(map[string]bool, len(base)+len(add))
	out := make([]string, 0, len(base)+len(add))
	for _, s := range append(append([]string(nil), base...), add...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func capitalise(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
// #endregion helpers
