package textsignal

import (
	"strings"
	"unicode/utf8"
)

// MinimalLength is the longest reply (in runes) treated as minimal regardless of wording.
const MinimalLength = 3

// #region response-keywords
var minimalReplies = wordSet(
	"ok", "okay", "k", "mhm", "mm", "mmm", "yeah", "yep", "yes", "no", "nah", "sure", "fine",
	"whatever", "idk", "i don't know", "maybe", "i guess", "uh huh", "uh-huh", "right", "true",
	"exactly", "yup", "nope",
)

var dismissiveReplies = wordSet("ok", "okay", "k", "fine", "whatever")
var acknowledgmentReplies = wordSet("mhm", "mm", "uh huh", "uh-huh", "yeah")
var uncertainReplies = wordSet("idk", "i don't know", "maybe", "i guess")
// #endregion response-keywords

// #region classify-response
// ClassifyResponseType inspects the most recent user message. A message is
// minimal when it is a known filler reply or at most MinimalLength runes.
// Trailing punctuation is ignored for keyword lookup. No messages, or an
// empty last message, yields a normal, non-minimal result.
func ClassifyResponseType(messages []Message) ResponseType {
	res := ResponseType{Category: CategoryNormal}

	last, ok := lastUserMessage(messages)
	if !ok {
		return res
	}
	text := normalise(last.Content)
	res.OriginalText = text
	if text == "" {
		return res
	}

	key := strings.TrimRight(text, ".!?,~ ")
	res.IsMinimal = minimalReplies[key] || utf8.RuneCountInString(text) <= MinimalLength
	if !res.IsMinimal {
		return res
	}

	switch {
	case dismissiveReplies[key]:
		res.Category = CategoryDismissive
	case acknowledgmentReplies[key]:
		res.Category = CategoryAcknowledgment
	case uncertainReplies[key]:
		res.Category = CategoryUncertain
	}
	return res
}

func lastUserMessage(messages []Message) (Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].FromUser() {
			return messages[i], true
		}
	}
	return Message{}, false
}
// #endregion classify-response
