package prompt

import (
	"fmt"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/protocol"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
)

// #region replies

var crisisReplies = []string{
	"I can see you're going through a really difficult time right now. Your feelings are valid, and you don't have to face this alone.",
	"It sounds like you're carrying some very intense emotions. Thank you for sharing that with me. Let's focus on getting through this moment together.",
	"I hear that you're struggling, and reaching out takes real strength. If you feel unsafe, please contact local emergency services or a crisis line right away.",
}

var minimalReplies = map[textsignal.ResponseCategory]string{
	textsignal.CategoryDismissive:     "I sense you might be feeling overwhelmed or wanting some space. That's completely okay. I'm here whenever you're ready to share more.",
	textsignal.CategoryAcknowledgment: "I appreciate you staying with me in this conversation. Sometimes just being present is enough. How are you feeling right now?",
	textsignal.CategoryUncertain:      "It's okay not to have all the answers right now. Uncertainty can feel uncomfortable, and it's very human. What feels most important to you today?",
}

// emotionReply is a dominant-emotion fallback that applies at or above Min.
type emotionReply struct {
	Min     float64
	Replies []string
}

var emotionReplies = map[geometry.Dimension]emotionReply{
	geometry.Joy: {Min: 6, Replies: []string{
		"I can feel the positive energy in your message. What's bringing you this happiness?",
		"It's good to see you recognising a joyful moment. Tell me more about what's going well.",
		"Joy is worth noticing. What has made today feel this way?",
	}},
	geometry.Sadness: {Min: 5, Replies: []string{
		"I can sense the sadness you're carrying right now. It's okay to feel this way, and you're not alone.",
		"Your sadness is valid, and I'm here to listen. What's weighing on your heart?",
		"I hear the pain in your words. Sadness often shows how deeply you care. Would you like to talk about it?",
	}},
	geometry.Anger: {Min: 5, Replies: []string{
		"I can feel the intensity of your anger. That energy often points at something that matters to you. What's stirring it up?",
		"Anger can signal that something feels unfair. It's okay to feel it. What's been frustrating you?",
		"Your anger is telling you something important. Let's look at what might be underneath it.",
	}},
	geometry.Fear: {Min: 5, Replies: []string{
		"I can sense the fear you're experiencing. Naming it is a brave first step. What feels most uncertain right now?",
		"Fear can feel overwhelming. You don't have to face it alone. What's feeling scary at the moment?",
		"I hear the worry in your message. Fear tries to protect us, but it can also hold us back. Let's explore it together.",
	}},
}

var personalReplies = []string{
	"%s, I appreciate you sharing with me. How can I best support you today?",
	"Thank you for trusting me with your thoughts, %s. What's been on your mind lately?",
	"%s, I'm here to listen. What would be most helpful for you right now?",
}

var generalReplies = []string{
	"Thank you for sharing with me. I'm here to listen and support you. What's on your mind today?",
	"I appreciate your openness. Every feeling you have is valid. How have you been taking care of yourself?",
	"It means a lot that you're here talking with me. What feels most important to you right now?",
	"I'm glad you reached out. What would you like to talk about?",
	"Thank you for trusting me with your thoughts and feelings. What's been weighing on your mind?",
}

// #endregion

// #region fallback

// Fallback picks a canned reply when no completion service is available.
// Priority: crisis, minimal-reply category, dominant emotion, personalised,
// general. Variants rotate by Input.Turn so output is reproducible.
func Fallback(in Input) string {
	d := in.Directive
	if d.CrisisLevel == protocol.CrisisCritical || d.Mode == protocol.ModeCrisis {
		return pick(crisisReplies, in.Turn)
	}

	if reply, ok := minimalReplies[d.MinimalResponseCategory]; ok {
		return reply
	}

	if in.HasEmotions {
		ev := in.Emotions.Clamp()
		if dim, ok := geometry.DominantDimension(ev.Values()); ok {
			if er, ok := emotionReplies[dim]; ok && ev.Get(dim) >= er.Min {
				return pick(er.Replies, in.Turn)
			}
		}
	}

	if name := in.PersonalContext.Name; name != "" {
		return fmt.Sprintf(pick(personalReplies, in.Turn), name)
	}

	return pick(generalReplies, in.Turn)
}

func pick(options []string, turn int) string {
	if turn < 0 {
		turn = -turn
	}
	return options[turn%len(options)]
}

// #endregion
