package prompt

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/protocol"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
)

// #region guidance-tables

const preamble = `You are an emotional support companion trained in empathetic, trauma-informed conversation. Your replies adapt to the user's emotional state and to what they have told you about themselves.

CORE PRINCIPLES:
- Validate feelings without judgment
- Respond to the user's specific words before offering anything else
- Reference personal details naturally when they are relevant
- Treat short replies as a signal, not as disinterest
- Recognise crisis situations and prioritise safety
`

const closing = `RESPONSE GUIDELINES:
- Keep replies to 2-4 sentences
- Acknowledge what the user shared, then ask one gentle follow-up question
- Offer specific, actionable support only after acknowledging their experience
- Do not diagnose and do not claim to be a licensed professional`

var minimalGuidance = map[textsignal.ResponseCategory][]string{
	textsignal.CategoryDismissive: {
		"They may feel overwhelmed or want to end the conversation",
		"Possible emotional shutdown or avoidance",
		"Respond with gentle acknowledgment and low-pressure exploration",
	},
	textsignal.CategoryAcknowledgment: {
		"They are listening but still processing",
		"Continue naturally and invite them to share more",
	},
	textsignal.CategoryUncertain: {
		"They may be unsure what they feel",
		"Help them explore one step at a time",
	},
	textsignal.CategoryNormal: {
		"Acknowledge the brevity without judgment",
		"Ask an open-ended question about the earlier topic",
	},
}

var empathyGuidance = map[EmpathyLevel][]string{
	EmpathySoft: {
		"Use gentle, nurturing language",
		"Focus on validation and emotional safety",
	},
	EmpathyBalanced: {
		"Balance warmth with practical guidance",
		"Use clear, accessible language",
	},
	EmpathyClinical: {
		"Use professional, evidence-based language",
		"Focus on practical coping strategies and psychoeducation",
	},
}

var toneGuidance = map[ToneStyle][]string{
	ToneWarm:         {"Sound like a caring friend who is fully present"},
	ToneProfessional: {"Keep structured, clear communication with appropriate warmth"},
	ToneBlunt:        {"Be direct and straightforward while staying compassionate"},
}

var copingGuidance = map[CopingMethod][]string{
	CopingCBT: {
		"Work with thought patterns and gentle cognitive reframing",
		"Suggest small, practical behavioural steps",
	},
	CopingDBT: {
		"Emphasise distress tolerance, emotion regulation and mindfulness",
		"Accept difficult emotions while building coping skills",
	},
	CopingExistential: {
		"Explore meaning, values and purpose",
		"Support authentic self-expression",
	},
	CopingSomatic: {
		"Bring attention to the body and breath",
		"Use grounding and nervous-system regulation techniques",
	},
}

var crisisGuidance = map[protocol.CrisisLevel][]string{
	protocol.CrisisCritical: {
		"Priority is immediate safety and stabilisation",
		"Acknowledge their specific crisis before offering grounding techniques",
		"Use calm, clear, non-judgmental language",
		"Focus on the present moment and basic needs",
		"If they may be in danger, encourage contacting local emergency services or a crisis line",
	},
	protocol.CrisisModerate: {
		"Emotions are elevated; slow the pace and check in on how they are coping",
		"Offer one grounding or self-soothing option",
	},
}

var traumaGuidance = map[string]string{
	"dissociation":   "Signs of dissociation: orient them gently to the present and their surroundings",
	"hypervigilance": "Signs of hypervigilance: emphasise safety and predictability",
	"avoidance":      "Signs of avoidance: do not push for details, let them set the pace",
	"intrusion":      "Signs of intrusive memories: validate, then offer grounding before any exploration",
}

// #endregion

// #region build

// BuildSystemPrompt renders the directive, personal context and settings into
// the system message. Output is deterministic for a given Input.
func BuildSystemPrompt(in Input) string {
	settings := in.Settings.Normalize()
	d := in.Directive

	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n")

	if in.PersonalContext.HasPersonalInfo {
		pc := in.PersonalContext
		b.WriteString("PERSONAL CONTEXT:\n")
		if pc.Name != "" {
			fmt.Fprintf(&b, "- Name: %s\n", pc.Name)
		}
		if pc.Job != "" {
			fmt.Fprintf(&b, "- Occupation: %s\n", pc.Job)
		}
		writeList(&b, "Relationships", pc.Relationships)
		writeList(&b, "Interests", pc.Interests)
		writeList(&b, "Previous topics", pc.PreviousTopics)
		b.WriteString("\n")
	}

	if in.HasEmotions {
		b.WriteString("CURRENT EMOTIONAL STATE:\n")
		parts := make([]string, 0, geometry.NumDimensions)
		for _, dim := range geometry.Dimensions {
			parts = append(parts, fmt.Sprintf("%s: %g/10", dim.Label(), in.Emotions.Get(dim)))
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("\n")
		if len(in.BiometricFlags) > 0 {
			fmt.Fprintf(&b, "Biometric flags: %s\n", strings.Join(in.BiometricFlags, ", "))
		}
		b.WriteString("\n")
	}

	if lines, ok := crisisGuidance[d.CrisisLevel]; ok {
		if d.CrisisLevel == protocol.CrisisCritical {
			b.WriteString("CRISIS INDICATORS DETECTED:\n")
			fmt.Fprintf(&b, "High levels of: %s\n", strings.Join(d.CriticalEmotions, ", "))
		} else {
			b.WriteString("ELEVATED EMOTIONS:\n")
			fmt.Fprintf(&b, "Elevated: %s\n", strings.Join(d.ElevatedEmotions, ", "))
		}
		writeBullets(&b, lines)
		b.WriteString("\n")
	}
	if d.Mode == protocol.ModeCrisis && d.CrisisLevel != protocol.CrisisCritical {
		b.WriteString("CRISIS MODE ACTIVE:\n")
		writeBullets(&b, crisisGuidance[protocol.CrisisCritical][:2])
		b.WriteString("\n")
	}

	if len(d.TrendInsightsToSurface) > 0 {
		b.WriteString("EMOTIONAL TRENDS:\n")
		writeBullets(&b, d.TrendInsightsToSurface)
		b.WriteString("\n")
	}

	if d.MinimalResponseCategory != protocol.MinimalNone && d.MinimalResponseCategory != "" {
		b.WriteString("MINIMAL RESPONSE DETECTED:\n")
		fmt.Fprintf(&b, "The user replied %q, which may mean:\n", d.MinimalResponseText)
		writeBullets(&b, minimalGuidance[d.MinimalResponseCategory])
		b.WriteString("\n")
	}

	if d.TraumaProtocolNeeded {
		b.WriteString("TRAUMA-INFORMED CARE:\n")
		for _, flag := range d.TraumaIndicators {
			if line, ok := traumaGuidance[flag]; ok {
				fmt.Fprintf(&b, "- %s\n", line)
			}
		}
		b.WriteString("- Prioritise choice, collaboration and the user's sense of control\n\n")
	}

	fmt.Fprintf(&b, "EMPATHY LEVEL (%s):\n", settings.EmpathyLevel)
	writeBullets(&b, empathyGuidance[settings.EmpathyLevel])
	fmt.Fprintf(&b, "TONE (%s):\n", settings.ToneStyle)
	writeBullets(&b, toneGuidance[settings.ToneStyle])
	fmt.Fprintf(&b, "APPROACH (%s):\n", strings.ToUpper(string(settings.CopingMethod)))
	writeBullets(&b, copingGuidance[settings.CopingMethod])
	b.WriteString("\n")

	b.WriteString(closing)
	return b.String()
}

// Temperature is 0.3 for clinical empathy, 0.7 otherwise.
func Temperature(settings TherapySettings) float64 {
	if settings.EmpathyLevel == EmpathyClinical {
		return clinicalTemperature
	}
	return defaultTemperature
}

// Window returns the last ContextWindow messages. The input is not modified.
func Window(messages []textsignal.Message) []textsignal.Message {
	start := len(messages) - ContextWindow
	if start < 0 {
		start = 0
	}
	out := make([]textsignal.Message, len(messages)-start)
	copy(out, messages[start:])
	return out
}

// #endregion

// #region helpers

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(items, ", "))
}

func writeBullets(b *strings.Builder, lines []string) {
	for _, l := range lines {
		fmt.Fprintf(b, "- %s\n", l)
	}
}

// #endregion
