package textsignal

import (
	"encoding/json"
)

// #region message
// Message is one chat turn. Content that is missing or not a JSON string
// decodes to "".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// FromUser reports whether the message was written by the user. An empty
// role counts as the user.
func (m Message) FromUser() bool {
	return m.Role != RoleAssistant && m.Role != RoleSystem
}

// UnmarshalJSON tolerates non-string role and content values.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    json.RawMessage `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = stringOrEmpty(raw.Role)
	m.Content = stringOrEmpty(raw.Content)
	return nil
}

func stringOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
// #endregion message

// #region personal-context
// PersonalContext accumulates what the user has said about themselves.
// Name and Job are set once; the list fields only grow.
type PersonalContext struct {
	Name            string   `json:"name,omitempty"`
	Job             string   `json:"job,omitempty"`
	Relationships   []string `json:"relationships"`
	Interests       []string `json:"interests"`
	PreviousTopics  []string `json:"previousTopics"`
	HasPersonalInfo bool     `json:"hasPersonalInfo"`
}

// Clone returns a deep copy.
func (pc PersonalContext) Clone() PersonalContext {
	out := pc
	out.Relationships = append([]string(nil), pc.Relationships...)
	out.Interests = append([]string(nil), pc.Interests...)
	out.PreviousTopics = append([]string(nil), pc.PreviousTopics...)
	return out
}

func (pc PersonalContext) populated() bool {
	return pc.Name != "" || pc.Job != "" || len(pc.Relationships) > 0 || len(pc.Interests) > 0
}
// #endregion personal-context

// #region response-type
// ResponseCategory refines a minimal reply.
type ResponseCategory string

const (
	CategoryDismissive     ResponseCategory = "dismissive"
	CategoryAcknowledgment ResponseCategory = "acknowledgment"
	CategoryUncertain      ResponseCategory = "uncertain"
	CategoryNormal         ResponseCategory = "normal"
)

// ResponseType describes the user's most recent reply.
type ResponseType struct {
	IsMinimal    bool             `json:"isMinimal"`
	Category     ResponseCategory `json:"category"`
	OriginalText string           `json:"originalText"`
}
// #endregion response-type

// #region trauma
// TraumaIndicators are independent flags for trauma-informed handling.
type TraumaIndicators struct {
	Dissociation    bool     `json:"dissociation"`
	Hypervigilance  bool     `json:"hypervigilance"`
	Avoidance       bool     `json:"avoidance"`
	Intrusion       bool     `json:"intrusion"`
	MatchedKeywords []string `json:"matchedKeywords"`
}

// Any reports whether at least one indicator is set.
func (t TraumaIndicators) Any() bool {
	return t.Dissociation || t.Hypervigilance || t.Avoidance || t.Intrusion
}

// Flags lists the set indicators by name.
func (t TraumaIndicators) Flags() []string {
	var out []string
	if t.Dissociation {
		out = append(out, "dissociation")
	}
	if t.Hypervigilance {
		out = append(out, "hypervigilance")
	}
	if t.Avoidance {
		out = append(out, "avoidance")
	}
	if t.Intrusion {
		out = append(out, "intrusion")
	}
	return out
}
// #endregion trauma
