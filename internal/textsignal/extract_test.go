package textsignal

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// #region helpers
func userMsgs(texts ...string) []Message {
	out := make([]Message, len(texts))
	for i, t := range texts {
		out[i] = Message{Role: RoleUser, Content: t}
	}
	return out
}
// #endregion helpers

// #region extract-tests
func TestExtract_NameAndJob(t *testing.T) {
	pc := ExtractPersonalInfo(userMsgs("My name is Alex and I work as a teacher"), PersonalContext{})
	if pc.Name != "Alex" {
		t.Errorf("expected name 'Alex', got %q", pc.Name)
	}
	if pc.Job != "teacher" {
		t.Errorf("expected job 'teacher', got %q", pc.Job)
	}
	if !pc.HasPersonalInfo {
		t.Error("expected hasPersonalInfo")
	}
}

func TestExtract_PatternPriority(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"my name is beats call me", "call me sam. my name is samantha", "Samantha"},
		{"call me beats i'm", "i'm jo, but call me joey", "Joey"},
		{"i'm beats i am", "i am here. i'm priya", "Priya"},
		{"feeling is not a name", "i'm feeling lost", ""},
		{"article is not a name", "i'm a nurse", ""},
		{"skips states to find a name", "i'm tired. i'm maya by the way", "Maya"},
		{"typographic apostrophe", "I’m Dev", "Dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := ExtractPersonalInfo(userMsgs(tt.text), PersonalContext{})
			if pc.Name != tt.want {
				t.Errorf("expected name %q, got %q", tt.want, pc.Name)
			}
		})
	}
}

func TestExtract_JobPatterns(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"i work as an engineer", "engineer"},
		{"my job is nursing", "nursing"},
		{"i'm a plumber", "plumber"},
		{"i am an architect", "architect"},
		{"i'm a bit tired", ""},
		{"my job is stressful", ""},
		{"i work as a nurse and i'm a mother", "nurse"},
	}
	for _, tt := range tests {
		pc := ExtractPersonalInfo(userMsgs(tt.text), PersonalContext{})
		if pc.Job != tt.want {
			t.Errorf("%q: expected job %q, got %q", tt.text, tt.want, pc.Job)
		}
	}
}

func TestExtract_NeverOverwritesScalars(t *testing.T) {
	existing := PersonalContext{Name: "Robin", Job: "pilot", HasPersonalInfo: true}
	pc := ExtractPersonalInfo(userMsgs("my name is Alex and I work as a teacher"), existing)
	if pc.Name != "Robin" || pc.Job != "pilot" {
		t.Errorf("expected existing scalars kept, got name=%q job=%q", pc.Name, pc.Job)
	}
}

func TestExtract_SetsUnionWithoutDuplicates(t *testing.T) {
	existing := PersonalContext{Relationships: []string{"sister"}, Interests: []string{"hiking"}}
	msgs := userMsgs(
		"my sister and my mom visited",
		"i love hiking and i enjoy painting",
		"i like to read",
	)
	pc := ExtractPersonalInfo(msgs, existing)

	wantRels := []string{"sister", "mom"}
	if diff := cmp.Diff(wantRels, pc.Relationships); diff != "" {
		t.Errorf("relationships mismatch (-want +got):\n%s", diff)
	}
	wantInterests := []string{"hiking", "painting", "read"}
	if diff := cmp.Diff(wantInterests, pc.Interests); diff != "" {
		t.Errorf("interests mismatch (-want +got):\n%s", diff)
	}
	if existing.Relationships[0] != "sister" || len(existing.Relationships) != 1 {
		t.Error("existing context must not be mutated")
	}
}

func TestExtract_Idempotent(t *testing.T) {
	msgs := userMsgs(
		"hi, i'm Noor. my husband and kids are away",
		"i love gardening, i really love gardening",
		"work has been a lot, my boss is difficult",
	)
	once := ExtractPersonalInfo(msgs, PersonalContext{})
	twice := ExtractPersonalInfo(msgs, once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second pass changed context (-once +twice):\n%s", diff)
	}
	if len(once.Interests) != 1 {
		t.Errorf("expected one unique interest, got %v", once.Interests)
	}
	if diff := cmp.Diff([]string{"work", "family", "relationships"}, once.PreviousTopics); diff != "" {
		t.Errorf("topics mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_WholeWordRelationships(t *testing.T) {
	pc := ExtractPersonalInfo(userMsgs("give me a moment, my dadaist phase is over"), PersonalContext{})
	if len(pc.Relationships) != 0 {
		t.Errorf("expected no relationships from partial words, got %v", pc.Relationships)
	}
}

func TestExtract_OnlyLastFiveUserMessages(t *testing.T) {
	msgs := userMsgs("my name is Old")
	msgs = append(msgs, userMsgs("one", "two", "three", "four", "five")...)
	pc := ExtractPersonalInfo(msgs, PersonalContext{})
	if pc.Name != "" {
		t.Errorf("expected messages beyond the window to be ignored, got %q", pc.Name)
	}
}

func TestExtract_IgnoresAssistantMessages(t *testing.T) {
	msgs := []Message{
		{Role: RoleAssistant, Content: "I'm Sage, your companion. I'm a listener."},
		{Role: RoleUser, Content: "hello"},
	}
	pc := ExtractPersonalInfo(msgs, PersonalContext{})
	if pc.Name != "" || pc.Job != "" {
		t.Errorf("assistant text must not populate context, got %+v", pc)
	}
	if pc.HasPersonalInfo {
		t.Error("expected hasPersonalInfo false")
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	pc := ExtractPersonalInfo(nil, PersonalContext{Name: "Kim", HasPersonalInfo: true})
	if pc.Name != "Kim" || !pc.HasPersonalInfo {
		t.Errorf("expected existing context returned, got %+v", pc)
	}
}
// #endregion extract-tests

// #region message-tests
func TestMessage_UnmarshalMalformedContent(t *testing.T) {
	var msgs []Message
	data := `[{"role":"user","content":{"type":"image"}},{"role":"user"},{"role":7,"content":"i'm Lee"}]`
	if err := json.Unmarshal([]byte(data), &msgs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgs[0].Content != "" || msgs[1].Content != "" {
		t.Errorf("expected non-string content to decode empty, got %q / %q", msgs[0].Content, msgs[1].Content)
	}
	if msgs[2].Role != "" || msgs[2].Content != "i'm Lee" {
		t.Errorf("unexpected third message: %+v", msgs[2])
	}
	pc := ExtractPersonalInfo(msgs, PersonalContext{})
	if pc.Name != "Lee" {
		t.Errorf("expected name 'Lee', got %q", pc.Name)
	}
}
// #endregion message-tests
