package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/emotion-geometry/internal/classify"
	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string        `json:"description"`
	Config          FixtureConfig `json:"config"`
	Turns           []FixtureTurn `json:"turns"`
	ExpectedResults []Expected    `json:"expected_results"`
}

// FixtureConfig selects the engine rules for a replay run.
type FixtureConfig struct {
	RuleSet    string `json:"rule_set"`
	HoldCrisis bool   `json:"hold_crisis"`
}

// FixtureTurn is one recorded user turn with JSON tags.
type FixtureTurn struct {
	TurnID     string                    `json:"turn_id"`
	Emotions   *geometry.EmotionVector   `json:"emotions,omitempty"`
	Biometrics classify.BiometricReading `json:"biometrics,omitempty"`
	Message    string                    `json:"message,omitempty"`
	Timestamp  time.Time                 `json:"timestamp"`
}

// Expected captures the expected decision per turn. Empty fields are not checked.
type Expected struct {
	TurnID          string `json:"turn_id"`
	CrisisLevel     string `json:"crisis_level"`
	Classification  string `json:"classification"`
	MentalStability string `json:"mental_stability"`
	Mode            string `json:"mode"`
	MinimalCategory string `json:"minimal_category,omitempty"`
	Name            string `json:"name,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if _, ok := classify.RuleSetByVersion(f.Config.RuleSet); !ok {
		return nil, fmt.Errorf("fixture %s: unknown rule set %q", path, f.Config.RuleSet)
	}
	return &f, nil
}

// EngineConfig converts a FixtureConfig to an engine configuration.
func (fc *FixtureConfig) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	if rules, ok := classify.RuleSetByVersion(fc.RuleSet); ok {
		cfg.Rules = rules
	}
	cfg.Selector.HoldCrisis = fc.HoldCrisis
	return cfg
}

// ToTurn converts a FixtureTurn to a replay Turn.
func (ft *FixtureTurn) ToTurn() Turn {
	req := engine.Request{
		Emotions:   ft.Emotions,
		Biometrics: ft.Biometrics,
		Timestamp:  ft.Timestamp,
	}
	if ft.Message != "" {
		req.Messages = []textsignal.Message{{Role: textsignal.RoleUser, Content: ft.Message}}
	}
	return Turn{TurnID: ft.TurnID, Request: req}
}

// ToTurns converts every fixture turn.
func (f *Fixture) ToTurns() []Turn {
	turns := make([]Turn, len(f.Turns))
	for i := range f.Turns {
		turns[i] = f.Turns[i].ToTurn()
	}
	return turns
}

// Run replays the fixture and compares against its expectations.
func (f *Fixture) Run() ([]Result, []Mismatch) {
	results := Replay(engine.New(f.Config.EngineConfig()), f.ToTurns())
	return results, Compare(results, f.ExpectedResults)
}

// #endregion fixture-loader
