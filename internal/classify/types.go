package classify

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// #region labels
// Classification is the overall severity of an emotional state.
type Classification string

const (
	Stable   Classification = "Stable"
	Unstable Classification = "Unstable"
	Volatile Classification = "Volatile"
)

// Severity orders classifications from 0 (Stable) to 2 (Volatile).
func (c Classification) Severity() int {
	switch c {
	case Volatile:
		return 2
	case Unstable:
		return 1
	}
	return 0
}

// MentalStability is the crisis-oriented reading of the negative axes.
type MentalStability string

const (
	MentalStable   MentalStability = "stable"
	MentalUnstable MentalStability = "unstable"
	MentalCritical MentalStability = "critical"
)

// NoneLabel is reported when no dimension is active.
const NoneLabel = "None"
// #endregion labels

// #region rule-set
// RuleSet carries every threshold used by the two decision trees plus the
// biometric rule table. Version is reported on each Result.
type RuleSet struct {
	Version string `json:"version"`

	// Classification tree.
	VolatileIntensity     float64 `json:"volatile_intensity"`      // any negative >= this → Volatile
	VolatileStability     float64 `json:"volatile_stability"`      // stability below this → Volatile
	UnstableNegativeShare float64 `json:"unstable_negative_share"` // negative share above this → Unstable
	ElevatedIntensity     float64 `json:"elevated_intensity"`
	ElevatedCount         int     `json:"elevated_count"` // this many negatives >= ElevatedIntensity → Unstable
	UnstableStability     float64 `json:"unstable_stability"`

	// Mental stability tree.
	CriticalIntensity float64 `json:"critical_intensity"`
	UnstableIntensity float64 `json:"unstable_intensity"`
	// MentalStabilityFloor marks the state unstable when the stability index
	// falls below it. Zero disables the check.
	MentalStabilityFloor float64 `json:"mental_stability_floor"`

	Biometrics []BiometricRule `json:"biometrics"`
}

// BiometricRule flags a reading field above Max, or below Min when HasMin is set.
type BiometricRule struct {
	Field  string  `json:"field"`
	Flag   string  `json:"flag"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min,omitempty"`
	HasMin bool    `json:"has_min,omitempty"`
}

// Triggered reports whether v falls outside the rule's range.
func (b BiometricRule) Triggered(v float64) bool {
	if v > b.Max {
		return true
	}
	return b.HasMin && v < b.Min
}

const (
	FlagElevatedHeartRate   = "Elevated Heart Rate"
	FlagHighStress          = "High Stress Response"
	FlagEmotionalVolatility = "High Emotional Volatility"
	FlagPhysioDysregulation = "Physiological Dysregulation"
)

func defaultBiometricRules() []BiometricRule {
	return []BiometricRule{
		{Field: "heartRate", Flag: FlagElevatedHeartRate, Max: 90},
		{Field: "stressLevel", Flag: FlagHighStress, Max: 7},
		{Field: "skinConductance", Flag: FlagHighStress, Max: 70},
		{Field: "voicePitchVariance", Flag: FlagEmotionalVolatility, Max: 60},
		{Field: "breathRate", Flag: FlagPhysioDysregulation, Max: 20, Min: 10, HasMin: true},
	}
}

// RuleSetV2 is the canonical rule set.
func RuleSetV2() RuleSet {
	return RuleSet{
		Version:               "2",
		VolatileIntensity:     8,
		VolatileStability:     0.2,
		UnstableNegativeShare: 0.6,
		ElevatedIntensity:     4,
		ElevatedCount:         2,
		UnstableStability:     0.5,
		CriticalIntensity:     8,
		UnstableIntensity:     6,
		Biometrics:            defaultBiometricRules(),
	}
}

// RuleSetV1 reproduces the first product iteration: a single negative at 6
// was already Volatile, and a stability index under 0.3 made the mental
// state unstable.
func RuleSetV1() RuleSet {
	rs := RuleSetV2()
	rs.Version = "1"
	rs.VolatileIntensity = 6
	rs.MentalStabilityFloor = 0.3
	return rs
}

// DefaultRuleSet returns RuleSetV2.
func DefaultRuleSet() RuleSet {
	return RuleSetV2()
}

// RuleSetByVersion resolves "1" or "2"; ok is false for anything else.
func RuleSetByVersion(version string) (RuleSet, bool) {
	switch version {
	case "1", "v1":
		return RuleSetV1(), true
	case "", "2", "v2":
		return RuleSetV2(), true
	}
	return RuleSet{}, false
}
// #endregion rule-set

// #region biometric-reading
// BiometricReading is an open record of numeric measurements. Fields are
// looked up by camelCase or snake_case name.
type BiometricReading map[string]float64

// Value returns the measurement for a camelCase field name.
func (r BiometricReading) Value(field string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	for _, key := range []string{field, snakeCase(field), strings.ToLower(field)} {
		if v, ok := r[key]; ok && !math.IsNaN(v) {
			return v, true
		}
	}
	return 0, false
}

// UnmarshalJSON keeps numeric fields (and numeric strings) and drops the rest.
func (r *BiometricReading) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(BiometricReading, len(raw))
	for k, v := range raw {
		switch n := v.(type) {
		case float64:
			out[k] = n
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				out[k] = f
			}
		}
	}
	*r = out
	return nil
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
// #endregion biometric-reading

// #region result
// Result is the full classification of one state.
type Result struct {
	DominantEmotion   string          `json:"dominantEmotion"`
	DominantCurvature string          `json:"dominantCurvature"`
	Classification    Classification  `json:"classification"`
	MentalStability   MentalStability `json:"mentalStability"`
	BiometricFlags    []string        `json:"biometricFlags"`
	NegativeShare     float64         `json:"negativeShare"`
	Reason            string          `json:"reason"`
	RuleSet           string          `json:"ruleSet"`
}
// #endregion result
