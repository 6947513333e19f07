package classify

import (
	"fmt"
	"sort"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
)

// #region classifier
// Classifier applies one RuleSet. It holds no mutable state.
type Classifier struct {
	rules RuleSet
}

// NewClassifier creates a Classifier. A zero-value RuleSet falls back to the default.
func NewClassifier(rules RuleSet) *Classifier {
	if rules.Version == "" {
		rules = DefaultRuleSet()
	}
	return &Classifier{rules: rules}
}

// Rules returns the active rule set.
func (c *Classifier) Rules() RuleSet {
	return c.rules
}

// Classify derives the full Result for a clamped vector and its snapshot.
func (c *Classifier) Classify(ev geometry.EmotionVector, snap geometry.Snapshot, bio BiometricReading) Result {
	ev = ev.Clamp()
	class, reason := c.classification(ev, snap)
	return Result{
		DominantEmotion:   DominantEmotion(snap),
		DominantCurvature: DominantCurvature(ev, snap),
		Classification:    class,
		MentalStability:   c.mentalStability(ev, snap),
		BiometricFlags:    DetectBiometricFlags(bio, c.rules.Biometrics),
		NegativeShare:     NegativeShare(ev),
		Reason:            reason,
		RuleSet:           c.rules.Version,
	}
}
// #endregion classifier

// #region classification-tree
// classification walks the severity tree top-down; the first rule that fires
// decides the label:
//
//	Volatile  any negative >= VolatileIntensity
//	          stability < VolatileStability
//	Unstable  negative share > UnstableNegativeShare
//	          >= ElevatedCount negatives at or above ElevatedIntensity
//	          stability < UnstableStability
//	Stable    otherwise
func (c *Classifier) classification(ev geometry.EmotionVector, snap geometry.Snapshot) (Classification, string) {
	r := c.rules

	if d, ok := firstNegativeAtLeast(ev, r.VolatileIntensity); ok {
		return Volatile, fmt.Sprintf("%s at %.1f", d, ev.Get(d))
	}
	if snap.StabilityIndex < r.VolatileStability {
		return Volatile, fmt.Sprintf("stability index %.3f", snap.StabilityIndex)
	}

	if share := NegativeShare(ev); share > r.UnstableNegativeShare {
		return Unstable, fmt.Sprintf("negative share %.2f", share)
	}
	if n := countNegativesAtLeast(ev, r.ElevatedIntensity); r.ElevatedCount > 0 && n >= r.ElevatedCount {
		return Unstable, fmt.Sprintf("%d elevated negative emotions", n)
	}
	if snap.StabilityIndex < r.UnstableStability {
		return Unstable, fmt.Sprintf("stability index %.3f", snap.StabilityIndex)
	}

	return Stable, "no rule fired"
}
// #endregion classification-tree

// #region mental-stability-tree
// mentalStability looks only at the negative axes:
//
//	critical  any negative >= CriticalIntensity
//	unstable  any negative >= UnstableIntensity (or stability below the floor, if set)
//	stable    otherwise
func (c *Classifier) mentalStability(ev geometry.EmotionVector, snap geometry.Snapshot) MentalStability {
	r := c.rules
	if _, ok := firstNegativeAtLeast(ev, r.CriticalIntensity); ok {
		return MentalCritical
	}
	if _, ok := firstNegativeAtLeast(ev, r.UnstableIntensity); ok {
		return MentalUnstable
	}
	if r.MentalStabilityFloor > 0 && snap.StabilityIndex < r.MentalStabilityFloor {
		return MentalUnstable
	}
	return MentalStable
}
// #endregion mental-stability-tree

// #region biometrics
// DetectBiometricFlags evaluates each rule independently and returns the
// sorted set of triggered flags. Fields absent from the reading are skipped.
func DetectBiometricFlags(bio BiometricReading, rules []BiometricRule) []string {
	seen := make(map[string]bool)
	for _, rule := range rules {
		v, ok := bio.Value(rule.Field)
		if !ok {
			continue
		}
		if rule.Triggered(v) {
			seen[rule.Flag] = true
		}
	}
	flags := make([]string, 0, len(seen))
	for f := range seen {
		flags = append(flags, f)
	}
	sort.Strings(flags)
	return flags
}
// #endregion biometrics

// #region helpers
// DominantEmotion labels the largest vector, or "None" if nothing is active.
func DominantEmotion(snap geometry.Snapshot) string {
	d, ok := geometry.DominantDimension(snap.Vectors)
	if !ok {
		return NoneLabel
	}
	return d.Label()
}

// DominantCurvature labels the largest curvature among active dimensions.
// A flat profile with active dimensions still names the first active one.
func DominantCurvature(ev geometry.EmotionVector, snap geometry.Snapshot) string {
	active := geometry.ActiveDimensions(ev.Clamp())
	if len(active) == 0 {
		return NoneLabel
	}
	best := active[0]
	for _, d := range active[1:] {
		if snap.Curvatures[d] > snap.Curvatures[best] {
			best = d
		}
	}
	return best.Label()
}

// NegativeShare is the fraction of total intensity carried by negative axes.
// Returns 0 when the total is 0.
func NegativeShare(ev geometry.EmotionVector) float64 {
	var total, neg float64
	for _, d := range geometry.Dimensions {
		v := ev.Get(d)
		total += v
		if d.IsNegative() {
			neg += v
		}
	}
	if total == 0 {
		return 0
	}
	return neg / total
}

// NegativesAtLeast lists the negative dimensions whose intensity is >= threshold.
func NegativesAtLeast(ev geometry.EmotionVector, threshold float64) []geometry.Dimension {
	var out []geometry.Dimension
	for _, d := range geometry.NegativeDimensions {
		if ev.Get(d) >= threshold {
			out = append(out, d)
		}
	}
	return out
}

func firstNegativeAtLeast(ev geometry.EmotionVector, threshold float64) (geometry.Dimension, bool) {
	if threshold <= 0 {
		return 0, false
	}
	ds := NegativesAtLeast(ev, threshold)
	if len(ds) == 0 {
		return 0, false
	}
	return ds[0], true
}

func countNegativesAtLeast(ev geometry.EmotionVector, threshold float64) int {
	return len(NegativesAtLeast(ev, threshold))
}
// #endregion helpers
