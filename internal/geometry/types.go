package geometry

import "strings"

// #region constants
const (
	// ScaleFactor converts a 0-10 intensity into a vector magnitude.
	ScaleFactor = 1.2
	// Epsilon guards every division in the transform.
	Epsilon = 0.01

	MinIntensity = 0.0
	MaxIntensity = 10.0

	// NumDimensions is the fixed length of every emotion vector.
	NumDimensions = 6
)
// #endregion constants

// #region dimension
// Dimension indexes one emotion axis. The order is fixed and shared by
// vectors, curvatures and every per-dimension slice in the engine.
type Dimension int

const (
	Joy Dimension = iota
	Sadness
	Anger
	Fear
	Surprise
	Disgust
)

var dimensionNames = [NumDimensions]string{"joy", "sadness", "anger", "fear", "surprise", "disgust"}

// Dimensions lists every axis in canonical order.
var Dimensions = [NumDimensions]Dimension{Joy, Sadness, Anger, Fear, Surprise, Disgust}

// NegativeDimensions are the axes counted toward crisis and instability rules.
var NegativeDimensions = []Dimension{Sadness, Anger, Fear, Disgust}

// String returns the lower-case JSON name of the dimension.
func (d Dimension) String() string {
	if d < 0 || int(d) >= NumDimensions {
		return "unknown"
	}
	return dimensionNames[d]
}

// Label returns the capitalised display name ("Sadness").
func (d Dimension) Label() string {
	s := d.String()
	if s == "unknown" {
		return "Unknown"
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// ParseDimension resolves a dimension by name, ignoring case.
func ParseDimension(name string) (Dimension, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range dimensionNames {
		if n == name {
			return Dimension(i), true
		}
	}
	return 0, false
}

// IsNegative reports whether d is one of the negative axes.
func (d Dimension) IsNegative() bool {
	switch d {
	case Sadness, Anger, Fear, Disgust:
		return true
	}
	return false
}
// #endregion dimension

// #region emotion-vector
// EmotionVector holds self-reported intensities, each expected in [0,10].
type EmotionVector struct {
	Joy      float64 `json:"joy"`
	Sadness  float64 `json:"sadness"`
	Anger    float64 `json:"anger"`
	Fear     float64 `json:"fear"`
	Surprise float64 `json:"surprise"`
	Disgust  float64 `json:"disgust"`
}

// Values returns the intensities in canonical dimension order.
func (ev EmotionVector) Values() [NumDimensions]float64 {
	return [NumDimensions]float64{ev.Joy, ev.Sadness, ev.Anger, ev.Fear, ev.Surprise, ev.Disgust}
}

// Get returns the intensity of one dimension.
func (ev EmotionVector) Get(d Dimension) float64 {
	if d < 0 || int(d) >= NumDimensions {
		return 0
	}
	return ev.Values()[d]
}

// With returns a copy of ev with dimension d set to v.
func (ev EmotionVector) With(d Dimension, v float64) EmotionVector {
	switch d {
	case Joy:
		ev.Joy = v
	case Sadness:
		ev.Sadness = v
	case Anger:
		ev.Anger = v
	case Fear:
		ev.Fear = v
	case Surprise:
		ev.Surprise = v
	case Disgust:
		ev.Disgust = v
	}
	return ev
}

// FromValues builds a vector from canonical-order intensities.
func FromValues(v [NumDimensions]float64) EmotionVector {
	return EmotionVector{Joy: v[0], Sadness: v[1], Anger: v[2], Fear: v[3], Surprise: v[4], Disgust: v[5]}
}
// #endregion emotion-vector

// #region snapshot
// Snapshot is the geometry derived from one EmotionVector.
type Snapshot struct {
	Vectors        [NumDimensions]float64 `json:"vectors"`
	Curvatures     [NumDimensions]float64 `json:"curvatures"`
	Energy         float64                `json:"energy"`
	StabilityIndex float64                `json:"stabilityIndex"`
	CurvatureLevel float64                `json:"curvatureLevel"`
}
// #endregion snapshot
