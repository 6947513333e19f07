package geometry

import "math"

// #region clamp
// Clamp returns a copy of ev with every intensity forced into [0,10].
// NaN is treated as 0.
func (ev EmotionVector) Clamp() EmotionVector {
	var out [NumDimensions]float64
	for i, v := range ev.Values() {
		out[i] = clampIntensity(v)
	}
	return FromValues(out)
}

func clampIntensity(v float64) float64 {
	if math.IsNaN(v) || v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}
// #endregion clamp

// #region transform
// Vectors scales each intensity by ScaleFactor.
func Vectors(ev EmotionVector) [NumDimensions]float64 {
	var out [NumDimensions]float64
	for i, v := range ev.Values() {
		out[i] = v * ScaleFactor
	}
	return out
}

// Curvatures measures how far each active vector sits from the mean of the
// active vectors, relative to that mean. Inactive (zero) dimensions always
// have zero curvature.
func Curvatures(vectors [NumDimensions]float64) [NumDimensions]float64 {
	var out [NumDimensions]float64

	var sum float64
	active := 0
	for _, v := range vectors {
		if v > 0 {
			sum += v
			active++
		}
	}
	if active == 0 {
		return out
	}
	mean := sum / float64(active)

	for i, v := range vectors {
		if v > 0 {
			out[i] = math.Abs(v-mean) / (mean + Epsilon)
		}
	}
	return out
}

// Energy is the sum of squared vector magnitudes.
func Energy(vectors [NumDimensions]float64) float64 {
	var e float64
	for _, v := range vectors {
		e += v * v
	}
	return e
}

// MaxCurvature returns the largest curvature value.
func MaxCurvature(curvatures [NumDimensions]float64) float64 {
	m := 0.0
	for _, c := range curvatures {
		if c > m {
			m = c
		}
	}
	return m
}

// StabilityIndex is the inverse of the peak curvature. A flat (or empty)
// profile gives 1/Epsilon = 100.
func StabilityIndex(curvatures [NumDimensions]float64) float64 {
	return 1 / (MaxCurvature(curvatures) + Epsilon)
}

// Transform clamps ev and derives its full geometry.
func Transform(ev EmotionVector) Snapshot {
	vectors := Vectors(ev.Clamp())
	curvatures := Curvatures(vectors)
	return Snapshot{
		Vectors:        vectors,
		Curvatures:     curvatures,
		Energy:         Energy(vectors),
		StabilityIndex: StabilityIndex(curvatures),
		CurvatureLevel: MaxCurvature(curvatures),
	}
}
// #endregion transform

// #region dominant
// DominantDimension returns the dimension with the largest value. Ties go to
// the earliest dimension in canonical order. ok is false when every value is 0.
func DominantDimension(values [NumDimensions]float64) (d Dimension, ok bool) {
	best := 0.0
	for i, v := range values {
		if v > best {
			best = v
			d = Dimension(i)
			ok = true
		}
	}
	return d, ok
}

// ActiveDimensions lists dimensions with a strictly positive intensity.
func ActiveDimensions(ev EmotionVector) []Dimension {
	var out []Dimension
	for i, v := range ev.Values() {
		if v > 0 {
			out = append(out, Dimension(i))
		}
	}
	return out
}
// #endregion dominant
