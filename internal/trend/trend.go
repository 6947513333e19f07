package trend

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
)

// #region analyzer
// Analyzer reports direction, stability and recurrence over recent sessions.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an Analyzer; zero fields fall back to DefaultConfig.
func NewAnalyzer(cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.SlopeThreshold <= 0 {
		cfg.SlopeThreshold = def.SlopeThreshold
	}
	if cfg.RecurringThreshold <= 0 {
		cfg.RecurringThreshold = def.RecurringThreshold
	}
	if cfg.LowStability == 0 && cfg.HighStability == 0 {
		cfg.LowStability, cfg.HighStability = def.LowStability, def.HighStability
	}
	return &Analyzer{cfg: cfg}
}

// Analyze inspects the newest Window entries. Fewer than two entries yield
// an empty Analysis.
func (a *Analyzer) Analyze(h History) Analysis {
	window := h.Window(a.cfg.Window)
	res := Analysis{Insights: []Insight{}, WindowSize: len(window)}
	if len(window) < 2 {
		return res
	}

	res.Slopes = make(map[string]float64, geometry.NumDimensions)
	for _, d := range geometry.Dimensions {
		series := make([]float64, len(window))
		for i, e := range window {
			series[i] = e.Emotions.Get(d)
		}
		slope := Slope(series)
		res.Slopes[d.String()] = slope

		// Inclusive: a 1,2,3,4,5 series (slope exactly 1) reports a direction.
		if math.Abs(slope) >= a.cfg.SlopeThreshold {
			dir := "increasing"
			if slope < 0 {
				dir = "decreasing"
			}
			res.Insights = append(res.Insights, Insight{
				Kind:      KindDirection,
				Dimension: d.String(),
				Direction: dir,
				Text:      fmt.Sprintf("Your %s levels have been %s over recent sessions.", d, dir),
			})
		}
	}

	var sum float64
	for _, e := range window {
		sum += e.StabilityIndex
	}
	res.MeanStability = sum / float64(len(window))
	switch {
	case res.MeanStability < a.cfg.LowStability:
		res.Insights = append(res.Insights, Insight{
			Kind:      KindStability,
			Direction: "low",
			Text:      "Your emotional stability has been lower than usual. Consider focusing on grounding techniques.",
		})
	case res.MeanStability > a.cfg.HighStability:
		res.Insights = append(res.Insights, Insight{
			Kind:      KindStability,
			Direction: "high",
			Text:      "Your emotional stability has been quite good recently. Great progress!",
		})
	}

	counts := make(map[string]int)
	var order []string
	for _, e := range window {
		if e.DominantEmotion == "" || e.DominantEmotion == "None" {
			continue
		}
		if counts[e.DominantEmotion] == 0 {
			order = append(order, e.DominantEmotion)
		}
		counts[e.DominantEmotion]++
	}
	for _, emo := range order {
		if counts[emo] >= a.cfg.RecurringThreshold {
			res.Insights = append(res.Insights, Insight{
				Kind:      KindRecurring,
				Dimension: emo,
				Text:      fmt.Sprintf("%s has been a recurring theme in your recent sessions.", emo),
			})
		}
	}

	return res
}
// #endregion analyzer

// #region slope
// Slope is the ordinary-least-squares slope of values against x = 0..n-1.
func Slope(values []float64) float64 {
	n := float64(len(values))
	if len(values) < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
// #endregion slope
