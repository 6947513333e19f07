package engine

import (
	"time"

	"github.com/danielpatrickdp/emotion-geometry/internal/classify"
	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/protocol"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
	"github.com/danielpatrickdp/emotion-geometry/internal/trend"
)

// #region engine
// Engine runs the full pipeline: geometry → classification → trend →
// text signals → directive. It holds configuration only and is safe for
// concurrent use.
type Engine struct {
	config     Config
	classifier *classify.Classifier
	analyzer   *trend.Analyzer
	selector   *protocol.Selector
	now        func() time.Time
}

// New creates an Engine from cfg.
func New(cfg Config) *Engine {
	return &Engine{
		config:     cfg,
		classifier: classify.NewClassifier(cfg.Rules),
		analyzer:   trend.NewAnalyzer(cfg.Trend),
		selector:   protocol.NewSelector(cfg.Selector),
		now:        time.Now,
	}
}

// NewWithClock creates an Engine that stamps undated requests with now().
func NewWithClock(cfg Config, now func() time.Time) *Engine {
	e := New(cfg)
	e.now = now
	return e
}

// RuleSet returns the version of the active classification rules.
func (e *Engine) RuleSet() string {
	return e.classifier.Rules().Version
}
// #endregion engine

// #region analyze
// Analyze derives a Response from req. It never mutates req and never fails:
// absent inputs degrade to neutral results.
func (e *Engine) Analyze(req Request) Response {
	var ev geometry.EmotionVector
	if req.Emotions != nil {
		ev = req.Emotions.Clamp()
	}

	// 1. Geometry and classification
	snap := geometry.Transform(ev)
	result := e.classifier.Classify(ev, snap, req.Biometrics)

	// 2. History: this session joins the window before analysis
	history := trend.NewHistory(req.History)
	recorded := false
	if req.Emotions != nil {
		ts := req.Timestamp
		if ts.IsZero() {
			ts = e.now()
		}
		history = history.Append(trend.NewEntry(ts, ev, snap, result.DominantEmotion))
		recorded = true
	}
	analysis := e.analyzer.Analyze(history)

	// 3. Text signals
	var existing textsignal.PersonalContext
	if req.PersonalContext != nil {
		existing = *req.PersonalContext
	}
	personal := textsignal.ExtractPersonalInfo(req.Messages, existing)
	responseType := textsignal.ClassifyResponseType(req.Messages)
	trauma := textsignal.AssessTraumaIndicators(ev, req.Messages)

	// 4. Directive
	directive := e.selector.Select(protocol.Input{
		Emotions:     ev,
		ResponseType: responseType,
		Trauma:       trauma,
		Trend:        analysis,
		PreviousMode: req.PreviousMode,
	})

	return Response{
		Emotions:        ev,
		Snapshot:        snap,
		Classification:  result,
		Trend:           analysis,
		PersonalContext: personal,
		ResponseType:    responseType,
		Trauma:          trauma,
		Directive:       directive,
		History:         history.Entries(),
		Recorded:        recorded,
	}
}
// #endregion analyze
