package orchestrator

import (
	"github.com/danielpatrickdp/emotion-geometry/internal/prompt"
	"github.com/danielpatrickdp/emotion-geometry/internal/protocol"
)

// #region strategy-definitions

// Strategies returns the full set of built-in strategy configs.
var Strategies = map[StrategyID]StrategyConfig{
	StrategyStandard: {
		ID:             StrategyStandard,
		MaxTokens:      prompt.MaxTokens,
		PromptModifier: "",
	},
	StrategyGrounding: {
		ID:             StrategyGrounding,
		MaxTokens:      prompt.MaxTokens,
		PromptModifier: "Open by acknowledging exactly what they said, then offer one simple grounding step they can do right now.",
	},
	StrategyGentle: {
		ID:             StrategyGentle,
		MaxTokens:      200,
		PromptModifier: "Keep it short and low-pressure. Ask one open question and make clear it is fine not to answer.",
	},
	StrategyConcise: {
		ID:             StrategyConcise,
		MaxTokens:      150,
		PromptModifier: "Reply in at most three sentences.",
	},
	StrategyDirect: {
		ID:             StrategyDirect,
		MaxTokens:      prompt.MaxTokens,
		PromptModifier: "Speak to them directly and personally. Do not describe yourself, do not add disclaimers, and do not offer generic help.",
	},
}

// #endregion

// #region retry-escalation

// retryEscalation maps failure type → ordered strategy fallback chain.
var retryEscalation = map[FailureType][]StrategyID{
	FailureEmpty:      {StrategyDirect, StrategyConcise},
	FailureRepetition: {StrategyConcise, StrategyDirect},
	FailureDisclaimer: {StrategyDirect, StrategyConcise},
	FailureDeflection: {StrategyDirect, StrategyGentle},
	FailureOverlong:   {StrategyConcise, StrategyGentle},
}

// #endregion

// #region select-initial

// SelectInitial picks the first strategy from the directive: crisis
// grounds, a minimal reply gets the gentle treatment, anything else is
// standard.
func SelectInitial(d protocol.Directive) StrategyConfig {
	switch {
	case d.CrisisLevel == protocol.CrisisCritical || d.Mode == protocol.ModeCrisis:
		return Strategies[StrategyGrounding]
	case d.MinimalResponseCategory != protocol.MinimalNone && d.MinimalResponseCategory != "":
		return Strategies[StrategyGentle]
	default:
		return Strategies[StrategyStandard]
	}
}

// #endregion

// #region select-retry

// SelectRetry picks the next strategy after a failure, avoiding already-tried
// strategies. Returns nil when the chain is exhausted.
func SelectRetry(failure FailureType, tried []StrategyID) *StrategyConfig {
	triedSet := make(map[StrategyID]bool)
	for _, t := range tried {
		triedSet[t] = true
	}

	chain, ok := retryEscalation[failure]
	if !ok {
		chain = retryEscalation[FailureDeflection]
	}

	for _, sid := range chain {
		if !triedSet[sid] {
			cfg := Strategies[sid]
			return &cfg
		}
	}
	return nil
}

// #endregion
