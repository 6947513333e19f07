package orchestrator

// #region constants

const maxRetries = 2 // max 2 retries = 3 total attempts

// #endregion

// #region should-retry

// ShouldRetry returns whether to retry and the next strategy to use.
// attempts contains all attempts so far (including the one just evaluated).
func ShouldRetry(attempts []Attempt) (bool, *StrategyConfig) {
	if len(attempts) == 0 || len(attempts) > maxRetries {
		return false, nil
	}

	latest := attempts[len(attempts)-1]
	if !latest.Evaluation.ShouldRetry {
		return false, nil
	}

	tried := make([]StrategyID, len(attempts))
	for i, a := range attempts {
		tried[i] = a.Strategy
	}

	next := SelectRetry(latest.Evaluation.FailureType, tried)
	if next == nil {
		return false, nil
	}
	return true, next
}

// #endregion
