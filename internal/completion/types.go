package completion

import (
	"context"
	"errors"
	"time"

	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
)

// #region errors

var (
	// ErrNoAPIKey is returned when the client is built without credentials.
	ErrNoAPIKey = errors.New("completion: no API key configured")
	// ErrNoChoices is returned when the service answers without any choice.
	ErrNoChoices = errors.New("completion: empty response")
)

// #endregion

// #region completer

// Completer generates an assistant reply for a system prompt and a
// conversation. Stream delivers partial text to onDelta as it arrives and
// returns the full reply; a non-nil error from onDelta aborts the stream.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Stream(ctx context.Context, req Request, onDelta func(string) error) (string, error)
}

// Request is one completion call.
type Request struct {
	System      string
	Messages    []textsignal.Message
	Temperature float64
	MaxTokens   int
}

// #endregion

// #region config

// Config configures the OpenAI-compatible client.
type Config struct {
	APIKey      string
	BaseURL     string // empty = SDK default
	Model       string
	Timeout     time.Duration
	MaxAttempts int

	// Waits before retry n (0-based). The last entry is reused when there
	// are more attempts than entries.
	RateLimitWaits   []time.Duration
	ServerErrorWaits []time.Duration
}

// DefaultConfig returns gpt-4o with three attempts and a 30s timeout.
func DefaultConfig() Config {
	return Config{
		Model:            "gpt-4o",
		Timeout:          30 * time.Second,
		MaxAttempts:      3,
		RateLimitWaits:   []time.Duration{5 * time.Second, 15 * time.Second, 30 * time.Second},
		ServerErrorWaits: []time.Duration{1 * time.Second, 5 * time.Second, 10 * time.Second},
	}
}

// #endregion
