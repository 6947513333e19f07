package trend

import (
	"encoding/json"
	"math"
	"time"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
)

// History is an ordered, capped sequence of session entries, oldest first.
// Values are immutable: Append returns a new History.
type History struct {
	entries []Entry
}

// NewHistory builds a History from entries, keeping only the newest HistoryCap.
// Caller-supplied intensities are clamped to [0,10]; a non-finite stability
// index becomes 0.
func NewHistory(entries []Entry) History {
	if len(entries) > HistoryCap {
		entries = entries[len(entries)-HistoryCap:]
	}
	cp := make([]Entry, len(entries))
	for i, e := range entries {
		e.Emotions = e.Emotions.Clamp()
		if math.IsNaN(e.StabilityIndex) || math.IsInf(e.StabilityIndex, 0) {
			e.StabilityIndex = 0
		}
		cp[i] = e
	}
	return History{entries: cp}
}

// NewEntry records a session from its vector and derived values.
func NewEntry(ts time.Time, ev geometry.EmotionVector, snap geometry.Snapshot, dominant string) Entry {
	return Entry{
		Timestamp:       ts.UTC(),
		Emotions:        ev.Clamp(),
		DominantEmotion: dominant,
		StabilityIndex:  snap.StabilityIndex,
	}
}

// Append returns a new History with e added, dropping the oldest entry past the cap.
func (h History) Append(e Entry) History {
	n := len(h.entries) + 1
	start := 0
	if n > HistoryCap {
		start = n - HistoryCap
	}
	out := make([]Entry, 0, n-start)
	out = append(out, h.entries[start:]...)
	out = append(out, e)
	return History{entries: out}
}

// Len is the number of stored entries.
func (h History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of all entries, oldest first.
func (h History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Window returns a copy of the newest n entries.
func (h History) Window(n int) []Entry {
	if n <= 0 {
		return nil
	}
	if n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]Entry, n)
	copy(out, h.entries[len(h.entries)-n:])
	return out
}

// Last returns the newest entry.
func (h History) Last() (Entry, bool) {
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// MarshalJSON encodes the History as a plain array.
func (h History) MarshalJSON() ([]byte, error) {
	if h.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.entries)
}

// UnmarshalJSON decodes an array, keeping the newest HistoryCap entries.
func (h *History) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*h = NewHistory(entries)
	return nil
}
