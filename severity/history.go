// Package severity - Bounded classification history for trend queries.
package severity

// HistoryCapacity bounds the classifier's retained history.
const HistoryCapacity = 30

// statisticsWindow is how many recent entries Statistics summarizes.
const statisticsWindow = 10

// HistoryEntry is one recorded classification.
type HistoryEntry struct {
	Severity   Level
	Score      float64
	Confidence float64
	// Sequence is the classifier's frame counter at classification time.
	Sequence int
}

// History is a bounded FIFO of classifications. Read-only to callers
// outside the classifier.
type History struct {
	entries  []HistoryEntry
	capacity int
}

// NewHistory creates a history with the given capacity.
func NewHistory(capacity int) *History {
	return &History{capacity: capacity}
}

// Append records an entry, evicting the oldest past capacity.
func (h *History) Append(e HistoryEntry) {
	if len(h.entries) == h.capacity {
		copy(h.entries, h.entries[1:])
		h.entries[len(h.entries)-1] = e
		return
	}
	h.entries = append(h.entries, e)
}

// Len returns the number of recorded entries.
func (h *History) Len() int { return len(h.entries) }

// Entries returns a copy of the recorded entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Last returns the most recent entry; ok is false when empty.
func (h *History) Last() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Statistics summarizes the recent severity trend.
type Statistics struct {
	// Current is the most recent severity, LevelNone when no history.
	Current Level
	// Minor, Major and Critical count occurrences in the window.
	Minor    int
	Major    int
	Critical int
	// Total is the number of entries summarized.
	Total int
}

// Statistics summarizes the last few recorded classifications.
func (h *History) Statistics() Statistics {
	stats := Statistics{Current: LevelNone}
	if len(h.entries) == 0 {
		return stats
	}

	start := len(h.entries) - statisticsWindow
	if start < 0 {
		start = 0
	}
	recent := h.entries[start:]
	for _, e := range recent {
		switch e.Severity {
		case LevelMinor:
			stats.Minor++
		case LevelMajor:
			stats.Major++
		case LevelCritical:
			stats.Critical++
		}
	}
	stats.Current = h.entries[len(h.entries)-1].Severity
	stats.Total = len(recent)
	return stats
}
