package severity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Append(HistoryEntry{Severity: LevelMinor, Sequence: i})
	}
	require.Equal(t, 3, h.Len())

	entries := h.Entries()
	assert.Equal(t, 2, entries[0].Sequence, "oldest entries evicted first")
	assert.Equal(t, 4, entries[2].Sequence)
}

func TestHistoryEntriesIsACopy(t *testing.T) {
	h := NewHistory(5)
	h.Append(HistoryEntry{Severity: LevelMajor})

	entries := h.Entries()
	entries[0].Severity = LevelCritical

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, LevelMajor, last.Severity)
}

func TestStatistics(t *testing.T) {
	h := NewHistory(HistoryCapacity)

	stats := h.Statistics()
	assert.Equal(t, LevelNone, stats.Current)
	assert.Zero(t, stats.Total)

	levels := []Level{
		LevelMinor, LevelMinor, LevelMajor, LevelCritical, LevelMajor,
		LevelMinor, LevelMajor, LevelMajor, LevelCritical, LevelMinor,
	}
	for i, l := range levels {
		h.Append(HistoryEntry{Severity: l, Sequence: i})
	}

	stats = h.Statistics()
	assert.Equal(t, LevelMinor, stats.Current)
	assert.Equal(t, 4, stats.Minor)
	assert.Equal(t, 4, stats.Major)
	assert.Equal(t, 2, stats.Critical)
	assert.Equal(t, 10, stats.Total)
}

func TestStatisticsWindowsRecentEntries(t *testing.T) {
	h := NewHistory(HistoryCapacity)
	// 20 MINOR followed by 10 CRITICAL: only the last 10 are summarized.
	for i := 0; i < 20; i++ {
		h.Append(HistoryEntry{Severity: LevelMinor, Sequence: i})
	}
	for i := 20; i < 30; i++ {
		h.Append(HistoryEntry{Severity: LevelCritical, Sequence: i})
	}

	stats := h.Statistics()
	assert.Zero(t, stats.Minor)
	assert.Equal(t, 10, stats.Critical)
	assert.Equal(t, LevelCritical, stats.Current)
}

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelCritical.AtLeast(LevelMajor))
	assert.True(t, LevelMajor.AtLeast(LevelMajor))
	assert.False(t, LevelMinor.AtLeast(LevelMajor))
	assert.True(t, LevelMinor.AtLeast(LevelNone))
}

func TestWeightsSum(t *testing.T) {
	assert.InDelta(t, 1.0, float64(DefaultWeights().Sum()), 1e-6)
}

func TestFactorsClamp(t *testing.T) {
	f := Factors{Overlap: -5, VehicleCount: 150, Motion: 50}.clamp()
	assert.Equal(t, float32(0), f.Overlap)
	assert.Equal(t, float32(100), f.VehicleCount)
	assert.Equal(t, float32(50), f.Motion)
}
