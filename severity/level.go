// Package severity - Multi-factor collision severity classification.
package severity

import "image/color"

// Level is a discrete severity class.
type Level string

// Severity classes in ascending order.
const (
	LevelNone     Level = "NONE"
	LevelMinor    Level = "MINOR"
	LevelMajor    Level = "MAJOR"
	LevelCritical Level = "CRITICAL"
)

// rank orders levels for comparisons.
var rank = map[Level]int{
	LevelNone:     0,
	LevelMinor:    1,
	LevelMajor:    2,
	LevelCritical: 3,
}

// AtLeast reports whether l is at least as severe as other.
func (l Level) AtLeast(other Level) bool {
	return rank[l] >= rank[other]
}

// Color returns the display color conventionally used for the level:
// yellow for MINOR, orange for MAJOR, red for CRITICAL, green otherwise.
func (l Level) Color() color.RGBA {
	switch l {
	case LevelMinor:
		return color.RGBA{R: 255, G: 255, B: 0, A: 255}
	case LevelMajor:
		return color.RGBA{R: 255, G: 165, B: 0, A: 255}
	case LevelCritical:
		return color.RGBA{R: 255, G: 0, B: 0, A: 255}
	default:
		return color.RGBA{R: 0, G: 255, B: 0, A: 255}
	}
}
