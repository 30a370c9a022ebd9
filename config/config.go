// Package config - Configuration for the collision detection pipeline.
package config

import (
	"fmt"
	"time"
)

// SeverityThresholds holds the three ascending score cutoffs that map a
// severity score onto a severity class.
type SeverityThresholds struct {
	// Minor is the upper bound of the MINOR band (scores below it are MINOR).
	Minor float64
	// Major is the upper bound of the MAJOR band.
	Major float64
	// Critical is the nominal top of the CRITICAL band.
	Critical float64
}

// Config contains every externally tunable parameter of the pipeline.
//
// The zero value is not usable; start from Default() and adjust.
type Config struct {
	// FrameWidth and FrameHeight are the expected capture dimensions.
	FrameWidth  int
	FrameHeight int

	// OverlapThreshold is the pixel-area overlap two vehicles must exceed
	// before an accident hypothesis is raised.
	OverlapThreshold int
	// MinVehicles is the minimum number of vehicles in frame for an
	// accident hypothesis.
	MinVehicles int

	// Thresholds maps severity scores to severity classes.
	Thresholds SeverityThresholds

	// AlertConfidence is the severity-confidence cutoff above which a
	// detected accident sets ShouldAlert.
	AlertConfidence float64

	// AlertCooldown is the minimum interval between dispatched alerts.
	AlertCooldown time.Duration
	// SaveEvidence controls whether alert dispatch writes an evidence frame.
	SaveEvidence bool
	// EvidenceDir is where evidence frames and the alert log are written.
	EvidenceDir string

	// ModelPath points at the ONNX vehicle detection model. Empty disables
	// the model strategy and the pipeline starts on the color fallback.
	ModelPath string
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		FrameWidth:       1280,
		FrameHeight:      720,
		OverlapThreshold: 500,
		MinVehicles:      2,
		Thresholds: SeverityThresholds{
			Minor:    30,
			Major:    60,
			Critical: 90,
		},
		AlertConfidence: 60,
		AlertCooldown:   3 * time.Second,
		SaveEvidence:    true,
		EvidenceDir:     "evidence",
	}
}

// Validate reports invalid configuration. The pipeline refuses to
// construct from a config that fails validation; nothing is re-checked
// per frame.
func (c Config) Validate() error {
	if c.MinVehicles < 2 {
		return fmt.Errorf("MinVehicles must be at least 2, got %d", c.MinVehicles)
	}
	if c.OverlapThreshold <= 0 {
		return fmt.Errorf("OverlapThreshold must be positive, got %d", c.OverlapThreshold)
	}
	t := c.Thresholds
	if !(t.Minor > 0 && t.Minor < t.Major && t.Major < t.Critical && t.Critical <= 100) {
		return fmt.Errorf("severity thresholds must ascend within (0,100], got %.1f/%.1f/%.1f",
			t.Minor, t.Major, t.Critical)
	}
	if c.AlertConfidence < 0 || c.AlertConfidence > 100 {
		return fmt.Errorf("AlertConfidence must be in [0,100], got %.1f", c.AlertConfidence)
	}
	if c.AlertCooldown < 0 {
		return fmt.Errorf("AlertCooldown must not be negative, got %s", c.AlertCooldown)
	}
	return nil
}
