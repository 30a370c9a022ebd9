// Package pipeline - One-shot synthetic accident override for demos.
package pipeline

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-collision/geometry"
	"github.com/nvr-ai/go-collision/localize"
	"github.com/nvr-ai/go-collision/severity"
)

// demoScenario is a fixed synthetic accident for one severity level.
type demoScenario struct {
	vehicles []localize.Detection
	score    float64
}

// demoSeverityConfidence is the assumed confidence for synthetic
// accidents. Unlike real frames, where confidence is computed from factor
// disagreement, synthetic data has no measured disagreement to read.
const demoSeverityConfidence = 85

var demoScenarios = map[severity.Level]demoScenario{
	severity.LevelMinor: {
		vehicles: []localize.Detection{
			{Box: geometry.Box{X1: 200, Y1: 150, X2: 300, Y2: 250}, Confidence: 0.85, Class: "vehicle"},
			{Box: geometry.Box{X1: 250, Y1: 140, X2: 350, Y2: 240}, Confidence: 0.80, Class: "vehicle"},
		},
		score: 25,
	},
	severity.LevelMajor: {
		vehicles: []localize.Detection{
			{Box: geometry.Box{X1: 180, Y1: 130, X2: 320, Y2: 270}, Confidence: 0.90, Class: "vehicle"},
			{Box: geometry.Box{X1: 240, Y1: 120, X2: 380, Y2: 260}, Confidence: 0.85, Class: "vehicle"},
			{Box: geometry.Box{X1: 300, Y1: 150, X2: 400, Y2: 280}, Confidence: 0.75, Class: "vehicle"},
		},
		score: 55,
	},
	severity.LevelCritical: {
		vehicles: []localize.Detection{
			{Box: geometry.Box{X1: 150, Y1: 100, X2: 350, Y2: 300}, Confidence: 0.95, Class: "vehicle"},
			{Box: geometry.Box{X1: 200, Y1: 80, X2: 400, Y2: 280}, Confidence: 0.92, Class: "vehicle"},
			{Box: geometry.Box{X1: 280, Y1: 120, X2: 450, Y2: 320}, Confidence: 0.88, Class: "vehicle"},
			{Box: geometry.Box{X1: 320, Y1: 90, X2: 480, Y2: 310}, Confidence: 0.85, Class: "vehicle"},
		},
		score: 85,
	},
}

// ForceAccident arms a one-shot synthetic accident of the given severity:
// exactly the next ProcessFrame call bypasses the real pipeline and
// returns the fixed scenario for that level, after which normal
// processing resumes. Unknown levels are ignored.
func (p *Pipeline) ForceAccident(level severity.Level) {
	if _, ok := demoScenarios[level]; !ok {
		return
	}
	p.demoSeverity = &level
}

// takeDemoOverride consumes a pending override.
func (p *Pipeline) takeDemoOverride() (severity.Level, bool) {
	if p.demoSeverity == nil {
		return severity.LevelNone, false
	}
	level := *p.demoSeverity
	p.demoSeverity = nil
	return level, true
}

// demoResult assembles the deterministic Result for a forced accident.
func (p *Pipeline) demoResult(frame gocv.Mat, level severity.Level) Result {
	scenario := demoScenarios[level]
	n := len(scenario.vehicles)

	frameSize := image.Point{}
	if !frame.Empty() {
		frameSize = image.Point{X: frame.Cols(), Y: frame.Rows()}
	}

	return Result{
		AccidentDetected:   true,
		Confidence:         0.9,
		Severity:           level,
		SeverityScore:      scenario.score,
		SeverityConfidence: demoSeverityConfidence,
		Factors: severity.Factors{
			Overlap:      float32(scenario.score),
			VehicleCount: float32(n * 25),
			Motion:       float32(scenario.score - 10),
			Debris:       float32(scenario.score - 5),
		},
		VehicleCount: n,
		Vehicles:     scenario.vehicles,
		ShouldAlert:  true,
		Motion:       scenario.score / 2,
		FrameSize:    frameSize,
	}
}
