// Package severity - The severity classifier.
//
// Classify fuses six independent [0,100] factor scores into a severity
// score, a discrete class and a confidence estimate. The factor formulas
// are deliberately simple band/step functions; the interesting parts are
// the fixed-weight fusion (the score is a pure function of the factors)
// and the confidence model, which reads disagreement among factors as
// uncertainty and dampens further near class boundaries.
package severity

import (
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-collision/config"
	"github.com/nvr-ai/go-collision/geometry"
	"github.com/nvr-ai/go-collision/localize"
)

// MotionUnknown is passed as avgMotion when no motion measurement exists
// for the frame. It scores the motion factor at a neutral 50 instead of
// treating "unmeasured" as "still".
const MotionUnknown = -1

const (
	// debrisPadding grows the union box before measuring edge density.
	debrisPadding = 50

	// Canny thresholds for debris edge extraction.
	cannyLow  = 50
	cannyHigh = 150

	// weightTolerance is the allowed deviation of the weight sum from 1.
	weightTolerance = 1e-6

	// boundaryBand is the half-width around class thresholds inside which
	// confidence is dampened.
	boundaryBand = 5
	// boundaryDamping scales confidence inside a boundary band.
	boundaryDamping = 0.8

	// confidenceStdScale is the factor stddev treated as total
	// disagreement (confidence 0).
	confidenceStdScale = 50
)

// FactorFunc scores one severity factor from the detected vehicles.
type FactorFunc func(vehicles []localize.Detection) float32

// ClassifierConfig configures a Classifier.
type ClassifierConfig struct {
	// Weights are the fusion weights; zero value means DefaultWeights.
	Weights Weights
	// Thresholds are the ascending class cutoffs.
	Thresholds config.SeverityThresholds

	// SpeedChange and Angle override the two placeholder factors. The
	// defaults are constant stubs; a temporal tracker can supply real
	// scores here without touching the fusion.
	SpeedChange FactorFunc
	Angle       FactorFunc
}

// Classifier scores collision severity. It owns a bounded classification
// history and a frame sequence counter; everything else is computed fresh
// per call. Not safe for concurrent use.
type Classifier struct {
	weights     Weights
	thresholds  config.SeverityThresholds
	speedChange FactorFunc
	angle       FactorFunc

	history  *History
	sequence int
}

// NewClassifier validates the configuration and builds a classifier.
// Weights not summing to 1 or non-ascending thresholds are programmer
// errors and fail here, not per frame.
func NewClassifier(cfg ClassifierConfig) (*Classifier, error) {
	if (cfg.Weights == Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if diff := float64(cfg.Weights.Sum()) - 1.0; math.Abs(diff) > weightTolerance {
		return nil, errors.Errorf("factor weights must sum to 1.0, got %f", cfg.Weights.Sum())
	}
	t := cfg.Thresholds
	if t == (config.SeverityThresholds{}) {
		t = config.Default().Thresholds
	}
	if !(t.Minor < t.Major && t.Major < t.Critical) {
		return nil, errors.Errorf("severity thresholds must ascend, got %.1f/%.1f/%.1f",
			t.Minor, t.Major, t.Critical)
	}
	if cfg.SpeedChange == nil {
		cfg.SpeedChange = stubSpeedChange
	}
	if cfg.Angle == nil {
		cfg.Angle = stubAngle
	}
	return &Classifier{
		weights:     cfg.Weights,
		thresholds:  t,
		speedChange: cfg.SpeedChange,
		angle:       cfg.Angle,
		history:     NewHistory(HistoryCapacity),
	}, nil
}

// Classify scores the current frame's accident hypothesis.
//
// Arguments:
//   - vehicles: the frame's detected vehicles.
//   - avgMotion: smoothed motion intensity, or MotionUnknown.
//   - frame: the current frame, used for debris detection; may be empty.
//
// Returns the severity level, the aggregate score in [0,100], the
// confidence in [0,100] and the individual factor scores. Every call
// appends to the bounded history and advances the sequence counter.
func (c *Classifier) Classify(
	vehicles []localize.Detection,
	avgMotion float64,
	frame gocv.Mat,
) (Level, float64, float64, Factors) {
	factors := Factors{
		Overlap:      overlapScore(vehicles),
		VehicleCount: vehicleCountScore(len(vehicles)),
		Motion:       motionScore(avgMotion),
		Debris:       c.debrisScore(frame, vehicles),
		SpeedChange:  c.speedChange(vehicles),
		Angle:        c.angle(vehicles),
	}.clamp()

	score := factors.Weighted(c.weights)
	level := c.levelFor(score)
	confidence := c.confidence(factors, score)

	c.history.Append(HistoryEntry{
		Severity:   level,
		Score:      score,
		Confidence: confidence,
		Sequence:   c.sequence,
	})
	c.sequence++

	return level, score, confidence, factors
}

// levelFor maps a score onto the threshold ladder.
func (c *Classifier) levelFor(score float64) Level {
	switch {
	case score < c.thresholds.Minor:
		return LevelMinor
	case score < c.thresholds.Major:
		return LevelMajor
	default:
		return LevelCritical
	}
}

// confidence reads factor disagreement as uncertainty: the population
// stddev of the six scores is scaled so 50 points of spread means zero
// confidence. Scores inside a boundary band around the MINOR/MAJOR
// cutoffs are further dampened.
func (c *Classifier) confidence(factors Factors, score float64) float64 {
	confidence := 100 - float64(factors.stddev())/confidenceStdScale*100
	if confidence < 0 {
		confidence = 0
	}
	if c.nearBoundary(score) {
		confidence *= boundaryDamping
	}
	if confidence > 100 {
		confidence = 100
	}
	return confidence
}

func (c *Classifier) nearBoundary(score float64) bool {
	return (score > c.thresholds.Minor-boundaryBand && score < c.thresholds.Minor+boundaryBand) ||
		(score > c.thresholds.Major-boundaryBand && score < c.thresholds.Major+boundaryBand)
}

// History returns the classifier's bounded classification history.
func (c *Classifier) History() *History {
	return c.history
}

// overlapScore is piecewise linear in the mean pairwise overlap area:
// under 1000px maps to [0,30], 1000-5000px to [30,70], beyond to
// [70,100] capped.
func overlapScore(vehicles []localize.Detection) float32 {
	if len(vehicles) < 2 {
		return 0
	}
	avg := geometry.MeanPairwiseOverlap(localize.Boxes(vehicles))
	if avg == 0 {
		return 0
	}
	switch {
	case avg < 1000:
		return float32(avg / 1000 * 30)
	case avg < 5000:
		return float32(30 + (avg-1000)/4000*40)
	default:
		return float32(70 + math.Min((avg-5000)/5000, 1)*30)
	}
}

// vehicleCountScore steps with the number of vehicles involved.
func vehicleCountScore(count int) float32 {
	switch {
	case count <= 1:
		return 0
	case count == 2:
		return 40
	case count == 3:
		return 70
	default:
		return 100
	}
}

// motionScore bands the smoothed motion intensity.
func motionScore(avgMotion float64) float32 {
	if avgMotion < 0 {
		// MotionUnknown: neutral.
		return 50
	}
	switch {
	case avgMotion < 10:
		return 20
	case avgMotion < 30:
		return 60
	default:
		return 95
	}
}

// debrisScore measures Canny edge density inside the padded rectangle
// enclosing all vehicles. High edge density around a collision correlates
// with scattered debris and deformation.
func (c *Classifier) debrisScore(frame gocv.Mat, vehicles []localize.Detection) float32 {
	if frame.Empty() || len(vehicles) < 2 {
		return 0
	}
	area, ok := geometry.EnclosingBox(localize.Boxes(vehicles))
	if !ok {
		return 0
	}
	area = area.Pad(debrisPadding).Clamp(frame.Cols(), frame.Rows())
	if area.Area() == 0 {
		return 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, cannyLow, cannyHigh)
	if edges.Empty() {
		return 0
	}

	roi := edges.Region(area.ToRect())
	defer roi.Close()

	density := float64(gocv.CountNonZero(roi)) / float64(area.Area()) * 100
	switch {
	case density < 5:
		return 20
	case density < 15:
		return 60
	default:
		return 95
	}
}

// stubSpeedChange is the placeholder speed-change factor: a moderate
// constant until per-vehicle tracking lands.
func stubSpeedChange(vehicles []localize.Detection) float32 {
	if len(vehicles) < 2 {
		return 0
	}
	return 50
}

// stubAngle is the placeholder collision-angle factor.
func stubAngle(vehicles []localize.Detection) float32 {
	if len(vehicles) < 2 {
		return 0
	}
	return 60
}
