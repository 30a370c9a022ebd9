// Package pipeline - The per-frame collision detection orchestrator.
//
// A Pipeline sequences localization, temporal smoothing, overlap
// analysis, motion estimation and severity classification over a frame
// stream and produces one Result per frame. It is synchronous and owns
// all mutable state; one stream per Pipeline instance, one Pipeline per
// stream.
package pipeline

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-collision/config"
	"github.com/nvr-ai/go-collision/geometry"
	"github.com/nvr-ai/go-collision/localize"
	"github.com/nvr-ai/go-collision/motion"
	"github.com/nvr-ai/go-collision/severity"
	"github.com/nvr-ai/go-collision/temporal"
)

const (
	// confidenceOverlapScale maps overlap area into detection confidence.
	confidenceOverlapScale = 2000
	// maxDetectionConfidence caps the base detection confidence.
	maxDetectionConfidence = 0.95
)

// Result is the single output value of one processed frame. It is
// immutable after return and fully owned by the caller.
type Result struct {
	// AccidentDetected reports whether an accident hypothesis was raised.
	AccidentDetected bool `json:"accident_detected"`
	// Confidence is the base detection confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// Severity is the severity class; LevelNone without a hypothesis.
	Severity severity.Level `json:"severity"`
	// SeverityScore is the fused severity score in [0,100].
	SeverityScore float64 `json:"severity_score"`
	// SeverityConfidence is the classifier confidence in [0,100].
	SeverityConfidence float64 `json:"severity_confidence"`
	// Factors are the individual severity factor scores.
	Factors severity.Factors `json:"severity_factors"`
	// VehicleCount is the number of localized vehicles.
	VehicleCount int `json:"vehicle_count"`
	// Vehicles are the localized vehicles.
	Vehicles []localize.Detection `json:"vehicles"`
	// ShouldAlert is true when the detection is trustworthy enough to
	// notify: detected with severity confidence above the configured cutoff.
	ShouldAlert bool `json:"should_alert"`
	// Motion is the smoothed motion intensity used for classification.
	Motion float64 `json:"motion"`
	// FrameSize is the processed frame's width and height.
	FrameSize image.Point `json:"frame_size"`
}

// Pipeline orchestrates the detection stages for one frame stream.
// Not safe for concurrent use.
type Pipeline struct {
	cfg        config.Config
	localizer  localize.Localizer
	state      *temporal.State
	estimator  *motion.Estimator
	classifier *severity.Classifier

	// demoSeverity arms a one-shot synthetic accident.
	demoSeverity *severity.Level
	// injected is a one-shot externally supplied vehicle list.
	injected    []localize.Detection
	injectedSet bool
}

// New builds a pipeline from the configuration, selecting the
// localization strategy once at startup (model when configured and
// loadable, color fallback otherwise). Invalid configuration fails here.
func New(cfg config.Config) (*Pipeline, error) {
	return NewWithLocalizer(cfg, localize.NewFallback(localize.ModelConfig{
		ModelPath: cfg.ModelPath,
	}))
}

// NewWithLocalizer builds a pipeline around a caller-supplied
// localization strategy.
func NewWithLocalizer(cfg config.Config, localizer localize.Localizer) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid pipeline config")
	}
	classifier, err := severity.NewClassifier(severity.ClassifierConfig{
		Thresholds: cfg.Thresholds,
	})
	if err != nil {
		return nil, errors.Wrap(err, "building severity classifier")
	}
	return &Pipeline{
		cfg:        cfg,
		localizer:  localizer,
		state:      temporal.NewState(),
		estimator:  motion.NewEstimator(),
		classifier: classifier,
	}, nil
}

// ProcessFrame runs the full detection pipeline on one frame and returns
// its Result. Frames must arrive in stream order; each call completes all
// buffer mutation before returning. Degraded input (an empty frame)
// yields a valid no-accident result and leaves the temporal buffers
// untouched.
func (p *Pipeline) ProcessFrame(frame gocv.Mat) Result {
	if level, ok := p.takeDemoOverride(); ok {
		return p.demoResult(frame, level)
	}

	if frame.Empty() {
		return Result{Severity: severity.LevelNone}
	}
	frameSize := image.Point{X: frame.Cols(), Y: frame.Rows()}

	vehicles := p.locate(frame)
	p.state.PushVehicles(len(vehicles))

	intensity := 0.0
	if prev, ok := p.state.PreviousFrame(); ok {
		intensity = p.estimator.Estimate(prev, frame)
	}
	p.state.PushFrame(frame)
	p.state.PushMotion(intensity)
	avgMotion := p.state.AverageMotion()

	result := Result{
		Severity:     severity.LevelNone,
		VehicleCount: len(vehicles),
		Vehicles:     vehicles,
		Motion:       avgMotion,
		FrameSize:    frameSize,
	}

	if len(vehicles) >= p.cfg.MinVehicles {
		maxOverlap := geometry.MaxPairwiseOverlap(localize.Boxes(vehicles))
		if maxOverlap > p.cfg.OverlapThreshold {
			result.AccidentDetected = true
			result.Confidence = float64(maxOverlap) / confidenceOverlapScale
			if result.Confidence > maxDetectionConfidence {
				result.Confidence = maxDetectionConfidence
			}
			result.Severity, result.SeverityScore, result.SeverityConfidence, result.Factors =
				p.classifier.Classify(vehicles, avgMotion, frame)
		}
	}

	result.ShouldAlert = result.AccidentDetected &&
		result.SeverityConfidence > p.cfg.AlertConfidence
	return result
}

// locate runs the localization strategy, consuming a pending injected
// vehicle list first. Localization failures are not fatal: the degraded
// result is an empty list.
func (p *Pipeline) locate(frame gocv.Mat) []localize.Detection {
	if p.injectedSet {
		vehicles := p.injected
		p.injected = nil
		p.injectedSet = false
		return vehicles
	}
	vehicles, err := p.localizer.Locate(frame)
	if err != nil {
		return nil
	}
	return vehicles
}

// InjectVehicles supplies the vehicle list for exactly the next
// ProcessFrame call, bypassing localization. Test injection surface.
func (p *Pipeline) InjectVehicles(vehicles []localize.Detection) {
	p.injected = vehicles
	p.injectedSet = true
}

// History exposes the classifier's bounded severity history.
func (p *Pipeline) History() *severity.History {
	return p.classifier.History()
}

// Close releases the localization strategy and buffered frames.
func (p *Pipeline) Close() error {
	p.state.Close()
	return p.localizer.Close()
}
