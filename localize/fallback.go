// Package localize - Graceful degradation between localization strategies.
package localize

import (
	"log"

	"gocv.io/x/gocv"
)

// Fallback wraps a primary localization strategy with a fallback. Once
// the primary fails (at construction or mid-run) the fallback serves the
// remainder of the run; the switch is logged once and never reported to
// callers as an error. Locate never propagates internal failures - an
// empty detection list is the degraded result.
type Fallback struct {
	primary  Localizer
	fallback Localizer
	degraded bool
}

// NewFallback builds the standard strategy stack for the pipeline: the
// ONNX model when modelConfig can be loaded, the color strategy
// otherwise. An empty ModelPath skips the model entirely.
func NewFallback(modelConfig ModelConfig) *Fallback {
	f := &Fallback{fallback: NewColorLocalizer()}

	if modelConfig.ModelPath == "" {
		f.degraded = true
		log.Printf("no model configured, using %s localization", f.fallback.Name())
		return f
	}

	model, err := NewModelLocalizer(modelConfig)
	if err != nil {
		f.degraded = true
		log.Printf("model localization unavailable (%v), using %s localization", err, f.fallback.Name())
		return f
	}
	f.primary = model
	return f
}

// Name implements Localizer, reporting the currently active strategy.
func (f *Fallback) Name() string {
	return f.active().Name()
}

func (f *Fallback) active() Localizer {
	if f.degraded || f.primary == nil {
		return f.fallback
	}
	return f.primary
}

// Locate runs the active strategy. A primary failure demotes to the
// fallback for the rest of the run and retries the same frame on it.
func (f *Fallback) Locate(frame gocv.Mat) ([]Detection, error) {
	detections, err := f.active().Locate(frame)
	if err == nil {
		return detections, nil
	}
	if !f.degraded {
		f.degraded = true
		log.Printf("%s localization failed (%v), falling back to %s", f.primary.Name(), err, f.fallback.Name())
		if detections, err = f.fallback.Locate(frame); err == nil {
			return detections, nil
		}
	}
	// Both strategies failing is still not exceptional to callers.
	return nil, nil
}

// Close releases both strategies.
func (f *Fallback) Close() error {
	if f.primary != nil {
		if err := f.primary.Close(); err != nil {
			return err
		}
	}
	return f.fallback.Close()
}
